package devmem

import "testing"

func TestMapRejectsUnalignedBase(t *testing.T) {
	if _, err := Map("", 0xc000004); err == nil {
		t.Fatal("expected an error for an unaligned base address")
	}
}

func TestMapMissingDevice(t *testing.T) {
	if _, err := Map("/dev/does-not-exist", 0); err == nil {
		t.Fatal("expected an error for a missing device file")
	}
}
