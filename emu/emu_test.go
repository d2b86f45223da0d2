package emu

import (
	"testing"

	plic "github.com/arceos-org/riscv-plic"
)

func TestPriorityRegisterDecode(t *testing.T) {
	p := New()

	p.Write32(plic.PriorityBase+4*9, 0xffffffff)
	if got := p.Read32(plic.PriorityBase + 4*9); got != 7 {
		t.Errorf("priority readback: got %d, want 7 (3 implemented bits)", got)
	}

	// Source 0 is reserved; writes to its slot are dropped.
	p.Write32(plic.PriorityBase, 5)
	if got := p.Read32(plic.PriorityBase); got != 0 {
		t.Errorf("priority of source 0: got %d, want 0", got)
	}
}

func TestPendingIsReadOnly(t *testing.T) {
	p := New()

	p.SetPending(33, true)
	if got := p.Read32(plic.PendingBase + 4); got != 1<<1 {
		t.Fatalf("pending word 1: got 0x%x, want 0x2", got)
	}

	p.Write32(plic.PendingBase+4, 0)
	if got := p.Read32(plic.PendingBase + 4); got != 1<<1 {
		t.Error("software write must not clear pending bits")
	}

	p.SetPending(33, false)
	if got := p.Read32(plic.PendingBase + 4); got != 0 {
		t.Errorf("pending word 1 after deassert: got 0x%x, want 0", got)
	}
}

func TestEnableStrideDecode(t *testing.T) {
	p := New()

	// Context 3, group 2 lives at EnableBase + 3*0x80 + 8.
	p.Write32(plic.EnableBase+3*plic.EnableStride+8, 0xdeadbeef)
	if got := p.Read32(plic.EnableBase + 3*plic.EnableStride + 8); got != 0xdeadbeef {
		t.Errorf("enable word: got 0x%x, want 0xdeadbeef", got)
	}
	if got := p.Read32(plic.EnableBase + 2*plic.EnableStride + 8); got != 0 {
		t.Errorf("neighbor context enable word: got 0x%x, want 0", got)
	}
}

func TestReservedOffsetsReadZero(t *testing.T) {
	p := New()

	for _, off := range []uint64{
		plic.PendingBase + 0x80,  // past the pending bitmap
		plic.ContextBase - 4,     // reserved gap before context blocks
		plic.ContextBase + 8,     // reserved words inside a context block
		plic.RegionSize - 4,      // reserved tail past the last context
	} {
		if got := p.Read32(off); got != 0 {
			t.Errorf("reserved offset 0x%x: got 0x%x, want 0", off, got)
		}
	}
}

func TestClaimThroughRegisterInterface(t *testing.T) {
	p := New()

	const ctx plic.Context = 1
	claimOff := uint64(plic.ContextBase + ctx*plic.ContextStride + 4)

	p.Write32(plic.PriorityBase+4*20, 2)
	p.Write32(plic.EnableBase+uint64(ctx)*plic.EnableStride, 1<<20)
	p.SetPending(20, true)

	if !p.NotificationPending(ctx) {
		t.Fatal("notification line should be raised")
	}

	if got := p.Read32(claimOff); got != 20 {
		t.Fatalf("claim read: got %d, want 20", got)
	}
	if got := p.Claimed(ctx); got != 20 {
		t.Fatalf("outstanding claim: got %d, want 20", got)
	}
	if p.NotificationPending(ctx) {
		t.Error("notification line should drop once the source is claimed")
	}

	// Completing a mismatched id is dropped; the real one re-arms.
	p.Write32(claimOff, 21)
	if got := p.Claimed(ctx); got != 20 {
		t.Errorf("mismatched complete changed the outstanding claim to %d", got)
	}
	p.Write32(claimOff, 20)
	if got := p.Claimed(ctx); got != 0 {
		t.Errorf("outstanding claim after complete: got %d, want 0", got)
	}
}

func TestThresholdMasking(t *testing.T) {
	p := NewWithBits(3, 2)

	off := uint64(plic.ContextBase)
	p.Write32(off, 0xffffffff)
	if got := p.Read32(off); got != 3 {
		t.Errorf("threshold readback: got %d, want 3 (2 implemented bits)", got)
	}
}
