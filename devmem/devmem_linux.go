package devmem

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	plic "github.com/arceos-org/riscv-plic"
	"golang.org/x/sys/unix"
)

// Region is a mapped PLIC register block. It implements plic.RegisterFile
// with single 32-bit accesses into the shared mapping.
type Region struct {
	mem []byte
}

// Map maps the plic.RegionSize-byte register block at physical address base
// out of the named device file (DefaultDevice when empty).
//
// The same caller contract as plic.New applies: base must be the real
// controller base, exclusively owned by this process, and the returned
// Region must outlive every driver built on it.
func Map(device string, base uint64) (*Region, error) {
	if device == "" {
		device = DefaultDevice
	}
	if base%uint64(os.Getpagesize()) != 0 {
		return nil, fmt.Errorf("devmem: base 0x%x is not page aligned", base)
	}

	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("devmem: open %s: %w", device, err)
	}
	defer f.Close()

	// The fd does not need to stay open once the mapping exists.
	mem, err := unix.Mmap(int(f.Fd()), int64(base), plic.RegionSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("devmem: map 0x%x bytes at 0x%x from %s: %w", uint64(plic.RegionSize), base, device, err)
	}

	return &Region{mem: mem}, nil
}

// PLIC returns a driver over the mapped register block.
func (r *Region) PLIC() *plic.PLIC {
	return plic.NewWithRegisterFile(r)
}

func (r *Region) word(offset uint64) *uint32 {
	if offset%4 != 0 || offset+4 > uint64(len(r.mem)) {
		panic(fmt.Sprintf("devmem: register offset 0x%x outside mapping", offset))
	}
	return (*uint32)(unsafe.Pointer(&r.mem[offset]))
}

// Read32 implements plic.RegisterFile.
func (r *Region) Read32(offset uint64) uint32 {
	return atomic.LoadUint32(r.word(offset))
}

// Write32 implements plic.RegisterFile.
func (r *Region) Write32(offset uint64, value uint32) {
	atomic.StoreUint32(r.word(offset), value)
}

// Close unmaps the register block. The Region and every driver built on it
// must not be used afterwards.
func (r *Region) Close() error {
	mem := r.mem
	r.mem = nil
	if mem == nil {
		return nil
	}
	return unix.Munmap(mem)
}

var _ plic.RegisterFile = (*Region)(nil)
