package plic

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// RegisterFile is a 32-bit register view of a PLIC register block.
//
// Offsets are in bytes from the controller base, word-aligned and below
// RegionSize. Implementations must perform each call as a single 32-bit
// transaction; the driver relies on individual accesses never tearing.
type RegisterFile interface {
	Read32(offset uint64) uint32
	Write32(offset uint64, value uint32)
}

// mmioRegisterFile accesses a live hardware mapping. Loads and stores go
// through sync/atomic so the compiler emits exactly one 32-bit access per
// call and cannot elide or split it.
type mmioRegisterFile struct {
	base unsafe.Pointer
}

func (m *mmioRegisterFile) reg(offset uint64) *uint32 {
	if offset%4 != 0 || offset+4 > RegionSize {
		panic(fmt.Sprintf("plic: register offset 0x%x outside the 0x%x-byte register file", offset, uint64(RegionSize)))
	}
	return (*uint32)(unsafe.Add(m.base, uintptr(offset)))
}

// Read32 implements RegisterFile.
func (m *mmioRegisterFile) Read32(offset uint64) uint32 {
	return atomic.LoadUint32(m.reg(offset))
}

// Write32 implements RegisterFile.
func (m *mmioRegisterFile) Write32(offset uint64, value uint32) {
	atomic.StoreUint32(m.reg(offset), value)
}

var _ RegisterFile = (*mmioRegisterFile)(nil)
