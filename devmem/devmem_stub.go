//go:build !linux

package devmem

import plic "github.com/arceos-org/riscv-plic"

// Region is only functional on Linux.
type Region struct{}

// Map implements the Linux API shape; it always fails here.
func Map(device string, base uint64) (*Region, error) {
	return nil, ErrUnsupported
}

// PLIC is unreachable on this platform; Map never produces a Region.
func (r *Region) PLIC() *plic.PLIC { panic(ErrUnsupported) }

// Read32 implements plic.RegisterFile.
func (r *Region) Read32(offset uint64) uint32 { panic(ErrUnsupported) }

// Write32 implements plic.RegisterFile.
func (r *Region) Write32(offset uint64, value uint32) { panic(ErrUnsupported) }

// Close implements the Linux API shape.
func (r *Region) Close() error { return nil }
