package plic

import "fmt"

// Mode is a RISC-V privilege mode, ordered the way the PLIC context layout
// orders them.
type Mode int

const (
	// ModeMachine is machine mode.
	ModeMachine Mode = 0
	// ModeSupervisor is supervisor mode.
	ModeSupervisor Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeMachine:
		return "machine"
	case ModeSupervisor:
		return "supervisor"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// HartContext maps a hart identity to a flat context index.
//
// How the PLIC organizes contexts across harts and privilege modes is
// outside the PLIC specification and set by the vendor, so the mapping is an
// injectable strategy rather than a formula baked into the driver.
// SimpleContext implements the common scheme; platform integrators with a
// different numbering substitute their own.
type HartContext interface {
	Index() Context
}

// SimpleContext resolves a (hart, mode) pair on platforms where contexts
// are laid out hart by hart, one slot per supported privilege level.
//
// Privileges holds, in hart order, how many privilege levels each hart
// exposes to the controller (1 for machine only, 2 for machine plus
// supervisor). The context index is the number of slots used by all
// preceding harts plus the mode's ordinal.
type SimpleContext struct {
	Privileges []uint8
	Hart       int
	Mode       Mode
}

// Index implements HartContext. It panics when Hart is outside Privileges
// or when the mode's ordinal exceeds the hart's privilege level count.
func (c SimpleContext) Index() Context {
	if c.Hart < 0 || c.Hart >= len(c.Privileges) {
		panic(fmt.Sprintf("plic: hart %d outside the %d-hart platform description", c.Hart, len(c.Privileges)))
	}
	if int(c.Mode) > int(c.Privileges[c.Hart]) {
		panic(fmt.Sprintf("plic: hart %d does not support %s contexts", c.Hart, c.Mode))
	}
	idx := Context(c.Mode)
	for _, n := range c.Privileges[:c.Hart] {
		idx += Context(n)
	}
	return idx
}

var _ HartContext = SimpleContext{}
