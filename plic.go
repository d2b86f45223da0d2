// Package plic is a driver for the RISC-V Platform-Level Interrupt
// Controller.
//
// https://github.com/riscv/riscv-plic-spec/blob/master/riscv-plic.adoc
package plic

import (
	"fmt"
	"unsafe"
)

// Source identifies an interrupt source. Valid sources are 1..1023; id 0 is
// reserved by the PLIC specification to mean "no interrupt" and must never
// name a real source.
type Source uint32

// Context identifies one (hart, privilege mode) pair. How harts and modes
// map to context indexes is vendor defined; see HartContext.
type Context int

// PLIC drives one memory-mapped Platform-Level Interrupt Controller.
//
// The driver holds no state of its own beyond the register view, so a single
// instance may be shared across harts. See the individual methods for which
// operations need external serialization.
type PLIC struct {
	regs RegisterFile
}

// New creates a driver over the register block at base.
//
// This constructor is unchecked. The caller must guarantee that base is the
// address of a real PLIC register block of at least RegionSize bytes, that
// the mapping is exclusively owned by this driver, and that it stays valid
// for as long as the returned PLIC is used. None of that is verified here;
// a bad base address turns every register access into a stray memory access.
func New(base uintptr) *PLIC {
	return &PLIC{regs: &mmioRegisterFile{base: unsafe.Pointer(base)}}
}

// NewWithRegisterFile creates a driver over an arbitrary register file
// implementation, such as the device model in the emu package or a mapping
// produced by the devmem package.
func NewWithRegisterFile(regs RegisterFile) *PLIC {
	return &PLIC{regs: regs}
}

func checkSource(s Source) {
	if s == 0 || s >= NumSources {
		panic(fmt.Sprintf("plic: invalid interrupt source %d", s))
	}
}

func checkContext(ctx Context) {
	if ctx < 0 || ctx >= NumContexts {
		panic(fmt.Sprintf("plic: invalid context %d", ctx))
	}
}

// InitContext prepares a context for use by setting its priority threshold
// to 0. That is the only state this driver initializes: source priorities
// and enable bits keep whatever state the hardware or earlier software left
// and must be configured explicitly.
func (p *PLIC) InitContext(ctx Context) {
	p.SetThreshold(ctx, 0)
}

// SetPriority sets the priority of source s to value.
//
// Priority 0 is reserved for "never interrupt", so writing 0 disables the
// source. The lowest active priority is 1. The maximum depends on how many
// priority bits the hardware implements and can be discovered with
// ProbePriorityBits; writes above the maximum are truncated by the hardware.
func (p *PLIC) SetPriority(s Source, value uint32) {
	checkSource(s)
	p.regs.Write32(priorityOffset(s), value)
}

// Priority returns the current priority of source s.
func (p *PLIC) Priority(s Source) uint32 {
	checkSource(s)
	return p.regs.Read32(priorityOffset(s))
}

// ProbePriorityBits discovers the maximum priority the hardware supports
// for source s by writing all-ones and reading back the bits that stuck.
//
// The probe overwrites the source's current priority, so it belongs in
// initialization only, never while the source carries live traffic.
func (p *PLIC) ProbePriorityBits(s Source) uint32 {
	checkSource(s)
	p.regs.Write32(priorityOffset(s), ^uint32(0))
	return p.regs.Read32(priorityOffset(s))
}

// IsPending reports whether source s is pending. The pending bit is owned
// by the hardware: it is set when the source asserts and cleared by Claim,
// never written directly by software.
func (p *PLIC) IsPending(s Source) bool {
	checkSource(s)
	group, bit := sourceGroup(s)
	return p.regs.Read32(pendingOffset(group))&(1<<bit) != 0
}

// Enable enables source s for context ctx.
//
// Enable and Disable read-modify-write the 32-bit enable word the source
// lives in. The two bus transactions are not atomic together, so concurrent
// calls touching sources in the same 32-source group of the same context
// must be serialized by the caller. Different contexts never interfere.
func (p *PLIC) Enable(s Source, ctx Context) {
	checkSource(s)
	checkContext(ctx)
	group, bit := sourceGroup(s)
	off := enableOffset(ctx, group)
	p.regs.Write32(off, p.regs.Read32(off)|1<<bit)
}

// Disable disables source s for context ctx. See Enable for the
// serialization requirement.
func (p *PLIC) Disable(s Source, ctx Context) {
	checkSource(s)
	checkContext(ctx)
	group, bit := sourceGroup(s)
	off := enableOffset(ctx, group)
	p.regs.Write32(off, p.regs.Read32(off)&^(1<<bit))
}

// IsEnabled reports whether source s is enabled for context ctx. Read-only,
// safe to call concurrently with other reads.
func (p *PLIC) IsEnabled(s Source, ctx Context) bool {
	checkSource(s)
	checkContext(ctx)
	group, bit := sourceGroup(s)
	return p.regs.Read32(enableOffset(ctx, group))&(1<<bit) != 0
}

// Threshold returns the priority threshold of context ctx.
func (p *PLIC) Threshold(ctx Context) uint32 {
	checkContext(ctx)
	return p.regs.Read32(thresholdOffset(ctx))
}

// SetThreshold sets the priority threshold of context ctx. Only sources
// with priority strictly greater than the threshold are eligible for claim.
func (p *PLIC) SetThreshold(ctx Context, value uint32) {
	checkContext(ctx)
	p.regs.Write32(thresholdOffset(ctx), value)
}

// ProbeThresholdBits discovers the maximum threshold the hardware supports
// for context ctx, by the same destructive all-ones probe as
// ProbePriorityBits.
func (p *PLIC) ProbeThresholdBits(ctx Context) uint32 {
	checkContext(ctx)
	p.regs.Write32(thresholdOffset(ctx), ^uint32(0))
	return p.regs.Read32(thresholdOffset(ctx))
}

// Claim claims an interrupt for context ctx.
//
// Among the sources that are pending, enabled for ctx, and of priority
// strictly greater than the context threshold, the controller picks the
// highest-priority one (lowest source id on ties) and clears its pending
// bit as a side effect of the read. ok is false when no source qualifies.
//
// Claiming is always legal, even when no interrupt notification is raised:
// a hart that masked notifications can poll by calling Claim repeatedly.
// At most one claim should be outstanding per context at a time; claiming
// again before completing the first is undefined by the controller contract
// and must be avoided by the caller.
func (p *PLIC) Claim(ctx Context) (s Source, ok bool) {
	checkContext(ctx)
	id := p.regs.Read32(claimOffset(ctx))
	return Source(id), id != 0
}

// Complete signals that handling of source s, previously returned by Claim
// on ctx, has finished, re-arming the source for future claims in this
// context. s must be the exact id obtained from Claim for this context;
// completing a source this context never claimed has hardware-defined
// consequences.
func (p *PLIC) Complete(ctx Context, s Source) {
	checkSource(s)
	checkContext(ctx)
	p.regs.Write32(claimOffset(ctx), uint32(s))
}
