// Package emu models the register file of a RISC-V Platform-Level Interrupt
// Controller in memory.
//
// The model implements plic.RegisterFile over the standard register map, so
// a plic.PLIC driver runs against it unmodified. It is the test double for
// the driver itself and a stand-in for consumers that want to exercise
// interrupt plumbing without hardware.
package emu

import (
	"sync"

	plic "github.com/arceos-org/riscv-plic"
)

// DefaultPriorityBits matches common silicon with 8 priority levels.
const DefaultPriorityBits = 3

// PLIC is an in-memory PLIC register file.
//
// All accesses are serialized on an internal mutex, which also stands in
// for the atomicity of single bus transactions on real hardware.
type PLIC struct {
	mu sync.Mutex

	priorityBits  uint
	thresholdBits uint

	priority [plic.NumSources]uint32
	pending  [plic.NumSources / 32]uint32

	// Per-context state, allocated on first touch. The register file
	// addresses 15872 contexts but real workloads use a handful.
	enable    map[plic.Context]*[plic.NumSources / 32]uint32
	threshold map[plic.Context]uint32
	claimed   map[plic.Context]plic.Source
}

// New returns a model with DefaultPriorityBits of priority and threshold.
func New() *PLIC {
	return NewWithBits(DefaultPriorityBits, DefaultPriorityBits)
}

// NewWithBits returns a model of hardware implementing the given number of
// priority and threshold bits. Writes to the priority and threshold
// registers are masked to those widths, which is what makes the driver's
// destructive probe operations observable.
func NewWithBits(priorityBits, thresholdBits uint) *PLIC {
	if priorityBits == 0 || priorityBits > 32 || thresholdBits == 0 || thresholdBits > 32 {
		panic("emu: implemented register widths must be 1..32 bits")
	}
	return &PLIC{
		priorityBits:  priorityBits,
		thresholdBits: thresholdBits,
		enable:        make(map[plic.Context]*[plic.NumSources / 32]uint32),
		threshold:     make(map[plic.Context]uint32),
		claimed:       make(map[plic.Context]plic.Source),
	}
}

func mask(bits uint) uint32 {
	if bits >= 32 {
		return ^uint32(0)
	}
	return 1<<bits - 1
}

// SetPending asserts or deasserts an interrupt source, the way a device
// line would. Source 0 and out-of-range ids are ignored.
func (p *PLIC) SetPending(s plic.Source, pending bool) {
	if s == 0 || s >= plic.NumSources {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	word := s / 32
	bit := s % 32

	if pending {
		p.pending[word] |= 1 << bit
	} else {
		p.pending[word] &^= 1 << bit
	}
}

// NotificationPending reports whether the external interrupt line for ctx
// would be raised: some source is pending, enabled for ctx, and of priority
// strictly above the context threshold.
func (p *PLIC) NotificationPending(ctx plic.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	enable := p.enable[ctx]
	if enable == nil {
		return false
	}

	threshold := p.threshold[ctx]
	for s := plic.Source(1); s < plic.NumSources; s++ {
		word := s / 32
		bit := s % 32

		if p.pending[word]&(1<<bit) == 0 {
			continue
		}
		if enable[word]&(1<<bit) == 0 {
			continue
		}
		if p.priority[s] > threshold {
			return true
		}
	}

	return false
}

// Claimed returns the source currently claimed and not yet completed for
// ctx, or 0 when none is outstanding.
func (p *PLIC) Claimed(ctx plic.Context) plic.Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claimed[ctx]
}

// Read32 implements plic.RegisterFile.
func (p *PLIC) Read32(offset uint64) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case offset < plic.PendingBase:
		// Priority array covers the whole region up to the pending base.
		return p.priority[(offset-plic.PriorityBase)/4]

	case offset < plic.EnableBase:
		word := (offset - plic.PendingBase) / 4
		if word < uint64(len(p.pending)) {
			return p.pending[word]
		}

	case offset < plic.ContextBase:
		rel := offset - plic.EnableBase
		ctx := plic.Context(rel / plic.EnableStride)
		word := (rel % plic.EnableStride) / 4
		if ctx < plic.NumContexts && word < plic.NumSources/32 {
			if enable := p.enable[ctx]; enable != nil {
				return enable[word]
			}
		}

	default:
		rel := offset - plic.ContextBase
		ctx := plic.Context(rel / plic.ContextStride)
		if ctx >= plic.NumContexts {
			return 0
		}
		switch rel % plic.ContextStride {
		case 0:
			return p.threshold[ctx]
		case 4:
			return uint32(p.claim(ctx))
		}
	}

	// Reserved registers read as zero.
	return 0
}

// Write32 implements plic.RegisterFile.
func (p *PLIC) Write32(offset uint64, value uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case offset < plic.PendingBase:
		s := (offset - plic.PriorityBase) / 4
		if s > 0 { // source 0 is reserved
			p.priority[s] = value & mask(p.priorityBits)
		}

	case offset < plic.EnableBase:
		// Pending bits are hardware-owned and read-only.

	case offset < plic.ContextBase:
		rel := offset - plic.EnableBase
		ctx := plic.Context(rel / plic.EnableStride)
		word := (rel % plic.EnableStride) / 4
		if ctx < plic.NumContexts && word < plic.NumSources/32 {
			enable := p.enable[ctx]
			if enable == nil {
				enable = new([plic.NumSources / 32]uint32)
				p.enable[ctx] = enable
			}
			enable[word] = value
		}

	default:
		rel := offset - plic.ContextBase
		ctx := plic.Context(rel / plic.ContextStride)
		if ctx >= plic.NumContexts {
			return
		}
		switch rel % plic.ContextStride {
		case 0:
			p.threshold[ctx] = value & mask(p.thresholdBits)
		case 4:
			p.complete(ctx, plic.Source(value))
		}
	}
}

// claim picks the best eligible source for ctx: pending, enabled, priority
// strictly above the context threshold, highest priority first, lowest id
// on ties. Claiming clears the winner's pending bit. Caller holds p.mu.
func (p *PLIC) claim(ctx plic.Context) plic.Source {
	enable := p.enable[ctx]
	if enable == nil {
		return 0
	}

	threshold := p.threshold[ctx]

	var best plic.Source
	var bestPriority uint32

	for s := plic.Source(1); s < plic.NumSources; s++ {
		word := s / 32
		bit := s % 32

		if p.pending[word]&(1<<bit) == 0 {
			continue
		}
		if enable[word]&(1<<bit) == 0 {
			continue
		}

		priority := p.priority[s]
		if priority <= threshold {
			continue
		}

		// Strict comparison keeps the first, lowest-id winner on ties.
		if priority > bestPriority {
			bestPriority = priority
			best = s
		}
	}

	if best != 0 {
		word := best / 32
		bit := best % 32
		p.pending[word] &^= 1 << bit
		p.claimed[ctx] = best
	}

	return best
}

// complete re-arms a previously claimed source. Mismatched ids are dropped,
// which is one of the behaviors real controllers are allowed to pick for
// them. Caller holds p.mu.
func (p *PLIC) complete(ctx plic.Context, s plic.Source) {
	if s == 0 || s >= plic.NumSources {
		return
	}
	if p.claimed[ctx] == s {
		delete(p.claimed, ctx)
	}
}

var _ plic.RegisterFile = (*PLIC)(nil)
