package plic

// Register file geometry, fixed by the PLIC specification. Every register is
// a 32-bit word; offsets are in bytes from the controller base.
const (
	// PriorityBase is the start of the priority array, one word per source
	// id 0..1023.
	PriorityBase = 0x000000

	// PendingBase is the start of the pending bitmap, 32 sources per word.
	PendingBase = 0x001000

	// EnableBase is the start of the per-context enable bitmaps, one
	// EnableStride-sized block per context.
	EnableBase = 0x002000

	// ContextBase is the start of the per-context register blocks holding
	// the priority threshold (offset 0) and the claim/complete register
	// (offset 4), one ContextStride-sized block per context.
	ContextBase = 0x200000

	// EnableStride is the spacing between per-context enable bitmaps: the
	// 1024 enable bits rounded up to a 128-byte block.
	EnableStride = 0x80

	// ContextStride is the spacing between per-context threshold/claim
	// blocks. The blocks are page-aligned so each context's registers can
	// be mapped into a separate protection domain.
	ContextStride = 0x1000

	// RegionSize is the full span of the register file.
	RegionSize = 0x4000000
)

const (
	// NumSources is the number of source ids addressed by the register
	// file. Source 0 is reserved and never interrupts.
	NumSources = 1024

	// NumContexts is the number of (hart, privilege mode) contexts
	// addressed by the register file.
	NumContexts = 15872
)

// claimReg is the claim/complete word within a context block.
const claimReg = 4

// sourceGroup splits a source id into its bitmap word index and bit
// position. The same split applies to the pending bitmap and to every
// context's enable bitmap.
func sourceGroup(s Source) (group uint64, bit uint) {
	return uint64(s) / 32, uint(s) % 32
}

func priorityOffset(s Source) uint64 {
	return PriorityBase + 4*uint64(s)
}

func pendingOffset(group uint64) uint64 {
	return PendingBase + 4*group
}

func enableOffset(ctx Context, group uint64) uint64 {
	return EnableBase + uint64(ctx)*EnableStride + 4*group
}

func thresholdOffset(ctx Context) uint64 {
	return ContextBase + uint64(ctx)*ContextStride
}

func claimOffset(ctx Context) uint64 {
	return thresholdOffset(ctx) + claimReg
}
