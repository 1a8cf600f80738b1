package vm

import "github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"

// TraceEntry captures (pc, ap, fp) before the instruction at pc executes.
type TraceEntry struct {
	Pc memory.Relocatable
	Ap memory.Relocatable
	Fp memory.Relocatable
}

// RelocatedTraceEntry is a TraceEntry with every register flattened to its
// absolute index after relocation.
type RelocatedTraceEntry struct {
	Pc uint64
	Ap uint64
	Fp uint64
}

// RelocateTrace flattens every entry of trace using relocationTable.
func RelocateTrace(trace []TraceEntry, relocationTable []uint64) []RelocatedTraceEntry {
	out := make([]RelocatedTraceEntry, len(trace))
	for i, e := range trace {
		out[i] = RelocatedTraceEntry{
			Pc: e.Pc.RelocateAddress(relocationTable),
			Ap: e.Ap.RelocateAddress(relocationTable),
			Fp: e.Fp.RelocateAddress(relocationTable),
		}
	}
	return out
}
