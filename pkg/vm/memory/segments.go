package memory

import "github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"

// MemorySegmentManager owns the Memory and tracks, per segment, the
// highest offset ever written to it (its "used size" once relocated).
type MemorySegmentManager struct {
	Memory  *Memory
	sizes   map[int]uint64
	maxSeen map[int]uint64
}

func NewMemorySegmentManager() *MemorySegmentManager {
	return &MemorySegmentManager{
		Memory:  NewMemory(),
		sizes:   make(map[int]uint64),
		maxSeen: make(map[int]uint64),
	}
}

// AddSegment allocates a new positive-index segment and returns its base.
func (s *MemorySegmentManager) AddSegment() Relocatable {
	idx := s.Memory.allocateSegment()
	return Relocatable{SegmentIndex: int(idx), Offset: 0}
}

// AddTemporarySegment allocates a new negative-index segment and returns
// its base.
func (s *MemorySegmentManager) AddTemporarySegment() Relocatable {
	idx := s.Memory.allocateTempSegment()
	return Relocatable{SegmentIndex: -int(idx), Offset: 0}
}

// Insert writes val at addr and tracks addr's offset as a used-size
// candidate for its segment.
func (s *MemorySegmentManager) Insert(addr Relocatable, val MaybeRelocatable) error {
	if err := s.Memory.Insert(addr, val); err != nil {
		return err
	}
	if max, ok := s.maxSeen[addr.SegmentIndex]; !ok || addr.Offset > max {
		s.maxSeen[addr.SegmentIndex] = addr.Offset
	}
	return nil
}

// LoadData writes a contiguous run of values starting at ptr, returning the
// address just past the last value written.
func (s *MemorySegmentManager) LoadData(ptr Relocatable, data []MaybeRelocatable) (Relocatable, error) {
	for i, val := range data {
		addr, err := ptr.AddUint(uint64(i))
		if err != nil {
			return Relocatable{}, err
		}
		if err := s.Insert(addr, val); err != nil {
			return Relocatable{}, err
		}
	}
	return ptr.AddUint(uint64(len(data)))
}

// ComputeEffectiveSizes walks every segment written so far and records its
// used size (1 + max offset written, 0 if the segment is empty). Returns a
// map keyed by segment index (negative for temporary segments).
func (s *MemorySegmentManager) ComputeEffectiveSizes() map[int]uint64 {
	sizes := make(map[int]uint64, len(s.maxSeen))
	for idx, max := range s.maxSeen {
		sizes[idx] = max + 1
	}
	s.sizes = sizes
	return sizes
}

// RelocateSegments computes the absolute base of every positive segment as
// the running prefix sum of used sizes in index order: R[0] = 0, R[i] =
// sum(used_size[0..i]).
func (s *MemorySegmentManager) RelocateSegments() []uint64 {
	sizes := s.sizes
	table := make([]uint64, s.Memory.NumSegments())
	var running uint64
	for i := range table {
		table[i] = running
		running += sizes[i]
	}
	return table
}

// RelocateMemory flattens every written cell to its absolute address,
// merging temporary segments via tempRules (mapping each temporary
// segment's negative index to where it was anchored). The result maps
// absolute address to the field value stored there; a cell holding an
// Address is itself relocated to the flat index of that address before
// being re-expressed as a field element.
func (s *MemorySegmentManager) RelocateMemory(tempRules map[int]Relocatable) (map[uint64]lambdaworks.Felt, error) {
	table := s.RelocateSegments()
	out := make(map[uint64]lambdaworks.Felt)
	for addr, val := range s.Memory.Data() {
		flatAddr, err := s.Memory.RelocateAddress(addr, table, tempRules)
		if err != nil {
			return nil, err
		}
		if f, ok := val.GetFelt(); ok {
			out[flatAddr] = f
			continue
		}
		r, _ := val.GetRelocatable()
		flatVal, err := s.Memory.RelocateAddress(r, table, tempRules)
		if err != nil {
			return nil, err
		}
		out[flatAddr] = lambdaworks.FeltFromUint64(flatVal)
	}
	return out, nil
}
