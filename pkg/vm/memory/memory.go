package memory

// AddressSet is a set of Relocatable values.
type AddressSet map[Relocatable]bool

func NewAddressSet() AddressSet {
	return make(map[Relocatable]bool)
}

func (set AddressSet) Add(element Relocatable) {
	set[element] = true
}

func (set AddressSet) Contains(element Relocatable) bool {
	return set[element]
}

// ValidationRule is invoked on every insert into the segment it's attached
// to, except at an address it has already confirmed validated; it returns
// the addresses it confirms validated.
type ValidationRule func(*Memory, Relocatable) ([]Relocatable, error)

type cell struct {
	value    MaybeRelocatable
	accessed bool
}

// Memory is the Cairo VM's write-once, segment-indexed cell store. Positive
// segment indices hold ordinary memory; negative indices hold temporary
// segments whose cells are merged into positive space at relocation time.
type Memory struct {
	data               map[Relocatable]cell
	numSegments        uint
	numTempSegments    uint
	validationRules    map[uint]ValidationRule
	validatedAddresses AddressSet
}

func NewMemory() *Memory {
	return &Memory{
		data:               make(map[Relocatable]cell),
		validatedAddresses: NewAddressSet(),
		validationRules:    make(map[uint]ValidationRule),
	}
}

func (m *Memory) NumSegments() uint {
	return m.numSegments
}

func (m *Memory) NumTempSegments() uint {
	return m.numTempSegments
}

// allocateSegment records a newly allocated positive segment; called only
// by MemorySegmentManager.AddSegment.
func (m *Memory) allocateSegment() uint {
	idx := m.numSegments
	m.numSegments++
	return idx
}

// allocateTempSegment records a newly allocated temporary segment; called
// only by MemorySegmentManager.AddTemporarySegment.
func (m *Memory) allocateTempSegment() uint {
	m.numTempSegments++
	return m.numTempSegments
}

// Insert writes val at addr. Inserting the same value twice is a no-op;
// inserting a different value fails with InconsistentMemory. Both positive
// and temporary segments must be pre-allocated (via AddSegment /
// AddTemporarySegment) before anything can be written into them.
func (m *Memory) Insert(addr Relocatable, val MaybeRelocatable) error {
	if addr.SegmentIndex >= 0 && uint(addr.SegmentIndex) >= m.numSegments {
		return newError(UnallocatedSegment, "segment %d has not been allocated", addr.SegmentIndex)
	}
	if addr.SegmentIndex < 0 && uint(-addr.SegmentIndex) > m.numTempSegments {
		return newError(UnallocatedSegment, "temporary segment %d has not been allocated", addr.SegmentIndex)
	}

	prev, ok := m.data[addr]
	if ok && prev.value != val {
		return newError(InconsistentMemory, "memory at %s is write-once: held %v, got %v", addr, prev.value, val)
	}
	m.data[addr] = cell{value: val, accessed: ok && prev.accessed}
	return m.validateAddress(addr)
}

// Get returns the value at addr, or ok=false if the cell was never
// written. A successful read marks the cell accessed.
func (m *Memory) Get(addr Relocatable) (MaybeRelocatable, bool) {
	c, ok := m.data[addr]
	if !ok {
		return MaybeRelocatable{}, false
	}
	c.accessed = true
	m.data[addr] = c
	return c.value, true
}

// IsAccessed reports whether the cell at addr has ever been read.
func (m *Memory) IsAccessed(addr Relocatable) bool {
	c, ok := m.data[addr]
	return ok && c.accessed
}

// AddValidationRule attaches rule to segmentIndex; it fires on every
// subsequent insert into that segment at an address not yet validated.
func (m *Memory) AddValidationRule(segmentIndex uint, rule ValidationRule) {
	m.validationRules[segmentIndex] = rule
}

// validateAddress runs the rule attached to addr's segment, if any,
// skipping temporary addresses and addresses already validated.
func (m *Memory) validateAddress(addr Relocatable) error {
	if addr.SegmentIndex < 0 || m.validatedAddresses.Contains(addr) {
		return nil
	}
	rule, ok := m.validationRules[uint(addr.SegmentIndex)]
	if !ok {
		return nil
	}
	validated, err := rule(m, addr)
	if err != nil {
		return err
	}
	for _, a := range validated {
		m.validatedAddresses.Add(a)
	}
	return nil
}

// ValidateExistingMemory re-applies every attached rule across all written
// cells; used once setup is complete and rules are registered late.
func (m *Memory) ValidateExistingMemory() error {
	for addr := range m.data {
		if err := m.validateAddress(addr); err != nil {
			return err
		}
	}
	return nil
}

// RelocateAddress rewrites addr to its flattened absolute index using
// relocationTable for positive segments and tempRules for temporary ones. A
// temporary address is resolved through its rule and then relocated again,
// since the rule's target may itself be another temporary segment.
func (m *Memory) RelocateAddress(addr Relocatable, relocationTable []uint64, tempRules map[int]Relocatable) (uint64, error) {
	if addr.SegmentIndex >= 0 {
		if addr.SegmentIndex >= len(relocationTable) {
			return 0, newError(UnallocatedSegment, "no relocation base for segment %d", addr.SegmentIndex)
		}
		return addr.RelocateAddress(relocationTable), nil
	}
	rule, ok := tempRules[addr.SegmentIndex]
	if !ok {
		return 0, newError(UnallocatedSegment, "no relocation rule for temporary segment %d", addr.SegmentIndex)
	}
	resolved := Relocatable{SegmentIndex: rule.SegmentIndex, Offset: rule.Offset + addr.Offset}
	return m.RelocateAddress(resolved, relocationTable, tempRules)
}

// Data exposes a snapshot of the written cells for iteration by the segment
// manager during relocation.
func (m *Memory) Data() map[Relocatable]MaybeRelocatable {
	out := make(map[Relocatable]MaybeRelocatable, len(m.data))
	for addr, c := range m.data {
		out[addr] = c.value
	}
	return out
}
