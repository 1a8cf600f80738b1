package memory_test

import (
	"testing"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

func TestComputeEffectiveSizes(t *testing.T) {
	m := memory.NewMemorySegmentManager()
	seg0 := m.AddSegment()
	seg1 := m.AddSegment()

	val := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(1))
	off2, _ := seg0.AddUint(2)
	if err := m.Insert(off2, val); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	off0, _ := seg1.AddUint(0)
	if err := m.Insert(off0, val); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	sizes := m.ComputeEffectiveSizes()
	if sizes[0] != 3 {
		t.Errorf("segment 0: expected used size 3, got %d", sizes[0])
	}
	if sizes[1] != 1 {
		t.Errorf("segment 1: expected used size 1, got %d", sizes[1])
	}
}

func TestRelocateSegmentsPrefixSum(t *testing.T) {
	m := memory.NewMemorySegmentManager()
	seg0 := m.AddSegment()
	seg1 := m.AddSegment()
	seg2 := m.AddSegment()

	val := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(1))
	a0, _ := seg0.AddUint(2)
	_ = m.Insert(a0, val)
	a1, _ := seg1.AddUint(0)
	_ = m.Insert(a1, val)
	a2, _ := seg2.AddUint(4)
	_ = m.Insert(a2, val)

	m.ComputeEffectiveSizes()
	table := m.RelocateSegments()

	if table[0] != 0 {
		t.Errorf("segment 0 base: expected 0, got %d", table[0])
	}
	if table[1] != 3 {
		t.Errorf("segment 1 base: expected 3, got %d", table[1])
	}
	if table[2] != 4 {
		t.Errorf("segment 2 base: expected 4, got %d", table[2])
	}
}

func TestRelocateMemoryMergesTemporarySegments(t *testing.T) {
	m := memory.NewMemorySegmentManager()
	seg0 := m.AddSegment()
	temp := m.AddTemporarySegment()

	val := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(11))
	a0, _ := seg0.AddUint(0)
	_ = m.Insert(a0, val)

	tempAddr, _ := temp.AddUint(0)
	_ = m.Insert(tempAddr, val)

	m.ComputeEffectiveSizes()
	tempRules := map[int]memory.Relocatable{temp.SegmentIndex: seg0}

	relocated, err := m.RelocateMemory(tempRules)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// the rule anchors the temporary segment at 0:0, so both cells land on
	// flat address 0.
	if len(relocated) != 1 {
		t.Fatalf("expected 1 relocated cell, got %d", len(relocated))
	}
	if relocated[0] != lambdaworks.FeltFromUint64(11) {
		t.Errorf("expected relocated[0] == 11, got %v", relocated[0])
	}
}

func TestRelocateMemoryRewritesAddressCells(t *testing.T) {
	m := memory.NewMemorySegmentManager()
	seg0 := m.AddSegment()
	seg1 := m.AddSegment()

	ptr := *memory.NewMaybeRelocatableRelocatable(seg1)
	a0, _ := seg0.AddUint(0)
	_ = m.Insert(a0, ptr)
	val := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(5))
	a1, _ := seg1.AddUint(0)
	_ = m.Insert(a1, val)

	m.ComputeEffectiveSizes()
	relocated, err := m.RelocateMemory(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// seg0 has used size 1, so seg1's base is 1.
	if relocated[0] != lambdaworks.FeltFromUint64(1) {
		t.Errorf("expected the relocated address cell to read 1, got %v", relocated[0])
	}
}
