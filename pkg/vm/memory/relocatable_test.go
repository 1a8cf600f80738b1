package memory_test

import (
	"testing"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

func TestRelocatableAddUint(t *testing.T) {
	r := memory.Relocatable{SegmentIndex: 0, Offset: 4}
	got, err := r.AddUint(6)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := memory.Relocatable{SegmentIndex: 0, Offset: 10}
	if got != want {
		t.Errorf("AddUint: expected %v, got %v", want, got)
	}
}

func TestRelocatableSubUintUnderflow(t *testing.T) {
	r := memory.Relocatable{SegmentIndex: 0, Offset: 2}
	_, err := r.SubUint(3)
	if err == nil {
		t.Fatalf("expected OffsetExceeded, got nil")
	}
	merr, ok := err.(*memory.MemoryError)
	if !ok || merr.Kind != memory.OffsetExceeded {
		t.Errorf("expected OffsetExceeded, got %v", err)
	}
}

func TestRelocatableAddFeltNegative(t *testing.T) {
	r := memory.Relocatable{SegmentIndex: 0, Offset: 32}
	got, err := r.AddFelt(lambdaworks.FeltFromInt64(-4))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := memory.Relocatable{SegmentIndex: 0, Offset: 28}
	if got != want {
		t.Errorf("AddFelt(-4): expected %v, got %v", want, got)
	}
}

func TestRelocatableSubSameSegment(t *testing.T) {
	a := memory.Relocatable{SegmentIndex: 1, Offset: 10}
	b := memory.Relocatable{SegmentIndex: 1, Offset: 3}
	dist, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if dist != lambdaworks.FeltFromUint64(7) {
		t.Errorf("Sub: expected 7, got %v", dist)
	}
}

func TestRelocatableSubDifferentSegments(t *testing.T) {
	a := memory.Relocatable{SegmentIndex: 1, Offset: 10}
	b := memory.Relocatable{SegmentIndex: 2, Offset: 3}
	_, err := a.Sub(b)
	if err == nil {
		t.Fatalf("expected InvalidSub, got nil")
	}
	merr, ok := err.(*memory.MemoryError)
	if !ok || merr.Kind != memory.InvalidSub {
		t.Errorf("expected InvalidSub, got %v", err)
	}
}

func TestRelocateAddress(t *testing.T) {
	r := memory.Relocatable{SegmentIndex: 2, Offset: 5}
	table := []uint64{0, 10, 25}
	if got := r.RelocateAddress(table); got != 30 {
		t.Errorf("RelocateAddress: expected 30, got %d", got)
	}
}
