package memory_test

import (
	"testing"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

func TestMaybeRelocatableAddValues(t *testing.T) {
	a := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(3))
	b := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(4))
	got, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(7))
	if !got.IsEqual(want) {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
}

func TestMaybeRelocatableAddAddressValue(t *testing.T) {
	addr := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 1, Offset: 5})
	val := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(3))
	got, err := addr.Add(val)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 1, Offset: 8})
	if !got.IsEqual(want) {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
}

func TestMaybeRelocatableAddTwoAddressesFails(t *testing.T) {
	a := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 1, Offset: 5})
	b := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 1, Offset: 2})
	_, err := a.Add(b)
	if err == nil {
		t.Fatalf("expected RelocatableAdd, got nil")
	}
	merr, ok := err.(*memory.MemoryError)
	if !ok || merr.Kind != memory.RelocatableAdd {
		t.Errorf("expected RelocatableAdd, got %v", err)
	}
}

func TestMaybeRelocatableMulRequiresValues(t *testing.T) {
	addr := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 1, Offset: 5})
	val := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(3))
	_, err := addr.Mul(val)
	if err == nil {
		t.Fatalf("expected PureValue, got nil")
	}
	merr, ok := err.(*memory.MemoryError)
	if !ok || merr.Kind != memory.PureValue {
		t.Errorf("expected PureValue, got %v", err)
	}
}

func TestMaybeRelocatableIsZero(t *testing.T) {
	zero := *memory.NewMaybeRelocatableFelt(lambdaworks.FeltZero())
	if !zero.IsZero() {
		t.Errorf("expected zero felt to report IsZero")
	}
	addr := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 0, Offset: 0})
	if addr.IsZero() {
		t.Errorf("expected an address to never report IsZero")
	}
}

func TestMaybeRelocatableIntoFeltMismatch(t *testing.T) {
	addr := *memory.NewMaybeRelocatableRelocatable(memory.Relocatable{SegmentIndex: 0, Offset: 0})
	_, err := addr.IntoFelt()
	if err == nil {
		t.Fatalf("expected ExpectedInteger, got nil")
	}
	merr, ok := err.(*memory.MemoryError)
	if !ok || merr.Kind != memory.ExpectedInteger {
		t.Errorf("expected ExpectedInteger, got %v", err)
	}
}
