// Package builtins names the one collaborator interface the core depends
// on for auto-deduced memory cells. No concrete builtin (range-check,
// Pedersen, bitwise, ...) lives here; this package only carries the
// interface boundary and a no-op implementation that exercises it.
package builtins

import "github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"

type BuiltinRunner interface {
	// Base returns the first address of the builtin's memory segment.
	Base() memory.Relocatable
	// Name returns the builtin's name, as it would appear in a program's
	// builtins list.
	Name() string
	// InitializeSegments creates the builtin's memory segment and records
	// its base.
	InitializeSegments(*memory.MemorySegmentManager)
	// InitialStack returns the values the builtin pushes onto the
	// execution stack at runner setup.
	InitialStack() []memory.MaybeRelocatable
	// DeduceMemoryCell attempts to deduce the value of a memory cell at
	// addr. Returns (value, true, nil) on a successful deduction,
	// (zero, false, nil) if this builtin has no opinion on addr, or a
	// non-nil error if the deduction itself failed.
	DeduceMemoryCell(addr memory.Relocatable, mem *memory.Memory) (memory.MaybeRelocatable, bool, error)
	// AddValidationRule attaches this builtin's validation rule to mem,
	// firing on every insert into the builtin's segment at an address not
	// yet validated.
	AddValidationRule(mem *memory.Memory)
}

// NoOpBuiltinRunner occupies a builtin segment without deducing or
// validating anything; it exists so the VM's builtin-hook code path is
// exercised even with no concrete builtin wired in.
type NoOpBuiltinRunner struct {
	name string
	base memory.Relocatable
}

func NewNoOpBuiltinRunner(name string) *NoOpBuiltinRunner {
	return &NoOpBuiltinRunner{name: name}
}

func (b *NoOpBuiltinRunner) Base() memory.Relocatable {
	return b.base
}

func (b *NoOpBuiltinRunner) Name() string {
	return b.name
}

func (b *NoOpBuiltinRunner) InitializeSegments(segments *memory.MemorySegmentManager) {
	b.base = segments.AddSegment()
}

func (b *NoOpBuiltinRunner) InitialStack() []memory.MaybeRelocatable {
	return []memory.MaybeRelocatable{*memory.NewMaybeRelocatableRelocatable(b.base)}
}

func (b *NoOpBuiltinRunner) DeduceMemoryCell(addr memory.Relocatable, mem *memory.Memory) (memory.MaybeRelocatable, bool, error) {
	return memory.MaybeRelocatable{}, false, nil
}

func (b *NoOpBuiltinRunner) AddValidationRule(mem *memory.Memory) {}
