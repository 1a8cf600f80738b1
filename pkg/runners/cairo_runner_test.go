package runners_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/runners"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

func TestNewCairoRunnerInvalidBuiltin(t *testing.T) {
	programData := []memory.MaybeRelocatable{*memory.NewMaybeRelocatableFelt(lambdaworks.FeltOne())}
	emptyIdentifiers := make(map[string]vm.Identifier)
	program := vm.Program{Data: programData, Builtins: []string{"fake_builtin"}, Identifiers: &emptyIdentifiers}

	_, err := runners.NewCairoRunner(program)
	require.Error(t, err, "expected creating a CairoRunner with a fake builtin to fail")
}

func TestInitializeRunnerNoBuiltinsEmptyProgram(t *testing.T) {
	emptyIdentifiers := make(map[string]vm.Identifier)
	program := vm.Program{Data: []memory.MaybeRelocatable{}, Identifiers: &emptyIdentifiers}

	runner, err := runners.NewCairoRunner(program)
	require.NoError(t, err)

	endPtr, err := runner.Initialize()
	require.NoError(t, err)
	require.Equal(t, memory.Relocatable{SegmentIndex: 3, Offset: 0}, endPtr)

	require.Equal(t, memory.Relocatable{SegmentIndex: 0, Offset: 0}, runner.ProgramBase)
	require.Equal(t, memory.Relocatable{SegmentIndex: 0, Offset: 0}, runner.Vm.RunContext.Pc)
	require.Equal(t, memory.Relocatable{SegmentIndex: 1, Offset: 2}, runner.Vm.RunContext.Ap)
	require.Equal(t, memory.Relocatable{SegmentIndex: 1, Offset: 2}, runner.Vm.RunContext.Fp)

	_, ok := runner.Vm.Segments.Memory.Get(memory.Relocatable{SegmentIndex: 0, Offset: 0})
	require.False(t, ok, "expected 0:0 to be empty for an empty program")

	returnFP, ok := runner.Vm.Segments.Memory.Get(memory.Relocatable{SegmentIndex: 1, Offset: 0})
	require.True(t, ok)
	returnFPRel, ok := returnFP.GetRelocatable()
	require.True(t, ok)
	require.Equal(t, memory.Relocatable{SegmentIndex: 2, Offset: 0}, returnFPRel)

	endPtrCell, ok := runner.Vm.Segments.Memory.Get(memory.Relocatable{SegmentIndex: 1, Offset: 1})
	require.True(t, ok)
	endPtrRel, ok := endPtrCell.GetRelocatable()
	require.True(t, ok)
	require.Equal(t, memory.Relocatable{SegmentIndex: 3, Offset: 0}, endPtrRel)
}

func TestInitializeRunnerNoBuiltinsNonEmptyProgram(t *testing.T) {
	programData := []memory.MaybeRelocatable{*memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(1))}
	emptyIdentifiers := make(map[string]vm.Identifier)
	program := vm.Program{Data: programData, Identifiers: &emptyIdentifiers}

	runner, err := runners.NewCairoRunner(program)
	require.NoError(t, err)

	endPtr, err := runner.Initialize()
	require.NoError(t, err)
	require.Equal(t, memory.Relocatable{SegmentIndex: 3, Offset: 0}, endPtr)

	cell, ok := runner.Vm.Segments.Memory.Get(memory.Relocatable{SegmentIndex: 0, Offset: 0})
	require.True(t, ok)
	felt, ok := cell.GetFelt()
	require.True(t, ok)
	require.Equal(t, lambdaworks.FeltFromUint64(1), felt)
}

func TestInitializeRunnerWithBuiltinsShiftsSegments(t *testing.T) {
	emptyIdentifiers := make(map[string]vm.Identifier)
	program := vm.Program{Data: []memory.MaybeRelocatable{}, Builtins: []string{"range_check"}, Identifiers: &emptyIdentifiers}

	runner, err := runners.NewCairoRunner(program)
	require.NoError(t, err)

	endPtr, err := runner.Initialize()
	require.NoError(t, err)
	// program(0), execution(1), range_check(2), return_fp(3), end(4).
	require.Equal(t, memory.Relocatable{SegmentIndex: 4, Offset: 0}, endPtr)

	// the builtin's own InitialStack entry (its segment base) must precede
	// return_fp and end on the execution stack.
	builtinStackCell, ok := runner.Vm.Segments.Memory.Get(memory.Relocatable{SegmentIndex: 1, Offset: 0})
	require.True(t, ok)
	builtinStackRel, ok := builtinStackCell.GetRelocatable()
	require.True(t, ok)
	require.Equal(t, memory.Relocatable{SegmentIndex: 2, Offset: 0}, builtinStackRel)

	returnFPCell, ok := runner.Vm.Segments.Memory.Get(memory.Relocatable{SegmentIndex: 1, Offset: 1})
	require.True(t, ok)
	returnFPRel, ok := returnFPCell.GetRelocatable()
	require.True(t, ok)
	require.Equal(t, memory.Relocatable{SegmentIndex: 3, Offset: 0}, returnFPRel)

	require.Equal(t, memory.Relocatable{SegmentIndex: 1, Offset: 3}, runner.Vm.RunContext.Ap)
}

// TestRunUntilPcHaltsOnRet runs a single-instruction program: a Ret whose
// dst and op1 are plain memory reads of the pushed stack frame (return_fp at
// fp-2, end at fp-1); no deduction is involved.
func TestRunUntilPcHaltsOnRet(t *testing.T) {
	retEncoded, err := vm.DecodeInstruction(0x208b_7fff_7fff_7ffe)
	require.NoError(t, err)
	require.Equal(t, vm.Ret, retEncoded.Opcode)

	programData := []memory.MaybeRelocatable{
		*memory.NewMaybeRelocatableFelt(lambdaworks.FeltFromUint64(0x208b_7fff_7fff_7ffe)),
	}
	emptyIdentifiers := make(map[string]vm.Identifier)
	program := vm.Program{Data: programData, Identifiers: &emptyIdentifiers}

	runner, err := runners.NewCairoRunner(program)
	require.NoError(t, err)
	endPtr, err := runner.Initialize()
	require.NoError(t, err)

	err = runner.RunUntilPc(endPtr, 16)
	require.NoError(t, err)
	require.Equal(t, uint64(1), runner.Vm.CurrentStep)

	require.NoError(t, runner.Relocate())
	require.Len(t, runner.Vm.RelocatedTrace, 1)
}

// TestRunUntilPcReportsEndOfProgram runs an empty program, so the very
// first fetch has nothing to read; RunUntilPc must translate that into
// EndOfProgram rather than leak the vm package's InstructionFetchingFailed
// kind.
func TestRunUntilPcReportsEndOfProgram(t *testing.T) {
	emptyIdentifiers := make(map[string]vm.Identifier)
	program := vm.Program{Data: []memory.MaybeRelocatable{}, Identifiers: &emptyIdentifiers}

	runner, err := runners.NewCairoRunner(program)
	require.NoError(t, err)
	endPtr, err := runner.Initialize()
	require.NoError(t, err)

	err = runner.RunUntilPc(endPtr, 16)
	require.Error(t, err)

	runnerErr, ok := err.(*runners.RunnerError)
	require.True(t, ok, "expected a *runners.RunnerError, got %T", err)
	require.Equal(t, runners.EndOfProgram, runnerErr.Kind)
}
