// Package runners implements the Cairo runner: program loading, segment
// layout, the initial stack frame, and the run-until-pc / relocation
// lifecycle spec.md §4.10 describes.
package runners

import (
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/internal/runnerlog"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/builtins"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

// knownBuiltins is the set of builtin segment names this runner can
// allocate a (no-op) stand-in for. A name outside this set is a malformed
// program, not a missing feature, so NewCairoRunner rejects it up front.
var knownBuiltins = map[string]bool{
	"output":        true,
	"pedersen":      true,
	"range_check":   true,
	"ecdsa":         true,
	"bitwise":       true,
	"ec_op":         true,
	"keccak":        true,
	"poseidon":      true,
	"segment_arena": true,
}

// CairoRunner owns the VM, the compiled program, and the layout decisions
// made at initialization time.
type CairoRunner struct {
	Program       vm.Program
	Vm            *vm.VirtualMachine
	ProgramBase   memory.Relocatable
	ExecutionBase memory.Relocatable
	FinalPc       memory.Relocatable
	MaxSteps      uint64
}

// NewCairoRunner validates the program's builtin list and constructs a
// runner with one BuiltinRunner per requested builtin, in program order.
func NewCairoRunner(program vm.Program) (*CairoRunner, error) {
	virtualMachine := vm.NewVirtualMachine()
	for _, name := range program.Builtins {
		if !knownBuiltins[name] {
			return nil, newError(InvalidBuiltinName, "unknown builtin %q", name)
		}
		virtualMachine.BuiltinRunners = append(virtualMachine.BuiltinRunners, builtins.NewNoOpBuiltinRunner(name))
	}
	return &CairoRunner{Program: program, Vm: virtualMachine}, nil
}

// Initialize lays out segments per spec.md §4.10 steps 1-7 and returns the
// final_pc the fetch loop should stop at.
func (r *CairoRunner) Initialize() (memory.Relocatable, error) {
	r.ProgramBase = r.Vm.Segments.AddSegment()
	r.ExecutionBase = r.Vm.Segments.AddSegment()

	for _, runner := range r.Vm.BuiltinRunners {
		runner.InitializeSegments(r.Vm.Segments)
		runner.AddValidationRule(r.Vm.Segments.Memory)
	}

	returnFPBase := r.Vm.Segments.AddSegment()
	endPtr := r.Vm.Segments.AddSegment()

	stack := make([]memory.MaybeRelocatable, 0, len(r.Vm.BuiltinRunners)+2)
	for _, runner := range r.Vm.BuiltinRunners {
		stack = append(stack, runner.InitialStack()...)
	}
	stack = append(stack,
		*memory.NewMaybeRelocatableRelocatable(returnFPBase),
		*memory.NewMaybeRelocatableRelocatable(endPtr),
	)

	if _, err := r.Vm.Segments.LoadData(r.ProgramBase, r.Program.Data); err != nil {
		return memory.Relocatable{}, err
	}
	executionTop, err := r.Vm.Segments.LoadData(r.ExecutionBase, stack)
	if err != nil {
		return memory.Relocatable{}, err
	}

	initialPc, err := r.ProgramBase.AddUint(r.Program.MainOffset)
	if err != nil {
		return memory.Relocatable{}, err
	}

	r.Vm.RunContext = vm.RunContext{
		Pc: initialPc,
		Ap: executionTop,
		Fp: executionTop,
	}
	r.FinalPc = endPtr

	return endPtr, nil
}

// RunUntilPc steps the VM until pc equals end, bounded by maxSteps when
// maxSteps > 0.
func (r *CairoRunner) RunUntilPc(end memory.Relocatable, maxSteps uint64) error {
	for r.Vm.RunContext.Pc != end {
		if maxSteps > 0 && r.Vm.CurrentStep >= maxSteps {
			return newError(MaxStepsExceeded, "exceeded %d steps before reaching pc %s", maxSteps, end)
		}
		if err := r.step(); err != nil {
			return err
		}
	}
	return nil
}

// RunFor executes exactly steps additional cycles past wherever the VM
// currently is, with no max-steps bound. Nothing in this module calls it;
// the CLI's --proof-mode does not pad the trace.
func (r *CairoRunner) RunFor(steps uint64) error {
	target := r.Vm.CurrentStep + steps
	for r.Vm.CurrentStep < target {
		if err := r.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs one VM cycle, logging it (at debug level, when requested) and
// translating a fetch past the program's own instructions into EndOfProgram
// rather than leaking the vm package's InstructionFetchingFailed kind.
func (r *CairoRunner) step() error {
	stepIndex := r.Vm.CurrentStep
	pc, ap, fp := r.Vm.RunContext.Pc, r.Vm.RunContext.Ap, r.Vm.RunContext.Fp

	if err := r.Vm.Step(); err != nil {
		if vmErr, ok := err.(*vm.VirtualMachineError); ok && vmErr.Kind == vm.InstructionFetchingFailed {
			return newError(EndOfProgram, "ran out of program before reaching the expected pc: %s", vmErr.Msg)
		}
		return err
	}

	runnerlog.Step(stepIndex, pc, ap, fp, r.Vm.LastInstruction)
	return nil
}

// Relocate finalizes effective sizes and produces the relocated trace and
// memory, with no temporary-segment rules (the runner itself never opens
// one; hint executors that do must relocate through the VM directly).
func (r *CairoRunner) Relocate() error {
	return r.Vm.Relocate(nil)
}
