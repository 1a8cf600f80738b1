package vm

import (
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/builtins"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/lambdaworks"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

// VirtualMachine runs Cairo assembly and produces an execution trace.
type VirtualMachine struct {
	RunContext      RunContext
	CurrentStep     uint64
	Segments        *memory.MemorySegmentManager
	BuiltinRunners  []builtins.BuiltinRunner
	Trace           []TraceEntry
	RelocatedTrace  []RelocatedTraceEntry
	RelocatedMemory map[uint64]lambdaworks.Felt

	// LastInstruction is the instruction decoded by the most recent Step
	// that got past decoding (whether or not the rest of that step
	// succeeded), for a caller (the runner) that wants to log it.
	// The vm package itself never logs.
	LastInstruction *Instruction
}

func NewVirtualMachine() *VirtualMachine {
	return &VirtualMachine{
		Segments:       memory.NewMemorySegmentManager(),
		BuiltinRunners: make([]builtins.BuiltinRunner, 0, 9),
		Trace:          make([]TraceEntry, 0),
	}
}

// Step runs one fetch-decode-execute cycle at the current pc.
func (vm *VirtualMachine) Step() error {
	encoded, ok := vm.Segments.Memory.Get(vm.RunContext.Pc)
	if !ok {
		return newError(InstructionFetchingFailed, "no instruction at %s", vm.RunContext.Pc)
	}

	encodedFelt, ok := encoded.GetFelt()
	if !ok {
		return newError(InstructionEncodingError, "cell at %s does not hold a field value", vm.RunContext.Pc)
	}

	encodedUint, err := encodedFelt.ToU64()
	if err != nil {
		return newError(InstructionEncodingError, "encoded instruction at %s does not fit in 64 bits", vm.RunContext.Pc)
	}

	instruction, err := DecodeInstruction(encodedUint)
	if err != nil {
		return err
	}
	vm.LastInstruction = &instruction

	return vm.RunInstruction(&instruction)
}

// RunInstruction computes operands, checks the opcode's post-conditions,
// appends the pre-step trace entry, and commits the register update.
func (vm *VirtualMachine) RunInstruction(instruction *Instruction) error {
	operands, err := vm.ComputeOperands(*instruction)
	if err != nil {
		return err
	}

	if err := vm.OpcodeAssertions(*instruction, operands); err != nil {
		return err
	}

	vm.Trace = append(vm.Trace, TraceEntry{Pc: vm.RunContext.Pc, Ap: vm.RunContext.Ap, Fp: vm.RunContext.Fp})

	if err := vm.UpdateRegisters(instruction, &operands); err != nil {
		return err
	}

	vm.CurrentStep++
	return nil
}

// Relocate computes effective segment sizes, relocates the trace and the
// memory, and stores both on the VM. When the trace is empty, only the
// effective sizes are computed; the trace and memory are not relocated.
func (vm *VirtualMachine) Relocate(tempRules map[int]memory.Relocatable) error {
	vm.Segments.ComputeEffectiveSizes()
	if len(vm.Trace) == 0 {
		return nil
	}

	relocationTable := vm.Segments.RelocateSegments()
	relocatedMemory, err := vm.Segments.RelocateMemory(tempRules)
	if err != nil {
		return err
	}

	vm.RelocatedTrace = RelocateTrace(vm.Trace, relocationTable)
	vm.RelocatedMemory = relocatedMemory
	return nil
}

// Operands is the (dst, op0, op1, res) tuple a step resolves.
type Operands struct {
	Dst memory.MaybeRelocatable
	Res *memory.MaybeRelocatable
	Op0 memory.MaybeRelocatable
	Op1 memory.MaybeRelocatable
}

// OpcodeAssertions checks the post-conditions spec.md §4.7 attaches to each
// opcode; any violation is fatal.
func (vm *VirtualMachine) OpcodeAssertions(instruction Instruction, operands Operands) error {
	switch instruction.Opcode {
	case AssertEq:
		if operands.Res == nil || !operands.Res.IsEqual(operands.Dst) {
			return newError(DiffAssertValues, "assert_eq failed: dst=%v res=%v", operands.Dst, operands.Res)
		}
	case Call:
		expectedOp0, err := vm.RunContext.Pc.AddUint(instruction.Size())
		if err != nil {
			return err
		}
		returnPC := *memory.NewMaybeRelocatableRelocatable(expectedOp0)
		if !operands.Op0.IsEqual(returnPC) {
			return newError(CallDidNotSaveFP, "call instruction did not write the return pc into op0")
		}

		dstRelocatable, ok := operands.Dst.GetRelocatable()
		if !ok || dstRelocatable != vm.RunContext.Fp {
			return newError(CallDidNotReturnFP, "call instruction did not write the caller's fp into dst")
		}
	}
	return nil
}

// DeduceDst fills in dst when it was not read from memory, per spec.md
// §4.7 step 3.
func (vm *VirtualMachine) DeduceDst(instruction Instruction, res *memory.MaybeRelocatable) (memory.MaybeRelocatable, bool) {
	switch instruction.Opcode {
	case AssertEq:
		if res == nil {
			return memory.MaybeRelocatable{}, false
		}
		return *res, true
	case Call:
		return *memory.NewMaybeRelocatableRelocatable(vm.RunContext.Fp), true
	}
	return memory.MaybeRelocatable{}, false
}

// DeduceOp0 attempts to deduce op0 (and, incidentally, res) from dst and
// op1 per spec.md §4.7 step 1.
func (vm *VirtualMachine) DeduceOp0(instruction *Instruction, dst *memory.MaybeRelocatable, op1 *memory.MaybeRelocatable) (deducedOp0 *memory.MaybeRelocatable, deducedRes *memory.MaybeRelocatable, err error) {
	switch instruction.Opcode {
	case Call:
		rel, addErr := vm.RunContext.Pc.AddUint(instruction.Size())
		if addErr != nil {
			return nil, nil, addErr
		}
		return memory.NewMaybeRelocatableRelocatable(rel), nil, nil
	case AssertEq:
		switch instruction.ResLogic {
		case ResAdd:
			if dst != nil && op1 != nil {
				deduced, subErr := dst.Sub(*op1)
				if subErr != nil {
					return nil, nil, subErr
				}
				return &deduced, dst, nil
			}
		case ResMul:
			if dst != nil && op1 != nil {
				dstFelt, dstOk := dst.GetFelt()
				op1Felt, op1Ok := op1.GetFelt()
				if dstOk && op1Ok && !op1Felt.IsZero() {
					quotient, divErr := dstFelt.Div(op1Felt)
					if divErr != nil {
						return nil, nil, divErr
					}
					return memory.NewMaybeRelocatableFelt(quotient), dst, nil
				}
			}
		}
	}
	return nil, nil, nil
}

// DeduceOp1 attempts to deduce op1 (and, incidentally, res) from dst and
// op0 per spec.md §4.7 step 1.
func (vm *VirtualMachine) DeduceOp1(instruction *Instruction, dst *memory.MaybeRelocatable, op0 *memory.MaybeRelocatable) (deducedOp1 *memory.MaybeRelocatable, deducedRes *memory.MaybeRelocatable, err error) {
	if instruction.Opcode != AssertEq {
		return nil, nil, nil
	}
	switch instruction.ResLogic {
	case ResOp1:
		if dst != nil {
			return dst, dst, nil
		}
	case ResAdd:
		if op0 != nil && dst != nil {
			deduced, subErr := dst.Sub(*op0)
			if subErr != nil {
				return nil, nil, subErr
			}
			return &deduced, dst, nil
		}
	case ResMul:
		if dst != nil && op0 != nil {
			dstFelt, dstOk := dst.GetFelt()
			op0Felt, op0Ok := op0.GetFelt()
			if dstOk && op0Ok && !op0Felt.IsZero() {
				quotient, divErr := dstFelt.Div(op0Felt)
				if divErr != nil {
					return nil, nil, divErr
				}
				res := memory.NewMaybeRelocatableFelt(quotient)
				return res, dst, nil
			}
		}
	}
	return nil, nil, nil
}

// ComputeRes computes res from op0, op1 and the instruction's res_logic,
// per spec.md §4.7 step 2.
func (vm *VirtualMachine) ComputeRes(instruction Instruction, op0 memory.MaybeRelocatable, op1 memory.MaybeRelocatable) (*memory.MaybeRelocatable, error) {
	switch instruction.ResLogic {
	case ResOp1:
		return &op1, nil
	case ResAdd:
		sum, err := op0.Add(op1)
		if err != nil {
			return nil, err
		}
		return &sum, nil
	case ResMul:
		product, err := op0.Mul(op1)
		if err != nil {
			return nil, err
		}
		return &product, nil
	case ResUnconstrained:
		return nil, nil
	}
	return nil, nil
}

// ComputeOperands resolves the three operand addresses, reads whatever is
// already in memory, runs deduction to fill in the gaps, computes res, and
// writes every newly deduced value back (memory enforces write-once).
func (vm *VirtualMachine) ComputeOperands(instruction Instruction) (Operands, error) {
	var res *memory.MaybeRelocatable

	dstAddr, err := vm.RunContext.ComputeDstAddr(instruction)
	if err != nil {
		return Operands{}, err
	}
	dst, dstOk := vm.Segments.Memory.Get(dstAddr)
	var dstPtr *memory.MaybeRelocatable
	if dstOk {
		dstPtr = &dst
	}

	op0Addr, err := vm.RunContext.ComputeOp0Addr(instruction)
	if err != nil {
		return Operands{}, err
	}
	op0Cell, op0Ok := vm.Segments.Memory.Get(op0Addr)
	var op0Ptr *memory.MaybeRelocatable
	if op0Ok {
		op0Ptr = &op0Cell
	}

	op1Addr, err := vm.RunContext.ComputeOp1Addr(instruction, op0Ptr)
	if err != nil {
		return Operands{}, err
	}
	op1Cell, op1Ok := vm.Segments.Memory.Get(op1Addr)
	var op1Ptr *memory.MaybeRelocatable
	if op1Ok {
		op1Ptr = &op1Cell
	}

	var op0 memory.MaybeRelocatable
	if op0Ok {
		op0 = op0Cell
	} else {
		op0, res, err = vm.computeOp0Deductions(op0Addr, &instruction, dstPtr, op1Ptr)
		if err != nil {
			return Operands{}, err
		}
	}

	var op1 memory.MaybeRelocatable
	if op1Ok {
		op1 = op1Cell
	} else {
		op1, err = vm.computeOp1Deductions(op1Addr, &instruction, dstPtr, op0Ptr, res)
		if err != nil {
			return Operands{}, err
		}
	}

	if res == nil {
		res, err = vm.ComputeRes(instruction, op0, op1)
		if err != nil {
			return Operands{}, err
		}
	}

	if !dstOk {
		deduced, ok := vm.DeduceDst(instruction, res)
		if !ok {
			return Operands{}, newError(NoDst, "dst at %s could not be read or deduced", dstAddr)
		}
		dst = deduced
		if err := vm.Segments.Insert(dstAddr, dst); err != nil {
			return Operands{}, err
		}
	}

	return Operands{Dst: dst, Op0: op0, Op1: op1, Res: res}, nil
}

// computeOp0Deductions runs the builtin hook, then plain deduction, for
// op0, and writes back whatever it found.
func (vm *VirtualMachine) computeOp0Deductions(op0Addr memory.Relocatable, instruction *Instruction, dst *memory.MaybeRelocatable, op1 *memory.MaybeRelocatable) (memory.MaybeRelocatable, *memory.MaybeRelocatable, error) {
	op0, ok, err := vm.DeduceMemoryCell(op0Addr)
	if err != nil {
		return memory.MaybeRelocatable{}, nil, err
	}
	var deducedRes *memory.MaybeRelocatable
	if !ok {
		var deducedOp0 *memory.MaybeRelocatable
		deducedOp0, deducedRes, err = vm.DeduceOp0(instruction, dst, op1)
		if err != nil {
			return memory.MaybeRelocatable{}, nil, err
		}
		if deducedOp0 != nil {
			op0 = *deducedOp0
			ok = true
		}
	}
	if !ok {
		return memory.MaybeRelocatable{}, nil, newError(UnknownOp0, "op0 at %s could not be read or deduced", op0Addr)
	}
	if err := vm.Segments.Insert(op0Addr, op0); err != nil {
		return memory.MaybeRelocatable{}, nil, err
	}
	return op0, deducedRes, nil
}

// computeOp1Deductions runs the builtin hook, then plain deduction, for
// op1, and writes back whatever it found.
func (vm *VirtualMachine) computeOp1Deductions(op1Addr memory.Relocatable, instruction *Instruction, dst *memory.MaybeRelocatable, op0 *memory.MaybeRelocatable, res *memory.MaybeRelocatable) (memory.MaybeRelocatable, error) {
	op1, ok, err := vm.DeduceMemoryCell(op1Addr)
	if err != nil {
		return memory.MaybeRelocatable{}, err
	}
	if !ok {
		deducedOp1, _, deduceErr := vm.DeduceOp1(instruction, dst, op0)
		if deduceErr != nil {
			return memory.MaybeRelocatable{}, deduceErr
		}
		if deducedOp1 != nil {
			op1 = *deducedOp1
			ok = true
		}
	}
	if !ok {
		return memory.MaybeRelocatable{}, newError(UnknownOp1, "op1 at %s could not be read or deduced", op1Addr)
	}
	if err := vm.Segments.Insert(op1Addr, op1); err != nil {
		return memory.MaybeRelocatable{}, err
	}
	return op1, nil
}

// UpdateRegisters commits the post-step pc/ap/fp, computed from the
// pre-step registers, in the order spec.md §4.8 requires: fp and ap first
// (both derived from pre-step ap), then pc.
func (vm *VirtualMachine) UpdateRegisters(instruction *Instruction, operands *Operands) error {
	if err := vm.updateFp(instruction, operands); err != nil {
		return err
	}
	if err := vm.updateAp(instruction, operands); err != nil {
		return err
	}
	return vm.updatePc(instruction, operands)
}

func (vm *VirtualMachine) updatePc(instruction *Instruction, operands *Operands) error {
	switch instruction.PcUpdate {
	case PcUpdateRegular:
		newPc, err := vm.RunContext.Pc.AddUint(instruction.Size())
		if err != nil {
			return err
		}
		vm.RunContext.Pc = newPc
	case PcUpdateJump:
		if operands.Res == nil {
			return newError(UnconstrainedResJump, "an unconstrained res cannot be used with pc_update=Jump")
		}
		res, ok := operands.Res.GetRelocatable()
		if !ok {
			return newError(JumpNotRelocatable, "pc_update=Jump requires res to be an address")
		}
		vm.RunContext.Pc = res
	case PcUpdateJumpRel:
		if operands.Res == nil {
			return newError(UnconstrainedResJump, "an unconstrained res cannot be used with pc_update=JumpRel")
		}
		res, ok := operands.Res.GetFelt()
		if !ok {
			return newError(JumpNotRelocatable, "pc_update=JumpRel requires res to be a field value")
		}
		newPc, err := vm.RunContext.Pc.AddFelt(res)
		if err != nil {
			return err
		}
		vm.RunContext.Pc = newPc
	case PcUpdateJnz:
		if operands.Dst.IsZero() {
			newPc, err := vm.RunContext.Pc.AddUint(instruction.Size())
			if err != nil {
				return err
			}
			vm.RunContext.Pc = newPc
		} else {
			newPc, err := vm.RunContext.Pc.AddMaybeRelocatable(operands.Op1)
			if err != nil {
				return err
			}
			vm.RunContext.Pc = newPc
		}
	}
	return nil
}

func (vm *VirtualMachine) updateAp(instruction *Instruction, operands *Operands) error {
	switch instruction.ApUpdate {
	case ApUpdateAdd:
		if operands.Res == nil {
			return newError(UnconstrainedResAdd, "an unconstrained res cannot be used with ap_update=Add")
		}
		newAp, err := vm.RunContext.Ap.AddMaybeRelocatable(*operands.Res)
		if err != nil {
			return err
		}
		vm.RunContext.Ap = newAp
	case ApUpdateAdd1:
		newAp, err := vm.RunContext.Ap.AddUint(1)
		if err != nil {
			return err
		}
		vm.RunContext.Ap = newAp
	case ApUpdateAdd2:
		newAp, err := vm.RunContext.Ap.AddUint(2)
		if err != nil {
			return err
		}
		vm.RunContext.Ap = newAp
	}
	return nil
}

func (vm *VirtualMachine) updateFp(instruction *Instruction, operands *Operands) error {
	switch instruction.FpUpdate {
	case FpUpdateAPPlus2:
		newFp, err := vm.RunContext.Ap.AddUint(2)
		if err != nil {
			return err
		}
		vm.RunContext.Fp = newFp
	case FpUpdateDst:
		if rel, ok := operands.Dst.GetRelocatable(); ok {
			vm.RunContext.Fp = rel
			return nil
		}
		felt, ok := operands.Dst.GetFelt()
		if !ok {
			return newError(FpUpdateInt, "fp_update=Dst requires dst to hold a value")
		}
		newFp, err := vm.RunContext.Fp.AddFelt(felt)
		if err != nil {
			return err
		}
		vm.RunContext.Fp = newFp
	}
	return nil
}

// DeduceMemoryCell asks the builtin runner owning addr's segment, if any,
// to deduce its value. Returns ok=false when no builtin claims addr or the
// builtin has no opinion on it.
func (vm *VirtualMachine) DeduceMemoryCell(addr memory.Relocatable) (memory.MaybeRelocatable, bool, error) {
	if addr.SegmentIndex < 0 {
		return memory.MaybeRelocatable{}, false, nil
	}
	for _, runner := range vm.BuiltinRunners {
		if runner.Base().SegmentIndex == addr.SegmentIndex {
			return runner.DeduceMemoryCell(addr, vm.Segments.Memory)
		}
	}
	return memory.MaybeRelocatable{}, false, nil
}
