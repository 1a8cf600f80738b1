package vm

import "github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"

// RunContext holds the three mutable registers. Pc always points into the
// program segment; Ap and Fp always point into the execution segment.
type RunContext struct {
	Pc memory.Relocatable
	Ap memory.Relocatable
	Fp memory.Relocatable
}

func baseFor(reg Register, rc *RunContext) memory.Relocatable {
	if reg == AP {
		return rc.Ap
	}
	return rc.Fp
}

// ComputeDstAddr resolves dst_addr: base (ap or fp per dst_reg) plus off_0.
func (rc *RunContext) ComputeDstAddr(i Instruction) (memory.Relocatable, error) {
	return baseFor(i.DstReg, rc).AddInt(int64(i.Off0))
}

// ComputeOp0Addr resolves op0_addr: base (ap or fp per op0_reg) plus off_1.
func (rc *RunContext) ComputeOp0Addr(i Instruction) (memory.Relocatable, error) {
	return baseFor(i.Op0Reg, rc).AddInt(int64(i.Off1))
}

// ComputeOp1Addr resolves op1_addr, whose base depends on i.Op1Addr: pc for
// Imm (requiring off_2 == 1), ap/fp for AP/FP, or the relocatable value
// already stored at op0_addr for Op0.
func (rc *RunContext) ComputeOp1Addr(i Instruction, op0 *memory.MaybeRelocatable) (memory.Relocatable, error) {
	var base memory.Relocatable
	switch i.Op1Addr {
	case Op1SrcImm:
		if i.Off2 != 1 {
			return memory.Relocatable{}, newError(ImmShouldBe1, "immediate operand must carry off_2 == 1, got %d", i.Off2)
		}
		base = rc.Pc
	case Op1SrcAP:
		base = rc.Ap
	case Op1SrcFP:
		base = rc.Fp
	case Op1SrcOp0:
		if op0 == nil {
			return memory.Relocatable{}, newError(UnknownOp0, "op1_addr depends on an op0 cell that has not been read yet")
		}
		rel, ok := op0.GetRelocatable()
		if !ok {
			return memory.Relocatable{}, &memory.MemoryError{
				Kind: memory.ExpectedRelocatable,
				Msg:  "op0 cell used as op1's base does not hold an address",
			}
		}
		base = rel
	default:
		return memory.Relocatable{}, newError(InvalidOp1Reg, "unknown op1_src %v", i.Op1Addr)
	}
	addr, addErr := base.AddInt(int64(i.Off2))
	if addErr != nil {
		return memory.Relocatable{}, addErr
	}
	return addr, nil
}
