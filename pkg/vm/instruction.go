package vm

// Register names an AP/FP-relative operand base.
type Register int

const (
	AP Register = iota
	FP
)

// Op1Src names where op1's base address comes from.
type Op1Src int

const (
	Op1SrcOp0 Op1Src = iota
	Op1SrcImm
	Op1SrcFP
	Op1SrcAP
)

// ResLogic names how res is computed from op0 and op1.
type ResLogic int

const (
	ResOp1 ResLogic = iota
	ResAdd
	ResMul
	ResUnconstrained
)

// PcUpdate names how pc advances after a step.
type PcUpdate int

const (
	PcUpdateRegular PcUpdate = iota
	PcUpdateJump
	PcUpdateJumpRel
	PcUpdateJnz
)

// ApUpdate names how ap advances after a step.
type ApUpdate int

const (
	ApUpdateRegular ApUpdate = iota
	ApUpdateAdd
	ApUpdateAdd1
	ApUpdateAdd2
)

// FpUpdate names how fp advances after a step.
type FpUpdate int

const (
	FpUpdateRegular FpUpdate = iota
	FpUpdateAPPlus2
	FpUpdateDst
)

// Opcode names the instruction's semantic contract.
type Opcode int

const (
	NOp Opcode = iota
	AssertEq
	Call
	Ret
)

// Instruction is the decoded, immutable record spec.md §3 names: three
// signed 16-bit offsets plus the eight flag fields.
type Instruction struct {
	Off0 int16
	Off1 int16
	Off2 int16

	DstReg   Register
	Op0Reg   Register
	Op1Addr  Op1Src
	ResLogic ResLogic
	PcUpdate PcUpdate
	ApUpdate ApUpdate
	FpUpdate FpUpdate
	Opcode   Opcode
}

// Size is 2 when op1 is read from the immediate following this
// instruction's encoded word, 1 otherwise.
func (i Instruction) Size() uint64 {
	if i.Op1Addr == Op1SrcImm {
		return 2
	}
	return 1
}

const offsetBias = 1 << 15

func decodeSignedOffset(raw uint64) int16 {
	return int16(int64(raw) - offsetBias)
}

// DecodeInstruction decodes a 64-bit encoded word per spec.md §4.5: flags
// in the high 16 bits, three 16-bit offsets biased by 2^15 in the low 48.
func DecodeInstruction(encoded uint64) (Instruction, error) {
	if encoded&(1<<63) != 0 {
		return Instruction{}, newError(NonZeroHighBit, "bit 63 of encoded instruction %#x is set", encoded)
	}

	off0 := decodeSignedOffset(encoded & 0xFFFF)
	off1 := decodeSignedOffset((encoded >> 16) & 0xFFFF)
	off2 := decodeSignedOffset((encoded >> 32) & 0xFFFF)

	// flags holds bits 48-63 of encoded, right-aligned. Bit 63 (flags bit
	// 15) is the high bit already rejected above; the rest pack, from the
	// low bit up: dst_reg(1), op0_reg(1), op1_src(3), res_logic(2),
	// pc_update(3), ap_update(2), opcode(3).
	flags := encoded >> 48

	dstReg := AP
	if flags&1 != 0 {
		dstReg = FP
	}
	op0Reg := AP
	if (flags>>1)&1 != 0 {
		op0Reg = FP
	}

	op1SrcBits := (flags >> 2) & 0x7
	var op1Addr Op1Src
	switch op1SrcBits {
	case 0:
		op1Addr = Op1SrcOp0
	case 1:
		op1Addr = Op1SrcImm
	case 2:
		op1Addr = Op1SrcFP
	case 4:
		op1Addr = Op1SrcAP
	default:
		return Instruction{}, newError(InvalidOp1Reg, "invalid op1_src bits %#x", op1SrcBits)
	}

	pcUpdateBits := (flags >> 7) & 0x7
	var pcUpdate PcUpdate
	switch pcUpdateBits {
	case 0:
		pcUpdate = PcUpdateRegular
	case 1:
		pcUpdate = PcUpdateJump
	case 2:
		pcUpdate = PcUpdateJumpRel
	case 4:
		pcUpdate = PcUpdateJnz
	default:
		return Instruction{}, newError(InvalidPcUpdate, "invalid pc_update bits %#x", pcUpdateBits)
	}

	resLogicBits := (flags >> 5) & 0x3
	var resLogic ResLogic
	switch resLogicBits {
	case 0:
		if pcUpdate == PcUpdateJnz {
			resLogic = ResUnconstrained
		} else {
			resLogic = ResOp1
		}
	case 1:
		resLogic = ResAdd
	case 2:
		resLogic = ResMul
	default:
		return Instruction{}, newError(InvalidResLogic, "invalid res_logic bits %#x", resLogicBits)
	}

	opcodeBits := (flags >> 12) & 0x7
	var opcode Opcode
	switch opcodeBits {
	case 0:
		opcode = NOp
	case 1:
		opcode = Call
	case 2:
		opcode = Ret
	case 4:
		opcode = AssertEq
	default:
		return Instruction{}, newError(InvalidOpcode, "invalid opcode bits %#x", opcodeBits)
	}

	apUpdateBits := (flags >> 10) & 0x3
	var apUpdate ApUpdate
	switch apUpdateBits {
	case 0:
		if opcode == Call {
			apUpdate = ApUpdateAdd2
		} else {
			apUpdate = ApUpdateRegular
		}
	case 1:
		apUpdate = ApUpdateAdd
	case 2:
		apUpdate = ApUpdateAdd1
	default:
		return Instruction{}, newError(InvalidApUpdate, "invalid ap_update bits %#x", apUpdateBits)
	}

	fpUpdate := FpUpdateRegular
	switch opcode {
	case Call:
		fpUpdate = FpUpdateAPPlus2
	case Ret:
		fpUpdate = FpUpdateDst
	}

	return Instruction{
		Off0:     off0,
		Off1:     off1,
		Off2:     off2,
		DstReg:   dstReg,
		Op0Reg:   op0Reg,
		Op1Addr:  op1Addr,
		ResLogic: resLogic,
		PcUpdate: pcUpdate,
		ApUpdate: apUpdate,
		FpUpdate: fpUpdate,
		Opcode:   opcode,
	}, nil
}
