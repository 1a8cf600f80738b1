package vm

import "fmt"

// ErrorKind discriminates the flat error taxonomy of the decode/step/
// register-update layers (spec §7's "Decode", "Fetch", "Deduction/
// assertion" and "Register update" kinds; "Runner" kinds live in
// pkg/runners).
type ErrorKind string

const (
	NonZeroHighBit  ErrorKind = "NonZeroHighBit"
	InvalidOp1Reg   ErrorKind = "InvalidOp1Reg"
	InvalidResLogic ErrorKind = "InvalidResLogic"
	InvalidPcUpdate ErrorKind = "InvalidPcUpdate"
	InvalidApUpdate ErrorKind = "InvalidApUpdate"
	InvalidOpcode   ErrorKind = "InvalidOpcode"

	InstructionFetchingFailed ErrorKind = "InstructionFetchingFailed"
	InstructionEncodingError  ErrorKind = "InstructionEncodingError"

	ImmShouldBe1 ErrorKind = "ImmShouldBe1"
	UnknownOp0   ErrorKind = "UnknownOp0"
	UnknownOp1   ErrorKind = "UnknownOp1"

	NoDst              ErrorKind = "NoDst"
	DiffAssertValues   ErrorKind = "DiffAssertValues"
	CallDidNotSaveFP   ErrorKind = "CallDidNotSaveFP"
	CallDidNotReturnFP ErrorKind = "CallDidNotReturnFP"

	JumpNotRelocatable   ErrorKind = "JumpNotRelocatable"
	UnconstrainedResJump ErrorKind = "UnconstrainedResJump"
	UnconstrainedResAdd  ErrorKind = "UnconstrainedResAdd"
	FpUpdateInt          ErrorKind = "FpUpdateInt"
)

// VirtualMachineError is the vm package's own error type, carrying one of
// the ErrorKind constants above. Errors from pkg/vm/memory (addressing,
// typing, write-once) pass through unchanged.
type VirtualMachineError struct {
	Kind ErrorKind
	Msg  string
}

func (e *VirtualMachineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) *VirtualMachineError {
	return &VirtualMachineError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
