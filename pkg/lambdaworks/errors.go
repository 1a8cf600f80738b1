package lambdaworks

import "fmt"

// FieldErrorKind discriminates the flat error taxonomy of the field layer,
// so callers can switch on a kind instead of matching strings.
type FieldErrorKind string

const (
	DivisionByZero           FieldErrorKind = "DivisionByZero"
	InstructionEncodingError FieldErrorKind = "InstructionEncodingError"
)

type FieldError struct {
	Kind FieldErrorKind
	Msg  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newFieldError(kind FieldErrorKind, msg string) *FieldError {
	return &FieldError{Kind: kind, Msg: msg}
}
