package eval

import (
	"errors"
	"fmt"
)

var (
	ErrUnboundVariable  = errors.New("unbound variable")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrType             = errors.New("type error")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrIntegerOverflow  = errors.New("integer overflow")
	ErrJumpOutsideLoop  = errors.New("jump outside loop")
	ErrLoopLimit        = errors.New("loop iteration limit exceeded")
)

// RunTimeError aborts the statement being executed. Kind is one of the
// sentinel errors above.
type RunTimeError struct {
	Kind error
	Line int
	Msg  string
}

func (self *RunTimeError) Error() string {
	if self.Line <= 0 {
		return fmt.Sprintf("Runtime error: %s", self.Msg)
	}
	return fmt.Sprintf("Runtime error at line %d: %s", self.Line, self.Msg)
}

func (self *RunTimeError) Unwrap() error {
	return self.Kind
}

func runtimeErr(kind error, line int, format string, args ...any) error {
	return &RunTimeError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}
