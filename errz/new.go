package errz

// NewStackUnderflow returns a StackUnderflow error.
func NewStackUnderflow() *Error {
	return &Error{Kind: StackUnderflow}
}

// NewCaptureEmptyEnvironment returns an error for a template needing the
// given number of captures that was captured without an environment.
func NewCaptureEmptyEnvironment(needed int) *Error {
	return &Error{Kind: CaptureEmptyEnvironment, Index: needed}
}

// NewNonReferenceCapture returns an error for capture slot index holding a
// value of type typ.
func NewNonReferenceCapture(index int, typ string) *Error {
	return &Error{Kind: NonReferenceCapture, Index: index, Type: typ}
}

// NewOutOfRange returns an error of one of the range-checking kinds.
func NewOutOfRange(kind ErrorKind, index, count int) *Error {
	return &Error{Kind: kind, Index: index, Count: count}
}

// NewUndefinedInstruction returns an error for an unknown opcode found at the
// given word offset.
func NewUndefinedInstruction(opcode, offset int) *Error {
	return &Error{Kind: UndefinedInstruction, Index: opcode, Count: offset}
}

// NewNotCallable returns an error for a call whose subject register holds a
// value of type typ.
func NewNotCallable(register int, typ string) *Error {
	return &Error{Kind: NotCallable, Index: register, Type: typ}
}

// NewTooManyArguments returns an error for a call passing args arguments to
// a callee with the given register count.
func NewTooManyArguments(args, registers int) *Error {
	return &Error{Kind: TooManyArguments, Index: args, Count: registers}
}

// NewCallDepthExceeded returns an error for a call at the given depth.
func NewCallDepthExceeded(depth, limit int) *Error {
	return &Error{Kind: CallDepthExceeded, Index: depth, Count: limit}
}

// NewHalted returns an error for execution that was stopped early.
func NewHalted(detail string, cause error) *Error {
	return &Error{Kind: Halted, Detail: detail, Cause: cause}
}

// NewInvalidProgram wraps a validation failure.
func NewInvalidProgram(cause error) *Error {
	return &Error{Kind: InvalidProgram, Detail: "invalid program", Cause: cause}
}
