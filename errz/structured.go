// Package errz defines the structured errors raised by the Kut virtual
// machine. Every failure carries its Kind plus the offending index and the
// bound it violated, so hosts can produce precise diagnostics without parsing
// message strings.
package errz

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// StackUnderflow indicates a pop from an empty operand stack.
	StackUnderflow ErrorKind = iota + 1
	// CaptureEmptyEnvironment indicates a template that needs captures was
	// captured without an enclosing activation.
	CaptureEmptyEnvironment
	// NonReferenceCapture indicates a capture slot that does not hold a
	// reference cell.
	NonReferenceCapture
	OutOfRangeTemplate
	OutOfRangeLiteral
	OutOfRangeDestinationCapture
	OutOfRangeSourceCapture
	OutOfRangeDestinationRegister
	OutOfRangeSourceRegister
	OutOfRangeSwapRegister
	CaptureOutOfRangeRegister
	CaptureOutOfRangeCapture
	// UndefinedInstruction indicates an opcode byte outside the known set.
	UndefinedInstruction
	// NotCallable indicates a call subject that is not a function.
	NotCallable
	// TooManyArguments indicates more call arguments than callee registers.
	TooManyArguments
	// CallDepthExceeded indicates nested calls beyond the configured limit.
	CallDepthExceeded
	// Halted indicates execution was stopped by an observer or the context.
	Halted
	// InvalidProgram indicates a program rejected by static validation.
	InvalidProgram
)

var kindNames = map[ErrorKind]string{
	StackUnderflow:                "StackUnderflow",
	CaptureEmptyEnvironment:       "CaptureEmptyEnvironment",
	NonReferenceCapture:           "NonReferenceCapture",
	OutOfRangeTemplate:            "OutOfRangeTemplate",
	OutOfRangeLiteral:             "OutOfRangeLiteral",
	OutOfRangeDestinationCapture:  "OutOfRangeDestinationCapture",
	OutOfRangeSourceCapture:       "OutOfRangeSourceCapture",
	OutOfRangeDestinationRegister: "OutOfRangeDestinationRegister",
	OutOfRangeSourceRegister:      "OutOfRangeSourceRegister",
	OutOfRangeSwapRegister:        "OutOfRangeSwapRegister",
	CaptureOutOfRangeRegister:     "CaptureOutOfRangeRegister",
	CaptureOutOfRangeCapture:      "CaptureOutOfRangeCapture",
	UndefinedInstruction:          "UndefinedInstruction",
	NotCallable:                   "NotCallable",
	TooManyArguments:              "TooManyArguments",
	CallDepthExceeded:             "CallDepthExceeded",
	Halted:                        "Halted",
	InvalidProgram:                "InvalidProgram",
}

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "error"
}

// Error is a structured VM error.
//
// Index and Count hold the offending value and the bound it was checked
// against. Their meaning depends on Kind: a register, literal, capture or
// template index for the OutOfRange kinds, the needed capture count for
// CaptureEmptyEnvironment, the opcode and word offset for
// UndefinedInstruction, and so on.
type Error struct {
	Kind  ErrorKind
	Index int
	Count int
	// Type names the runtime type involved, when relevant.
	Type string
	// Detail is free-form context for kinds without a fixed message shape.
	Detail string
	// Trace lists the activations the error propagated through, innermost
	// first.
	Trace []Frame
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

// Message returns the error message without the kind prefix.
func (e *Error) Message() string {
	switch e.Kind {
	case StackUnderflow:
		return "try to pop from empty call stack"
	case CaptureEmptyEnvironment:
		return fmt.Sprintf("%d captures are needed", e.Index)
	case NonReferenceCapture:
		return fmt.Sprintf("try to get capture %d when its type is %s instead of reference", e.Index, e.Type)
	case OutOfRangeTemplate:
		return fmt.Sprintf("try to capture %d when there are %d templates", e.Index, e.Count)
	case OutOfRangeLiteral:
		return fmt.Sprintf("try to get literal %d when there are %d literals", e.Index, e.Count)
	case OutOfRangeDestinationCapture:
		return fmt.Sprintf("try to set to capture %d when there are %d captures", e.Index, e.Count)
	case OutOfRangeSourceCapture:
		return fmt.Sprintf("try to get capture %d when there are %d captures", e.Index, e.Count)
	case OutOfRangeDestinationRegister:
		return fmt.Sprintf("try to set to register %d when there are %d registers", e.Index, e.Count)
	case OutOfRangeSourceRegister:
		return fmt.Sprintf("try to get register %d when there are %d registers", e.Index, e.Count)
	case OutOfRangeSwapRegister:
		return fmt.Sprintf("try to get and set register %d when there are %d registers", e.Index, e.Count)
	case CaptureOutOfRangeRegister:
		return fmt.Sprintf("try to capture register %d when there are %d registers", e.Index, e.Count)
	case CaptureOutOfRangeCapture:
		return fmt.Sprintf("try to capture enclosing capture %d when there are %d captures", e.Index, e.Count)
	case UndefinedInstruction:
		return fmt.Sprintf("undefined instruction with opcode %d at offset %d", e.Index, e.Count)
	case NotCallable:
		return fmt.Sprintf("register %d holds %s, which is not callable", e.Index, e.Type)
	case TooManyArguments:
		return fmt.Sprintf("%d arguments passed to a function with %d registers", e.Index, e.Count)
	case CallDepthExceeded:
		return fmt.Sprintf("call depth %d exceeds the limit of %d", e.Index, e.Count)
	case Halted, InvalidProgram:
		if e.Cause != nil {
			if e.Detail != "" {
				return fmt.Sprintf("%s: %v", e.Detail, e.Cause)
			}
			return e.Cause.Error()
		}
		return e.Detail
	default:
		return e.Detail
	}
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. This allows
// matching against the sentinel values declared in this package, e.g.
// errors.Is(err, errz.ErrStackUnderflow).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithFrame appends an activation frame to the error's trace and returns the
// error.
func (e *Error) WithFrame(f Frame) *Error {
	e.Trace = append(e.Trace, f)
	return e
}

// FriendlyErrorMessage returns the error message followed by the activation
// trace, if any.
func (e *Error) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Error())
	msg.WriteString("\n")
	if len(e.Trace) > 0 {
		msg.WriteString("\n")
		msg.WriteString(FormatTrace(e.Trace))
	}
	return msg.String()
}

// KindOf returns the kind of the first *Error in err's chain, or zero if
// there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Sentinels for use with errors.Is. Only the Kind is compared.
var (
	ErrStackUnderflow                = &Error{Kind: StackUnderflow}
	ErrCaptureEmptyEnvironment       = &Error{Kind: CaptureEmptyEnvironment}
	ErrNonReferenceCapture           = &Error{Kind: NonReferenceCapture}
	ErrOutOfRangeTemplate            = &Error{Kind: OutOfRangeTemplate}
	ErrOutOfRangeLiteral             = &Error{Kind: OutOfRangeLiteral}
	ErrOutOfRangeDestinationCapture  = &Error{Kind: OutOfRangeDestinationCapture}
	ErrOutOfRangeSourceCapture       = &Error{Kind: OutOfRangeSourceCapture}
	ErrOutOfRangeDestinationRegister = &Error{Kind: OutOfRangeDestinationRegister}
	ErrOutOfRangeSourceRegister      = &Error{Kind: OutOfRangeSourceRegister}
	ErrOutOfRangeSwapRegister        = &Error{Kind: OutOfRangeSwapRegister}
	ErrCaptureOutOfRangeRegister     = &Error{Kind: CaptureOutOfRangeRegister}
	ErrCaptureOutOfRangeCapture      = &Error{Kind: CaptureOutOfRangeCapture}
	ErrUndefinedInstruction          = &Error{Kind: UndefinedInstruction}
	ErrNotCallable                   = &Error{Kind: NotCallable}
	ErrTooManyArguments              = &Error{Kind: TooManyArguments}
	ErrCallDepthExceeded             = &Error{Kind: CallDepthExceeded}
	ErrHalted                        = &Error{Kind: Halted}
	ErrInvalidProgram                = &Error{Kind: InvalidProgram}
)
