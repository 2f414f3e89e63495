package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err      *Error
		expected string
	}{
		{NewStackUnderflow(), "StackUnderflow: try to pop from empty call stack"},
		{NewCaptureEmptyEnvironment(2), "CaptureEmptyEnvironment: 2 captures are needed"},
		{NewNonReferenceCapture(1, "number"), "NonReferenceCapture: try to get capture 1 when its type is number instead of reference"},
		{NewOutOfRange(OutOfRangeTemplate, 4, 2), "OutOfRangeTemplate: try to capture 4 when there are 2 templates"},
		{NewOutOfRange(OutOfRangeLiteral, 3, 3), "OutOfRangeLiteral: try to get literal 3 when there are 3 literals"},
		{NewOutOfRange(OutOfRangeSourceRegister, 9, 4), "OutOfRangeSourceRegister: try to get register 9 when there are 4 registers"},
		{NewOutOfRange(OutOfRangeDestinationRegister, 9, 4), "OutOfRangeDestinationRegister: try to set to register 9 when there are 4 registers"},
		{NewOutOfRange(OutOfRangeSwapRegister, 5, 1), "OutOfRangeSwapRegister: try to get and set register 5 when there are 1 registers"},
		{NewUndefinedInstruction(200, 3), "UndefinedInstruction: undefined instruction with opcode 200 at offset 3"},
		{NewNotCallable(2, "number"), "NotCallable: register 2 holds number, which is not callable"},
		{NewTooManyArguments(3, 2), "TooManyArguments: 3 arguments passed to a function with 2 registers"},
		{NewCallDepthExceeded(11, 10), "CallDepthExceeded: call depth 11 exceeds the limit of 10"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := NewOutOfRange(OutOfRangeLiteral, 7, 2)
	wrapped := fmt.Errorf("running: %w", err)
	require.True(t, errors.Is(wrapped, ErrOutOfRangeLiteral))
	require.False(t, errors.Is(wrapped, ErrOutOfRangeTemplate))
	require.Equal(t, OutOfRangeLiteral, KindOf(wrapped))
	require.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
}

func TestErrorTrace(t *testing.T) {
	err := NewStackUnderflow().
		WithFrame(Frame{Template: 1, Name: "inner", Offset: 2}).
		WithFrame(Frame{Template: 0, Offset: 5})
	require.Len(t, err.Trace, 2)
	require.Equal(t,
		"StackUnderflow: try to pop from empty call stack\n\n"+
			"Activation trace:\n"+
			"  at inner (template 1, instruction 2)\n"+
			"  at template 0, instruction 5\n",
		err.FriendlyErrorMessage())
}

func TestHaltedAndInvalidProgramCause(t *testing.T) {
	cause := errors.New("context canceled")
	err := NewHalted("execution halted", cause)
	require.Equal(t, "Halted: execution halted: context canceled", err.Error())
	require.ErrorIs(t, err, cause)

	invalid := NewInvalidProgram(errors.New("bad register"))
	require.Equal(t, "InvalidProgram: invalid program: bad register", invalid.Error())
	require.Equal(t, "error", ErrorKind(99).String())
}
