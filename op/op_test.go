package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(CaptureFunc)
	require.Equal(t, "CaptureFunc", info.Name)
	require.Equal(t, Immediate, info.Form)
	require.Equal(t, 2, info.OperandCount)
	require.Equal(t, CaptureFunc, info.Code)
	require.True(t, info.Valid())
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		form     Form
		operands int
	}{
		{NoOperation, "NoOperation", Empty, 0},
		{MovRegister, "MovRegister", Register, 2},
		{CallMethodR, "CallMethodR", Register, 3},
		{RetfMethodR, "RetfMethodR", Register, 1},
		{PushValue1R, "PushValue1R", Register, 1},
		{PushValue2R, "PushValue2R", Register, 2},
		{PushValue3R, "PushValue3R", Register, 3},
		{SwapValuesR, "SwapValuesR", Register, 2},
		{GetLiteralR, "GetLiteralR", Immediate, 2},
		{GetCaptureR, "GetCaptureR", Immediate, 2},
		{SetCaptureR, "SetCaptureR", Immediate, 2},
		{CaptureFunc, "CaptureFunc", Immediate, 2},
		{CallMethodS, "CallMethodS", Register, 2},
		{RetfMethodS, "RetfMethodS", Empty, 0},
		{PushLiteral, "PushLiteral", Immediate, 1},
		{PushCapture, "PushCapture", Immediate, 1},
		{PushFuncStk, "PushFuncStk", Immediate, 1},
		{PopCaptureS, "PopCaptureS", Immediate, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.form, info.Form)
			require.Equal(t, tt.operands, info.OperandCount)
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestUndefinedOpcodes(t *testing.T) {
	for c := int(MaxCode) + 1; c < 256; c++ {
		info := GetInfo(Code(c))
		require.False(t, info.Valid(), "opcode %d", c)
		require.Equal(t, "", Code(c).String())
	}
}

func TestFormString(t *testing.T) {
	require.Equal(t, "empty", Empty.String())
	require.Equal(t, "register", Register.String())
	require.Equal(t, "immediate", Immediate.String())
	require.Equal(t, "", Form(9).String())
}
