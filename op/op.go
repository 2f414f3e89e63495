// Package op defines opcodes used by the Kut virtual machine.
package op

// Code is an opcode that indicates an operation to execute. It occupies the
// first byte of an encoded instruction word.
type Code uint8

const (
	// Empty form
	NoOperation Code = 0

	// Register form
	MovRegister Code = 1
	CallMethodR Code = 2
	RetfMethodR Code = 3
	PushValue1R Code = 4
	PushValue2R Code = 5
	PushValue3R Code = 6
	SwapValuesR Code = 7

	// Immediate form
	GetLiteralR Code = 8
	GetCaptureR Code = 9
	SetCaptureR Code = 10
	CaptureFunc Code = 11

	// Stack-oriented variants
	CallMethodS Code = 12
	RetfMethodS Code = 13
	PushLiteral Code = 14
	PushCapture Code = 15
	PushFuncStk Code = 16
	PopCaptureS Code = 17
)

// MaxCode is the highest opcode the decoder accepts.
const MaxCode = PopCaptureS

// Form describes how the three trailing bytes of an instruction word are
// interpreted.
type Form uint8

const (
	// Empty instructions carry no operands.
	Empty Form = iota
	// Register instructions carry three 8-bit register operands.
	Register
	// Immediate instructions carry one 8-bit register operand followed by a
	// 16-bit big-endian immediate.
	Immediate
)

// String returns a string representation of the operand form.
func (f Form) String() string {
	switch f {
	case Empty:
		return "empty"
	case Register:
		return "register"
	case Immediate:
		return "immediate"
	default:
		return ""
	}
}

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	Form Form
	// OperandCount is the number of operands that carry meaning. Register
	// operands beyond this count are encoded as zero.
	OperandCount int
	// UsesRegister is false for immediate instructions that ignore byte 1.
	UsesRegister bool
}

// Valid reports whether the info describes a defined opcode.
func (i Info) Valid() bool {
	return i.Name != ""
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op      Code
		name    string
		form    Form
		count   int
		usesReg bool
	}
	ops := []opInfo{
		{NoOperation, "NoOperation", Empty, 0, false},
		{MovRegister, "MovRegister", Register, 2, true},
		{CallMethodR, "CallMethodR", Register, 3, true},
		{RetfMethodR, "RetfMethodR", Register, 1, true},
		{PushValue1R, "PushValue1R", Register, 1, true},
		{PushValue2R, "PushValue2R", Register, 2, true},
		{PushValue3R, "PushValue3R", Register, 3, true},
		{SwapValuesR, "SwapValuesR", Register, 2, true},
		{GetLiteralR, "GetLiteralR", Immediate, 2, true},
		{GetCaptureR, "GetCaptureR", Immediate, 2, true},
		{SetCaptureR, "SetCaptureR", Immediate, 2, true},
		{CaptureFunc, "CaptureFunc", Immediate, 2, true},
		{CallMethodS, "CallMethodS", Register, 2, true},
		{RetfMethodS, "RetfMethodS", Empty, 0, false},
		{PushLiteral, "PushLiteral", Immediate, 1, false},
		{PushCapture, "PushCapture", Immediate, 1, false},
		{PushFuncStk, "PushFuncStk", Immediate, 1, false},
		{PopCaptureS, "PopCaptureS", Immediate, 1, false},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			Form:         o.form,
			OperandCount: o.count,
			UsesRegister: o.usesReg,
		}
	}
}

// GetInfo returns information about the given opcode. The returned Info is
// the zero value (Valid() == false) for undefined opcodes.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the opcode name, or an empty string for undefined opcodes.
func (c Code) String() string {
	return infos[c].Name
}
