package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/kut/op"
)

// Instruction is a single decoded VM instruction.
//
// Register-form instructions use A, B and C as 8-bit operands. Immediate-form
// instructions use A as their register operand and Imm as a 16-bit index into
// the literal pool, the template pool or the closure's captures. Operands an
// opcode does not use are zero when built with the constructors below.
type Instruction struct {
	Op  op.Code
	A   uint8
	B   uint8
	C   uint8
	Imm uint16
}

// Info returns the opcode information for the instruction.
func (i Instruction) Info() op.Info {
	return op.GetInfo(i.Op)
}

// String formats the instruction as its opcode name followed by operands.
func (i Instruction) String() string {
	info := op.GetInfo(i.Op)
	name := info.Name
	if name == "" {
		name = fmt.Sprintf("Undefined(%d)", i.Op)
	}
	switch info.Form {
	case op.Register:
		return fmt.Sprintf("%s\t%d,%d,%d", name, i.A, i.B, i.C)
	case op.Immediate:
		return fmt.Sprintf("%s\t%d,%d", name, i.A, i.Imm)
	default:
		return name
	}
}

func reg(code op.Code, a, b, c uint8) Instruction {
	return Instruction{Op: code, A: a, B: b, C: c}
}

func imm(code op.Code, a uint8, value uint16) Instruction {
	return Instruction{Op: code, A: a, Imm: value}
}

func NoOperation() Instruction {
	return Instruction{Op: op.NoOperation}
}

// MovRegister copies the dereferenced value of src into dst.
func MovRegister(dst, src uint8) Instruction {
	return reg(op.MovRegister, dst, src, 0)
}

// CallMethodR calls the function in subject with argCount arguments popped
// from the operand stack and stores the result in ret.
func CallMethodR(ret, argCount, subject uint8) Instruction {
	return reg(op.CallMethodR, ret, argCount, subject)
}

// RetfMethodR returns the dereferenced value of the given register.
func RetfMethodR(value uint8) Instruction {
	return reg(op.RetfMethodR, value, 0, 0)
}

func PushValue1R(r1 uint8) Instruction {
	return reg(op.PushValue1R, r1, 0, 0)
}

func PushValue2R(r1, r2 uint8) Instruction {
	return reg(op.PushValue2R, r1, r2, 0)
}

func PushValue3R(r1, r2, r3 uint8) Instruction {
	return reg(op.PushValue3R, r1, r2, r3)
}

// SwapValuesR exchanges the raw contents of two registers.
func SwapValuesR(r1, r2 uint8) Instruction {
	return reg(op.SwapValuesR, r1, r2, 0)
}

func GetLiteralR(r uint8, literal uint16) Instruction {
	return imm(op.GetLiteralR, r, literal)
}

func GetCaptureR(r uint8, capture uint16) Instruction {
	return imm(op.GetCaptureR, r, capture)
}

func SetCaptureR(r uint8, capture uint16) Instruction {
	return imm(op.SetCaptureR, r, capture)
}

// CaptureFunc builds a closure from the given template and stores it in r.
func CaptureFunc(r uint8, template uint16) Instruction {
	return imm(op.CaptureFunc, r, template)
}

// CallMethodS is CallMethodR that pushes the result instead of storing it.
func CallMethodS(argCount, subject uint8) Instruction {
	return reg(op.CallMethodS, argCount, subject, 0)
}

// RetfMethodS returns the value popped from the operand stack.
func RetfMethodS() Instruction {
	return Instruction{Op: op.RetfMethodS}
}

func PushLiteral(literal uint16) Instruction {
	return imm(op.PushLiteral, 0, literal)
}

func PushCapture(capture uint16) Instruction {
	return imm(op.PushCapture, 0, capture)
}

// PushFuncStk builds a closure from the given template and pushes it.
func PushFuncStk(template uint16) Instruction {
	return imm(op.PushFuncStk, 0, template)
}

// PopCaptureS pops the operand stack into the given capture cell.
func PopCaptureS(capture uint16) Instruction {
	return imm(op.PopCaptureS, 0, capture)
}
