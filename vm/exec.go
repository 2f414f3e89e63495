package vm

import (
	"context"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
	"github.com/deepnoodle-ai/kut/op"
)

// eval runs the instruction loop. On error a.ip is left at the failing
// instruction.
func (a *Activation) eval(ctx context.Context) (object.Object, *errz.Error) {
	t := a.closure.Template()
	count := t.InstructionCount()

	for a.ip < count {
		instr := t.InstructionAt(a.ip)

		if a.vm.observer != nil && a.shouldStep() {
			event := StepEvent{
				Template:     a.vm.indexOf(t),
				Offset:       a.ip,
				Opcode:       instr.Op,
				OpcodeName:   instr.Info().Name,
				Instruction:  instr,
				FunctionName: t.Name(),
				StackDepth:   len(a.stack),
				CallDepth:    a.depth,
			}
			if !a.vm.observer.OnStep(event) {
				return nil, errz.NewHalted("execution halted by observer", nil)
			}
		}

		result, done, err := a.exec(ctx, instr)
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
		a.ip++
	}
	return object.Nil, nil
}

func (a *Activation) shouldStep() bool {
	switch a.vm.observerConfig.StepMode {
	case StepAll:
		return true
	case StepSampled:
		*a.steps++
		return *a.steps%a.vm.observerConfig.SampleInterval == 0
	default:
		return false
	}
}

// exec dispatches one instruction. The boolean result reports that the
// activation returned.
func (a *Activation) exec(ctx context.Context, instr bytecode.Instruction) (object.Object, bool, *errz.Error) {
	switch instr.Op {
	case op.NoOperation:
	case op.MovRegister:
		value, err := a.getRegister(instr.B)
		if err != nil {
			return nil, false, err
		}
		if instr.A == instr.B {
			return nil, false, nil
		}
		if err := a.setRegister(instr.A, value); err != nil {
			return nil, false, err
		}
	case op.CallMethodR:
		if err := a.checkRegister(instr.A, errz.OutOfRangeDestinationRegister); err != nil {
			return nil, false, err
		}
		value, err := a.call(ctx, int(instr.B), instr.C)
		if err != nil {
			return nil, false, err
		}
		if err := a.setRegister(instr.A, value); err != nil {
			return nil, false, err
		}
	case op.RetfMethodR:
		value, err := a.getRegister(instr.A)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	case op.PushValue1R:
		if err := a.pushRegisters(instr.A); err != nil {
			return nil, false, err
		}
	case op.PushValue2R:
		if err := a.pushRegisters(instr.A, instr.B); err != nil {
			return nil, false, err
		}
	case op.PushValue3R:
		if err := a.pushRegisters(instr.A, instr.B, instr.C); err != nil {
			return nil, false, err
		}
	case op.SwapValuesR:
		if err := a.checkRegister(instr.A, errz.OutOfRangeSwapRegister); err != nil {
			return nil, false, err
		}
		if err := a.checkRegister(instr.B, errz.OutOfRangeSwapRegister); err != nil {
			return nil, false, err
		}
		a.registers[instr.A], a.registers[instr.B] = a.registers[instr.B], a.registers[instr.A]
	case op.GetLiteralR:
		value, err := a.literal(instr.Imm)
		if err != nil {
			return nil, false, err
		}
		if err := a.setRegister(instr.A, value); err != nil {
			return nil, false, err
		}
	case op.GetCaptureR:
		cell, err := a.captureCell(instr.Imm, errz.OutOfRangeSourceCapture)
		if err != nil {
			return nil, false, err
		}
		if err := a.setRegister(instr.A, cell.Value()); err != nil {
			return nil, false, err
		}
	case op.SetCaptureR:
		value, err := a.getRegister(instr.A)
		if err != nil {
			return nil, false, err
		}
		cell, err := a.captureCell(instr.Imm, errz.OutOfRangeDestinationCapture)
		if err != nil {
			return nil, false, err
		}
		cell.Set(value)
	case op.CaptureFunc:
		if err := a.checkRegister(instr.A, errz.OutOfRangeDestinationRegister); err != nil {
			return nil, false, err
		}
		fn, err := a.vm.capture(int(instr.Imm), a)
		if err != nil {
			return nil, false, err
		}
		if err := a.setRegister(instr.A, fn); err != nil {
			return nil, false, err
		}
	case op.CallMethodS:
		value, err := a.call(ctx, int(instr.A), instr.B)
		if err != nil {
			return nil, false, err
		}
		a.push(value)
	case op.RetfMethodS:
		value, err := a.pop()
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	case op.PushLiteral:
		value, err := a.literal(instr.Imm)
		if err != nil {
			return nil, false, err
		}
		a.push(value)
	case op.PushCapture:
		cell, err := a.captureCell(instr.Imm, errz.OutOfRangeSourceCapture)
		if err != nil {
			return nil, false, err
		}
		a.push(cell.Value())
	case op.PushFuncStk:
		fn, err := a.vm.capture(int(instr.Imm), a)
		if err != nil {
			return nil, false, err
		}
		a.push(fn)
	case op.PopCaptureS:
		cell, err := a.captureCell(instr.Imm, errz.OutOfRangeDestinationCapture)
		if err != nil {
			return nil, false, err
		}
		value, err := a.pop()
		if err != nil {
			return nil, false, err
		}
		cell.Set(value)
	default:
		return nil, false, errz.NewUndefinedInstruction(int(instr.Op), a.ip)
	}
	return nil, false, nil
}

func (a *Activation) literal(index uint16) (object.Object, *errz.Error) {
	literals := a.vm.literals
	if int(index) >= len(literals) {
		return nil, errz.NewOutOfRange(errz.OutOfRangeLiteral, int(index), len(literals))
	}
	return literals[index], nil
}

// pushRegisters pushes the dereferenced values of the registers in order.
// Nothing is pushed unless every register is in range.
func (a *Activation) pushRegisters(regs ...uint8) *errz.Error {
	for _, r := range regs {
		if err := a.checkRegister(r, errz.OutOfRangeSourceRegister); err != nil {
			return err
		}
	}
	for _, r := range regs {
		a.push(object.Deref(a.registers[r]))
	}
	return nil
}
