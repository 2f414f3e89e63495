package bytecode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/op"
)

// ValidationError locates a problem found by Validate.
type ValidationError struct {
	Template    int
	Instruction int
	Err         *errz.Error
}

func (e *ValidationError) Error() string {
	if e.Instruction < 0 {
		return fmt.Sprintf("template %d: %s", e.Template, e.Err)
	}
	return fmt.Sprintf("template %d instruction %d: %s", e.Template, e.Instruction, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate statically checks every operand of every template against the
// pools it indexes. All problems are reported, not just the first. A nil
// result means no out-of-range access can happen at runtime, with one
// exception: a template's capture descriptors are checked only against the
// templates that capture it in this pool.
func Validate(templates []*Template, literalCount int) error {
	var result *multierror.Error
	for ti, t := range templates {
		v := validator{templates: templates, literalCount: literalCount, index: ti, t: t}
		for ii, instr := range t.instructions {
			for _, err := range v.check(instr) {
				result = multierror.Append(result, &ValidationError{Template: ti, Instruction: ii, Err: err})
			}
		}
	}
	return result.ErrorOrNil()
}

type validator struct {
	templates    []*Template
	literalCount int
	index        int
	t            *Template
}

func (v validator) register(kind errz.ErrorKind, r uint8) *errz.Error {
	if int(r) >= v.t.RegisterCount() {
		return errz.NewOutOfRange(kind, int(r), v.t.RegisterCount())
	}
	return nil
}

func (v validator) capture(kind errz.ErrorKind, c uint16) *errz.Error {
	if int(c) >= v.t.CaptureCount() {
		return errz.NewOutOfRange(kind, int(c), v.t.CaptureCount())
	}
	return nil
}

func (v validator) literal(l uint16) *errz.Error {
	if int(l) >= v.literalCount {
		return errz.NewOutOfRange(errz.OutOfRangeLiteral, int(l), v.literalCount)
	}
	return nil
}

// template checks the target index and that every capture descriptor of the
// target can be satisfied from this template's activation.
func (v validator) template(index uint16) []*errz.Error {
	if int(index) >= len(v.templates) {
		return []*errz.Error{errz.NewOutOfRange(errz.OutOfRangeTemplate, int(index), len(v.templates))}
	}
	var errs []*errz.Error
	target := v.templates[index]
	for _, info := range target.captures {
		switch info.Kind {
		case CaptureFromRegister:
			if int(info.Index) >= v.t.RegisterCount() {
				errs = append(errs, errz.NewOutOfRange(errz.CaptureOutOfRangeRegister, int(info.Index), v.t.RegisterCount()))
			}
		case CaptureFromCapture:
			if int(info.Index) >= v.t.CaptureCount() {
				errs = append(errs, errz.NewOutOfRange(errz.CaptureOutOfRangeCapture, int(info.Index), v.t.CaptureCount()))
			}
		}
	}
	return errs
}

func (v validator) check(instr Instruction) []*errz.Error {
	var errs []*errz.Error
	add := func(err *errz.Error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	switch instr.Op {
	case op.NoOperation, op.RetfMethodS:
	case op.MovRegister:
		add(v.register(errz.OutOfRangeDestinationRegister, instr.A))
		add(v.register(errz.OutOfRangeSourceRegister, instr.B))
	case op.CallMethodR:
		add(v.register(errz.OutOfRangeDestinationRegister, instr.A))
		add(v.register(errz.OutOfRangeSourceRegister, instr.C))
	case op.CallMethodS:
		add(v.register(errz.OutOfRangeSourceRegister, instr.B))
	case op.RetfMethodR, op.PushValue1R:
		add(v.register(errz.OutOfRangeSourceRegister, instr.A))
	case op.PushValue2R:
		add(v.register(errz.OutOfRangeSourceRegister, instr.A))
		add(v.register(errz.OutOfRangeSourceRegister, instr.B))
	case op.PushValue3R:
		add(v.register(errz.OutOfRangeSourceRegister, instr.A))
		add(v.register(errz.OutOfRangeSourceRegister, instr.B))
		add(v.register(errz.OutOfRangeSourceRegister, instr.C))
	case op.SwapValuesR:
		add(v.register(errz.OutOfRangeSwapRegister, instr.A))
		add(v.register(errz.OutOfRangeSwapRegister, instr.B))
	case op.GetLiteralR:
		add(v.literal(instr.Imm))
		add(v.register(errz.OutOfRangeDestinationRegister, instr.A))
	case op.PushLiteral:
		add(v.literal(instr.Imm))
	case op.GetCaptureR:
		add(v.capture(errz.OutOfRangeSourceCapture, instr.Imm))
		add(v.register(errz.OutOfRangeDestinationRegister, instr.A))
	case op.PushCapture:
		add(v.capture(errz.OutOfRangeSourceCapture, instr.Imm))
	case op.SetCaptureR:
		add(v.register(errz.OutOfRangeSourceRegister, instr.A))
		add(v.capture(errz.OutOfRangeDestinationCapture, instr.Imm))
	case op.PopCaptureS:
		add(v.capture(errz.OutOfRangeDestinationCapture, instr.Imm))
	case op.CaptureFunc:
		errs = append(errs, v.template(instr.Imm)...)
		add(v.register(errz.OutOfRangeDestinationRegister, instr.A))
	case op.PushFuncStk:
		errs = append(errs, v.template(instr.Imm)...)
	default:
		add(errz.NewUndefinedInstruction(int(instr.Op), -1))
	}
	return errs
}
