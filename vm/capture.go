package vm

import (
	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
)

// Capture builds a closure of the template at the given index, resolving its
// capture descriptors against env. env may be nil only for templates that
// capture nothing; hosts capture their entry template this way.
func (vm *VM) Capture(index int, env *Activation) (*object.Closure, error) {
	fn, err := vm.capture(index, env)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// CaptureTemplate is like Capture but takes the template directly. The
// template does not need to belong to the VM's pool.
func (vm *VM) CaptureTemplate(t *bytecode.Template, env *Activation) (*object.Closure, error) {
	if t == nil {
		return nil, errz.NewInvalidProgram(errNilTemplate)
	}
	fn, err := vm.captureTemplate(t, env)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (vm *VM) capture(index int, env *Activation) (*object.Closure, *errz.Error) {
	if index < 0 || index >= len(vm.templates) {
		return nil, errz.NewOutOfRange(errz.OutOfRangeTemplate, index, len(vm.templates))
	}
	return vm.captureTemplate(vm.templates[index], env)
}

// captureTemplate resolves each capture descriptor in order. A FromRegister
// descriptor promotes the register to a shared cell on first capture, so the
// enclosing activation and every closure capturing the register observe the
// same value from then on. A FromCapture descriptor shares a cell the
// enclosing closure already holds.
//
// Registers promoted before a failing descriptor stay promoted.
func (vm *VM) captureTemplate(t *bytecode.Template, env *Activation) (*object.Closure, *errz.Error) {
	count := t.CaptureCount()
	if count == 0 {
		return newClosure(t, nil)
	}
	if env == nil {
		return nil, errz.NewCaptureEmptyEnvironment(count)
	}
	captures := make([]object.Object, 0, count)
	for i := 0; i < count; i++ {
		info := t.CaptureInfoAt(i)
		switch info.Kind {
		case bytecode.CaptureFromRegister:
			cell, err := env.promote(int(info.Index))
			if err != nil {
				return nil, err
			}
			captures = append(captures, cell)
		case bytecode.CaptureFromCapture:
			cell, err := env.captureCell(info.Index, errz.CaptureOutOfRangeCapture)
			if err != nil {
				return nil, err
			}
			captures = append(captures, cell)
		default:
			return nil, errz.NewInvalidProgram(errUnknownCaptureKind)
		}
	}
	vm.logger.Debug().
		Str("template", t.Name()).
		Int("captures", count).
		Int("depth", env.depth).
		Msg("captured closure")
	return newClosure(t, captures)
}

func newClosure(t *bytecode.Template, captures []object.Object) (*object.Closure, *errz.Error) {
	fn, err := object.NewClosure(t, captures)
	if err != nil {
		return nil, asVMError(err)
	}
	return fn, nil
}
