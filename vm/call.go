package vm

import (
	"context"

	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
)

// call invokes the closure held in the subject register with argc values
// popped from the operand stack. The arguments keep their push order and are
// bound to the callee's leading registers.
func (a *Activation) call(ctx context.Context, argc int, subject uint8) (object.Object, *errz.Error) {
	value, err := a.getRegister(subject)
	if err != nil {
		return nil, err
	}
	fn, ok := value.(*object.Closure)
	if !ok {
		return nil, errz.NewNotCallable(int(subject), object.TypeName(value))
	}
	if registers := fn.Template().RegisterCount(); argc > registers {
		return nil, errz.NewTooManyArguments(argc, registers)
	}
	depth := a.depth + 1
	if depth > a.vm.maxCallDepth {
		return nil, errz.NewCallDepthExceeded(depth, a.vm.maxCallDepth)
	}
	args, err := a.popArgs(argc)
	if err != nil {
		return nil, err
	}
	return a.vm.invoke(ctx, fn, args, depth, a.steps)
}

// Call runs a closure synchronously as a root activation with the given
// arguments bound to its leading registers.
func (vm *VM) Call(ctx context.Context, fn *object.Closure, args ...object.Object) (object.Object, error) {
	if fn == nil {
		return nil, errz.NewNotCallable(-1, object.TypeName(nil))
	}
	if registers := fn.Template().RegisterCount(); len(args) > registers {
		return nil, errz.NewTooManyArguments(len(args), registers)
	}
	result, err := vm.invoke(ctx, fn, args, 0, new(int))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (vm *VM) invoke(ctx context.Context, fn *object.Closure, args []object.Object, depth int, steps *int) (object.Object, *errz.Error) {
	name := fn.Name()
	if vm.observer != nil && vm.observerConfig.ObserveCalls {
		event := CallEvent{
			Template:     vm.indexOf(fn.Template()),
			FunctionName: name,
			ArgCount:     len(args),
			CallDepth:    depth,
		}
		if !vm.observer.OnCall(event) {
			return nil, errz.NewHalted("execution halted by observer", nil)
		}
	}
	vm.logger.Debug().
		Str("function", name).
		Int("argc", len(args)).
		Int("depth", depth).
		Msg("call")

	callee := vm.activate(fn, depth, steps)
	for i, arg := range args {
		if arg == nil {
			arg = object.Nil
		}
		callee.registers[i] = arg
	}
	result, err := callee.run(ctx)
	if err != nil {
		return nil, err
	}

	vm.logger.Debug().
		Str("function", name).
		Int("depth", depth).
		Str("result", result.Inspect()).
		Msg("return")
	if vm.observer != nil && vm.observerConfig.ObserveReturns {
		callerDepth := depth - 1
		if callerDepth < 0 {
			callerDepth = 0
		}
		event := ReturnEvent{
			Template:     vm.indexOf(fn.Template()),
			FunctionName: name,
			Result:       result,
			CallDepth:    callerDepth,
		}
		if !vm.observer.OnReturn(event) {
			return nil, errz.NewHalted("execution halted by observer", nil)
		}
	}
	return result, nil
}
