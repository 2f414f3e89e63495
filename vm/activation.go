package vm

import (
	"context"
	"errors"

	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
)

// Activation is one invocation of a closure: a fixed-size register file and
// an operand stack. The caller that started an activation owns it; it stays
// inspectable after Run returns.
type Activation struct {
	vm        *VM
	closure   *object.Closure
	registers []object.Object
	stack     []object.Object
	ip        int
	depth     int
	steps     *int
	result    object.Object
}

func (vm *VM) activate(closure *object.Closure, depth int, steps *int) *Activation {
	registers := make([]object.Object, closure.Template().RegisterCount())
	for i := range registers {
		registers[i] = object.Nil
	}
	return &Activation{
		vm:        vm,
		closure:   closure,
		registers: registers,
		depth:     depth,
		steps:     steps,
	}
}

// Closure returns the closure being run.
func (a *Activation) Closure() *object.Closure {
	return a.closure
}

// RegisterCount returns the number of registers. It never changes.
func (a *Activation) RegisterCount() int {
	return len(a.registers)
}

// Register returns the raw contents of a register, without dereferencing a
// promoted *object.Cell.
func (a *Activation) Register(index int) (object.Object, error) {
	if index < 0 || index >= len(a.registers) {
		return nil, errz.NewOutOfRange(errz.OutOfRangeSourceRegister, index, len(a.registers))
	}
	return a.registers[index], nil
}

// Registers returns a copy of the raw register contents.
func (a *Activation) Registers() []object.Object {
	registers := make([]object.Object, len(a.registers))
	copy(registers, a.registers)
	return registers
}

// Stack returns a copy of the operand stack, bottom first.
func (a *Activation) Stack() []object.Object {
	stack := make([]object.Object, len(a.stack))
	copy(stack, a.stack)
	return stack
}

// Push pushes a value onto the operand stack. Hosts use it to pass
// arguments to a closure that reads them with stack instructions.
func (a *Activation) Push(value object.Object) {
	if value == nil {
		value = object.Nil
	}
	a.stack = append(a.stack, value)
}

// Depth returns the call nesting depth. Root activations have depth 0.
func (a *Activation) Depth() int {
	return a.depth
}

// Result returns the value produced by the last successful Run, or nil if
// the activation has not completed successfully.
func (a *Activation) Result() object.Object {
	return a.result
}

// Run executes the closure's template from its first instruction until the
// instructions are exhausted, yielding Nil, or a return instruction
// executes. Any error aborts the activation; the returned error is an
// *errz.Error whose trace ends with this activation.
func (a *Activation) Run(ctx context.Context) (object.Object, error) {
	result, err := a.run(ctx)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Activation) run(ctx context.Context) (object.Object, *errz.Error) {
	a.ip = 0
	a.result = nil
	if err := ctx.Err(); err != nil {
		return nil, a.fail(errz.NewHalted("activation not started", err))
	}
	result, err := a.eval(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	a.result = result
	return result, nil
}

func (a *Activation) fail(err *errz.Error) *errz.Error {
	err.WithFrame(a.vm.frameOf(a))
	if len(err.Trace) == 1 {
		a.vm.logger.Debug().
			Str("kind", err.Kind.String()).
			Str("function", a.closure.Name()).
			Int("offset", a.ip).
			Int("depth", a.depth).
			Msg(err.Message())
	}
	return err
}

// asVMError converts an error returned across an activation boundary back
// into an *errz.Error.
func asVMError(err error) *errz.Error {
	var e *errz.Error
	if errors.As(err, &e) {
		return e
	}
	return errz.NewHalted("execution failed", err)
}

// getRegister returns the value of a register, dereferencing one level if it
// holds a promoted cell.
func (a *Activation) getRegister(r uint8) (object.Object, *errz.Error) {
	if int(r) >= len(a.registers) {
		return nil, errz.NewOutOfRange(errz.OutOfRangeSourceRegister, int(r), len(a.registers))
	}
	return object.Deref(a.registers[r]), nil
}

// setRegister stores a value in a register. A promoted register is written
// through its cell so that every closure sharing the cell sees the value.
func (a *Activation) setRegister(r uint8, value object.Object) *errz.Error {
	if int(r) >= len(a.registers) {
		return errz.NewOutOfRange(errz.OutOfRangeDestinationRegister, int(r), len(a.registers))
	}
	if cell, ok := a.registers[r].(*object.Cell); ok {
		cell.Set(value)
	} else {
		a.registers[r] = value
	}
	return nil
}

func (a *Activation) checkRegister(r uint8, kind errz.ErrorKind) *errz.Error {
	if int(r) >= len(a.registers) {
		return errz.NewOutOfRange(kind, int(r), len(a.registers))
	}
	return nil
}

// captureCell returns the cell held in one of the closure's capture slots.
func (a *Activation) captureCell(c uint16, rangeKind errz.ErrorKind) (*object.Cell, *errz.Error) {
	count := a.closure.CaptureCount()
	if int(c) >= count {
		return nil, errz.NewOutOfRange(rangeKind, int(c), count)
	}
	capture := a.closure.Capture(int(c))
	cell, ok := capture.(*object.Cell)
	if !ok {
		return nil, errz.NewNonReferenceCapture(int(c), object.TypeName(capture))
	}
	return cell, nil
}

// promote makes register r a shared cell, if it isn't one already, and
// returns the cell.
func (a *Activation) promote(r int) (*object.Cell, *errz.Error) {
	if r >= len(a.registers) {
		return nil, errz.NewOutOfRange(errz.CaptureOutOfRangeRegister, r, len(a.registers))
	}
	if cell, ok := a.registers[r].(*object.Cell); ok {
		return cell, nil
	}
	cell := object.NewCell(a.registers[r])
	a.registers[r] = cell
	a.vm.logger.Debug().
		Int("register", r).
		Str("function", a.closure.Name()).
		Int("depth", a.depth).
		Msg("promoted register to reference")
	return cell, nil
}

func (a *Activation) push(value object.Object) {
	a.stack = append(a.stack, value)
}

func (a *Activation) pop() (object.Object, *errz.Error) {
	n := len(a.stack)
	if n == 0 {
		return nil, errz.NewStackUnderflow()
	}
	value := a.stack[n-1]
	a.stack[n-1] = nil
	a.stack = a.stack[:n-1]
	return value, nil
}

// popArgs pops count values, returning them in the order they were pushed.
func (a *Activation) popArgs(count int) ([]object.Object, *errz.Error) {
	n := len(a.stack)
	if count > n {
		return nil, errz.NewStackUnderflow()
	}
	args := make([]object.Object, count)
	copy(args, a.stack[n-count:])
	for i := n - count; i < n; i++ {
		a.stack[i] = nil
	}
	a.stack = a.stack[:n-count]
	return args, nil
}
