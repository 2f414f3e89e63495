package vm

import "github.com/rs/zerolog"

// Option is a configuration function for a VM.
type Option func(*VM)

// WithObserver sets an observer for execution events.
// The observer receives callbacks for instruction steps, closure calls,
// and closure returns. Returning false from any observer method halts
// execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VM) {
		vm.observer = observer
	}
}

// WithLogger sets the logger used for debug events such as register
// promotion, calls and activation failures. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VM) {
		vm.logger = logger
	}
}

// WithMaxCallDepth limits how deeply calls may nest. Calls past the limit
// fail with errz.CallDepthExceeded. The default is DefaultMaxCallDepth.
func WithMaxCallDepth(depth int) Option {
	return func(vm *VM) {
		vm.maxCallDepth = depth
	}
}

// WithValidation makes New statically validate the program and reject it
// with an errz.InvalidProgram error if any operand is out of range.
func WithValidation() Option {
	return func(vm *VM) {
		vm.validate = true
	}
}
