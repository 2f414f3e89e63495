// Package vm provides the register-based virtual machine that executes Kut
// bytecode.
//
// A host builds a VM from a literal pool and a template pool, captures an
// entry template with no enclosing activation, starts the resulting closure
// and runs it:
//
//	machine, err := vm.New(literals, templates)
//	if err != nil {
//		return err
//	}
//	entry, err := machine.Capture(0, nil)
//	if err != nil {
//		return err
//	}
//	result, err := machine.Start(entry).Run(ctx)
//
// Run is a shortcut for the same sequence.
package vm

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
)

const (
	// DefaultMaxCallDepth is the default limit on nested calls.
	DefaultMaxCallDepth = 1024
)

var (
	errNilTemplate        = errors.New("template is nil")
	errUnknownCaptureKind = errors.New("unknown capture kind")
)

// VM owns the literal and template pools of a program. It is immutable after
// New returns and may be shared by any number of activations.
type VM struct {
	literals      []object.Object
	templates     []*bytecode.Template
	templateIndex map[*bytecode.Template]int

	logger         zerolog.Logger
	observer       Observer
	observerConfig ObserverConfig
	maxCallDepth   int
	validate       bool
}

// New creates a VM for the given pools. The slices are copied.
func New(literals []object.Object, templates []*bytecode.Template, options ...Option) (*VM, error) {
	vm := &VM{
		literals:      make([]object.Object, len(literals)),
		templates:     make([]*bytecode.Template, len(templates)),
		templateIndex: make(map[*bytecode.Template]int, len(templates)),
		logger:        zerolog.Nop(),
		maxCallDepth:  DefaultMaxCallDepth,
	}
	for i, lit := range literals {
		if lit == nil {
			return nil, errz.NewInvalidProgram(fmt.Errorf("literal %d is nil", i))
		}
		if holdsCell(lit) {
			return nil, errz.NewInvalidProgram(fmt.Errorf("literal %d is a reference", i))
		}
		vm.literals[i] = lit
	}
	for i, t := range templates {
		if t == nil {
			return nil, errz.NewInvalidProgram(fmt.Errorf("template %d is nil", i))
		}
		vm.templates[i] = t
		if _, seen := vm.templateIndex[t]; !seen {
			vm.templateIndex[t] = i
		}
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	if vm.validate {
		if err := bytecode.Validate(vm.templates, len(vm.literals)); err != nil {
			return nil, errz.NewInvalidProgram(err)
		}
	}
	return vm, nil
}

// LiteralCount returns the number of literals in the pool.
func (vm *VM) LiteralCount() int {
	return len(vm.literals)
}

// Literal returns the literal at the given index.
func (vm *VM) Literal(index int) (object.Object, error) {
	if index < 0 || index >= len(vm.literals) {
		return nil, errz.NewOutOfRange(errz.OutOfRangeLiteral, index, len(vm.literals))
	}
	return vm.literals[index], nil
}

// TemplateCount returns the number of templates in the pool.
func (vm *VM) TemplateCount() int {
	return len(vm.templates)
}

// Template returns the template at the given index.
func (vm *VM) Template(index int) (*bytecode.Template, error) {
	if index < 0 || index >= len(vm.templates) {
		return nil, errz.NewOutOfRange(errz.OutOfRangeTemplate, index, len(vm.templates))
	}
	return vm.templates[index], nil
}

// Start creates a root activation of the closure. All registers start as
// Nil and the operand stack is empty.
func (vm *VM) Start(closure *object.Closure) *Activation {
	return vm.activate(closure, 0, new(int))
}

// indexOf returns the pool index of t, or -1 if t is not in the pool.
func (vm *VM) indexOf(t *bytecode.Template) int {
	if index, ok := vm.templateIndex[t]; ok {
		return index
	}
	return -1
}

// frameOf describes the activation for an error trace.
func (vm *VM) frameOf(a *Activation) errz.Frame {
	t := a.closure.Template()
	return errz.Frame{Template: vm.indexOf(t), Name: t.Name(), Offset: a.ip}
}

// holdsCell reports whether a literal is, or contains, a cell.
func holdsCell(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Cell:
		return true
	case *object.List:
		for i := 0; i < obj.Len(); i++ {
			if holdsCell(obj.Item(i)) {
				return true
			}
		}
	}
	return false
}
