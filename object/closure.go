package object

import (
	"fmt"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
)

// Closure is a runtime function instance: an immutable bytecode.Template
// bound to the values it captured. Each capture is expected to be a *Cell
// shared with the scope it was captured from.
type Closure struct {
	template *bytecode.Template
	captures []Object
}

func (f *Closure) Type() Type {
	return FUNCTION
}

// Template returns the template this closure was built from.
func (f *Closure) Template() *bytecode.Template {
	return f.template
}

// Name returns the template name (empty for anonymous templates).
func (f *Closure) Name() string {
	return f.template.Name()
}

// CaptureCount returns the number of captured values.
func (f *Closure) CaptureCount() int {
	return len(f.captures)
}

// Capture returns the captured value at the given index. It panics if the
// index is out of range; the VM bounds-checks before calling it.
func (f *Closure) Capture(index int) Object {
	return f.captures[index]
}

// Captures returns a copy of the captured values.
func (f *Closure) Captures() []Object {
	captures := make([]Object, len(f.captures))
	copy(captures, f.captures)
	return captures
}

func (f *Closure) Inspect() string {
	return "func"
}

func (f *Closure) String() string {
	if name := f.template.Name(); name != "" {
		return fmt.Sprintf("func %s", name)
	}
	return "func"
}

func (f *Closure) Interface() interface{} {
	return nil
}

// Equals reports identity.
func (f *Closure) Equals(other Object) bool {
	o, ok := other.(*Closure)
	return ok && f == o
}

// NewClosure binds a template to its captures. The number of captures must
// match the template's capture descriptors.
func NewClosure(template *bytecode.Template, captures []Object) (*Closure, error) {
	if template == nil {
		return nil, errz.NewInvalidProgram(fmt.Errorf("closure requires a template"))
	}
	if want := template.CaptureCount(); want != len(captures) {
		return nil, errz.NewInvalidProgram(
			fmt.Errorf("template %q needs %d captures, got %d", template.Name(), want, len(captures)))
	}
	owned := make([]Object, len(captures))
	copy(owned, captures)
	return &Closure{template: template, captures: owned}, nil
}
