package object

import (
	"context"
	"fmt"
)

// Invoker is the capability a foreign object exposes to the VM. Each host type
// implements it once and dispatches on the method name.
type Invoker interface {
	Invoke(ctx context.Context, method string, args []Object) (Object, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, method string, args []Object) (Object, error)

// Invoke calls f(ctx, method, args).
func (f InvokerFunc) Invoke(ctx context.Context, method string, args []Object) (Object, error) {
	return f(ctx, method, args)
}

// External is an opaque handle to a host object.
type External struct {
	name    string
	invoker Invoker
}

func (e *External) Type() Type {
	return EXTERNAL
}

// Name returns the host-supplied name of the foreign type.
func (e *External) Name() string {
	return e.name
}

func (e *External) Inspect() string {
	return "external"
}

func (e *External) String() string {
	if e.name != "" {
		return fmt.Sprintf("external(%s)", e.name)
	}
	return "external"
}

func (e *External) Interface() interface{} {
	return e.invoker
}

// Equals reports identity.
func (e *External) Equals(other Object) bool {
	o, ok := other.(*External)
	return ok && e == o
}

// Invoke forwards a method call to the host object. A nil result is
// returned as Nil.
func (e *External) Invoke(ctx context.Context, method string, args ...Object) (Object, error) {
	if e.invoker == nil {
		return nil, fmt.Errorf("external %q has no invoker", e.name)
	}
	result, err := e.invoker.Invoke(ctx, method, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return Nil, nil
	}
	return result, nil
}

func NewExternal(name string, invoker Invoker) *External {
	return &External{name: name, invoker: invoker}
}
