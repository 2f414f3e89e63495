package vm

import (
	"context"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/object"
)

// Run creates a VM for the given pools, captures the entry template with no
// enclosing environment and runs it as the root activation.
func Run(
	ctx context.Context,
	literals []object.Object,
	templates []*bytecode.Template,
	entry int,
	options ...Option,
) (object.Object, error) {
	machine, err := New(literals, templates, options...)
	if err != nil {
		return nil, err
	}
	fn, err := machine.Capture(entry, nil)
	if err != nil {
		return nil, err
	}
	return machine.Start(fn).Run(ctx)
}
