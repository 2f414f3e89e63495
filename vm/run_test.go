package vm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
)

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, nil, []*bytecode.Template{tmpl("main", 0, nil)}, 0)
	require.True(t, errors.Is(err, errz.ErrHalted))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRunHelper(t *testing.T) {
	result, err := Run(context.Background(),
		[]object.Object{object.NewNumber(42)},
		[]*bytecode.Template{tmpl("main", 1, nil, bytecode.GetLiteralR(0, 0), bytecode.RetfMethodR(0))},
		0,
	)
	require.Nil(t, err)
	require.Equal(t, object.NewNumber(42), result)

	_, err = Run(context.Background(), nil, nil, 0)
	requireKind(t, err, errz.OutOfRangeTemplate, 0, 0)
}
