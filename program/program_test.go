package program

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
)

const scenario = `
entry = 0

[[literal]]
number = 5.0

[[literal]]
string = "zort"

[[literal]]
number = 10.0

[[template]]
name = "outer"
registers = 4
code = ["08000000", "08010001", "08020001", "0b030001", "03000000"]

[[template]]
name = "inner"
registers = 2
captures = ["r0"]
code = ["0x0800_0002"]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(scenario))
	require.Nil(t, err)
	require.Equal(t, 0, p.Entry)
	require.Equal(t, []object.Object{
		object.NewNumber(5),
		object.NewString("zort"),
		object.NewNumber(10),
	}, p.Literals)

	require.Len(t, p.Templates, 2)
	outer := p.Templates[0]
	require.Equal(t, "outer", outer.Name())
	require.Equal(t, 4, outer.RegisterCount())
	require.Equal(t, 5, outer.InstructionCount())
	require.Equal(t, bytecode.CaptureFunc(3, 1), outer.InstructionAt(3))

	inner := p.Templates[1]
	require.Equal(t, 1, inner.CaptureCount())
	require.Equal(t, bytecode.FromRegister(0), inner.CaptureInfoAt(0))
	require.Equal(t, bytecode.GetLiteralR(0, 2), inner.InstructionAt(0))
}

func TestRun(t *testing.T) {
	p, err := Parse([]byte(scenario))
	require.Nil(t, err)
	result, err := p.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, object.NewNumber(5), result)
}

func TestLiteralKinds(t *testing.T) {
	p, err := Parse([]byte(`
[[literal]]
nil = true

[[literal]]
undefined = true

[[literal]]
list = [{number = 1.0}, {string = "a"}, {list = []}]

[[template]]
name = "main"
`))
	require.Nil(t, err)
	require.Equal(t, object.Nil, p.Literals[0])
	require.Equal(t, object.Undefined, p.Literals[1])
	require.Equal(t, `[1 "a" []]`, p.Literals[2].Inspect())
}

func TestParseErrorsAreAggregated(t *testing.T) {
	_, err := Parse([]byte(`
entry = 3
bogus = 1

[[literal]]

[[literal]]
number = 1.0
string = "x"

[[template]]
name = "bad"
registers = 300
captures = ["x1", "c70000"]
code = ["0800", "ff000000"]
`))
	require.NotNil(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	msg := err.Error()
	require.Contains(t, msg, `unknown key "bogus"`)
	require.Contains(t, msg, "literal 0: no value given")
	require.Contains(t, msg, "literal 1: more than one value given (number, string)")
	require.Contains(t, msg, "registers must be between 0 and 255, got 300")
	require.Contains(t, msg, `capture 0: invalid capture "x1": must start with r or c`)
	require.Contains(t, msg, `capture 1: invalid capture index "c70000"`)
	require.Contains(t, msg, `instruction 0: invalid instruction word "0800": want 8 hex digits`)
	require.Contains(t, msg, "instruction 1: UndefinedInstruction: undefined instruction with opcode 255 at offset 1")
	require.Contains(t, msg, "entry 3 is out of range for 1 templates")
	require.True(t, errors.Is(err, errz.ErrUndefinedInstruction))
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("entry = "))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "parse error")
}

func TestLoadWithCodeFile(t *testing.T) {
	dir := t.TempDir()
	code := bytecode.EncodeBytes([]bytecode.Instruction{
		bytecode.PushLiteral(0),
		bytecode.RetfMethodS(),
	})
	require.Nil(t, os.WriteFile(filepath.Join(dir, "main.bin"), code, 0o644))
	manifest := `
[[literal]]
string = "loaded"

[[template]]
name = "main"
code-file = "main.bin"
`
	path := filepath.Join(dir, "prog.toml")
	require.Nil(t, os.WriteFile(path, []byte(manifest), 0o644))

	p, err := Load(path)
	require.Nil(t, err)
	require.Equal(t, 2, p.Templates[0].InstructionCount())
	result, err := p.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, object.NewString("loaded"), result)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.ErrorContains(t, err, "cannot read")
}

func TestCodeAndCodeFileConflict(t *testing.T) {
	_, err := Parse([]byte(`
[[template]]
code = ["00000000"]
code-file = "x.bin"
`))
	require.ErrorContains(t, err, "code and code-file are mutually exclusive")
}

func TestParseCapture(t *testing.T) {
	info, err := ParseCapture("r12")
	require.Nil(t, err)
	require.Equal(t, bytecode.FromRegister(12), info)

	info, err = ParseCapture("c300")
	require.Nil(t, err)
	require.Equal(t, bytecode.FromCapture(300), info)

	_, err = ParseCapture("r256")
	require.NotNil(t, err)
	_, err = ParseCapture("r")
	require.NotNil(t, err)
}

func TestParseWord(t *testing.T) {
	word, err := ParseWord("0B030001")
	require.Nil(t, err)
	require.Equal(t, uint32(0x0b030001), word)

	_, err = ParseWord("zz030001")
	require.NotNil(t, err)
}
