// Package program loads Kut programs from TOML manifests.
//
// A manifest lists the literal pool, the template pool and the index of the
// entry template:
//
//	entry = 0
//
//	[[literal]]
//	number = 5.0
//
//	[[literal]]
//	string = "zort"
//
//	[[template]]
//	name = "main"
//	registers = 4
//	captures = []
//	code = ["08000000", "08010001", "0b030001"]
//
// Each literal sets exactly one of number, string, nil, undefined or list;
// list holds inline literal tables. Template code is a list of hex-encoded
// big-endian instruction words, or a code-file path naming a raw binary file
// of words relative to the manifest. Captures are "rN" for an enclosing
// register and "cN" for an enclosing capture.
package program

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/object"
	"github.com/deepnoodle-ai/kut/vm"
)

// Manifest is the decoded form of a program file.
type Manifest struct {
	Entry     int        `toml:"entry"`
	Literals  []Literal  `toml:"literal"`
	Templates []Template `toml:"template"`
}

// Literal describes one entry of the literal pool.
type Literal struct {
	Number    *float64  `toml:"number"`
	String    *string   `toml:"string"`
	Nil       bool      `toml:"nil"`
	Undefined bool      `toml:"undefined"`
	List      []Literal `toml:"list"`
}

// Template describes one entry of the template pool.
type Template struct {
	Name      string   `toml:"name"`
	Registers int      `toml:"registers"`
	Captures  []string `toml:"captures"`
	Code      []string `toml:"code"`
	CodeFile  string   `toml:"code-file"`
}

// Program is a loaded program, ready to run.
type Program struct {
	Entry     int
	Literals  []object.Object
	Templates []*bytecode.Template
}

// Load reads and parses the manifest at path. Code files are resolved
// relative to the manifest's directory.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	p, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse parses a manifest. Code files are resolved relative to the working
// directory.
func Parse(data []byte) (*Program, error) {
	return parse(data, ".")
}

func parse(data []byte, dir string) (*Program, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	var result *multierror.Error
	for _, key := range md.Undecoded() {
		result = multierror.Append(result, fmt.Errorf("unknown key %q", key.String()))
	}
	p, err := m.build(dir)
	if err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return p, nil
}

// Build converts the manifest into a program, reporting every problem.
func (m *Manifest) Build() (*Program, error) {
	return m.build(".")
}

func (m *Manifest) build(dir string) (*Program, error) {
	var result *multierror.Error
	p := &Program{Entry: m.Entry}
	for i, lit := range m.Literals {
		obj, err := lit.object()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("literal %d: %w", i, err))
			continue
		}
		p.Literals = append(p.Literals, obj)
	}
	for i, tmpl := range m.Templates {
		t, err := tmpl.template(dir)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("template %d (%s): %w", i, tmpl.Name, err))
			continue
		}
		p.Templates = append(p.Templates, t)
	}
	if m.Entry < 0 || m.Entry >= len(m.Templates) {
		result = multierror.Append(result,
			fmt.Errorf("entry %d is out of range for %d templates", m.Entry, len(m.Templates)))
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return p, nil
}

func (l Literal) object() (object.Object, error) {
	var kinds []string
	var obj object.Object
	if l.Number != nil {
		kinds = append(kinds, "number")
		obj = object.NewNumber(*l.Number)
	}
	if l.String != nil {
		kinds = append(kinds, "string")
		obj = object.NewString(*l.String)
	}
	if l.Nil {
		kinds = append(kinds, "nil")
		obj = object.Nil
	}
	if l.Undefined {
		kinds = append(kinds, "undefined")
		obj = object.Undefined
	}
	if l.List != nil {
		kinds = append(kinds, "list")
		items := make([]object.Object, 0, len(l.List))
		for i, item := range l.List {
			value, err := item.object()
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, value)
		}
		obj = object.NewList(items)
	}
	switch len(kinds) {
	case 0:
		return nil, fmt.Errorf("no value given")
	case 1:
		return obj, nil
	default:
		return nil, fmt.Errorf("more than one value given (%s)", strings.Join(kinds, ", "))
	}
}

func (t Template) template(dir string) (*bytecode.Template, error) {
	var result *multierror.Error
	if t.Registers < 0 || t.Registers > math.MaxUint8 {
		result = multierror.Append(result,
			fmt.Errorf("registers must be between 0 and %d, got %d", math.MaxUint8, t.Registers))
	}
	captures := make([]bytecode.CaptureInfo, 0, len(t.Captures))
	for i, s := range t.Captures {
		info, err := ParseCapture(s)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("capture %d: %w", i, err))
			continue
		}
		captures = append(captures, info)
	}
	instructions, err := t.instructions(dir)
	if err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return bytecode.NewTemplate(bytecode.TemplateParams{
		Name:          t.Name,
		Instructions:  instructions,
		Captures:      captures,
		RegisterCount: uint8(t.Registers),
	}), nil
}

func (t Template) instructions(dir string) ([]bytecode.Instruction, error) {
	if t.CodeFile != "" {
		if len(t.Code) > 0 {
			return nil, fmt.Errorf("code and code-file are mutually exclusive")
		}
		path := t.CodeFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read code file: %w", err)
		}
		return bytecode.DecodeBytes(data)
	}
	var result *multierror.Error
	instructions := make([]bytecode.Instruction, 0, len(t.Code))
	for offset, s := range t.Code {
		word, err := ParseWord(s)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("instruction %d: %w", offset, err))
			continue
		}
		instr, err := bytecode.DecodeWord(word, offset)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("instruction %d: %w", offset, err))
			continue
		}
		instructions = append(instructions, instr)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return instructions, nil
}

// ParseWord parses a hex-encoded instruction word such as "0b030001". An
// optional 0x prefix and underscores between digits are accepted.
func ParseWord(s string) (uint32, error) {
	digits := strings.ReplaceAll(strings.TrimPrefix(strings.ToLower(s), "0x"), "_", "")
	if len(digits) != 2*bytecode.WordSize {
		return 0, fmt.Errorf("invalid instruction word %q: want %d hex digits", s, 2*bytecode.WordSize)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid instruction word %q: %w", s, err)
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// ParseCapture parses a capture descriptor: "r3" captures enclosing register
// 3 and "c1" shares enclosing capture 1.
func ParseCapture(s string) (bytecode.CaptureInfo, error) {
	if len(s) < 2 {
		return bytecode.CaptureInfo{}, fmt.Errorf("invalid capture %q", s)
	}
	switch s[0] {
	case 'r':
		n, err := strconv.ParseUint(s[1:], 10, 8)
		if err != nil {
			return bytecode.CaptureInfo{}, fmt.Errorf("invalid capture register %q", s)
		}
		return bytecode.FromRegister(uint8(n)), nil
	case 'c':
		n, err := strconv.ParseUint(s[1:], 10, 16)
		if err != nil {
			return bytecode.CaptureInfo{}, fmt.Errorf("invalid capture index %q", s)
		}
		return bytecode.FromCapture(uint16(n)), nil
	default:
		return bytecode.CaptureInfo{}, fmt.Errorf("invalid capture %q: must start with r or c", s)
	}
}

// Run executes the program's entry template.
func (p *Program) Run(ctx context.Context, options ...vm.Option) (object.Object, error) {
	return vm.Run(ctx, p.Literals, p.Templates, p.Entry, options...)
}
