package bytecode

import (
	"bytes"
	"fmt"
)

// CaptureKind says where a closure obtains a captured value from.
type CaptureKind uint8

const (
	// CaptureFromRegister captures a register of the enclosing activation.
	CaptureFromRegister CaptureKind = iota
	// CaptureFromCapture re-captures one of the enclosing closure's captures.
	CaptureFromCapture
)

// CaptureInfo describes one captured value of a template.
type CaptureInfo struct {
	Kind  CaptureKind
	Index uint16
}

// FromRegister describes a capture of the enclosing activation's register r.
func FromRegister(r uint8) CaptureInfo {
	return CaptureInfo{Kind: CaptureFromRegister, Index: uint16(r)}
}

// FromCapture describes a capture of the enclosing closure's capture c.
func FromCapture(c uint16) CaptureInfo {
	return CaptureInfo{Kind: CaptureFromCapture, Index: c}
}

func (c CaptureInfo) String() string {
	if c.Kind == CaptureFromRegister {
		return fmt.Sprintf("r%d", c.Index)
	}
	return fmt.Sprintf("c%d", c.Index)
}

// Template is an immutable function blueprint. Closures are created from it
// at runtime.
type Template struct {
	name          string
	instructions  []Instruction
	captures      []CaptureInfo
	registerCount uint8
}

// TemplateParams contains parameters for creating a new Template.
type TemplateParams struct {
	Name          string
	Instructions  []Instruction
	Captures      []CaptureInfo
	RegisterCount uint8
}

// NewTemplate creates a new immutable Template. Input slices are copied.
func NewTemplate(params TemplateParams) *Template {
	instructions := make([]Instruction, len(params.Instructions))
	copy(instructions, params.Instructions)
	captures := make([]CaptureInfo, len(params.Captures))
	copy(captures, params.Captures)
	return &Template{
		name:          params.Name,
		instructions:  instructions,
		captures:      captures,
		registerCount: params.RegisterCount,
	}
}

// Name returns the template name, or an empty string.
func (t *Template) Name() string {
	return t.name
}

// InstructionCount returns the number of instructions.
func (t *Template) InstructionCount() int {
	return len(t.instructions)
}

// InstructionAt returns the instruction at the given index.
func (t *Template) InstructionAt(index int) Instruction {
	return t.instructions[index]
}

// CaptureCount returns the number of capture descriptors.
func (t *Template) CaptureCount() int {
	return len(t.captures)
}

// CaptureInfoAt returns the capture descriptor at the given index.
func (t *Template) CaptureInfoAt(index int) CaptureInfo {
	return t.captures[index]
}

// RegisterCount returns the number of registers an activation of this
// template has.
func (t *Template) RegisterCount() int {
	return int(t.registerCount)
}

// String returns a listing of the template.
func (t *Template) String() string {
	var out bytes.Buffer
	out.WriteString("func")
	if t.name != "" {
		out.WriteString(" " + t.name)
	}
	fmt.Fprintf(&out, " of %d registers and %d captures\n", t.registerCount, len(t.captures))
	for _, instr := range t.instructions {
		out.WriteString("   ")
		out.WriteString(instr.String())
		out.WriteString("\n")
	}
	return out.String()
}
