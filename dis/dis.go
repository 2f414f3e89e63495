// Package dis supports analysis of Kut bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and the templates
// defined in the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/internal/table"
	"github.com/deepnoodle-ai/kut/object"
	"github.com/deepnoodle-ai/kut/op"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []int
	Annotation string
	Literal    object.Object
	Template   *bytecode.Template
}

// Program holds the pools that instruction operands refer to.
type Program struct {
	Literals  []object.Object
	Templates []*bytecode.Template
}

// Disassemble returns a parsed representation of the template's
// instructions. Operands that index the program's pools are resolved into
// annotations.
func Disassemble(t *bytecode.Template, program Program) ([]Instruction, error) {
	instructions := make([]Instruction, 0, t.InstructionCount())
	for offset := 0; offset < t.InstructionCount(); offset++ {
		instr := t.InstructionAt(offset)
		info := instr.Info()
		if !info.Valid() {
			return nil, fmt.Errorf("undefined opcode %d at offset %d", instr.Op, offset)
		}
		result := Instruction{
			Offset:   offset,
			Name:     info.Name,
			Opcode:   instr.Op,
			Operands: operands(instr, info),
		}
		switch instr.Op {
		case op.GetLiteralR, op.PushLiteral:
			lit, err := getLiteral(program, int(instr.Imm))
			if err != nil {
				return nil, err
			}
			result.Literal = lit
		case op.CaptureFunc, op.PushFuncStk:
			target, err := getTemplate(program, int(instr.Imm))
			if err != nil {
				return nil, err
			}
			result.Template = target
		case op.GetCaptureR, op.SetCaptureR, op.PushCapture, op.PopCaptureS:
			result.Annotation = fmt.Sprintf("capture %d", instr.Imm)
			if int(instr.Imm) < t.CaptureCount() {
				result.Annotation = fmt.Sprintf("capture %d (%s)", instr.Imm, t.CaptureInfoAt(int(instr.Imm)))
			}
		case op.CallMethodR:
			result.Annotation = fmt.Sprintf("argc=%d", instr.B)
		case op.CallMethodS:
			result.Annotation = fmt.Sprintf("argc=%d", instr.A)
		}
		instructions = append(instructions, result)
	}
	return instructions, nil
}

func operands(instr bytecode.Instruction, info op.Info) []int {
	switch info.Form {
	case op.Register:
		regs := []int{int(instr.A), int(instr.B), int(instr.C)}
		return regs[:info.OperandCount]
	case op.Immediate:
		if info.UsesRegister {
			return []int{int(instr.A), int(instr.Imm)}
		}
		return []int{int(instr.Imm)}
	default:
		return nil
	}
}

var (
	bold    = color.New(color.Bold).SprintFunc()
	italic  = color.New(color.Italic).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	cyan    = color.New(color.FgHiCyan).SprintFunc()
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, bold(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		switch {
		case instr.Literal != nil:
			values = append(values, formatLiteral(instr.Literal))
		case instr.Template != nil:
			name := instr.Template.Name()
			if name == "" {
				name = italic("<anonymous>")
			}
			values = append(values, magenta(fmt.Sprintf("func:%s", name)))
		case instr.Annotation != "":
			values = append(values, cyan(instr.Annotation))
		default:
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintTemplate writes a one-line summary of the template followed by its
// disassembly.
func PrintTemplate(t *bytecode.Template, program Program, writer io.Writer) error {
	instructions, err := Disassemble(t, program)
	if err != nil {
		return err
	}
	name := t.Name()
	if name == "" {
		name = "<anonymous>"
	}
	var captures []string
	for i := 0; i < t.CaptureCount(); i++ {
		captures = append(captures, t.CaptureInfoAt(i).String())
	}
	fmt.Fprintf(writer, "func %s registers=%d captures=[%s]\n",
		name, t.RegisterCount(), strings.Join(captures, " "))
	Print(instructions, writer)
	return nil
}

func formatLiteral(lit object.Object) string {
	switch lit := lit.(type) {
	case *object.Number:
		return yellow(lit.Inspect())
	case *object.String:
		s := lit.Value()
		if len(s) > 80 {
			s = s[:77] + "..."
		}
		return green(fmt.Sprintf("%q", s))
	default:
		return bold(lit.Inspect())
	}
}

func formatOperands(ops []int) string {
	var sb strings.Builder
	for i, op := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", op))
	}
	return sb.String()
}

func getLiteral(program Program, index int) (object.Object, error) {
	if len(program.Literals) <= index {
		return nil, fmt.Errorf("literal index out of range: %d", index)
	}
	return program.Literals[index], nil
}

func getTemplate(program Program, index int) (*bytecode.Template, error) {
	if len(program.Templates) <= index {
		return nil, fmt.Errorf("template index out of range: %d", index)
	}
	return program.Templates[index], nil
}
