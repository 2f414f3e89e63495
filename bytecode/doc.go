// Package bytecode provides the instruction set encoding and the immutable
// function templates executed by the Kut virtual machine.
//
// # Key Types
//
//   - [Instruction]: a decoded instruction with typed operand fields
//   - [Template]: an immutable function blueprint (instructions, capture
//     descriptors, register count)
//   - [CaptureInfo]: where a closure built from a template takes each
//     captured value from
//
// # Encoding
//
// Each instruction is one 32-bit big-endian word. Byte 0 is the opcode and
// selects one of two operand shapes for the remaining bytes:
//
//	register form:  | opcode | A | B | C |
//	immediate form: | opcode | A | imm (16-bit, big-endian) |
//
// [Decode] fails on the first word whose opcode is undefined, reporting the
// opcode and its offset.
//
// # Immutability
//
// Templates are created once at load time and never change. Constructors copy
// their input slices, and index-based accessors are used instead of methods
// returning slices:
//
//	t.InstructionAt(0)
//	t.CaptureInfoAt(i)
//
// # Package Dependencies
//
// This package depends only on [github.com/deepnoodle-ai/kut/op] and
// [github.com/deepnoodle-ai/kut/errz] so that the object package can refer
// to templates without an import cycle.
package bytecode
