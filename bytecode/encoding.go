package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/op"
)

// WordSize is the size in bytes of an encoded instruction.
const WordSize = 4

// Encode returns the 32-bit word for the instruction. Byte 0 is the opcode.
// Register form puts A, B and C in bytes 1 to 3; immediate form puts A in
// byte 1 and Imm, big-endian, in bytes 2 and 3.
func (i Instruction) Encode() uint32 {
	var b [WordSize]byte
	b[0] = byte(i.Op)
	b[1] = i.A
	if op.GetInfo(i.Op).Form == op.Immediate {
		binary.BigEndian.PutUint16(b[2:], i.Imm)
	} else {
		b[2] = i.B
		b[3] = i.C
	}
	return binary.BigEndian.Uint32(b[:])
}

// DecodeWord decodes a single instruction word. The offset is only used to
// identify the word in errors.
func DecodeWord(word uint32, offset int) (Instruction, error) {
	var b [WordSize]byte
	binary.BigEndian.PutUint32(b[:], word)
	code := op.Code(b[0])
	info := op.GetInfo(code)
	if !info.Valid() {
		return Instruction{}, errz.NewUndefinedInstruction(int(b[0]), offset)
	}
	// Operand bytes are kept as found so that encoding a decoded word
	// reproduces it exactly.
	switch info.Form {
	case op.Immediate:
		return Instruction{Op: code, A: b[1], Imm: binary.BigEndian.Uint16(b[2:])}, nil
	default:
		return Instruction{Op: code, A: b[1], B: b[2], C: b[3]}, nil
	}
}

// Decode decodes a sequence of instruction words. It stops at the first word
// with an undefined opcode.
func Decode(words []uint32) ([]Instruction, error) {
	instructions := make([]Instruction, 0, len(words))
	for offset, word := range words {
		instr, err := DecodeWord(word, offset)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instr)
	}
	return instructions, nil
}

// DecodeBytes decodes instructions from big-endian bytes. The length of data
// must be a multiple of WordSize.
func DecodeBytes(data []byte) ([]Instruction, error) {
	if len(data)%WordSize != 0 {
		return nil, fmt.Errorf("instruction data length %d is not a multiple of %d", len(data), WordSize)
	}
	words := make([]uint32, len(data)/WordSize)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*WordSize:])
	}
	return Decode(words)
}

// Encode encodes a sequence of instructions as words.
func Encode(instructions []Instruction) []uint32 {
	words := make([]uint32, len(instructions))
	for i, instr := range instructions {
		words[i] = instr.Encode()
	}
	return words
}

// EncodeBytes encodes a sequence of instructions as big-endian bytes.
func EncodeBytes(instructions []Instruction) []byte {
	data := make([]byte, len(instructions)*WordSize)
	for i, instr := range instructions {
		binary.BigEndian.PutUint32(data[i*WordSize:], instr.Encode())
	}
	return data
}
