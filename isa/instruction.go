package isa

import (
	"fmt"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Op    Op     // Variant tag.
	Rd    uint8  // Destination register.
	Rs1   uint8  // First source register, or the CSR immediate.
	Rs2   uint8  // Second source register.
	Imm   uint32 // Raw immediate field of the format.
	Shamt uint32 // Shift amount of SLLI, SRLI and SRAI.

	Word uint32 // Encoded word; the low half only for compressed forms.
	Len  int    // Encoded length in bytes, 2 or 4.
}

// SignExtend widens the low 'bits' bits of value, treating the top one as
// the sign.
func SignExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// Length classifies an encoding by its first 16 bits. Compressed encodings
// are 2 bytes long, everything else is treated as 4 bytes.
func Length(low16 uint16) int {
	if low16&0x3 != 0x3 {
		return 2
	}
	return 4
}

// Offset returns the signed immediate of the instruction, widened from its
// format's field width.
func (in Instruction) Offset() int32 {
	switch in.Op.Format() {
	case FORMAT_I, FORMAT_LOAD, FORMAT_S:
		return int32(SignExtend(in.Imm, 12))
	case FORMAT_B:
		return int32(SignExtend(in.Imm, 13))
	case FORMAT_J:
		return int32(SignExtend(in.Imm, 21))
	case FORMAT_U:
		return int32(in.Imm)
	}
	return 0
}

// String returns the instruction in assembler syntax.
func (in Instruction) String() string {
	op := in.Op
	switch op.Format() {
	case FORMAT_R:
		return fmt.Sprintf("%v x%d, x%d, x%d", op, in.Rd, in.Rs1, in.Rs2)
	case FORMAT_I:
		return fmt.Sprintf("%v x%d, x%d, %d", op, in.Rd, in.Rs1, in.Offset())
	case FORMAT_SHIFT:
		return fmt.Sprintf("%v x%d, x%d, %d", op, in.Rd, in.Rs1, in.Shamt)
	case FORMAT_LOAD:
		return fmt.Sprintf("%v x%d, %d(x%d)", op, in.Rd, in.Offset(), in.Rs1)
	case FORMAT_S:
		return fmt.Sprintf("%v x%d, %d(x%d)", op, in.Rs2, in.Offset(), in.Rs1)
	case FORMAT_B:
		return fmt.Sprintf("%v x%d, x%d, %d", op, in.Rs1, in.Rs2, in.Offset())
	case FORMAT_U:
		return fmt.Sprintf("%v x%d, 0x%x", op, in.Rd, in.Imm>>12)
	case FORMAT_J:
		return fmt.Sprintf("%v x%d, %d", op, in.Rd, in.Offset())
	case FORMAT_CSR:
		return fmt.Sprintf("%v x%d, 0x%03x, x%d", op, in.Rd, in.Imm, in.Rs1)
	case FORMAT_CSRI:
		return fmt.Sprintf("%v x%d, 0x%03x, %d", op, in.Rd, in.Imm, in.Rs1)
	}
	return op.String()
}
