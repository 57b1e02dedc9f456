package isa

// FENCE_WORD is the canonical 'fence iorw, iorw' encoding.
const FENCE_WORD = uint32(0x0ff0000f)

// Encode returns the 32-bit encoding of an instruction. Register indexes are
// truncated to 5 bits and immediates to the width of their format field.
func Encode(in Instruction) (word uint32, err error) {
	if !in.Op.Valid() {
		err = ErrEncode
		return
	}

	enc := encodings[in.Op]

	rd := uint32(in.Rd&0x1f) << 7
	rs1 := uint32(in.Rs1&0x1f) << 15
	rs2 := uint32(in.Rs2&0x1f) << 20
	funct3 := enc.funct3 << 12
	funct7 := enc.funct7 << 25
	imm := in.Imm

	switch enc.format {
	case FORMAT_NONE:
		switch in.Op {
		case OP_ECALL:
			word = 0x00000073
		case OP_EBREAK:
			word = 0x00100073
		case OP_FENCE:
			word = FENCE_WORD
		default:
			word = funct3 | enc.opcode
		}
	case FORMAT_R:
		word = funct7 | rs2 | rs1 | funct3 | rd | enc.opcode
	case FORMAT_I, FORMAT_LOAD, FORMAT_CSR, FORMAT_CSRI:
		word = (imm&0xfff)<<20 | rs1 | funct3 | rd | enc.opcode
	case FORMAT_SHIFT:
		word = funct7 | (in.Shamt&0x1f)<<20 | rs1 | funct3 | rd | enc.opcode
	case FORMAT_S:
		word = (imm&0xfe0)<<20 | rs2 | rs1 | funct3 | (imm&0x1f)<<7 | enc.opcode
	case FORMAT_B:
		word = (imm&0x1000)<<19 | (imm&0x7e0)<<20 | rs2 | rs1 | funct3 |
			(imm&0x1e)<<7 | (imm&0x800)>>4 | enc.opcode
	case FORMAT_U:
		word = imm&0xfffff000 | rd | enc.opcode
	case FORMAT_J:
		word = (imm&0x100000)<<11 | (imm&0x7fe)<<20 | (imm&0x800)<<9 |
			imm&0xff000 | rd | enc.opcode
	}

	return
}
