package isa

// Decode decodes one instruction word. Words whose low two bits are not
// 0b11 are decoded as 16-bit compressed instructions from the low half.
func Decode(word uint32) (in Instruction, err error) {
	if Length(uint16(word)) == 2 {
		return decodeCompressed(uint16(word))
	}

	defer func() {
		if err != nil {
			err = &ErrDecode{Word: word, Len: 4, Err: err}
			in = Instruction{}
		}
	}()

	// Bits 4:2 all set select the 48-bit and longer encodings.
	if word&0x1c == 0x1c {
		err = ErrReserved
		return
	}

	opcode := word & 0x7f
	funct3 := (word >> 12) & 0x7
	funct7 := word >> 25

	in = Instruction{
		Word: word,
		Len:  4,
		Rd:   uint8((word >> 7) & 0x1f),
		Rs1:  uint8((word >> 15) & 0x1f),
		Rs2:  uint8((word >> 20) & 0x1f),
	}

	var key uint32
	switch opcode {
	case OPCODE_LUI:
		in.Op = OP_LUI
	case OPCODE_AUIPC:
		in.Op = OP_AUIPC
	case OPCODE_JAL:
		in.Op = OP_JAL
	case OPCODE_SYSTEM:
		if funct3 == 0 {
			switch word {
			case 0x00000073:
				in.Op = OP_ECALL
			case 0x00100073:
				in.Op = OP_EBREAK
			default:
				err = ErrIllegal
				return
			}
		} else {
			key = decodeKey(opcode, funct3, 0)
		}
	case OPCODE_OP:
		key = decodeKey(opcode, funct3, funct7)
	case OPCODE_OP_IMM:
		if funct3 == 1 || funct3 == 5 {
			key = decodeKey(opcode, funct3, funct7)
		} else {
			key = decodeKey(opcode, funct3, 0)
		}
	default:
		key = decodeKey(opcode, funct3, 0)
	}

	if in.Op == OP_ILLEGAL {
		op, ok := decodeTable[key]
		if !ok {
			err = ErrIllegal
			return
		}
		in.Op = op
	}

	switch in.Op.Format() {
	case FORMAT_NONE:
		in.Rd, in.Rs1, in.Rs2 = 0, 0, 0
	case FORMAT_R:
		// All fields already in place.
	case FORMAT_I, FORMAT_LOAD:
		in.Rs2 = 0
		in.Imm = word >> 20
	case FORMAT_SHIFT:
		in.Rs2 = 0
		in.Shamt = (word >> 20) & 0x1f
		in.Imm = word >> 20
	case FORMAT_S:
		in.Rd = 0
		in.Imm = (word>>20)&0xfe0 | (word>>7)&0x1f
	case FORMAT_B:
		in.Rd = 0
		in.Imm = (word>>19)&0x1000 | (word<<4)&0x800 | (word>>20)&0x7e0 | (word>>7)&0x1e
	case FORMAT_U:
		in.Rs1, in.Rs2 = 0, 0
		in.Imm = word & 0xfffff000
	case FORMAT_J:
		in.Rs1, in.Rs2 = 0, 0
		in.Imm = (word>>11)&0x100000 | word&0xff000 | (word>>9)&0x800 | (word>>20)&0x7fe
	case FORMAT_CSR, FORMAT_CSRI:
		in.Rs2 = 0
		in.Imm = word >> 20
	}

	return
}
