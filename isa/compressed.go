package isa

// Compressed quadrants, bits 1:0 of a 16-bit instruction.
const (
	QUADRANT_0 = 0
	QUADRANT_1 = 1
	QUADRANT_2 = 2
)

// cReg maps the 3-bit register fields of the CIW, CL, CS, CA and CB formats
// onto x8..x15.
func cReg(field uint16) uint8 {
	return uint8(8 + field&0x7)
}

// decodeCompressed expands a 16-bit RV32C instruction into the base-ISA
// variant it is defined as.
func decodeCompressed(half uint16) (in Instruction, err error) {
	defer func() {
		if err != nil {
			err = &ErrDecode{Word: uint32(half), Len: 2, Err: err}
			in = Instruction{}
			return
		}
		in.Word = uint32(half)
		in.Len = 2
	}()

	// The all-zero halfword is defined to be illegal.
	if half == 0 {
		err = ErrIllegal
		return
	}

	h := uint32(half)
	funct3 := (half >> 13) & 0x7
	rd := uint8((half >> 7) & 0x1f)
	rs2 := uint8((half >> 2) & 0x1f)

	// CI format 6-bit immediate: imm[5] in bit 12, imm[4:0] in bits 6:2.
	imm6 := (h>>7)&0x20 | (h>>2)&0x1f

	switch half & 0x3 {
	case QUADRANT_0:
		rdp := cReg(half >> 2)
		rs1p := cReg(half >> 7)
		uimm := (h>>7)&0x38 | (h>>4)&0x4 | (h<<1)&0x40
		switch funct3 {
		case 0: // c.addi4spn
			nzuimm := (h>>7)&0x30 | (h>>1)&0x3c0 | (h>>4)&0x4 | (h>>2)&0x8
			if nzuimm == 0 {
				err = ErrReserved
				return
			}
			in = Instruction{Op: OP_ADDI, Rd: rdp, Rs1: 2, Imm: nzuimm}
		case 2: // c.lw
			in = Instruction{Op: OP_LW, Rd: rdp, Rs1: rs1p, Imm: uimm}
		case 6: // c.sw
			in = Instruction{Op: OP_SW, Rs1: rs1p, Rs2: rdp, Imm: uimm}
		default:
			err = ErrIllegal
		}
	case QUADRANT_1:
		switch funct3 {
		case 0: // c.addi, c.nop
			in = Instruction{Op: OP_ADDI, Rd: rd, Rs1: rd, Imm: SignExtend(imm6, 6) & 0xfff}
		case 1, 5: // c.jal, c.j
			off := (h>>1)&0x800 | (h>>7)&0x10 | (h>>1)&0x300 | (h<<2)&0x400 |
				(h>>1)&0x40 | (h<<1)&0x80 | (h>>2)&0xe | (h<<3)&0x20
			in = Instruction{Op: OP_JAL, Imm: SignExtend(off, 12) & 0x1fffff}
			if funct3 == 1 {
				in.Rd = 1
			}
		case 2: // c.li
			in = Instruction{Op: OP_ADDI, Rd: rd, Rs1: 0, Imm: SignExtend(imm6, 6) & 0xfff}
		case 3:
			if rd == 2 { // c.addi16sp
				nzimm := (h>>3)&0x200 | (h>>2)&0x10 | (h<<1)&0x40 | (h<<4)&0x180 | (h<<3)&0x20
				if nzimm == 0 {
					err = ErrReserved
					return
				}
				in = Instruction{Op: OP_ADDI, Rd: 2, Rs1: 2, Imm: SignExtend(nzimm, 10) & 0xfff}
			} else { // c.lui
				if imm6 == 0 {
					err = ErrReserved
					return
				}
				in = Instruction{Op: OP_LUI, Rd: rd, Imm: SignExtend(imm6, 6) << 12}
			}
		case 4:
			rdp := cReg(half >> 7)
			rs2p := cReg(half >> 2)
			switch (half >> 10) & 0x3 {
			case 0, 1: // c.srli, c.srai
				if imm6&0x20 != 0 {
					err = ErrReserved
					return
				}
				op := OP_SRLI
				if (half>>10)&0x3 == 1 {
					op = OP_SRAI
				}
				in = Instruction{Op: op, Rd: rdp, Rs1: rdp, Shamt: imm6}
				in.Imm, _ = ShiftImm(op, imm6)
			case 2: // c.andi
				in = Instruction{Op: OP_ANDI, Rd: rdp, Rs1: rdp, Imm: SignExtend(imm6, 6) & 0xfff}
			case 3:
				if half&0x1000 != 0 {
					err = ErrReserved
					return
				}
				ops := [4]Op{OP_SUB, OP_XOR, OP_OR, OP_AND}
				in = Instruction{Op: ops[(half>>5)&0x3], Rd: rdp, Rs1: rdp, Rs2: rs2p}
			}
		case 6, 7: // c.beqz, c.bnez
			off := (h>>4)&0x100 | (h>>7)&0x18 | (h<<1)&0xc0 | (h>>2)&0x6 | (h<<3)&0x20
			op := OP_BEQ
			if funct3 == 7 {
				op = OP_BNE
			}
			in = Instruction{Op: op, Rs1: cReg(half >> 7), Rs2: 0, Imm: SignExtend(off, 9) & 0x1fff}
		}
	case QUADRANT_2:
		switch funct3 {
		case 0: // c.slli
			if imm6&0x20 != 0 {
				err = ErrReserved
				return
			}
			in = Instruction{Op: OP_SLLI, Rd: rd, Rs1: rd, Shamt: imm6, Imm: imm6}
		case 2: // c.lwsp
			if rd == 0 {
				err = ErrReserved
				return
			}
			uimm := (h>>7)&0x20 | (h>>2)&0x1c | (h<<4)&0xc0
			in = Instruction{Op: OP_LW, Rd: rd, Rs1: 2, Imm: uimm}
		case 4:
			if half&0x1000 == 0 {
				if rs2 == 0 { // c.jr
					if rd == 0 {
						err = ErrReserved
						return
					}
					in = Instruction{Op: OP_JALR, Rd: 0, Rs1: rd}
				} else { // c.mv
					in = Instruction{Op: OP_ADD, Rd: rd, Rs1: 0, Rs2: rs2}
				}
			} else {
				switch {
				case rd == 0 && rs2 == 0: // c.ebreak
					in = Instruction{Op: OP_EBREAK}
				case rs2 == 0: // c.jalr
					in = Instruction{Op: OP_JALR, Rd: 1, Rs1: rd}
				default: // c.add
					in = Instruction{Op: OP_ADD, Rd: rd, Rs1: rd, Rs2: rs2}
				}
			}
		case 6: // c.swsp
			uimm := (h>>7)&0x3c | (h>>1)&0xc0
			in = Instruction{Op: OP_SW, Rs1: 2, Rs2: rs2, Imm: uimm}
		default:
			err = ErrIllegal
		}
	}

	return
}

// ShiftImm returns the I-format immediate field of a shift-by-immediate op.
func ShiftImm(op Op, shamt uint32) (imm uint32, ok bool) {
	switch op {
	case OP_SLLI, OP_SRLI:
		return shamt & 0x1f, true
	case OP_SRAI:
		return 0x400 | shamt&0x1f, true
	}
	return
}
