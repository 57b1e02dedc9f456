package cpu

import (
	"errors"

	"github.com/ezrec/rv32sim/isa"
)

// AluOp is an ALU operation.
type AluOp int

const (
	ALU_OP_ADD  = AluOp(0)  // add
	ALU_OP_SUB  = AluOp(1)  // sub
	ALU_OP_SLL  = AluOp(2)  // sll
	ALU_OP_SLT  = AluOp(3)  // slt
	ALU_OP_SLTU = AluOp(4)  // sltu
	ALU_OP_XOR  = AluOp(5)  // xor
	ALU_OP_SRL  = AluOp(6)  // srl
	ALU_OP_SRA  = AluOp(7)  // sra
	ALU_OP_OR   = AluOp(8)  // or
	ALU_OP_AND  = AluOp(9)  // and
	ALU_OP_SET  = AluOp(10) // set
)

// Operand selects the second ALU input of an instruction.
type Operand int

const (
	OPERAND_RS2   = Operand(0) // reg[rs2]
	OPERAND_IMM   = Operand(1) // sign-extended imm[11:0]
	OPERAND_SHAMT = Operand(2) // shamt[4:0]
	OPERAND_UPPER = Operand(3) // imm[31:12], as decoded
)

// Semantic is how an instruction variant is applied to the register file:
// reg[rd] = alu(reg[rs1], operand).
type Semantic struct {
	Alu     AluOp
	Operand Operand
}

// Semantics is the table of executable instruction variants.
var Semantics = map[isa.Op]Semantic{
	isa.OP_ADD:  {ALU_OP_ADD, OPERAND_RS2},
	isa.OP_SUB:  {ALU_OP_SUB, OPERAND_RS2},
	isa.OP_SLL:  {ALU_OP_SLL, OPERAND_RS2},
	isa.OP_SLT:  {ALU_OP_SLT, OPERAND_RS2},
	isa.OP_SLTU: {ALU_OP_SLTU, OPERAND_RS2},
	isa.OP_XOR:  {ALU_OP_XOR, OPERAND_RS2},
	isa.OP_SRL:  {ALU_OP_SRL, OPERAND_RS2},
	isa.OP_SRA:  {ALU_OP_SRA, OPERAND_RS2},
	isa.OP_OR:   {ALU_OP_OR, OPERAND_RS2},
	isa.OP_AND:  {ALU_OP_AND, OPERAND_RS2},

	isa.OP_ADDI:  {ALU_OP_ADD, OPERAND_IMM},
	isa.OP_SLTI:  {ALU_OP_SLT, OPERAND_IMM},
	isa.OP_SLTIU: {ALU_OP_SLTU, OPERAND_IMM},
	isa.OP_XORI:  {ALU_OP_XOR, OPERAND_IMM},
	isa.OP_ORI:   {ALU_OP_OR, OPERAND_IMM},
	isa.OP_ANDI:  {ALU_OP_AND, OPERAND_IMM},
	isa.OP_SLLI:  {ALU_OP_SLL, OPERAND_SHAMT},
	isa.OP_SRLI:  {ALU_OP_SRL, OPERAND_SHAMT},
	isa.OP_SRAI:  {ALU_OP_SRA, OPERAND_SHAMT},

	isa.OP_LUI: {ALU_OP_SET, OPERAND_UPPER},
}

// Supported returns true if the op can be executed.
func Supported(op isa.Op) (ok bool) {
	_, ok = Semantics[op]
	return
}

// Execute applies one decoded instruction to the register file. Both sources
// are read before the destination is written.
func Execute(in isa.Instruction, regs *Registers) (err error) {
	sem, ok := Semantics[in.Op]
	if !ok {
		err = errors.Join(ErrUnsupported, ErrOpcode(in))
		return
	}

	input := regs.Read(in.Rs1)

	var value uint32
	switch sem.Operand {
	case OPERAND_RS2:
		value = regs.Read(in.Rs2)
	case OPERAND_IMM:
		value = isa.SignExtend(in.Imm&0xfff, 12)
	case OPERAND_SHAMT:
		value = in.Shamt & 0x1f
	case OPERAND_UPPER:
		value = in.Imm
	}

	regs.Write(in.Rd, DoAlu(sem.Alu, input, value))

	return
}

// DoAlu performs the requested ALU action, and returns the output value.
func DoAlu(op AluOp, input uint32, value uint32) (output uint32) {
	switch op {
	case ALU_OP_ADD:
		output = input + value
	case ALU_OP_SUB:
		output = input - value
	case ALU_OP_SLL:
		value &= 0x1f // clamp to 31 bits of shift
		output = input << value
	case ALU_OP_SLT:
		if int32(input) < int32(value) {
			output = 1
		}
	case ALU_OP_SLTU:
		if input < value {
			output = 1
		}
	case ALU_OP_XOR:
		output = input ^ value
	case ALU_OP_SRL:
		value &= 0x1f
		output = input >> value
	case ALU_OP_SRA:
		value &= 0x1f
		output = uint32(int32(input) >> value)
	case ALU_OP_OR:
		output = input | value
	case ALU_OP_AND:
		output = input & value
	case ALU_OP_SET:
		output = value
	}

	return
}
