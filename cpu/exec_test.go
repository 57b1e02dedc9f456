package cpu

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rv32sim/asm"
	"github.com/ezrec/rv32sim/isa"
)

// assembleAndExecute assembles a single instruction and executes it.
func assembleAndExecute(t *testing.T, code string, regs *Registers) {
	prog, err := asm.Assemble(code)
	if err != nil {
		t.Fatal(err)
	}

	words := prog.Code()
	if len(words) != 1 {
		t.Fatalf("%v: %v words", code, len(words))
	}

	in, err := isa.Decode(words[0])
	if err != nil {
		t.Fatal(err)
	}

	err = Execute(in, regs)
	if err != nil {
		t.Fatal(err)
	}
}

func TestExecute_R(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code     string
		rd       uint8
		rs1      uint32
		rs2      uint32
		expected uint32
	}){
		{"add x3, x1, x2", 3, 10, 20, 30},
		{"add x4, x1, x2", 4, 0xFFFFFFFF, 1, 0},
		{"add x5, x1, x2", 5, 0x7FFFFFFF, 1, 0x80000000},
		{"add x6, x1, x2", 6, 0x80000000, 0xFFFFFFFF, 0x7FFFFFFF},
		{"sub x7, x1, x2", 7, 20, 10, 10},
		{"sub x8, x1, x2", 8, 0, 1, 0xFFFFFFFF},
		{"sub x9, x1, x2", 9, 0x80000000, 1, 0x7FFFFFFF},
		{"sub x10, x1, x2", 10, 0x7FFFFFFF, 0xFFFFFFFF, 0x80000000},
		{"and x8, x1, x2", 8, 100, 60, 36},
		{"or x3, x1, x2", 3, 100, 60, 124},
		{"or x4, x1, x2", 4, 0xFFFFFFFF, 0, 0xFFFFFFFF},
		{"xor x10, x1, x2", 10, 100, 60, 88},
		{"xor x11, x1, x2", 11, 0xFFFFFFFF, 0, 0xFFFFFFFF},
		{"xor x12, x1, x2", 12, 0xFFFFFFFF, 0xFFFFFFFF, 0},
		{"sll x15, x1, x2", 15, 1, 2, 4},
		{"sll x15, x1, x2", 15, 1, 34, 4},
		{"srl x2, x1, x2", 2, 4, 2, 1},
		{"sra x7, x1, x2", 7, 0x80000000, 1, 0xC0000000},
		{"sra x8, x1, x2", 8, 0x7FFFFFFF, 1, 0x3FFFFFFF},
		{"slt x16, x1, x2", 16, 10, 20, 1},
		{"slt x31, x1, x2", 31, 20, 10, 0},
		{"slt x31, x1, x2", 31, 0xFFFFFFFF, 1, 1},
		{"sltu x11, x1, x2", 11, 20, 20, 0},
		{"sltu x12, x1, x2", 12, 10, 20, 1},
		{"sltu x7, x1, x2", 7, 20, 10, 0},
		{"sltu x7, x1, x2", 7, 0xFFFFFFFF, 1, 0},
		{"add x0, x1, x2", 0, 10, 20, 0},
	}

	for _, entry := range table {
		var regs Registers
		regs.Write(1, entry.rs1)
		regs.Write(2, entry.rs2)
		assembleAndExecute(t, entry.code, &regs)
		assert.Equal(entry.expected, regs.Read(entry.rd), entry.code)
	}
}

func TestExecute_I(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code     string
		rd       uint8
		rs1      uint8
		rs1Value uint32
		expected uint32
	}){
		{"addi x3, x2, 42", 3, 2, 10, 52},
		{"addi x4, x3, -1", 4, 3, 0, 0xFFFFFFFF},
		{"addi x5, x4, -1", 5, 4, 0xFFFFFFFF, 0xFFFFFFFE},
		{"addi x6, x12, 1", 6, 12, 0xFFFFFFFF, 0},
		{"addi x7, x13, -50", 7, 13, 100, 50},
		{"addi x8, x14, 0", 8, 14, 12345, 12345},
		{"ori x9, x15, 0xFF", 9, 15, 0x12345678, 0x123456FF},
		{"andi x9, x15, -16", 9, 15, 0x12345678, 0x12345670},
		{"xori x9, x15, -1", 9, 15, 0x12345678, 0xEDCBA987},
		{"slti x15, x21, 100", 15, 21, 50, 1},
		{"slti x16, x22, 100", 16, 22, 150, 0},
		{"slti x16, x22, -1", 16, 22, 0x80000000, 1},
		{"sltiu x17, x23, 100", 17, 23, 50, 1},
		{"sltiu x18, x24, 100", 18, 24, 150, 0},
		{"sltiu x19, x25, 100", 19, 25, 0xFFFFFFFF, 0},
		{"sltiu x19, x25, -1", 19, 25, 0xFFFFFFFE, 1},
		{"slli x3, x2, 4", 3, 2, 0x0F00000F, 0xF00000F0},
		{"srli x3, x2, 4", 3, 2, 0xF00000F0, 0x0F00000F},
		{"srai x3, x2, 4", 3, 2, 0xF00000F0, 0xFF00000F},
		{"srai x3, x2, 31", 3, 2, 0x80000000, 0xFFFFFFFF},
		{"lui x3, 0x12345", 3, 0, 0, 0x12345000},
		{"lui x3, 0xfffff", 3, 0, 0, 0xFFFFF000},
	}

	for _, entry := range table {
		var regs Registers
		regs.Write(entry.rs1, entry.rs1Value)
		assembleAndExecute(t, entry.code, &regs)
		assert.Equal(entry.expected, regs.Read(entry.rd), entry.code)
	}
}

func TestExecute_SameRegister(t *testing.T) {
	assert := assert.New(t)

	var regs Registers
	regs.Write(5, 7)
	assembleAndExecute(t, "add x5, x5, x5", &regs)
	assert.Equal(uint32(14), regs.Read(5))

	assembleAndExecute(t, "sub x5, x5, x5", &regs)
	assert.Equal(uint32(0), regs.Read(5))
}

func TestExecute_Unsupported(t *testing.T) {
	assert := assert.New(t)

	table := []isa.Instruction{
		{Op: isa.OP_LW, Rd: 1, Rs1: 2},
		{Op: isa.OP_SW, Rs1: 1, Rs2: 2},
		{Op: isa.OP_BEQ, Rs1: 1, Rs2: 2, Imm: 8},
		{Op: isa.OP_JAL, Rd: 1, Imm: 8},
		{Op: isa.OP_AUIPC, Rd: 1, Imm: 0x1000},
		{Op: isa.OP_ECALL},
		{Op: isa.OP_MUL, Rd: 1, Rs1: 2, Rs2: 3},
		{Op: isa.OP_ILLEGAL},
	}

	for _, in := range table {
		var regs Registers
		regs.Write(2, 0x100)
		before := regs

		err := Execute(in, &regs)
		assert.ErrorIs(err, ErrUnsupported, in.Op.String())
		assert.ErrorIs(err, ErrOpcode{}, in.Op.String())

		var eo ErrOpcode
		if assert.True(errors.As(err, &eo)) {
			assert.Equal(in, isa.Instruction(eo))
		}
		assert.Equal(before, regs, in.Op.String())
		assert.False(Supported(in.Op))
	}
}

func TestExecute_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("add then sub is identity", prop.ForAll(
		func(a, b uint32) bool {
			var regs Registers
			regs.Write(1, a)
			regs.Write(2, b)
			_ = Execute(isa.Instruction{Op: isa.OP_ADD, Rd: 3, Rs1: 1, Rs2: 2}, &regs)
			_ = Execute(isa.Instruction{Op: isa.OP_SUB, Rd: 3, Rs1: 3, Rs2: 2}, &regs)
			return regs.Read(3) == a
		},
		gen.UInt32(), gen.UInt32(),
	))

	properties.Property("shift amount uses only low five bits", prop.ForAll(
		func(a, b uint32) bool {
			for _, alu := range []AluOp{ALU_OP_SLL, ALU_OP_SRL, ALU_OP_SRA} {
				if DoAlu(alu, a, b) != DoAlu(alu, a, b&0x1f) {
					return false
				}
			}
			return true
		},
		gen.UInt32(), gen.UInt32(),
	))

	properties.Property("slt and sltu agree when signs match", prop.ForAll(
		func(a, b uint32) bool {
			if (a^b)&0x80000000 != 0 {
				return DoAlu(ALU_OP_SLT, a, b) != DoAlu(ALU_OP_SLTU, a, b)
			}
			return DoAlu(ALU_OP_SLT, a, b) == DoAlu(ALU_OP_SLTU, a, b)
		},
		gen.UInt32(), gen.UInt32(),
	))

	properties.Property("x0 is never written", prop.ForAll(
		func(a uint32) bool {
			var regs Registers
			regs.Write(1, a)
			_ = Execute(isa.Instruction{Op: isa.OP_ADDI, Rd: 0, Rs1: 1, Imm: 1}, &regs)
			return regs.Read(0) == 0 && regs[0] == 0
		},
		gen.UInt32(),
	))

	properties.TestingRun(t)
}
