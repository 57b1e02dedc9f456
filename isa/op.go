package isa

// Op identifies a decoded instruction variant.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_ILLEGAL = Op(iota) // illegal

	// RV32I
	OP_LUI     // lui
	OP_AUIPC   // auipc
	OP_JAL     // jal
	OP_JALR    // jalr
	OP_BEQ     // beq
	OP_BNE     // bne
	OP_BLT     // blt
	OP_BGE     // bge
	OP_BLTU    // bltu
	OP_BGEU    // bgeu
	OP_LB      // lb
	OP_LH      // lh
	OP_LW      // lw
	OP_LBU     // lbu
	OP_LHU     // lhu
	OP_SB      // sb
	OP_SH      // sh
	OP_SW      // sw
	OP_ADDI    // addi
	OP_SLTI    // slti
	OP_SLTIU   // sltiu
	OP_XORI    // xori
	OP_ORI     // ori
	OP_ANDI    // andi
	OP_SLLI    // slli
	OP_SRLI    // srli
	OP_SRAI    // srai
	OP_ADD     // add
	OP_SUB     // sub
	OP_SLL     // sll
	OP_SLT     // slt
	OP_SLTU    // sltu
	OP_XOR     // xor
	OP_SRL     // srl
	OP_SRA     // sra
	OP_OR      // or
	OP_AND     // and
	OP_FENCE   // fence
	OP_FENCE_I // fence.i
	OP_ECALL   // ecall
	OP_EBREAK  // ebreak

	// Zicsr
	OP_CSRRW  // csrrw
	OP_CSRRS  // csrrs
	OP_CSRRC  // csrrc
	OP_CSRRWI // csrrwi
	OP_CSRRSI // csrrsi
	OP_CSRRCI // csrrci

	// RV32M
	OP_MUL    // mul
	OP_MULH   // mulh
	OP_MULHSU // mulhsu
	OP_MULHU  // mulhu
	OP_DIV    // div
	OP_DIVU   // divu
	OP_REM    // rem
	OP_REMU   // remu

	op_count
)

// Format is the operand layout of an instruction.
type Format int

const (
	FORMAT_NONE  = Format(iota) // no operands (ecall, ebreak, fence)
	FORMAT_R                    // rd, rs1, rs2
	FORMAT_I                    // rd, rs1, imm[11:0]
	FORMAT_SHIFT                // rd, rs1, shamt[4:0]
	FORMAT_LOAD                 // rd, imm[11:0](rs1)
	FORMAT_S                    // rs2, imm[11:0](rs1)
	FORMAT_B                    // rs1, rs2, imm[12:1]
	FORMAT_U                    // rd, imm[31:12]
	FORMAT_J                    // rd, imm[20:1]
	FORMAT_CSR                  // rd, csr, rs1
	FORMAT_CSRI                 // rd, csr, uimm[4:0]
)

// Major opcodes, bits 6:0 of a 32-bit instruction.
const (
	OPCODE_LOAD     = uint32(0x03)
	OPCODE_MISC_MEM = uint32(0x0f)
	OPCODE_OP_IMM   = uint32(0x13)
	OPCODE_AUIPC    = uint32(0x17)
	OPCODE_STORE    = uint32(0x23)
	OPCODE_OP       = uint32(0x33)
	OPCODE_LUI      = uint32(0x37)
	OPCODE_BRANCH   = uint32(0x63)
	OPCODE_JALR     = uint32(0x67)
	OPCODE_JAL      = uint32(0x6f)
	OPCODE_SYSTEM   = uint32(0x73)
)

// encoding describes the fixed fields of an instruction variant.
type encoding struct {
	format Format
	opcode uint32
	funct3 uint32
	funct7 uint32
}

var encodings = [op_count]encoding{
	OP_LUI:     {FORMAT_U, OPCODE_LUI, 0, 0},
	OP_AUIPC:   {FORMAT_U, OPCODE_AUIPC, 0, 0},
	OP_JAL:     {FORMAT_J, OPCODE_JAL, 0, 0},
	OP_JALR:    {FORMAT_LOAD, OPCODE_JALR, 0, 0},
	OP_BEQ:     {FORMAT_B, OPCODE_BRANCH, 0, 0},
	OP_BNE:     {FORMAT_B, OPCODE_BRANCH, 1, 0},
	OP_BLT:     {FORMAT_B, OPCODE_BRANCH, 4, 0},
	OP_BGE:     {FORMAT_B, OPCODE_BRANCH, 5, 0},
	OP_BLTU:    {FORMAT_B, OPCODE_BRANCH, 6, 0},
	OP_BGEU:    {FORMAT_B, OPCODE_BRANCH, 7, 0},
	OP_LB:      {FORMAT_LOAD, OPCODE_LOAD, 0, 0},
	OP_LH:      {FORMAT_LOAD, OPCODE_LOAD, 1, 0},
	OP_LW:      {FORMAT_LOAD, OPCODE_LOAD, 2, 0},
	OP_LBU:     {FORMAT_LOAD, OPCODE_LOAD, 4, 0},
	OP_LHU:     {FORMAT_LOAD, OPCODE_LOAD, 5, 0},
	OP_SB:      {FORMAT_S, OPCODE_STORE, 0, 0},
	OP_SH:      {FORMAT_S, OPCODE_STORE, 1, 0},
	OP_SW:      {FORMAT_S, OPCODE_STORE, 2, 0},
	OP_ADDI:    {FORMAT_I, OPCODE_OP_IMM, 0, 0},
	OP_SLTI:    {FORMAT_I, OPCODE_OP_IMM, 2, 0},
	OP_SLTIU:   {FORMAT_I, OPCODE_OP_IMM, 3, 0},
	OP_XORI:    {FORMAT_I, OPCODE_OP_IMM, 4, 0},
	OP_ORI:     {FORMAT_I, OPCODE_OP_IMM, 6, 0},
	OP_ANDI:    {FORMAT_I, OPCODE_OP_IMM, 7, 0},
	OP_SLLI:    {FORMAT_SHIFT, OPCODE_OP_IMM, 1, 0x00},
	OP_SRLI:    {FORMAT_SHIFT, OPCODE_OP_IMM, 5, 0x00},
	OP_SRAI:    {FORMAT_SHIFT, OPCODE_OP_IMM, 5, 0x20},
	OP_ADD:     {FORMAT_R, OPCODE_OP, 0, 0x00},
	OP_SUB:     {FORMAT_R, OPCODE_OP, 0, 0x20},
	OP_SLL:     {FORMAT_R, OPCODE_OP, 1, 0x00},
	OP_SLT:     {FORMAT_R, OPCODE_OP, 2, 0x00},
	OP_SLTU:    {FORMAT_R, OPCODE_OP, 3, 0x00},
	OP_XOR:     {FORMAT_R, OPCODE_OP, 4, 0x00},
	OP_SRL:     {FORMAT_R, OPCODE_OP, 5, 0x00},
	OP_SRA:     {FORMAT_R, OPCODE_OP, 5, 0x20},
	OP_OR:      {FORMAT_R, OPCODE_OP, 6, 0x00},
	OP_AND:     {FORMAT_R, OPCODE_OP, 7, 0x00},
	OP_FENCE:   {FORMAT_NONE, OPCODE_MISC_MEM, 0, 0},
	OP_FENCE_I: {FORMAT_NONE, OPCODE_MISC_MEM, 1, 0},
	OP_ECALL:   {FORMAT_NONE, OPCODE_SYSTEM, 0, 0},
	OP_EBREAK:  {FORMAT_NONE, OPCODE_SYSTEM, 0, 0},
	OP_CSRRW:   {FORMAT_CSR, OPCODE_SYSTEM, 1, 0},
	OP_CSRRS:   {FORMAT_CSR, OPCODE_SYSTEM, 2, 0},
	OP_CSRRC:   {FORMAT_CSR, OPCODE_SYSTEM, 3, 0},
	OP_CSRRWI:  {FORMAT_CSRI, OPCODE_SYSTEM, 5, 0},
	OP_CSRRSI:  {FORMAT_CSRI, OPCODE_SYSTEM, 6, 0},
	OP_CSRRCI:  {FORMAT_CSRI, OPCODE_SYSTEM, 7, 0},
	OP_MUL:     {FORMAT_R, OPCODE_OP, 0, 0x01},
	OP_MULH:    {FORMAT_R, OPCODE_OP, 1, 0x01},
	OP_MULHSU:  {FORMAT_R, OPCODE_OP, 2, 0x01},
	OP_MULHU:   {FORMAT_R, OPCODE_OP, 3, 0x01},
	OP_DIV:     {FORMAT_R, OPCODE_OP, 4, 0x01},
	OP_DIVU:    {FORMAT_R, OPCODE_OP, 5, 0x01},
	OP_REM:     {FORMAT_R, OPCODE_OP, 6, 0x01},
	OP_REMU:    {FORMAT_R, OPCODE_OP, 7, 0x01},
}

// Format returns the operand layout of the variant.
func (op Op) Format() Format {
	if op <= OP_ILLEGAL || op >= op_count {
		return FORMAT_NONE
	}
	return encodings[op].format
}

// Valid returns true if the op names a real instruction variant.
func (op Op) Valid() bool {
	return op > OP_ILLEGAL && op < op_count
}

// Ops returns every valid op, in declaration order.
func Ops() (ops []Op) {
	for op := OP_ILLEGAL + 1; op < op_count; op++ {
		ops = append(ops, op)
	}
	return
}

// Lookup finds an op by its assembler mnemonic.
func Lookup(mnemonic string) (op Op, ok bool) {
	op, ok = mnemonics[mnemonic]
	return
}

var mnemonics = func() map[string]Op {
	m := make(map[string]Op, op_count)
	for _, op := range Ops() {
		m[op.String()] = op
	}
	return m
}()

// decodeKey indexes the decode table: funct7 | funct3 | opcode.
func decodeKey(opcode, funct3, funct7 uint32) uint32 {
	return funct7<<10 | funct3<<7 | opcode
}

// decodeTable maps fixed fields back to ops. U, J and SYSTEM funct3=0 forms
// are resolved directly by Decode.
var decodeTable = func() map[uint32]Op {
	m := make(map[uint32]Op, op_count)
	for _, op := range Ops() {
		enc := encodings[op]
		switch enc.format {
		case FORMAT_U, FORMAT_J:
			continue
		case FORMAT_NONE:
			if enc.opcode == OPCODE_SYSTEM {
				continue
			}
		}
		m[decodeKey(enc.opcode, enc.funct3, enc.funct7)] = op
	}
	return m
}()
