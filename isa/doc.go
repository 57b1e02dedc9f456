// Package isa decodes and encodes RISC-V RV32 machine code.
//
// A 32-bit word decodes into a tagged Instruction carrying the operand fields
// of its variant. The base RV32I set, the Zicsr and RV32M extensions are
// recognized. Words whose low two bits are not 0b11 are 16-bit compressed
// (RV32C) encodings, and decode to the base-ISA variant they expand to.
//
// Immediates are kept as the raw field of their format: I, S and B format
// immediates are not sign-extended, and U format immediates are already
// placed in bits 31:12. SignExtend widens a raw field when its value is
// needed.
package isa
