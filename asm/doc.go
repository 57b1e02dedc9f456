// Package asm implements a small assembler for RV32 machine code.
//
// Sources are line oriented. A line holds optional labels ("name:"), then
// either a directive or an instruction with comma separated operands.
// Comments start with '#' or ';'.
//
// Directives:
//
//	.equ NAME VALUE   define an equate
//	.word V[, V...]   emit 32-bit little-endian data
//	.half V[, V...]   emit 16-bit little-endian data
//
// Operands may be registers (xN or ABI names), numbers in any Go integer
// syntax, character literals ('a'), equates, labels (branch and jump
// targets), or compile-time $(...) expressions evaluated with Starlark.
//
// Besides the base instructions, the pseudo-instructions nop, li, mv, not,
// neg, seqz, snez, j and ret are accepted.
package asm
