// Package cpu implements a single RV32I hart.
//
// The hart consists of a program counter, 32 general-purpose registers with
// x0 hard-wired to zero, and a flat little-endian memory. Each step fetches
// a word at the program counter, classifies it as a 16-bit compressed or a
// 32-bit encoding, decodes it, applies it to the register file, and
// advances the program counter by the instruction length.
//
// Only the register-register and register-immediate integer operations and
// LUI are executed. Any other decoded instruction stops the hart with
// ErrUnsupported.
package cpu
