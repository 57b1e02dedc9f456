package asm

import (
	"encoding/binary"
	"iter"

	"github.com/ezrec/rv32sim/isa"
)

// Line is one assembled source line and the bytes it produced.
type Line struct {
	LineNo    int               // Source line number.
	Pc        uint32            // Address of the first byte.
	Words     []string          // Source words, after equate expansion.
	Code      []isa.Instruction // Instructions, for instruction lines.
	Data      []byte            // Encoded little-endian bytes.
	LinkLabel string            // Branch or jump target to resolve.
}

// Program is an assembled program, loaded at address 0.
type Program struct {
	Lines []Line
}

// Debug locates the source of an address.
type Debug struct {
	*Line
	Offset int // Byte offset of the address within the line.
}

// Debug returns the line containing the address, or a nil Line.
func (prog *Program) Debug(pc uint32) (dbg Debug) {
	for n, line := range prog.Lines {
		if pc >= line.Pc && pc < line.Pc+uint32(len(line.Data)) {
			dbg = Debug{
				Line:   &prog.Lines[n],
				Offset: int(pc - line.Pc),
			}
			break
		}
	}

	return
}

// Size returns the program size in bytes.
func (prog *Program) Size() int {
	if len(prog.Lines) == 0 {
		return 0
	}

	last := prog.Lines[len(prog.Lines)-1]
	return int(last.Pc) + len(last.Data)
}

// Binary returns the flat program image.
func (prog *Program) Binary() (bin []byte) {
	bin = make([]byte, prog.Size())
	for _, line := range prog.Lines {
		copy(bin[line.Pc:], line.Data)
	}

	return
}

// Code returns the image as little-endian 32-bit words, zero padded.
func (prog *Program) Code() (code []uint32) {
	bin := prog.Binary()
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	for n := 0; n < len(bin); n += 4 {
		code = append(code, binary.LittleEndian.Uint32(bin[n:]))
	}

	return
}

// Instructions iterates over every assembled instruction and its address.
func (prog *Program) Instructions() iter.Seq2[uint32, isa.Instruction] {
	return func(yield func(pc uint32, in isa.Instruction) bool) {
		for _, line := range prog.Lines {
			pc := line.Pc
			for _, in := range line.Code {
				if !yield(pc, in) {
					return
				}
				pc += 4
			}
		}
	}
}
