// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/rv32sim/asm"
	"github.com/ezrec/rv32sim/cpu"
	"github.com/ezrec/rv32sim/internal"
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE_MAX": fmt.Sprintf("%#x", cpu.MEMORY_SIZE_MAX),
}

// Emulator state. Hart + assembled program listing.
type Emulator struct {
	Verbose   bool         // If set, enables verbose logging.
	*cpu.Hart              // Reference to the hart simulation.
	Program   *asm.Program // Reference to the currently loaded program listing.
}

// NewEmulator creates a new emulator with 'size' bytes of memory.
func NewEmulator(size uint) (emu *Emulator) {
	emu = &Emulator{
		Hart:    cpu.NewHart(size),
		Program: &asm.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		maps.All(map[string]string{
			"MEMORY_SIZE": fmt.Sprintf("%#x", emu.Hart.Memory.Size()),
		}),
	)
}

// Assemble assembles source text, with the emulator defines predefined, and
// loads the resulting program.
func (emu *Emulator) Assemble(input io.Reader, predefines map[string]string) (err error) {
	assembler := &asm.Assembler{Verbose: emu.Verbose}
	for name, value := range internal.Concat2(emu.Defines(), maps.All(predefines)) {
		assembler.Predefine(name, value)
	}

	prog, err := assembler.Parse(input)
	if err != nil {
		return
	}

	return emu.LoadProgram(prog)
}

// LoadProgram loads an assembled program, and resets the hart.
func (emu *Emulator) LoadProgram(prog *asm.Program) (err error) {
	err = emu.Hart.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// LoadImage loads a raw image with no source listing, and resets the hart.
func (emu *Emulator) LoadImage(image []byte) (err error) {
	err = emu.Hart.Load(image)
	if err != nil {
		return
	}

	emu.Program = &asm.Program{}
	emu.Reset()

	return
}

// Reset the hart state.
func (emu *Emulator) Reset() {
	emu.Hart.Verbose = emu.Verbose
	emu.Hart.Reset()
}

// LineNo returns the source line number of the current instruction, or 0
// if there is none.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Hart.Pc)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single step of the emulator.
func (emu *Emulator) Tick() (err error) {
	// Set hart verbosity
	emu.Hart.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil && lineno != 0 {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Hart.Step()
	return
}

// Run performs up to 'count' ticks, stopping at the first failure or when
// the context is done.
func (emu *Emulator) Run(ctx context.Context, count int) (ticks int, err error) {
	for ticks < count {
		err = ctx.Err()
		if err != nil {
			return
		}

		err = emu.Tick()
		if err != nil {
			return
		}
		ticks++
	}

	return
}
