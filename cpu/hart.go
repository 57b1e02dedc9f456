// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ezrec/rv32sim/isa"
)

// Hart is the simulation context for a single RV32I hardware thread.
type Hart struct {
	Verbose bool // Set to enable verbose logging.

	Pc       uint32    // Program counter.
	Register Registers // Register bank.
	Memory   *Memory   // Flat memory, owned by the hart.

	Retired int // Retired instruction counter.
}

// NewHart creates a new hart with a specifically sized memory.
func NewHart(size uint) (hart *Hart) {
	hart = &Hart{
		Memory: NewMemory(size),
	}

	return
}

// Reset clears the registers, program counter and statistics. Memory is
// left alone.
func (hart *Hart) Reset() {
	if hart.Verbose {
		log.Printf("hart: reset")
	}

	hart.Register.Reset()
	hart.Pc = 0
	hart.Retired = 0
}

// Load copies a program image to the start of memory.
func (hart *Hart) Load(image []byte) (err error) {
	err = hart.Memory.Load(image)
	if err != nil {
		return
	}

	if hart.Verbose {
		log.Printf("hart: loaded %v bytes", len(image))
	}

	return
}

// Fetch reads and decodes the instruction at the program counter. The raw
// word is returned even when decoding fails.
func (hart *Hart) Fetch() (in isa.Instruction, word uint32, length int, err error) {
	word, err = hart.Memory.Fetch(hart.Pc)
	if err != nil {
		return
	}

	low16 := uint16(word)
	length = isa.Length(low16)
	if length == 2 {
		word = uint32(low16)
	}

	in, err = isa.Decode(word)
	return
}

// Step executes a single instruction cycle. On failure the program counter
// and registers are left unchanged.
func (hart *Hart) Step() (err error) {
	pc := hart.Pc

	in, word, length, err := hart.Fetch()
	defer func() {
		if err != nil {
			err = &ErrStep{Pc: pc, Word: word, Len: length, Err: err}
		}
	}()
	if err != nil {
		return
	}

	if hart.Verbose {
		log.Printf("%08x: %v", pc, in)
	}

	err = Execute(in, &hart.Register)
	if err != nil {
		return
	}

	hart.Pc = pc + uint32(length)
	hart.Retired += 1

	return
}

// Run steps up to 'count' times, stopping at the first failure.
func (hart *Hart) Run(count int) (steps int, err error) {
	return hart.RunContext(context.Background(), count)
}

// RunContext steps up to 'count' times, stopping at the first failure or
// when the context is done.
func (hart *Hart) RunContext(ctx context.Context, count int) (steps int, err error) {
	for steps < count {
		err = ctx.Err()
		if err != nil {
			return
		}

		err = hart.Step()
		if err != nil {
			return
		}
		steps++
	}

	return
}

// Dump writes the program counter and all registers, four per line.
func (hart *Hart) Dump(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "PC: 0x%08x\n", hart.Pc)
	if err != nil {
		return
	}

	for n := range uint8(isa.REGISTER_COUNT) {
		sep := "- "
		if (n+1)%4 == 0 {
			sep = "\n"
		}
		_, err = fmt.Fprintf(w, "%-4s: 0x%08x %s", isa.RegisterName(n), hart.Register.Read(n), sep)
		if err != nil {
			return
		}
	}

	return
}

// String returns the current hart state as a string.
func (hart *Hart) String() string {
	var text strings.Builder
	hart.Dump(&text)
	return text.String()
}
