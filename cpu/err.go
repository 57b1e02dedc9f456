package cpu

import (
	"errors"

	"github.com/ezrec/rv32sim/isa"
	"github.com/ezrec/rv32sim/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrLoadOverflow = errors.New(f("image exceeds memory"))
	ErrFetchBounds  = errors.New(f("fetch out of bounds"))

	// Execution errors
	ErrUnsupported = errors.New(f("unsupported instruction"))
)

// ErrOpcode names the instruction that failed to execute.
type ErrOpcode isa.Instruction

func (eo ErrOpcode) Error() string {
	return f("opcode %v", isa.Instruction(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrStep reports the program counter and raw word of a failed step.
type ErrStep struct {
	Pc   uint32
	Word uint32
	Len  int
	Err  error
}

func (err *ErrStep) Error() string {
	switch err.Len {
	case 2:
		return f("pc 0x%08x word 0x%04x: %v", err.Pc, err.Word, err.Err)
	case 4:
		return f("pc 0x%08x word 0x%08x: %v", err.Pc, err.Word, err.Err)
	}
	return f("pc 0x%08x: %v", err.Pc, err.Err)
}

func (err *ErrStep) Unwrap() error {
	return err.Err
}
