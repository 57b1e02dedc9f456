package asm

import (
	"errors"

	"github.com/ezrec/rv32sim/translate"
)

var f = translate.From

var (
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandCount    = errors.New(f("wrong number of operands"))
	ErrOperandMemory   = errors.New(f("memory operand invalid"))
	ErrImmediateRange  = errors.New(f("immediate out of range"))
	ErrImmediateAlign  = errors.New(f("immediate misaligned"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcodeUnknown names an unknown mnemonic and the closest known one.
type ErrOpcodeUnknown struct {
	Mnemonic string
	Closest  string
}

func (err *ErrOpcodeUnknown) Error() string {
	if len(err.Closest) == 0 {
		return f("opcode '%v' invalid", err.Mnemonic)
	}
	return f("opcode '%v' invalid, did you mean '%v'?", err.Mnemonic, err.Closest)
}

func (err *ErrOpcodeUnknown) Unwrap() error {
	return ErrOpcodeInvalid
}

type ErrRegisterInvalid string

func (err ErrRegisterInvalid) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax reports the source line of an assembly error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
