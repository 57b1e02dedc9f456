package isa

import (
	"errors"

	"github.com/ezrec/rv32sim/translate"
)

var f = translate.From

var (
	ErrIllegal  = errors.New(f("illegal instruction"))
	ErrReserved = errors.New(f("reserved encoding"))
	ErrEncode   = errors.New(f("cannot encode"))
)

// ErrDecode reports a word that has no recognized encoding.
type ErrDecode struct {
	Word uint32
	Len  int
	Err  error
}

func (err *ErrDecode) Error() string {
	if err.Len == 2 {
		return f("decode 0x%04x: %v", err.Word, err.Err)
	}
	return f("decode 0x%08x: %v", err.Word, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}
