package loader

import (
	"errors"

	"github.com/ezrec/rv32sim/translate"
)

var f = translate.From

var (
	ErrNotElf = errors.New(f("not an ELF object"))
)

// ErrSectionMissing names the section absent from an object.
type ErrSectionMissing string

func (err ErrSectionMissing) Error() string {
	return f("section %v missing", string(err))
}
