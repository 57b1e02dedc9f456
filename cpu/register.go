package cpu

import (
	"github.com/ezrec/rv32sim/isa"
)

// Registers is the general-purpose register file. x0 reads as zero and
// discards writes.
type Registers [isa.REGISTER_COUNT]uint32

// Read returns the value of a register.
func (r *Registers) Read(index uint8) uint32 {
	index &= 0x1f
	if index == 0 {
		return 0
	}
	return r[index]
}

// Write sets the value of a register. Writes to x0 are discarded.
func (r *Registers) Write(index uint8, value uint32) {
	index &= 0x1f
	if index != 0 {
		r[index] = value
	}
}

// Reset zeros all registers.
func (r *Registers) Reset() {
	clear(r[:])
}
