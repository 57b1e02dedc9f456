package isa

import (
	"strconv"
	"strings"
)

// REGISTER_COUNT is the number of general-purpose registers.
const REGISTER_COUNT = 32

// Calling-convention names of x0..x31.
var abiNames = [REGISTER_COUNT]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegisterName returns the ABI name of a register.
func RegisterName(index uint8) string {
	return abiNames[index&0x1f]
}

// RegisterIndex parses a register as an ABI name, 'fp', or xN.
func RegisterIndex(name string) (index uint8, ok bool) {
	if name == "fp" {
		return 8, true
	}

	for n, abi := range abiNames {
		if abi == name {
			return uint8(n), true
		}
	}

	num, found := strings.CutPrefix(name, "x")
	if !found {
		return
	}
	value, err := strconv.ParseUint(num, 10, 8)
	if err != nil || value >= REGISTER_COUNT || (len(num) > 1 && num[0] == '0') {
		return
	}

	return uint8(value), true
}
