package cpu

import (
	"encoding/binary"
)

const (
	MEMORY_SIZE     = 1 << 20 // Default memory capacity, 1 MiB.
	MEMORY_SIZE_MAX = 2 << 20 // Largest supported capacity, 2 MiB.
)

// Memory is a flat, zero-initialized, byte-addressable buffer.
type Memory struct {
	Data []byte
}

// NewMemory creates a memory of 'size' bytes.
func NewMemory(size uint) (mem *Memory) {
	mem = &Memory{
		Data: make([]byte, size),
	}

	return
}

// Size returns the memory capacity in bytes.
func (mem *Memory) Size() int {
	return len(mem.Data)
}

// Load copies an image to offset 0. The remainder of memory is zeroed.
func (mem *Memory) Load(image []byte) (err error) {
	if len(image) > len(mem.Data) {
		err = ErrLoadOverflow
		return
	}

	n := copy(mem.Data, image)
	clear(mem.Data[n:])

	return
}

// LoadWords serializes 32-bit words little-endian and loads them at offset 0.
func (mem *Memory) LoadWords(words []uint32) (err error) {
	if len(words)*4 > len(mem.Data) {
		err = ErrLoadOverflow
		return
	}

	image := make([]byte, 0, len(words)*4)
	for _, word := range words {
		image = binary.LittleEndian.AppendUint32(image, word)
	}

	return mem.Load(image)
}

// Fetch reads a little-endian 32-bit word.
func (mem *Memory) Fetch(addr uint32) (word uint32, err error) {
	if uint64(addr)+4 > uint64(len(mem.Data)) {
		err = ErrFetchBounds
		return
	}

	word = binary.LittleEndian.Uint32(mem.Data[addr:])
	return
}
