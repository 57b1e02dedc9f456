// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package loader reads program images from ELF objects and flat binaries.
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"io"
	"os"
)

// CODE_SECTION is the default section holding executable code.
const CODE_SECTION = ".text"

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// MatchElf returns true if the reader starts with the ELF magic.
func MatchElf(r io.ReaderAt) bool {
	magic := make([]byte, len(elfMagic))
	n, _ := r.ReadAt(magic, 0)
	return n == len(magic) && bytes.Equal(magic, elfMagic)
}

// ReadSection returns the raw bytes of a named section of an ELF object.
func ReadSection(r io.ReaderAt, name string) (data []byte, err error) {
	if !MatchElf(r) {
		err = ErrNotElf
		return
	}

	file, err := elf.NewFile(r)
	if err != nil {
		err = errors.Join(ErrNotElf, err)
		return
	}
	defer file.Close()

	section := file.Section(name)
	if section == nil {
		err = ErrSectionMissing(name)
		return
	}

	data, err = section.Data()
	return
}

// ReadCodeSection returns the raw bytes of a named section of the ELF
// object at 'path'.
func ReadCodeSection(path string, name string) (data []byte, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	return ReadSection(file, name)
}

// ReadFlat returns the contents of a flat binary image.
func ReadFlat(path string) (data []byte, err error) {
	return os.ReadFile(path)
}
