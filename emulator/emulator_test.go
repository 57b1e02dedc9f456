package emulator

import (
	"context"
	"encoding/binary"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/ezrec/rv32sim/cpu"
	"github.com/ezrec/rv32sim/isa"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.MEMORY_SIZE)

	assert.False(emu.Verbose)
	assert.NotNil(emu.Hart)
	assert.Equal(cpu.MEMORY_SIZE, emu.Memory.Size())
	assert.Equal(0, emu.LineNo())

	defines := maps.Collect(emu.Defines())
	assert.Equal("0x100000", defines["MEMORY_SIZE"])
	assert.Equal("0x200000", defines["MEMORY_SIZE_MAX"])
}

func doAssemble(t *testing.T, emu *Emulator, program []string, predefines map[string]string) {
	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")), predefines)
	if err != nil {
		t.Fatal(err)
	}
}

func TestEmulator_Assemble(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.MEMORY_SIZE)

	program := []string{
		"# sum two values",
		"    li   x1, 10",
		"    li   x2, 20",
		"",
		"    add  x3, x1, x2",
		"    li   a0, MEMORY_SIZE",
		"    addi a1, zero, ANSWER",
	}
	doAssemble(t, emu, program, map[string]string{"ANSWER": "42"})

	lines := []int{2, 3, 5, 6, 7}
	for _, lineno := range lines {
		assert.Equal(lineno, emu.LineNo())
		assert.NoError(emu.Tick(), program[lineno-1])
	}

	assert.Equal(uint32(10), emu.Register.Read(1))
	assert.Equal(uint32(20), emu.Register.Read(2))
	assert.Equal(uint32(30), emu.Register.Read(3))
	assert.Equal(uint32(cpu.MEMORY_SIZE), emu.Register.Read(10))
	assert.Equal(uint32(42), emu.Register.Read(11))
	assert.Equal(uint32(20), emu.Pc)
	assert.Equal(5, emu.Retired)
}

func TestEmulator_RuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.MEMORY_SIZE)
	doAssemble(t, emu, []string{
		"nop",
		"lw x1, 0(x0)",
		"nop",
	}, nil)

	ticks, err := emu.Run(context.Background(), 10)
	assert.Equal(1, ticks)
	assert.ErrorIs(err, cpu.ErrUnsupported)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(2, rt.LineNo)
	}

	var step *cpu.ErrStep
	if assert.True(errors.As(err, &step)) {
		assert.Equal(uint32(4), step.Pc)
		assert.Equal(uint32(0x00002083), step.Word)
	}

	assert.Equal(uint32(4), emu.Pc)
	assert.Equal("line 2: pc 0x00000004 word 0x00002083: unsupported instruction\nopcode lw x1, 0(x0)", err.Error())
}

func TestEmulator_LoadImage(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(64)

	var image []byte
	for _, word := range []uint32{0x02a00093, 0xffffffff} {
		image = binary.LittleEndian.AppendUint32(image, word)
	}
	assert.NoError(emu.LoadImage(image))

	ticks, err := emu.Run(context.Background(), 5)
	assert.Equal(1, ticks)
	assert.ErrorIs(err, isa.ErrReserved)

	var rt *ErrRuntime
	assert.False(errors.As(err, &rt))
	assert.Equal(uint32(42), emu.Register.Read(1))

	assert.ErrorIs(emu.LoadImage(make([]byte, 65)), cpu.ErrLoadOverflow)
}

func TestEmulator_LoadOverflow(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(8)
	err := emu.Assemble(strings.NewReader("nop\nnop\nnop"), nil)
	assert.ErrorIs(err, cpu.ErrLoadOverflow)
}

func TestEmulator_Run_Cancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(64)
	doAssemble(t, emu, []string{"nop", "nop"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticks, err := emu.Run(ctx, 2)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, ticks)

	ticks, err = emu.Run(context.Background(), 2)
	assert.NoError(err)
	assert.Equal(2, ticks)
	assert.Equal(uint32(8), emu.Pc)

	emu.Reset()
	assert.Equal(uint32(0), emu.Pc)
	assert.Equal(1, emu.LineNo())
}
