package cpu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rv32sim/isa"
)

func TestHart_Step(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(MEMORY_SIZE)
	assert.Equal(MEMORY_SIZE, hart.Memory.Size())

	err := hart.Memory.LoadWords([]uint32{0x002081b3}) // add x3, x1, x2
	assert.NoError(err)

	hart.Register.Write(1, 10)
	hart.Register.Write(2, 20)

	err = hart.Step()
	assert.NoError(err)
	assert.Equal(uint32(30), hart.Register.Read(3))
	assert.Equal(uint32(4), hart.Pc)
	assert.Equal(1, hart.Retired)
}

func TestHart_Step_Failure(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		word uint32
		err  error
	}){
		{"reserved", 0xffffffff, isa.ErrReserved},
		{"illegal", 0x00000000, isa.ErrIllegal},
		{"load", 0x00012083, ErrUnsupported},
		{"jal", 0xffdff06f, ErrUnsupported},
	}

	for _, entry := range table {
		hart := NewHart(64)
		hart.Pc = 8
		assert.NoError(hart.Memory.LoadWords([]uint32{0, 0, entry.word}))
		hart.Register.Write(2, 0x55)
		before := hart.Register

		err := hart.Step()
		assert.ErrorIs(err, entry.err, entry.name)

		var step *ErrStep
		if assert.True(errors.As(err, &step), entry.name) {
			assert.Equal(uint32(8), step.Pc, entry.name)
			assert.Equal(entry.word&0xffff, step.Word&0xffff, entry.name)
		}

		assert.Equal(uint32(8), hart.Pc, entry.name)
		assert.Equal(before, hart.Register, entry.name)
		assert.Equal(0, hart.Retired, entry.name)
	}
}

func TestHart_Step_ErrorMessage(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(16)
	assert.NoError(hart.Memory.LoadWords([]uint32{0x00012083}))

	err := hart.Step()
	assert.Error(err)
	assert.Contains(err.Error(), "pc 0x00000000 word 0x00012083")

	hart.Pc = 14
	err = hart.Step()
	assert.ErrorIs(err, ErrFetchBounds)
	assert.Contains(err.Error(), "pc 0x0000000e:")
}

func TestHart_Compressed(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(16)
	err := hart.Memory.LoadWords([]uint32{
		0x157d4515, // c.li a0, 5 ; c.addi a0, -1
		0x002081b3, // add x3, x1, x2
	})
	assert.NoError(err)
	hart.Register.Write(1, 1)
	hart.Register.Write(2, 2)

	assert.NoError(hart.Step())
	assert.Equal(uint32(2), hart.Pc)
	assert.Equal(uint32(5), hart.Register.Read(10))

	assert.NoError(hart.Step())
	assert.Equal(uint32(4), hart.Pc)
	assert.Equal(uint32(4), hart.Register.Read(10))

	assert.NoError(hart.Step())
	assert.Equal(uint32(8), hart.Pc)
	assert.Equal(uint32(3), hart.Register.Read(3))
	assert.Equal(3, hart.Retired)
}

func TestHart_Run(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(64)
	err := hart.Memory.LoadWords([]uint32{
		0x00100093, // addi x1, x0, 1
		0x00108093, // addi x1, x1, 1
		0x00108093, // addi x1, x1, 1
		0xffffffff,
	})
	assert.NoError(err)

	steps, err := hart.Run(2)
	assert.NoError(err)
	assert.Equal(2, steps)
	assert.Equal(uint32(2), hart.Register.Read(1))

	steps, err = hart.Run(10)
	assert.ErrorIs(err, isa.ErrReserved)
	assert.Equal(1, steps)
	assert.Equal(uint32(12), hart.Pc)
	assert.Equal(uint32(3), hart.Register.Read(1))

	hart.Reset()
	assert.Equal(uint32(0), hart.Pc)
	assert.Equal(0, hart.Retired)
	assert.Equal(Registers{}, hart.Register)

	word, err := hart.Memory.Fetch(0)
	assert.NoError(err)
	assert.Equal(uint32(0x00100093), word)
}

func TestHart_RunContext(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps, err := hart.RunContext(ctx, 10)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, steps)
	assert.Equal(uint32(0), hart.Pc)
}

func TestHart_Load(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(8)
	assert.NoError(hart.Load([]byte{0x13, 0, 0, 0}))
	assert.ErrorIs(hart.Load(make([]byte, 9)), ErrLoadOverflow)
}

func TestHart_Dump(t *testing.T) {
	assert := assert.New(t)

	hart := NewHart(16)
	assert.NoError(hart.Memory.LoadWords([]uint32{0x002081b3}))
	hart.Register.Write(1, 10)
	hart.Register.Write(2, 20)
	assert.NoError(hart.Step())

	expected := "" +
		"PC: 0x00000004\n" +
		"zero: 0x00000000 - ra  : 0x0000000a - sp  : 0x00000014 - gp  : 0x0000001e \n" +
		"tp  : 0x00000000 - t0  : 0x00000000 - t1  : 0x00000000 - t2  : 0x00000000 \n" +
		"s0  : 0x00000000 - s1  : 0x00000000 - a0  : 0x00000000 - a1  : 0x00000000 \n" +
		"a2  : 0x00000000 - a3  : 0x00000000 - a4  : 0x00000000 - a5  : 0x00000000 \n" +
		"a6  : 0x00000000 - a7  : 0x00000000 - s2  : 0x00000000 - s3  : 0x00000000 \n" +
		"s4  : 0x00000000 - s5  : 0x00000000 - s6  : 0x00000000 - s7  : 0x00000000 \n" +
		"s8  : 0x00000000 - s9  : 0x00000000 - s10 : 0x00000000 - s11 : 0x00000000 \n" +
		"t3  : 0x00000000 - t4  : 0x00000000 - t5  : 0x00000000 - t6  : 0x00000000 \n"

	var text strings.Builder
	assert.NoError(hart.Dump(&text))
	assert.Equal(expected, text.String())

	// Dumping does not change state.
	assert.Equal(expected, hart.String())
	assert.Equal(9, strings.Count(expected, "\n"))
}
