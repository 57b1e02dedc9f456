package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLocale("en-US")
	defer SetLocale()

	assert.Equal("pc 0x00000010", From("pc 0x%08x", 0x10))
	assert.Equal("plain", From("plain"))
}

func TestSetLocale_Empty(t *testing.T) {
	assert := assert.New(t)

	SetLocale()
	assert.Equal(Language(), current)
	assert.Equal("word 7", From("word %d", 7))
}
