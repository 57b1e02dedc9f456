package cpu

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ezrec/rv32sim/isa"
)

// RegisterState is one named register of a State snapshot.
type RegisterState struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// State is a serializable snapshot of the hart.
type State struct {
	Pc        string          `yaml:"pc"`
	Retired   int             `yaml:"retired"`
	Registers []RegisterState `yaml:"registers"`
}

// State returns a snapshot of the program counter and registers.
func (hart *Hart) State() (state State) {
	state.Pc = fmt.Sprintf("0x%08x", hart.Pc)
	state.Retired = hart.Retired
	for n := range uint8(isa.REGISTER_COUNT) {
		state.Registers = append(state.Registers, RegisterState{
			Name:  isa.RegisterName(n),
			Value: fmt.Sprintf("0x%08x", hart.Register.Read(n)),
		})
	}

	return
}

// DumpYAML writes the hart state as a YAML document.
func (hart *Hart) DumpYAML(w io.Writer) (err error) {
	data, err := yaml.Marshal(hart.State())
	if err != nil {
		return
	}

	_, err = w.Write(data)
	return
}
