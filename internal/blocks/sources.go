package blocks

import (
	"github.com/vk/blockflow/internal/diagram"
)

// Constant emits a fixed value. It has no inputs, so it always evaluates
// first in any chain that consumes it.
type Constant struct{}

func (Constant) Type() string            { return "constant" }
func (Constant) DefaultName() string     { return "constant" }
func (Constant) DirectFeedthrough() bool { return false }

func (Constant) Schema() diagram.Schema {
	return diagram.Schema{
		Inputs: noEntries(),
		Parameters: &diagram.PropSpec{
			Required: []string{"value"},
			Keys:     []string{"value"},
		},
	}
}

func (Constant) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	value, err := floatParam(c, "value")
	if err != nil {
		return diagram.Fragments{}, err
	}
	return diagram.Fragments{
		Setup: render(stateRef(c.Name()).Op("=").Lit(value)),
	}, nil
}
