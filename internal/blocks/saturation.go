package blocks

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/vk/blockflow/internal/diagram"
)

// Saturation clamps its input between a lower and an upper bound.
type Saturation struct{}

func (Saturation) Type() string            { return "saturation" }
func (Saturation) DefaultName() string     { return "saturation" }
func (Saturation) DirectFeedthrough() bool { return true }

func (Saturation) Schema() diagram.Schema {
	return diagram.Schema{
		Inputs: single("value"),
		Parameters: &diagram.PropSpec{
			Required: []string{"upper", "lower"},
			Keys:     []string{"upper", "lower"},
		},
	}
}

func (Saturation) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	upper, err := floatParam(c, "upper")
	if err != nil {
		return diagram.Fragments{}, err
	}
	lower, err := floatParam(c, "lower")
	if err != nil {
		return diagram.Fragments{}, err
	}
	if lower > upper {
		return diagram.Fragments{}, fmt.Errorf("component %q: lower bound %v exceeds upper bound %v", c.Name(), lower, upper)
	}
	in, err := inputRef(c, "value")
	if err != nil {
		return diagram.Fragments{}, err
	}
	clamped := jen.Qual("math", "Min").Call(
		jen.Qual("math", "Max").Call(in, jen.Lit(lower)),
		jen.Lit(upper),
	)
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Add(clamped)),
	}, nil
}
