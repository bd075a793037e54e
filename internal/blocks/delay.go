package blocks

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/vk/blockflow/internal/codegen"
	"github.com/vk/blockflow/internal/diagram"
)

// UnitDelay outputs the value its input held one step earlier. It is not
// direct-feedthrough, which makes it the block that legally closes feedback
// loops: the order resolver may sever an incoming edge of any component that
// feeds a unit delay.
type UnitDelay struct{}

func (UnitDelay) Type() string            { return "unit_delay" }
func (UnitDelay) DefaultName() string     { return "unit_delay" }
func (UnitDelay) DirectFeedthrough() bool { return false }

func (UnitDelay) Schema() diagram.Schema {
	return diagram.Schema{
		Inputs: single("value"),
		Parameters: &diagram.PropSpec{
			Keys:     []string{"initial"},
			Defaults: map[string]any{"initial": 0.0},
		},
	}
}

// ExtraStateFields implements codegen.Stateful: the delay keeps the next
// output in a second state slot alongside its visible output.
func (UnitDelay) ExtraStateFields(c *diagram.Component) []string {
	return []string{codegen.Ident(c.Name()) + "Next"}
}

func (UnitDelay) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	initial, err := floatParam(c, "initial")
	if err != nil {
		return diagram.Fragments{}, err
	}
	in, err := inputRef(c, "value")
	if err != nil {
		return diagram.Fragments{}, err
	}

	setup := strings.Join([]string{
		render(stateRef(c.Name()).Op("=").Lit(initial)),
		render(nextRef(c).Op("=").Lit(initial)),
	}, "\n")
	execution := strings.Join([]string{
		render(stateRef(c.Name()).Op("=").Add(nextRef(c))),
		render(nextRef(c).Op("=").Add(in)),
	}, "\n")
	return diagram.Fragments{Setup: setup, Execution: execution}, nil
}

// nextRef is the delay's hidden state slot, named after the component with a
// "_next" suffix so it camelizes to the field ExtraStateFields declares.
func nextRef(c *diagram.Component) *jen.Statement { return stateRef(c.Name() + "_next") }
