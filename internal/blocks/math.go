package blocks

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/vk/blockflow/internal/diagram"
)

// Gain multiplies its input by a constant factor.
type Gain struct{}

func (Gain) Type() string            { return "gain" }
func (Gain) DefaultName() string     { return "gain" }
func (Gain) DirectFeedthrough() bool { return true }

func (Gain) Schema() diagram.Schema {
	return diagram.Schema{
		Inputs: single("value"),
		Parameters: &diagram.PropSpec{
			Required: []string{"gain"},
			Keys:     []string{"gain"},
		},
	}
}

func (Gain) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	factor, err := floatParam(c, "gain")
	if err != nil {
		return diagram.Fragments{}, err
	}
	in, err := inputRef(c, "value")
	if err != nil {
		return diagram.Fragments{}, err
	}
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Add(in).Op("*").Lit(factor)),
	}, nil
}

// Sum adds an arbitrary number of inputs.
type Sum struct{}

func (Sum) Type() string            { return "sum" }
func (Sum) DefaultName() string     { return "sum" }
func (Sum) DirectFeedthrough() bool { return true }
func (Sum) Schema() diagram.Schema  { return diagram.Schema{Parameters: noEntries()} }

func (Sum) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	refs, err := orderedInputRefs(c)
	if err != nil {
		return diagram.Fragments{}, err
	}
	if len(refs) == 0 {
		return diagram.Fragments{}, fmt.Errorf("component %q: sum needs at least one input", c.Name())
	}
	expr := refs[0]
	for _, ref := range refs[1:] {
		expr = expr.Op("+").Add(ref)
	}
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Add(expr)),
	}, nil
}

// Divide computes dividend / divisor.
type Divide struct{}

func (Divide) Type() string            { return "divide" }
func (Divide) DefaultName() string     { return "divide" }
func (Divide) DirectFeedthrough() bool { return true }

func (Divide) Schema() diagram.Schema {
	return diagram.Schema{
		Inputs: &diagram.PropSpec{
			Required: []string{"dividend", "divisor"},
			Keys:     []string{"dividend", "divisor"},
		},
		Parameters: noEntries(),
	}
}

func (Divide) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	dividend, err := inputRef(c, "dividend")
	if err != nil {
		return diagram.Fragments{}, err
	}
	divisor, err := inputRef(c, "divisor")
	if err != nil {
		return diagram.Fragments{}, err
	}
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Add(dividend).Op("/").Add(divisor)),
	}, nil
}

// Sqrt takes the square root of its input.
type Sqrt struct{}

func (Sqrt) Type() string            { return "sqrt" }
func (Sqrt) DefaultName() string     { return "sqrt" }
func (Sqrt) DirectFeedthrough() bool { return true }
func (Sqrt) Schema() diagram.Schema {
	return diagram.Schema{Inputs: single("value"), Parameters: noEntries()}
}

func (Sqrt) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	in, err := inputRef(c, "value")
	if err != nil {
		return diagram.Fragments{}, err
	}
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Qual("math", "Sqrt").Call(in)),
	}, nil
}

// Abs takes the absolute value of its input.
type Abs struct{}

func (Abs) Type() string            { return "abs" }
func (Abs) DefaultName() string     { return "abs" }
func (Abs) DirectFeedthrough() bool { return true }
func (Abs) Schema() diagram.Schema {
	return diagram.Schema{Inputs: single("value"), Parameters: noEntries()}
}

func (Abs) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	in, err := inputRef(c, "value")
	if err != nil {
		return diagram.Fragments{}, err
	}
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Qual("math", "Abs").Call(in)),
	}, nil
}

// MinMax folds its inputs with math.Min or math.Max, chosen by the mode
// parameter.
type MinMax struct{}

func (MinMax) Type() string            { return "min_max" }
func (MinMax) DefaultName() string     { return "min_max" }
func (MinMax) DirectFeedthrough() bool { return true }

func (MinMax) Schema() diagram.Schema {
	return diagram.Schema{
		Parameters: &diagram.PropSpec{
			Required: []string{"mode"},
			Keys:     []string{"mode"},
		},
	}
}

func (MinMax) GenerateCode(c *diagram.Component) (diagram.Fragments, error) {
	mode, err := stringParam(c, "mode")
	if err != nil {
		return diagram.Fragments{}, err
	}
	var fn string
	switch mode {
	case "min":
		fn = "Min"
	case "max":
		fn = "Max"
	default:
		return diagram.Fragments{}, fmt.Errorf("component %q: mode must be \"min\" or \"max\", got %q", c.Name(), mode)
	}

	refs, err := orderedInputRefs(c)
	if err != nil {
		return diagram.Fragments{}, err
	}
	if len(refs) < 2 {
		return diagram.Fragments{}, fmt.Errorf("component %q: min_max needs at least two inputs", c.Name())
	}
	expr := refs[0]
	for _, ref := range refs[1:] {
		expr = jen.Qual("math", fn).Call(expr, ref)
	}
	return diagram.Fragments{
		Execution: render(stateRef(c.Name()).Op("=").Add(expr)),
	}, nil
}
