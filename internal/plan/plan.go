// Package plan serializes the result of a diagram build into a YAML
// execution plan: the resolved step order, each step's wired inputs, and the
// dependency edges severed to break feedback loops. The plan is a review
// artifact; the generated code is the executable output.
package plan

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/blockflow/internal/diagram"
)

// Plan is the serialized form of one diagram's build.
type Plan struct {
	Diagram string    `yaml:"diagram"`
	Order   []Step    `yaml:"order"`
	Severed []Severed `yaml:"severed,omitempty"`
}

// Step is one entry of the execution order.
type Step struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Inputs []string `yaml:"inputs,omitempty"`
}

// Severed is one dependency edge the order resolver removed.
type Severed struct {
	Dependent  string `yaml:"dependent"`
	Dependency string `yaml:"dependency"`
}

// FromBuild assembles the plan for one built diagram.
func FromBuild(d *diagram.Diagram, result *diagram.BuildResult) *Plan {
	p := &Plan{Diagram: d.Name()}
	for _, c := range result.Ordered {
		step := Step{Name: c.Name(), Type: c.Block().Type()}
		for _, input := range c.InputComponents() {
			step.Inputs = append(step.Inputs, input.Name())
		}
		p.Order = append(p.Order, step)
	}
	for _, edge := range result.Severed {
		p.Severed = append(p.Severed, Severed{Dependent: edge.Dependent, Dependency: edge.Dependency})
	}
	return p
}

// Encode writes the plan as YAML.
func (p *Plan) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode plan for %q: %w", p.Diagram, err)
	}
	return enc.Close()
}

// WriteFile writes the plan to the given path.
func (p *Plan) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plan file: %w", err)
	}
	defer f.Close()
	return p.Encode(f)
}

// WriteAll writes several plans to one file as a multi-document YAML stream.
func WriteAll(path string, plans []*Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plan file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	for _, p := range plans {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode plan for %q: %w", p.Diagram, err)
		}
	}
	return enc.Close()
}

// Decode reads a plan back from YAML.
func Decode(r io.Reader) (*Plan, error) {
	var p Plan
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}
