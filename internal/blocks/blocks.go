// Package blocks provides the built-in block library: sources, math
// operators, discontinuities, and the stateful unit delay that breaks
// feedback loops.
//
// Each block declares its property schema and renders its code fragments as
// Go statements. Fragments reference the generated state struct through the
// receiver `s`, using the identifiers the codegen package derives from
// component names.
package blocks

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/vk/blockflow/internal/codegen"
	"github.com/vk/blockflow/internal/diagram"
	"github.com/vk/blockflow/internal/property"
	"github.com/vk/blockflow/internal/registry"
)

// Builtin bundles the built-in block library as a registry module.
type Builtin struct{}

// Register adds every built-in block to the registry.
func (Builtin) Register(r *registry.Registry) {
	r.RegisterBlock(Constant{})
	r.RegisterBlock(Gain{})
	r.RegisterBlock(Sum{})
	r.RegisterBlock(Divide{})
	r.RegisterBlock(Sqrt{})
	r.RegisterBlock(Abs{})
	r.RegisterBlock(MinMax{})
	r.RegisterBlock(Saturation{})
	r.RegisterBlock(UnitDelay{})
	r.RegisterBlock(Subsystem{})
}

// noEntries is the schema spec for blocks that accept no entries of a kind.
func noEntries() *diagram.PropSpec { return &diagram.PropSpec{} }

// single declares one required ordered key.
func single(key string) *diagram.PropSpec {
	return &diagram.PropSpec{Required: []string{key}, Keys: []string{key}}
}

// render turns a jennifer statement into fragment text.
func render(stmt *jen.Statement) string {
	return fmt.Sprintf("%#v", stmt)
}

// stateRef builds the `s.<Ident>` reference for a component name.
func stateRef(name string) *jen.Statement {
	return jen.Id("s").Dot(codegen.Ident(name))
}

// inputRef resolves the component wired into an ordered input key and
// returns its state reference.
func inputRef(c *diagram.Component, key string) (*jen.Statement, error) {
	value, ok := c.Inputs().Get(key)
	if !ok || value == nil {
		return nil, fmt.Errorf("component %q: input %q is not wired", c.Name(), key)
	}
	ref, ok := value.(property.Reference)
	if !ok {
		return nil, fmt.Errorf("component %q: input %q does not reference a component", c.Name(), key)
	}
	return stateRef(ref.ComponentName()), nil
}

// orderedInputRefs resolves every wired entry of an unordered input
// collection, in generated-key order.
func orderedInputRefs(c *diagram.Component) ([]*jen.Statement, error) {
	values, err := c.Inputs().OrderedValues()
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", c.Name(), err)
	}
	var refs []*jen.Statement
	for _, value := range values {
		if value == nil {
			continue
		}
		ref, ok := value.(property.Reference)
		if !ok {
			return nil, fmt.Errorf("component %q: input does not reference a component", c.Name())
		}
		refs = append(refs, stateRef(ref.ComponentName()))
	}
	return refs, nil
}
