package diagram

import (
	"fmt"
	"sort"

	"github.com/vk/blockflow/internal/property"
)

// Component is one node of a block diagram: a named instance of a block with
// its own input, output, and parameter collections. Input and output slots
// hold non-owning references to sibling components; the diagram owns every
// component transitively.
type Component struct {
	name  string
	block Block

	// sys is the container holding this component. For a diagram's root
	// component it points at the root system itself.
	sys *System

	// sub is non-nil when the component is itself a system (a subsystem or
	// the diagram root).
	sub *System

	inputs     *property.Collection
	outputs    *property.Collection
	parameters *property.Collection

	// notMapped marks the component as not yet placed by the order resolver.
	// It is reset at the start of every build.
	notMapped bool

	// code caches the fragments produced during the last successful build.
	code Fragments
}

// NewComponent creates a component from the given block, registers its name
// in the owning diagram, and appends it to the containing system. An empty
// name asks the registry for a generated one. Parameters may only be passed
// by name when the block declares an ordered parameter schema.
func NewComponent(sys *System, block Block, name string, params map[string]any) (*Component, error) {
	if sys == nil {
		return nil, fmt.Errorf("diagram: component %q needs a containing system", name)
	}
	c, err := newDetached(block)
	if err != nil {
		return nil, err
	}
	c.sys = sys

	registered, err := sys.Diagram().RegisterComponentName(c, name)
	if err != nil {
		return nil, err
	}
	c.name = registered

	if len(params) > 0 {
		if !c.parameters.IsOrdered() {
			return nil, fmt.Errorf("component %q: block %q takes positional parameters only", c.name, block.Type())
		}
		if err := c.parameters.AddNamed(params); err != nil {
			return nil, fmt.Errorf("component %q: %w", c.name, err)
		}
	}

	sys.add(c)
	return c, nil
}

// newDetached builds a component with its collections but no container, no
// name, and no registration.
func newDetached(block Block) (*Component, error) {
	schema := block.Schema()
	inputs, err := collection(property.Inputs, schema.Inputs)
	if err != nil {
		return nil, fmt.Errorf("block %q inputs: %w", block.Type(), err)
	}
	outputs, err := collection(property.Outputs, schema.Outputs)
	if err != nil {
		return nil, fmt.Errorf("block %q outputs: %w", block.Type(), err)
	}
	parameters, err := collection(property.Parameters, schema.Parameters)
	if err != nil {
		return nil, fmt.Errorf("block %q parameters: %w", block.Type(), err)
	}
	return &Component{
		block:      block,
		inputs:     inputs,
		outputs:    outputs,
		parameters: parameters,
		notMapped:  true,
	}, nil
}

// Name returns the component's registered name. Names never change after
// registration except through the diagram's own shift operations.
func (c *Component) Name() string { return c.name }

// ComponentName implements property.Reference so components can be stored in
// input and output slots.
func (c *Component) ComponentName() string { return c.name }

// Block returns the component's behavior.
func (c *Component) Block() Block { return c.block }

// DirectFeedthrough reports the block's feedthrough flag.
func (c *Component) DirectFeedthrough() bool { return c.block.DirectFeedthrough() }

// System returns the container holding the component.
func (c *Component) System() *System { return c.sys }

// Subsystem returns the system the component itself is, or nil for leaf
// components.
func (c *Component) Subsystem() *System { return c.sub }

// IsSystem reports whether the component contains components of its own.
func (c *Component) IsSystem() bool { return c.sub != nil }

// IsBlockDiagram reports whether the component is a diagram root.
func (c *Component) IsBlockDiagram() bool {
	return c.sub != nil && c.sub.diagram != nil && c.sub.diagram.sys == c.sub
}

// Inputs returns the component's input collection.
func (c *Component) Inputs() *property.Collection { return c.inputs }

// Outputs returns the component's output collection.
func (c *Component) Outputs() *property.Collection { return c.outputs }

// Parameters returns the component's parameter collection.
func (c *Component) Parameters() *property.Collection { return c.parameters }

// Unmapped implements the organizer's view of mapping state.
func (c *Component) Unmapped() bool { return c.notMapped }

// MarkMapped implements the organizer's view of mapping state.
func (c *Component) MarkMapped() { c.notMapped = false }

// Code returns the fragments cached by the last build.
func (c *Component) Code() Fragments { return c.code }

// InputComponents returns the components currently wired into the input
// slots, skipping empty ones, in the collection's key order.
func (c *Component) InputComponents() []*Component {
	return referencedComponents(c.inputs)
}

// OutputComponents returns the components wired into the output slots,
// skipping empty ones.
func (c *Component) OutputComponents() []*Component {
	return referencedComponents(c.outputs)
}

func referencedComponents(coll *property.Collection) []*Component {
	var comps []*Component
	for _, key := range coll.Keys() {
		value, _ := coll.Get(key)
		if comp, ok := value.(*Component); ok && comp != nil {
			comps = append(comps, comp)
		}
	}
	return comps
}

// GenerateName derives the name used when no custom name is given: the
// block's default name, prefixed with the owning subsystem's name for leaf
// components nested below the diagram root.
func (c *Component) GenerateName() string {
	name := c.block.DefaultName()
	owner := c.sys
	if owner == nil || c.IsSystem() {
		return name
	}
	if !owner.IsDiagramRoot() {
		name = owner.Name() + "_" + name
	}
	return name
}

// PassDefaultParameters assigns declared defaults to every optional
// parameter still unset.
func (c *Component) PassDefaultParameters() error {
	schema := c.block.Schema()
	spec := schema.Parameters
	if spec == nil || len(spec.Defaults) == 0 {
		return nil
	}
	required := make(map[string]bool, len(spec.Required))
	for _, key := range spec.Required {
		required[key] = true
	}
	keys := make([]string, 0, len(spec.Defaults))
	for key := range spec.Defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if required[key] {
			continue
		}
		if current, ok := c.parameters.Get(key); ok && current == nil {
			if err := c.parameters.Set(key, spec.Defaults[key]); err != nil {
				return fmt.Errorf("component %q: default for %q: %w", c.name, key, err)
			}
		}
	}
	return nil
}

// VerifyProperties checks that every required input, output, and parameter
// holds a value.
func (c *Component) VerifyProperties() error {
	for _, coll := range []*property.Collection{c.inputs, c.outputs, c.parameters} {
		var missing []string
		for _, key := range coll.Required() {
			if value, ok := coll.Get(key); !ok || value == nil {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return &MissingRequiredValueError{Component: c.name, Kind: coll.Kind(), Keys: missing}
		}
	}
	return nil
}

// rename updates the component's name during a registry shift. Only the
// diagram's shift operations call this.
func (c *Component) rename(name string) { c.name = name }

func (c *Component) String() string { return c.name }
