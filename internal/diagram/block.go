package diagram

import (
	"github.com/vk/blockflow/internal/property"
)

// Fragments are the cached code pieces a block contributes to the generated
// program. The core treats both strings as opaque; assembling them into a
// source file is the code generator's concern.
type Fragments struct {
	Setup     string
	Execution string
}

// PropSpec describes one property collection of a block's schema. A nil
// PropSpec in a Schema means the collection is unordered (open, generated
// keys); a non-nil spec fixes the key set, and an empty one accepts no
// entries at all.
type PropSpec struct {
	Required []string
	Keys     []string

	// Defaults supplies values for non-required parameter keys left unset at
	// build time. Only meaningful on the Parameters spec.
	Defaults map[string]any
}

// Schema declares a block's property layout.
type Schema struct {
	Inputs     *PropSpec
	Outputs    *PropSpec
	Parameters *PropSpec
}

// Block is the behavior a component type contributes: identity, scheduling
// metadata, property schema, and the code fragments for the generated
// program. Implementations live in the blocks package and are looked up by
// type name through the block registry.
type Block interface {
	// Type is the block's registry key, e.g. "unit_delay".
	Type() string

	// DefaultName seeds generated component names.
	DefaultName() string

	// DirectFeedthrough reports whether the block's output depends only on
	// its current-step inputs. Feedback loops are broken at components whose
	// block is not direct-feedthrough.
	DirectFeedthrough() bool

	// Schema declares the block's input, output, and parameter layout.
	Schema() Schema

	// GenerateCode renders the component's setup and execution fragments.
	GenerateCode(c *Component) (Fragments, error)
}

// collection builds the property collection described by spec.
func collection(kind property.Kind, spec *PropSpec) (*property.Collection, error) {
	if spec == nil {
		return property.NewUnordered(kind), nil
	}
	return property.NewOrdered(kind, spec.Required, spec.Keys)
}
