package blocks

import (
	"github.com/vk/blockflow/internal/diagram"
)

// Subsystem is the container block: a component built from it holds a nested
// system of its own. It produces no code; the build expands its inner
// execution order in place.
type Subsystem struct{}

func (Subsystem) Type() string            { return "subsystem" }
func (Subsystem) DefaultName() string     { return "subsystem" }
func (Subsystem) DirectFeedthrough() bool { return false }
func (Subsystem) Schema() diagram.Schema  { return diagram.Schema{} }

func (Subsystem) GenerateCode(*diagram.Component) (diagram.Fragments, error) {
	return diagram.Fragments{}, nil
}
