// Package schema defines the HCL surface of a diagram file. These structs
// exist only for gohcl decoding; the loader translates them into live
// diagrams.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// FileRoot decodes all top-level blocks of one .hcl file.
type FileRoot struct {
	Diagrams []*DiagramBlock `hcl:"diagram,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// DiagramBlock is one `diagram "name" { ... }` block.
type DiagramBlock struct {
	Name       string            `hcl:"name,label"`
	Components []*ComponentBlock `hcl:"component,block"`
	Subsystems []*SubsystemBlock `hcl:"subsystem,block"`
}

// ComponentBlock is one `component "type" { ... }` block. Sources lists
// feeding components by name for blocks that take any number of inputs; Wire
// assigns named input slots for blocks with a fixed input schema.
type ComponentBlock struct {
	Type    string       `hcl:"type,label"`
	Name    string       `hcl:"name,optional"`
	Sources []string     `hcl:"sources,optional"`
	Wire    *WireBlock   `hcl:"wire,block"`
	Params  *ParamsBlock `hcl:"parameters,block"`
}

// SubsystemBlock is one `subsystem { ... }` block. Subsystems nest.
type SubsystemBlock struct {
	Name       string            `hcl:"name,optional"`
	Sources    []string          `hcl:"sources,optional"`
	Components []*ComponentBlock `hcl:"component,block"`
	Subsystems []*SubsystemBlock `hcl:"subsystem,block"`
}

// WireBlock carries arbitrary `slot = "component_name"` attributes.
type WireBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// ParamsBlock carries arbitrary `key = value` attributes.
type ParamsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
