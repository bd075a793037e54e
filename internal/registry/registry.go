// Package registry holds the block types available to diagram loaders. Each
// block registers under its type name; loaders look blocks up when they
// instantiate components from configuration.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/blockflow/internal/diagram"
)

// Module is the interface a block bundle implements to contribute its blocks
// to a registry.
type Module interface {
	Register(r *Registry)
}

// Registry maps block type names to their behavior for a single application
// instance.
type Registry struct {
	blocks map[string]diagram.Block
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{blocks: make(map[string]diagram.Block)}
}

// RegisterBlock adds a block under its type name. Registering the same type
// twice is a programming error and panics.
func (r *Registry) RegisterBlock(b diagram.Block) {
	name := b.Type()
	if _, exists := r.blocks[name]; exists {
		panic(fmt.Sprintf("block type %q already registered", name))
	}
	slog.Debug("Registering block type.", "type", name)
	r.blocks[name] = b
}

// Lookup returns the block registered under the given type name.
func (r *Registry) Lookup(typ string) (diagram.Block, bool) {
	b, ok := r.blocks[typ]
	return b, ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
