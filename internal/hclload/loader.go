// Package hclload builds live diagrams from .hcl files. It decodes the block
// structure declared in the schema package, instantiates components through
// the block registry, and wires inputs in a second pass once every component
// name is settled.
package hclload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/blockflow/internal/ctxlog"
	"github.com/vk/blockflow/internal/diagram"
	"github.com/vk/blockflow/internal/registry"
	"github.com/vk/blockflow/internal/schema"
)

// Loader turns diagram files into diagrams using a block registry.
type Loader struct {
	registry *registry.Registry
}

// NewLoader creates a loader backed by the given registry.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{registry: reg}
}

// pendingWiring defers a component's input hookup until every component of
// its diagram exists. Custom names can rename earlier siblings on insertion,
// so wiring by name is only safe after the creation pass.
type pendingWiring struct {
	comp    *diagram.Component
	sources []string
	wire    map[string]string
}

// Load parses every .hcl file under the given paths and returns the diagrams
// they declare, in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*diagram.Diagram, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var diagrams []*diagram.Diagram

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.FileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Diagrams {
			d, err := l.buildDiagram(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("file %s: %w", file, err)
			}
			diagrams = append(diagrams, d)
		}
	}

	logger.Debug("HCL loading complete.", "diagrams", len(diagrams))
	return diagrams, nil
}

// buildDiagram creates one diagram: components and subsystems first, wiring
// second.
func (l *Loader) buildDiagram(ctx context.Context, block *schema.DiagramBlock) (*diagram.Diagram, error) {
	d, err := diagram.New(block.Name)
	if err != nil {
		return nil, err
	}

	var pending []*pendingWiring
	if err := l.populateSystem(d.System(), block.Components, block.Subsystems, &pending); err != nil {
		return nil, fmt.Errorf("diagram %q: %w", block.Name, err)
	}

	for _, p := range pending {
		if err := l.wireComponent(d, p); err != nil {
			return nil, fmt.Errorf("diagram %q: %w", block.Name, err)
		}
	}

	ctxlog.FromContext(ctx).Debug("Diagram loaded.",
		"diagram", d.Name(), "components", len(pending))
	return d, nil
}

// populateSystem creates the components and subsystems declared for one
// system level, recording each component's wiring for the second pass.
func (l *Loader) populateSystem(sys *diagram.System, comps []*schema.ComponentBlock, subs []*schema.SubsystemBlock, pending *[]*pendingWiring) error {
	for _, cb := range comps {
		block, ok := l.registry.Lookup(cb.Type)
		if !ok {
			return fmt.Errorf("component %q: unknown block type %q", cb.Name, cb.Type)
		}

		params, err := decodeParams(cb.Params)
		if err != nil {
			return fmt.Errorf("component %q: %w", cb.Name, err)
		}

		comp, err := diagram.NewComponent(sys, block, cb.Name, params)
		if err != nil {
			return err
		}

		wire, err := decodeWire(cb.Wire)
		if err != nil {
			return fmt.Errorf("component %q: %w", comp.Name(), err)
		}
		*pending = append(*pending, &pendingWiring{comp: comp, sources: cb.Sources, wire: wire})
	}

	for _, sb := range subs {
		block, ok := l.registry.Lookup("subsystem")
		if !ok {
			return fmt.Errorf("subsystem %q: no subsystem block registered", sb.Name)
		}
		sub, err := diagram.NewSubsystem(sys, block, sb.Name, nil)
		if err != nil {
			return err
		}
		*pending = append(*pending, &pendingWiring{comp: sub.Component(), sources: sb.Sources})

		if err := l.populateSystem(sub, sb.Components, sb.Subsystems, pending); err != nil {
			return err
		}
	}
	return nil
}

// wireComponent resolves source names and hooks the component's inputs and
// its feeders' outputs.
func (l *Loader) wireComponent(d *diagram.Diagram, p *pendingWiring) error {
	for _, name := range p.sources {
		src, ok := d.System().FindByName(name)
		if !ok {
			return fmt.Errorf("component %q: source %q: %w", p.comp.Name(), name, diagram.ErrUnknownComponent)
		}
		if err := p.comp.Inputs().Add(src); err != nil {
			return fmt.Errorf("component %q: %w", p.comp.Name(), err)
		}
		if err := src.Outputs().Add(p.comp); err != nil {
			return fmt.Errorf("component %q: %w", src.Name(), err)
		}
	}

	for _, slot := range sortedKeys(p.wire) {
		name := p.wire[slot]
		src, ok := d.System().FindByName(name)
		if !ok {
			return fmt.Errorf("component %q: input %q: source %q: %w", p.comp.Name(), slot, name, diagram.ErrUnknownComponent)
		}
		if err := p.comp.Inputs().Set(slot, src); err != nil {
			return fmt.Errorf("component %q: input %q: %w", p.comp.Name(), slot, err)
		}
		if err := src.Outputs().Add(p.comp); err != nil {
			return fmt.Errorf("component %q: %w", src.Name(), err)
		}
	}
	return nil
}

// findHCLFiles walks the given paths and returns every .hcl file found, each
// at most once.
func findHCLFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			files = append(files, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
