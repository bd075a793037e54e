package diagram

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/vk/blockflow/internal/ctxlog"
	"github.com/vk/blockflow/internal/naming"
	"github.com/vk/blockflow/internal/organizer"
)

// rootBlock is the behavior of a diagram's root component: open property
// schemas, never direct-feedthrough, no code of its own.
type rootBlock struct{}

func (rootBlock) Type() string                               { return "diagram" }
func (rootBlock) DefaultName() string                        { return "diagram" }
func (rootBlock) DirectFeedthrough() bool                    { return false }
func (rootBlock) Schema() Schema                             { return Schema{} }
func (rootBlock) GenerateCode(*Component) (Fragments, error) { return Fragments{}, nil }

// Diagram is the root container of a component hierarchy. It owns the name
// registry every contained component registers into and orchestrates the
// build pipeline: defaults, verification, ordering, fragment generation.
type Diagram struct {
	sys   *System
	names *naming.Registry
}

// BuildResult is what a successful build hands to the code generator: the
// flattened execution order (subsystem orders expanded in place) and every
// dependency edge severed to break feedback loops.
type BuildResult struct {
	Ordered []*Component
	Severed []organizer.Edge
}

// New creates an empty diagram whose root component carries the given name.
func New(name string) (*Diagram, error) {
	if name == "" {
		return nil, fmt.Errorf("diagram: a diagram needs a non-empty name")
	}
	d := &Diagram{names: naming.NewRegistry()}
	sys := &System{diagram: d}
	d.sys = sys

	comp, err := newDetached(rootBlock{})
	if err != nil {
		return nil, err
	}
	comp.sys = sys
	comp.sub = sys
	sys.comp = comp

	registered, err := d.names.RegisterCustom(name)
	if err != nil {
		return nil, err
	}
	comp.rename(registered)
	return d, nil
}

// Name returns the diagram's registered name.
func (d *Diagram) Name() string { return d.sys.Name() }

// System returns the diagram's root system.
func (d *Diagram) System() *System { return d.sys }

// Components returns the diagram's direct components.
func (d *Diagram) Components() []*Component { return d.sys.Components() }

// NameCount exposes how many times a name has been registered, for callers
// that need to observe registry state.
func (d *Diagram) NameCount(name string) int { return d.names.Count(name) }

// Build runs the diagram's build pipeline: fill optional parameters with
// declared defaults, verify required values, resolve the execution order of
// every system, and cache each ordered component's code fragments. Any error
// aborts the build and leaves the order state undefined; rebuild only after
// fixing the reported condition.
func (d *Diagram) Build(ctx context.Context) (*BuildResult, error) {
	logger := ctxlog.FromContext(ctx).With("diagram", d.Name())
	logger.Debug("Build: starting.")

	if err := d.sys.PassDefaultParameters(); err != nil {
		return nil, err
	}
	logger.Debug("Build: defaults passed.")

	if err := d.sys.VerifyProperties(); err != nil {
		return nil, err
	}
	logger.Debug("Build: properties verified.")

	d.sys.resetMapping()
	if err := d.sys.Organize(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Build: order resolved.")

	result := &BuildResult{}
	flattenOrder(d.sys, result)
	for _, c := range result.Ordered {
		fragments, err := c.block.GenerateCode(c)
		if err != nil {
			return nil, fmt.Errorf("component %q: generate code: %w", c.Name(), err)
		}
		c.code = fragments
	}
	logger.Debug("Build: fragments generated.", "components", len(result.Ordered))
	return result, nil
}

// flattenOrder expands subsystem entries in place so the result lists leaf
// components in one global execution order.
func flattenOrder(s *System, result *BuildResult) {
	result.Severed = append(result.Severed, s.Severed()...)
	for _, c := range s.Order() {
		if c.IsSystem() {
			flattenOrder(c.Subsystem(), result)
			continue
		}
		result.Ordered = append(result.Ordered, c)
	}
}

// RegisterComponentName registers a component's name in the diagram's
// registry and returns the unique name assigned. An empty name registers the
// component's generated name. A custom name always wins: when it collides
// with an existing component, the colliding components shift up by one and
// the custom name is returned unchanged.
//
// This method is public for controlled removal/insertion flows; it renames
// sibling components as a side effect, so do not call it casually.
func (d *Diagram) RegisterComponentName(c *Component, name string) (string, error) {
	if name == "" {
		return d.names.Register(c.GenerateName()), nil
	}
	if _, err := d.names.RegisterCustom(name); err != nil {
		return "", err
	}
	if d.names.Count(name) > 1 {
		d.shiftComponentNamesRight(c, name)
	}
	return name, nil
}

// UnregisterComponentName removes a component's name from the registry,
// first shifting every higher-indexed sibling of the same basename down by
// one so the generated range stays contiguous. Unregistered names are
// ignored.
//
// Like RegisterComponentName this renames sibling components; it is meant
// for removal flows only.
func (d *Diagram) UnregisterComponentName(c *Component) error {
	if !d.names.IsRegistered(c.Name()) {
		return nil
	}
	d.shiftComponentNamesLeft(c)
	return d.names.Unregister(c.Name())
}

// RemoveComponents unregisters and detaches the given components, wherever
// they live in the hierarchy.
func (d *Diagram) RemoveComponents(comps ...*Component) error {
	for _, c := range comps {
		if err := d.UnregisterComponentName(c); err != nil {
			return err
		}
		if err := d.sys.RemoveComponent(c); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every component from the diagram and empties the name
// registry.
func (d *Diagram) Clear() error {
	return d.sys.Clear()
}

// similarComponent pairs a component with its parsed name index during a
// shift pass.
type similarComponent struct {
	comp  *Component
	index int
}

// similarComponents collects every component other than ref that shares ref's
// basename pattern and falls inside the basename's registered range.
func (d *Diagram) similarComponents(ref *Component, refName string) (naming.Name, []similarComponent) {
	parsed := naming.Parse(refName)
	count := d.names.Count(parsed.Base)
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(parsed.Base) + "(_[1-9][0-9]*)?$")

	var similar []similarComponent
	for _, candidate := range d.sys.Search(parsed.Base) {
		if candidate == ref || !pattern.MatchString(candidate.Name()) {
			continue
		}
		candidateIndex := naming.Parse(candidate.Name()).Index
		if candidateIndex < count {
			similar = append(similar, similarComponent{comp: candidate, index: candidateIndex})
		}
	}
	return parsed, similar
}

// shiftComponentNamesLeft renames every same-basename component with a
// higher index than ref down by one. Shifts run in ascending index order so
// no two components ever share a name mid-pass.
func (d *Diagram) shiftComponentNamesLeft(ref *Component) {
	parsed, similar := d.similarComponents(ref, ref.Name())
	sort.Slice(similar, func(i, j int) bool { return similar[i].index < similar[j].index })
	for _, s := range similar {
		if s.index <= parsed.Index {
			continue
		}
		shifted := naming.Name{Base: parsed.Base, Index: s.index - 1}
		s.comp.rename(shifted.String())
	}
}

// shiftComponentNamesRight renames every same-basename component with an
// index at or above the inserted one up by one, in descending index order.
func (d *Diagram) shiftComponentNamesRight(ref *Component, insertedName string) {
	parsed, similar := d.similarComponents(ref, insertedName)
	sort.Slice(similar, func(i, j int) bool { return similar[i].index > similar[j].index })
	for _, s := range similar {
		if s.index < parsed.Index {
			continue
		}
		shifted := naming.Name{Base: parsed.Base, Index: s.index + 1}
		s.comp.rename(shifted.String())
	}
}
