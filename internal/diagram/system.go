package diagram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/blockflow/internal/ctxlog"
	"github.com/vk/blockflow/internal/organizer"
)

// System is a component that contains components: the diagram root or a
// subsystem. It owns its component list and, after organizing, the execution
// order for that level of the hierarchy.
type System struct {
	comp    *Component
	diagram *Diagram
	comps   []*Component

	// org holds the organizer of the last Organize call for this level.
	org *organizer.Organizer
}

// NewSubsystem creates a system component inside parent. The subsystem's own
// inputs/outputs/parameters follow its block schema like any other
// component.
func NewSubsystem(parent *System, block Block, name string, params map[string]any) (*System, error) {
	if parent == nil {
		return nil, fmt.Errorf("diagram: subsystem %q needs a containing system", name)
	}
	sub := &System{diagram: parent.diagram}
	comp, err := newDetached(block)
	if err != nil {
		return nil, err
	}
	comp.sys = parent
	comp.sub = sub
	sub.comp = comp

	registered, err := parent.Diagram().RegisterComponentName(comp, name)
	if err != nil {
		return nil, err
	}
	comp.rename(registered)

	if len(params) > 0 {
		if !comp.parameters.IsOrdered() {
			return nil, fmt.Errorf("subsystem %q: block %q takes positional parameters only", comp.name, block.Type())
		}
		if err := comp.parameters.AddNamed(params); err != nil {
			return nil, fmt.Errorf("subsystem %q: %w", comp.name, err)
		}
	}

	parent.add(comp)
	return sub, nil
}

// Component returns the system's component identity.
func (s *System) Component() *Component { return s.comp }

// Name returns the system component's registered name.
func (s *System) Name() string { return s.comp.name }

// Diagram returns the root diagram the system belongs to.
func (s *System) Diagram() *Diagram { return s.diagram }

// IsDiagramRoot reports whether the system is its diagram's root container.
func (s *System) IsDiagramRoot() bool {
	return s.diagram != nil && s.diagram.sys == s
}

// Components returns the system's direct components in registration order.
func (s *System) Components() []*Component {
	return append([]*Component(nil), s.comps...)
}

// Order returns the execution order computed by the last Organize call for
// this level only; subsystem entries expand through their own Order.
func (s *System) Order() []*Component {
	if s.org == nil {
		return nil
	}
	ordered := s.org.Ordered()
	comps := make([]*Component, 0, len(ordered))
	for _, entry := range ordered {
		comps = append(comps, entry.(*Component))
	}
	return comps
}

// Severed returns the dependency edges removed at this level to break
// feedback loops.
func (s *System) Severed() []organizer.Edge {
	if s.org == nil {
		return nil
	}
	return s.org.Severed()
}

func (s *System) add(c *Component) {
	s.comps = append(s.comps, c)
}

// Organize resolves the execution order for this system and, recursively,
// every subsystem below it.
func (s *System) Organize(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Organizing system.", "system", s.Name(), "components", len(s.comps))

	org := organizer.New()
	org.DefineSystemInfo(s.systemInfo())
	s.org = org

	for _, c := range s.comps {
		if c.Unmapped() {
			if err := org.BuildSystemOrder(c); err != nil {
				return fmt.Errorf("system %q: %w", s.Name(), err)
			}
		}
		if c.IsSystem() {
			if err := c.Subsystem().Organize(ctx); err != nil {
				return err
			}
		}
	}

	logger.Debug("System organized.", "system", s.Name(), "severed_edges", len(org.Severed()))
	return nil
}

// systemInfo snapshots each component's wired input dependencies for the
// organizer's working copy.
func (s *System) systemInfo() map[organizer.Component][]organizer.Component {
	info := make(map[organizer.Component][]organizer.Component, len(s.comps))
	for _, c := range s.comps {
		inputs := c.InputComponents()
		deps := make([]organizer.Component, 0, len(inputs))
		for _, dep := range inputs {
			deps = append(deps, dep)
		}
		info[c] = deps
	}
	return info
}

// resetMapping marks every component below this system unmapped so a build
// always recomputes the order from scratch.
func (s *System) resetMapping() {
	for _, c := range s.comps {
		c.notMapped = true
		if c.IsSystem() {
			c.Subsystem().resetMapping()
		}
	}
}

// PassDefaultParameters fills optional parameters on every component below
// this system.
func (s *System) PassDefaultParameters() error {
	if err := s.comp.PassDefaultParameters(); err != nil {
		return err
	}
	for _, c := range s.comps {
		if c.IsSystem() {
			if err := c.Subsystem().PassDefaultParameters(); err != nil {
				return err
			}
			continue
		}
		if err := c.PassDefaultParameters(); err != nil {
			return err
		}
	}
	return nil
}

// VerifyProperties checks required values on every component below this
// system.
func (s *System) VerifyProperties() error {
	if err := s.comp.VerifyProperties(); err != nil {
		return err
	}
	for _, c := range s.comps {
		if c.IsSystem() {
			if err := c.Subsystem().VerifyProperties(); err != nil {
				return err
			}
			continue
		}
		if err := c.VerifyProperties(); err != nil {
			return err
		}
	}
	return nil
}

// Search returns the components anywhere below this system whose name
// contains the given fragment, sorted by name for determinism.
func (s *System) Search(name string) []*Component {
	var found []*Component
	for _, c := range s.comps {
		if strings.Contains(c.name, name) {
			found = append(found, c)
		}
		if c.IsSystem() {
			found = append(found, c.Subsystem().Search(name)...)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].name < found[j].name })
	return found
}

// FindByName returns the component anywhere below this system with exactly
// the given name.
func (s *System) FindByName(name string) (*Component, bool) {
	for _, c := range s.comps {
		if c.name == name {
			return c, true
		}
		if c.IsSystem() {
			if found, ok := c.Subsystem().FindByName(name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// RemoveComponent strips the component from every sibling's input and output
// slots below this system and drops it from the component list. It does not
// touch the name registry; use the diagram's removal flow for that.
func (s *System) RemoveComponent(target *Component) error {
	for _, c := range s.comps {
		if err := c.Inputs().RemoveValue(target); err != nil {
			return err
		}
		if err := c.Outputs().RemoveValue(target); err != nil {
			return err
		}
		if c.IsSystem() {
			if err := c.Subsystem().RemoveComponent(target); err != nil {
				return err
			}
		}
	}
	for i, c := range s.comps {
		if c == target {
			s.comps = append(s.comps[:i], s.comps[i+1:]...)
			break
		}
	}
	return nil
}

// UnregisterAll removes every component name below this system from the
// diagram's registry, leaving the components wired.
func (s *System) UnregisterAll() error {
	for _, c := range s.comps {
		if c.IsSystem() {
			if err := c.Subsystem().UnregisterAll(); err != nil {
				return err
			}
		}
		if err := s.diagram.UnregisterComponentName(c); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every component below this system, unregistering names as it
// goes.
func (s *System) Clear() error {
	for _, c := range s.Components() {
		if c.IsSystem() {
			if err := c.Subsystem().Clear(); err != nil {
				return err
			}
		}
		if err := s.diagram.UnregisterComponentName(c); err != nil {
			return err
		}
		if err := s.RemoveComponent(c); err != nil {
			return err
		}
	}
	return nil
}
