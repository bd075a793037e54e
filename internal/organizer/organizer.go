// Package organizer linearizes a system's components into an execution order.
//
// The traversal is a depth-first post-order walk over the input-dependency
// edges of a single system. A trail records the live recursion stack; meeting
// a component that is already on the trail means a feedback loop, which is
// broken by severing exactly one edge inside the loop. A loop with no
// severable edge is an algebraic loop and has no valid evaluation order.
package organizer

import (
	"fmt"
	"strings"
)

// Component is the view of a component the organizer needs. Mapping state
// lives on the component so that nested systems sharing components never
// order the same component twice.
type Component interface {
	Name() string
	DirectFeedthrough() bool
	Unmapped() bool
	MarkMapped()
}

// Edge identifies a severed input dependency: Dependent consumed Dependency's
// output before the loop was broken.
type Edge struct {
	Dependent  string
	Dependency string
}

// AlgebraicLoopError reports a feedback loop made entirely of
// direct-feedthrough components. Such a diagram cannot be ordered; the build
// aborts.
type AlgebraicLoopError struct {
	Cycle []string
}

func (e *AlgebraicLoopError) Error() string {
	return fmt.Sprintf("algebraic loop with no non-direct-feedthrough component: %s",
		strings.Join(e.Cycle, " -> "))
}

// Organizer holds the working state of one ordering pass. The input map is a
// working copy of the system's dependency data: severance removes edges from
// it without touching the components themselves.
type Organizer struct {
	inputs  map[Component][]Component
	trail   []Component
	ordered []Component
	severed []Edge
}

// New returns an organizer with no system information defined.
func New() *Organizer {
	return &Organizer{inputs: make(map[Component][]Component)}
}

// DefineSystemInfo installs the per-component input lists the traversal will
// walk. The lists are copied; severance never mutates the caller's slices.
func (o *Organizer) DefineSystemInfo(inputs map[Component][]Component) {
	o.inputs = make(map[Component][]Component, len(inputs))
	for comp, deps := range inputs {
		o.inputs[comp] = append([]Component(nil), deps...)
	}
}

// Ordered returns the execution order built so far.
func (o *Organizer) Ordered() []Component { return o.ordered }

// Severed returns the edges removed to break feedback loops, in the order
// they were severed.
func (o *Organizer) Severed() []Edge { return o.severed }

// BuildSystemOrder maps comp and, recursively, every unmapped component it
// depends on. Dependencies always precede their dependents in the resulting
// order unless the connecting edge was severed.
func (o *Organizer) BuildSystemOrder(comp Component) error {
	o.trail = append(o.trail, comp)

	// Snapshot the dependency list: severance may shrink the live one while
	// we iterate. Edges removed since the snapshot are skipped.
	deps := append([]Component(nil), o.inputs[comp]...)
	for _, dep := range deps {
		if !o.hasEdge(comp, dep) {
			continue
		}
		if o.onTrail(dep) {
			if err := o.severLoop(dep); err != nil {
				return err
			}
		}
		if dep.Unmapped() {
			if err := o.BuildSystemOrder(dep); err != nil {
				return err
			}
		}
	}

	if comp.Unmapped() {
		o.ordered = append(o.ordered, comp)
		comp.MarkMapped()
		o.dropFromTrail(comp)
	}
	return nil
}

// severLoop breaks the feedback loop that starts at the repeated component.
// The loop is the trail segment from that component to the trail's end. The
// first member (in trail order) whose successor in the loop is not
// direct-feedthrough loses its dependency on that successor; the whole trail
// is then abandoned so the pending recursion re-enters the survivors fresh.
func (o *Organizer) severLoop(repeated Component) error {
	start := o.trailIndex(repeated)
	loop := o.trail[start:]

	for i, member := range loop {
		// The member's input inside the loop is its successor on the trail,
		// wrapping around to the repeated component at the end.
		dependency := loop[(i+1)%len(loop)]
		if dependency.DirectFeedthrough() {
			continue
		}
		o.removeEdge(member, dependency)
		o.severed = append(o.severed, Edge{Dependent: member.Name(), Dependency: dependency.Name()})
		o.trail = o.trail[:0]
		return nil
	}

	cycle := make([]string, 0, len(loop))
	for _, member := range loop {
		cycle = append(cycle, member.Name())
	}
	return &AlgebraicLoopError{Cycle: cycle}
}

func (o *Organizer) hasEdge(comp, dep Component) bool {
	for _, existing := range o.inputs[comp] {
		if existing == dep {
			return true
		}
	}
	return false
}

func (o *Organizer) removeEdge(comp, dep Component) {
	deps := o.inputs[comp]
	for i, existing := range deps {
		if existing == dep {
			o.inputs[comp] = append(deps[:i:i], deps[i+1:]...)
			return
		}
	}
}

func (o *Organizer) onTrail(comp Component) bool {
	return o.trailIndex(comp) >= 0
}

func (o *Organizer) trailIndex(comp Component) int {
	for i, existing := range o.trail {
		if existing == comp {
			return i
		}
	}
	return -1
}

func (o *Organizer) dropFromTrail(comp Component) {
	for i, existing := range o.trail {
		if existing == comp {
			o.trail = append(o.trail[:i:i], o.trail[i+1:]...)
			return
		}
	}
}
