// Package property implements the per-component collections that back a
// component's inputs, outputs, and parameters.
//
// A collection comes in two variants. Ordered collections have a key set
// fixed at construction (the component's declared schema); only value
// assignment is allowed. Unordered collections grow dynamically under
// generated keys of the form "<kind>_<n>" and stay contiguously numbered
// across deletions by left-compacting the surviving entries.
package property

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Kind identifies which component slot a collection backs. The kind decides
// the generated key stem and the value constraint for entries.
type Kind int

const (
	Inputs Kind = iota
	Outputs
	Parameters
)

// String returns the singular key stem for the kind ("input", "output",
// "parameter").
func (k Kind) String() string {
	switch k {
	case Inputs:
		return "input"
	case Outputs:
		return "output"
	case Parameters:
		return "parameter"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reference is the constraint for input and output values: anything stored in
// those collections must resolve to a named component. Parameters carry no
// constraint.
type Reference interface {
	ComponentName() string
}

// Collection stores the key-value pairs for one property kind of one
// component. The zero value is not usable; construct with NewOrdered or
// NewUnordered.
type Collection struct {
	kind    Kind
	ordered bool

	entries map[string]any

	// Ordered variant: declared schema, in declaration order.
	declared []string
	required []string

	// Unordered variant: index of the next key to generate.
	genCount int

	// inMethod guards the raw Assign/Unset entry points so entries can only
	// change while one of the collection's public methods is on the stack.
	inMethod bool

	keyPattern *regexp.Regexp
}

// NewUnordered returns an open collection whose keys are generated on Add.
func NewUnordered(kind Kind) *Collection {
	return &Collection{
		kind:       kind,
		entries:    make(map[string]any),
		genCount:   1,
		keyPattern: generatedKeyPattern(kind),
	}
}

// NewOrdered returns a fixed-schema collection. Every declared key starts out
// unassigned (nil). An empty declaration means the collection accepts no
// entries at all. Required keys must be a subset of the declared keys.
func NewOrdered(kind Kind, required, declared []string) (*Collection, error) {
	declaredSet := make(map[string]bool, len(declared))
	entries := make(map[string]any, len(declared))
	for _, key := range declared {
		declaredSet[key] = true
		entries[key] = nil
	}
	for _, key := range required {
		if !declaredSet[key] {
			return nil, fmt.Errorf("required key %q is not declared: %w", key, ErrUndeclaredKey)
		}
	}
	return &Collection{
		kind:       kind,
		ordered:    true,
		entries:    entries,
		declared:   append([]string(nil), declared...),
		required:   append([]string(nil), required...),
		keyPattern: generatedKeyPattern(kind),
	}, nil
}

func generatedKeyPattern(kind Kind) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(kind.String()) + "_([1-9][0-9]*)$")
}

// Kind returns the property kind the collection backs.
func (c *Collection) Kind() Kind { return c.kind }

// IsOrdered reports whether the collection has a fixed schema.
func (c *Collection) IsOrdered() bool { return c.ordered }

// Required returns the keys that must hold a value before a build.
func (c *Collection) Required() []string {
	return append([]string(nil), c.required...)
}

// Generation returns the index the next generated key would use. It is one
// greater than the number of entries in a compact unordered collection.
func (c *Collection) Generation() int { return c.genCount }

// Len returns the number of entries, counting unassigned declared keys.
func (c *Collection) Len() int { return len(c.entries) }

// Get returns the value stored under key and whether the key exists.
func (c *Collection) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Has reports whether the key exists in the collection.
func (c *Collection) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys returns the collection's keys: declaration order for ordered
// collections, ascending generated index for unordered ones.
func (c *Collection) Keys() []string {
	if c.ordered {
		return append([]string(nil), c.declared...)
	}
	keys := make([]string, 0, len(c.entries))
	for i := 1; i < c.genCount; i++ {
		key := c.generatedKey(i)
		if _, ok := c.entries[key]; ok {
			keys = append(keys, key)
		}
	}
	if len(keys) < len(c.entries) {
		// Entries set past the generation counter; fall back to a sorted scan.
		keys = keys[:0]
		for key := range c.entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	return keys
}

// Add appends values to an unordered collection, generating one key per value
// and advancing the generation counter. It fails on ordered collections,
// which only accept AddNamed.
func (c *Collection) Add(values ...any) error {
	if c.ordered {
		return fmt.Errorf("add positional values to ordered %s collection: %w", c.kind, ErrNotApplicable)
	}
	c.inMethod = true
	defer func() { c.inMethod = false }()

	for _, value := range values {
		if err := c.Assign(c.generatedKey(c.genCount), value); err != nil {
			return err
		}
		c.genCount++
	}
	return nil
}

// AddNamed assigns values to declared keys of an ordered collection. A key
// outside the declared schema fails with ErrUnknownKey.
func (c *Collection) AddNamed(values map[string]any) error {
	if !c.ordered {
		return fmt.Errorf("add named values to unordered %s collection: %w", c.kind, ErrNotApplicable)
	}
	c.inMethod = true
	defer func() { c.inMethod = false }()

	// Deterministic assignment order keeps error reporting stable.
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := c.entries[key]; !ok {
			return fmt.Errorf("%w: %s %q", ErrUnknownKey, c.kind, key)
		}
		if err := c.Assign(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// Set assigns a value to an existing key. For unordered collections the key
// must match the generated pattern and may not lie past the generation
// counter; for ordered collections it must be declared.
func (c *Collection) Set(key string, value any) error {
	c.inMethod = true
	defer func() { c.inMethod = false }()
	return c.Assign(key, value)
}

// Assign is the raw item-assignment entry point. It validates the key and
// value but refuses to run unless a public method of the collection is on the
// call stack, failing with ErrScopeViolation otherwise.
func (c *Collection) Assign(key string, value any) error {
	if !c.inMethod {
		return fmt.Errorf("assign %s %q: %w", c.kind, key, ErrScopeViolation)
	}
	if err := c.checkValue(value); err != nil {
		return err
	}
	if c.ordered {
		if _, ok := c.entries[key]; !ok {
			if len(c.declared) == 0 {
				return fmt.Errorf("no %s entries are declared for this component: %w", c.kind, ErrUndeclaredKey)
			}
			return fmt.Errorf("%w: %s %q", ErrUndeclaredKey, c.kind, key)
		}
	} else {
		index, err := c.parseGeneratedKey(key)
		if err != nil {
			return err
		}
		if index > c.genCount {
			return fmt.Errorf("%w: %s %q (generation counter is %d)", ErrKeyNotGenerated, c.kind, key, c.genCount)
		}
	}
	c.entries[key] = value
	return nil
}

// Delete removes a generated key from an unordered collection, decrements the
// generation counter, and left-shifts every higher-indexed entry down by one
// so the surviving keys stay contiguous.
func (c *Collection) Delete(key string) error {
	c.inMethod = true
	defer func() { c.inMethod = false }()
	return c.Unset(key)
}

// Pop removes the key like Delete and returns the value it held.
func (c *Collection) Pop(key string) (any, error) {
	value, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownKey, c.kind, key)
	}
	if err := c.Delete(key); err != nil {
		return nil, err
	}
	return value, nil
}

// Unset is the raw item-deletion entry point, guarded the same way as Assign.
func (c *Collection) Unset(key string) error {
	if !c.inMethod {
		return fmt.Errorf("unset %s %q: %w", c.kind, key, ErrScopeViolation)
	}
	if c.ordered {
		return fmt.Errorf("delete %s %q: %w", c.kind, key, ErrImmutableSchema)
	}
	index, err := c.parseGeneratedKey(key)
	if err != nil {
		return err
	}
	if _, ok := c.entries[key]; !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownKey, c.kind, key)
	}

	c.genCount--
	delete(c.entries, key)
	c.shiftLeft(index)
	return nil
}

// shiftLeft renumbers every entry above index down by one, re-occupying the
// deleted slot. After the shift the last generated key is vacant and removed.
func (c *Collection) shiftLeft(index int) {
	if index >= c.genCount {
		return // Deleted the last entry; nothing to move.
	}
	for i := index; i < c.genCount; i++ {
		c.entries[c.generatedKey(i)] = c.entries[c.generatedKey(i+1)]
	}
	delete(c.entries, c.generatedKey(c.genCount))
}

// RemoveValue drops every entry holding the given value. Unordered
// collections delete the entries (compacting after each removal); ordered
// collections reset them to unassigned.
func (c *Collection) RemoveValue(value any) error {
	c.inMethod = true
	defer func() { c.inMethod = false }()

	if c.ordered {
		for _, key := range c.declared {
			if c.entries[key] == value {
				c.entries[key] = nil
			}
		}
		return nil
	}
	// Compaction renames keys, so rescan from the start after each hit.
	for {
		removed := false
		for _, key := range c.Keys() {
			if c.entries[key] == value {
				if err := c.Unset(key); err != nil {
					return err
				}
				removed = true
				break
			}
		}
		if !removed {
			return nil
		}
	}
}

// OrderedValues returns an unordered collection's values in ascending
// generated-key order. Ordered collections do not need organizing; extract a
// value by its declared key instead.
func (c *Collection) OrderedValues() ([]any, error) {
	if c.ordered {
		return nil, fmt.Errorf("ordered %s collections are accessed by declared key: %w", c.kind, ErrNotApplicable)
	}
	values := make([]any, 0, len(c.entries))
	for i := 1; i < c.genCount; i++ {
		values = append(values, c.entries[c.generatedKey(i)])
	}
	return values, nil
}

// Clear removes every entry from an unordered collection and resets the
// generation counter.
func (c *Collection) Clear() error {
	if c.ordered {
		return fmt.Errorf("clear %s collection: %w", c.kind, ErrImmutableSchema)
	}
	c.entries = make(map[string]any)
	c.genCount = 1
	return nil
}

func (c *Collection) generatedKey(index int) string {
	return fmt.Sprintf("%s_%d", c.kind, index)
}

func (c *Collection) parseGeneratedKey(key string) (int, error) {
	match := c.keyPattern.FindStringSubmatch(key)
	if match == nil {
		return 0, fmt.Errorf("%w: %q does not match the %s_<n> key format", ErrUnknownKey, key, c.kind)
	}
	index, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q has a malformed index", ErrUnknownKey, key)
	}
	return index, nil
}

func (c *Collection) checkValue(value any) error {
	if c.kind == Parameters || value == nil {
		return nil
	}
	if _, ok := value.(Reference); !ok {
		return fmt.Errorf("%w: %s values must reference a component, got %T", ErrInvalidValue, c.kind, value)
	}
	return nil
}
