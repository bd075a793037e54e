// Package naming implements the per-diagram namespace that keeps every
// component uniquely and deterministically named.
//
// The registry tracks one counter per basename. A name is explicitly
// registered when it appears as a key; it is implicitly registered when it is
// "<basename>_<k>" for 1 <= k < count(basename), which makes it derivable
// without a key of its own. Names are parsed into a structured (basename,
// index) pair once at the boundary; all registry logic operates on the parsed
// form rather than on string patterns.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrDuplicateIndexedName reports a custom name with an index suffix,
	// like "gain_1", that is already explicitly registered.
	ErrDuplicateIndexedName = errors.New("naming: indexed custom name is already registered")

	// ErrUnknownName reports an unregister of a name with no explicit entry
	// and no explicitly registered basename.
	ErrUnknownName = errors.New("naming: name not found in registry")
)

// indexSuffix matches a trailing run of "_<positive int>" groups. The whole
// run is the suffix; the last group carries the effective index.
var indexSuffix = regexp.MustCompile(`(_[1-9][0-9]*)+$`)

// Name is the structured form of a component name. Index zero means the name
// carries no index suffix.
type Name struct {
	Base  string
	Index int
}

// Parse splits a name into its basename and index. A trailing run of indexed
// groups belongs entirely to the suffix, so "x_1_2" parses as {Base: "x",
// Index: 2}.
func Parse(name string) Name {
	loc := indexSuffix.FindStringIndex(name)
	if loc == nil {
		return Name{Base: name}
	}
	suffix := name[loc[0]:loc[1]]
	last := suffix[strings.LastIndex(suffix, "_")+1:]
	index, err := strconv.Atoi(last)
	if err != nil {
		return Name{Base: name}
	}
	return Name{Base: name[:loc[0]], Index: index}
}

// Indexed reports whether the name carries an index suffix.
func (n Name) Indexed() bool { return n.Index > 0 }

// String reassembles the canonical form of the name.
func (n Name) String() string {
	if n.Index == 0 {
		return n.Base
	}
	return fmt.Sprintf("%s_%d", n.Base, n.Index)
}

// Registry assigns unique names within one diagram. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	counts map[string]int
}

// NewRegistry returns an empty name registry.
func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]int)}
}

// Len returns the number of explicit entries.
func (r *Registry) Len() int { return len(r.counts) }

// Register records a name and returns the unique name to use. A fresh
// basename is registered explicitly and returned unchanged. A name that is
// already explicit yields the generated name "<name>_<count>"; if that
// generated name collides with an existing explicit entry, the colliding
// entry is unregistered first (it is implicitly derivable from now on) and
// the next index is tried.
func (r *Registry) Register(name string) string {
	if _, ok := r.counts[name]; !ok {
		r.counts[name] = 1
		return name
	}
	for {
		generated := fmt.Sprintf("%s_%d", name, r.counts[name])
		r.counts[name]++
		if _, clash := r.counts[generated]; clash {
			// The explicit entry is now shadowed by the implicit range.
			_ = r.Unregister(generated)
			continue
		}
		return generated
	}
}

// RegisterCustom records a user-chosen name. An indexed name that is already
// explicit fails with ErrDuplicateIndexedName. An indexed name that is
// implicitly registered bumps its basename's count and is returned unchanged.
// Anything else registers like Register.
func (r *Registry) RegisterCustom(name string) (string, error) {
	parsed := Parse(name)
	if parsed.Indexed() {
		if _, explicit := r.counts[name]; explicit {
			return "", fmt.Errorf("%w: %q", ErrDuplicateIndexedName, name)
		}
		if r.isImplicit(parsed) {
			r.Register(parsed.Base)
			return name, nil
		}
	}
	return r.Register(name), nil
}

// IsRegistered reports whether the name is explicitly or implicitly
// registered.
func (r *Registry) IsRegistered(name string) bool {
	if _, ok := r.counts[name]; ok {
		return true
	}
	parsed := Parse(name)
	return parsed.Indexed() && r.isImplicit(parsed)
}

// Count returns how many times a name has been registered: the explicit count
// for explicit names, the basename's count for implicit ones, zero otherwise.
func (r *Registry) Count(name string) int {
	if count, ok := r.counts[name]; ok {
		return count
	}
	parsed := Parse(name)
	if parsed.Indexed() && r.isImplicit(parsed) {
		return r.counts[parsed.Base]
	}
	return 0
}

// Unregister removes one registration of the name. Explicit entries are
// decremented and deleted at zero; indexed names with an explicit basename
// decrement the basename's count instead.
func (r *Registry) Unregister(name string) error {
	if _, ok := r.counts[name]; ok {
		r.decrement(name)
		return nil
	}
	parsed := Parse(name)
	if parsed.Indexed() {
		if _, ok := r.counts[parsed.Base]; ok {
			r.decrement(parsed.Base)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownName, name)
}

func (r *Registry) decrement(key string) {
	if r.counts[key] <= 1 {
		delete(r.counts, key)
		return
	}
	r.counts[key]--
}

// isImplicit reports whether a parsed name falls inside the implicit range of
// its basename.
func (r *Registry) isImplicit(parsed Name) bool {
	count, ok := r.counts[parsed.Base]
	return ok && parsed.Index < count
}
