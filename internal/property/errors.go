package property

import "errors"

// Sentinel errors returned by collection operations. Callers match them with
// errors.Is after unwrapping whatever context was added at the call site.
var (
	// ErrUnknownKey reports a key that does not exist in the collection, or a
	// named value passed to Add under a key the schema never declared.
	ErrUnknownKey = errors.New("property: unknown key")

	// ErrUndeclaredKey reports an attempt to set a key outside an ordered
	// collection's declared schema.
	ErrUndeclaredKey = errors.New("property: key not declared in schema")

	// ErrKeyNotGenerated reports a generated-format key whose index exceeds
	// the collection's generation counter.
	ErrKeyNotGenerated = errors.New("property: key has not been generated")

	// ErrImmutableSchema reports a structural mutation (delete, clear) on an
	// ordered collection, whose key set is fixed at construction.
	ErrImmutableSchema = errors.New("property: ordered collections have a fixed key set")

	// ErrScopeViolation reports a raw Assign or Unset call made from outside
	// the collection's own public methods.
	ErrScopeViolation = errors.New("property: items may only be modified through public collection methods")

	// ErrNotApplicable reports an operation that only makes sense on the other
	// collection variant, such as OrderedValues on an ordered collection.
	ErrNotApplicable = errors.New("property: operation not applicable to this collection variant")

	// ErrInvalidValue reports a value that violates the kind's type
	// constraint, such as a non-component value in an input slot.
	ErrInvalidValue = errors.New("property: value violates kind constraint")
)
