package diagram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/blockflow/internal/property"
)

// ErrUnknownComponent reports a lookup or removal of a component the
// container does not hold.
var ErrUnknownComponent = errors.New("diagram: component not found")

// MissingRequiredValueError reports required property keys left unassigned
// when a build starts.
type MissingRequiredValueError struct {
	Component string
	Kind      property.Kind
	Keys      []string
}

func (e *MissingRequiredValueError) Error() string {
	return fmt.Sprintf("component %q: required %s value(s) not assigned: %s",
		e.Component, e.Kind, strings.Join(e.Keys, ", "))
}
