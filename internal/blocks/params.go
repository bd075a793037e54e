package blocks

import (
	"fmt"

	"github.com/vk/blockflow/internal/diagram"
)

// floatParam reads a numeric parameter, accepting the types loaders produce.
func floatParam(c *diagram.Component, key string) (float64, error) {
	value, ok := c.Parameters().Get(key)
	if !ok || value == nil {
		return 0, fmt.Errorf("component %q: parameter %q is not set", c.Name(), key)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("component %q: parameter %q: expected a number, got %T", c.Name(), key, value)
	}
}

// stringParam reads a string parameter.
func stringParam(c *diagram.Component, key string) (string, error) {
	value, ok := c.Parameters().Get(key)
	if !ok || value == nil {
		return "", fmt.Errorf("component %q: parameter %q is not set", c.Name(), key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("component %q: parameter %q: expected a string, got %T", c.Name(), key, value)
	}
	return s, nil
}
