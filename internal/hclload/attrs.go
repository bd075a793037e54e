package hclload

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/blockflow/internal/schema"
)

// decodeParams statically evaluates a parameters block into Go values.
func decodeParams(block *schema.ParamsBlock) (map[string]any, error) {
	attrs, err := bodyAttributes(blockBody(block))
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parameter %q: %w", name, diags)
		}
		goValue, err := ctyToGo(value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		params[name] = goValue
	}
	return params, nil
}

// decodeWire reads a wire block's `slot = "component"` attributes.
func decodeWire(block *schema.WireBlock) (map[string]string, error) {
	attrs, err := bodyAttributes(wireBody(block))
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	wire := make(map[string]string, len(attrs))
	for slot, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("input %q: %w", slot, diags)
		}
		if value.Type() != cty.String {
			return nil, fmt.Errorf("input %q: expected a component name string, got %s", slot, value.Type().FriendlyName())
		}
		wire[slot] = value.AsString()
	}
	return wire, nil
}

func blockBody(block *schema.ParamsBlock) hcl.Body {
	if block == nil {
		return nil
	}
	return block.Body
}

func wireBody(block *schema.WireBlock) hcl.Body {
	if block == nil {
		return nil
	}
	return block.Body
}

func bodyAttributes(body hcl.Body) (hcl.Attributes, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading attributes: %w", diags)
	}
	return attrs, nil
}

// ctyToGo converts a statically evaluated cty value into the Go value the
// property collections store.
func ctyToGo(value cty.Value) (any, error) {
	if value.IsNull() {
		return nil, nil
	}
	switch value.Type() {
	case cty.Number:
		f, _ := value.AsBigFloat().Float64()
		return f, nil
	case cty.String:
		return value.AsString(), nil
	case cty.Bool:
		return value.True(), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", value.Type().FriendlyName())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
