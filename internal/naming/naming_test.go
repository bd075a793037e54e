package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		index int
	}{
		{"gain", "gain", 0},
		{"gain_1", "gain", 1},
		{"gain_42", "gain", 42},
		{"unit_delay", "unit_delay", 0}, // "delay" is not an index
		{"x_1_2", "x", 2},               // whole indexed run is suffix, last group wins
		{"g_01", "g_01", 0},             // leading zero is not a valid index
		{"", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.name)
			assert.Equal(t, tt.base, parsed.Base)
			assert.Equal(t, tt.index, parsed.Index)
		})
	}
}

func TestNameString(t *testing.T) {
	assert.Equal(t, "gain", Name{Base: "gain"}.String())
	assert.Equal(t, "gain_3", Name{Base: "gain", Index: 3}.String())
}

func TestRegisterGeneratesIndexedNames(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "sum", r.Register("sum"))
	assert.Equal(t, "sum_1", r.Register("sum"))
	assert.Equal(t, "sum_2", r.Register("sum"))
	assert.Equal(t, 3, r.Count("sum"))

	// Implicit names resolve to the basename's count.
	assert.True(t, r.IsRegistered("sum_1"))
	assert.True(t, r.IsRegistered("sum_2"))
	assert.False(t, r.IsRegistered("sum_3"))
	assert.Equal(t, 3, r.Count("sum_2"))
}

func TestRegisterSkipsCollidingExplicitEntry(t *testing.T) {
	r := NewRegistry()
	r.Register("a")
	_, err := r.RegisterCustom("a_1") // explicit indexed custom name
	require.NoError(t, err)

	// Generating "a_1" collides with the explicit entry; that entry becomes
	// implicitly derivable and the next index is used.
	got := r.Register("a")
	assert.Equal(t, "a_2", got)
	assert.False(t, containsKey(r, "a_1"))
	assert.True(t, r.IsRegistered("a_1"))
	assert.Equal(t, 1, r.Len())
}

func TestRegisterCustom(t *testing.T) {
	t.Run("count example", func(t *testing.T) {
		// Registering "x", then "x" twice as custom names yields one explicit
		// entry whose count observers see as 3.
		r := NewRegistry()
		assert.Equal(t, "x", r.Register("x"))

		name, err := r.RegisterCustom("x")
		require.NoError(t, err)
		assert.Equal(t, "x_1", name)

		name, err = r.RegisterCustom("x")
		require.NoError(t, err)
		assert.Equal(t, "x_2", name)

		assert.Equal(t, 3, r.Count("x"))
		require.NoError(t, r.Unregister("x"))
		assert.Equal(t, 2, r.Count("x"))
	})

	t.Run("duplicate indexed name rejected", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.RegisterCustom("v_1")
		require.NoError(t, err) // fresh, registered explicitly

		_, err = r.RegisterCustom("v_1")
		assert.ErrorIs(t, err, ErrDuplicateIndexedName)
	})

	t.Run("implicit indexed name bumps basename", func(t *testing.T) {
		r := NewRegistry()
		r.Register("v")
		r.Register("v") // count 2, "v_1" implicit

		name, err := r.RegisterCustom("v_1")
		require.NoError(t, err)
		assert.Equal(t, "v_1", name)
		assert.Equal(t, 3, r.Count("v"))
	})
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("gain")
	r.Register("gain")

	// Indexed name decrements the basename.
	require.NoError(t, r.Unregister("gain_1"))
	assert.Equal(t, 1, r.Count("gain"))

	require.NoError(t, r.Unregister("gain"))
	assert.False(t, r.IsRegistered("gain"))
	assert.Zero(t, r.Len())

	err := r.Unregister("gain")
	assert.ErrorIs(t, err, ErrUnknownName)

	err = r.Unregister("ghost_3")
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestRoundTripRestoresRegistry(t *testing.T) {
	// Registering then unregistering the same sequence restores every count.
	r := NewRegistry()
	sequence := []string{"a", "a", "b", "a", "c", "b"}
	var assigned []string
	for _, name := range sequence {
		assigned = append(assigned, r.Register(name))
	}

	before := map[string]int{"a": 3, "b": 2, "c": 1}
	for base, want := range before {
		assert.Equal(t, want, r.Count(base))
	}

	for i := len(assigned) - 1; i >= 0; i-- {
		require.NoError(t, r.Unregister(assigned[i]))
	}
	assert.Zero(t, r.Len())
}

// containsKey reports whether the registry holds an explicit entry for name.
func containsKey(r *Registry, name string) bool {
	_, ok := r.counts[name]
	return ok
}
