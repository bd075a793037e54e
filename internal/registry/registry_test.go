package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/blockflow/internal/diagram"
)

type stubBlock struct{ typ string }

func (b stubBlock) Type() string            { return b.typ }
func (b stubBlock) DefaultName() string     { return b.typ }
func (b stubBlock) DirectFeedthrough() bool { return false }
func (b stubBlock) Schema() diagram.Schema  { return diagram.Schema{} }
func (b stubBlock) GenerateCode(*diagram.Component) (diagram.Fragments, error) {
	return diagram.Fragments{}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	r.RegisterBlock(stubBlock{typ: "gain"})

	b, ok := r.Lookup("gain")
	require.True(t, ok)
	assert.Equal(t, "gain", b.Type())

	_, ok = r.Lookup("integrator")
	assert.False(t, ok)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	r := New()
	r.RegisterBlock(stubBlock{typ: "gain"})

	assert.PanicsWithValue(t, `block type "gain" already registered`, func() {
		r.RegisterBlock(stubBlock{typ: "gain"})
	})
}

func TestTypesSorted(t *testing.T) {
	r := New()
	r.RegisterBlock(stubBlock{typ: "sum"})
	r.RegisterBlock(stubBlock{typ: "abs"})
	r.RegisterBlock(stubBlock{typ: "gain"})

	assert.Equal(t, []string{"abs", "gain", "sum"}, r.Types())
}
