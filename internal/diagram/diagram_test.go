package diagram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/blockflow/internal/property"
)

// testBlock is a configurable block for container tests.
type testBlock struct {
	typ         string
	defaultName string
	feedthrough bool
	schema      Schema
}

func (b *testBlock) Type() string            { return b.typ }
func (b *testBlock) DefaultName() string     { return b.defaultName }
func (b *testBlock) DirectFeedthrough() bool { return b.feedthrough }
func (b *testBlock) Schema() Schema          { return b.schema }
func (b *testBlock) GenerateCode(c *Component) (Fragments, error) {
	return Fragments{Execution: "eval " + c.Name()}, nil
}

// passthrough is a direct-feedthrough block with open inputs/outputs and no
// parameters.
func passthrough(name string) *testBlock {
	return &testBlock{typ: name, defaultName: name, feedthrough: true}
}

// stateful is like passthrough but breaks feedback loops.
func stateful(name string) *testBlock {
	return &testBlock{typ: name, defaultName: name, feedthrough: false}
}

func mustDiagram(t *testing.T, name string) *Diagram {
	t.Helper()
	d, err := New(name)
	require.NoError(t, err)
	return d
}

func mustComponent(t *testing.T, sys *System, block Block, name string) *Component {
	t.Helper()
	c, err := NewComponent(sys, block, name, nil)
	require.NoError(t, err)
	return c
}

func wire(t *testing.T, from, to *Component) {
	t.Helper()
	require.NoError(t, to.Inputs().Add(from))
	require.NoError(t, from.Outputs().Add(to))
}

func orderNames(result *BuildResult) []string {
	var out []string
	for _, c := range result.Ordered {
		out = append(out, c.Name())
	}
	return out
}

func TestGeneratedNames(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	first := mustComponent(t, sys, passthrough("gain"), "")
	second := mustComponent(t, sys, passthrough("gain"), "")
	third := mustComponent(t, sys, passthrough("gain"), "")

	assert.Equal(t, "gain", first.Name())
	assert.Equal(t, "gain_1", second.Name())
	assert.Equal(t, "gain_2", third.Name())
	assert.Equal(t, 3, d.NameCount("gain"))
}

func TestSubsystemPrefixesGeneratedNames(t *testing.T) {
	d := mustDiagram(t, "plant")
	sub, err := NewSubsystem(d.System(), stateful("filter"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "filter", sub.Name())

	inner := mustComponent(t, sub, passthrough("gain"), "")
	assert.Equal(t, "filter_gain", inner.Name())

	// Components at the diagram root are not prefixed.
	outer := mustComponent(t, d.System(), passthrough("gain"), "")
	assert.Equal(t, "gain", outer.Name())
}

func TestCustomNameInsertionShiftsRight(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	base := mustComponent(t, sys, passthrough("x"), "")      // x
	generated := mustComponent(t, sys, passthrough("x"), "") // x_1

	inserted, err := NewComponent(sys, passthrough("x"), "x_1", nil)
	require.NoError(t, err)

	assert.Equal(t, "x", base.Name())
	assert.Equal(t, "x_2", generated.Name()) // shifted up
	assert.Equal(t, "x_1", inserted.Name())
	assert.Equal(t, 3, d.NameCount("x"))
}

func TestCustomUnindexedNameShiftsExistingHolder(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	existing := mustComponent(t, sys, passthrough("x"), "") // x

	inserted, err := NewComponent(sys, passthrough("x"), "x", nil)
	require.NoError(t, err)

	// The custom name wins; the previous holder moves up.
	assert.Equal(t, "x", inserted.Name())
	assert.Equal(t, "x_1", existing.Name())
	assert.NotEqual(t, existing.Name(), inserted.Name())
	assert.Equal(t, 2, d.NameCount("x"))

	found, ok := sys.FindByName("x")
	require.True(t, ok)
	assert.Same(t, inserted, found)
}

func TestCustomUnindexedNameShiftsWholeRange(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	first := mustComponent(t, sys, passthrough("x"), "")  // x
	second := mustComponent(t, sys, passthrough("x"), "") // x_1

	inserted, err := NewComponent(sys, passthrough("x"), "x", nil)
	require.NoError(t, err)

	assert.Equal(t, "x", inserted.Name())
	assert.Equal(t, "x_1", first.Name())
	assert.Equal(t, "x_2", second.Name())
	assert.Equal(t, 3, d.NameCount("x"))
}

func TestDuplicateIndexedCustomNameRejected(t *testing.T) {
	d := mustDiagram(t, "plant")
	mustComponent(t, d.System(), passthrough("x"), "x_1")

	_, err := NewComponent(d.System(), passthrough("x"), "x_1", nil)
	require.Error(t, err)
}

func TestRemovalShiftsLeft(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	first := mustComponent(t, sys, passthrough("x"), "")  // x
	second := mustComponent(t, sys, passthrough("x"), "") // x_1
	third := mustComponent(t, sys, passthrough("x"), "")  // x_2

	require.NoError(t, d.RemoveComponents(second))

	assert.Equal(t, "x", first.Name())
	assert.Equal(t, "x_1", third.Name()) // shifted down
	assert.Equal(t, 2, d.NameCount("x"))
	assert.Len(t, sys.Components(), 2)
}

func TestRemovalClearsReferences(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	src := mustComponent(t, sys, passthrough("src"), "")
	sink := mustComponent(t, sys, passthrough("sink"), "")
	wire(t, src, sink)

	require.NoError(t, d.RemoveComponents(src))

	assert.Empty(t, sink.InputComponents())
	assert.Zero(t, sink.Inputs().Len())
}

func TestBuildOrdersLinearChain(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	a := mustComponent(t, sys, passthrough("a"), "")
	b := mustComponent(t, sys, passthrough("b"), "")
	c := mustComponent(t, sys, passthrough("c"), "")
	wire(t, a, b)
	wire(t, b, c)

	result, err := d.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, orderNames(result))
	assert.Empty(t, result.Severed)
	assert.Equal(t, "eval b", b.Code().Execution)
}

func TestBuildSeversFeedbackLoop(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	a := mustComponent(t, sys, passthrough("a"), "")
	b := mustComponent(t, sys, passthrough("b"), "")
	c := mustComponent(t, sys, stateful("c"), "")
	wire(t, c, a)
	wire(t, a, b)
	wire(t, b, c)

	result, err := d.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, orderNames(result))
	require.Len(t, result.Severed, 1)
	assert.Equal(t, "a", result.Severed[0].Dependent)
	assert.Equal(t, "c", result.Severed[0].Dependency)
}

func TestBuildRejectsAlgebraicLoop(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	a := mustComponent(t, sys, passthrough("a"), "")
	b := mustComponent(t, sys, passthrough("b"), "")
	wire(t, a, b)
	wire(t, b, a)

	_, err := d.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "algebraic loop")
}

func TestBuildIsRepeatable(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	a := mustComponent(t, sys, passthrough("a"), "")
	b := mustComponent(t, sys, passthrough("b"), "")
	wire(t, a, b)

	first, err := d.Build(context.Background())
	require.NoError(t, err)
	second, err := d.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, orderNames(first), orderNames(second))
}

func TestBuildRecursesIntoSubsystems(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()

	src := mustComponent(t, sys, passthrough("src"), "")
	sub, err := NewSubsystem(sys, stateful("filter"), "", nil)
	require.NoError(t, err)
	inner := mustComponent(t, sub, passthrough("stage"), "")
	wire(t, src, sub.Component())
	wire(t, sub.Component(), inner)

	result, err := d.Build(context.Background())
	require.NoError(t, err)

	// The subsystem entry expands in place into its own ordered components.
	assert.Equal(t, []string{"src", "filter_stage"}, orderNames(result))
}

func TestMissingRequiredValue(t *testing.T) {
	d := mustDiagram(t, "plant")
	block := &testBlock{
		typ: "divide", defaultName: "divide", feedthrough: true,
		schema: Schema{
			Inputs: &PropSpec{Required: []string{"dividend", "divisor"}, Keys: []string{"dividend", "divisor"}},
		},
	}
	c := mustComponent(t, d.System(), block, "")
	require.NoError(t, c.Inputs().Set("dividend", mustComponent(t, d.System(), passthrough("n"), "")))

	_, err := d.Build(context.Background())
	require.Error(t, err)

	var missing *MissingRequiredValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "divide", missing.Component)
	assert.Equal(t, property.Inputs, missing.Kind)
	assert.Equal(t, []string{"divisor"}, missing.Keys)
}

func TestDefaultParameters(t *testing.T) {
	d := mustDiagram(t, "plant")
	block := &testBlock{
		typ: "sat", defaultName: "sat", feedthrough: true,
		schema: Schema{
			Inputs: &PropSpec{},
			Parameters: &PropSpec{
				Required: []string{"upper"},
				Keys:     []string{"upper", "lower"},
				Defaults: map[string]any{"lower": 0.0},
			},
		},
	}
	c, err := NewComponent(d.System(), block, "", map[string]any{"upper": 1.0})
	require.NoError(t, err)

	_, err = d.Build(context.Background())
	require.NoError(t, err)

	v, _ := c.Parameters().Get("lower")
	assert.Equal(t, 0.0, v)
	v, _ = c.Parameters().Get("upper")
	assert.Equal(t, 1.0, v)
}

func TestSearchAndFind(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()
	mustComponent(t, sys, passthrough("gain"), "")
	mustComponent(t, sys, passthrough("gain"), "")
	sub, err := NewSubsystem(sys, stateful("filter"), "", nil)
	require.NoError(t, err)
	mustComponent(t, sub, passthrough("gain"), "")

	found := sys.Search("gain")
	require.Len(t, found, 3)
	assert.Equal(t, "filter_gain", found[0].Name())

	c, ok := sys.FindByName("gain_1")
	require.True(t, ok)
	assert.Equal(t, "gain_1", c.Name())

	_, ok = sys.FindByName("nope")
	assert.False(t, ok)
}

func TestClearEmptiesDiagramAndRegistry(t *testing.T) {
	d := mustDiagram(t, "plant")
	sys := d.System()
	mustComponent(t, sys, passthrough("gain"), "")
	sub, err := NewSubsystem(sys, stateful("filter"), "", nil)
	require.NoError(t, err)
	mustComponent(t, sub, passthrough("gain"), "")

	require.NoError(t, d.Clear())

	assert.Empty(t, d.Components())
	assert.Zero(t, d.NameCount("gain"))
	assert.Zero(t, d.NameCount("filter"))
	// The diagram's own name survives.
	assert.Equal(t, 1, d.NameCount("plant"))
}

func TestManyGeneratedNamesStayUnique(t *testing.T) {
	d := mustDiagram(t, "plant")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c := mustComponent(t, d.System(), passthrough("n"), "")
		require.False(t, seen[c.Name()], "duplicate name %s", c.Name())
		seen[c.Name()] = true
	}
}
