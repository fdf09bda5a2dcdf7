package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSortOrdersDependenciesFirst(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("a", "c")
	g.AddNode("isolated")

	order, err := g.TopoSort()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[string]int)
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["b"], pos["c"])
	assert.Less(t, pos["a"], pos["c"])
}

func TestTopoSortDeterministic(t *testing.T) {
	build := func() *Digraph {
		g := New()
		g.AddEdge("x", "z")
		g.AddEdge("y", "z")
		g.AddNode("w")
		return g
	}
	first, err := build().TopoSort()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := build().TopoSort()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTopoSortCycle(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	_, err := g.TopoSort()
	assert.ErrorIs(t, err, ErrCyclic)
}

func TestSimpleCyclesTwoNode(t *testing.T) {
	g := New()
	g.AddEdge("S", "F")
	g.AddEdge("F", "S")
	g.AddEdge("F", "out")

	cycles := g.SimpleCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"F", "S"}, cycles[0])
}

func TestSimpleCyclesOverlapping(t *testing.T) {
	// Two cycles sharing node b: a->b->a and b->c->b, plus a 3-cycle a->b->c->a.
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.AddEdge("b", "c")
	g.AddEdge("c", "b")
	g.AddEdge("c", "a")

	cycles := g.SimpleCycles()
	require.Len(t, cycles, 3)
	assert.Contains(t, cycles, []string{"a", "b"})
	assert.Contains(t, cycles, []string{"b", "c"})
	assert.Contains(t, cycles, []string{"a", "b", "c"})
}

func TestSimpleCyclesSelfLoop(t *testing.T) {
	g := New()
	g.AddEdge("a", "a")
	g.AddEdge("a", "b")

	cycles := g.SimpleCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a"}, cycles[0])
}

func TestSimpleCyclesAcyclic(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	assert.Empty(t, g.SimpleCycles())
}
