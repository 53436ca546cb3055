package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcore/engine/internal/ref"
)

func k(sheet string, col, row int) ref.CellKey { return ref.NewCellKey(sheet, col, row) }

func TestTopologicalOrderRespectsEdges(t *testing.T) {
	g := New()
	a1, a2, a3 := k("s", 1, 1), k("s", 1, 2), k("s", 1, 3)
	// a3 = a1 + a2
	g.Link(a3, a1, Static)
	g.Link(a3, a2, Static)

	order := g.TopologicalOrder(Static)
	pos := map[ref.CellKey]int{}
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos[a1], pos[a3])
	assert.Less(t, pos[a2], pos[a3])
}

func TestCycleDetectionTwoNode(t *testing.T) {
	g := New()
	a1, a2 := k("s", 1, 1), k("s", 1, 2)
	g.Link(a1, a2, Static)
	g.Link(a2, a1, Static)

	cyclic := g.CyclicNodes(Static)
	assert.True(t, cyclic[a1])
	assert.True(t, cyclic[a2])
}

func TestSelfLoopIsCycle(t *testing.T) {
	g := New()
	a1 := k("s", 1, 1)
	g.Link(a1, a1, Static)
	cyclic := g.CyclicNodes(Static)
	assert.True(t, cyclic[a1])
}

func TestNonCyclicTwoNodeChainNotMarkedCyclic(t *testing.T) {
	g := New()
	a1, a2 := k("s", 1, 1), k("s", 1, 2)
	g.Link(a1, a2, Static)
	cyclic := g.CyclicNodes(Static)
	assert.False(t, cyclic[a1])
	assert.False(t, cyclic[a2])
}

func TestAncestorsOfSetExcludesSeeds(t *testing.T) {
	g := New()
	a1, a2, a3 := k("s", 1, 1), k("s", 1, 2), k("s", 1, 3)
	// a3 depends on a2 depends on a1: edges are reader->referent
	g.Link(a3, a2, Static)
	g.Link(a2, a1, Static)

	// Changing a1 should wake a2 and a3 (its ancestors via backward edges).
	ancestors := g.AncestorsOfSet([]ref.CellKey{a1}, Static)
	require.Contains(t, ancestors, a2)
	require.Contains(t, ancestors, a3)
	assert.NotContains(t, ancestors, a1)
}

func TestClearForwardRemovesOnlyThatKind(t *testing.T) {
	g := New()
	a1, a2 := k("s", 1, 1), k("s", 1, 2)
	g.Link(a1, a2, Static|Evaluated)
	g.ClearForward(a1, Evaluated)
	succ := g.Successors(a1, Evaluated)
	assert.Empty(t, succ)
	succ = g.Successors(a1, Static)
	assert.Len(t, succ, 1)
}


