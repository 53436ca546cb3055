// Package graph implements the dependency graph over cells: a typed
// directed multigraph supporting incremental edge updates, iterative
// (non-recursive) Tarjan SCC detection, topological recompute order,
// and backward-reachability queries.
package graph

import (
	"golang.org/x/exp/maps"

	"github.com/sheetcore/engine/internal/ref"
)

// EdgeKind distinguishes a reference that is always re-read on every
// evaluation of the owning cell (Static) from one recorded only
// because the last evaluation actually took that branch (Evaluated).
type EdgeKind uint8

const (
	Static EdgeKind = 1 << iota
	Evaluated
)

// Has reports whether kinds includes k.
func (k EdgeKind) Has(kinds EdgeKind) bool { return kinds&k != 0 }

type node struct {
	// forward[to] is the set of edge kinds present on the from->to edge.
	forward  map[ref.CellKey]EdgeKind
	backward map[ref.CellKey]EdgeKind
}

func newNode() *node {
	return &node{forward: map[ref.CellKey]EdgeKind{}, backward: map[ref.CellKey]EdgeKind{}}
}

// Graph is a typed directed multigraph keyed by ref.CellKey. It caches
// its SCC/topological analysis and invalidates the cache on any
// mutation.
type Graph struct {
	nodes    map[ref.CellKey]*node
	dirty    bool
	sccs     []scc
	sccsKind EdgeKind
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: map[ref.CellKey]*node{}, dirty: true}
}

func (g *Graph) ensure(k ref.CellKey) *node {
	n, ok := g.nodes[k]
	if !ok {
		n = newNode()
		g.nodes[k] = n
	}
	return n
}

// Link adds edges of kinds from->to; idempotent per kind.
func (g *Graph) Link(from, to ref.CellKey, kinds EdgeKind) {
	fn := g.ensure(from)
	tn := g.ensure(to)
	fn.forward[to] |= kinds
	tn.backward[from] |= kinds
	g.dirty = true
}

// Unlink removes edges of kinds from->to.
func (g *Graph) Unlink(from, to ref.CellKey, kinds EdgeKind) {
	fn, ok := g.nodes[from]
	if !ok {
		return
	}
	if existing, ok := fn.forward[to]; ok {
		remaining := existing &^ kinds
		if remaining == 0 {
			delete(fn.forward, to)
		} else {
			fn.forward[to] = remaining
		}
	}
	if tn, ok := g.nodes[to]; ok {
		if existing, ok := tn.backward[from]; ok {
			remaining := existing &^ kinds
			if remaining == 0 {
				delete(tn.backward, from)
			} else {
				tn.backward[from] = remaining
			}
		}
	}
	g.dirty = true
}

// ClearForward removes all outgoing edges of the given kinds from a
// node, as happens whenever a cell is reparsed.
func (g *Graph) ClearForward(from ref.CellKey, kinds EdgeKind) {
	fn, ok := g.nodes[from]
	if !ok {
		return
	}
	for to, existing := range fn.forward {
		remaining := existing &^ kinds
		if remaining == 0 {
			delete(fn.forward, to)
		} else {
			fn.forward[to] = remaining
		}
		if tn, ok := g.nodes[to]; ok {
			if te, ok := tn.backward[from]; ok {
				tremain := te &^ kinds
				if tremain == 0 {
					delete(tn.backward, from)
				} else {
					tn.backward[from] = tremain
				}
			}
		}
	}
	g.dirty = true
}

// ClearBackward removes all incoming edges of the given kinds onto a
// node.
func (g *Graph) ClearBackward(to ref.CellKey, kinds EdgeKind) {
	tn, ok := g.nodes[to]
	if !ok {
		return
	}
	for from, existing := range tn.backward {
		remaining := existing &^ kinds
		if remaining == 0 {
			delete(tn.backward, from)
		} else {
			tn.backward[from] = remaining
		}
		if fn, ok := g.nodes[from]; ok {
			if fe, ok := fn.forward[to]; ok {
				fremain := fe &^ kinds
				if fremain == 0 {
					delete(fn.forward, to)
				} else {
					fn.forward[to] = fremain
				}
			}
		}
	}
	g.dirty = true
}

// RemoveNode drops a node and every edge touching it entirely (both
// kinds), used when a cell's sheet is deleted.
func (g *Graph) RemoveNode(k ref.CellKey) {
	g.ClearForward(k, Static|Evaluated)
	g.ClearBackward(k, Static|Evaluated)
	delete(g.nodes, k)
	g.dirty = true
}

// RenameNode re-keys a node from oldKey to newKey, preserving every
// edge (and its kinds) touching it. Used when a sheet's case-folded
// name changes, since ref.CellKey embeds the sheet name. A no-op if
// oldKey has no recorded edges.
func (g *Graph) RenameNode(oldKey, newKey ref.CellKey) {
	n, ok := g.nodes[oldKey]
	if !ok {
		return
	}
	if e, ok := n.forward[oldKey]; ok {
		delete(n.forward, oldKey)
		n.forward[newKey] = e
	}
	if e, ok := n.backward[oldKey]; ok {
		delete(n.backward, oldKey)
		n.backward[newKey] = e
	}
	delete(g.nodes, oldKey)
	g.nodes[newKey] = n
	for to := range n.forward {
		if tn, ok := g.nodes[to]; ok {
			if e, ok := tn.backward[oldKey]; ok {
				delete(tn.backward, oldKey)
				tn.backward[newKey] = e
			}
		}
	}
	for from := range n.backward {
		if fn, ok := g.nodes[from]; ok {
			if e, ok := fn.forward[oldKey]; ok {
				delete(fn.forward, oldKey)
				fn.forward[newKey] = e
			}
		}
	}
	g.dirty = true
}

// HasNode reports whether the graph tracks k: k was linked at some
// point and not since removed by RemoveNode, even if its edges have
// all been cleared.
func (g *Graph) HasNode(k ref.CellKey) bool {
	_, ok := g.nodes[k]
	return ok
}

// Successors returns the forward neighbors of k restricted to kinds,
// in a deterministic (sorted) order.
func (g *Graph) Successors(k ref.CellKey, kinds EdgeKind) []ref.CellKey {
	n, ok := g.nodes[k]
	if !ok {
		return nil
	}
	var out []ref.CellKey
	for to, edgeKinds := range n.forward {
		if edgeKinds&kinds != 0 {
			out = append(out, to)
		}
	}
	sortKeys(out)
	return out
}

// Predecessors returns the backward neighbors of k restricted to
// kinds, in a deterministic order.
func (g *Graph) Predecessors(k ref.CellKey, kinds EdgeKind) []ref.CellKey {
	n, ok := g.nodes[k]
	if !ok {
		return nil
	}
	var out []ref.CellKey
	for from, edgeKinds := range n.backward {
		if edgeKinds&kinds != 0 {
			out = append(out, from)
		}
	}
	sortKeys(out)
	return out
}

// AllNodes returns every node currently tracked, in a deterministic
// order (used by tests and full-rebuild diagnostics).
func (g *Graph) AllNodes() []ref.CellKey {
	keys := maps.Keys(g.nodes)
	sortKeys(keys)
	return keys
}

func sortKeys(keys []ref.CellKey) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

func less(a, b ref.CellKey) bool {
	if a.Sheet != b.Sheet {
		return a.Sheet < b.Sheet
	}
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}


