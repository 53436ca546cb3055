package graph

import "github.com/sheetcore/engine/internal/ref"

// scc is one strongly connected component, in no particular internal
// order.
type scc struct {
	members []ref.CellKey
}

// IsCycle reports whether this SCC counts as a cycle: more than one
// member, or a single member with a self-loop.
func (s scc) IsCycle(g *Graph, kinds EdgeKind) bool {
	if len(s.members) > 1 {
		return true
	}
	k := s.members[0]
	for _, to := range g.Successors(k, kinds) {
		if to == k {
			return true
		}
	}
	return false
}

// tarjanFrame is one stack frame of the iterative Tarjan DFS,
// replacing the call stack a recursive implementation would use.
type tarjanFrame struct {
	node       ref.CellKey
	childIdx   int
	successors []ref.CellKey
}

// tarjanState carries the bookkeeping a recursive Tarjan would close
// over in its call frames.
type tarjanState struct {
	index      map[ref.CellKey]int
	lowlink    map[ref.CellKey]int
	onStack    map[ref.CellKey]bool
	stack      []ref.CellKey
	nextIndex  int
	components []scc
}

// stronglyConnectedComponents runs iterative Tarjan over the graph
// restricted to edges of the given kinds, returning SCCs in the order
// Tarjan naturally emits them: a component is only finished, and
// appended to the result, once every node reachable from it has
// already been finished. Walking "reference -> referent" edges this
// way means a referent's SCC is always emitted before the SCC of any
// cell that reads it -- exactly the order recomputation needs, with
// no reversal step required.
func (g *Graph) stronglyConnectedComponents(kinds EdgeKind) []scc {
	st := &tarjanState{
		index:   map[ref.CellKey]int{},
		lowlink: map[ref.CellKey]int{},
		onStack: map[ref.CellKey]bool{},
	}

	for _, root := range g.AllNodes() {
		if _, seen := st.index[root]; seen {
			continue
		}
		g.tarjanVisit(root, kinds, st)
	}
	return st.components
}

func (g *Graph) tarjanVisit(root ref.CellKey, kinds EdgeKind, st *tarjanState) {
	var frames []*tarjanFrame

	push := func(n ref.CellKey) {
		st.index[n] = st.nextIndex
		st.lowlink[n] = st.nextIndex
		st.nextIndex++
		st.stack = append(st.stack, n)
		st.onStack[n] = true
		frames = append(frames, &tarjanFrame{node: n, successors: g.Successors(n, kinds)})
	}

	push(root)

	for len(frames) > 0 {
		top := frames[len(frames)-1]

		if top.childIdx < len(top.successors) {
			child := top.successors[top.childIdx]
			top.childIdx++

			if _, seen := st.index[child]; !seen {
				push(child)
				continue
			}
			if st.onStack[child] {
				if st.index[child] < st.lowlink[top.node] {
					st.lowlink[top.node] = st.index[child]
				}
			}
			continue
		}

		// All children processed; pop and propagate lowlink to parent.
		frames = frames[:len(frames)-1]
		if st.lowlink[top.node] == st.index[top.node] {
			var members []ref.CellKey
			for {
				n := st.stack[len(st.stack)-1]
				st.stack = st.stack[:len(st.stack)-1]
				st.onStack[n] = false
				members = append(members, n)
				if n == top.node {
					break
				}
			}
			st.components = append(st.components, scc{members: members})
		}
		if len(frames) > 0 {
			parent := frames[len(frames)-1]
			if st.lowlink[top.node] < st.lowlink[parent.node] {
				st.lowlink[parent.node] = st.lowlink[top.node]
			}
		}
	}
}

// TopologicalOrder returns every node the graph tracks (see HasNode),
// ordered by edges of the given kinds so that for any static edge a->b
// (a reads b), b's SCC appears no later than a's SCC. Nodes within a
// multi-member SCC (a cycle) are adjacent but have no further defined
// order among themselves.
func (g *Graph) TopologicalOrder(kinds EdgeKind) []ref.CellKey {
	g.refreshIfDirty(kinds)
	var out []ref.CellKey
	for _, c := range g.sccs {
		out = append(out, c.members...)
	}
	return out
}

// CyclicNodes returns every node belonging to an SCC that counts as a
// cycle (size > 1, or a self-loop).
func (g *Graph) CyclicNodes(kinds EdgeKind) map[ref.CellKey]bool {
	g.refreshIfDirty(kinds)
	out := map[ref.CellKey]bool{}
	for _, c := range g.sccs {
		if c.IsCycle(g, kinds) {
			for _, m := range c.members {
				out[m] = true
			}
		}
	}
	return out
}

func (g *Graph) refreshIfDirty(kinds EdgeKind) {
	if !g.dirty && g.sccs != nil && g.sccsKind == kinds {
		return
	}
	g.sccs = g.stronglyConnectedComponents(kinds)
	g.sccsKind = kinds
	g.dirty = false
}

// AncestorsOfSet returns the set of nodes reachable by following
// backward edges from any member of nodes, excluding the members
// themselves.
func (g *Graph) AncestorsOfSet(nodes []ref.CellKey, kinds EdgeKind) []ref.CellKey {
	seed := map[ref.CellKey]bool{}
	for _, n := range nodes {
		seed[n] = true
	}

	visited := map[ref.CellKey]bool{}
	var out []ref.CellKey
	var stack []ref.CellKey
	stack = append(stack, nodes...)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Predecessors(n, kinds) {
			if visited[p] {
				continue
			}
			visited[p] = true
			if !seed[p] {
				out = append(out, p)
			}
			stack = append(stack, p)
		}
	}
	sortKeys(out)
	return out
}


