package embed

import "github.com/aidanproy/minorminer/pkg/errors"

// Edge is one undirected edge of an input graph, given as a pair of labels.
// Labels are arbitrary comparable tokens; the engine translates them to dense
// integer ids internally.
type Edge[L comparable] struct {
	U, V L
}

// labelTable is an insertion-ordered bidirectional mapping between user
// labels and dense integer ids. Ids are assigned in first-seen order, so the
// translation is deterministic for a fixed edge list.
type labelTable[L comparable] struct {
	ids    map[L]int
	labels []L
}

func newLabelTable[L comparable]() *labelTable[L] {
	return &labelTable[L]{ids: make(map[L]int)}
}

// intern returns the id for l, assigning the next free id on first sight.
func (t *labelTable[L]) intern(l L) int {
	if id, ok := t.ids[l]; ok {
		return id
	}
	id := len(t.labels)
	t.ids[l] = id
	t.labels = append(t.labels, l)
	return id
}

// lookup returns the id for l without inserting.
func (t *labelTable[L]) lookup(l L) (int, bool) {
	id, ok := t.ids[l]
	return id, ok
}

// label returns the label for a user id. Ids at or past len are auxiliaries
// created by the pin construction and have no label.
func (t *labelTable[L]) label(id int) L { return t.labels[id] }

func (t *labelTable[L]) len() int { return len(t.labels) }

// buildGraph interns every label occurring in edges and returns the dense-id
// graph plus the label table. Self-loops are dropped; duplicate edges are
// collapsed. Isolated vertices cannot be expressed in an edge list, so every
// vertex of the result has degree >= 1, except one whose label occurs only
// in self-loops (interned with degree 0) or one added later via grow.
func buildGraph[L comparable](edges []Edge[L]) (*graph, *labelTable[L]) {
	table := newLabelTable[L]()
	type pair struct{ a, b int }
	seen := make(map[pair]struct{}, len(edges))
	var dense []pair
	for _, e := range edges {
		u := table.intern(e.U)
		v := table.intern(e.V)
		if u == v {
			continue
		}
		p := pair{u, v}
		if v < u {
			p = pair{v, u}
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		dense = append(dense, p)
	}
	g := newGraph(table.len())
	for _, p := range dense {
		g.addEdge(p.a, p.b)
	}
	return g, table
}

// translateChain maps a label chain onto dense target ids, rejecting labels
// that never occur in an edge of the target graph.
func translateChain[L comparable](table *labelTable[L], chain []L, what string) ([]int, error) {
	out := make([]int, 0, len(chain))
	for _, l := range chain {
		id, ok := table.lookup(l)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "%s references node %v not present in the graph", what, l)
		}
		out = append(out, id)
	}
	return out, nil
}
