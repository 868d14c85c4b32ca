package embed

import "github.com/aidanproy/minorminer/pkg/errors"

// Verify checks a mapping against the embedding invariants: every chain is
// nonempty, references only target nodes that occur in an edge of tgt, and
// is connected in tgt; chains are pairwise disjoint; and every source edge
// whose endpoints both have chains is covered by a target edge. Sources
// without a chain are reported as missing.
//
// A nil return means the mapping is a proper embedding of src into tgt.
func Verify[L comparable](src, tgt []Edge[L], mapping map[L][]L) error {
	srcGraph, srcTable := buildGraph(src)
	tgtGraph, tgtTable := buildGraph(tgt)

	chains := make([][]int, srcTable.len())
	owner := make(map[int]int) // target id -> source id
	for l, chain := range mapping {
		v, ok := srcTable.lookup(l)
		if !ok {
			return errors.New(errors.ErrCodeUnknownNode, "mapping references source node %v not present in the graph", l)
		}
		if len(chain) == 0 {
			return errors.New(errors.ErrCodeInvalidChain, "chain for %v is empty", l)
		}
		members, err := translateChain(tgtTable, chain, "mapping")
		if err != nil {
			return err
		}
		for _, t := range members {
			if w, taken := owner[t]; taken {
				return errors.New(errors.ErrCodeInvalidChain,
					"chains for %v and %v overlap on target node %v",
					srcTable.label(w), l, tgtTable.label(t))
			}
			owner[t] = v
		}
		chains[v] = members
	}

	for v := 0; v < srcTable.len(); v++ {
		if chains[v] == nil {
			return errors.New(errors.ErrCodeInvalidChain, "no chain for source node %v", srcTable.label(v))
		}
		if !connectedInGraph(tgtGraph, chains[v]) {
			return errors.New(errors.ErrCodeInvalidChain,
				"chain for %v is not connected in the target graph", srcTable.label(v))
		}
	}

	for u := 0; u < srcGraph.order(); u++ {
		for _, v := range srcGraph.neighbors(u) {
			if v < u {
				continue
			}
			if !edgeCovered(tgtGraph, chains[u], chains[v]) {
				return errors.New(errors.ErrCodeInvalidChain,
					"source edge (%v, %v) is not covered by any target edge",
					srcTable.label(u), srcTable.label(v))
			}
		}
	}
	return nil
}

// connectedInGraph reports whether the member set induces a connected
// subgraph of g.
func connectedInGraph(g *graph, members []int) bool {
	if len(members) == 0 {
		return false
	}
	inSet := make(map[int]bool, len(members))
	for _, t := range members {
		inSet[t] = true
	}
	seen := map[int]bool{members[0]: true}
	stack := []int{members[0]}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range g.neighbors(t) {
			if inSet[nb] && !seen[nb] {
				seen[nb] = true
				stack = append(stack, nb)
			}
		}
	}
	return len(seen) == len(inSet)
}
