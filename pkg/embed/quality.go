package embed

import (
	"slices"
	"sort"
)

// Embedding states, ordered from best to worst (smaller is better).
const (
	stateProper      = 0
	stateOverlapping = 1
	stateEmpty       = 2
)

// qualityKey is the ordering key for embeddings: lexicographically smaller
// is better. Histograms are (value, count) pairs sorted by value descending
// and flattened, so "one chain of length 7" loses to "three chains of
// length 5" regardless of totals.
type qualityKey struct {
	state   int
	overlap []int
	length  []int
}

func (k qualityKey) less(o qualityKey) bool {
	if k.state != o.state {
		return k.state < o.state
	}
	if c := slices.Compare(k.overlap, o.overlap); c != 0 {
		return c < 0
	}
	return slices.Compare(k.length, o.length) < 0
}

// flattenHist turns a value -> count histogram into the flattened
// descending-by-value pair list the quality key compares.
func flattenHist(hist map[int]int) []int {
	values := make([]int, 0, len(hist))
	for v := range hist {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	out := make([]int, 0, 2*len(values))
	for _, v := range values {
		out = append(out, v, hist[v])
	}
	return out
}

// keyOf computes the quality key of a membership matrix (one member list per
// source vertex, pins included). Use counts are recomputed from the matrix,
// so the key is valid for snapshots as well as the live chain store.
func (e *engine) keyOf(chains [][]int) qualityKey {
	use := make([]int, e.tgt.order())
	lengthHist := make(map[int]int)
	state := stateProper
	for _, members := range chains {
		if len(members) == 0 {
			state = stateEmpty
		} else {
			lengthHist[len(members)]++
		}
		for _, t := range members {
			use[t]++
		}
	}
	overlapHist := make(map[int]int)
	for _, u := range use {
		if u > 1 {
			overlapHist[u]++
		}
	}
	if state == stateProper && (len(overlapHist) > 0 || !e.allEdgesCovered(chains)) {
		state = stateOverlapping
	}
	return qualityKey{
		state:   state,
		overlap: flattenHist(overlapHist),
		length:  flattenHist(lengthHist),
	}
}

// allEdgesCovered reports whether every source edge (u, v) is witnessed by a
// target edge with one endpoint in chain(u) and the other in chain(v).
func (e *engine) allEdgesCovered(chains [][]int) bool {
	for u := 0; u < e.src.order(); u++ {
		for _, v := range e.src.neighbors(u) {
			if v < u {
				continue
			}
			if !edgeCovered(e.tgt, chains[u], chains[v]) {
				return false
			}
		}
	}
	return true
}

// edgeCovered reports whether some target edge joins the two member sets.
func edgeCovered(tgt *graph, a, b []int) bool {
	inB := make(map[int]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	for _, p := range a {
		for _, q := range tgt.neighbors(p) {
			if inB[q] {
				return true
			}
		}
	}
	return false
}

// currentChains returns a view of the live membership matrix.
func (e *engine) currentChains() [][]int {
	out := make([][]int, len(e.cs.chains))
	for v := range e.cs.chains {
		out[v] = e.cs.chains[v].members
	}
	return out
}

// Quality summarizes an embedding for callers: the CLI result table, the
// API response, and the ranking in [FindEmbeddings].
type Quality struct {
	// Proper is true when chains are pairwise disjoint and every source
	// edge is covered by a target edge.
	Proper bool `json:"proper"`

	// Chains is the number of nonempty chains.
	Chains int `json:"chains"`

	// MaxChainLength is the longest chain's length.
	MaxChainLength int `json:"max_chain_length"`

	// TotalChainLength is the summed length of all chains.
	TotalChainLength int `json:"total_chain_length"`

	// ChainLengthHistogram maps chain length to the number of chains of
	// that length.
	ChainLengthHistogram map[int]int `json:"chain_length_histogram"`

	// Overlaps is the number of target nodes shared by two or more chains.
	Overlaps int `json:"overlaps"`
}

// Evaluate computes the quality report of a mapping against its source and
// target edge lists. Unknown labels in the mapping count as uncovered; use
// [Verify] for a full invariant check with diagnostics.
func Evaluate[L comparable](src, tgt []Edge[L], mapping map[L][]L) Quality {
	q := Quality{ChainLengthHistogram: make(map[int]int)}

	use := make(map[L]int)
	for _, chain := range mapping {
		if len(chain) == 0 {
			continue
		}
		q.Chains++
		q.TotalChainLength += len(chain)
		q.ChainLengthHistogram[len(chain)]++
		if len(chain) > q.MaxChainLength {
			q.MaxChainLength = len(chain)
		}
		for _, t := range chain {
			use[t]++
		}
	}
	for _, u := range use {
		if u > 1 {
			q.Overlaps++
		}
	}
	q.Proper = q.Overlaps == 0 && q.Chains > 0 && Verify(src, tgt, mapping) == nil
	return q
}
