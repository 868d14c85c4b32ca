package embed

import (
	"math"

	"github.com/aidanproy/minorminer/pkg/pairqueue"
)

// priority orders the search frontier by accumulated weight, then by hop
// count from the seed set. The queue itself breaks remaining ties by vertex
// id, so pops are fully deterministic.
type priority struct {
	dist float64
	hops int32
}

// Less implements pairqueue.Value.
func (p priority) Less(q priority) bool {
	if p.dist != q.dist {
		return p.dist < q.dist
	}
	return p.hops < q.hops
}

var maxPriority = priority{dist: math.Inf(1), hops: math.MaxInt32}

// distResult is one neighbor-distance computation: for every target node,
// the minimum weighted distance from the seed chain and the Dijkstra parent
// for path reconstruction. parent[t] == -1 marks seeds (dist 0) and
// unreachable nodes (dist +Inf). Buffers are sized |T| and reused across
// placements.
type distResult struct {
	dist   []float64
	parent []int32
}

func newDistResult(n int) *distResult {
	return &distResult{
		dist:   make([]float64, n),
		parent: make([]int32, n),
	}
}

// scratch is the private search state of one worker: a pairing heap sized
// |T|, allocated once at setup and reused for every Dijkstra the worker
// runs.
type scratch struct {
	heap *pairqueue.FastQueue[priority]
}

func newScratch(n int) *scratch {
	return &scratch{heap: pairqueue.NewFast(n, maxPriority)}
}

// dijkstra runs a multi-source weighted shortest-path search over tgt from
// the seed set, writing distances and parents into res.
//
// w[t] is the cost of entering t (beta^u(t) - 1, or +Inf for nodes that are
// off limits: reserved by a fixed chain or at the max_fill cap). When
// restrict is non-nil, nodes with restrict[t] == false additionally cost
// penalty, which is chosen large enough that any all-permitted path beats
// any violating one while violations stay finite.
func dijkstra(tgt *graph, w []float64, restrict []bool, penalty float64, seeds []int, sc *scratch, res *distResult) {
	n := tgt.order()
	for i := 0; i < n; i++ {
		res.dist[i] = math.Inf(1)
		res.parent[i] = -1
	}
	sc.heap.Reset()
	for _, t := range seeds {
		sc.heap.SetValue(t, priority{dist: 0, hops: 0})
	}
	for !sc.heap.Empty() {
		t, val, _ := sc.heap.PopMin()
		if math.IsInf(val.dist, 1) {
			break
		}
		res.dist[t] = val.dist
		for _, nb := range tgt.neighbors(t) {
			if !math.IsInf(res.dist[nb], 1) {
				continue // settled
			}
			wt := w[nb]
			if math.IsInf(wt, 1) {
				continue
			}
			if restrict != nil && !restrict[nb] {
				wt += penalty
			}
			cand := priority{dist: val.dist + wt, hops: val.hops + 1}
			if sc.heap.CheckDecreaseValue(nb, cand) {
				res.parent[nb] = int32(t)
			}
		}
	}
}

// walkPath reconstructs the path from t back toward the seed set: the
// returned sequence starts at t and ends at the last node before the seed,
// excluding the seed itself. Returns nil when t is unreachable; returns
// []int{t} truncated to empty when t itself is a seed.
func walkPath(res *distResult, t int) []int {
	if math.IsInf(res.dist[t], 1) {
		return nil
	}
	var path []int
	cur := t
	for {
		if res.parent[cur] == -1 {
			// cur is a seed: it already belongs to the neighbor's chain.
			return path
		}
		path = append(path, cur)
		cur = int(res.parent[cur])
	}
}
