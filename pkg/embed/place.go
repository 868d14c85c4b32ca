package embed

import "math"

// unreachableScore stands in for an infinite neighbor distance when scoring
// candidate roots, so that a root reaching more neighbors always beats one
// reaching fewer while the sums stay comparable.
const unreachableScore = math.MaxFloat64 / 4096

// computeWeights snapshots the per-target entering weights for a placement
// of source vertex v: beta^u - 1 for the current overlap count u, +Inf for
// nodes reserved by fixed chains or at the max_fill cap. chain(v) has been
// torn, so its former members carry no residual weight. The snapshot is
// read-only during the parallel neighbor-distance phase.
func (e *engine) computeWeights(v int) {
	for t := range e.weightBuf {
		switch u := e.cs.use[t]; {
		case e.blocked[t], u >= e.p.maxFill:
			e.weightBuf[t] = math.Inf(1)
		case u == 0:
			e.weightBuf[t] = 0
		default:
			e.weightBuf[t] = math.Pow(e.beta, float64(u)) - 1
		}
	}
}

// restrictPenalty is the additive cost of entering a target node outside
// chain(v)'s restrict set: larger than |T| times the maximum attainable node
// weight, so an all-permitted path always wins, yet finite, so violating the
// restriction stays preferable to failing.
func (e *engine) restrictPenalty() float64 {
	maxWeight := math.Pow(e.cappedBeta(), float64(e.p.maxFill)) - 1
	if maxWeight < 1 {
		maxWeight = 1
	}
	return float64(e.tgt.order()+1) * maxWeight
}

// cappedBeta bounds beta for penalty sizing; maxBeta may be +Inf.
func (e *engine) cappedBeta() float64 {
	if math.IsInf(e.p.maxBeta, 1) {
		return e.beta
	}
	return e.p.maxBeta
}

// embeddedNeighbors returns v's source neighbors whose chains are nonempty,
// in adjacency order (deterministic).
func (e *engine) embeddedNeighbors(v int) []int {
	var out []int
	for _, u := range e.src.neighbors(v) {
		if !e.cs.chain(u).empty() {
			out = append(out, u)
		}
	}
	return out
}

// placeChain computes a fresh chain for source vertex v. Precondition:
// chain(v) has been torn; every other chain stays in place. Returns false
// when the placement was abandoned because of cancellation.
func (e *engine) placeChain(v int) bool {
	nbrs := e.embeddedNeighbors(v)
	if len(nbrs) == 0 {
		e.placeRoot(v)
		return true
	}

	e.computeWeights(v)
	results := e.neighborDistances(v, nbrs)

	// Cancellation point between the distance phase and root selection.
	if e.cancelled() {
		return false
	}

	root, ok := e.selectRoot(v, results)
	if !ok {
		e.placeRoot(v)
		return true
	}

	paths := make([][]int, 0, len(nbrs))
	for _, res := range results {
		if path := walkPath(res, root); path != nil {
			paths = append(paths, path)
		}
	}
	e.cs.install(v, root, paths)
	return true
}

// neighborDistances runs one multi-source Dijkstra per embedded neighbor of
// v, from that neighbor's chain to all of T. With two or more neighbors and
// a worker pool, the runs are dispatched in parallel; each task reads the
// shared weight snapshot and writes only its own result buffers.
func (e *engine) neighborDistances(v int, nbrs []int) []*distResult {
	for len(e.results) < len(nbrs) {
		e.results = append(e.results, newDistResult(e.tgt.order()))
	}
	results := e.results[:len(nbrs)]

	penalty := 0.0
	restrict := e.restrict[v]
	if restrict != nil {
		penalty = e.restrictPenalty()
	}

	if e.pool == nil || len(nbrs) < 2 {
		for i, u := range nbrs {
			dijkstra(e.tgt, e.weightBuf, restrict, penalty, e.cs.chain(u).members, e.local, results[i])
		}
		return results
	}
	for i, u := range nbrs {
		seeds := e.cs.chain(u).members
		res := results[i]
		e.pool.submit(func(sc *scratch) {
			dijkstra(e.tgt, e.weightBuf, restrict, penalty, seeds, sc, res)
		})
	}
	e.pool.join()
	return results
}

// selectRoot scores every candidate root as the sum of its neighbor
// distances plus the root's own entering weight (substituting a large finite
// cost for unreachable neighbors) and picks a minimizer. Without the root
// weight term, any node inside a neighbor chain would score zero forever and
// overlaps could never be squeezed out. Candidates with equal score are
// gathered in ascending id order and the RNG picks among them. Returns false
// when no usable root exists at all.
func (e *engine) selectRoot(v int, results []*distResult) (int, bool) {
	best := math.Inf(1)
	var cands []int
	for t := 0; t < e.tgt.order(); t++ {
		if math.IsInf(e.weightBuf[t], 1) {
			continue
		}
		score := e.weightBuf[t]
		reached := false
		for _, res := range results {
			if d := res.dist[t]; math.IsInf(d, 1) {
				score += unreachableScore
			} else {
				score += d
				reached = true
			}
		}
		if !reached {
			continue
		}
		if score < best {
			best = score
			cands = cands[:0]
			cands = append(cands, t)
		} else if score == best {
			cands = append(cands, t)
		}
	}
	if len(cands) == 0 {
		return 0, false
	}
	return cands[e.rng.Intn(len(cands))], true
}

// placeRoot installs a single-node chain for a source vertex with no
// embedded neighbors (cold start or isolated vertex). The root is drawn
// uniformly from the permitted set, preferring unused nodes, then any
// non-reserved node inside the restrict set, then any non-reserved node.
func (e *engine) placeRoot(v int) {
	pick := func(allow func(t int) bool) (int, bool) {
		var cands []int
		for t := 0; t < e.tgt.order(); t++ {
			if e.blocked[t] || e.cs.use[t] >= e.p.maxFill {
				continue
			}
			if allow(t) {
				cands = append(cands, t)
			}
		}
		if len(cands) == 0 {
			return 0, false
		}
		return cands[e.rng.Intn(len(cands))], true
	}

	restrict := e.restrict[v]
	inRestrict := func(t int) bool { return restrict == nil || restrict[t] }

	root, ok := pick(func(t int) bool { return e.cs.use[t] == 0 && inRestrict(t) })
	if !ok {
		root, ok = pick(inRestrict)
	}
	if !ok {
		root, ok = pick(func(int) bool { return true })
	}
	if !ok {
		// Every target node is reserved or at the fill cap; leave the chain
		// empty and let the outer loop account for it.
		return
	}
	e.cs.install(v, root, nil)
}
