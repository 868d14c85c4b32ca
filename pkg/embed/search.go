package embed

import (
	"math"
	"time"
)

// Beta schedule. Beta starts small so early passes can route freely through
// overlapped nodes, and grows geometrically between passes until overlaps
// are effectively forbidden. A restart rewinds it.
const (
	initialBeta = 2.0
	betaGrowth  = 1.25
	reduceBeta  = 64.0
)

// cancelled reports whether the call should stop: context fired or the
// wall-clock budget ran out. Polled between passes and between the
// neighbor-distance phase and root selection of each placement.
func (e *engine) cancelled() bool {
	if e.ctx != nil && e.ctx.Err() != nil {
		return true
	}
	return time.Now().After(e.deadline)
}

// clampBeta applies the max_beta ceiling.
func (e *engine) clampBeta(b float64) float64 {
	return math.Min(b, e.p.maxBeta)
}

// run drives the three phases: initialization, embedding search, and
// chainlength reduction, with up to tries restarts. The best embedding seen
// at any pass boundary is kept as a snapshot; run leaves it in e.best.
func (e *engine) run() {
	start := time.Now()
	e.deadline = start.Add(e.p.timeout)

	for try := 0; try < e.p.tries; try++ {
		if e.cancelled() {
			break
		}
		e.beta = e.clampBeta(initialBeta)
		if try > 0 {
			e.log.Debug("restarting", "try", try+1)
			e.resetChains()
		}
		if !e.p.skipInit || try > 0 {
			e.initializePass()
		}
		e.captureIfBetter()

		if e.searchPhase() {
			e.log.Info("found proper embedding",
				"try", try+1, "elapsed", time.Since(start).Round(time.Millisecond))
			e.reducePhase()
			return
		}
	}
	e.log.Info("search exhausted",
		"elapsed", time.Since(start).Round(time.Millisecond))
}

// resetChains tears every non-fixed chain for a restart.
func (e *engine) resetChains() {
	for v := range e.cs.chains {
		if !e.fixed[v] {
			e.cs.tear(v)
		}
	}
}

// visitOrder refills e.order with every non-fixed source vertex and shuffles
// it with the engine RNG.
func (e *engine) visitOrder() []int {
	e.order = e.order[:0]
	for v := 0; v < e.src.order(); v++ {
		if !e.fixed[v] {
			e.order = append(e.order, v)
		}
	}
	e.rng.Shuffle(e.order)
	return e.order
}

// initializePass places every source vertex whose chain is empty, in
// randomized order. Afterwards an embedding exists, possibly overlapped.
func (e *engine) initializePass() {
	placed := 0
	for _, v := range e.visitOrder() {
		if !e.cs.chain(v).empty() {
			continue
		}
		if !e.placeChain(v) {
			return
		}
		placed++
	}
	e.log.Debug("initialized", "placed", placed)
}

// improvePass tears and replaces every non-fixed chain once, in randomized
// order. Returns false when interrupted by cancellation.
func (e *engine) improvePass() bool {
	for _, v := range e.visitOrder() {
		e.cs.tear(v)
		if !e.placeChain(v) {
			return false
		}
	}
	return true
}

// searchPhase repeats improvement passes until the embedding is proper or a
// stop condition fires: patience exhausted, inner_rounds exhausted, timeout,
// or cancellation. Beta grows between passes so overlaps become
// progressively more costly. Reports whether a proper embedding exists.
func (e *engine) searchPhase() bool {
	stall := 0
	for round := 0; round < e.p.innerRounds; round++ {
		key := e.keyOf(e.currentChains())
		if key.state == stateProper {
			return true
		}
		if e.cancelled() || stall >= e.p.maxNoImprovement {
			return false
		}
		if !e.improvePass() {
			return false
		}
		if e.captureIfBetter() {
			stall = 0
		} else {
			stall++
		}
		e.beta = e.clampBeta(e.beta * betaGrowth)
		e.log.Debug("pass complete",
			"round", round+1, "beta", e.beta, "stall", stall)
	}
	return e.keyOf(e.currentChains()).state == stateProper
}

// reducePhase switches the objective to minimizing chain lengths: each pass
// tears and replaces every non-fixed chain, then prunes unneeded leaves. A
// pass counts as an improvement only when the descending chain-length vector
// strictly decreases; after chainlength_patience stalled passes the phase
// ends. The best snapshot is never replaced by a worse embedding.
func (e *engine) reducePhase() {
	e.beta = e.clampBeta(reduceBeta)

	// Shrink what the search phase left behind before any chain is torn:
	// pruning alone often removes path detours and never makes things worse.
	for v := range e.cs.chains {
		if !e.fixed[v] {
			e.pruneChain(v)
		}
	}
	e.captureIfBetter()

	stall := 0
	for stall < e.p.patience {
		if e.cancelled() {
			return
		}
		for _, v := range e.visitOrder() {
			e.cs.tear(v)
			if !e.placeChain(v) {
				return
			}
			e.pruneChain(v)
		}
		if e.captureIfBetter() {
			stall = 0
		} else {
			stall++
		}
		e.beta = e.clampBeta(e.beta * betaGrowth)
		e.log.Debug("reduction pass complete", "stall", stall)
	}
}

// pruneChain drops chain-tree leaves of chain(v) that no covered source edge
// depends on, repeating until stable. Fixed chains are never pruned.
func (e *engine) pruneChain(v int) {
	if e.fixed[v] {
		return
	}
	for {
		c := e.cs.chain(v)
		if c.size() <= 1 {
			return
		}
		removed := false
		for _, t := range c.leaves() {
			if e.leafRequired(v, t) {
				continue
			}
			e.cs.removeLeaf(v, t)
			removed = true
		}
		if !removed {
			return
		}
	}
}

// leafRequired reports whether dropping leaf t from chain(v) would uncover a
// currently-covered source edge at v.
func (e *engine) leafRequired(v, t int) bool {
	c := e.cs.chain(v)
	rest := make([]int, 0, c.size()-1)
	for _, m := range c.members {
		if m != t {
			rest = append(rest, m)
		}
	}
	for _, u := range e.src.neighbors(v) {
		uc := e.cs.chain(u)
		if uc.empty() {
			continue
		}
		if edgeCovered(e.tgt, c.members, uc.members) && !edgeCovered(e.tgt, rest, uc.members) {
			return true
		}
	}
	return false
}

// captureIfBetter snapshots the current chains when their quality key beats
// the best seen so far. Reports whether a snapshot was taken.
func (e *engine) captureIfBetter() bool {
	key := e.keyOf(e.currentChains())
	if e.best != nil && !key.less(e.bestKey) {
		return false
	}
	if e.best == nil {
		e.best = make([][]int, len(e.cs.chains))
	}
	for v := range e.cs.chains {
		e.best[v] = append(e.best[v][:0], e.cs.chains[v].members...)
	}
	e.bestKey = key
	return true
}
