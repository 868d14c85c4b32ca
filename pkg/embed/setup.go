package embed

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aidanproy/minorminer/pkg/errors"
	"github.com/aidanproy/minorminer/pkg/fastrng"
)

// params is the label-free slice of Options the engine consumes.
type params struct {
	maxNoImprovement int
	tries            int
	innerRounds      int
	patience         int
	maxFill          int
	threads          int
	maxBeta          float64
	seed             uint64
	timeout          time.Duration
	skipInit         bool
}

// engine holds all state for one embedding call. Nothing escapes the call;
// the returned mapping is built from a snapshot at the end.
type engine struct {
	p   params
	log *log.Logger

	src, tgt   *graph
	numUserSrc int // sources at or past this index are pin auxiliaries
	numUserTgt int

	fixed    []bool   // per source: chain is immutable
	pinned   []bool   // per source: pin auxiliary, stripped from output
	blocked  []bool   // per target: reserved by some fixed chain
	restrict [][]bool // per source: nil, or permitted-target mask

	cs  *chainStore
	rng *fastrng.RNG

	beta      float64
	weightBuf []float64
	results   []*distResult
	pool      *pool
	local     *scratch

	order    []int // reusable visit-order buffer
	ctx      context.Context
	deadline time.Time

	best    [][]int // per-source membership snapshot; nil until first capture
	bestKey qualityKey
}

// newEngine translates the labeled inputs into dense-id state and applies
// the setup phase: suspension pins, initial chains, fixed chains, restrict
// masks. All usage errors are raised here, before any heuristic work.
func newEngine[L comparable](src, tgt []Edge[L], opts *Options[L]) (*engine, *labelTable[L], *labelTable[L], error) {
	srcGraph, srcTable := buildGraph(src)
	tgtGraph, tgtTable := buildGraph(tgt)

	e := &engine{
		p: params{
			maxNoImprovement: opts.MaxNoImprovement,
			tries:            opts.Tries,
			innerRounds:      opts.InnerRounds,
			patience:         opts.ChainlengthPatience,
			maxFill:          opts.MaxFill,
			threads:          opts.Threads,
			maxBeta:          opts.MaxBeta,
			seed:             opts.RandomSeed,
			timeout:          opts.Timeout,
			skipInit:         opts.SkipInitialization,
		},
		log:        opts.Logger,
		src:        srcGraph,
		tgt:        tgtGraph,
		numUserSrc: srcTable.len(),
		numUserTgt: tgtTable.len(),
		fixed:      make([]bool, srcTable.len()),
		pinned:     make([]bool, srcTable.len()),
		restrict:   make([][]bool, srcTable.len()),
		cs:         newChainStore(srcTable.len(), tgtTable.len()),
		rng:        fastrng.New(opts.RandomSeed),
	}

	if err := applyPins(e, srcTable, tgtTable, opts.SuspendChains); err != nil {
		return nil, nil, nil, err
	}
	if err := applyInitialChains(e, srcTable, tgtTable, opts.InitialChains); err != nil {
		return nil, nil, nil, err
	}
	if err := applyFixedChains(e, srcTable, tgtTable, opts.FixedChains); err != nil {
		return nil, nil, nil, err
	}
	if err := applyRestrictChains(e, srcTable, tgtTable, opts.RestrictChains); err != nil {
		return nil, nil, nil, err
	}
	e.markBlocked()

	n := e.tgt.order()
	e.weightBuf = make([]float64, n)
	e.local = newScratch(n)
	maxDeg := 0
	for v := 0; v < e.src.order(); v++ {
		maxDeg = max(maxDeg, e.src.degree(v))
	}
	for len(e.results) < maxDeg {
		e.results = append(e.results, newDistResult(n))
	}
	if e.p.threads > 1 {
		e.pool = newPool(e.p.threads, n)
	}
	return e, srcTable, tgtTable, nil
}

// release shuts down the worker pool, if any.
func (e *engine) release() {
	if e.pool != nil {
		e.pool.close()
		e.pool = nil
	}
}

// sourceIDs resolves the keys of a per-source option map to dense ids,
// sorted ascending so that map iteration order never leaks into the search
// trajectory.
func sourceIDs[L comparable, V any](table *labelTable[L], m map[L]V, what string) ([]int, error) {
	ids := make([]int, 0, len(m))
	for l := range m {
		id, ok := table.lookup(l)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "%s references source node %v not present in the graph", what, l)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// applyPins materializes the suspend_chains constraint: for each blob, a
// fresh auxiliary source z with a fixed single-node chain on a fresh
// auxiliary target z', a source edge (v, z), and target edges from z' to
// every blob member. Any chain for v must then touch each blob to cover the
// (v, z) edge.
func applyPins[L comparable](e *engine, srcTable, tgtTable *labelTable[L], suspend map[L][][]L) error {
	ids, err := sourceIDs(srcTable, suspend, "suspend_chains")
	if err != nil {
		return err
	}
	for _, v := range ids {
		blobs := suspend[srcTable.label(v)]
		for _, blob := range blobs {
			if len(blob) == 0 {
				return errors.New(errors.ErrCodeInvalidChain, "suspend_chains[%v]: blob must be nonempty", srcTable.label(v))
			}
			members, err := translateChain(tgtTable, blob, "suspend_chains")
			if err != nil {
				return err
			}
			z := e.src.grow()
			zp := e.tgt.grow()
			e.src.addEdge(v, z)
			for _, q := range members {
				e.tgt.addEdge(zp, q)
			}
			e.cs.growSource()
			e.cs.growTarget()
			e.fixed = append(e.fixed, true)
			e.pinned = append(e.pinned, true)
			e.restrict = append(e.restrict, nil)
			if err := e.cs.installSet(z, []int{zp}, e.tgt, "suspend_chains"); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyInitialChains installs user seed chains verbatim, accepting whatever
// overlaps result. Each chain must be nonempty and connected.
func applyInitialChains[L comparable](e *engine, srcTable, tgtTable *labelTable[L], initial map[L][]L) error {
	ids, err := sourceIDs(srcTable, initial, "initial_chains")
	if err != nil {
		return err
	}
	for _, v := range ids {
		members, err := translateChain(tgtTable, initial[srcTable.label(v)], "initial_chains")
		if err != nil {
			return err
		}
		if err := e.cs.installSet(v, members, e.tgt, "initial_chains"); err != nil {
			return err
		}
	}
	return nil
}

// applyFixedChains installs immutable chains on top of any initial chains.
// Two fixed chains sharing a target node is a usage error.
func applyFixedChains[L comparable](e *engine, srcTable, tgtTable *labelTable[L], fixedChains map[L][]L) error {
	ids, err := sourceIDs(srcTable, fixedChains, "fixed_chains")
	if err != nil {
		return err
	}
	taken := make(map[int]int) // target -> fixed source claiming it
	for _, v := range ids {
		members, err := translateChain(tgtTable, fixedChains[srcTable.label(v)], "fixed_chains")
		if err != nil {
			return err
		}
		for _, t := range members {
			if w, clash := taken[t]; clash {
				return errors.New(errors.ErrCodeFixedOverlap,
					"fixed chains for %v and %v both contain target node %v",
					srcTable.label(w), srcTable.label(v), tgtTable.label(t))
			}
			taken[t] = v
		}
		if err := e.cs.installSet(v, members, e.tgt, "fixed_chains"); err != nil {
			return err
		}
		e.fixed[v] = true
	}
	return nil
}

// applyRestrictChains builds the per-source permitted-target masks. An empty
// restrict set deactivates the constraint for that source.
func applyRestrictChains[L comparable](e *engine, srcTable, tgtTable *labelTable[L], restrictChains map[L][]L) error {
	ids, err := sourceIDs(srcTable, restrictChains, "restrict_chains")
	if err != nil {
		return err
	}
	for _, v := range ids {
		labels := restrictChains[srcTable.label(v)]
		if len(labels) == 0 {
			continue
		}
		members, err := translateChain(tgtTable, labels, "restrict_chains")
		if err != nil {
			return err
		}
		mask := make([]bool, e.tgt.order())
		for _, t := range members {
			mask[t] = true
		}
		e.restrict[v] = mask
	}
	return nil
}

// markBlocked records the target nodes occupied by fixed chains (pins
// included). They are off limits to every other chain for the whole run.
func (e *engine) markBlocked() {
	e.blocked = make([]bool, e.tgt.order())
	for v := range e.cs.chains {
		if !e.fixed[v] {
			continue
		}
		for _, t := range e.cs.chains[v].members {
			e.blocked[t] = true
		}
	}
}
