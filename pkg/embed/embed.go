// Package embed implements a heuristic minor-embedding engine: given a
// source graph S and a target graph T, it assigns each source vertex a
// chain, a nonempty connected set of target nodes, such that chains are
// disjoint and every source edge is witnessed by a target edge between the
// two chains.
//
// The heuristic is a tear-and-rebuild search. Each placement tears one
// chain, runs a multi-source weighted Dijkstra from every embedded
// neighbor's chain, and regrows the chain as a union of cheapest paths to a
// common root. Target nodes shared by several chains cost beta^overlap - 1,
// with beta growing between passes, so the search first finds an overlapped
// embedding and then squeezes the overlaps out; once the embedding is
// proper, the same machinery minimizes chain lengths.
//
// # Usage
//
//	src := []embed.Edge[string]{{"a", "b"}, {"b", "c"}, {"c", "a"}}
//	tgt := []embed.Edge[string]{...}
//	mapping, ok, err := embed.FindEmbedding(ctx, src, tgt, &embed.Options[string]{RandomSeed: 42})
//
// With Threads == 1 and a fixed RandomSeed, runs are fully deterministic.
package embed

import (
	"context"
	"sort"
)

// FindEmbedding searches for a minor embedding of src into tgt. Both graphs
// are given as edge lists over arbitrary comparable labels.
//
// The returned mapping assigns each source label the chain found for it, as
// an ordered list of target labels; fixed chains appear verbatim and
// suspension-pin auxiliaries are stripped. The boolean reports whether the
// mapping is a proper (overlap-free, edge-covering) embedding; when the
// search is exhausted, times out, or ctx is cancelled, the best embedding
// seen so far is returned, and the flag is true only if that embedding is
// proper.
//
// The error is non-nil only for usage errors (bad options, unknown labels,
// overlapping fixed chains), raised before any heuristic work. An empty
// source graph yields an empty mapping.
func FindEmbedding[L comparable](ctx context.Context, src, tgt []Edge[L], opts *Options[L]) (map[L][]L, bool, error) {
	if opts == nil {
		opts = &Options[L]{}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if len(src) == 0 {
		return map[L][]L{}, false, nil
	}

	e, srcTable, tgtTable, err := newEngine(src, tgt, opts)
	if err != nil {
		return nil, false, err
	}
	defer e.release()
	e.ctx = ctx

	e.run()
	e.captureIfBetter()

	return finishMapping(e, srcTable, tgtTable)
}

// finishMapping converts the engine's best snapshot back to labels,
// stripping pin auxiliaries. Per the documented failure mode, the mapping is
// empty when no non-fixed source vertex received a chain.
func finishMapping[L comparable](e *engine, srcTable, tgtTable *labelTable[L]) (map[L][]L, bool, error) {
	mapping := make(map[L][]L)
	placed := false
	for v := 0; v < e.numUserSrc; v++ {
		members := e.best[v]
		if len(members) == 0 {
			continue
		}
		if !e.fixed[v] {
			placed = true
		}
		chain := make([]L, len(members))
		for i, t := range members {
			chain[i] = tgtTable.label(t)
		}
		mapping[srcTable.label(v)] = chain
	}
	anyNonFixed := false
	for v := 0; v < e.numUserSrc; v++ {
		if !e.fixed[v] {
			anyNonFixed = true
		}
	}
	if anyNonFixed && !placed {
		return map[L][]L{}, false, nil
	}
	return mapping, e.bestKey.state == stateProper, nil
}

// FindEmbeddings runs the search count times with seeds derived from
// opts.RandomSeed and returns the resulting mappings ranked best first (by
// properness, then maximum chain length, then total chain length). It is the
// embedding-collection facade: callers that want options pick the front of
// the slice, or rank further with [Evaluate].
func FindEmbeddings[L comparable](ctx context.Context, src, tgt []Edge[L], opts *Options[L], count int) ([]map[L][]L, error) {
	if opts == nil {
		opts = &Options[L]{}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	type ranked struct {
		mapping map[L][]L
		q       Quality
	}
	var all []ranked
	for i := 0; i < count; i++ {
		run := *opts
		run.RandomSeed = opts.RandomSeed + uint64(i)*0x9E3779B97F4A7C15
		if run.RandomSeed == 0 {
			run.RandomSeed = 1
		}
		mapping, _, err := FindEmbedding(ctx, src, tgt, &run)
		if err != nil {
			return nil, err
		}
		all = append(all, ranked{mapping: mapping, q: Evaluate(src, tgt, mapping)})
		if ctx != nil && ctx.Err() != nil {
			break
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].q, all[j].q
		if a.Proper != b.Proper {
			return a.Proper
		}
		if a.MaxChainLength != b.MaxChainLength {
			return a.MaxChainLength < b.MaxChainLength
		}
		return a.TotalChainLength < b.TotalChainLength
	})
	out := make([]map[L][]L, len(all))
	for i, r := range all {
		out[i] = r.mapping
	}
	return out, nil
}
