package embed

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/aidanproy/minorminer/pkg/errors"
)

func completeGraph(labels []string) []Edge[string] {
	var edges []Edge[string]
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			edges = append(edges, Edge[string]{labels[i], labels[j]})
		}
	}
	return edges
}

func pathEdges(labels ...string) []Edge[string] {
	var edges []Edge[string]
	for i := 0; i+1 < len(labels); i++ {
		edges = append(edges, Edge[string]{labels[i], labels[i+1]})
	}
	return edges
}

func cycleEdges(labels ...string) []Edge[string] {
	edges := pathEdges(labels...)
	return append(edges, Edge[string]{labels[len(labels)-1], labels[0]})
}

func bipartiteEdges(left, right []string) []Edge[string] {
	var edges []Edge[string]
	for _, l := range left {
		for _, r := range right {
			edges = append(edges, Edge[string]{l, r})
		}
	}
	return edges
}

func seeded(seed uint64) *Options[string] {
	return &Options[string]{RandomSeed: seed}
}

// TestTriangleIntoTriangle embeds K3 into K3: every chain is a single
// target node and the mapping is a permutation.
func TestTriangleIntoTriangle(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c"})
	tgt := completeGraph([]string{"0", "1", "2"})

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, seeded(1))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("K3 into K3 must embed properly")
	}
	if err := Verify(src, tgt, mapping); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	used := make(map[string]bool)
	for v, chain := range mapping {
		if len(chain) != 1 {
			t.Errorf("chain(%s) = %v, want a single node", v, chain)
		}
		used[chain[0]] = true
	}
	if len(used) != 3 {
		t.Errorf("mapping uses %d targets, want a permutation of 3", len(used))
	}
}

// TestK4IntoBipartite embeds K4 into K44: chains of length two exist, and
// the heuristic must find a proper embedding.
func TestK4IntoBipartite(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c", "d"})
	tgt := bipartiteEdges(
		[]string{"l0", "l1", "l2", "l3"},
		[]string{"r0", "r1", "r2", "r3"},
	)

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, seeded(7))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("K4 into K4,4 must embed properly")
	}
	if err := Verify(src, tgt, mapping); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	for v, chain := range mapping {
		if len(chain) > 2 {
			t.Errorf("chain(%s) = %v, want length <= 2 after reduction", v, chain)
		}
	}
}

// TestFixedEndsOfPath pins a and c to the ends of a path; b must bridge the
// interior.
func TestFixedEndsOfPath(t *testing.T) {
	src := pathEdges("a", "b", "c")
	tgt := pathEdges("0", "1", "2", "3", "4")
	opts := seeded(3)
	opts.FixedChains = map[string][]string{
		"a": {"0"},
		"c": {"4"},
	}

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a proper embedding")
	}
	if got := mapping["a"]; !reflect.DeepEqual(got, []string{"0"}) {
		t.Errorf("fixed chain(a) = %v, want [0] verbatim", got)
	}
	if got := mapping["c"]; !reflect.DeepEqual(got, []string{"4"}) {
		t.Errorf("fixed chain(c) = %v, want [4] verbatim", got)
	}
	b := append([]string(nil), mapping["b"]...)
	sort.Strings(b)
	if !reflect.DeepEqual(b, []string{"1", "2", "3"}) {
		t.Errorf("chain(b) = %v, want the full interior {1,2,3}", b)
	}
}

// TestK5IntoC5Fails asks for K5 in a 5-cycle, which has no minor embedding;
// the engine must report failure and still return its best overlapped
// attempt.
func TestK5IntoC5Fails(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c", "d", "e"})
	tgt := cycleEdges("0", "1", "2", "3", "4")
	opts := seeded(5)
	opts.Tries = 3

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("K5 has no minor in C5; success flag must be false")
	}
	if len(mapping) == 0 {
		t.Error("best-so-far mapping must still be returned")
	}
}

// TestDisjointComponents embeds a single edge into one component of a
// two-component target.
func TestDisjointComponents(t *testing.T) {
	src := []Edge[string]{{"a", "b"}}
	tgt := []Edge[string]{{"0", "1"}, {"2", "3"}}

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, seeded(11))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("a single edge must embed into a component edge")
	}
	if err := Verify(src, tgt, mapping); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if len(mapping["a"]) != 1 || len(mapping["b"]) != 1 {
		t.Errorf("chains = %v, want single nodes", mapping)
	}
}

// TestSuspendChains forces chain(a) to touch the blob {t1, t2}.
func TestSuspendChains(t *testing.T) {
	src := []Edge[string]{{"a", "b"}}
	tgt := pathEdges("t0", "t1", "t2", "t3")
	opts := seeded(13)
	opts.SuspendChains = map[string][][]string{
		"a": {{"t1", "t2"}},
	}

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a proper embedding")
	}
	touched := false
	for _, node := range mapping["a"] {
		if node == "t1" || node == "t2" {
			touched = true
		}
	}
	if !touched {
		t.Errorf("chain(a) = %v, want it to touch {t1, t2}", mapping["a"])
	}
	// Pin auxiliaries must not leak into the mapping.
	if len(mapping) != 2 {
		t.Errorf("mapping has %d entries, want exactly a and b: %v", len(mapping), mapping)
	}
}

// TestRestrictChains confines chain(a) to a subset of a complete target.
func TestRestrictChains(t *testing.T) {
	src := []Edge[string]{{"a", "b"}}
	tgt := completeGraph([]string{"0", "1", "2", "3"})
	opts := seeded(17)
	opts.RestrictChains = map[string][]string{
		"a": {"0", "1"},
	}

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a proper embedding")
	}
	for _, node := range mapping["a"] {
		if node != "0" && node != "1" {
			t.Errorf("chain(a) = %v, want it inside the restrict set {0, 1}", mapping["a"])
		}
	}
}

// TestDeterminism checks the single-thread reproducibility guarantee.
func TestDeterminism(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c", "d"})
	tgt := bipartiteEdges(
		[]string{"l0", "l1", "l2", "l3"},
		[]string{"r0", "r1", "r2", "r3"},
	)

	run := func() map[string][]string {
		m, _, err := FindEmbedding(context.Background(), src, tgt, seeded(23))
		if err != nil {
			t.Fatal(err)
		}
		return m
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different mappings:\n%v\n%v", a, b)
	}
}

// TestParallelPlacementsStayValid runs with a worker pool; results need not
// match the single-thread trajectory but must verify.
func TestParallelPlacementsStayValid(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c", "d"})
	tgt := bipartiteEdges(
		[]string{"l0", "l1", "l2", "l3"},
		[]string{"r0", "r1", "r2", "r3"},
	)
	opts := seeded(29)
	opts.Threads = 4

	mapping, ok, err := FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("parallel run must still embed K4 into K4,4")
	}
	if err := Verify(src, tgt, mapping); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
}

// TestIdempotentReembedding feeds a successful embedding back in with
// skip_initialization; the result must be an equivalent embedding.
func TestIdempotentReembedding(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c"})
	tgt := completeGraph([]string{"0", "1", "2"})

	first, ok, err := FindEmbedding(context.Background(), src, tgt, seeded(31))
	if err != nil || !ok {
		t.Fatalf("setup embedding failed: ok=%v err=%v", ok, err)
	}

	opts := seeded(37)
	opts.InitialChains = first
	opts.SkipInitialization = true
	second, ok, err := FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("re-embedding a proper embedding must stay proper")
	}
	if err := Verify(src, tgt, second); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if !reflect.DeepEqual(chainLengths(first), chainLengths(second)) {
		t.Errorf("chain lengths changed: %v -> %v", chainLengths(first), chainLengths(second))
	}
}

func chainLengths(m map[string][]string) []int {
	var out []int
	for _, chain := range m {
		out = append(out, len(chain))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func TestEmptySourceGraph(t *testing.T) {
	mapping, ok, err := FindEmbedding(context.Background(), nil,
		[]Edge[string]{{"0", "1"}}, seeded(1))
	if err != nil {
		t.Fatal(err)
	}
	if ok || len(mapping) != 0 {
		t.Errorf("empty source must yield an empty mapping, got %v (ok=%v)", mapping, ok)
	}
}

func TestCancelledContextReturnsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mapping, ok, err := FindEmbedding(ctx,
		completeGraph([]string{"a", "b", "c"}),
		completeGraph([]string{"0", "1", "2"}),
		seeded(41))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("a cancelled run must not claim success")
	}
	_ = mapping // best-so-far, possibly empty
}

func TestUsageErrors(t *testing.T) {
	src := pathEdges("a", "b")
	tgt := pathEdges("0", "1", "2")

	tests := []struct {
		name string
		opts *Options[string]
		code errors.Code
	}{
		{
			name: "unknown source in fixed_chains",
			opts: &Options[string]{RandomSeed: 1, FixedChains: map[string][]string{"zz": {"0"}}},
			code: errors.ErrCodeUnknownNode,
		},
		{
			name: "unknown target in initial_chains",
			opts: &Options[string]{RandomSeed: 1, InitialChains: map[string][]string{"a": {"99"}}},
			code: errors.ErrCodeUnknownNode,
		},
		{
			name: "overlapping fixed chains",
			opts: &Options[string]{RandomSeed: 1, FixedChains: map[string][]string{
				"a": {"0"},
				"b": {"0"},
			}},
			code: errors.ErrCodeFixedOverlap,
		},
		{
			name: "disconnected initial chain",
			opts: &Options[string]{RandomSeed: 1, InitialChains: map[string][]string{"a": {"0", "2"}}},
			code: errors.ErrCodeInvalidChain,
		},
		{
			name: "empty suspend blob",
			opts: &Options[string]{RandomSeed: 1, SuspendChains: map[string][][]string{"a": {{}}}},
			code: errors.ErrCodeInvalidChain,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := FindEmbedding(context.Background(), src, tgt, tc.opts)
			if err == nil {
				t.Fatal("expected a usage error")
			}
			if !errors.Is(err, tc.code) {
				t.Errorf("error code = %v, want %v (%v)", errors.GetCode(err), tc.code, err)
			}
		})
	}
}

func TestFindEmbeddingsRanksProperFirst(t *testing.T) {
	src := completeGraph([]string{"a", "b", "c"})
	tgt := completeGraph([]string{"0", "1", "2"})

	all, err := FindEmbeddings(context.Background(), src, tgt, seeded(43), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d mappings, want 3", len(all))
	}
	if err := Verify(src, tgt, all[0]); err != nil {
		t.Errorf("front of the ranking must verify: %v", err)
	}
}

func TestVerifyRejectsBadMappings(t *testing.T) {
	src := pathEdges("a", "b")
	tgt := pathEdges("0", "1", "2")

	tests := []struct {
		name    string
		mapping map[string][]string
	}{
		{"missing chain", map[string][]string{"a": {"0"}}},
		{"empty chain", map[string][]string{"a": {"0"}, "b": {}}},
		{"overlap", map[string][]string{"a": {"1"}, "b": {"1"}}},
		{"disconnected chain", map[string][]string{"a": {"0", "2"}, "b": {"1"}}},
		{"uncovered edge", map[string][]string{"a": {"0"}, "b": {"2"}}},
		{"unknown target", map[string][]string{"a": {"0"}, "b": {"9"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Verify(src, tgt, tc.mapping); err == nil {
				t.Error("expected a verification error")
			}
		})
	}

	good := map[string][]string{"a": {"0"}, "b": {"1", "2"}}
	if err := Verify(src, tgt, good); err != nil {
		t.Errorf("valid mapping rejected: %v", err)
	}
}

func TestEvaluateQuality(t *testing.T) {
	src := pathEdges("a", "b")
	tgt := pathEdges("0", "1", "2")
	q := Evaluate(src, tgt, map[string][]string{"a": {"0"}, "b": {"1", "2"}})

	if !q.Proper {
		t.Error("mapping is proper")
	}
	if q.Chains != 2 || q.MaxChainLength != 2 || q.TotalChainLength != 3 {
		t.Errorf("quality = %+v", q)
	}
	if q.ChainLengthHistogram[1] != 1 || q.ChainLengthHistogram[2] != 1 {
		t.Errorf("histogram = %v", q.ChainLengthHistogram)
	}

	q = Evaluate(src, tgt, map[string][]string{"a": {"1"}, "b": {"1", "2"}})
	if q.Proper || q.Overlaps != 1 {
		t.Errorf("overlapped quality = %+v", q)
	}
}
