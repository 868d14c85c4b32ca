package embed_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/aidanproy/minorminer/pkg/embed"
)

func ExampleFindEmbedding() {
	// Embed the path a-b-c into the path 0-1-2-3-4, pinning a and c to the
	// ends. The middle vertex has to bridge the whole interior.
	src := []embed.Edge[string]{{U: "a", V: "b"}, {U: "b", V: "c"}}
	tgt := []embed.Edge[string]{
		{U: "0", V: "1"}, {U: "1", V: "2"}, {U: "2", V: "3"}, {U: "3", V: "4"},
	}
	opts := &embed.Options[string]{
		RandomSeed: 42,
		FixedChains: map[string][]string{
			"a": {"0"},
			"c": {"4"},
		},
	}

	mapping, ok, err := embed.FindEmbedding(context.Background(), src, tgt, opts)
	if err != nil {
		panic(err)
	}

	fmt.Println("proper:", ok)
	for _, v := range []string{"a", "b", "c"} {
		chain := append([]string(nil), mapping[v]...)
		sort.Strings(chain)
		fmt.Println(v, chain)
	}
	// Output:
	// proper: true
	// a [0]
	// b [1 2 3]
	// c [4]
}

func ExampleVerify() {
	src := []embed.Edge[string]{{U: "a", V: "b"}}
	tgt := []embed.Edge[string]{{U: "0", V: "1"}, {U: "1", V: "2"}}

	good := map[string][]string{"a": {"0"}, "b": {"1", "2"}}
	fmt.Println(embed.Verify(src, tgt, good))

	overlapping := map[string][]string{"a": {"1"}, "b": {"1", "2"}}
	err := embed.Verify(src, tgt, overlapping)
	fmt.Println(err != nil)
	// Output:
	// <nil>
	// true
}
