package embed

import "testing"

func TestBuildGraphInternsInOrder(t *testing.T) {
	g, table := buildGraph([]Edge[string]{
		{"c", "a"}, {"a", "b"}, {"b", "c"},
	})
	if g.order() != 3 {
		t.Fatalf("order = %d, want 3", g.order())
	}
	// Ids follow first-seen order: c=0, a=1, b=2.
	for i, want := range []string{"c", "a", "b"} {
		if table.label(i) != want {
			t.Errorf("label(%d) = %q, want %q", i, table.label(i), want)
		}
	}
	if id, ok := table.lookup("a"); !ok || id != 1 {
		t.Errorf("lookup(a) = (%d, %v), want (1, true)", id, ok)
	}
	if _, ok := table.lookup("z"); ok {
		t.Error("lookup of unseen label must fail")
	}
}

func TestBuildGraphDropsLoopsAndDuplicates(t *testing.T) {
	g, _ := buildGraph([]Edge[string]{
		{"a", "b"}, {"b", "a"}, {"a", "b"}, {"a", "a"},
	})
	if g.order() != 2 {
		t.Fatalf("order = %d, want 2", g.order())
	}
	if g.degree(0) != 1 || g.degree(1) != 1 {
		t.Errorf("degrees = (%d, %d), want (1, 1)", g.degree(0), g.degree(1))
	}
}

func TestTranslateChainUnknownLabel(t *testing.T) {
	_, table := buildGraph([]Edge[string]{{"a", "b"}})
	if _, err := translateChain(table, []string{"a", "nope"}, "test"); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestGraphGrow(t *testing.T) {
	g, _ := buildGraph([]Edge[string]{{"a", "b"}})
	id := g.grow()
	if id != 2 || g.order() != 3 {
		t.Fatalf("grow returned %d with order %d, want 2 and 3", id, g.order())
	}
	g.addEdge(id, 0)
	if g.degree(id) != 1 {
		t.Errorf("degree of grown node = %d, want 1", g.degree(id))
	}
}
