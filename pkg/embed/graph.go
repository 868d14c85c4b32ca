package embed

// graph is an undirected graph over dense integer vertex ids. Adjacency is
// stored as one neighbor slice per vertex; the builders in labels.go and
// setup.go are responsible for deduplicating edges and dropping self-loops.
type graph struct {
	adj [][]int
}

// newGraph creates a graph with n isolated vertices.
func newGraph(n int) *graph {
	return &graph{adj: make([][]int, n)}
}

// order returns the number of vertices.
func (g *graph) order() int { return len(g.adj) }

// degree returns the number of neighbors of v.
func (g *graph) degree(v int) int { return len(g.adj[v]) }

// neighbors returns v's adjacency slice. Callers must not mutate it.
func (g *graph) neighbors(v int) []int { return g.adj[v] }

// addEdge inserts the undirected edge (u, v). The caller guarantees u != v
// and that the edge is not already present.
func (g *graph) addEdge(u, v int) {
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
}

// grow appends a fresh isolated vertex and returns its id. Used by the setup
// phase to materialize suspension-pin auxiliaries.
func (g *graph) grow() int {
	g.adj = append(g.adj, nil)
	return len(g.adj) - 1
}
