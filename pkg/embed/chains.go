package embed

import "github.com/aidanproy/minorminer/pkg/errors"

// chain is one source vertex's assignment: a connected set of target nodes
// with a spanning tree encoded as parent pointers. The anchor (tree root) is
// members[0]. The parent map covers exactly the membership set; the anchor
// maps to itself.
type chain struct {
	members []int
	parent  map[int]int
}

func (c *chain) size() int   { return len(c.members) }
func (c *chain) empty() bool { return len(c.members) == 0 }

// anchor returns the tree root, or -1 for an empty chain.
func (c *chain) anchor() int {
	if len(c.members) == 0 {
		return -1
	}
	return c.members[0]
}

func (c *chain) contains(t int) bool {
	_, ok := c.parent[t]
	return ok
}

// chainStore holds every source vertex's chain plus the per-target-node use
// counts (number of distinct chains containing each target node). All
// mutation goes through install/installSet/tear/removeLeaf so the counts
// stay exact.
type chainStore struct {
	chains []chain
	use    []int
}

func newChainStore(numSrc, numTgt int) *chainStore {
	return &chainStore{
		chains: make([]chain, numSrc),
		use:    make([]int, numTgt),
	}
}

// growSource appends an empty chain slot for a pin auxiliary source.
func (s *chainStore) growSource() {
	s.chains = append(s.chains, chain{})
}

// growTarget appends a use-count slot for a pin auxiliary target.
func (s *chainStore) growTarget() {
	s.use = append(s.use, 0)
}

func (s *chainStore) chain(v int) *chain { return &s.chains[v] }

// tear empties chain(v), decrementing use counts. Tearing an empty chain is
// a no-op. The caller is responsible for never tearing fixed chains.
func (s *chainStore) tear(v int) {
	c := &s.chains[v]
	for _, t := range c.members {
		s.use[t]--
	}
	c.members = c.members[:0]
	c.parent = nil
}

// install replaces chain(v) with the union of paths, each a target-node
// sequence starting at root and walking outward. The chain tree is rooted at
// root; a node reached by several paths keeps the parent from the first path
// that contained it. Use counts are updated for the symmetric difference.
func (s *chainStore) install(v, root int, paths [][]int) {
	s.tear(v)
	c := &s.chains[v]
	c.parent = map[int]int{root: root}
	c.members = append(c.members, root)
	s.use[root]++
	for _, path := range paths {
		for i := 1; i < len(path); i++ {
			t := path[i]
			if _, ok := c.parent[t]; ok {
				continue
			}
			c.parent[t] = path[i-1]
			c.members = append(c.members, t)
			s.use[t]++
		}
	}
}

// installSet replaces chain(v) with an explicit membership set, building the
// parent tree by breadth-first search over the induced subgraph of tgt. Used
// for user-supplied initial and fixed chains. Fails if the set is empty or
// not connected in the target graph.
func (s *chainStore) installSet(v int, members []int, tgt *graph, what string) error {
	if len(members) == 0 {
		return errors.New(errors.ErrCodeInvalidChain, "%s: chain must be nonempty", what)
	}
	inSet := make(map[int]bool, len(members))
	for _, t := range members {
		inSet[t] = true
	}
	root := members[0]
	parent := map[int]int{root: root}
	order := []int{root}
	for i := 0; i < len(order); i++ {
		t := order[i]
		for _, nb := range tgt.neighbors(t) {
			if !inSet[nb] {
				continue
			}
			if _, ok := parent[nb]; ok {
				continue
			}
			parent[nb] = t
			order = append(order, nb)
		}
	}
	if len(order) != len(inSet) {
		return errors.New(errors.ErrCodeInvalidChain, "%s: chain is not connected in the target graph", what)
	}
	s.tear(v)
	c := &s.chains[v]
	c.members = order
	c.parent = parent
	for _, t := range order {
		s.use[t]++
	}
	return nil
}

// removeLeaf drops a leaf t from chain(v). t must be a member, must not be
// the anchor, and must have no children in the chain tree.
func (s *chainStore) removeLeaf(v, t int) {
	c := &s.chains[v]
	delete(c.parent, t)
	for i, m := range c.members {
		if m == t {
			c.members = append(c.members[:i], c.members[i+1:]...)
			break
		}
	}
	s.use[t]--
}

// leaves returns the chain-tree leaves of chain(v), excluding the anchor.
func (c *chain) leaves() []int {
	children := make(map[int]int, len(c.members))
	for t, p := range c.parent {
		if t != p {
			children[p]++
		}
	}
	var out []int
	for _, t := range c.members {
		if t != c.anchor() && children[t] == 0 {
			out = append(out, t)
		}
	}
	return out
}

// connected reports whether chain(v)'s parent forest spans its membership
// from the anchor. Used by invariant checks in tests and the verifier.
func (c *chain) connected() bool {
	if c.empty() {
		return true
	}
	for _, t := range c.members {
		seen := map[int]bool{}
		cur := t
		for c.parent[cur] != cur {
			if seen[cur] {
				return false
			}
			seen[cur] = true
			next, ok := c.parent[cur]
			if !ok {
				return false
			}
			cur = next
		}
		if cur != c.anchor() {
			return false
		}
	}
	return true
}
