package fastrng

import "testing"

func TestDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("streams diverged at step %d", i)
		}
	}
}

func TestSeedsProduceDistinctStreams(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same > 0 {
		t.Errorf("adjacent seeds shared %d of 100 outputs", same)
	}
}

func TestUint64nBounds(t *testing.T) {
	r := New(7)
	for _, n := range []uint64{1, 2, 3, 10, 1 << 40} {
		for i := 0; i < 200; i++ {
			if v := r.Uint64n(n); v >= n {
				t.Fatalf("Uint64n(%d) = %d out of range", n, v)
			}
		}
	}
}

func TestIntnCoversRange(t *testing.T) {
	r := New(9)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := r.Intn(4)
		if v < 0 || v >= 4 {
			t.Fatalf("Intn(4) = %d out of range", v)
		}
		seen[v] = true
	}
	if len(seen) != 4 {
		t.Errorf("Intn(4) only produced %d distinct values in 1000 draws", len(seen))
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	r := New(3)
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
	r.Shuffle(xs)
	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		if x < 0 || x >= 8 || seen[x] {
			t.Fatalf("shuffle result %v is not a permutation", xs)
		}
		seen[x] = true
	}
}

func TestShuffleDeterministic(t *testing.T) {
	mk := func() []int {
		r := New(11)
		xs := []int{0, 1, 2, 3, 4, 5}
		r.Shuffle(xs)
		return xs
	}
	a, b := mk(), mk()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same-seed shuffles differ: %v vs %v", a, b)
		}
	}
}

func TestForkIndependence(t *testing.T) {
	parent := New(5)
	f0 := parent.Fork(0)
	f1 := parent.Fork(1)
	same := 0
	for i := 0; i < 100; i++ {
		if f0.Uint64() == f1.Uint64() {
			same++
		}
	}
	if same > 0 {
		t.Errorf("forked streams shared %d of 100 outputs", same)
	}
}

func TestForkDeterministic(t *testing.T) {
	a := New(13).Fork(3)
	b := New(13).Fork(3)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("same-parent forks diverged at step %d", i)
		}
	}
}
