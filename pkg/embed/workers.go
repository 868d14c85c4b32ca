package embed

import "sync"

// pool is the bounded worker pool for the neighbor-distance phase. Workers
// are spawned once per engine and live until close; each owns a private
// scratch, so tasks share no mutable state beyond the read-only weight
// snapshot they are given.
type pool struct {
	tasks chan func(*scratch)
	wg    sync.WaitGroup
}

// newPool starts n workers, each with its own |T|-sized scratch.
func newPool(n, targets int) *pool {
	p := &pool{tasks: make(chan func(*scratch))}
	for i := 0; i < n; i++ {
		go p.worker(newScratch(targets))
	}
	return p
}

func (p *pool) worker(sc *scratch) {
	for fn := range p.tasks {
		fn(sc)
		p.wg.Done()
	}
}

// submit queues one task. Pair every batch of submits with a join.
func (p *pool) submit(fn func(*scratch)) {
	p.wg.Add(1)
	p.tasks <- fn
}

// join blocks until every submitted task has completed.
func (p *pool) join() { p.wg.Wait() }

// close shuts the workers down. The pool must be idle.
func (p *pool) close() { close(p.tasks) }
