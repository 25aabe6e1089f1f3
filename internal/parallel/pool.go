// Package parallel provides a persistent worker pool for splitting grid
// updates into row bands executed concurrently.
package parallel

import (
	"runtime"
	"sync"
)

// Pool is a fixed set of worker goroutines that execute row-band tasks.
//
// Workers are started once and reused across Run calls, so a per-tick grid
// update does not pay goroutine startup cost. Bands read only frozen input,
// so execution order between workers never changes the result.
//
// Thread safety: Run is safe for concurrent use, but the automaton engines
// call it from a single goroutine per tick.
type Pool struct {
	// workers is the number of worker goroutines.
	workers int

	// tasks carries closures to the workers.
	tasks chan task

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish on Close.
	wg sync.WaitGroup

	closeOnce sync.Once
}

type task struct {
	fn     func(start, end int)
	start  int
	end    int
	finish *sync.WaitGroup
}

// New creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers*2),
		done:    make(chan struct{}),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Run splits [0, n) into one band per worker and blocks until every band's
// fn(start, end) has completed. Bands are contiguous and non-overlapping;
// together they cover [0, n) exactly. A nil or closed pool runs fn inline.
func (p *Pool) Run(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.isClosed() {
		fn(0, n)
		return
	}

	bands := p.workers
	if bands > n {
		bands = n
	}
	size := (n + bands - 1) / bands

	var finish sync.WaitGroup
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		finish.Add(1)
		p.tasks <- task{fn: fn, start: start, end: end, finish: &finish}
	}
	finish.Wait()
}

// Close stops the workers. Pending bands finish first. Safe to call twice.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

func (p *Pool) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case t := <-p.tasks:
			t.fn(t.start, t.end)
			t.finish.Done()
		case <-p.done:
			// Drain remaining work before exiting so Run never deadlocks.
			for {
				select {
				case t := <-p.tasks:
					t.fn(t.start, t.end)
					t.finish.Done()
				default:
					return
				}
			}
		}
	}
}
