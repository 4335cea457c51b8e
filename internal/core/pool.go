package core

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultWorkers keeps one core for accepting connections.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

// Pool is the fixed set of workers plus the load table used to place clients.
// mu serialises placement so a slot claim always observes up-to-date loads.
type Pool struct {
	mu       sync.Mutex
	workers  []*Worker
	capacity int
}

// WorkerLoad describes one worker's occupancy.
type WorkerLoad struct {
	Index    int `json:"index"`
	Load     int `json:"load"`
	Capacity int `json:"capacity"`
}

// NewPool creates n workers with capacity client slots each.
func NewPool(n, capacity, maxFrameSize int, handler Handler, logger *zerolog.Logger) *Pool {
	if n < 1 {
		n = DefaultWorkers()
	}
	workers := make([]*Worker, n)
	for i := range workers {
		workers[i] = newWorker(i, capacity, maxFrameSize, handler, logger)
	}
	return &Pool{workers: workers, capacity: capacity}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Capacity returns the total number of client slots.
func (p *Pool) Capacity() int {
	return len(p.workers) * p.capacity
}

// Run starts every worker loop and blocks until all of them exit.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	wg.Wait()
}

// Assign picks the least-loaded worker, lowest index on ties, and claims a
// slot on it. It returns ErrCapacityExceeded when every worker is full.
func (p *Pool) Assign() (*Worker, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	loads := make([]int, len(p.workers))
	for i, w := range p.workers {
		loads[i] = w.Load()
	}
	best := leastLoaded(loads)
	if loads[best] >= p.capacity {
		return nil, noIndex, ErrCapacityExceeded
	}

	w := p.workers[best]
	idx := w.claim()
	if idx == noIndex {
		return nil, noIndex, ErrCapacityExceeded
	}
	return w, idx, nil
}

// Loads reports every worker's occupancy in index order.
func (p *Pool) Loads() []WorkerLoad {
	out := make([]WorkerLoad, len(p.workers))
	for i, w := range p.workers {
		out[i] = WorkerLoad{Index: i, Load: w.Load(), Capacity: w.Capacity()}
	}
	return out
}

func leastLoaded(loads []int) int {
	best := 0
	for i := 1; i < len(loads); i++ {
		if loads[i] < loads[best] {
			best = i
		}
	}
	return best
}
