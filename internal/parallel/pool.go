// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel runs CPU shader kernels over row bands.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines that execute submitted work.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// queue feeds every worker. Buffered so a band split never blocks on
	// a busy worker while others are idle.
	queue chan func()

	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case work := <-p.queue:
			work()
		}
	}
}

// ExecuteAll runs every work item and waits for all of them.
// After Close the items run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() || len(work) == 1 {
		for _, fn := range work {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for _, fn := range work {
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queue <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
}

// Rows splits [0, height) into contiguous bands of at least minRows rows,
// at most one per worker, runs fn on each band and waits. It returns the
// error of the lowest failing band.
func (p *WorkerPool) Rows(height, minRows int, fn func(y0, y1 int) error) error {
	if height <= 0 {
		return nil
	}
	if minRows < 1 {
		minRows = 1
	}

	bands := p.workers
	if maxBands := height / minRows; bands > maxBands {
		bands = maxBands
	}
	if bands <= 1 {
		return fn(0, height)
	}

	errs := make([]error, bands)
	work := make([]func(), bands)
	for i := range bands {
		y0 := height * i / bands
		y1 := height * (i + 1) / bands
		work[i] = func() { errs[i] = fn(y0, y1) }
	}
	p.ExecuteAll(work)

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops the workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
