// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/texture"
)

// State is the lifecycle state of the current frame.
type State int32

const (
	// StateIdle means no frame has been pushed yet.
	StateIdle State = iota

	// StateScheduled means a frame is waiting for Drive.
	StateScheduled

	// StateRunning means Drive is traversing the graph.
	StateRunning

	// StateCompleted means the last frame reached every sink.
	StateCompleted

	// StateFailed means the last frame was abandoned.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScheduled:
		return "Scheduled"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Stats counts renderer activity.
type Stats struct {
	// Frames is the number of frames that reached their sinks.
	Frames uint64

	// Failed is the number of abandoned frames.
	Failed uint64

	// Coalesced is the number of pushed frames replaced by a newer one
	// before they were rendered.
	Coalesced uint64

	// LastDuration is the wall time of the last Drive.
	LastDuration time.Duration
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithErrorHandler receives frame errors from Run. Without it they are
// logged at warn level.
func WithErrorHandler(fn func(error)) RendererOption {
	return func(r *Renderer) {
		r.onError = fn
	}
}

// Renderer drives a graph one frame at a time.
type Renderer struct {
	graph *Graph
	pool  *texture.Pool

	mu      sync.Mutex
	pending map[string]*ggfx.Frame
	state   State
	stats   Stats

	wake    chan struct{}
	driving atomic.Bool
	plan    *plan
	onError func(error)
}

// NewRenderer creates a renderer for g allocating from pool.
func NewRenderer(g *Graph, pool *texture.Pool, opts ...RendererOption) *Renderer {
	r := &Renderer{
		graph:   g,
		pool:    pool,
		pending: make(map[string]*ggfx.Frame),
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the driven graph.
func (r *Renderer) Graph() *Graph {
	return r.graph
}

// PushFrame schedules a copy of f for the source node sourceID. If a
// frame for that source is already pending it is replaced.
//
// PushFrame may be called from any goroutine, including while Drive runs;
// such a frame is rendered by the next Drive.
func (r *Renderer) PushFrame(sourceID string, f *ggfx.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	n, ok := r.graph.Node(sourceID)
	if !ok {
		return fmt.Errorf("%w: unknown source %q", ggfx.ErrInvalidState, sourceID)
	}
	if _, ok := n.(*Source); !ok {
		return fmt.Errorf("%w: node %q is not a source", ggfx.ErrInvalidState, sourceID)
	}
	frame := f.Clone()

	r.mu.Lock()
	if _, ok := r.pending[sourceID]; ok {
		r.stats.Coalesced++
	}
	r.pending[sourceID] = frame
	if r.state != StateRunning {
		r.state = StateScheduled
	}
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

// Drive renders the pending frame.
//
// Nodes run in topological order. If any node fails, every target acquired
// for the frame is released, no sink consumer is called and the error is
// returned as a *NodeError. Drive fails with ggfx.ErrInvalidState when no
// frame is scheduled or when it is already running.
func (r *Renderer) Drive() error {
	if !r.driving.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: Drive re-entered", ggfx.ErrInvalidState)
	}
	defer r.driving.Store(false)

	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: no frame scheduled", ggfx.ErrInvalidState)
	}
	frames := r.pending
	r.pending = make(map[string]*ggfx.Frame)
	r.state = StateRunning
	r.mu.Unlock()

	start := time.Now()
	err := r.drive(frames)
	elapsed := time.Since(start)

	r.mu.Lock()
	r.stats.LastDuration = elapsed
	if err != nil {
		r.state = StateFailed
		r.stats.Failed++
	} else {
		r.state = StateCompleted
		r.stats.Frames++
	}
	// A frame pushed while this one ran is waiting for the next Drive.
	if len(r.pending) > 0 {
		r.state = StateScheduled
	}
	r.mu.Unlock()
	return err
}

func (r *Renderer) drive(frames map[string]*ggfx.Frame) error {
	p, err := r.graph.begin(r.plan)
	if err != nil {
		return err
	}
	defer r.graph.end()
	r.plan = p

	for id, f := range frames {
		n, ok := r.graph.Node(id)
		src, isSource := n.(*Source)
		if !ok || !isSource {
			ggfx.Logger().Debug("pipeline: dropping frame for removed source", "source", id)
			continue
		}
		src.SetFrame(f)
	}

	run := newFrameRun(r.pool, p)
	if _, err := run.execute(); err != nil {
		return err
	}

	var errs []error
	for _, s := range run.sinks {
		if err := s.commit(); err != nil {
			errs = append(errs, &NodeError{Node: s.ID(), Err: err})
		}
	}
	if err := errors.Join(errs...); err != nil {
		ggfx.Logger().Warn("pipeline: sink commit failed", "error", err)
		return err
	}
	ggfx.Logger().Debug("pipeline: frame rendered",
		"nodes", len(p.order), "sinks", len(run.sinks), "checked_out", r.pool.CheckedOut())
	return nil
}

// Run drives a frame every time one is pushed, until ctx is done.
// It returns ctx.Err().
func (r *Renderer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}
		if !r.Pending() {
			continue
		}
		if err := r.Drive(); err != nil {
			if r.onError != nil {
				r.onError(err)
			} else {
				ggfx.Logger().Warn("pipeline: frame failed", "error", err)
			}
		}
	}
}

// State returns the state of the current or last frame.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending reports whether a frame is waiting for Drive.
func (r *Renderer) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending) > 0
}

// Stats returns a snapshot of the renderer counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
