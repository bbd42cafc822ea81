// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/texture"
)

// frameRun is one traversal of a plan.
//
// Every target a node hands back is owned by the run until its last
// consumer has rendered; the run releases it then, or immediately when no
// node consumes it. On failure everything still owned goes back to the
// pool and staged sinks are discarded.
type frameRun struct {
	pool *texture.Pool
	plan *plan

	// keep names the node whose output survives the run (compound output).
	keep string
	// keepSize, when set, overrides the resolved size of keep.
	keepSize *[2]int

	refs    map[texture.Handle]int
	owned   map[texture.Handle]bool
	outputs map[string]texture.Handle
	sinks   []*Sink
}

func newFrameRun(pool *texture.Pool, p *plan) *frameRun {
	return &frameRun{
		pool:    pool,
		plan:    p,
		refs:    make(map[texture.Handle]int),
		owned:   make(map[texture.Handle]bool),
		outputs: make(map[string]texture.Handle, len(p.order)),
	}
}

// execute renders every node in order. It returns the output of r.keep,
// still checked out, or the zero Handle when keep is empty.
func (r *frameRun) execute() (texture.Handle, error) {
	var kept texture.Handle

	for _, n := range r.plan.order {
		id := n.ID()
		b := n.base()
		b.unbind()

		producers := r.plan.producers[id]
		for _, e := range producers {
			h, ok := r.outputs[e.From]
			if !ok {
				return texture.Handle{}, r.fail(n, fmt.Errorf("%w: %q produced no output for input %d",
					ggfx.ErrInvalidState, e.From, e.Input))
			}
			if err := n.BindInput(e.Input, h); err != nil {
				return texture.Handle{}, r.fail(n, err)
			}
		}
		if !n.IsReady() {
			return texture.Handle{}, r.fail(n, fmt.Errorf("%w: node is not ready", ggfx.ErrInvalidState))
		}

		w, h, err := n.resolveSize(r.pool)
		if err != nil {
			return texture.Handle{}, r.fail(n, err)
		}
		if id == r.keep && r.keepSize != nil {
			w, h = r.keepSize[0], r.keepSize[1]
		}

		out, err := n.Render(&RenderContext{Pool: r.pool, Width: w, Height: h})
		if err != nil {
			return texture.Handle{}, r.fail(n, err)
		}
		if s, ok := n.(*Sink); ok {
			r.sinks = append(r.sinks, s)
		}

		if n.OutputArity() > 0 {
			_, borrowed := n.(*inputProxy)
			if !borrowed {
				r.owned[out] = true
			}
			count := r.plan.consumers[id]
			if id == r.keep {
				count++
				kept = out
			}
			if count == 0 {
				if err := r.release(out); err != nil {
					return texture.Handle{}, r.fail(n, err)
				}
			} else {
				r.refs[out] += count
				r.outputs[id] = out
			}
		}

		for _, e := range producers {
			in := r.outputs[e.From]
			r.refs[in]--
			if r.refs[in] > 0 {
				continue
			}
			delete(r.refs, in)
			if err := r.release(in); err != nil {
				return texture.Handle{}, r.fail(n, err)
			}
		}
		b.unbind()
	}

	delete(r.owned, kept)
	for h := range r.owned {
		// Unreachable while refcounts balance; guards against pool leaks.
		ggfx.Logger().Warn("pipeline: releasing leaked target", "handle", h.String())
		_ = r.pool.Release(h)
	}
	return kept, nil
}

// release returns h to the pool if the run owns it.
func (r *frameRun) release(h texture.Handle) error {
	if !r.owned[h] {
		return nil
	}
	delete(r.owned, h)
	return r.pool.Release(h)
}

// fail undoes the run and wraps err with the failing node.
func (r *frameRun) fail(n Node, err error) error {
	for h := range r.owned {
		_ = r.pool.Release(h)
	}
	r.owned = make(map[texture.Handle]bool)
	r.refs = make(map[texture.Handle]int)
	for _, s := range r.sinks {
		s.discard()
	}
	r.sinks = nil
	for _, node := range r.plan.order {
		node.base().unbind()
	}
	ggfx.Logger().Debug("pipeline: frame failed", "node", n.ID(), "error", err)
	return &NodeError{Node: n.ID(), Err: err}
}
