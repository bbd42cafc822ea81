// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"context"
	"image"
	"sync"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
)

// Func adapts a function to a consumer.
func Func(fn func(*ggfx.Frame) error) pipeline.Consumer {
	return pipeline.ConsumerFunc(fn)
}

// Recorder keeps every frame it receives, up to an optional limit after
// which the oldest frames are dropped.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	frames []*ggfx.Frame
	total  int
}

// NewRecorder creates a recorder keeping at most limit frames. A limit of
// zero keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: max(limit, 0)}
}

// Consume appends f.
func (r *Recorder) Consume(f *ggfx.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	if r.limit > 0 && len(r.frames) > r.limit {
		r.frames = append(r.frames[:0], r.frames[len(r.frames)-r.limit:]...)
	}
	r.total++
	return nil
}

// Frames returns the retained frames, oldest first.
func (r *Recorder) Frames() []*ggfx.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ggfx.Frame(nil), r.frames...)
}

// Len returns the number of retained frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Total returns the number of frames consumed, including dropped ones.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset drops every retained frame.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

// Latest keeps only the most recent frame and lets readers wait for new
// ones.
type Latest struct {
	mu      sync.Mutex
	frame   *ggfx.Frame
	seq     uint64
	changed chan struct{}
}

// NewLatest creates an empty Latest.
func NewLatest() *Latest {
	return &Latest{changed: make(chan struct{})}
}

// Consume replaces the held frame and wakes waiters.
func (l *Latest) Consume(f *ggfx.Frame) error {
	l.mu.Lock()
	l.frame = f
	l.seq++
	close(l.changed)
	l.changed = make(chan struct{})
	l.mu.Unlock()
	return nil
}

// Frame returns the held frame and its sequence number; nil and 0 before
// the first frame.
func (l *Latest) Frame() (*ggfx.Frame, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame, l.seq
}

// Image returns the held frame as an image, or nil.
func (l *Latest) Image() image.Image {
	f, _ := l.Frame()
	if f == nil {
		return nil
	}
	return f.Image()
}

// Wait blocks until a frame newer than seq arrives or ctx is done.
func (l *Latest) Wait(ctx context.Context, seq uint64) (*ggfx.Frame, uint64, error) {
	for {
		l.mu.Lock()
		if l.seq > seq {
			f, s := l.frame, l.seq
			l.mu.Unlock()
			return f, s, nil
		}
		ch := l.changed
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, seq, ctx.Err()
		}
	}
}
