// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"sync"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/texture"
)

// Source is the entry point of frames into the graph. It keeps the latest
// pushed frame and uploads it into a fresh target each time it renders.
//
// The output has the frame's size unless the source was created
// WithSize, in which case the frame is resized first.
type Source struct {
	nodeBase

	frameMu sync.Mutex
	frame   *ggfx.Frame
}

// NewSource creates a source node.
func NewSource(id string, opts ...NodeOption) *Source {
	s := &Source{}
	s.init(id, 0, opts)
	return s
}

// OutputArity returns 1.
func (s *Source) OutputArity() int { return 1 }

// IsReady reports whether a frame has been pushed.
func (s *Source) IsReady() bool {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.frame != nil
}

// SetFrame replaces the frame uploaded by the next render. Renderers call
// it from Drive; f is owned by the source afterwards.
func (s *Source) SetFrame(f *ggfx.Frame) {
	s.frameMu.Lock()
	s.frame = f
	s.frameMu.Unlock()
}

// Frame returns the frame the source currently holds.
func (s *Source) Frame() *ggfx.Frame {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.frame
}

// Render uploads the current frame.
func (s *Source) Render(rc *RenderContext) (texture.Handle, error) {
	f := s.Frame()
	if f == nil {
		return texture.Handle{}, fmt.Errorf("%w: source %q has no frame", ggfx.ErrInvalidState, s.id)
	}
	if f.Width != rc.Width || f.Height != rc.Height {
		f = f.Resize(rc.Width, rc.Height)
	}
	h, t, err := rc.acquire(s.format)
	if err != nil {
		return texture.Handle{}, err
	}
	if err := rc.Backend().Upload(t, f); err != nil {
		_ = rc.Pool.Release(h)
		return texture.Handle{}, err
	}
	return h, nil
}

// Close drops the held frame.
func (s *Source) Close() error {
	s.SetFrame(nil)
	return nil
}

func (s *Source) resolveSize(*texture.Pool) (int, int, error) {
	if s.policy.IsFixed() {
		return s.nodeBase.resolveSize(nil)
	}
	f := s.Frame()
	if f == nil {
		return 0, 0, fmt.Errorf("%w: source %q has no frame", ggfx.ErrInvalidState, s.id)
	}
	return f.Width, f.Height, nil
}
