// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggfx"
)

// Screen errors.
var (
	// ErrNoDrawer is returned when Draw is called without a draw context.
	ErrNoDrawer = errors.New("sink: nil texture drawer")

	// ErrNoTextureCreator is returned when the draw context cannot create
	// textures.
	ErrNoTextureCreator = errors.New("sink: draw context has no texture creator")

	// ErrNotTexture is returned when the created texture cannot be drawn.
	ErrNotTexture = errors.New("sink: created texture does not implement gpucontext.Texture")
)

// Screen shows the latest frame in a window.
//
// Consume may run on any goroutine; it only stores the frame. Draw must be
// called from the window's draw callback, where it uploads the frame to a
// GPU texture (created on first use and recreated when the size changes)
// and draws it at (X, Y).
type Screen struct {
	X, Y float32

	mu      sync.Mutex
	pending *ggfx.Frame
	tex     gpucontext.Texture
	w, h    int
	old     any
	draws   int
}

// NewScreen creates a screen sink drawing at (x, y).
func NewScreen(x, y float32) *Screen {
	return &Screen{X: x, Y: y}
}

// Consume stores an RGBA8 copy of f for the next Draw.
func (s *Screen) Consume(f *ggfx.Frame) error {
	rgba := f.Convert(ggfx.FormatRGBA8)
	s.mu.Lock()
	s.pending = rgba
	s.mu.Unlock()
	return nil
}

// Dirty reports whether a frame is waiting to be uploaded.
func (s *Screen) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Draw uploads the pending frame, if any, and draws the current texture.
// Nothing is drawn before the first frame.
func (s *Screen) Draw(dc gpucontext.TextureDrawer) error {
	if dc == nil {
		return ErrNoDrawer
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.pending; f != nil {
		if err := s.upload(dc, f); err != nil {
			return err
		}
		s.pending = nil
	}
	if s.tex == nil {
		return nil
	}
	if err := dc.DrawTexture(s.tex, s.X, s.Y); err != nil {
		return err
	}
	s.draws++
	return nil
}

func (s *Screen) upload(dc gpucontext.TextureDrawer, f *ggfx.Frame) error {
	if s.tex != nil && s.w == f.Width && s.h == f.Height {
		if u, ok := any(s.tex).(gpucontext.TextureUpdater); ok {
			if err := u.UpdateData(f.Pix); err != nil {
				return fmt.Errorf("sink: texture update: %w", err)
			}
			return nil
		}
	}

	creator := dc.TextureCreator()
	if creator == nil {
		return ErrNoTextureCreator
	}
	created, err := creator.NewTextureFromRGBA(f.Width, f.Height, f.Pix)
	if err != nil {
		return fmt.Errorf("sink: create texture: %w", err)
	}
	tex, ok := any(created).(gpucontext.Texture)
	if !ok {
		return ErrNotTexture
	}

	// The previous texture may still be referenced by in-flight commands;
	// it is destroyed one upload later.
	s.destroy(s.old)
	s.old = s.tex
	s.tex, s.w, s.h = tex, f.Width, f.Height
	ggfx.Logger().Debug("sink: screen texture created", "width", f.Width, "height", f.Height)
	return nil
}

// Draws returns the number of successful Draw calls that drew a texture.
func (s *Screen) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// Close destroys the textures owned by the screen.
func (s *Screen) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroy(s.old)
	s.destroy(s.tex)
	s.old, s.tex, s.pending = nil, nil, nil
	return nil
}

func (s *Screen) destroy(t any) {
	if d, ok := t.(interface{ Destroy() }); ok {
		d.Destroy()
	}
}
