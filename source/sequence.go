// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package source

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gogpu/ggfx"
)

// Sequence yields the frames of an ordered list of image files, the
// still-image stand-in for a video stream.
type Sequence struct {
	mu    sync.Mutex
	paths []string
	next  int
	loop  bool
}

// NewSequence creates a sequence over paths in the given order. A looping
// sequence starts again after the last file.
func NewSequence(paths []string, loop bool) *Sequence {
	return &Sequence{paths: append([]string(nil), paths...), loop: loop}
}

// Glob creates a sequence over the files matching pattern, sorted by name.
func Glob(pattern string, loop bool) (*Sequence, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("source: no files match %q", pattern)
	}
	sort.Strings(paths)
	return NewSequence(paths, loop), nil
}

// Len returns the number of files in the sequence.
func (s *Sequence) Len() int {
	return len(s.paths)
}

// Paths returns a copy of the file list.
func (s *Sequence) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Next decodes the next file. It returns io.EOF after the last file of a
// non-looping sequence.
func (s *Sequence) Next() (*ggfx.Frame, error) {
	s.mu.Lock()
	if s.next >= len(s.paths) {
		if !s.loop || len(s.paths) == 0 {
			s.mu.Unlock()
			return nil, io.EOF
		}
		s.next = 0
	}
	path := s.paths[s.next]
	s.next++
	s.mu.Unlock()

	return LoadFile(path)
}

// Reset rewinds the sequence to its first file.
func (s *Sequence) Reset() {
	s.mu.Lock()
	s.next = 0
	s.mu.Unlock()
}
