// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/ggfx"
)

// ErrUnsupportedFormat is returned for output paths whose extension has no
// encoder.
var ErrUnsupportedFormat = errors.New("sink: unsupported output format")

// DefaultJPEGQuality is the JPEG quality used unless WithQuality is given.
const DefaultJPEGQuality = 100

type encoder func(w io.Writer, img image.Image, quality int) error

var encoders = map[string]encoder{
	".png":  func(w io.Writer, img image.Image, _ int) error { return png.Encode(w, img) },
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".bmp":  func(w io.Writer, img image.Image, _ int) error { return bmp.Encode(w, img) },
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

func encodeTIFF(w io.Writer, img image.Image, _ int) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// File writes frames to image files. The encoder is chosen from the path
// extension: .png, .jpg, .jpeg, .bmp, .tif or .tiff.
//
// By default every frame overwrites the same file. With WithIncrement each
// frame gets its own numbered file: out.jpg becomes out1.jpg, out2.jpg and
// so on.
type File struct {
	mu        sync.Mutex
	path      string
	ext       string
	encode    encoder
	quality   int
	increment bool
	written   int
	last      string
}

// FileOption configures a File.
type FileOption func(*File)

// WithIncrement numbers the output files, starting at 1.
func WithIncrement(on bool) FileOption {
	return func(f *File) {
		f.increment = on
	}
}

// WithQuality sets the JPEG quality in [1, 100]. Other formats ignore it.
func WithQuality(q int) FileOption {
	return func(f *File) {
		f.quality = min(max(q, 1), 100)
	}
}

// NewFile creates a file writer for path.
func NewFile(path string, opts ...FileOption) (*File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	enc, ok := encoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	f := &File{path: path, ext: ext, encode: enc, quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Consume encodes frame to the next output path. The file is written to a
// temporary name first and renamed into place.
func (f *File) Consume(frame *ggfx.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path
	if f.increment {
		path = fmt.Sprintf("%s%d%s", strings.TrimSuffix(f.path, filepath.Ext(f.path)), f.written+1, filepath.Ext(f.path))
	}
	if err := f.write(path, frame.Image()); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	f.written++
	f.last = path
	ggfx.Logger().Debug("sink: wrote file", "path", path, "frame", frame.String())
	return nil
}

func (f *File) write(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ggfx-*"+f.ext)
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := f.encode(tmp, img, f.quality); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Written returns the number of frames written.
func (f *File) Written() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

// LastPath returns the path of the most recent file, or "".
func (f *File) LastPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
