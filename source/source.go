// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package source

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/gogpu/ggfx"
)

// ErrUnsupported is returned for content that is not a supported image.
var ErrUnsupported = errors.New("source: unsupported image type")

// headerSize is the number of bytes filetype needs to identify a file.
const headerSize = 262

// supported lists the sniffed extensions that have a registered decoder.
var supported = map[string]bool{
	"png":  true,
	"jpg":  true,
	"gif":  true,
	"bmp":  true,
	"tif":  true,
	"webp": true,
}

// Sniff identifies the image type from the first bytes of a file and
// returns its canonical extension.
func Sniff(head []byte) (string, error) {
	kind, err := filetype.Match(head)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if kind == filetype.Unknown || !supported[kind.Extension] {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, describe(kind.MIME.Value))
	}
	return kind.Extension, nil
}

func describe(mime string) string {
	if mime == "" {
		return "unknown content"
	}
	return mime
}

// Decode reads one image from r into a new RGBA8 frame.
func Decode(r io.Reader) (*ggfx.Frame, error) {
	br := bufio.NewReaderSize(r, 4096)
	head, err := br.Peek(headerSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	ext, err := Sniff(head)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", ext, err)
	}
	return FromImage(img), nil
}

// LoadFile decodes the image file at path.
func LoadFile(path string) (*ggfx.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ggfx.Logger().Debug("source: loaded", "path", path, "frame", frame.String())
	return frame, nil
}

// FromImage copies img into a new RGBA8 frame.
func FromImage(img image.Image) *ggfx.Frame {
	return ggfx.FromImage(img)
}

// Solid returns a width x height frame filled with c.
func Solid(width, height int, c color.Color) *ggfx.Frame {
	f := ggfx.NewFrame(width, height, ggfx.FormatRGBA8)
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	f.Fill(color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A})
	return f
}

// Resize returns f scaled to width x height with bilinear filtering.
func Resize(f *ggfx.Frame, width, height int) *ggfx.Frame {
	return f.Resize(width, height)
}

// Fit scales f to fit within maxWidth x maxHeight, keeping the aspect
// ratio. Frames that already fit are cloned unchanged.
func Fit(f *ggfx.Frame, maxWidth, maxHeight int) *ggfx.Frame {
	if f.Width <= maxWidth && f.Height <= maxHeight {
		return f.Clone()
	}
	w, h := maxWidth, f.Height*maxWidth/f.Width
	if h > maxHeight {
		w, h = f.Width*maxHeight/f.Height, maxHeight
	}
	return f.Resize(max(w, 1), max(h, 1))
}
