// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package source produces frames for pipeline sources: decoded image
// files, in-memory images, solid colours and numbered image sequences.
//
// Files are identified by their content, not their extension. PNG, JPEG,
// GIF, BMP, TIFF and WebP are supported.
package source
