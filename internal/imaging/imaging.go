// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package imaging normalizes photo attachments into small inline JPEGs.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	// Decoders for image.Decode.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/tomtom215/homestock/internal/config"
)

// DataURLPrefix starts every encoded photo.
const DataURLPrefix = "data:image/jpeg;base64,"

var (
	// ErrEmpty is returned for a zero-length upload.
	ErrEmpty = errors.New("imaging: empty image")
	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("imaging: image too large")
)

// Normalizer downsizes and re-encodes photos.
type Normalizer struct {
	maxDimension int
	quality      int
	maxBytes     int64
}

// New returns a Normalizer for cfg.
func New(cfg config.ImagingConfig) *Normalizer {
	return &Normalizer{maxDimension: cfg.MaxDimension, quality: cfg.Quality, maxBytes: cfg.MaxUploadBytes}
}

// DataURL decodes raw, fits it within the max dimension and returns the
// JPEG as a data URL.
func (n *Normalizer) DataURL(raw []byte) (string, error) {
	out, err := n.Normalize(raw)
	if err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Normalize decodes raw, fits it within the max dimension and returns JPEG bytes.
func (n *Normalizer) Normalize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	if n.maxBytes > 0 && int64(len(raw)) > n.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(raw))
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), n.maxDimension)

	// JPEG has no alpha; flatten onto white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode %s as jpeg: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Fit scales w x h so the longer side is at most limit, keeping the aspect
// ratio. Images already within the limit are unchanged. limit <= 0 disables
// resizing.
func Fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w > h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
