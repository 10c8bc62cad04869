// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/tomtom215/homestock/internal/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"within limit", 300, 200, 500, 300, 200},
		{"landscape", 1000, 500, 500, 500, 250},
		{"portrait", 400, 1600, 500, 125, 500},
		{"square", 800, 800, 500, 500, 500},
		{"thin strip", 5000, 2, 500, 500, 1},
		{"disabled", 4000, 3000, 0, 4000, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.limit)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Fit(%d, %d, %d) = %d x %d, want %d x %d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNormalizer_DataURL(t *testing.T) {
	n := New(config.ImagingConfig{MaxDimension: 500, Quality: 80})

	url, err := n.DataURL(pngBytes(t, 1000, 400))
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	if !strings.HasPrefix(url, DataURLPrefix) {
		t.Fatalf("missing prefix: %.40s", url)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, DataURLPrefix))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 500 || cfg.Height != 200 {
		t.Errorf("size = %d x %d, want 500 x 200", cfg.Width, cfg.Height)
	}
}

func TestNormalizer_NoUpscale(t *testing.T) {
	n := New(config.ImagingConfig{MaxDimension: 500, Quality: 80})
	out, err := n.Normalize(pngBytes(t, 40, 30))
	if err != nil {
		t.Fatal(err)
	}
	cfg, _ := jpeg.DecodeConfig(bytes.NewReader(out))
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("size = %d x %d, want 40 x 30", cfg.Width, cfg.Height)
	}
}

func TestNormalizer_Errors(t *testing.T) {
	n := New(config.ImagingConfig{MaxDimension: 500, Quality: 80, MaxUploadBytes: 64})

	if _, err := n.Normalize(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: %v", err)
	}
	if _, err := n.Normalize(bytes.Repeat([]byte{1}, 65)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("too large: %v", err)
	}
	if _, err := n.Normalize([]byte("definitely not an image")); err == nil {
		t.Error("garbage decoded")
	}
}
