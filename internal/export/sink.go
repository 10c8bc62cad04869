// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomtom215/homestock/internal/config"
)

// ErrNoSink is returned by NewSink when server-side export is disabled.
var ErrNoSink = errors.New("export: no sink configured")

// Sink stores a rendered export and returns where it went.
type Sink interface {
	Name() string
	Write(ctx context.Context, f File) (location string, err error)
}

// NewSink builds the sink selected by cfg.
func NewSink(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch cfg.Sink {
	case config.ExportSinkFile:
		return NewFileSink(cfg.Directory)
	case config.ExportSinkS3:
		return NewS3Sink(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3UsePathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case config.ExportSinkNone, "":
		return nil, ErrNoSink
	default:
		return nil, fmt.Errorf("unknown export sink %q", cfg.Sink)
	}
}

// FileSink writes exports into a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, errors.New("export directory required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Name() string { return config.ExportSinkFile }

// Write stores f atomically; a second export on the same day replaces the first.
func (s *FileSink) Write(_ context.Context, f File) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(f.Name))
	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
