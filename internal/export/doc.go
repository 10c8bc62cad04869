// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package export renders the inventory as CSV and delivers it to a sink.
//
// The CSV layout is fixed: a header row, then one row per item in display
// order. Free-text columns are always quoted; ID, ExpirationDate and
// CreatedAt never are. Sinks write a rendered File to a local directory
// (FileSink) or an S3-compatible bucket (S3Sink).
package export
