// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package logging provides centralized zerolog-based structured logging for Homestock.
//
// A single global logger is configured once at startup and shared by every
// package. JSON output is the default; console output is available for local
// development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Operation failed")
//	logging.Ctx(ctx).Info().Str("item_id", id).Msg("Item updated")
//
// # Adapters
//
// Two adapters route third-party logging through the same zerolog sink:
//   - NewSlogLogger for libraries that expect *slog.Logger (sutureslog)
//   - NewWatermillLogger for the watermill change-feed pub/sub
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging
