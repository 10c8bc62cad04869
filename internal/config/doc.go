// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package config loads Homestock configuration with Koanf v2.
//
// Sources are layered with increasing priority:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/homestock/config.yaml)
//  3. Environment variables (HTTP_PORT, STORE_DRIVER, NATS_URL, ...)
//
// Environment variables use flat legacy-style names that envTransformFunc
// maps onto the nested koanf paths; unknown variables are ignored.
//
// Example config.yaml:
//
//	server:
//	  port: 8080
//	store:
//	  driver: nats
//	  app_id: my-house
//	nats:
//	  embedded_server: true
//	  store_dir: /data/nats
//	export:
//	  sink: s3
//	  s3_bucket: inventory-exports
package config
