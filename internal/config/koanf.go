// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/homestock/config.yaml",
	"/etc/homestock/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultCollectionTemplate is the shared household collection.
const DefaultCollectionTemplate = "artifacts/{app_id}/public/data/inventory"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "127.0.0.1",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			JWTSecret:           "",
			SessionTimeout:      24 * time.Hour,
			RateLimitReqs:       100,
			RateLimitWindow:     time.Minute,
			AuthRateLimitReqs:   10,
			CORSOrigins:         []string{"*"},
			WSMessagesPerSecond: 10,
			WSBurst:             20,
		},
		Store: StoreConfig{
			Driver:             StoreDriverBadger,
			AppID:              "default-app-id",
			CollectionTemplate: DefaultCollectionTemplate,
			BadgerPath:         "/data/homestock",
			OperationTimeout:   10 * time.Second,
		},
		NATS: NATSConfig{
			URL:                "nats://127.0.0.1:4222",
			EmbeddedServer:     false,
			Host:               "127.0.0.1",
			Port:               4222,
			StoreDir:           "/data/nats",
			MaxMemory:          64 << 20,
			MaxStore:           1 << 30,
			Bucket:             "homestock",
			Replicas:           1,
			ConnectTimeout:     5 * time.Second,
			MaxReconnects:      -1,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Export: ExportConfig{
			Sink:      ExportSinkNone,
			Directory: "/data/exports",
			S3Prefix:  "exports/",
			S3Region:  "us-east-1",
		},
		Imaging: ImagingConfig{
			MaxDimension:   500,
			Quality:        80,
			MaxUploadBytes: 10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file
// and environment variables, in that order of precedence.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"jwt_secret":             "security.jwt_secret",
	"session_timeout":        "security.session_timeout",
	"rate_limit_requests":    "security.rate_limit_reqs",
	"rate_limit_window":      "security.rate_limit_window",
	"disable_rate_limit":     "security.rate_limit_disabled",
	"auth_rate_limit":        "security.auth_rate_limit_reqs",
	"cors_origins":           "security.cors_origins",
	"ws_messages_per_second": "security.ws_messages_per_second",
	"ws_burst":               "security.ws_burst",

	// Store
	"store_driver":              "store.driver",
	"app_id":                    "store.app_id",
	"store_collection_template": "store.collection_template",
	"badger_path":               "store.badger_path",
	"badger_in_memory":          "store.badger_in_memory",
	"store_operation_timeout":   "store.operation_timeout",

	// NATS
	"nats_url":                  "nats.url",
	"nats_embedded":             "nats.embedded_server",
	"nats_host":                 "nats.host",
	"nats_port":                 "nats.port",
	"nats_store_dir":            "nats.store_dir",
	"nats_max_memory":           "nats.max_memory",
	"nats_max_store":            "nats.max_store",
	"nats_bucket":               "nats.bucket",
	"nats_replicas":             "nats.replicas",
	"nats_connect_timeout":      "nats.connect_timeout",
	"nats_max_reconnects":       "nats.max_reconnects",
	"nats_breaker_max_failures": "nats.breaker_max_failures",
	"nats_breaker_timeout":      "nats.breaker_timeout",

	// Export
	"export_sink":              "export.sink",
	"export_dir":               "export.directory",
	"export_s3_bucket":         "export.s3_bucket",
	"export_s3_prefix":         "export.s3_prefix",
	"export_s3_region":         "export.s3_region",
	"export_s3_endpoint":       "export.s3_endpoint",
	"export_s3_use_path_style": "export.s3_use_path_style",
	"export_s3_access_key_id":  "export.s3_access_key_id",
	"export_s3_secret_key":     "export.s3_secret_access_key",

	// Imaging
	"photo_max_dimension":    "imaging.max_dimension",
	"photo_quality":          "imaging.quality",
	"photo_max_upload_bytes": "imaging.max_upload_bytes",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps flat environment variable names onto koanf paths.
// Unmapped variables return "" and are skipped.
//
//   - HTTP_PORT -> server.port
//   - STORE_DRIVER -> store.driver
//   - EXPORT_S3_BUCKET -> export.s3_bucket
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
