// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package config

import (
	"strings"
	"time"
)

// Store drivers.
const (
	StoreDriverMemory = "memory"
	StoreDriverBadger = "badger"
	StoreDriverNATS   = "nats"
)

// Export sinks.
const (
	ExportSinkNone = "none"
	ExportSinkFile = "file"
	ExportSinkS3   = "s3"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	NATS     NATSConfig     `koanf:"nats"`
	Export   ExportConfig   `koanf:"export"`
	Imaging  ImagingConfig  `koanf:"imaging"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, production
}

// SecurityConfig holds session and request throttling settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. When empty a random per-process
	// secret is generated, which invalidates tokens on restart.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AuthRateLimitReqs int           `koanf:"auth_rate_limit_reqs"` // per window, sign-in endpoints
	CORSOrigins       []string      `koanf:"cors_origins"`

	// Inbound WebSocket message throttling, per client.
	WSMessagesPerSecond float64 `koanf:"ws_messages_per_second"`
	WSBurst             int     `koanf:"ws_burst"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	AppID  string `koanf:"app_id"`

	// CollectionTemplate builds the collection path. {app_id} and {uid}
	// are substituted; without {uid} the collection is shared by everyone
	// signed in to the same app.
	CollectionTemplate string `koanf:"collection_template"`

	BadgerPath     string `koanf:"badger_path"`
	BadgerInMemory bool   `koanf:"badger_in_memory"`

	OperationTimeout time.Duration `koanf:"operation_timeout"`
}

// CollectionPath resolves the collection template for uid.
func (s StoreConfig) CollectionPath(uid string) string {
	return strings.NewReplacer("{app_id}", s.AppID, "{uid}", uid).Replace(s.CollectionTemplate)
}

// NATSConfig configures the JetStream key-value record store.
type NATSConfig struct {
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server with JetStream.
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	Bucket         string        `koanf:"bucket"`
	Replicas       int           `koanf:"replicas"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	MaxReconnects  int           `koanf:"max_reconnects"`

	// Circuit breaker around KV writes.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// ExportConfig configures where server-side CSV exports are written.
// Browser downloads are always available regardless of Sink.
type ExportConfig struct {
	Sink      string `koanf:"sink"`
	Directory string `koanf:"directory"`

	S3Bucket       string `koanf:"s3_bucket"`
	S3Prefix       string `koanf:"s3_prefix"`
	S3Region       string `koanf:"s3_region"`
	S3Endpoint     string `koanf:"s3_endpoint"`
	S3UsePathStyle bool   `koanf:"s3_use_path_style"`

	// Static credentials; empty falls back to the AWS default chain.
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`
}

// ImagingConfig bounds photo attachments.
type ImagingConfig struct {
	MaxDimension   int   `koanf:"max_dimension"`
	Quality        int   `koanf:"quality"` // JPEG quality 1-100
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
