// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package config

import (
	"fmt"
	"net/url"
	"strings"
)

const minJWTSecretLength = 32

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateStore,
		c.validateNATS,
		c.validateExport,
		c.validateImaging,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.JWTSecret != "" && len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.IsProduction() && s.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENVIRONMENT=production")
	}
	if s.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs <= 0 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if s.WSMessagesPerSecond <= 0 || s.WSBurst <= 0 {
		return fmt.Errorf("WS_MESSAGES_PER_SECOND and WS_BURST must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	s := c.Store
	switch s.Driver {
	case StoreDriverMemory:
	case StoreDriverBadger:
		if s.BadgerPath == "" && !s.BadgerInMemory {
			return fmt.Errorf("BADGER_PATH is required when STORE_DRIVER=badger")
		}
	case StoreDriverNATS:
		if c.NATS.Bucket == "" {
			return fmt.Errorf("NATS_BUCKET is required when STORE_DRIVER=nats")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, badger, nats; got %q", s.Driver)
	}
	if s.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	if strings.TrimSpace(s.CollectionTemplate) == "" {
		return fmt.Errorf("STORE_COLLECTION_TEMPLATE is required")
	}
	if s.OperationTimeout <= 0 {
		return fmt.Errorf("STORE_OPERATION_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if c.Store.Driver != StoreDriverNATS {
		return nil
	}
	n := c.NATS
	if n.EmbeddedServer {
		if n.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		if n.Port < 1 || n.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", n.Port)
		}
		return nil
	}
	u, err := url.Parse(n.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("NATS_URL is invalid: %q", n.URL)
	}
	if n.Replicas < 1 {
		return fmt.Errorf("NATS_REPLICAS must be at least 1")
	}
	return nil
}

func (c *Config) validateExport() error {
	e := c.Export
	switch e.Sink {
	case ExportSinkNone, "":
	case ExportSinkFile:
		if e.Directory == "" {
			return fmt.Errorf("EXPORT_DIR is required when EXPORT_SINK=file")
		}
	case ExportSinkS3:
		if e.S3Bucket == "" {
			return fmt.Errorf("EXPORT_S3_BUCKET is required when EXPORT_SINK=s3")
		}
		if e.S3Endpoint != "" {
			if u, err := url.Parse(e.S3Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("EXPORT_S3_ENDPOINT is invalid: %q", e.S3Endpoint)
			}
		}
	default:
		return fmt.Errorf("EXPORT_SINK must be one of none, file, s3; got %q", e.Sink)
	}
	return nil
}

func (c *Config) validateImaging() error {
	i := c.Imaging
	if i.MaxDimension < 1 {
		return fmt.Errorf("PHOTO_MAX_DIMENSION must be positive")
	}
	if i.Quality < 1 || i.Quality > 100 {
		return fmt.Errorf("PHOTO_QUALITY must be between 1 and 100, got %d", i.Quality)
	}
	if i.MaxUploadBytes < 1 {
		return fmt.Errorf("PHOTO_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL is invalid: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
