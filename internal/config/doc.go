// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for toolverse.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - FinanceConfig: Default currency and exchange rate table
//   - ImageConfig, AudioConfig, PDFConfig: Per-category tool defaults
//   - HistoryConfig: Run history store settings
//   - ServerConfig: Local HTTP API settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TOOLVERSE_*), including values from .env
//   - ~/.toolverse/config.toml
//   - ~/.toolverse/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//
// Read and change settings by dotted key:
//
//	v, _ := cfg.Get("image.jpeg_quality")
//	_ = cfg.Set("server.addr", "127.0.0.1:9000")
//	_ = config.Save(cfg)
package config
