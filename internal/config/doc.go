// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// AutoReport client.
//
// TOML is the primary format; YAML and JSON files are accepted as well.
// Values are resolved as defaults, then the config file, then environment
// variables, and the result is validated.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (AUTOREPORT_*)
//   - ~/.autoreport/config.toml, config.yaml or config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	mode := cfg.Chat.Mode()
package config
