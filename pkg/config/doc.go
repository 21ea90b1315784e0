// Package config provides configuration management for the guard engine.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Every field has a default,
// so an empty file (or no file at all) is a valid configuration.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("guard.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("guard.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GUARD_SECTION_FIELD.
// For example:
//
//   - GUARD_IDENTITY_CURRENT_USER_ID overrides identity.current_user_id
//   - GUARD_RULES_QUERIES_GUARDED_TABLE overrides rules.queries.guarded_table
//   - GUARD_AUDIT_SQLITE_DRIVER overrides audit.sqlite.driver
//   - GUARD_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and hands each
// valid reloaded Config to a callback. `guard run --watch` uses it to
// rebuild the rule tables without restarting.
//
// # Example Configuration
//
//	identity:
//	  current_user_id: "user123"
//
//	rules:
//	  files:
//	    max_read_bytes: 100000000
//	  queries:
//	    guarded_table: "users"
//	    large_select: 1000
//	  orders:
//	    premium_only_above: 10000
//
//	audit:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/audit.db"
//	    driver: "sqlite"
//	  retention:
//	    days: 30
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
