// Package config loads runtime configuration for the strapi CLI.
//
// # Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file, given with --config or found as config.yaml,
//     config.json or config.toml in the working directory or the user
//     config directory (e.g. ~/.config/gostrapi).
//  3. Environment variables prefixed with STRAPI_, e.g. STRAPI_BASE_URL.
//  4. Command-line flags registered with RegisterFlags, when set explicitly.
//
// # File schema
//
// Durations are strings like "30s":
//
//	base_url: http://localhost:1337
//	timeout: 30s
//	max_redirects: 10
//	state_dsn: /home/me/.config/gostrapi/state.db
//	log_level: warn
//	log_format: console
//
// LoadConfig validates the result; an invalid value fails the load.
package config
