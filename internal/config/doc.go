// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It decides which endpoint profile the
// service resolves and which .env files feed the resolution.
package config
