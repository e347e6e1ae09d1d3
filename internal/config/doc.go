// Package config handles configuration loading, parsing, and validation
// from environment variables (prefixed HABIT_) and an optional YAML file.
// Invalid settings are reported as a *ConfigurationError so the server
// can refuse to start.
package config
