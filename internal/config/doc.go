// Package config loads, normalizes, and validates the TOML configuration
// for reelforge. Load falls back to defaults when no file exists so the
// CLI stays usable before 'config init' has run; Validate enforces the
// fields a run cannot proceed without.
package config
