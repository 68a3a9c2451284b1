// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"reelforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.VideosDir = filepath.Join(base, "videos")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateFile = filepath.Join(base, "state.json")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Sheets.SpreadsheetID = "test-spreadsheet"
	cfg.Secrets.Provider = "env"
	cfg.Run.DelaySeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithSpreadsheetID overrides the spreadsheet id on the test config.
func WithSpreadsheetID(id string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sheets.SpreadsheetID = id
	}
}

// WithSchedule overrides the schedule section on the test config.
func WithSchedule(sched config.Schedule) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Schedule = sched
	}
}
