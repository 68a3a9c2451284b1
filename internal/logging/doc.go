// Package logging builds the slog loggers used throughout reelforge and
// defines the standardized attribute vocabulary (component, job_id, row,
// platform, ...) that keeps console and JSON output greppable.
package logging
