// Package logging centralizes slog handler construction and the structured
// field vocabulary used across the pipeline.
//
// Loggers are built once at process start from configuration and passed into
// each component; nothing in this repository logs through slog.Default.
// Context helpers mirror the services package so record IDs, step names, and
// correlation identifiers appear uniformly on every log line.
package logging
