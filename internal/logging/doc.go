// Package logging constructs the slog loggers used across the CLI and
// provides thin attribute aliases so call sites stay terse.
package logging
