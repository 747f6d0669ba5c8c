// Package logging constructs the scanner's structured logger.
//
// All packages log through log/slog; this package only decides the
// handler (JSON or text), the minimum level, and the output writer
// from configuration.
package logging
