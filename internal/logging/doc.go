// Package logging constructs slog loggers with console and JSON output.
//
// The console handler renders "TIMESTAMP LEVEL component: message key=value"
// lines with group-flattened attributes; the JSON handler normalizes timestamp
// and level keys for machine consumption. Standardized field constants keep
// role, TA, and assignment identifiers consistent across components, and
// context helpers propagate them from request contexts.
package logging
