// Package services provides the shared error taxonomy and context helpers used
// across the pipeline and assignment components.
//
// Errors are tagged with sentinel markers (validation, not_found, conflict,
// persistence, transient) via Wrap so callers can classify failures with
// errors.Is without string matching. Persistence and transient failures are
// retryable; validation, not-found, and conflict failures require caller
// changes. Context helpers carry role, TA, and correlation identifiers for
// structured logging.
package services
