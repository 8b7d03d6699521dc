// Package notifications delivers assignment and workload events via
// pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles let operators silence categories they do not
// care about without losing the rest.
//
// Extend this package if you need alternative transports; callers depend only
// on the Service interface.
package notifications
