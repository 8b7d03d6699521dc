// Package store persists pipelines, templates, TA profiles, assignments, and
// collaborations in SQLite and exposes helpers for driving their lifecycle.
//
// The Store manages database connections, schema migrations, stats queries,
// and the optimistic-concurrency rules for pipeline saves: every pipeline row
// carries a version counter and an update whose base version is stale is
// rejected with a conflict error rather than silently overwriting another
// editor's work. Stage lists are stored as JSON documents on the pipeline row;
// stage config payloads are opaque to the store.
//
// Absence of a row is a valid state for lookups and is returned as (nil, nil);
// operations that require an existing row report not-found explicitly. Storage
// failures are tagged with the persistence error marker so callers can
// distinguish them from logic errors and retry.
//
// Treat this package as the single source of truth for lifecycle enums; when
// you add statuses or fields, add a migration under migrations/.
package store
