// Package catalog persists video publication records in SQLite and exposes
// helpers for driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, atomic pending-record claims, stale-error resets, and the audit
// event trail. Records capture publish metadata, attempt counters, and error
// detail so the pipeline can resume safely after a crash.
//
// Treat this package as the single source of truth for record semantics; when
// you add new statuses or fields, update schema.sql and bump schemaVersion.
package catalog
