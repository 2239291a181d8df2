// Package repository defines the data access interfaces for switchmap.
//
// This package provides the repository abstraction for persisting and
// retrieving discovery runs. The actual implementation is in the sqlite
// subpackage.
//
// # RunStore Interface
//
// RunStore covers the lifecycle of stored runs: saving a finished run,
// fetching one by id or the latest, listing summaries newest first, and
// pruning old runs down to a retention count.
//
// # SQLite Implementation
//
// The sqlite implementation uses a single-connection modernc.org/sqlite
// database in WAL mode. Runs are one row each; hosts and links live in
// child tables keyed by run id, with host ordinals preserving the
// completion order the graph projection depends on. Schema migration
// runs on open.
package repository
