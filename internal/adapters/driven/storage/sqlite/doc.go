// Package sqlite provides an SQLite-based implementation of driven.RunReportStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Every completed sync or incremental run is
// stored as a JSON document, with one indexed row per supplier outcome so the CLI can
// answer per-supplier questions such as "when did this supplier last succeed".
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database lives at <state dir>/runs.db. The state directory comes from
// [state].dir in the configuration and defaults to ~/.pim-etl/state.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
