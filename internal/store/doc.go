// Package store persists Genesis session state.
//
// State is three independent JSON blobs: the library, the board and the
// activity log. Each is read once when a session opens and rewritten after
// every mutation that touches it. A blob that was never written reads as
// absent, and the engine falls back to its defaults.
//
// # Backends
//
//   - Store: SQLite via mattn/go-sqlite3, one row per blob
//   - Memory: a map, for tests and --memory sessions
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
