// Package catalog provides SQLite-backed bookkeeping for written summaries.
//
// Every summary file the CLI writes can be recorded together with its
// opcode histogram, keyed by the summary digest.
//
// # Guarantees
//
// Idempotency
//   - summaries.digest is UNIQUE; recording the same digest twice is a no-op
//   - The histogram of a digest is written once, with the summary row
//
// Deterministic ordering
//   - Entries are listed ORDER BY seq ASC, digest ASC COLLATE BINARY
//   - Histograms are listed ORDER BY rank ASC
//   - No wall-clock timestamps are stored
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package catalog
