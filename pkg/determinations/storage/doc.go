// Package storage provides determination storage backends.
//
// Two implementations are included:
//
//   - SQLiteStorage: production backend with WAL mode and indexed
//     filter columns; the determination payload is stored as JSON
//   - MemoryStorage: in-memory map for testing
//
// Both are safe for concurrent use.
package storage
