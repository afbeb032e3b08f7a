// Package determinations provides persistence of eligibility
// determinations for audit and review.
//
// Every recorded determination gets a unique id and a recorded-at
// timestamp; the determination payload itself is stored as produced by
// the engine, so a stored record replays byte-identically.
//
// # Architecture
//
// The package consists of:
//
//   - Recorder: assigns identity and persists determinations
//   - Storage: pluggable backend interface (SQLite, in-memory)
//   - retention: age and count based pruning on a cron schedule
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	recorder := determinations.NewRecorder(store, nil)
//	stored, err := recorder.Record(ctx, "patient-123", det)
package determinations
