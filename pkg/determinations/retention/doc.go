// Package retention enforces retention policies on stored
// determinations.
//
// Pruning runs in two phases: age-based (delete records older than the
// retention period) and count-based (cap the total record count,
// deleting oldest first). Records can optionally be archived to JSON
// files before deletion. A cron-driven scheduler runs pruning cycles
// automatically.
package retention
