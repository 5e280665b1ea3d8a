// Package ledger persists each account's last known point balance between
// runs. The snapshot is loaded once at batch start and replaced wholesale at
// batch end; it is not safe for concurrent writers within a run.
package ledger

import "context"

// Snapshot maps an account key (username) to its last known balance.
type Snapshot map[string]int64

// Diff returns balance minus the stored previous value for key. An absent
// entry is a zero baseline (first-run semantics).
func Diff(s Snapshot, key string, balance int64) int64 {
	return balance - s[key]
}

// Store is the persistence contract for the ledger.
type Store interface {
	// Load returns the last saved snapshot. A missing backing store is not
	// an error; it yields an empty snapshot.
	Load(ctx context.Context) (Snapshot, error)

	// Save atomically replaces the stored snapshot.
	Save(ctx context.Context, s Snapshot) error
}
