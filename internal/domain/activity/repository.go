package activity

import (
	"context"
	"time"
)

// Repository describes ledger persistence needs from use cases. The live
// ledger is the single source of truth between durable saves.
type Repository interface {
	Upsert(ctx context.Context, record Record) error
	Get(ctx context.Context, guildID, userID string) (Record, bool, error)
	Snapshot(ctx context.Context) (Snapshot, error)
	Replace(ctx context.Context, snapshot Snapshot) error
	Prune(ctx context.Context, olderThan time.Time) (int, error)
	Len(ctx context.Context) (int, error)
}
