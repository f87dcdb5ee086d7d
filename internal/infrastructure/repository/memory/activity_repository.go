package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/activity"
)

// ActivityRepository is the in-memory activity ledger. Reads hand out
// copies; the internal map never escapes.
type ActivityRepository struct {
	mu    sync.RWMutex
	items map[string]activity.Record
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{
		items: make(map[string]activity.Record),
	}
}

func (r *ActivityRepository) Upsert(_ context.Context, record activity.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.items[record.Key()] = record
	r.mu.Unlock()

	return nil
}

func (r *ActivityRepository) Get(_ context.Context, guildID, userID string) (activity.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[activity.Key(guildID, userID)]
	if !ok {
		return activity.Record{}, false, nil
	}

	return record, true, nil
}

func (r *ActivityRepository) Snapshot(_ context.Context) (activity.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := activity.Snapshot{Records: make(map[string]activity.Record, len(r.items))}
	for key, record := range r.items {
		out.Records[key] = record
	}

	return out, nil
}

func (r *ActivityRepository) Replace(_ context.Context, snapshot activity.Snapshot) error {
	items := make(map[string]activity.Record, len(snapshot.Records))
	for key, record := range snapshot.Records {
		items[key] = record
	}

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()

	return nil
}

func (r *ActivityRepository) Prune(_ context.Context, olderThan time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, record := range r.items {
		if record.LastActivity.Before(olderThan) {
			delete(r.items, key)
			removed++
		}
	}

	return removed, nil
}

func (r *ActivityRepository) Len(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}
