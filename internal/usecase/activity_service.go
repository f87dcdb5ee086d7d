package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/activity"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

// SnapshotStore is the durable persistence port for the activity ledger.
type SnapshotStore interface {
	Load(ctx context.Context) (activity.Snapshot, error)
	Save(ctx context.Context, snapshot activity.Snapshot) error
}

type ActivityConfig struct {
	RetentionWindow time.Duration
	// SampleRate is the fraction of activity updates that emit a debug log
	// line. Activity updates are the hottest path in the bot, so logging
	// every one of them is off the table.
	SampleRate float64
}

// ActivityService owns the activity ledger: it is the only writer and the
// source of truth between durable saves.
type ActivityService struct {
	repo   activity.Repository
	store  SnapshotStore
	cfg    ActivityConfig
	logger *logging.Logger
	now    func() time.Time
	sample func() float64
}

func NewActivityService(repo activity.Repository, store SnapshotStore, cfg ActivityConfig, logger *logging.Logger) *ActivityService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = 30 * 24 * time.Hour
	}
	if cfg.SampleRate < 0 {
		cfg.SampleRate = 0
	}
	if cfg.SampleRate > 1 {
		cfg.SampleRate = 1
	}

	return &ActivityService{
		repo:   repo,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sample: rand.Float64,
	}
}

// RecordActivity upserts the member's last-activity timestamp. It never
// fails the caller: activity tracking must not block message processing, so
// any underlying fault is logged and swallowed.
func (s *ActivityService) RecordActivity(ctx context.Context, guildID, userID string) {
	if guildID == "" || userID == "" {
		return
	}

	now := s.now()
	record := activity.Record{
		UserID:       userID,
		GuildID:      guildID,
		LastActivity: now,
		LastUpdated:  now,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "update user activity", "error", err, "guild_id", guildID, "user_id", userID)
		return
	}

	if s.cfg.SampleRate > 0 && s.sample() < s.cfg.SampleRate {
		s.logger.DebugContext(ctx, "activity tracking working", "user_id", userID)
	}
}

func (s *ActivityService) Get(ctx context.Context, guildID, userID string) (activity.Record, bool, error) {
	record, ok, err := s.repo.Get(ctx, guildID, userID)
	if err != nil {
		return activity.Record{}, false, fmt.Errorf("get activity record: %w", err)
	}

	return record, ok, nil
}

func (s *ActivityService) TrackedCount(ctx context.Context) (int, error) {
	n, err := s.repo.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("count activity records: %w", err)
	}

	return n, nil
}

// LoadFromStore replaces the in-memory ledger with the persisted snapshot.
// Called once at startup before any timer runs.
func (s *ActivityService) LoadFromStore(ctx context.Context) (int, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load activity snapshot: %w", err)
	}
	if err := s.repo.Replace(ctx, snapshot); err != nil {
		return 0, fmt.Errorf("replace activity ledger: %w", err)
	}

	return len(snapshot.Records), nil
}

// SaveNow flushes the current ledger snapshot to the durable store.
func (s *ActivityService) SaveNow(ctx context.Context) error {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot activity ledger: %w", err)
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save activity snapshot: %w", err)
	}

	return nil
}

// Snapshot exposes a point-in-time copy for the auto-save timer.
func (s *ActivityService) Snapshot(ctx context.Context) (activity.Snapshot, error) {
	return s.repo.Snapshot(ctx)
}

// PruneStale removes records older than the retention window and persists
// immediately when anything was removed. A pruned member simply reappears
// with new-member semantics on their next message or cycle.
func (s *ActivityService) PruneStale(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActivityService.PruneStale")
	defer span.End()

	cutoff := s.now().Add(-s.cfg.RetentionWindow)
	removed, err := s.repo.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune activity records: %w", err)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.SaveNow(ctx); err != nil {
		s.logger.ErrorContext(ctx, "persist pruned ledger", "error", err)
	}
	s.logger.InfoContext(ctx, "cleaned up old activity records", "removed", removed)

	return removed, nil
}
