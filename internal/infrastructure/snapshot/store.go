package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/gridironfl/gridiron-bot/internal/domain/activity"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

// Persisted file layout. Timestamps are epoch millis for activity and
// RFC3339 for the human-readable update marker, matching what earlier
// versions of the bot wrote.
type persistedRecord struct {
	UserID       string `json:"userId"`
	GuildID      string `json:"guildId"`
	LastActivity int64  `json:"lastActivity"`
	LastUpdated  string `json:"lastUpdated"`
}

type persistedState struct {
	UserActivity map[string]persistedRecord `json:"userActivity"`
	LastSave     int64                      `json:"lastSave"`
}

// Store persists ledger snapshots to a single JSON file. Persistence is
// best-effort durability, not transactional: a failed save costs at most one
// auto-save window of activity.
type Store struct {
	path   string
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewStore(path string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Load reads the persisted snapshot. A missing file means a fresh start,
// and malformed content is treated the same way: startup never blocks on
// bad state, it only loses it.
func (s *Store) Load(ctx context.Context) (activity.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.InfoContext(ctx, "no existing data file found, starting fresh", "path", s.path)
			return activity.NewSnapshot(), nil
		}
		s.logger.ErrorContext(ctx, "read data file", "error", err, "path", s.path)
		return activity.NewSnapshot(), nil
	}

	var state persistedState
	if err := sonic.Unmarshal(raw, &state); err != nil {
		s.logger.WarnContext(ctx, "data file is malformed, starting fresh", "error", err, "path", s.path)
		return activity.NewSnapshot(), nil
	}

	out := activity.Snapshot{
		Records:  make(map[string]activity.Record, len(state.UserActivity)),
		LastSave: time.UnixMilli(state.LastSave),
	}
	for key, rec := range state.UserActivity {
		record := activity.Record{
			UserID:       rec.UserID,
			GuildID:      rec.GuildID,
			LastActivity: time.UnixMilli(rec.LastActivity),
		}
		if updated, parseErr := time.Parse(time.RFC3339, rec.LastUpdated); parseErr == nil {
			record.LastUpdated = updated
		}
		out.Records[key] = record
	}

	s.logger.InfoContext(ctx, "loaded bot data from storage", "records", len(out.Records))
	return out, nil
}

// Save writes the snapshot atomically, stamping the save time. The write
// goes to a temp file in the same directory followed by a rename, so readers
// never observe a partial snapshot.
func (s *Store) Save(ctx context.Context, snapshot activity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := persistedState{
		UserActivity: make(map[string]persistedRecord, len(snapshot.Records)),
		LastSave:     s.now().UnixMilli(),
	}
	for key, record := range snapshot.Records {
		state.UserActivity[key] = persistedRecord{
			UserID:       record.UserID,
			GuildID:      record.GuildID,
			LastActivity: record.LastActivity.UnixMilli(),
			LastUpdated:  record.LastUpdated.UTC().Format(time.RFC3339),
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(state); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}

	s.logger.DebugContext(ctx, "bot data saved to storage", "records", len(state.UserActivity))
	return nil
}

// StartAutoSave begins the recurring flush. The source callback supplies a
// fresh snapshot each tick; its errors, like save errors, are logged and
// swallowed.
func (s *Store) StartAutoSave(interval time.Duration, source func(context.Context) (activity.Snapshot, error)) {
	if interval <= 0 || source == nil {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				ctx := context.Background()
				snapshot, err := source(ctx)
				if err != nil {
					s.logger.Error("snapshot ledger for auto-save", "error", err)
					continue
				}
				if err := s.Save(ctx, snapshot); err != nil {
					s.logger.Error("auto-save bot data", "error", err)
				}
			}
		}
	}()

	s.logger.Info("auto-save started", "interval", interval.String())
}

// Stop halts the auto-save loop. Safe to call more than once and before
// StartAutoSave.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		if s.stop == nil {
			return
		}
		close(s.stop)
		<-s.done
		s.logger.Info("auto-save stopped")
	})
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}
