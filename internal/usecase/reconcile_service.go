package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gridironfl/gridiron-bot/internal/domain/activity"
	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

type ReconcileConfig struct {
	GuildID           string
	LeagueRoleID      string
	ActiveRoleID      string
	InactiveRoleID    string
	InactiveThreshold time.Duration
	Workers           int
}

type CycleResult struct {
	Skipped bool
	Members int
	Changes int
}

// ReconcileService runs the periodic sweep aligning each league member's
// role markers with their computed activity state. Cycles are serialized:
// two passes never overlap for the same guild.
type ReconcileService struct {
	repo    activity.Repository
	gateway Gateway
	cfg     ReconcileConfig
	logger  *logging.Logger
	now     func() time.Time

	mu sync.Mutex
}

func NewReconcileService(repo activity.Repository, gateway Gateway, cfg ReconcileConfig, logger *logging.Logger) (*ReconcileService, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if cfg.GuildID == "" || cfg.LeagueRoleID == "" || cfg.ActiveRoleID == "" || cfg.InactiveRoleID == "" {
		return nil, fmt.Errorf("guild and role ids are required")
	}
	if cfg.InactiveThreshold <= 0 {
		cfg.InactiveThreshold = 26 * time.Hour
	}
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ReconcileService{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// RunCycle performs one reconciliation pass over the guild. Per-member
// faults are isolated: one member's failed role mutation or notification
// never aborts the remaining members.
func (s *ReconcileService) RunCycle(ctx context.Context) (CycleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.RunCycle")
	defer span.End()

	if !s.rolesResolvable(ctx) {
		// Role misconfiguration: skipping the whole cycle beats partial
		// churn with wrong role identifiers.
		s.logger.WarnContext(ctx, "required roles not found for activity check", "guild_id", s.cfg.GuildID)
		return CycleResult{Skipped: true}, nil
	}

	members, err := s.gateway.FetchMembers(ctx, s.cfg.GuildID)
	if err != nil {
		return CycleResult{}, fmt.Errorf("fetch members: %w", err)
	}

	now := s.now()
	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return CycleResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var changes atomic.Int64
	var processed int
	var wg sync.WaitGroup
	for _, m := range members {
		if m.Bot || !m.HasRole(s.cfg.LeagueRoleID) {
			continue
		}
		processed++

		m := m
		wg.Add(1)
		task := func() {
			defer wg.Done()
			changes.Add(int64(s.reconcileMember(ctx, m, now)))
		}
		if submitErr := pool.Submit(task); submitErr != nil {
			wg.Done()
			s.logger.ErrorContext(ctx, "submit reconcile task", "error", submitErr, "user_id", m.UserID)
		}
	}
	wg.Wait()

	result := CycleResult{Members: processed, Changes: int(changes.Load())}
	if result.Changes > 0 {
		s.logger.InfoContext(ctx, "activity check complete", "changes", result.Changes, "members", result.Members)
	}

	return result, nil
}

func (s *ReconcileService) rolesResolvable(ctx context.Context) bool {
	for _, roleID := range []string{s.cfg.LeagueRoleID, s.cfg.ActiveRoleID, s.cfg.InactiveRoleID} {
		_, ok, err := s.gateway.ResolveRole(ctx, s.cfg.GuildID, roleID)
		if err != nil || !ok {
			return false
		}
	}

	return true
}

// reconcileMember drives one member through the state machine and returns
// the number of role transitions applied. All faults are logged and
// swallowed here; the unit of work is the member.
func (s *ReconcileService) reconcileMember(ctx context.Context, m member.Member, now time.Time) int {
	record, tracked, err := s.repo.Get(ctx, s.cfg.GuildID, m.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "read activity record", "error", err, "user_id", m.UserID)
		return 0
	}

	isActive := m.HasRole(s.cfg.ActiveRoleID)
	isInactive := m.HasRole(s.cfg.InactiveRoleID)

	// Brand-new member: silent onboarding, no notification.
	if !tracked {
		if isActive {
			return 0
		}
		if !s.grantActive(ctx, m, isInactive) {
			return 0
		}
		s.logger.InfoContext(ctx, "added active role to new member", "user_id", m.UserID, "username", m.Username)
		return 1
	}

	elapsed := now.Sub(record.LastActivity)
	if elapsed >= s.cfg.InactiveThreshold {
		if !isActive {
			// Already inactive or unassigned: idempotent, no re-toggle,
			// no re-notify.
			return 0
		}
		if err := s.gateway.RemoveRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.ActiveRoleID); err != nil {
			s.logger.ErrorContext(ctx, "remove active role", "error", err, "user_id", m.UserID)
			return 0
		}
		if err := s.gateway.AddRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.InactiveRoleID); err != nil {
			s.logger.ErrorContext(ctx, "add inactive role", "error", err, "user_id", m.UserID)
			return 0
		}
		s.notify(ctx, m, inactiveNoticeMessage(m.Username, s.cfg.InactiveThreshold, now))
		s.logger.InfoContext(ctx, "moved member to inactive", "user_id", m.UserID, "username", m.Username, "hours_since_activity", int(elapsed.Hours()))
		return 1
	}

	switch {
	case isInactive:
		if err := s.gateway.RemoveRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.InactiveRoleID); err != nil {
			s.logger.ErrorContext(ctx, "remove inactive role", "error", err, "user_id", m.UserID)
			return 0
		}
		if !isActive {
			if err := s.gateway.AddRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.ActiveRoleID); err != nil {
				s.logger.ErrorContext(ctx, "add active role", "error", err, "user_id", m.UserID)
				return 0
			}
			s.notify(ctx, m, welcomeBackMessage(m.Username, now))
			s.logger.InfoContext(ctx, "moved member back to active", "user_id", m.UserID, "username", m.Username)
		}
		// isActive && isInactive is the dual-marker anomaly: the member is
		// recently active, so dropping the inactive marker normalizes the
		// pair without a notification.
		return 1
	case !isActive:
		if !s.grantActive(ctx, m, false) {
			return 0
		}
		s.logger.InfoContext(ctx, "added active role", "user_id", m.UserID, "username", m.Username)
		return 1
	default:
		return 0
	}
}

func (s *ReconcileService) grantActive(ctx context.Context, m member.Member, dropInactive bool) bool {
	if dropInactive {
		if err := s.gateway.RemoveRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.InactiveRoleID); err != nil {
			s.logger.ErrorContext(ctx, "remove inactive role", "error", err, "user_id", m.UserID)
			return false
		}
	}
	if err := s.gateway.AddRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.ActiveRoleID); err != nil {
		s.logger.ErrorContext(ctx, "add active role", "error", err, "user_id", m.UserID)
		return false
	}

	return true
}

// notify delivers a best-effort direct message. Delivery failures are logged
// at debug level and never retried: retrying would risk duplicate DMs under
// flaky delivery.
func (s *ReconcileService) notify(ctx context.Context, m member.Member, msg Message) {
	if err := s.gateway.SendDirectMessage(ctx, m.UserID, msg); err != nil {
		s.logger.DebugContext(ctx, "could not send dm", "error", err, "user_id", m.UserID, "username", m.Username)
	}
}
