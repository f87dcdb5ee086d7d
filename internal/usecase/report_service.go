package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/activity"
	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/platform/cache"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

// InactiveReport backs the "show inactive members" command.
type InactiveReport struct {
	Inactive   []member.Member
	Unassigned []member.Member
	Threshold  time.Duration
}

// LeagueStats backs the "league stats" command.
type LeagueStats struct {
	TotalMembers    int
	ActiveMembers   int
	InactiveMembers int
	Unassigned      int
	ActivityRate    int
	TrackedRecords  int
}

// ReportService answers membership queries derived from the gateway view
// and the activity ledger.
type ReportService struct {
	repo    activity.Repository
	gateway Gateway
	cfg     ReconcileConfig
	cache   *cache.Store
	logger  *logging.Logger
	now     func() time.Time
}

func NewReportService(repo activity.Repository, gateway Gateway, cfg ReconcileConfig, statsCache *cache.Store, logger *logging.Logger) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ReportService{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		cache:   statsCache,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *ReportService) InactiveReport(ctx context.Context) (InactiveReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.InactiveReport")
	defer span.End()

	members, err := s.leagueMembers(ctx)
	if err != nil {
		return InactiveReport{}, err
	}

	out := InactiveReport{Threshold: s.cfg.InactiveThreshold}
	for _, m := range members {
		switch member.StateOf(m, s.cfg.ActiveRoleID, s.cfg.InactiveRoleID) {
		case member.RoleStateInactive:
			out.Inactive = append(out.Inactive, m)
		case member.RoleStateUnassigned:
			out.Unassigned = append(out.Unassigned, m)
		}
	}

	return out, nil
}

func (s *ReportService) LeagueStats(ctx context.Context) (LeagueStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.LeagueStats")
	defer span.End()

	if s.cache == nil {
		return s.computeStats(ctx)
	}

	v, err := s.cache.GetOrLoad(ctx, "stats:"+s.cfg.GuildID, func(ctx context.Context) (any, error) {
		return s.computeStats(ctx)
	})
	if err != nil {
		return LeagueStats{}, err
	}

	stats, _ := v.(LeagueStats)
	return stats, nil
}

func (s *ReportService) computeStats(ctx context.Context) (LeagueStats, error) {
	members, err := s.leagueMembers(ctx)
	if err != nil {
		return LeagueStats{}, err
	}

	stats := LeagueStats{TotalMembers: len(members)}
	for _, m := range members {
		switch member.StateOf(m, s.cfg.ActiveRoleID, s.cfg.InactiveRoleID) {
		case member.RoleStateActive:
			stats.ActiveMembers++
		case member.RoleStateInactive:
			stats.InactiveMembers++
		default:
			stats.Unassigned++
		}
	}
	if stats.TotalMembers > 0 {
		stats.ActivityRate = stats.ActiveMembers * 100 / stats.TotalMembers
	}

	tracked, err := s.repo.Len(ctx)
	if err != nil {
		return LeagueStats{}, fmt.Errorf("count activity records: %w", err)
	}
	stats.TrackedRecords = tracked

	return stats, nil
}

// ForceActive is the admin override: it stamps fresh activity for the member
// and flips their markers to active immediately instead of waiting for the
// next cycle.
func (s *ReportService) ForceActive(ctx context.Context, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.ForceActive")
	defer span.End()

	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	members, err := s.gateway.FetchMembers(ctx, s.cfg.GuildID)
	if err != nil {
		return fmt.Errorf("fetch members: %w", err)
	}

	var target member.Member
	var found bool
	for _, m := range members {
		if m.UserID == userID {
			target = m
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: member=%s", ErrNotFound, userID)
	}
	if !target.HasRole(s.cfg.LeagueRoleID) {
		return fmt.Errorf("%w: member %s is not a league participant", ErrInvalidInput, userID)
	}

	now := s.now()
	record := activity.Record{
		UserID:       userID,
		GuildID:      s.cfg.GuildID,
		LastActivity: now,
		LastUpdated:  now,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("stamp activity record: %w", err)
	}

	if target.HasRole(s.cfg.InactiveRoleID) {
		if err := s.gateway.RemoveRole(ctx, s.cfg.GuildID, userID, s.cfg.InactiveRoleID); err != nil {
			return fmt.Errorf("remove inactive role: %w", err)
		}
	}
	if !target.HasRole(s.cfg.ActiveRoleID) {
		if err := s.gateway.AddRole(ctx, s.cfg.GuildID, userID, s.cfg.ActiveRoleID); err != nil {
			return fmt.Errorf("add active role: %w", err)
		}
	}

	if s.cache != nil {
		s.cache.Delete(ctx, "stats:"+s.cfg.GuildID)
	}
	s.logger.InfoContext(ctx, "forced member to active", "user_id", userID, "username", target.Username)

	return nil
}

func (s *ReportService) leagueMembers(ctx context.Context) ([]member.Member, error) {
	members, err := s.gateway.FetchMembers(ctx, s.cfg.GuildID)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}

	out := make([]member.Member, 0, len(members))
	for _, m := range members {
		if m.Bot || !m.HasRole(s.cfg.LeagueRoleID) {
			continue
		}
		out = append(out, m)
	}

	return out, nil
}
