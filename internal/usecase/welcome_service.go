package usecase

import (
	"context"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

type WelcomeConfig struct {
	Enabled          bool
	GuildID          string
	WelcomeChannelID string
	AutoAssignRoleID string
}

// WelcomeService handles new-member side effects: auto-assigning the landing
// role on join and greeting members when they receive the league role.
// Everything here is best-effort; a failed greeting is logged and dropped.
type WelcomeService struct {
	gateway Gateway
	cfg     WelcomeConfig
	logger  *logging.Logger
	now     func() time.Time
}

func NewWelcomeService(gateway Gateway, cfg WelcomeConfig, logger *logging.Logger) *WelcomeService {
	if logger == nil {
		logger = logging.Default()
	}

	return &WelcomeService{
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *WelcomeService) HandleMemberJoin(ctx context.Context, m member.Member) {
	if s.cfg.AutoAssignRoleID == "" {
		return
	}

	if err := s.gateway.AddRole(ctx, s.cfg.GuildID, m.UserID, s.cfg.AutoAssignRoleID); err != nil {
		s.logger.ErrorContext(ctx, "auto-assign role", "error", err, "user_id", m.UserID, "username", m.Username)
		return
	}
	s.logger.InfoContext(ctx, "auto-assigned role", "user_id", m.UserID, "username", m.Username)
}

// HandleLeagueRoleGrant greets a member who just received the league role:
// a public welcome in the configured channel plus a best-effort DM.
func (s *WelcomeService) HandleLeagueRoleGrant(ctx context.Context, m member.Member) {
	if !s.cfg.Enabled {
		return
	}

	if s.cfg.WelcomeChannelID == "" {
		s.logger.WarnContext(ctx, "welcome channel not configured")
		return
	}

	if err := s.gateway.SendChannelMessage(ctx, s.cfg.WelcomeChannelID, welcomeChannelMessage(m.Username, s.now())); err != nil {
		s.logger.ErrorContext(ctx, "send welcome message", "error", err, "user_id", m.UserID, "username", m.Username)
		return
	}

	if err := s.gateway.SendDirectMessage(ctx, m.UserID, welcomeDirectMessage(m.Username)); err != nil {
		s.logger.DebugContext(ctx, "could not send welcome dm", "error", err, "user_id", m.UserID, "username", m.Username)
	}

	s.logger.InfoContext(ctx, "sent welcome message", "user_id", m.UserID, "username", m.Username)
}
