package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/config"
	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/domain/news"
	"github.com/gridironfl/gridiron-bot/internal/infrastructure/repository/memory"
	"github.com/gridironfl/gridiron-bot/internal/infrastructure/snapshot"
	"github.com/gridironfl/gridiron-bot/internal/platform/cache"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
	"github.com/gridironfl/gridiron-bot/internal/usecase"
)

const (
	colorLeagueNews = 0x013369
	colorGameNews   = 0xea580c
)

// App wires the services together and owns the three timers: auto-save,
// reconciliation and feed polling. The event-wiring layer calls the On*
// entry points; everything else is timer-driven.
type App struct {
	cfg     config.Config
	logger  *logging.Logger
	gateway usecase.Gateway
	store   *snapshot.Store

	Activity  *usecase.ActivityService
	Reconcile *usecase.ReconcileService
	Reports   *usecase.ReportService
	Feeds     *usecase.FeedsService
	Welcome   *usecase.WelcomeService

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg config.Config, logger *logging.Logger, gateway usecase.Gateway, fetcher usecase.FeedFetcher) (*App, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	repo := memory.NewActivityRepository()
	store := snapshot.NewStore(cfg.DataFile, logger)

	activitySvc := usecase.NewActivityService(repo, store, usecase.ActivityConfig{
		RetentionWindow: cfg.RetentionWindow,
		SampleRate:      cfg.ActivitySampleRate,
	}, logger)

	reconcileCfg := usecase.ReconcileConfig{
		GuildID:           cfg.GuildID,
		LeagueRoleID:      cfg.RoleLeague,
		ActiveRoleID:      cfg.RoleActive,
		InactiveRoleID:    cfg.RoleInactive,
		InactiveThreshold: cfg.InactiveThreshold,
		Workers:           cfg.ReconcileWorkers,
	}
	reconcileSvc, err := usecase.NewReconcileService(repo, gateway, reconcileCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build reconcile service: %w", err)
	}

	var statsCache *cache.Store
	if cfg.StatsCacheEnabled {
		statsCache = cache.NewStore(cfg.StatsCacheTTL)
	}
	reportSvc := usecase.NewReportService(repo, gateway, reconcileCfg, statsCache, logger)

	welcomeSvc := usecase.NewWelcomeService(gateway, usecase.WelcomeConfig{
		Enabled:          cfg.WelcomeEnabled,
		GuildID:          cfg.GuildID,
		WelcomeChannelID: cfg.ChannelWelcome,
		AutoAssignRoleID: cfg.RoleAutoAssign,
	}, logger)

	var feedsSvc *usecase.FeedsService
	if fetcher != nil {
		feeds := configuredFeeds(cfg)
		if len(feeds) > 0 {
			feedsSvc = usecase.NewFeedsService(fetcher, gateway, feeds, logger)
		}
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		gateway:   gateway,
		store:     store,
		Activity:  activitySvc,
		Reconcile: reconcileSvc,
		Reports:   reportSvc,
		Feeds:     feedsSvc,
		Welcome:   welcomeSvc,
	}, nil
}

func configuredFeeds(cfg config.Config) []news.Feed {
	var out []news.Feed
	if cfg.LeagueNewsURL != "" && cfg.ChannelLeagueNews != "" {
		out = append(out, news.Feed{
			ID:        "league",
			Name:      "League News",
			URL:       cfg.LeagueNewsURL,
			ChannelID: cfg.ChannelLeagueNews,
			Color:     colorLeagueNews,
		})
	}
	if cfg.GameNewsURL != "" && cfg.ChannelGameNews != "" {
		out = append(out, news.Feed{
			ID:        "game",
			Name:      "Game News",
			URL:       cfg.GameNewsURL,
			ChannelID: cfg.ChannelGameNews,
			Color:     colorGameNews,
		})
	}

	return out
}

// Initialize loads the persisted ledger and starts auto-save. Must run
// before Start.
func (a *App) Initialize(ctx context.Context) error {
	count, err := a.Activity.LoadFromStore(ctx)
	if err != nil {
		return fmt.Errorf("initialize activity tracker: %w", err)
	}
	a.logger.InfoContext(ctx, "activity tracker initialized", "tracked_users", count)

	a.store.StartAutoSave(a.cfg.AutoSaveInterval, a.Activity.Snapshot)
	return nil
}

// Start launches the periodic timers: reconciliation, retention sweep and,
// when feeds are configured, feed polling.
func (a *App) Start() {
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.startTicker(runCtx, a.cfg.CheckInterval, func(ctx context.Context) {
		if _, err := a.Reconcile.RunCycle(ctx); err != nil {
			a.logger.ErrorContext(ctx, "activity check failed", "error", err)
		}
	})
	a.logger.Info("activity checker started", "interval", a.cfg.CheckInterval.String())

	a.startTicker(runCtx, a.cfg.RetentionInterval, func(ctx context.Context) {
		if _, err := a.Activity.PruneStale(ctx); err != nil {
			a.logger.ErrorContext(ctx, "retention sweep failed", "error", err)
		}
	})

	if a.Feeds != nil {
		a.startTicker(runCtx, a.cfg.FeedPollInterval, a.Feeds.PollOnce)
		a.logger.Info("news feeds started", "feeds", a.Feeds.FeedCount(), "interval", a.cfg.FeedPollInterval.String())
	}
}

func (a *App) startTicker(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()
}

// Shutdown stops every timer and performs one final synchronous save so a
// clean exit loses nothing since the last auto-save.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.store.Stop()

	if err := a.Activity.SaveNow(ctx); err != nil {
		a.logger.ErrorContext(ctx, "final save failed", "error", err)
		return err
	}
	a.logger.InfoContext(ctx, "shutdown complete")

	return nil
}

// Run blocks until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	a.Start()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// OnMessage is the inbound message hook. Only non-bot league participants
// count as activity.
func (a *App) OnMessage(ctx context.Context, guildID string, author member.Member) {
	if author.Bot || guildID != a.cfg.GuildID {
		return
	}
	if !author.HasRole(a.cfg.RoleLeague) {
		return
	}
	a.Activity.RecordActivity(ctx, guildID, author.UserID)
}

// OnMemberJoin is the inbound member-join hook.
func (a *App) OnMemberJoin(ctx context.Context, m member.Member) {
	a.Welcome.HandleMemberJoin(ctx, m)
}

// OnMemberUpdate fires the welcome flow when a member newly gains the
// league role.
func (a *App) OnMemberUpdate(ctx context.Context, before, after member.Member) {
	if before.HasRole(a.cfg.RoleLeague) || !after.HasRole(a.cfg.RoleLeague) {
		return
	}
	a.Welcome.HandleLeagueRoleGrant(ctx, after)
}
