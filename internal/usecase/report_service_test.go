package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/infrastructure/repository/memory"
	"github.com/gridironfl/gridiron-bot/internal/platform/cache"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

func newReportFixture(statsCache *cache.Store) (*ReportService, *memory.ActivityRepository, *fakeGateway) {
	repo := memory.NewActivityRepository()
	gateway := newFakeGateway()
	svc := NewReportService(repo, gateway, testReconcileConfig(), statsCache, logging.NewNop())

	return svc, repo, gateway
}

func TestInactiveReport_GroupsByState(t *testing.T) {
	svc, _, gateway := newReportFixture(nil)
	gateway.addMember(member.Member{UserID: "user-active", Roles: []string{testLeagueRole, testActiveRole}})
	gateway.addMember(member.Member{UserID: "user-idle", Roles: []string{testLeagueRole, testInactive}})
	gateway.addMember(member.Member{UserID: "user-bare", Roles: []string{testLeagueRole}})
	gateway.addMember(member.Member{UserID: "bot-1", Bot: true, Roles: []string{testLeagueRole, testInactive}})

	report, err := svc.InactiveReport(context.Background())
	if err != nil {
		t.Fatalf("inactive report: %v", err)
	}
	if len(report.Inactive) != 1 || report.Inactive[0].UserID != "user-idle" {
		t.Fatalf("unexpected inactive set: %+v", report.Inactive)
	}
	if len(report.Unassigned) != 1 || report.Unassigned[0].UserID != "user-bare" {
		t.Fatalf("unexpected unassigned set: %+v", report.Unassigned)
	}
	if report.Threshold != 26*time.Hour {
		t.Fatalf("unexpected threshold: %s", report.Threshold)
	}
}

func TestLeagueStats_Computation(t *testing.T) {
	svc, repo, gateway := newReportFixture(nil)
	gateway.addMember(member.Member{UserID: "user-1", Roles: []string{testLeagueRole, testActiveRole}})
	gateway.addMember(member.Member{UserID: "user-2", Roles: []string{testLeagueRole, testActiveRole}})
	gateway.addMember(member.Member{UserID: "user-3", Roles: []string{testLeagueRole, testInactive}})
	gateway.addMember(member.Member{UserID: "user-4", Roles: []string{testLeagueRole}})
	if err := repo.Upsert(context.Background(), activityRecord("user-1", time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := svc.LeagueStats(context.Background())
	if err != nil {
		t.Fatalf("league stats: %v", err)
	}
	if stats.TotalMembers != 4 {
		t.Fatalf("unexpected total: %d", stats.TotalMembers)
	}
	if stats.ActiveMembers != 2 || stats.InactiveMembers != 1 || stats.Unassigned != 1 {
		t.Fatalf("unexpected breakdown: %+v", stats)
	}
	if stats.ActivityRate != 50 {
		t.Fatalf("unexpected activity rate: %d", stats.ActivityRate)
	}
	if stats.TrackedRecords != 1 {
		t.Fatalf("unexpected tracked records: %d", stats.TrackedRecords)
	}
}

func TestLeagueStats_ServedFromCache(t *testing.T) {
	svc, _, gateway := newReportFixture(cache.NewStore(time.Minute))
	gateway.addMember(member.Member{UserID: "user-1", Roles: []string{testLeagueRole, testActiveRole}})

	first, err := svc.LeagueStats(context.Background())
	if err != nil {
		t.Fatalf("first stats: %v", err)
	}
	gateway.addMember(member.Member{UserID: "user-2", Roles: []string{testLeagueRole, testActiveRole}})

	second, err := svc.LeagueStats(context.Background())
	if err != nil {
		t.Fatalf("second stats: %v", err)
	}
	if second.TotalMembers != first.TotalMembers {
		t.Fatalf("expected cached stats, got %d members", second.TotalMembers)
	}
}

func TestForceActive_FlipsMarkersAndStampsActivity(t *testing.T) {
	ctx := context.Background()
	statsCache := cache.NewStore(time.Minute)
	svc, repo, gateway := newReportFixture(statsCache)
	now := time.Now()
	svc.now = func() time.Time { return now }

	gateway.addMember(member.Member{UserID: "user-idle", Username: "idler", Roles: []string{testLeagueRole, testInactive}})
	if _, err := svc.LeagueStats(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := svc.ForceActive(ctx, "user-idle"); err != nil {
		t.Fatalf("force active: %v", err)
	}

	got := gateway.member("user-idle")
	if got.HasRole(testInactive) || !got.HasRole(testActiveRole) {
		t.Fatalf("unexpected roles after force-active: %v", got.Roles)
	}

	record, ok, err := repo.Get(ctx, testGuildID, "user-idle")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !ok || !record.LastActivity.Equal(now) {
		t.Fatalf("expected fresh activity stamp, got %+v ok=%v", record, ok)
	}

	// The cached stats entry is invalidated, so the next read recomputes.
	stats, err := svc.LeagueStats(ctx)
	if err != nil {
		t.Fatalf("stats after force-active: %v", err)
	}
	if stats.ActiveMembers != 1 || stats.InactiveMembers != 0 {
		t.Fatalf("stats still stale after force-active: %+v", stats)
	}
}

func TestForceActive_Validation(t *testing.T) {
	svc, _, gateway := newReportFixture(nil)
	gateway.addMember(member.Member{UserID: "user-outsider", Roles: []string{"role-other"}})

	if err := svc.ForceActive(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty user id, got %v", err)
	}
	if err := svc.ForceActive(context.Background(), "user-ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown member, got %v", err)
	}
	if err := svc.ForceActive(context.Background(), "user-outsider"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-league member, got %v", err)
	}
}
