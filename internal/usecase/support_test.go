package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/activity"
	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/domain/news"
)

const (
	testGuildID    = "guild-1"
	testLeagueRole = "role-league"
	testActiveRole = "role-active"
	testInactive   = "role-inactive"
)

func activityRecord(userID string, lastActivity time.Time) activity.Record {
	return activity.Record{
		UserID:       userID,
		GuildID:      testGuildID,
		LastActivity: lastActivity,
		LastUpdated:  lastActivity,
	}
}

func testReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		GuildID:           testGuildID,
		LeagueRoleID:      testLeagueRole,
		ActiveRoleID:      testActiveRole,
		InactiveRoleID:    testInactive,
		InactiveThreshold: 26 * time.Hour,
		Workers:           2,
	}
}

// fakeGateway is a mutable guild double. Role mutations are applied to the
// member set so consecutive cycles observe each other's effects.
type fakeGateway struct {
	mu      sync.Mutex
	roles   map[string]Role
	members map[string]member.Member
	order   []string

	dms         map[string][]Message
	channelMsgs map[string][]Message
	mutations   []string

	fetchErr      error
	addRoleErr    func(userID, roleID string) error
	removeRoleErr func(userID, roleID string) error
	dmErr         func(userID string) error
	channelErr    func(channelID string) error
}

func newFakeGateway() *fakeGateway {
	g := &fakeGateway{
		roles:       make(map[string]Role),
		members:     make(map[string]member.Member),
		dms:         make(map[string][]Message),
		channelMsgs: make(map[string][]Message),
	}
	g.roles[testLeagueRole] = Role{ID: testLeagueRole, Name: "League Member"}
	g.roles[testActiveRole] = Role{ID: testActiveRole, Name: "Active"}
	g.roles[testInactive] = Role{ID: testInactive, Name: "Inactive"}

	return g
}

func (g *fakeGateway) addMember(m member.Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[m.UserID]; !ok {
		g.order = append(g.order, m.UserID)
	}
	g.members[m.UserID] = m
}

func (g *fakeGateway) member(userID string) member.Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[userID]
}

func (g *fakeGateway) ResolveRole(_ context.Context, _ string, roleID string) (Role, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	role, ok := g.roles[roleID]
	return role, ok, nil
}

func (g *fakeGateway) FetchMembers(_ context.Context, _ string) ([]member.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}

	out := make([]member.Member, 0, len(g.order))
	for _, id := range g.order {
		m := g.members[id]
		m.Roles = append([]string(nil), m.Roles...)
		out = append(out, m)
	}

	return out, nil
}

func (g *fakeGateway) AddRole(_ context.Context, _ string, userID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.addRoleErr != nil {
		if err := g.addRoleErr(userID, roleID); err != nil {
			return err
		}
	}

	m := g.members[userID]
	if !m.HasRole(roleID) {
		m.Roles = append(m.Roles, roleID)
		g.members[userID] = m
	}
	g.mutations = append(g.mutations, "add:"+userID+":"+roleID)

	return nil
}

func (g *fakeGateway) RemoveRole(_ context.Context, _ string, userID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.removeRoleErr != nil {
		if err := g.removeRoleErr(userID, roleID); err != nil {
			return err
		}
	}

	m := g.members[userID]
	kept := m.Roles[:0]
	for _, id := range m.Roles {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.Roles = kept
	g.members[userID] = m
	g.mutations = append(g.mutations, "remove:"+userID+":"+roleID)

	return nil
}

func (g *fakeGateway) SendDirectMessage(_ context.Context, userID string, msg Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dmErr != nil {
		if err := g.dmErr(userID); err != nil {
			return err
		}
	}
	g.dms[userID] = append(g.dms[userID], msg)

	return nil
}

func (g *fakeGateway) SendChannelMessage(_ context.Context, channelID string, msg Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.channelErr != nil {
		if err := g.channelErr(channelID); err != nil {
			return err
		}
	}
	g.channelMsgs[channelID] = append(g.channelMsgs[channelID], msg)

	return nil
}

func (g *fakeGateway) directMessages(userID string) []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Message(nil), g.dms[userID]...)
}

func (g *fakeGateway) channelMessages(channelID string) []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Message(nil), g.channelMsgs[channelID]...)
}

func (g *fakeGateway) roleMutations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.mutations...)
}

func (g *fakeGateway) resetMutations() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mutations = nil
}

// stubRepo is a fault-injecting activity repository for error paths.
type stubRepo struct {
	upsertFn   func(ctx context.Context, record activity.Record) error
	getFn      func(ctx context.Context, guildID, userID string) (activity.Record, bool, error)
	snapshotFn func(ctx context.Context) (activity.Snapshot, error)
	replaceFn  func(ctx context.Context, snapshot activity.Snapshot) error
	pruneFn    func(ctx context.Context, olderThan time.Time) (int, error)
	lenFn      func(ctx context.Context) (int, error)
}

func (r *stubRepo) Upsert(ctx context.Context, record activity.Record) error {
	if r.upsertFn == nil {
		return nil
	}
	return r.upsertFn(ctx, record)
}

func (r *stubRepo) Get(ctx context.Context, guildID, userID string) (activity.Record, bool, error) {
	if r.getFn == nil {
		return activity.Record{}, false, nil
	}
	return r.getFn(ctx, guildID, userID)
}

func (r *stubRepo) Snapshot(ctx context.Context) (activity.Snapshot, error) {
	if r.snapshotFn == nil {
		return activity.NewSnapshot(), nil
	}
	return r.snapshotFn(ctx)
}

func (r *stubRepo) Replace(ctx context.Context, snapshot activity.Snapshot) error {
	if r.replaceFn == nil {
		return nil
	}
	return r.replaceFn(ctx, snapshot)
}

func (r *stubRepo) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	if r.pruneFn == nil {
		return 0, nil
	}
	return r.pruneFn(ctx, olderThan)
}

func (r *stubRepo) Len(ctx context.Context) (int, error) {
	if r.lenFn == nil {
		return 0, nil
	}
	return r.lenFn(ctx)
}

// stubStore is a fault-injecting snapshot store.
type stubStore struct {
	mu       sync.Mutex
	loadFn   func(ctx context.Context) (activity.Snapshot, error)
	saveErr  error
	saved    []activity.Snapshot
}

func (s *stubStore) Load(ctx context.Context) (activity.Snapshot, error) {
	if s.loadFn == nil {
		return activity.NewSnapshot(), nil
	}
	return s.loadFn(ctx)
}

func (s *stubStore) Save(_ context.Context, snapshot activity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, snapshot)

	return nil
}

func (s *stubStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// stubFetcher serves canned articles per feed.
type stubFetcher struct {
	mu       sync.Mutex
	articles map[string][]news.Article
	errs     map[string]error
	calls    int
}

func (f *stubFetcher) Fetch(_ context.Context, feed news.Feed) ([]news.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[feed.ID]; err != nil {
		return nil, err
	}
	return f.articles[feed.ID], nil
}
