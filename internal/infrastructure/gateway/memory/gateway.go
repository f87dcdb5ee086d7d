package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridironfl/gridiron-bot/internal/domain/member"
	"github.com/gridironfl/gridiron-bot/internal/usecase"
)

// Gateway is an in-memory chat-platform double. It backs the test suite and
// keeps the standalone binary runnable without a live chat transport.
// Failure hooks let callers inject per-call faults.
type Gateway struct {
	guildID string

	mu          sync.Mutex
	roles       map[string]usecase.Role
	members     map[string]member.Member
	order       []string
	channelMsgs map[string][]usecase.Message
	dms         map[string][]usecase.Message
	mutations   []string

	FetchMembersErr error
	AddRoleErr      func(userID, roleID string) error
	RemoveRoleErr   func(userID, roleID string) error
	DirectMsgErr    func(userID string) error
	ChannelMsgErr   func(channelID string) error
}

func NewGateway(guildID string) *Gateway {
	return &Gateway{
		guildID:     guildID,
		roles:       make(map[string]usecase.Role),
		members:     make(map[string]member.Member),
		channelMsgs: make(map[string][]usecase.Message),
		dms:         make(map[string][]usecase.Message),
	}
}

func (g *Gateway) SeedRole(id, name string) {
	g.mu.Lock()
	g.roles[id] = usecase.Role{ID: id, Name: name}
	g.mu.Unlock()
}

func (g *Gateway) SeedMember(m member.Member) {
	g.mu.Lock()
	if _, ok := g.members[m.UserID]; !ok {
		g.order = append(g.order, m.UserID)
	}
	g.members[m.UserID] = m
	g.mu.Unlock()
}

func (g *Gateway) ResolveRole(_ context.Context, guildID, roleID string) (usecase.Role, bool, error) {
	if guildID != g.guildID {
		return usecase.Role{}, false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	role, ok := g.roles[roleID]
	return role, ok, nil
}

func (g *Gateway) FetchMembers(_ context.Context, guildID string) ([]member.Member, error) {
	if g.FetchMembersErr != nil {
		return nil, g.FetchMembersErr
	}
	if guildID != g.guildID {
		return nil, fmt.Errorf("unknown guild %s", guildID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]member.Member, 0, len(g.order))
	for _, id := range g.order {
		m := g.members[id]
		m.Roles = append([]string(nil), m.Roles...)
		out = append(out, m)
	}

	return out, nil
}

func (g *Gateway) AddRole(_ context.Context, guildID, userID, roleID string) error {
	if g.AddRoleErr != nil {
		if err := g.AddRoleErr(userID, roleID); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[userID]
	if guildID != g.guildID || !ok {
		return fmt.Errorf("unknown member %s", userID)
	}
	g.mutations = append(g.mutations, "add:"+userID+":"+roleID)
	if m.HasRole(roleID) {
		return nil
	}
	m.Roles = append(append([]string(nil), m.Roles...), roleID)
	g.members[userID] = m

	return nil
}

func (g *Gateway) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	if g.RemoveRoleErr != nil {
		if err := g.RemoveRoleErr(userID, roleID); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[userID]
	if guildID != g.guildID || !ok {
		return fmt.Errorf("unknown member %s", userID)
	}
	g.mutations = append(g.mutations, "remove:"+userID+":"+roleID)
	roles := make([]string, 0, len(m.Roles))
	for _, id := range m.Roles {
		if id != roleID {
			roles = append(roles, id)
		}
	}
	m.Roles = roles
	g.members[userID] = m

	return nil
}

func (g *Gateway) SendDirectMessage(_ context.Context, userID string, msg usecase.Message) error {
	if g.DirectMsgErr != nil {
		if err := g.DirectMsgErr(userID); err != nil {
			return err
		}
	}

	g.mu.Lock()
	g.dms[userID] = append(g.dms[userID], msg)
	g.mu.Unlock()

	return nil
}

func (g *Gateway) SendChannelMessage(_ context.Context, channelID string, msg usecase.Message) error {
	if g.ChannelMsgErr != nil {
		if err := g.ChannelMsgErr(channelID); err != nil {
			return err
		}
	}

	g.mu.Lock()
	g.channelMsgs[channelID] = append(g.channelMsgs[channelID], msg)
	g.mu.Unlock()

	return nil
}

// Member returns the current state of one seeded member.
func (g *Gateway) Member(userID string) (member.Member, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[userID]
	if ok {
		m.Roles = append([]string(nil), m.Roles...)
	}
	return m, ok
}

func (g *Gateway) DirectMessages(userID string) []usecase.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]usecase.Message(nil), g.dms[userID]...)
}

func (g *Gateway) ChannelMessages(channelID string) []usecase.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]usecase.Message(nil), g.channelMsgs[channelID]...)
}

// RoleMutations lists every add/remove intent issued so far, in order.
func (g *Gateway) RoleMutations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.mutations...)
}

func (g *Gateway) ResetMutations() {
	g.mu.Lock()
	g.mutations = nil
	g.mu.Unlock()
}
