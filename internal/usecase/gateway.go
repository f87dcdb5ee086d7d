package usecase

import (
	"context"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/member"
)

// Role is the gateway's view of one guild role marker.
type Role struct {
	ID   string
	Name string
}

// Message is a transport-neutral rich message. The gateway renders it into
// whatever its platform calls an embed.
type Message struct {
	Content    string
	Title      string
	Body       string
	Link       string
	Color      int
	Fields     []MessageField
	FooterText string
	Timestamp  time.Time
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

// Gateway is the chat-platform port. Every call may fail independently
// (permissions, closed DMs, network) and callers isolate those failures per
// unit of work.
type Gateway interface {
	ResolveRole(ctx context.Context, guildID, roleID string) (Role, bool, error)
	FetchMembers(ctx context.Context, guildID string) ([]member.Member, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	SendDirectMessage(ctx context.Context, userID string, msg Message) error
	SendChannelMessage(ctx context.Context, channelID string, msg Message) error
}
