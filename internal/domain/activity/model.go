package activity

import (
	"fmt"
	"time"
)

// Record is the most recent qualifying activity observed for one member of
// one guild. At most one record exists per (guild, user) pair; concurrent
// updates for the same pair are last-write-wins.
type Record struct {
	UserID       string
	GuildID      string
	LastActivity time.Time
	LastUpdated  time.Time
}

func (r Record) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("activity record user id is required")
	}
	if r.GuildID == "" {
		return fmt.Errorf("activity record guild id is required")
	}
	if r.LastActivity.IsZero() {
		return fmt.Errorf("activity record last activity is required")
	}

	return nil
}

// Key returns the canonical ledger key for a guild/member pair.
func Key(guildID, userID string) string {
	return guildID + "-" + userID
}

func (r Record) Key() string {
	return Key(r.GuildID, r.UserID)
}

// Snapshot is a point-in-time copy of the ledger shaped for persistence.
// Mutating a snapshot never touches the live ledger.
type Snapshot struct {
	Records  map[string]Record
	LastSave time.Time
}

func NewSnapshot() Snapshot {
	return Snapshot{Records: make(map[string]Record)}
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Records:  make(map[string]Record, len(s.Records)),
		LastSave: s.LastSave,
	}
	for key, record := range s.Records {
		out.Records[key] = record
	}

	return out
}
