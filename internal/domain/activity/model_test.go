package activity

import (
	"testing"
	"time"
)

func TestRecordValidate(t *testing.T) {
	now := time.Now()

	valid := Record{UserID: "user-1", GuildID: "guild-1", LastActivity: now, LastUpdated: now}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid record failed validation: %v", err)
	}

	cases := map[string]Record{
		"missing user id":       {GuildID: "guild-1", LastActivity: now},
		"missing guild id":      {UserID: "user-1", LastActivity: now},
		"missing last activity": {UserID: "user-1", GuildID: "guild-1"},
	}
	for name, record := range cases {
		t.Run(name, func(t *testing.T) {
			if err := record.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := Key("guild-1", "user-1"); got != "guild-1-user-1" {
		t.Fatalf("unexpected key: %q", got)
	}

	record := Record{UserID: "user-2", GuildID: "guild-9", LastActivity: time.Now()}
	if got := record.Key(); got != "guild-9-user-2" {
		t.Fatalf("unexpected record key: %q", got)
	}
}

func TestSnapshotClone(t *testing.T) {
	now := time.Now()
	original := NewSnapshot()
	original.Records["guild-1-user-1"] = Record{UserID: "user-1", GuildID: "guild-1", LastActivity: now}
	original.LastSave = now

	clone := original.Clone()
	clone.Records["guild-1-user-2"] = Record{UserID: "user-2", GuildID: "guild-1", LastActivity: now}

	if len(original.Records) != 1 {
		t.Fatalf("clone mutation leaked into original: %d records", len(original.Records))
	}
	if !clone.LastSave.Equal(now) {
		t.Fatalf("clone dropped last save timestamp")
	}
}
