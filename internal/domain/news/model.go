package news

import (
	"fmt"
	"time"
)

// Feed is one configured external news source relayed into a guild channel.
type Feed struct {
	ID        string
	Name      string
	URL       string
	ChannelID string
	Color     int
}

func (f Feed) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("feed id is required")
	}
	if f.URL == "" {
		return fmt.Errorf("feed url is required")
	}
	if f.ChannelID == "" {
		return fmt.Errorf("feed channel id is required")
	}

	return nil
}

// Article is a single parsed feed item.
type Article struct {
	FeedID      string
	Title       string
	Link        string
	Summary     string
	PublishedAt time.Time
}

// Key identifies an article inside the posted-set. Links are stable per
// source, titles are not.
func (a Article) Key() string {
	return a.FeedID + "-" + a.Link
}
