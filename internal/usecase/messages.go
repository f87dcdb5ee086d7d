package usecase

import (
	"fmt"
	"time"

	"github.com/gridironfl/gridiron-bot/internal/domain/news"
)

const (
	colorInactive = 0xff6b35
	colorActive   = 0x10b981
	colorWelcome  = 0x1e40af

	footerText = "Gridiron Fantasy League Bot"

	maxTitleLen   = 256
	maxSummaryLen = 300
)

func inactiveNoticeMessage(username string, threshold time.Duration, now time.Time) Message {
	hours := int(threshold.Hours())
	return Message{
		Title: "You've Been Marked as Inactive",
		Body:  fmt.Sprintf("Hey %s, you haven't been active in the league server for over %d hours.", username, hours),
		Color: colorInactive,
		Fields: []MessageField{
			{Name: "How to Get Back to Active", Value: "Simply send a message in any channel and you'll automatically be marked as active again!"},
			{Name: "Stay Engaged", Value: "Keep participating in league discussions to maintain your active status."},
		},
		FooterText: footerText,
		Timestamp:  now,
	}
}

func welcomeBackMessage(username string, now time.Time) Message {
	return Message{
		Title: "Welcome Back to Active Status!",
		Body:  fmt.Sprintf("Great to see you back, %s! You've been marked as active again.", username),
		Color: colorActive,
		Fields: []MessageField{
			{Name: "You're Back in the Game", Value: "Your active participation keeps our league strong and competitive!"},
			{Name: "Keep It Up", Value: "Stay engaged to maintain your active status in the league."},
		},
		FooterText: footerText,
		Timestamp:  now,
	}
}

func welcomeChannelMessage(username string, now time.Time) Message {
	return Message{
		Content: fmt.Sprintf("Everyone welcome %s to the league!", username),
		Title:   "Welcome to the Gridiron Fantasy League!",
		Body:    fmt.Sprintf("Hey %s! Welcome to the most competitive league on the server!", username),
		Color:   colorWelcome,
		Fields: []MessageField{
			{Name: "Get Started", Value: "Check the rules channel for league rules and the teams channel for available teams."},
			{Name: "Need Help?", Value: "Feel free to ask questions or DM the commissioners!"},
		},
		FooterText: footerText,
		Timestamp:  now,
	}
}

func welcomeDirectMessage(username string) Message {
	return Message{
		Title: "Welcome to the Gridiron Fantasy League!",
		Body:  fmt.Sprintf("Thanks for joining our league, %s!", username),
		Color: colorActive,
		Fields: []MessageField{
			{Name: "What's Next?", Value: "Complete your team selection, review league rules and join the draft when announced."},
			{Name: "Stay Connected", Value: "Enable notifications for important league updates and game reminders."},
		},
		FooterText: "Good luck this season!",
	}
}

func articleMessage(feed news.Feed, article news.Article) Message {
	summary := article.Summary
	if len(summary) > maxSummaryLen {
		summary = summary[:maxSummaryLen] + "..."
	}
	title := article.Title
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	return Message{
		Title: title,
		Body:  summary,
		Link:  article.Link,
		Color: feed.Color,
		Fields: []MessageField{
			{Name: "Source", Value: feed.Name, Inline: true},
			{Name: "Published", Value: article.PublishedAt.Format("Jan 2, 2006"), Inline: true},
		},
		FooterText: feed.Name + " Feed",
		Timestamp:  article.PublishedAt,
	}
}
