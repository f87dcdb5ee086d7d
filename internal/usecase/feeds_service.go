package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/gridironfl/gridiron-bot/internal/domain/news"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
)

// FeedFetcher is the external news source port.
type FeedFetcher interface {
	Fetch(ctx context.Context, feed news.Feed) ([]news.Article, error)
}

// FeedsService relays fresh feed articles into guild channels. Articles
// published before the service started are never posted: a restart must not
// spam channels with the whole backlog.
type FeedsService struct {
	fetcher FeedFetcher
	gateway Gateway
	feeds   []news.Feed
	logger  *logging.Logger
	now     func() time.Time

	mu        sync.Mutex
	posted    map[string]struct{}
	startedAt time.Time
}

func NewFeedsService(fetcher FeedFetcher, gateway Gateway, feeds []news.Feed, logger *logging.Logger) *FeedsService {
	if logger == nil {
		logger = logging.Default()
	}

	valid := make([]news.Feed, 0, len(feeds))
	for _, f := range feeds {
		if err := f.Validate(); err != nil {
			logger.Warn("skipping misconfigured feed", "feed_id", f.ID, "error", err)
			continue
		}
		valid = append(valid, f)
	}

	return &FeedsService{
		fetcher:   fetcher,
		gateway:   gateway,
		feeds:     valid,
		logger:    logger,
		now:       time.Now,
		posted:    make(map[string]struct{}),
		startedAt: time.Now(),
	}
}

func (s *FeedsService) FeedCount() int {
	return len(s.feeds)
}

// PollOnce fetches every configured feed and posts unseen fresh articles.
// Feeds are polled concurrently; a fault in one feed never affects another.
func (s *FeedsService) PollOnce(ctx context.Context) {
	if len(s.feeds) == 0 {
		return
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.FeedsService.PollOnce")
	defer span.End()

	p := pool.New().WithContext(ctx)
	for _, feed := range s.feeds {
		feed := feed
		p.Go(func(ctx context.Context) error {
			s.pollFeed(ctx, feed)
			return nil
		})
	}
	_ = p.Wait()
}

func (s *FeedsService) pollFeed(ctx context.Context, feed news.Feed) {
	articles, err := s.fetcher.Fetch(ctx, feed)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch news feed", "error", err, "feed_id", feed.ID)
		return
	}

	for _, article := range articles {
		if !article.PublishedAt.After(s.startedAt) {
			continue
		}
		if s.alreadyPosted(article.Key()) {
			continue
		}

		if err := s.gateway.SendChannelMessage(ctx, feed.ChannelID, articleMessage(feed, article)); err != nil {
			s.logger.WarnContext(ctx, "post news article", "error", err, "feed_id", feed.ID, "link", article.Link)
			continue
		}
		s.markPosted(article.Key())
		s.logger.InfoContext(ctx, "posted news article", "feed_id", feed.ID, "title", article.Title)
	}
}

func (s *FeedsService) alreadyPosted(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posted[key]
	return ok
}

func (s *FeedsService) markPosted(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted[key] = struct{}{}
}
