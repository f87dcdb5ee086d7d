package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"

	"github.com/gridironfl/gridiron-bot/internal/domain/news"
	"github.com/gridironfl/gridiron-bot/internal/platform/logging"
	"github.com/gridironfl/gridiron-bot/internal/platform/resilience"
	"github.com/gridironfl/gridiron-bot/internal/usecase"
)

const maxFeedBody = 6 << 20

var errFeedTransient = crerr.New("news feed transient failure")

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches and parses external RSS/Atom feeds.
type Client struct {
	httpClient     *http.Client
	parser         *gofeed.Parser
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.MaxRetries
	if retry.RetryMax < 0 {
		retry.RetryMax = 0
	}
	retry.HTTPClient.Timeout = timeout
	retry.Logger = nil

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     retry.StandardClient(),
		parser:         gofeed.NewParser(),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Fetch(ctx context.Context, feed news.Feed) ([]news.Article, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "feed circuit breaker rejected request", "feed_id", feed.ID, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: news source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	articles, err := c.fetch(ctx, feed)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errFeedTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}

	return articles, err
}

func (c *Client) fetch(ctx context.Context, feed news.Feed) ([]news.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errFeedTransient, "send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, crerr.Wrapf(errFeedTransient, "read response body: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, crerr.Wrapf(errFeedTransient, "feed status=%d", resp.StatusCode)
		}
		return nil, fmt.Errorf("feed status=%d", resp.StatusCode)
	}

	parsed, err := c.parser.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed payload: %w", err)
	}

	out := make([]news.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			// Undated items can't pass the freshness gate and would be
			// reposted forever.
			continue
		}

		out = append(out, news.Article{
			FeedID:      feed.ID,
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Summary:     strings.TrimSpace(item.Description),
			PublishedAt: *published,
		})
	}

	return out, nil
}
