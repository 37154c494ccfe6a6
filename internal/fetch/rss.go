package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsBrief/internal/domain"
)

const rssTimeout = 30 * time.Second

// RSSFetcher retrieves feed documents over HTTP and parses them with gofeed.
// A feed that fetches but yields no parseable entries is not a failure: the
// source simply produced nothing this cycle.
type RSSFetcher struct {
	client *http.Client
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ Fetcher = (*RSSFetcher)(nil)

// NewRSSFetcher wires an HTTP client; the default follows redirects and
// times out after 30 seconds.
func NewRSSFetcher(client *http.Client, logger *slog.Logger) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: rssTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSFetcher{client: client, parser: gofeed.NewParser(), logger: logger}
}

// Type identifies the strategy inside the registry.
func (f *RSSFetcher) Type() domain.SourceType {
	return domain.SourceTypeRSS
}

// Fetch retrieves and parses one feed.
func (f *RSSFetcher) Fetch(ctx context.Context, source domain.Source, opts Options) (*RawPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  fmt.Sprintf("build request: %v", err),
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		fetchErr := &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  fmt.Sprintf("request feed: %v", err),
		}
		if isTimeout(err) {
			fetchErr.TimeoutSeconds = int(rssTimeout.Seconds())
			fetchErr.Message = fmt.Sprintf("feed fetch timeout after %d seconds", fetchErr.TimeoutSeconds)
		}
		return nil, fetchErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{
			Code:       domain.FeedFetchFailed,
			SourceID:   source.ID,
			URL:        source.URL,
			HTTPStatus: resp.StatusCode,
			Message:    fmt.Sprintf("feed returned HTTP %d", resp.StatusCode),
		}
	}

	payload := &RawPayload{SourceID: source.ID, FetchedAt: time.Now().UTC()}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil || feed == nil || len(feed.Items) == 0 {
		if err != nil {
			f.logger.Warn("malformed feed, returning empty payload",
				"source_id", source.ID,
				"feed_url", source.URL,
				"error", err)
		}
		return payload, nil
	}

	payload.Items = make([]RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := RawItem{
			Title:           entry.Title,
			Link:            entry.Link,
			Published:       entry.Published,
			PublishedParsed: entry.PublishedParsed,
			Updated:         entry.Updated,
			UpdatedParsed:   entry.UpdatedParsed,
			Summary:         entry.Description,
			Content:         entry.Content,
			Tags:            entry.Categories,
		}
		if entry.Author != nil {
			item.Author = entry.Author.Name
		}
		payload.Items = append(payload.Items, item)
	}
	return payload, nil
}
