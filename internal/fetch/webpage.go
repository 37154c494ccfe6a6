package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsBrief/internal/domain"
)

const webpageTimeout = 30 * time.Second

// WebpageFetcher scrapes a single page into one raw item: title, main
// content, and whatever metadata the page exposes through meta tags.
type WebpageFetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ Fetcher = (*WebpageFetcher)(nil)

// NewWebpageFetcher wires an HTTP client with a bounded timeout.
func NewWebpageFetcher(client *http.Client, logger *slog.Logger) *WebpageFetcher {
	if client == nil {
		client = &http.Client{Timeout: webpageTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebpageFetcher{client: client, logger: logger}
}

// Type identifies the strategy inside the registry.
func (f *WebpageFetcher) Type() domain.SourceType {
	return domain.SourceTypeWebpage
}

// Fetch retrieves one page and extracts title, content, and metadata.
// Unlike the feed adapter, a page that cannot be parsed is a FetchError:
// there is no entry list to fall back on.
func (f *WebpageFetcher) Fetch(ctx context.Context, source domain.Source, opts Options) (*RawPayload, error) {
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
			Message:  fmt.Sprintf("request page: %v", err),
		}
		if isTimeout(err) {
			fetchErr.TimeoutSeconds = int(webpageTimeout.Seconds())
			fetchErr.Message = fmt.Sprintf("page fetch timeout after %d seconds", fetchErr.TimeoutSeconds)
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
			Message:    fmt.Sprintf("page returned HTTP %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  fmt.Sprintf("parse page: %v", err),
		}
	}

	item := extractPage(doc)
	item.Link = source.URL

	return &RawPayload{
		SourceID:  source.ID,
		FetchedAt: time.Now().UTC(),
		Items:     []RawItem{item},
	}, nil
}

func extractPage(doc *goquery.Document) RawItem {
	var item RawItem

	item.Title = metaContent(doc, `meta[property="og:title"]`)
	if item.Title == "" {
		item.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	item.Description = metaContent(doc, `meta[name="description"]`)
	if item.Description == "" {
		item.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	item.Author = metaContent(doc, `meta[name="author"]`)
	item.Published = metaContent(doc, `meta[property="article:published_time"]`)

	if keywords := metaContent(doc, `meta[name="keywords"]`); keywords != "" {
		for _, keyword := range strings.Split(keywords, ",") {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				item.Tags = append(item.Tags, keyword)
			}
		}
	}

	item.Content = extractContent(doc)
	return item
}

// extractContent collects paragraph text, preferring the article element
// over the page at large to skip navigation and boilerplate.
func extractContent(doc *goquery.Document) string {
	var paragraphs []string
	collect := func(i int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	doc.Find("article p").Each(collect)
	if len(paragraphs) == 0 {
		doc.Find("p").Each(collect)
	}
	return strings.Join(paragraphs, "\n\n")
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
