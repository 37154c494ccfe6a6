package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsBrief/internal/domain"
)

const apiTimeout = 30 * time.Second

// Source option keys understood by the API adapter. "param." and "header."
// prefixes carry per-source query parameters and request headers; "apiKey"
// becomes a bearer token.
const (
	optionParamPrefix  = "param."
	optionHeaderPrefix = "header."
	optionAPIKey       = "apiKey"
)

// APIFetcher pulls articles from a custom JSON endpoint described by the
// source's options.
type APIFetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ Fetcher = (*APIFetcher)(nil)

// NewAPIFetcher wires an HTTP client with a bounded timeout.
func NewAPIFetcher(client *http.Client, logger *slog.Logger) *APIFetcher {
	if client == nil {
		client = &http.Client{Timeout: apiTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIFetcher{client: client, logger: logger}
}

// Type identifies the strategy inside the registry.
func (f *APIFetcher) Type() domain.SourceType {
	return domain.SourceTypeAPI
}

type apiArticle struct {
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	PublishedAt    string   `json:"published_at"`
	Summary        string   `json:"summary"`
	Author         string   `json:"author"`
	ContentSnippet string   `json:"content_snippet"`
	Categories     []string `json:"categories"`
}

type apiResponse struct {
	Articles []apiArticle `json:"articles"`
}

// Fetch retrieves one page of articles from the source's endpoint.
func (f *APIFetcher) Fetch(ctx context.Context, source domain.Source, opts Options) (*RawPayload, error) {
	target, err := buildAPIURL(source)
	if err != nil {
		return nil, &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  err.Error(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  fmt.Sprintf("build request: %v", err),
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	applyAPIHeaders(req, source.Options)

	resp, err := f.client.Do(req)
	if err != nil {
		fetchErr := &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  fmt.Sprintf("request api: %v", err),
		}
		if isTimeout(err) {
			fetchErr.TimeoutSeconds = int(apiTimeout.Seconds())
			fetchErr.Message = fmt.Sprintf("api fetch timeout after %d seconds", fetchErr.TimeoutSeconds)
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
			Message:    fmt.Sprintf("api returned HTTP %d", resp.StatusCode),
		}
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &domain.FetchError{
			Code:     domain.FeedFetchFailed,
			SourceID: source.ID,
			URL:      source.URL,
			Message:  fmt.Sprintf("decode api response: %v", err),
		}
	}

	payload := &RawPayload{
		SourceID:  source.ID,
		FetchedAt: time.Now().UTC(),
		Items:     make([]RawItem, 0, len(decoded.Articles)),
	}
	for _, article := range decoded.Articles {
		payload.Items = append(payload.Items, RawItem{
			Title:       article.Title,
			Link:        article.URL,
			Published:   article.PublishedAt,
			Summary:     article.Summary,
			Description: article.ContentSnippet,
			Author:      article.Author,
			Tags:        article.Categories,
		})
	}
	return payload, nil
}

func buildAPIURL(source domain.Source) (string, error) {
	parsed, err := url.Parse(source.URL)
	if err != nil {
		return "", fmt.Errorf("invalid api url %s: %v", source.URL, err)
	}

	query := parsed.Query()
	for key, value := range source.Options {
		if strings.HasPrefix(key, optionParamPrefix) {
			query.Set(strings.TrimPrefix(key, optionParamPrefix), value)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func applyAPIHeaders(req *http.Request, options map[string]string) {
	for key, value := range options {
		if strings.HasPrefix(key, optionHeaderPrefix) {
			req.Header.Set(strings.TrimPrefix(key, optionHeaderPrefix), value)
		}
	}
	if apiKey := options[optionAPIKey]; apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}
