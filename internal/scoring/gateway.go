// Package scoring talks to the external relevance-scoring and
// brief-writing oracle.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

const defaultMaxAttempts = 3

// Client implements ports.ScoringGateway over an HTTP request/response
// contract. Transient transport failures and 5xx responses are retried
// with exponential backoff; 4xx responses and undecodable bodies are
// terminal.
type Client struct {
	endpoint        string
	apiKey          string
	maxAttempts     int
	initialInterval time.Duration
	httpClient      *http.Client
	logger          *slog.Logger
}

var _ ports.ScoringGateway = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.ScoringConfig, logger *slog.Logger) *Client {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:        cfg.Endpoint,
		apiKey:          cfg.APIKey,
		maxAttempts:     attempts,
		initialInterval: 500 * time.Millisecond,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type scoreArticle struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Summary    string   `json:"summary,omitempty"`
	Categories []string `json:"categories"`
}

type scoreRequest struct {
	RunID    string         `json:"run_id"`
	Date     string         `json:"date"`
	Articles []scoreArticle `json:"articles"`
	Topics   []string       `json:"topics"`
}

type scoreHighlight struct {
	Title                 string `json:"title"`
	Significance          string `json:"significance"`
	StrategicImplications string `json:"strategic_implications"`
	URL                   string `json:"url"`
}

type scoreResponse struct {
	ExecutiveSummary      string               `json:"executive_summary"`
	Highlights            []scoreHighlight     `json:"highlights"`
	TopicBreakdown        map[string]int       `json:"topic_breakdown"`
	TotalArticlesAnalyzed int                  `json:"total_articles_analyzed"`
	Scores                []ports.ArticleScore `json:"scores"`
}

// ScoreAndBrief sends the aggregated article set and returns the oracle's
// brief plus per-article scores.
func (c *Client) ScoreAndBrief(ctx context.Context, req ports.ScoreRequest) (*ports.ScoreResult, error) {
	if c.endpoint == "" {
		return nil, &domain.ScoringGatewayError{Message: "scoring gateway misconfigured: no endpoint"}
	}

	payload, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, &domain.ScoringGatewayError{Message: fmt.Sprintf("marshal request: %v", err)}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	policy.MaxInterval = 10 * time.Second

	decoded, err := backoff.Retry(ctx,
		func() (*scoreResponse, error) { return c.post(ctx, payload) },
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxAttempts)),
	)
	if err != nil {
		return nil, &domain.ScoringGatewayError{
			Attempts: c.maxAttempts,
			Message:  "oracle unavailable",
			Err:      err,
		}
	}

	if decoded.ExecutiveSummary == "" {
		return nil, &domain.ScoringGatewayError{
			Attempts: c.maxAttempts,
			Message:  "oracle response missing executive summary",
		}
	}

	return buildResult(req, decoded), nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*scoreResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("new request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("oracle request failed", "error", err)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn("oracle returned server error", "status", resp.Status)
		return nil, fmt.Errorf("oracle returned %s", resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, backoff.Permanent(fmt.Errorf("oracle rejected request %s: %s",
			resp.Status, strings.TrimSpace(string(body))))
	}

	var decoded scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode oracle response: %w", err))
	}
	return &decoded, nil
}

func buildRequest(req ports.ScoreRequest) scoreRequest {
	articles := make([]scoreArticle, 0, len(req.Articles))
	for _, article := range req.Articles {
		summary := article.Summary
		if summary == "" {
			summary = article.ContentSnippet
		}
		articles = append(articles, scoreArticle{
			Title:      article.Title,
			URL:        article.URL,
			Summary:    summary,
			Categories: article.Categories,
		})
	}
	return scoreRequest{
		RunID:    req.RunID,
		Date:     req.Date,
		Articles: articles,
		Topics:   req.Topics,
	}
}

func buildResult(req ports.ScoreRequest, decoded *scoreResponse) *ports.ScoreResult {
	highlights := make([]domain.BriefHighlight, 0, len(decoded.Highlights))
	for _, h := range decoded.Highlights {
		highlights = append(highlights, domain.BriefHighlight{
			Title:                 h.Title,
			Significance:          h.Significance,
			StrategicImplications: h.StrategicImplications,
			URL:                   h.URL,
		})
	}

	total := decoded.TotalArticlesAnalyzed
	if total == 0 {
		total = len(req.Articles)
	}

	return &ports.ScoreResult{
		Brief: domain.Brief{
			RunID:                 req.RunID,
			Date:                  req.Date,
			ExecutiveSummary:      decoded.ExecutiveSummary,
			Highlights:            highlights,
			TopicBreakdown:        decoded.TopicBreakdown,
			TotalArticlesAnalyzed: total,
		},
		Scores: decoded.Scores,
	}
}
