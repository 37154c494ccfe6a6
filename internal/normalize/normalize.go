// Package normalize converts raw per-source payloads into the canonical
// article shape: date resolution, category flattening, snippet derivation,
// and the recency-window filter.
package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/fetch"
)

const snippetLimit = 500

// Options control windowing and output caps per source.
type Options struct {
	TimeWindowHours int
	MaxItems        int
}

// Normalize converts one raw entry into the canonical article shape.
// Date resolution never fails: entries whose publish date cannot be
// resolved fall back to now, so they are retained rather than lost.
func Normalize(item fetch.RawItem, sourceID string, now time.Time) domain.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	return domain.Article{
		Title:          title,
		URL:            strings.TrimSpace(item.Link),
		PublishedAt:    resolvePublished(item, now),
		Summary:        item.Summary,
		Author:         item.Author,
		ContentSnippet: snippet(item),
		RawContent:     item.Content,
		Categories:     categories(item),
		SourceID:       sourceID,
	}
}

// Batch normalizes a payload's entries, applies the recency window, and
// caps the result, preserving feed order. Entries without a link are
// dropped since the URL is the article's identity.
func Batch(items []fetch.RawItem, sourceID string, opts Options, now time.Time) []domain.Article {
	cutoff := now.Add(-time.Duration(opts.TimeWindowHours) * time.Hour)

	out := make([]domain.Article, 0, len(items))
	for _, item := range items {
		article := Normalize(item, sourceID, now)
		if article.URL == "" {
			continue
		}
		if opts.TimeWindowHours > 0 && article.PublishedAt.Before(cutoff) {
			continue
		}
		out = append(out, article)
		if opts.MaxItems > 0 && len(out) >= opts.MaxItems {
			break
		}
	}
	return out
}

// resolvePublished picks the publish timestamp by priority: structured
// published field, lenient parse of the free-text published string (UTC
// assumed when zone-less), structured updated field, then now.
func resolvePublished(item fetch.RawItem, now time.Time) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if raw := strings.TrimSpace(item.Published); raw != "" {
		if parsed, err := dateparse.ParseIn(raw, time.UTC); err == nil {
			return parsed.UTC()
		}
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return now.UTC()
}

// categories merges tag values with the singular category field into a
// deduplicated set; order is not significant but first-seen is preserved.
func categories(item fetch.RawItem) []string {
	merged := make([]string, 0, len(item.Tags)+1)
	merged = append(merged, item.Tags...)
	if item.Category != "" {
		merged = append(merged, item.Category)
	}

	seen := make(map[string]struct{}, len(merged))
	out := make([]string, 0, len(merged))
	for _, tag := range merged {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// snippet prefers the short-form summary over the long-form description,
// truncated to 500 characters with the original kept when shorter.
func snippet(item fetch.RawItem) string {
	text := item.Summary
	if text == "" {
		text = item.Description
	}
	return truncate(text, snippetLimit)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
