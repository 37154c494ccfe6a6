package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"NewsBrief/internal/domain"
)

// userAgent identifies the harvester to upstream hosts.
const userAgent = "NewsBrief/1.0"

// Options bound each fetch attempt.
type Options struct {
	TimeWindowHours int
	MaxItems        int
}

// RawItem is a single entry as delivered by a source, before normalization.
type RawItem struct {
	Title           string
	Link            string
	Published       string
	PublishedParsed *time.Time
	Updated         string
	UpdatedParsed   *time.Time
	Summary         string
	Description     string
	Author          string
	Content         string
	Tags            []string
	Category        string
}

// RawPayload groups everything one source produced in a single attempt.
type RawPayload struct {
	SourceID  string
	FetchedAt time.Time
	Items     []RawItem
}

// Fetcher retrieves raw content for one source type. Implementations are
// side-effect-free on failure; registry health writes belong to the
// orchestrator's worker.
type Fetcher interface {
	Type() domain.SourceType
	Fetch(ctx context.Context, source domain.Source, opts Options) (*RawPayload, error)
}

// Registry keeps a mapping from source types to their fetch strategies.
type Registry struct {
	fetchers map[domain.SourceType]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[domain.SourceType]Fetcher{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[domain.SourceType]Fetcher{}
	}
	r.fetchers[fetcher.Type()] = fetcher
}

// Resolve returns a fetcher by source type or an error if it is absent.
func (r *Registry) Resolve(sourceType domain.SourceType) (Fetcher, error) {
	if fetcher, ok := r.fetchers[sourceType]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("no fetcher registered for source type %q", sourceType)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
