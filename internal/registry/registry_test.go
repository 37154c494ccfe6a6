package registry

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/store"
)

func seedSource(t *testing.T, st store.Store, src domain.Source) {
	t.Helper()
	if err := st.Set(context.Background(), store.CollectionSources, src.ID, src); err != nil {
		t.Fatalf("seed source %s: %v", src.ID, err)
	}
}

func TestListEnabledSourcesExcludesDisabled(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	seedSource(t, mem, domain.Source{ID: "b-feed", Name: "B", Type: domain.SourceTypeRSS, Enabled: true})
	seedSource(t, mem, domain.Source{ID: "a-feed", Name: "A", Type: domain.SourceTypeRSS, Enabled: true})
	seedSource(t, mem, domain.Source{ID: "c-feed", Name: "C", Type: domain.SourceTypeRSS, Enabled: false})

	reg := New(mem)
	enabled, err := reg.ListEnabledSources(context.Background())
	if err != nil {
		t.Fatalf("ListEnabledSources error: %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled sources, got %d", len(enabled))
	}
	if enabled[0].ID != "a-feed" || enabled[1].ID != "b-feed" {
		t.Fatalf("expected id order, got %s then %s", enabled[0].ID, enabled[1].ID)
	}

	all, err := reg.ListSources(context.Background())
	if err != nil {
		t.Fatalf("ListSources error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 sources, got %d", len(all))
	}
	if all[2].ID != "c-feed" {
		t.Fatalf("expected c-feed last, got %s", all[2].ID)
	}
}

func TestRecordFetchOutcome(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	seedSource(t, mem, domain.Source{ID: "feed", Type: domain.SourceTypeRSS, Enabled: true})

	reg := New(mem)
	ctx := context.Background()

	failAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	err := reg.RecordFetchOutcome(ctx, "feed", ports.FetchOutcome{
		Success:      false,
		ErrorMessage: "feed returned HTTP 503",
		At:           failAt,
	})
	if err != nil {
		t.Fatalf("RecordFetchOutcome failure case: %v", err)
	}

	src := loadSource(t, mem, "feed")
	if src.LastChecked == nil || !src.LastChecked.Equal(failAt) {
		t.Fatalf("expected LastChecked %v, got %v", failAt, src.LastChecked)
	}
	if src.LastSuccess != nil {
		t.Fatalf("failure must not set LastSuccess, got %v", src.LastSuccess)
	}
	if src.LastError != "feed returned HTTP 503" {
		t.Fatalf("unexpected LastError: %q", src.LastError)
	}

	okAt := failAt.Add(time.Hour)
	err = reg.RecordFetchOutcome(ctx, "feed", ports.FetchOutcome{
		Success:      true,
		FetchedCount: 7,
		At:           okAt,
	})
	if err != nil {
		t.Fatalf("RecordFetchOutcome success case: %v", err)
	}

	src = loadSource(t, mem, "feed")
	if src.LastSuccess == nil || !src.LastSuccess.Equal(okAt) {
		t.Fatalf("expected LastSuccess %v, got %v", okAt, src.LastSuccess)
	}
	if src.LastError != "" {
		t.Fatalf("success must clear LastError, got %q", src.LastError)
	}
	if src.ArticlesLast24h != 7 {
		t.Fatalf("expected ArticlesLast24h 7, got %d", src.ArticlesLast24h)
	}
}

func TestRecordFetchOutcomeUnknownSource(t *testing.T) {
	t.Parallel()

	reg := New(store.NewMemoryStore())
	err := reg.RecordFetchOutcome(context.Background(), "missing", ports.FetchOutcome{Success: true})
	if err == nil {
		t.Fatal("expected error for unknown source id")
	}
}

const sampleCSV = `source_id,name,type,url,category,enabled
hn-feed,Hacker News,rss,https://news.ycombinator.com/rss,tech,true
api-wire,Wire API,api,https://wire.example.com/v1/articles,business,TRUE
dark-site,Dark Site,webpage,https://dark.example.com,misc,false
`

func TestLoadCSVIsIdempotent(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	reg := New(mem)
	ctx := context.Background()

	report, err := reg.LoadCSV(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if report.Added != 3 || report.Skipped != 0 {
		t.Fatalf("first load report: %+v", report)
	}

	src := loadSource(t, mem, "api-wire")
	if !src.Enabled {
		t.Fatalf("enabled parsing should be case insensitive")
	}
	if src.Type != domain.SourceTypeAPI || src.Category != "business" {
		t.Fatalf("unexpected source fields: %+v", src)
	}

	// Simulate health accrued between loads.
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := reg.RecordFetchOutcome(ctx, "hn-feed", ports.FetchOutcome{Success: true, FetchedCount: 12, At: at}); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	report, err = reg.LoadCSV(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if report.Added != 0 || report.Skipped != 3 {
		t.Fatalf("second load report: %+v", report)
	}

	src = loadSource(t, mem, "hn-feed")
	if src.LastSuccess == nil || src.ArticlesLast24h != 12 {
		t.Fatalf("reload must not reset health fields: %+v", src)
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	t.Parallel()

	reg := New(store.NewMemoryStore())
	_, err := reg.LoadCSV(context.Background(), strings.NewReader("source_id,name,type,url\n"))
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func loadSource(t *testing.T, st store.Store, id string) domain.Source {
	t.Helper()
	raw, err := st.Get(context.Background(), store.CollectionSources, id)
	if err != nil {
		t.Fatalf("load source %s: %v", id, err)
	}
	var src domain.Source
	if err := json.Unmarshal(raw, &src); err != nil {
		t.Fatalf("decode source %s: %v", id, err)
	}
	return src
}
