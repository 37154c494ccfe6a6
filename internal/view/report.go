// Package view renders run and source state for terminal display. It is a
// read-only layer with no bearing on the pipeline's behavior.
package view

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"NewsBrief/internal/domain"
)

// RenderRunSummary formats one run record for terminal display.
func RenderRunSummary(run *domain.IngestionRun) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s [%s]\n", run.RunID, run.Status)
	fmt.Fprintf(&b, "  Started:            %s\n", run.StartedAt.Format(time.RFC3339))
	if run.CompletedAt != nil {
		fmt.Fprintf(&b, "  Completed:          %s\n", run.CompletedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "  Sources checked:    %d\n", run.Stats.SourcesChecked)
	fmt.Fprintf(&b, "  Articles fetched:   %d\n", run.Stats.ArticlesFetched)
	fmt.Fprintf(&b, "  Articles stored:    %d\n", run.Stats.ArticlesStored)
	fmt.Fprintf(&b, "  Duplicates skipped: %d\n", run.Stats.DuplicatesSkipped)
	fmt.Fprintf(&b, "  Brief generated:    %t\n", run.Stats.BriefGenerated)

	if len(run.Stats.Errors) > 0 {
		fmt.Fprintf(&b, "  Errors (%d):\n", len(run.Stats.Errors))
		for _, msg := range run.Stats.Errors {
			fmt.Fprintf(&b, "    - %s\n", msg)
		}
	}
	return b.String()
}

// RenderSourceTable formats source health as an aligned table.
func RenderSourceTable(sources []domain.Source) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCATEGORY\tENABLED\tLAST SUCCESS\tLAST ERROR\t24H")
	for _, src := range sources {
		lastSuccess := "-"
		if src.LastSuccess != nil {
			lastSuccess = src.LastSuccess.Format("2006-01-02 15:04")
		}
		lastError := src.LastError
		if lastError == "" {
			lastError = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\t%s\t%d\n",
			src.ID, src.Name, src.Type, src.Category, src.Enabled,
			lastSuccess, lastError, src.ArticlesLast24h)
	}
	_ = w.Flush()
	return b.String()
}
