// Package watch implements the aggregation stage of the notification
// pipeline: it runs each resolved query against the search client, filters
// out issues already being worked on, deduplicates survivors by URL within
// each query, and groups what remains by query and repository.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/zeyi2/zealot/internal/config"
	"github.com/zeyi2/zealot/internal/github"
	"github.com/zeyi2/zealot/internal/query"
	"github.com/zeyi2/zealot/internal/telemetry"
)

const scopeName = "github.com/zeyi2/zealot/watch"

// Searcher is the slice of the GitHub client the collector needs.
type Searcher interface {
	SearchIssues(ctx context.Context, expr string, since time.Time, maxResults, maxPages int) ([]github.Issue, error)
	HasOpenLinkedPR(ctx context.Context, repo string, number, maxPages int) bool
}

// LinkCheck is the three-state outcome of the linked-work filter, collapsed
// to a boolean at the call site but kept distinct for logging so "skipped due
// to budget" is distinguishable from "checked, found none".
type LinkCheck int

const (
	// LinkSkipped means the check did not run: filter disabled or budget spent.
	LinkSkipped LinkCheck = iota
	// LinkNone means the check ran and found no open linked PR (including
	// lookup failures, which fail open inside the client).
	LinkNone
	// LinkFound means an open pull request cross-references the issue.
	LinkFound
)

// Collector aggregates search results into a grouped report.
type Collector struct {
	client Searcher
	opts   *config.Options
	budget *Budget

	// Log receives per-query failure diagnostics. Defaults to stderr.
	Log io.Writer

	budgetWarned bool

	kept          metric.Int64Counter
	queryFailures metric.Int64Counter
	linkChecks    metric.Int64Counter
	runDuration   metric.Float64Histogram
}

// NewCollector creates a collector with a fresh budget for one run.
func NewCollector(client Searcher, opts *config.Options) *Collector {
	m := telemetry.Meter(scopeName)
	kept, _ := m.Int64Counter("zealot.issues.kept",
		metric.WithDescription("Issues kept for notification this run"),
	)
	queryFailures, _ := m.Int64Counter("zealot.queries.failed",
		metric.WithDescription("Search queries that failed this run"),
	)
	linkChecks, _ := m.Int64Counter("zealot.timeline.checks",
		metric.WithDescription("Linked-PR timeline checks performed this run"),
	)
	runDuration, _ := m.Float64Histogram("zealot.run.duration",
		metric.WithDescription("Collection run duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Collector{
		client:        client,
		opts:          opts,
		budget:        NewBudget(opts.MaxTimelineChecks),
		Log:           os.Stderr,
		kept:          kept,
		queryFailures: queryFailures,
		linkChecks:    linkChecks,
		runDuration:   runDuration,
	}
}

// ChecksUsed returns how many budget units the run consumed.
func (c *Collector) ChecksUsed() int {
	return c.budget.Used()
}

// Collect runs every query and aggregates the survivors. A failed query
// contributes zero results and does not abort the run.
func (c *Collector) Collect(ctx context.Context, queries []query.Query, since time.Time) *Report {
	t0 := time.Now()
	report := NewReport(since)

	for _, q := range queries {
		items, err := c.client.SearchIssues(ctx, q.Expr, since, c.opts.MaxResults, c.opts.SearchMaxPages)
		if err != nil {
			fmt.Fprintf(c.Log, "[ERR] query failed: %s: %v\n", q.Name, err)
			c.queryFailures.Add(ctx, 1)
			continue
		}

		seen := make(map[string]struct{})
		kept := 0

		for _, it := range items {
			// Re-check the server-side time filter. A timestamp that fails
			// to parse passes rather than dropping the issue.
			if updatedBefore(it.UpdatedAt, since) {
				continue
			}
			if strings.ToLower(it.State) != "open" {
				continue
			}
			if len(it.Assignees) > 0 {
				continue
			}
			if c.checkLinkedWork(ctx, &it) == LinkFound {
				continue
			}
			if it.HTMLURL == "" {
				continue
			}
			if _, dup := seen[it.HTMLURL]; dup {
				continue
			}
			seen[it.HTMLURL] = struct{}{}

			report.add(q.Name, it.Repository(), it)
			kept++
		}

		report.Counts[q.Name] = kept
	}

	c.kept.Add(ctx, int64(report.Total()))
	c.runDuration.Record(ctx, float64(time.Since(t0).Milliseconds()))
	return report
}

// checkLinkedWork runs the linked-PR filter for one issue. Every invocation
// of the underlying lookup consumes exactly one budget unit regardless of
// outcome; once the budget is gone the check is skipped for the rest of the
// run and the issue is treated as having no linked work.
func (c *Collector) checkLinkedWork(ctx context.Context, issue *github.Issue) LinkCheck {
	if !c.opts.FilterLinkedPR {
		return LinkSkipped
	}
	if !c.budget.TrySpend() {
		if !c.budgetWarned {
			fmt.Fprintf(c.Log, "[WARN] timeline check budget exhausted (%d); remaining issues skip the linked-PR filter\n",
				c.opts.MaxTimelineChecks)
			c.budgetWarned = true
		}
		return LinkSkipped
	}

	c.linkChecks.Add(ctx, 1)
	if c.client.HasOpenLinkedPR(ctx, issue.Repository(), issue.Number, c.opts.TimelineMaxPages) {
		return LinkFound
	}
	return LinkNone
}

// updatedBefore reports whether the raw timestamp parses and is strictly
// older than the window bound.
func updatedBefore(raw string, since time.Time) bool {
	if raw == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return ts.Before(since)
}
