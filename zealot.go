// Package zealot provides a minimal public API for embedding the issue
// watcher in other Go programs.
//
// Most users should run the zealot binary. This package exports only the
// essential types and functions needed for programmatic scans, e.g. a bot
// that wants zealot's filtering without its delivery channels.
package zealot

import (
	"context"
	"net/http"
	"time"

	"github.com/zeyi2/zealot/internal/config"
	"github.com/zeyi2/zealot/internal/github"
	"github.com/zeyi2/zealot/internal/query"
	"github.com/zeyi2/zealot/internal/report"
	"github.com/zeyi2/zealot/internal/watch"
)

// Core types for working with scan results
type (
	Issue   = github.Issue
	Label   = github.Label
	Query   = query.Query
	Report  = watch.Report
	Options = config.Options
)

// LoadOptions resolves run options from the two config documents plus
// environment overrides. Either path may point at a missing file.
func LoadOptions(searchPath, targetsPath string) (*Options, []Query, error) {
	a, err := config.LoadSearch(searchPath)
	if err != nil {
		return nil, nil, err
	}
	b, err := config.LoadTargets(targetsPath)
	if err != nil {
		return nil, nil, err
	}

	opts, err := config.ResolveOptions(a, b)
	if err != nil {
		return nil, nil, err
	}
	queries, err := query.Resolve(a, b)
	if err != nil {
		return nil, nil, err
	}
	return opts, queries, nil
}

// Scan runs one collection cycle: every query is searched, and surviving
// issues (open, unassigned, no open linked PR, not seen before in the same
// query) are grouped by query and repository.
func Scan(ctx context.Context, opts *Options, queries []Query, since time.Time) *Report {
	client := github.NewClient(opts.Token).
		WithHTTPClient(&http.Client{Timeout: opts.HTTPTimeout})
	if opts.APIBaseURL != "" {
		client = client.WithBaseURL(opts.APIBaseURL)
	}
	return watch.NewCollector(client, opts).Collect(ctx, queries, since)
}

// RenderText renders a report as the plain-text notification body.
func RenderText(r *Report) string {
	return report.Text(r, "")
}

// RenderHTML renders a report as the HTML notification body.
func RenderHTML(r *Report) string {
	return report.HTML(r, "")
}
