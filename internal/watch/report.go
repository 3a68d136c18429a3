package watch

import (
	"sort"
	"time"

	"github.com/zeyi2/zealot/internal/github"
)

// Report is the grouped result of one run: query name -> repository ->
// issues in provider order, plus per-query kept counts. Built fresh each run.
type Report struct {
	Since   time.Time
	ByQuery map[string]map[string][]github.Issue
	Counts  map[string]int
}

// NewReport creates an empty report for the given run window.
func NewReport(since time.Time) *Report {
	return &Report{
		Since:   since,
		ByQuery: make(map[string]map[string][]github.Issue),
		Counts:  make(map[string]int),
	}
}

func (r *Report) add(queryName, repo string, issue github.Issue) {
	byRepo, ok := r.ByQuery[queryName]
	if !ok {
		byRepo = make(map[string][]github.Issue)
		r.ByQuery[queryName] = byRepo
	}
	byRepo[repo] = append(byRepo[repo], issue)
}

// Total returns the sum of per-query kept counts.
func (r *Report) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Empty reports whether no issues were kept.
func (r *Report) Empty() bool {
	return len(r.ByQuery) == 0
}

// ActiveQueries returns how many queries kept at least one issue.
func (r *Report) ActiveQueries() int {
	n := 0
	for _, count := range r.Counts {
		if count > 0 {
			n++
		}
	}
	return n
}

// Queries returns the query names with kept issues, lexicographically sorted
// so report sections render deterministically.
func (r *Report) Queries() []string {
	names := make([]string, 0, len(r.ByQuery))
	for name := range r.ByQuery {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Repositories returns the sorted repository names under one query.
func (r *Report) Repositories(queryName string) []string {
	repos := make([]string, 0, len(r.ByQuery[queryName]))
	for repo := range r.ByQuery[queryName] {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}

// SinceISO renders the run window lower bound the way the search API saw it.
func (r *Report) SinceISO() string {
	return r.Since.UTC().Format("2006-01-02T15:04:05Z")
}
