// Package github provides the client and data types for the GitHub REST API
// surfaces Zealot depends on: issue search and per-issue event timelines.
package github

import (
	"net/http"
	"strings"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 45 * time.Second

	// SearchPageSize is the provider's hard cap on search results per page.
	SearchPageSize = 100

	// DefaultSearchPages is the default ceiling on search pages per query.
	DefaultSearchPages = 3

	// TimelinePageSize is the number of timeline events fetched per page.
	TimelinePageSize = 100

	// DefaultTimelinePages is the default ceiling on timeline pages per issue.
	DefaultTimelinePages = 2
)

// Client provides methods to interact with the GitHub REST API.
type Client struct {
	Token      string       // GitHub personal access token
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// Issue is an issue snapshot as returned by the search API.
//
// CreatedAt and UpdatedAt are kept as the raw wire strings: the aggregator
// re-validates UpdatedAt client-side and must treat a malformed timestamp as
// passing rather than dropping the whole item.
type Issue struct {
	Number        int     `json:"number"`
	Title         string  `json:"title"`
	State         string  `json:"state"` // "open" or "closed"
	HTMLURL       string  `json:"html_url"`
	RepositoryURL string  `json:"repository_url"`
	Labels        []Label `json:"labels"`
	Assignees     []User  `json:"assignees"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// Repository derives the "owner/name" slug from the issue's repository_url.
func (i *Issue) Repository() string {
	parts := strings.Split(i.RepositoryURL, "/")
	if len(parts) < 2 {
		return i.RepositoryURL
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// Label represents a GitHub label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"` // hex without "#", e.g. "d73a4a"
}

// User represents a GitHub user.
type User struct {
	Login string `json:"login"`
}

// searchResponse is the envelope returned by /search/issues.
type searchResponse struct {
	TotalCount int     `json:"total_count"`
	Items      []Issue `json:"items"`
}

// TimelineEvent is a single event from an issue's timeline.
// Only "cross-referenced" events carry a Source.
type TimelineEvent struct {
	Event  string       `json:"event"`
	Source *EventSource `json:"source,omitempty"`
}

// EventSource describes what generated a cross-referenced event.
type EventSource struct {
	Issue *SourceIssue `json:"issue,omitempty"`
}

// SourceIssue is the issue or pull request behind a cross-reference.
// PullRequest is non-nil when the source is a PR.
type SourceIssue struct {
	Number      int      `json:"number"`
	State       string   `json:"state"`
	PullRequest *PullRef `json:"pull_request,omitempty"`
}

// PullRef marks a source issue as actually being a pull request.
type PullRef struct {
	URL string `json:"url,omitempty"`
}
