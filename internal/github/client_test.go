package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewClient verifies the constructor creates a properly configured client.
func TestNewClient(t *testing.T) {
	client := NewClient("test-token")

	if client.Token != "test-token" {
		t.Errorf("Token = %q, want %q", client.Token, "test-token")
	}
	if client.BaseURL != DefaultAPIEndpoint {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL, DefaultAPIEndpoint)
	}
	if client.HTTPClient == nil {
		t.Error("HTTPClient is nil, want non-nil default client")
	}
}

// TestClientWithBaseURL verifies custom base URL setting.
func TestClientWithBaseURL(t *testing.T) {
	client := NewClient("token").WithBaseURL("https://github.example.com/api/v3")

	if client.BaseURL != "https://github.example.com/api/v3" {
		t.Errorf("BaseURL = %q, want custom URL", client.BaseURL)
	}
	if client.Token != "token" {
		t.Errorf("Token = %q, want %q", client.Token, "token")
	}
}

// TestBuildURL verifies URL construction for API endpoints.
func TestBuildURL(t *testing.T) {
	client := NewClient("token")

	tests := []struct {
		name    string
		path    string
		params  map[string]string
		wantURL string
	}{
		{
			name:    "search endpoint",
			path:    "/search/issues",
			params:  nil,
			wantURL: "https://api.github.com/search/issues",
		},
		{
			name:    "with query params",
			path:    "/search/issues",
			params:  map[string]string{"sort": "updated", "per_page": "100"},
			wantURL: "https://api.github.com/search/issues",
		},
		{
			name:    "timeline",
			path:    "/repos/org/x/issues/42/timeline",
			params:  nil,
			wantURL: "https://api.github.com/repos/org/x/issues/42/timeline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.buildURL(tt.path, tt.params)
			if !strings.HasPrefix(got, tt.wantURL) {
				t.Errorf("buildURL(%q) = %q, want prefix %q", tt.path, got, tt.wantURL)
			}
			for k, v := range tt.params {
				if !strings.Contains(got, k+"="+v) {
					t.Errorf("buildURL missing param %s=%s in %q", k, v, got)
				}
			}
		})
	}
}

// TestIssueRepository verifies owner/name derivation from repository_url.
func TestIssueRepository(t *testing.T) {
	issue := Issue{RepositoryURL: "https://api.github.com/repos/org/x"}
	if got := issue.Repository(); got != "org/x" {
		t.Errorf("Repository() = %q, want %q", got, "org/x")
	}
}

// TestSearchIssues_Success verifies a single-page search.
func TestSearchIssues_Success(t *testing.T) {
	since := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("Authorization header = %q, want Bearer prefix", r.Header.Get("Authorization"))
		}
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "updated:>=2026-08-01T12:00:00Z") {
			t.Errorf("query %q missing updated qualifier", q)
		}
		if r.URL.Query().Get("sort") != "updated" || r.URL.Query().Get("order") != "desc" {
			t.Errorf("sort/order = %s/%s, want updated/desc", r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
		}

		resp := searchResponse{
			TotalCount: 2,
			Items: []Issue{
				{Number: 5, Title: "First", State: "open", HTMLURL: "https://github.com/org/x/issues/5"},
				{Number: 7, Title: "Second", State: "open", HTMLURL: "https://github.com/org/x/issues/7"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	issues, err := client.SearchIssues(context.Background(), "repo:org/x is:issue", since, 100, 3)
	if err != nil {
		t.Fatalf("SearchIssues() error = %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("len(issues) = %d, want 2", len(issues))
	}
	if issues[0].Number != 5 {
		t.Errorf("issues[0].Number = %d, want 5", issues[0].Number)
	}
}

// TestSearchIssues_Pagination verifies the page loop stops at the result cap.
func TestSearchIssues_Pagination(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		perPage := 100
		items := make([]Issue, perPage)
		for i := range items {
			items[i] = Issue{Number: (pages-1)*perPage + i + 1, State: "open"}
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Items: items})
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	issues, err := client.SearchIssues(context.Background(), "is:issue", time.Now(), 150, 10)
	if err != nil {
		t.Fatalf("SearchIssues() error = %v", err)
	}
	if len(issues) != 150 {
		t.Errorf("len(issues) = %d, want 150 (capped)", len(issues))
	}
	if pages != 2 {
		t.Errorf("pages fetched = %d, want 2", pages)
	}
}

// TestSearchIssues_ShortPageStops verifies end-of-data detection.
func TestSearchIssues_ShortPageStops(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		_ = json.NewEncoder(w).Encode(searchResponse{Items: []Issue{{Number: 1}}})
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	issues, err := client.SearchIssues(context.Background(), "is:issue", time.Now(), 100, 5)
	if err != nil {
		t.Fatalf("SearchIssues() error = %v", err)
	}
	if len(issues) != 1 {
		t.Errorf("len(issues) = %d, want 1", len(issues))
	}
	if pages != 1 {
		t.Errorf("pages fetched = %d, want 1 (short page ends the loop)", pages)
	}
}

// TestSearchIssues_PageCeiling verifies the page-count ceiling is honored
// even when the server keeps returning full pages.
func TestSearchIssues_PageCeiling(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		// Always a full page, so only the ceiling stops the loop.
		items := make([]Issue, SearchPageSize)
		for i := range items {
			items[i] = Issue{Number: (pages-1)*SearchPageSize + i + 1}
		}
		_ = json.NewEncoder(w).Encode(searchResponse{Items: items})
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	issues, err := client.SearchIssues(context.Background(), "is:issue", time.Now(), 1000, 3)
	if err != nil {
		t.Fatalf("SearchIssues() error = %v", err)
	}
	if len(issues) != 300 {
		t.Errorf("len(issues) = %d, want 300 (3 full pages)", len(issues))
	}
	if pages != 3 {
		t.Errorf("pages fetched = %d, want 3 (ceiling)", pages)
	}
}

// TestSearchIssues_APIError verifies non-2xx responses surface as errors.
func TestSearchIssues_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "boom"}`))
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	_, err := client.SearchIssues(context.Background(), "is:issue", time.Now(), 100, 3)
	if err == nil {
		t.Fatal("SearchIssues() error = nil, want error on 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention status 500", err)
	}
}

// TestHasOpenLinkedPR_Found verifies detection of an open cross-referencing PR.
func TestHasOpenLinkedPR_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/repos/org/x/issues/5/timeline") {
			t.Errorf("URL path = %s, want timeline path", r.URL.Path)
		}
		events := []TimelineEvent{
			{Event: "labeled"},
			{Event: "cross-referenced", Source: &EventSource{Issue: &SourceIssue{
				Number: 9, State: "open", PullRequest: &PullRef{URL: "https://api.github.com/repos/org/x/pulls/9"},
			}}},
		}
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	if !client.HasOpenLinkedPR(context.Background(), "org/x", 5, 2) {
		t.Error("HasOpenLinkedPR() = false, want true")
	}
}

// TestHasOpenLinkedPR_ClosedPRIgnored verifies closed PRs do not count.
func TestHasOpenLinkedPR_ClosedPRIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		events := []TimelineEvent{
			{Event: "cross-referenced", Source: &EventSource{Issue: &SourceIssue{
				Number: 9, State: "closed", PullRequest: &PullRef{},
			}}},
			// Cross-referenced by a plain issue, not a PR.
			{Event: "cross-referenced", Source: &EventSource{Issue: &SourceIssue{
				Number: 11, State: "open",
			}}},
		}
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	if client.HasOpenLinkedPR(context.Background(), "org/x", 5, 2) {
		t.Error("HasOpenLinkedPR() = true, want false")
	}
}

// TestHasOpenLinkedPR_FailsOpen verifies errors and bad payloads yield false.
func TestHasOpenLinkedPR_FailsOpen(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"not": "an array"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient("token").WithBaseURL(server.URL)
			if client.HasOpenLinkedPR(context.Background(), "org/x", 5, 2) {
				t.Error("HasOpenLinkedPR() = true, want false (fail-open)")
			}
		})
	}
}

// TestHasOpenLinkedPR_PageCeiling verifies the timeline page ceiling.
func TestHasOpenLinkedPR_PageCeiling(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		// Always a full page of uninteresting events.
		events := make([]TimelineEvent, TimelinePageSize)
		for i := range events {
			events[i] = TimelineEvent{Event: "commented"}
		}
		_ = json.NewEncoder(w).Encode(events)
	}))
	defer server.Close()

	client := NewClient("token").WithBaseURL(server.URL)
	if client.HasOpenLinkedPR(context.Background(), "org/x", 5, 2) {
		t.Error("HasOpenLinkedPR() = true, want false")
	}
	if pages != 2 {
		t.Errorf("pages fetched = %d, want 2 (ceiling)", pages)
	}
}
