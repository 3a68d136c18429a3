package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// sinceFormat is the ISO-8601 UTC layout GitHub's "updated:>=" qualifier expects.
const sinceFormat = "2006-01-02T15:04:05Z"

// SearchIssues runs the given search expression bounded to issues updated at
// or after since, newest-updated first, capped at maxResults. Pages of size
// min(maxResults, SearchPageSize) are requested until the cap is reached, a
// short page signals end-of-data, or maxPages is hit.
//
// Any transport or API error aborts this query only; the caller is expected
// to log it and move on to the next query.
func (c *Client) SearchIssues(ctx context.Context, expr string, since time.Time, maxResults, maxPages int) ([]Issue, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	if maxPages <= 0 {
		maxPages = DefaultSearchPages
	}

	query := fmt.Sprintf("%s updated:>=%s", expr, since.UTC().Format(sinceFormat))
	perPage := maxResults
	if perPage > SearchPageSize {
		perPage = SearchPageSize
	}

	var items []Issue
	for page := 1; page <= maxPages && len(items) < maxResults; page++ {
		params := map[string]string{
			"q":        query,
			"sort":     "updated",
			"order":    "desc",
			"per_page": strconv.Itoa(perPage),
			"page":     strconv.Itoa(page),
		}

		respBody, err := c.doGet(ctx, c.buildURL("/search/issues", params))
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		var resp searchResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("failed to parse search response: %w", err)
		}

		if len(resp.Items) == 0 {
			break
		}
		items = append(items, resp.Items...)
		if len(resp.Items) < perPage {
			break
		}
	}

	if len(items) > maxResults {
		items = items[:maxResults]
	}
	return items, nil
}
