package github

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// HasOpenLinkedPR reports whether any currently-open pull request
// cross-references the given issue, by scanning the issue's event timeline
// page by page up to maxPages.
//
// The check fails open: any transport error, non-2xx response, or malformed
// payload yields false rather than an error, so a flaky timeline lookup never
// blocks notification of an otherwise-actionable issue.
func (c *Client) HasOpenLinkedPR(ctx context.Context, repo string, number, maxPages int) bool {
	if maxPages <= 0 {
		maxPages = DefaultTimelinePages
	}

	path := "/repos/" + repo + "/issues/" + strconv.Itoa(number) + "/timeline"
	for page := 1; page <= maxPages; page++ {
		params := map[string]string{
			"per_page": strconv.Itoa(TimelinePageSize),
			"page":     strconv.Itoa(page),
		}

		respBody, err := c.doGet(ctx, c.buildURL(path, params))
		if err != nil {
			return false
		}

		var events []TimelineEvent
		if err := json.Unmarshal(respBody, &events); err != nil {
			return false
		}

		for _, ev := range events {
			if ev.Event != "cross-referenced" || ev.Source == nil || ev.Source.Issue == nil {
				continue
			}
			src := ev.Source.Issue
			if src.PullRequest != nil && strings.EqualFold(src.State, "open") {
				return true
			}
		}

		if len(events) < TimelinePageSize {
			break
		}
	}

	return false
}
