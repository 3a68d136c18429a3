// Package report renders the grouped run report as an HTML document and a
// plain-text fallback. Rendering is a pure function of the report; sections
// and repositories are ordered lexicographically for determinism.
package report

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/zeyi2/zealot/internal/github"
	"github.com/zeyi2/zealot/internal/watch"
)

const fontStack = "ui-sans-serif,system-ui,Arial"

// defaultLabelColor backs labels whose color is missing from the payload.
const defaultLabelColor = "dddddd"

type htmlPage struct {
	Since   string
	Digest  string
	Queries []htmlQuery
}

type htmlQuery struct {
	Name    string
	Summary string // "N results"
	Repos   []htmlRepo
}

type htmlRepo struct {
	Name string
	URL  string
	Rows []htmlRow
}

type htmlRow struct {
	Number    int
	Title     string
	URL       string
	Labels    []htmlBadge
	Assignees string
	State     string
	Updated   string
	Created   string
}

type htmlBadge struct {
	Name  string
	Style template.CSS
}

var pageTmpl = template.Must(template.New("page").Parse(`<div style="font-family:` + fontStack + `; font-size:14px;"><div style="margin:0 0 16px; color:#57606a;">Time window: since {{.Since}}</div>{{if .Digest}}<div style="margin:0 0 16px; padding:8px 12px; background:#f6f8fa; border-radius:6px;">{{.Digest}}</div>{{end}}{{range .Queries}}<h2 style="margin:12px 0 8px;">Query: {{.Name}} ({{.Summary}})</h2>{{range .Repos}}<h3 style="margin:20px 0 8px;"><a href="{{.URL}}" style="text-decoration:none; color:#24292f;">{{.Name}}</a></h3>
<table role="grid" style="border-collapse:collapse; width:100%; font-size:14px;">
  <thead>
    <tr style="background:#f6f8fa;">
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">Issue</th>
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">Title</th>
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">Labels</th>
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">Assignees</th>
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">State</th>
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">Updated</th>
      <th style="padding:8px; border:1px solid #ddd; text-align:left;">Created</th>
    </tr>
  </thead>
  <tbody>{{range .Rows}}
    <tr>
      <td style="padding:8px; border:1px solid #ddd; white-space:nowrap;"><a href="{{.URL}}" style="text-decoration:none;">#{{.Number}}</a></td>
      <td style="padding:8px; border:1px solid #ddd;"><a href="{{.URL}}" style="text-decoration:none; color:#0969da;"><strong>{{.Title}}</strong></a></td>
      <td style="padding:8px; border:1px solid #ddd;">{{range .Labels}}<span style="display:inline-block; padding:2px 6px; margin:2px 4px 2px 0; border-radius:12px; font-size:12px; line-height:18px; {{.Style}}">{{.Name}}</span>{{end}}</td>
      <td style="padding:8px; border:1px solid #ddd; white-space:nowrap;">{{.Assignees}}</td>
      <td style="padding:8px; border:1px solid #ddd; text-transform:capitalize; white-space:nowrap;">{{.State}}</td>
      <td style="padding:8px; border:1px solid #ddd; white-space:nowrap;">{{.Updated}}</td>
      <td style="padding:8px; border:1px solid #ddd; white-space:nowrap;">{{.Created}}</td>
    </tr>{{end}}
  </tbody>
</table>{{end}}{{end}}<div style="margin-top:16px; color:#57606a;">-- Powered by Zealot</div></div>`))

var emptyTmpl = template.Must(template.New("empty").Parse(
	`<div style="font-family:` + fontStack + `; font-size:14px;">No update since: {{.}}</div>`))

// HTML renders the report as a self-contained HTML fragment suitable for the
// email body. digest, when non-empty, is prepended as a summary paragraph.
func HTML(r *watch.Report, digest string) string {
	var sb strings.Builder

	if r.Empty() {
		_ = emptyTmpl.Execute(&sb, r.SinceISO())
		return sb.String()
	}

	page := htmlPage{Since: r.SinceISO(), Digest: digest}
	for _, qname := range r.Queries() {
		q := htmlQuery{
			Name:    qname,
			Summary: plural(r.Counts[qname], "result"),
		}
		for _, repo := range r.Repositories(qname) {
			hr := htmlRepo{Name: repo, URL: "https://github.com/" + repo}
			for _, it := range r.ByQuery[qname][repo] {
				hr.Rows = append(hr.Rows, htmlRow{
					Number:    it.Number,
					Title:     it.Title,
					URL:       it.HTMLURL,
					Labels:    badges(it.Labels),
					Assignees: assigneeNames(it.Assignees),
					State:     strings.ToLower(it.State),
					Updated:   it.UpdatedAt,
					Created:   it.CreatedAt,
				})
			}
			q.Repos = append(q.Repos, hr)
		}
		page.Queries = append(page.Queries, q)
	}

	_ = pageTmpl.Execute(&sb, page)
	return sb.String()
}

// Text renders the plain-text fallback, markdown-shaped so it reads well in
// chat clients and terminals.
func Text(r *watch.Report, digest string) string {
	if r.Empty() {
		return "No update since: " + r.SinceISO() + "\n"
	}

	var sb strings.Builder
	sb.WriteString("Github Issue Update since: " + r.SinceISO())
	if digest != "" {
		sb.WriteString("\n\n" + digest)
	}

	for _, qname := range r.Queries() {
		sb.WriteString(fmt.Sprintf("\n\n### Query: %s (%s)", qname, plural(r.Counts[qname], "result")))
		for _, repo := range r.Repositories(qname) {
			sb.WriteString("\n\n## " + repo)
			for _, it := range r.ByQuery[qname][repo] {
				sb.WriteString(fmt.Sprintf("\n- #%d %s [%s]", it.Number, it.Title, it.HTMLURL))
				sb.WriteString(fmt.Sprintf("\n  labels: %s | assignees: %s | state: %s",
					labelNames(it.Labels), assigneeNames(it.Assignees), stateOrDash(it.State)))
				sb.WriteString(fmt.Sprintf("\n  updated: %s  created: %s", it.UpdatedAt, it.CreatedAt))
			}
		}
	}

	sb.WriteString("\n\n-- Powered by Zealot\n")
	return sb.String()
}

// Subject builds the delivery subject line for a non-empty report.
func Subject(total, activeQueries int) string {
	return fmt.Sprintf("[Zealot] %s across %s",
		plural(total, "unassigned open issue"), plural(activeQueries, "query"))
}

// badges converts labels to styled chips, choosing the text color for
// contrast against the label's background luminance.
func badges(labels []github.Label) []htmlBadge {
	out := make([]htmlBadge, 0, len(labels))
	for _, lb := range labels {
		color := lb.Color
		if color == "" {
			color = defaultLabelColor
		}
		style := fmt.Sprintf("background-color: #%s; color: %s;", color, contrastColor(color))
		out = append(out, htmlBadge{Name: lb.Name, Style: template.CSS(style)})
	}
	return out
}

// contrastColor returns black for light backgrounds and white for dark ones,
// using the Rec. 709 luma weights. Unparsable colors are treated as light.
func contrastColor(hexColor string) string {
	luminance := 200.0
	if len(hexColor) >= 6 {
		r, errR := strconv.ParseInt(hexColor[0:2], 16, 32)
		g, errG := strconv.ParseInt(hexColor[2:4], 16, 32)
		b, errB := strconv.ParseInt(hexColor[4:6], 16, 32)
		if errR == nil && errG == nil && errB == nil {
			luminance = 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
		}
	}
	if luminance > 160 {
		return "#000000"
	}
	return "#ffffff"
}

func labelNames(labels []github.Label) string {
	names := make([]string, 0, len(labels))
	for _, lb := range labels {
		names = append(names, lb.Name)
	}
	return strings.Join(names, ", ")
}

// assigneeNames joins assignee logins, with a placeholder when empty. The
// aggregator already excludes assigned issues, but the renderer does not
// assume that invariant.
func assigneeNames(assignees []github.User) string {
	if len(assignees) == 0 {
		return "--"
	}
	names := make([]string, 0, len(assignees))
	for _, a := range assignees {
		names = append(names, a.Login)
	}
	return strings.Join(names, ", ")
}

func stateOrDash(state string) string {
	if state == "" {
		return "--"
	}
	return strings.ToLower(state)
}

// plural renders "1 result" / "3 results" / "2 queries".
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	if strings.HasSuffix(word, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(word, "y"))
	}
	return fmt.Sprintf("%d %ss", n, word)
}
