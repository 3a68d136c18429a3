// Package query resolves the named search queries for a run by merging the
// two configuration documents into one ordered list.
package query

import (
	"errors"
	"strings"

	"github.com/zeyi2/zealot/internal/config"
)

// ErrNoQueries is returned when the merged query list is empty.
// There is nothing to search, so the run cannot proceed.
var ErrNoQueries = errors.New("no queries configured: provide config.json queries or targets.yaml repos+labels")

// Query is a named search expression against the issue-search provider.
type Query struct {
	Name string
	Expr string
}

// FromConfig translates Document A's literal queries. A query without a name
// falls back to a prefix of its expression so report grouping stays keyed.
func FromConfig(cfg *config.SearchConfig) []Query {
	if cfg == nil {
		return nil
	}
	queries := make([]Query, 0, len(cfg.Queries))
	for _, lq := range cfg.Queries {
		name := lq.Name
		if name == "" {
			name = truncateName(lq.Q, 40)
		}
		queries = append(queries, Query{Name: name, Expr: lq.Q})
	}
	return queries
}

// FromTargets synthesizes one query per repository from Document B, combining
// include labels with OR and exclude labels as negated terms. Both repos and
// labels must be non-empty for anything to be synthesized.
func FromTargets(cfg *config.TargetsConfig) []Query {
	if cfg == nil || len(cfg.Repos) == 0 || len(cfg.Labels) == 0 {
		return nil
	}

	orTerms := make([]string, 0, len(cfg.Labels))
	for _, lb := range cfg.Labels {
		orTerms = append(orTerms, labelTerm(lb, false))
	}
	labelOr := strings.Join(orTerms, " OR ")

	var excl string
	if len(cfg.ExcludeLabels) > 0 {
		negTerms := make([]string, 0, len(cfg.ExcludeLabels))
		for _, lb := range cfg.ExcludeLabels {
			negTerms = append(negTerms, labelTerm(lb, true))
		}
		excl = strings.Join(negTerms, " ")
	}

	queries := make([]Query, 0, len(cfg.Repos))
	for _, repo := range cfg.Repos {
		expr := strings.TrimSpace("repo:" + repo + " is:issue is:open (" + labelOr + ") " + excl)
		queries = append(queries, Query{
			Name: repo + "-" + nameSuffix(cfg.Labels),
			Expr: expr,
		})
	}
	return queries
}

// Resolve merges the two documents: Document A's literal queries first, then
// Document B's synthesized ones. An empty merged list is fatal.
func Resolve(a *config.SearchConfig, b *config.TargetsConfig) ([]Query, error) {
	queries := append(FromConfig(a), FromTargets(b)...)
	if len(queries) == 0 {
		return nil, ErrNoQueries
	}
	return queries, nil
}

// labelTerm renders a label qualifier, quoting labels that contain spaces.
func labelTerm(label string, negate bool) string {
	prefix := "label:"
	if negate {
		prefix = "-label:"
	}
	if strings.Contains(label, " ") {
		return prefix + `"` + label + `"`
	}
	return prefix + label
}

// nameSuffix joins label names with underscores for the deterministic
// synthesized query name, replacing inner spaces with underscores.
func nameSuffix(labels []string) string {
	parts := make([]string, 0, len(labels))
	for _, lb := range labels {
		parts = append(parts, strings.ReplaceAll(lb, " ", "_"))
	}
	return strings.Join(parts, "_")
}

// truncateName shortens an expression-derived name to max runes, never
// splitting a multibyte character.
func truncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
