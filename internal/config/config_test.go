package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSearch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"queries": [{"name": "triage", "q": "repo:org/x is:issue label:bug"}],
		"interval_minutes": 15,
		"max_results": 50
	}`)

	cfg, err := LoadSearch(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.Queries, 1)
	assert.Equal(t, "triage", cfg.Queries[0].Name)
	assert.Equal(t, 15, cfg.IntervalMinutes)
	assert.Equal(t, 50, cfg.MaxResults)
}

func TestLoadSearch_Missing(t *testing.T) {
	cfg, err := LoadSearch(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadSearch_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{broken`)

	_, err := LoadSearch(path)
	assert.Error(t, err)
}

func TestLoadTargets(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "targets.yaml", `
repos:
  - org/x
  - org/y
labels:
  - bug
  - "help wanted"
exclude_labels:
  - wontfix
interval_minutes: 45
`)

	cfg, err := LoadTargets(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"org/x", "org/y"}, cfg.Repos)
	assert.Equal(t, []string{"bug", "help wanted"}, cfg.Labels)
	assert.Equal(t, []string{"wontfix"}, cfg.ExcludeLabels)
	assert.Equal(t, 45, cfg.IntervalMinutes)
}

func TestResolveOptions_MissingToken(t *testing.T) {
	t.Setenv("GH_TOKEN", "")

	_, err := ResolveOptions(nil, nil)
	assert.Error(t, err)
}

func TestResolveOptions_Defaults(t *testing.T) {
	t.Setenv("GH_TOKEN", "tok")

	opts, err := ResolveOptions(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultIntervalMinutes, opts.IntervalMinutes)
	assert.Equal(t, DefaultMaxResults, opts.MaxResults)
	assert.True(t, opts.FilterLinkedPR)
	assert.Equal(t, DefaultMaxTimelineChecks, opts.MaxTimelineChecks)
	assert.Equal(t, DefaultTimelineMaxPages, opts.TimelineMaxPages)
	assert.Equal(t, DefaultSearchMaxPages, opts.SearchMaxPages)
	assert.Equal(t, 45*time.Second, opts.HTTPTimeout)
	assert.False(t, opts.SMTP.Complete())
	assert.False(t, opts.Telegram.Complete())
}

func TestResolveOptions_Precedence(t *testing.T) {
	t.Setenv("GH_TOKEN", "tok")

	a := &SearchConfig{IntervalMinutes: 15, MaxResults: 50}
	b := &TargetsConfig{IntervalMinutes: 60, MaxResults: 25}

	// Document A beats Document B.
	opts, err := ResolveOptions(a, b)
	require.NoError(t, err)
	assert.Equal(t, 15, opts.IntervalMinutes)
	assert.Equal(t, 50, opts.MaxResults)

	// Document B fills gaps A leaves.
	opts, err = ResolveOptions(&SearchConfig{}, b)
	require.NoError(t, err)
	assert.Equal(t, 60, opts.IntervalMinutes)
	assert.Equal(t, 25, opts.MaxResults)

	// Environment beats both.
	t.Setenv("INTERVAL_MIN", "5")
	t.Setenv("MAX_RESULTS", "10")
	opts, err = ResolveOptions(a, b)
	require.NoError(t, err)
	assert.Equal(t, 5, opts.IntervalMinutes)
	assert.Equal(t, 10, opts.MaxResults)
}

func TestResolveOptions_FilterToggle(t *testing.T) {
	t.Setenv("GH_TOKEN", "tok")
	t.Setenv("FILTER_LINKED_PR", "0")

	opts, err := ResolveOptions(nil, nil)
	require.NoError(t, err)
	assert.False(t, opts.FilterLinkedPR)
}

func TestResolveOptions_BadHTTPTimeout(t *testing.T) {
	t.Setenv("GH_TOKEN", "tok")
	t.Setenv("HTTP_TIMEOUT", "soon")

	// A non-numeric value must fall back to the default, not disable
	// client timeouts by resolving to zero.
	opts, err := ResolveOptions(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPTimeoutSecs*time.Second, opts.HTTPTimeout)

	t.Setenv("HTTP_TIMEOUT", "-3")
	opts, err = ResolveOptions(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPTimeoutSecs*time.Second, opts.HTTPTimeout)
}

func TestResolveOptions_APIBaseURL(t *testing.T) {
	t.Setenv("GH_TOKEN", "tok")

	opts, err := ResolveOptions(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, opts.APIBaseURL)

	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")
	opts, err = ResolveOptions(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3", opts.APIBaseURL)
}

func TestChannelCompleteness(t *testing.T) {
	smtp := SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Pass: "p", From: "a@b", To: "c@d"}
	assert.True(t, smtp.Complete())
	smtp.Pass = ""
	assert.False(t, smtp.Complete())

	tg := TelegramConfig{BotToken: "t", ChatID: "123"}
	assert.True(t, tg.Complete())
	tg.ChatID = ""
	assert.False(t, tg.Complete())
}

func TestWindow(t *testing.T) {
	opts := &Options{IntervalMinutes: 30}
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 11, 30, 0, 0, time.UTC), opts.Window(now))
}
