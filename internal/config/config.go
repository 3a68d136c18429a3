// Package config loads Zealot's two configuration documents and resolves the
// effective run options from them plus environment overrides.
//
// Document A (config.json) carries a literal list of named search queries.
// Document B (targets.yaml) carries repositories and label filters from which
// queries are synthesized. Either document may be absent; both absent is a
// fatal configuration error surfaced by the query resolver.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Hard defaults, applied when neither environment nor documents set a value.
const (
	DefaultIntervalMinutes   = 30
	DefaultMaxResults        = 100
	DefaultMaxTimelineChecks = 60
	DefaultTimelineMaxPages  = 2
	DefaultSearchMaxPages    = 3
	DefaultHTTPTimeoutSecs   = 45

	DefaultSearchConfigPath  = "config.json"
	DefaultTargetsConfigPath = "targets.yaml"

	DefaultHTMLOutput = "notify.html"
	DefaultTextOutput = "notify.txt"
)

// errMissingToken is returned when GH_TOKEN is absent.
var errMissingToken = errors.New("missing env: GH_TOKEN")

// LiteralQuery is one entry of Document A's query list.
type LiteralQuery struct {
	Name string `json:"name"`
	Q    string `json:"q"`
}

// SearchConfig is Document A: literal queries plus its own defaults.
type SearchConfig struct {
	Queries         []LiteralQuery `json:"queries"`
	IntervalMinutes int            `json:"interval_minutes"`
	MaxResults      int            `json:"max_results"`
}

// TargetsConfig is Document B: repositories and label filters plus defaults.
type TargetsConfig struct {
	Repos           []string `yaml:"repos"`
	Labels          []string `yaml:"labels"`
	ExcludeLabels   []string `yaml:"exclude_labels"`
	IntervalMinutes int      `yaml:"interval_minutes"`
	MaxResults      int      `yaml:"max_results"`
}

// LoadSearch reads Document A. A missing file is not an error; it returns
// (nil, nil) so the resolver can fall through to Document B.
func LoadSearch(path string) (*SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg SearchConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadTargets reads Document B. A missing file is not an error.
func LoadTargets(path string) (*TargetsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg TargetsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SMTPConfig holds the email delivery settings. The channel activates only
// when every field is present.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

// Complete reports whether the email channel has everything it needs.
func (s SMTPConfig) Complete() bool {
	return s.Host != "" && s.Port != 0 && s.User != "" && s.Pass != "" && s.From != "" && s.To != ""
}

// TelegramConfig holds the chat-bot delivery settings.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Complete reports whether the Telegram channel has everything it needs.
func (t TelegramConfig) Complete() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Options is the resolved configuration for one run.
type Options struct {
	Token string

	// APIBaseURL overrides the GitHub API endpoint (GITHUB_API_URL, set by
	// Actions on GitHub Enterprise). Empty means the public API.
	APIBaseURL string

	IntervalMinutes   int
	MaxResults        int
	FilterLinkedPR    bool
	MaxTimelineChecks int
	TimelineMaxPages  int
	SearchMaxPages    int
	HTTPTimeout       time.Duration

	SMTP     SMTPConfig
	Telegram TelegramConfig

	HTMLOutput string
	TextOutput string
}

// ResolveOptions merges environment overrides with the two documents.
// Precedence for interval and result cap: env > Document A > Document B >
// hard default. GH_TOKEN is required.
func ResolveOptions(a *SearchConfig, b *TargetsConfig) (*Options, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("FILTER_LINKED_PR", "1")
	v.SetDefault("MAX_TIMELINE_CHECKS", DefaultMaxTimelineChecks)
	v.SetDefault("TIMELINE_MAX_PAGES", DefaultTimelineMaxPages)
	v.SetDefault("PAGINATE_PAGES", DefaultSearchMaxPages)
	v.SetDefault("HTTP_TIMEOUT", DefaultHTTPTimeoutSecs)

	token := v.GetString("GH_TOKEN")
	if token == "" {
		return nil, errMissingToken
	}

	interval := v.GetInt("INTERVAL_MIN")
	if interval == 0 && a != nil {
		interval = a.IntervalMinutes
	}
	if interval == 0 && b != nil {
		interval = b.IntervalMinutes
	}
	if interval == 0 {
		interval = DefaultIntervalMinutes
	}

	maxResults := v.GetInt("MAX_RESULTS")
	if maxResults == 0 && a != nil {
		maxResults = a.MaxResults
	}
	if maxResults == 0 && b != nil {
		maxResults = b.MaxResults
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}

	// A garbage HTTP_TIMEOUT value parses to 0, which would disable client
	// timeouts entirely; fall back to the default instead.
	timeoutSecs := v.GetInt("HTTP_TIMEOUT")
	if timeoutSecs <= 0 {
		timeoutSecs = DefaultHTTPTimeoutSecs
	}

	opts := &Options{
		Token:             token,
		APIBaseURL:        v.GetString("GITHUB_API_URL"),
		IntervalMinutes:   interval,
		MaxResults:        maxResults,
		FilterLinkedPR:    v.GetString("FILTER_LINKED_PR") == "1",
		MaxTimelineChecks: v.GetInt("MAX_TIMELINE_CHECKS"),
		TimelineMaxPages:  v.GetInt("TIMELINE_MAX_PAGES"),
		SearchMaxPages:    v.GetInt("PAGINATE_PAGES"),
		HTTPTimeout:       time.Duration(timeoutSecs) * time.Second,
		SMTP: SMTPConfig{
			Host: v.GetString("SMTP_HOST"),
			Port: v.GetInt("SMTP_PORT"),
			User: v.GetString("SMTP_USER"),
			Pass: v.GetString("SMTP_PASS"),
			From: v.GetString("MAIL_FROM"),
			To:   v.GetString("MAIL_TO"),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("TG_BOT_TOKEN"),
			ChatID:   v.GetString("TG_CHAT_ID"),
		},
		HTMLOutput: DefaultHTMLOutput,
		TextOutput: DefaultTextOutput,
	}

	return opts, nil
}

// Window returns the run window lower bound: now minus the interval.
func (o *Options) Window(now time.Time) time.Time {
	return now.UTC().Add(-time.Duration(o.IntervalMinutes) * time.Minute)
}
