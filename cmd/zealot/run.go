package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/zeyi2/zealot/internal/config"
	"github.com/zeyi2/zealot/internal/digest"
	"github.com/zeyi2/zealot/internal/github"
	"github.com/zeyi2/zealot/internal/notify"
	"github.com/zeyi2/zealot/internal/query"
	"github.com/zeyi2/zealot/internal/report"
	"github.com/zeyi2/zealot/internal/timeparsing"
	"github.com/zeyi2/zealot/internal/ui"
	"github.com/zeyi2/zealot/internal/watch"
)

var (
	configPath  string
	targetsPath string
	sinceFlag   string
	watchMode   bool
	dryRun      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan configured queries once and deliver the report",
	Long: `Runs one scan cycle: resolve queries, search GitHub, drop issues with
open linked PRs, write notify.html/notify.txt, and deliver via any
configured channels. With --watch, keeps running on the configured
interval and reloads when a config file changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchMode {
			return runWatch(cmd.Context())
		}
		_, _, err := runScan(cmd.Context())
		return err
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", config.DefaultSearchConfigPath, "Path to the literal query config (JSON)")
	runCmd.Flags().StringVar(&targetsPath, "targets", config.DefaultTargetsConfigPath, "Path to the repo/label targets config (YAML)")
	runCmd.Flags().StringVar(&sinceFlag, "since", "", "Window override: compact duration (-6h), RFC3339, or natural language")
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "Keep scanning on the configured interval, reloading config on change")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write report files but skip email/Telegram delivery")
	rootCmd.AddCommand(runCmd)
}

// loadPipeline resolves the two config documents into run options and queries.
func loadPipeline() (*config.Options, []query.Query, error) {
	a, err := config.LoadSearch(configPath)
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

// resolveWindow picks the scan window start: --since override first, then the
// configured interval.
func resolveWindow(opts *config.Options, now time.Time) (time.Time, error) {
	if sinceFlag == "" {
		return opts.Window(now), nil
	}
	t, err := timeparsing.ParseSince(sinceFlag, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value: %w", err)
	}
	return t.UTC(), nil
}

// newSearchClient builds the GitHub client from the resolved options.
func newSearchClient(opts *config.Options) *github.Client {
	client := github.NewClient(opts.Token).
		WithHTTPClient(&http.Client{Timeout: opts.HTTPTimeout})
	if opts.APIBaseURL != "" {
		client = client.WithBaseURL(opts.APIBaseURL)
	}
	return client
}

// runScan executes one full scan cycle and returns the resulting report
// along with the options it resolved, so the watch loop can reuse them.
func runScan(ctx context.Context) (*watch.Report, *config.Options, error) {
	opts, queries, err := loadPipeline()
	if err != nil {
		return nil, nil, err
	}

	since, err := resolveWindow(opts, time.Now())
	if err != nil {
		return nil, nil, err
	}

	collector := watch.NewCollector(newSearchClient(opts), opts)
	rep := collector.Collect(ctx, queries, since)

	var summary string
	if digest.Enabled() && !rep.Empty() {
		// Best-effort decoration: a failed digest never fails the scan.
		if s, err := digest.Summarize(ctx, report.Text(rep, "")); err == nil {
			summary = s
		} else {
			fmt.Fprintln(os.Stderr, ui.RenderWarn(fmt.Sprintf("[WARN] AI digest skipped: %v", err)))
		}
	}

	htmlReport := report.HTML(rep, summary)
	textReport := report.Text(rep, summary)

	if err := os.WriteFile(opts.HTMLOutput, []byte(htmlReport), 0644); err != nil {
		return nil, nil, fmt.Errorf("writing %s: %w", opts.HTMLOutput, err)
	}
	if err := os.WriteFile(opts.TextOutput, []byte(textReport), 0644); err != nil {
		return nil, nil, fmt.Errorf("writing %s: %w", opts.TextOutput, err)
	}

	writeActionsOutputs(rep.Total())

	if rep.Empty() {
		fmt.Println(ui.RenderPass(fmt.Sprintf("[OK] No unassigned open issues (without open linked PRs) since %s. No email/telegram sent.", rep.SinceISO())))
		return rep, opts, nil
	}

	if dryRun {
		fmt.Println(ui.RenderPass(fmt.Sprintf("[OK] Dry run: %d issue(s) found, delivery skipped.", rep.Total())))
		return rep, opts, nil
	}

	subject := report.Subject(rep.Total(), rep.ActiveQueries())
	dispatcher := notify.NewDispatcher(opts)
	results := dispatcher.Dispatch(ctx, subject, htmlReport, textReport)

	sent := map[string]bool{}
	for _, r := range results {
		sent[r.Channel] = r.Sent
		switch {
		case r.Sent:
			fmt.Printf("  %s %s\n", ui.RenderPass(ui.IconPass), r.Channel)
		case r.Err != nil:
			fmt.Fprintf(os.Stderr, "  %s %s: %v\n", ui.RenderFail(ui.IconFail), r.Channel, r.Err)
		default:
			fmt.Printf("  %s %s (not configured)\n", ui.RenderMuted(ui.IconSkip), r.Channel)
		}
	}
	fmt.Println(ui.RenderPass(fmt.Sprintf("[OK] Sent email: %v, telegram: %v", sent["email"], sent["telegram"])))
	return rep, opts, nil
}

// writeActionsOutputs appends HAS_RESULTS/TOTAL to the GitHub Actions output
// file when running inside a workflow.
func writeActionsOutputs(total int) {
	ghOut := os.Getenv("GITHUB_OUTPUT")
	if ghOut == "" {
		return
	}
	f, err := os.OpenFile(ghOut, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderWarn(fmt.Sprintf("[WARN] cannot open GITHUB_OUTPUT: %v", err)))
		return
	}
	defer func() { _ = f.Close() }()

	hasResults := "false"
	if total > 0 {
		hasResults = "true"
	}
	fmt.Fprintf(f, "HAS_RESULTS=%s\n", hasResults)
	fmt.Fprintf(f, "TOTAL=%d\n", total)
}

// runWatch runs scans on the configured interval and re-runs early when a
// config file changes (debounced).
func runWatch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directories holding the config files; the files themselves
	// may be replaced atomically, which unregisters a per-file watch.
	dirs := map[string]bool{}
	for _, p := range []string{configPath, targetsPath} {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintln(os.Stderr, ui.RenderWarn(fmt.Sprintf("[WARN] cannot watch %s: %v", dir, err)))
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// The interval comes from the scan's own resolved options, so config
	// edits take effect on the next cycle without a second load.
	scan := func() time.Duration {
		_, opts, err := runScan(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.RenderFail(fmt.Sprintf("[ERR] scan failed: %v", err)))
			return time.Duration(config.DefaultIntervalMinutes) * time.Minute
		}
		return time.Duration(opts.IntervalMinutes) * time.Minute
	}

	interval := scan()
	fmt.Fprintf(os.Stderr, "Watching for changes... (Press Ctrl+C to exit)\n")

	timer := time.NewTimer(interval)
	defer timer.Stop()

	var debounceTimer *time.Timer
	debounceDelay := 500 * time.Millisecond
	rescan := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
			return nil
		case <-timer.C:
			interval = scan()
			timer.Reset(interval)
		case <-rescan:
			interval = scan()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				basename := filepath.Base(event.Name)
				if basename == filepath.Base(configPath) || basename == filepath.Base(targetsPath) {
					// Debounce rapid changes
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					debounceTimer = time.AfterFunc(debounceDelay, func() {
						fmt.Fprintf(os.Stderr, "Config changed, rescanning...\n")
						select {
						case rescan <- struct{}{}:
						default:
						}
					})
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}
