package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeyi2/zealot/internal/config"
	"github.com/zeyi2/zealot/internal/report"
	"github.com/zeyi2/zealot/internal/ui"
	"github.com/zeyi2/zealot/internal/watch"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run a scan and print the report to the terminal (no delivery)",
	Long: `Runs the same scan as 'run' but renders the text report to the terminal
instead of delivering it. Nothing is written to disk and no email or
Telegram message is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, queries, err := loadPipeline()
		if err != nil {
			return err
		}

		since, err := resolveWindow(opts, time.Now())
		if err != nil {
			return err
		}

		collector := watch.NewCollector(newSearchClient(opts), opts)
		rep := collector.Collect(cmd.Context(), queries, since)

		fmt.Print(ui.RenderMarkdown(report.Text(rep, "")))
		if !rep.Empty() {
			fmt.Println(ui.RenderMuted(fmt.Sprintf("Subject: %s", report.Subject(rep.Total(), rep.ActiveQueries()))))
		}
		if !opts.SMTP.Complete() && !opts.Telegram.Complete() {
			fmt.Println(ui.RenderWarn(ui.IconWarn + " no delivery channels configured; 'zealot run' would only write report files"))
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&configPath, "config", config.DefaultSearchConfigPath, "Path to the literal query config (JSON)")
	previewCmd.Flags().StringVar(&targetsPath, "targets", config.DefaultTargetsConfigPath, "Path to the repo/label targets config (YAML)")
	previewCmd.Flags().StringVar(&sinceFlag, "since", "", "Window override: compact duration (-6h), RFC3339, or natural language")
	rootCmd.AddCommand(previewCmd)
}
