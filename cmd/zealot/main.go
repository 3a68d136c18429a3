// Command zealot scans GitHub issue search queries on a schedule, filters out
// issues that already have open linked pull requests, and delivers a report
// over email and Telegram.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeyi2/zealot/internal/telemetry"
)

var (
	// Version is the current version of zealot (overridden by ldflags at build time)
	Version = "0.3.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "zealot",
	Short: "zealot - GitHub issue watcher",
	Long:  `Watches GitHub issue searches for new unassigned work and notifies you by email and Telegram.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("zealot version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := telemetry.Init(cmd.Context(), "zealot", Version); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] telemetry init failed: %v\n", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)
	},
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
