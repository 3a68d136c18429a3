package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeyi2/zealot/internal/config"
	"github.com/zeyi2/zealot/internal/query"
	"github.com/zeyi2/zealot/internal/ui"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show the resolved search queries",
	Long: `Resolves the configured queries (literal config.json entries plus any
synthesized from targets.yaml) and prints them without running a scan.
Useful for checking what a scan would actually send to the search API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := config.LoadSearch(configPath)
		if err != nil {
			return err
		}
		b, err := config.LoadTargets(targetsPath)
		if err != nil {
			return err
		}

		queries, err := query.Resolve(a, b)
		if err != nil {
			return err
		}

		fmt.Println(ui.RenderHeader(fmt.Sprintf("RESOLVED QUERIES (%d)", len(queries))))
		for _, q := range queries {
			fmt.Printf("  %s\n", ui.RenderAccent(q.Name))
			fmt.Printf("    %s\n", ui.RenderMuted(q.Expr))
		}
		return nil
	},
}

func init() {
	queriesCmd.Flags().StringVar(&configPath, "config", config.DefaultSearchConfigPath, "Path to the literal query config (JSON)")
	queriesCmd.Flags().StringVar(&targetsPath, "targets", config.DefaultTargetsConfigPath, "Path to the repo/label targets config (YAML)")
	rootCmd.AddCommand(queriesCmd)
}
