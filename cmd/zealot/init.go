package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zeyi2/zealot/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold config files using an interactive form",
	Long: `Creates config.json and/or targets.yaml from an interactive terminal form.

The form uses keyboard navigation:
  - Tab/Shift+Tab: Move between fields
  - Enter: Submit the form (on the last field or submit button)
  - Ctrl+C: Cancel and exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInitForm()
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config files")
	rootCmd.AddCommand(initCmd)
}

func runInitForm() error {
	var (
		mode          string
		queryName     string
		queryExpr     string
		reposInput    string
		labelsInput   string
		excludesInput string
		intervalStr   string
	)

	modeOptions := []huh.Option[string]{
		huh.NewOption("Literal query (config.json)", "query"),
		huh.NewOption("Repos + labels (targets.yaml)", "targets"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Config style").
				Description("How do you want to define what to watch?").
				Options(modeOptions...).
				Value(&mode),

			huh.NewInput().
				Title("Scan interval (minutes)").
				Description("How often a scan window covers (default 30)").
				Placeholder("30").
				Value(&intervalStr),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Query name").
				Description("Short identifier for this search").
				Placeholder("e.g., good-first-go").
				Value(&queryName),

			huh.NewInput().
				Title("Search expression").
				Description("GitHub issue search syntax").
				Placeholder(`e.g., language:go label:"good first issue" is:issue is:open no:assignee`).
				Value(&queryExpr).
				Validate(func(s string) error {
					if mode == "query" && strings.TrimSpace(s) == "" {
						return fmt.Errorf("search expression is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return mode != "query" }),

		huh.NewGroup(
			huh.NewInput().
				Title("Repositories").
				Description("Comma-separated owner/name entries").
				Placeholder("e.g., golang/go, spf13/cobra").
				Value(&reposInput).
				Validate(func(s string) error {
					if mode == "targets" && strings.TrimSpace(s) == "" {
						return fmt.Errorf("at least one repository is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Labels").
				Description("Comma-separated labels; issues matching ANY of these").
				Placeholder("e.g., bug, help wanted").
				Value(&labelsInput).
				Validate(func(s string) error {
					if mode == "targets" && strings.TrimSpace(s) == "" {
						return fmt.Errorf("at least one label is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Exclude labels").
				Description("Comma-separated labels to filter out (optional)").
				Placeholder("e.g., wontfix").
				Value(&excludesInput),
		).WithHideFunc(func() bool { return mode != "targets" }),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Write config files?").
				Affirmative("Write").
				Negative("Cancel"),
		),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(os.Stderr, "Init cancelled.")
			return nil
		}
		return fmt.Errorf("form error: %w", err)
	}

	interval := 0
	if strings.TrimSpace(intervalStr) != "" {
		if _, err := fmt.Sscanf(strings.TrimSpace(intervalStr), "%d", &interval); err != nil {
			interval = 0
		}
	}

	switch mode {
	case "query":
		return writeSearchConfig(queryName, queryExpr, interval)
	case "targets":
		return writeTargetsConfig(splitCSV(reposInput), splitCSV(labelsInput), splitCSV(excludesInput), interval)
	}
	return nil
}

func writeSearchConfig(name, expr string, interval int) error {
	path := config.DefaultSearchConfigPath
	if err := checkClobber(path); err != nil {
		return err
	}

	cfg := config.SearchConfig{
		Queries:         []config.LiteralQuery{{Name: name, Q: expr}},
		IntervalMinutes: interval,
	}
	data, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func writeTargetsConfig(repos, labels, excludes []string, interval int) error {
	path := config.DefaultTargetsConfigPath
	if err := checkClobber(path); err != nil {
		return err
	}

	cfg := config.TargetsConfig{
		Repos:           repos,
		Labels:          labels,
		ExcludeLabels:   excludes,
		IntervalMinutes: interval,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func checkClobber(path string) error {
	if initForce {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
