package zealot_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeyi2/zealot"
)

func writeSearchConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	doc := map[string]any{
		"queries": []map[string]string{
			{"name": "go-help", "q": `language:go label:"help wanted"`},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	t.Setenv("GH_TOKEN", "ghp_test")

	tmpDir := t.TempDir()
	searchPath := writeSearchConfig(t, tmpDir)
	targetsPath := filepath.Join(tmpDir, "targets.yaml") // absent, must be tolerated

	opts, queries, err := zealot.LoadOptions(searchPath, targetsPath)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.Token != "ghp_test" {
		t.Errorf("Token = %q, want ghp_test", opts.Token)
	}
	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}
	if queries[0].Name != "go-help" {
		t.Errorf("query name = %q", queries[0].Name)
	}
}

func TestLoadOptionsMissingToken(t *testing.T) {
	t.Setenv("GH_TOKEN", "")

	tmpDir := t.TempDir()
	searchPath := writeSearchConfig(t, tmpDir)

	_, _, err := zealot.LoadOptions(searchPath, filepath.Join(tmpDir, "targets.yaml"))
	if err == nil {
		t.Fatal("expected error for missing GH_TOKEN")
	}
	if !strings.Contains(err.Error(), "GH_TOKEN") {
		t.Errorf("error should mention GH_TOKEN, got: %v", err)
	}
}
