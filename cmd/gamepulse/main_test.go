package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/gamepulse/internal/config"
)

const cliBatch = `[
	{"username": "mia", "score": 10, "wordsFound": 4, "emotion": "happy", "timestamp": "2025-03-14T10:00:00Z"},
	{"username": "leo", "score": 5, "timestamp": "2025-03-14T10:00:05Z"},
	{"username": "mia", "score": 20, "wordsFound": 0, "emotion": "sad", "timestamp": "2025-03-14T10:00:30Z"},
	{"username": "mia", "score": 30, "timestamp": "2025-03-14T12:00:00Z"}
]`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "batch.json")
	if err := os.WriteFile(path, []byte(cliBatch), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportFromFile(t *testing.T) {
	path := setupEnv(t)
	out, err := execute(t, "", "report", path, "--player", "mia", "--format", "json")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if strings.Contains(out, `"leo"`) {
		t.Fatalf("player filter ignored:\n%s", out)
	}
	first := strings.Index(out, `"Session #2"`)
	second := strings.Index(out, `"Session #1"`)
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected newest session first:\n%s", out)
	}
}

func TestReportFromStdinText(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, cliBatch, "report", "-", "--color=false")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"mia - Session #2", "leo - Session #1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestImportThenReportFromDB(t *testing.T) {
	path := setupEnv(t)
	if _, err := execute(t, "", "import", path); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, err := execute(t, "", "players")
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if !strings.HasPrefix(out, "mia\t3 records") || !strings.Contains(out, "leo\t1 records") {
		t.Fatalf("unexpected players output:\n%s", out)
	}

	out, err = execute(t, "", "report", "--from-db", "--player", "mia", "--format", "json", "--since", "2025-03-13")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, `"Session #2"`) || !strings.Contains(out, `"player": "mia"`) {
		t.Fatalf("unexpected report:\n%s", out)
	}
}

func TestReportSinceFiltersSessions(t *testing.T) {
	setupEnv(t)
	batch := `[
		{"username": "mia", "score": 10, "timestamp": "2025-03-10T12:00:00Z"},
		{"username": "mia", "score": 30, "timestamp": "2025-03-20T12:00:00Z"},
		{"username": "mia", "score": 40, "timestamp": "2025-03-20T12:01:00Z"}
	]`
	out, err := execute(t, batch, "report", "-", "--format", "json", "--since", "2025-03-15")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, `"Session #2"`) || strings.Contains(out, `"Session #1"`) {
		t.Fatalf("expected only the later session:\n%s", out)
	}
	if !strings.Contains(out, `"duration": "1 min"`) {
		t.Fatalf("expected the later session whole:\n%s", out)
	}
}

func TestReportConfigOverrides(t *testing.T) {
	path := setupEnv(t)
	cfgDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "gamepulse")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "[report]\nformat = \"json\"\nplayer = \"leo\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, "", "report", path)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, `"player": "leo"`) || strings.Contains(out, `"mia"`) {
		t.Fatalf("config values not applied:\n%s", out)
	}

	out, err = execute(t, "", "report", path, "--player", "mia")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, `"player": "mia"`) {
		t.Fatalf("flag should override config:\n%s", out)
	}
}

func TestReportErrors(t *testing.T) {
	path := setupEnv(t)
	cases := [][]string{
		{"report"},
		{"report", path, "--format", "yaml"},
		{"report", "--from-db", "--since", "14/03/2025"},
	}
	for _, args := range cases {
		if _, err := execute(t, "", args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}

	if _, err := execute(t, `{"not": "an array"}`, "report", "-"); err == nil {
		t.Fatalf("expected malformed batch error")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must decode: %v", err)
	}
	if cfg.Report.Format != nil || cfg.Store.Path != nil {
		t.Fatalf("template values must be commented out: %+v", cfg)
	}
}
