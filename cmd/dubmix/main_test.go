package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	return home
}

func writeTestConfig(t *testing.T, home string) string {
	t.Helper()
	base := filepath.Join(home, "dubmix")
	content := `[paths]
workspace_dir = "` + filepath.Join(base, "work") + `"
output_dir = "` + filepath.Join(base, "out") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[gemini]
api_key = "test-key-123"
`
	path := filepath.Join(home, ".config", "dubmix", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	setupHome(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %s", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[paths]", "[gemini]", "[translation]", "[synthesis]"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("sample missing section %s", section)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	setupHome(t)
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	_, _, err := runCLI(t, "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("err = %v, want already-exists refusal", err)
	}
}

func TestConfigPathPrintsDefault(t *testing.T) {
	home := setupHome(t)
	out, _, err := runCLI(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	want := filepath.Join(home, ".config", "dubmix", "config.toml")
	if strings.TrimSpace(out) != want {
		t.Fatalf("path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	home := setupHome(t)
	writeTestConfig(t, home)

	out, _, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "test-key-123") {
		t.Fatal("api key leaked in config show output")
	}
	if !strings.Contains(out, "<set>") {
		t.Fatalf("expected redaction marker, got: %s", out)
	}
	if !strings.Contains(out, "target_language = 'pt-BR'") && !strings.Contains(out, `target_language = "pt-BR"`) {
		t.Fatalf("expected default target language in output: %s", out)
	}
}

func TestRunRequiresSourceArgument(t *testing.T) {
	home := setupHome(t)
	writeTestConfig(t, home)

	_, _, err := runCLI(t, "run")
	if err == nil {
		t.Fatal("expected error for missing source argument")
	}
}

func TestRunRejectsMissingSourceFile(t *testing.T) {
	home := setupHome(t)
	writeTestConfig(t, home)

	_, _, err := runCLI(t, "run", filepath.Join(home, "does-not-exist.mp4"))
	if err == nil || !strings.Contains(err.Error(), "source file") {
		t.Fatalf("err = %v, want missing source failure", err)
	}
}
