package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discovery/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	dbPath     string
	backupDir  string
}

func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DISCOVERY_DB", "")
	t.Setenv("DISCOVERY_LOG_LEVEL", "")
	t.Setenv("STEAM_API_KEY", "")
	t.Setenv("STEAM_ID", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		dbPath:     filepath.Join(base, "data", "discovery.db"),
		backupDir:  filepath.Join(base, "backups"),
	}
	content := fmt.Sprintf(`[paths]
data_dir = %q
database = %q
backup_dir = %q
log_dir = %q

[backups]
auto_backup = false
max_backups = 10

[logging]
level = "error"
%s`, filepath.Join(base, "data"), env.dbPath, env.backupDir, filepath.Join(base, "logs"), extra)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("discovery %s: %v\noutput:\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e *cliTestEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(e.baseDir, name), content)
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Fatalf("expected output to contain %q\nactual output:\n%s", expected, output)
	}
}

func requireNotContains(t *testing.T, output, unexpected string) {
	t.Helper()
	if strings.Contains(output, unexpected) {
		t.Fatalf("expected output not to contain %q\nactual output:\n%s", unexpected, output)
	}
}
