package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowAppliesFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--log-format", "json", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[decode]")
	if !strings.Contains(out, "format = 'json'") && !strings.Contains(out, `format = "json"`) {
		t.Fatalf("expected log format override in %q", out)
	}
}

func TestInvalidLogFormatFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"--log-format", "xml", "config", "show"}, env.configPath); err == nil {
		t.Fatal("expected invalid log format to fail")
	}
}

func TestConfigInitOverwriteAndPrint(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "subparse.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "-p", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}

	out, _, err := runCLI(t, []string{"config", "init", "-p", target, "--overwrite"}, "")
	if err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	requireContains(t, out, "Replaced sample configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "-p", filepath.Dir(target), "--overwrite"}, ""); err == nil {
		t.Fatal("expected init to refuse a directory target")
	}

	out, _, err = runCLI(t, []string{"config", "init", "--print"}, "")
	if err != nil {
		t.Fatalf("config init --print: %v", err)
	}
	requireContains(t, out, "[decode]")
	requireContains(t, out, "fallback_encoding")
}
