package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "eeclientgen configuration") || !strings.Contains(s, "# clientName: ElasticEmailClient") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	if !strings.Contains(out.String(), "Wrote sample config to") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "nested", ".eeclientgen-init-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "x" {
		t.Fatalf("existing file was modified")
	}
}

func TestInit_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# eeclientgen configuration") {
		t.Fatalf("file not overwritten: %q", data)
	}
}

func TestInit_SampleConfigIsAccepted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	// Uncomment every option line so each documented key gets parsed.
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") && !strings.Contains(line, "(YAML)") {
			trimmed := strings.TrimPrefix(line, "# ")
			if key := strings.SplitN(trimmed, ":", 2)[0]; !strings.Contains(key, " ") {
				line = trimmed
			}
		}
		b.WriteString(line + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureGenerate(t, "--config", path, "generate")
	if err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
	if captured.Parallel != 4 || captured.Input != "./apigenerator.json" {
		t.Fatalf("sample values not applied: %+v", captured)
	}
}
