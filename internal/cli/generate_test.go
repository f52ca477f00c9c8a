package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func captureGenerate(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureGenerate(t, "generate")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}
	if !equalStringSlices(captured.Langs, []string{"all"}) {
		t.Errorf("langs mismatch: got %v", captured.Langs)
	}
	if captured.Out != "Clients" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if captured.ClientName != "ElasticEmailClient" {
		t.Errorf("client name mismatch: got %q", captured.ClientName)
	}
	if captured.Parallel != runtime.NumCPU() {
		t.Errorf("parallel mismatch: got %d", captured.Parallel)
	}
	if got := captured.input(); got != "https://api.elasticemail.com/public/apigenerator" {
		t.Errorf("default input mismatch: got %q", got)
	}
	if got := captured.clientURI(); got != "https://api.elasticemail.com/v2" {
		t.Errorf("client uri mismatch: got %q", got)
	}
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureGenerate(t,
		"--verbose",
		"generate",
		"--input", "schema.json",
		"--lang", "CS,py",
		"--lang", "python",
		"--out", "./build",
		"--client-name", "MailClient",
		"--api-uri", "https://mail.example.com/",
		"--api-key", "secret",
		"--unpack",
		"--parallel", "2",
		"--dry-run",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "schema.json" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if want := []string{"cs", "py", "python"}; !equalStringSlices(captured.Langs, want) {
		t.Errorf("langs mismatch: got %v", captured.Langs)
	}
	if captured.Out != "./build" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if captured.ClientName != "MailClient" {
		t.Errorf("client name mismatch: got %q", captured.ClientName)
	}
	if captured.APIURI != "https://mail.example.com" {
		t.Errorf("api uri mismatch: got %q", captured.APIURI)
	}
	if captured.clientURI() != "https://mail.example.com/v2" {
		t.Errorf("client uri mismatch: got %q", captured.clientURI())
	}
	if captured.APIKey != "secret" {
		t.Errorf("api key mismatch: got %q", captured.APIKey)
	}
	if captured.Parallel != 2 {
		t.Errorf("parallel mismatch: got %d", captured.Parallel)
	}
	if !captured.Unpack || !captured.DryRun || !captured.Force || !captured.Verbose {
		t.Errorf("expected unpack, dry-run, force and verbose: %+v", captured)
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-schema.json
lang:
  - java
  - php
out: from-config
clientName: CfgClient
api_uri: https://cfg.example.com
parallel: 3
dryRun: true
force: "yes"
logJson: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureGenerate(t,
		"--config", configPath,
		"generate",
		"--input", "flag-schema.json",
		"--lang", "js",
		"--dry-run=false",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
	if captured.Input != "flag-schema.json" {
		t.Errorf("flag should override input: got %q", captured.Input)
	}
	if !equalStringSlices(captured.Langs, []string{"js"}) {
		t.Errorf("flag should override langs: got %v", captured.Langs)
	}
	if captured.Out != "from-config" {
		t.Errorf("out should come from config: got %q", captured.Out)
	}
	if captured.ClientName != "CfgClient" {
		t.Errorf("client name should come from config: got %q", captured.ClientName)
	}
	if captured.APIURI != "https://cfg.example.com" {
		t.Errorf("api uri should come from config: got %q", captured.APIURI)
	}
	if captured.Parallel != 3 {
		t.Errorf("parallel should come from config: got %d", captured.Parallel)
	}
	if captured.DryRun {
		t.Errorf("flag should disable dry-run")
	}
	if !captured.Force {
		t.Errorf("force should come from config")
	}
	if !captured.LogJSON {
		t.Errorf("log-json should come from config")
	}
}

func TestGenerateConfigUnknownField(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("toolName: nope\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := captureGenerate(t, "--config", configPath, "generate")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), `unknown field "toolName"`) {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown backend", []string{"generate", "--lang", "cobol"}, `unknown backend "cobol"`},
		{"empty lang", []string{"generate", "--lang", " , "}, "--lang is empty"},
		{"client name", []string{"generate", "--client-name", "9lives"}, "--client-name"},
		{"api uri", []string{"generate", "--api-uri", "ftp://example.com"}, "--api-uri"},
		{"parallel", []string{"generate", "--parallel", "-1"}, "--parallel"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			captured, err := captureGenerate(t, tc.args...)
			if captured != nil {
				t.Fatalf("runner should not be called")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValueAsHelpers(t *testing.T) {
	t.Parallel()

	if got, err := valueAsStringSlice("a, b,,c"); err != nil || !equalStringSlices(got, []string{"a", "b", "c"}) {
		t.Errorf("valueAsStringSlice csv: %v %v", got, err)
	}
	if _, err := valueAsStringSlice(42); err == nil {
		t.Errorf("expected error for integer list")
	}
	if got, err := valueAsBool("No"); err != nil || got {
		t.Errorf("valueAsBool(No) = %v, %v", got, err)
	}
	if _, err := valueAsBool("maybe"); err == nil {
		t.Errorf("expected error for maybe")
	}
	if got, err := valueAsInt(5); err != nil || got != 5 {
		t.Errorf("valueAsInt(5) = %v, %v", got, err)
	}
	if _, err := valueAsInt("5"); err == nil {
		t.Errorf("expected error for quoted integer")
	}
	if normalizeKey(" Client-Name ") != "clientname" || normalizeKey("log_json") != "logjson" {
		t.Errorf("normalizeKey mismatch")
	}
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"ElasticEmailClient": true,
		"Client_2":           true,
		"":                   false,
		"_Client":            false,
		"My-Client":          false,
	} {
		if got := isIdentifier(in); got != want {
			t.Errorf("isIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
