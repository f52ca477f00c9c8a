package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/eeclientgen/internal/engine/enginetest"
)

func writeSchema(t *testing.T, dir string) string {
	t.Helper()
	data, err := json.Marshal(enginetest.Full())
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	path := filepath.Join(dir, "apigenerator.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	dir := t.TempDir()
	schema := writeSchema(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "generate", "--input", schema, "--lang", "all", "--out", outDir, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Planned writes to") || !strings.Contains(out, "(6 files)") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	for _, name := range []string{"ElasticEmailClient.cs", "ElasticEmailClient.zip", "ElasticEmailClient.py"} {
		if !strings.Contains(out, "- "+name) {
			t.Errorf("plan is missing %s:\n%s", name, out)
		}
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	schema := writeSchema(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "generate", "--input", schema, "--lang", "py,oas", "--out", outDir, "--client-name", "MailClient")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, name := range []string{"MailClient.py", "MailClient.openapi.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v\n%s", name, err, out)
		}
	}

	py, err := os.ReadFile(filepath.Join(outDir, "MailClient.py"))
	if err != nil {
		t.Fatalf("read python client: %v", err)
	}
	if !strings.Contains(string(py), "https://api.elasticemail.com/v2") {
		t.Fatalf("client should target the /v2 endpoint")
	}

	_, err = execute(t, "generate", "--input", schema, "--lang", "py", "--out", outDir, "--client-name", "MailClient")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error on existing output, got %v", err)
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected --force hint, got %v", err)
	}

	if _, err := execute(t, "generate", "--input", schema, "--lang", "py", "--out", outDir, "--client-name", "MailClient", "--force"); err != nil {
		t.Fatalf("forced regenerate: %v", err)
	}
}

func TestGeneratePipeline_Unpack(t *testing.T) {
	dir := t.TempDir()
	schema := writeSchema(t, dir)
	outDir := filepath.Join(dir, "out")

	if _, err := execute(t, "generate", "--input", schema, "--lang", "java", "--out", outDir, "--unpack"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "ElasticEmailClient", "ApiTypes.java")); err != nil {
		t.Fatalf("expected unpacked java sources: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "ElasticEmailClient.zip")); err == nil {
		t.Fatalf("archive should not be written when unpacking")
	}
}

func TestGeneratePipeline_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(schema, []byte(`{"Categories": [`), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	_, err := execute(t, "generate", "--input", schema, "--out", filepath.Join(dir, "out"))
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Location: ") || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("expected location in error, got %v", err)
	}
}

func TestBackendsCommand(t *testing.T) {
	out, err := execute(t, "backends")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header and 7 backends, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "csharp") || !strings.Contains(lines[1], "c#, cs") {
		t.Errorf("unexpected csharp row: %q", lines[1])
	}
	var openapi string
	for _, l := range lines {
		if strings.HasPrefix(l, "openapi") {
			openapi = l
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(openapi), "no") {
		t.Errorf("openapi should not be part of all: %q", openapi)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out) != "dev" {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestCheckVersionCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/apigenerator" || r.URL.Query().Get("checkversion") != "true" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`"9.1"`))
	}))
	defer srv.Close()

	schema := writeSchema(t, t.TempDir())
	out, err := execute(t, "check-version", "--input", schema, "--api-uri", srv.URL)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Newer version available: 9.1") {
		t.Fatalf("unexpected output: %q", out)
	}

	_, err = execute(t, "check-version")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error without --input, got %v", err)
	}
}
