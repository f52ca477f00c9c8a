package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const sampleJSON = `{
  "$type": "ApiGenerator.Project, ApiGenerator",
  "Version": "2.4",
  "Categories": {
    "email": {
      "Name": "Email",
      "UriPath": "email",
      "Summary": "Send emails",
      "Functions": [
        {
          "Name": "Send",
          "ReturnType": {"TypeName": "TextResponse", "IsPrimitive": true},
          "Parameters": [
            {"Name": "apikey", "Type": {"TypeName": "String", "IsPrimitive": true}},
            {"Name": "subject", "Type": {"TypeName": "String", "IsPrimitive": true}, "HasDefaultValue": true, "DefaultValue": null}
          ]
        }
      ]
    }
  },
  "Classes": [
    {"Name": "EmailStatus", "IsEnum": true, "Fields": [{"Name": "Sent", "Value": 1}]}
  ]
}`

const sampleYAML = `Version: "2.4"
Categories:
  email:
    Name: Email
    UriPath: email
    Functions:
      - Name: Send
        ReturnType: {TypeName: TextResponse, IsPrimitive: true}
        Parameters:
          - Name: apikey
            Type: {TypeName: String, IsPrimitive: true}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func fastRetries() []Option {
	return []Option{WithHTTPTimeout(time.Second), WithMaxRetries(3), WithBackoffBase(time.Millisecond)}
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/schema.json")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_JSONFile(t *testing.T) {
	t.Parallel()
	p, err := Load(context.Background(), writeFile(t, "schema.json", sampleJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Version != "2.4" {
		t.Fatalf("version = %q", p.Version)
	}
	fn := p.Categories["email"].Functions[0]
	if got := len(fn.CallParameters()); got != 1 {
		t.Fatalf("expected 1 call parameter, got %d", got)
	}
	subject := fn.Parameters[1]
	if !subject.HasDefaultValue || subject.DefaultValue != nil {
		t.Fatalf("subject should default to null: %+v", subject.CallSite)
	}
	if v := p.Classes[0].Fields[0].Value; v == nil || *v != 1 {
		t.Fatalf("enum value not decoded")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Parallel()
	p, err := Load(context.Background(), writeFile(t, "schema.YML", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Categories["email"].UriPath != "email" {
		t.Fatalf("unexpected category: %+v", p.Categories)
	}
	if p.Classes != nil {
		t.Fatalf("expected no classes")
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "broken.json", `{"Categories": [`)
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.HasSuffix(se.Location, "broken.json") {
		t.Fatalf("location = %q", se.Location)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "bad.json", `{"Categories": {"x": {"Name": "X", "UriPath": "x", "Functions": [
		{"Name": "F", "Parameters": [{"Name": "m", "Type": {"TypeName": "String", "IsDictionary": true}}]}
	]}}}`)
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ValidationError {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var mal *MalformedIRError
	if !errors.As(err, &mal) {
		t.Fatalf("expected MalformedIRError in chain")
	}
	if mal.Path != "Categories[x].Functions[F].Parameters[m].Type" {
		t.Fatalf("path = %q", mal.Path)
	}
}

func TestLoad_HTTPRetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if !strings.HasPrefix(r.UserAgent(), "eeclientgen/") {
			t.Errorf("user agent = %q", r.UserAgent())
		}
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	p, err := Load(context.Background(), srv.URL+"/public/apigenerator", fastRetries()...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Categories) != 1 {
		t.Fatalf("expected one category")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestLoad_HTTPClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/schema.json", fastRetries()...)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error should mention status: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
}

func TestLoad_HTTPYAMLByExtension(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleYAML))
	}))
	defer srv.Close()

	p, err := Load(context.Background(), srv.URL+"/schema.yaml?rev=2", fastRetries()...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := p.Categories["email"]; !ok {
		t.Fatalf("expected email category")
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, "http://127.0.0.1:1/schema.json", WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_ContextCancelled(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, srv.URL, WithMaxRetries(5), WithBackoffBase(time.Hour))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSchemaURL(t *testing.T) {
	t.Parallel()
	if got := SchemaURL(" https://api.example.com/v2/ "); got != "https://api.example.com/v2/public/apigenerator" {
		t.Fatalf("SchemaURL = %q", got)
	}
}
