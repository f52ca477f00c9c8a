package spec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/logging"
	"github.com/mark3labs/eeclientgen/internal/version"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
)

// SpecError is a structured loader error.
type SpecError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// Client overrides the HTTP client; tests point it at httptest servers.
	Client *http.Client
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithHTTPClient(c *http.Client) Option   { return func(s *Settings) { s.Client = c } }

// SchemaURL returns the endpoint serving the API description for apiURI.
func SchemaURL(apiURI string) string {
	return strings.TrimRight(strings.TrimSpace(apiURI), "/") + "/public/apigenerator"
}

// Load reads, decodes and validates an API description.
//
// input may be a filesystem path or an http/https URL. file:// URLs are
// rejected. Files ending in .yaml or .yml are decoded as YAML.
func Load(ctx context.Context, input string, opts ...Option) (*Project, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	settings := resolveSettings(opts)

	raw, location, err := readInput(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	if ext := inputExt(input); ext == ".yaml" || ext == ".yml" {
		converted, cerr := yamlToJSON(raw)
		if cerr != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("spec: parse yaml %s: %v", location, cerr), Location: location, Cause: cerr}
		}
		raw = converted
	}

	p, err := Decode(raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("spec: decode %s: %v", location, err), Location: location, Cause: err}
	}
	if err := Validate(p); err != nil {
		return nil, &SpecError{Code: ValidationError, Message: err.Error(), Location: location, Cause: err}
	}
	return p, nil
}

// Decode parses a JSON API description. Unknown members such as a $type
// discriminator are ignored.
func Decode(data []byte) (*Project, error) {
	var p Project
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decode project")
	}
	if p.Categories == nil {
		p.Categories = map[string]Category{}
	}
	return &p, nil
}

func resolveSettings(opts []Option) Settings {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, error) {
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && (u.Host != "" || strings.EqualFold(u.Scheme, "file"))

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, input, &SpecError{Code: InputError, Message: "spec: file:// URLs are not supported; pass a path", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, input, &SpecError{Code: NetworkError, Message: fmt.Sprintf("spec: fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, abs, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, nil
}

func inputExt(input string) string {
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		return strings.ToLower(filepath.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(input))
}

func yamlToJSON(data []byte) ([]byte, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return json.Marshal(root)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := settings.Client
	if client == nil {
		client = &http.Client{Timeout: settings.HTTPTimeout}
	}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		logging.Logger.Debugw("schema fetch failed, retrying", "url", rawURL, "attempt", i+1, "backoff", backoff, "error", err)
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is
// transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, errors.Newf("transient http error %d", resp.StatusCode)
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, errors.Newf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
}
