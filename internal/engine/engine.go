// Package engine holds the pieces every backend shares: the capability
// interfaces, table driven type mapping, identifier sanitizing, default
// literal formatting, upload resolution and the per-call Session.
package engine

import "github.com/mark3labs/eeclientgen/internal/spec"

// TypeMapper turns a DataType into a target-language type name.
type TypeMapper interface {
	Resolve(dt *spec.DataType, voidName string, forParam bool) (string, error)
}

// IdentifierSanitizer rewrites names that collide with reserved words.
type IdentifierSanitizer interface {
	Sanitize(name string) string
}

// DefaultValueFormatter renders a parameter's default as a literal.
type DefaultValueFormatter interface {
	Format(p spec.Parameter) (string, error)
}

// UploadResolver picks the transport for a function.
type UploadResolver interface {
	Resolve(f spec.Function) Upload
}

// Emitter lowers a Project into one backend's artifact. Emit receives a fresh
// Session per call and must keep all working state in it or on its stack.
type Emitter interface {
	ID() string
	Aliases() []string
	Emit(s *Session, p *spec.Project) (*Artifact, error)
}

// Settings carries the values baked into every generated client.
type Settings struct {
	ClientName string
	APIURI     string
	APIKey     string
}

const (
	DefaultClientName = "ElasticEmailClient"
	DefaultAPIURI     = "https://api.elasticemail.com/v2"
	DefaultAPIKey     = "00000000-0000-0000-0000-000000000000"
)

// DefaultSettings returns the reference client settings.
func DefaultSettings() Settings {
	return Settings{
		ClientName: DefaultClientName,
		APIURI:     DefaultAPIURI,
		APIKey:     DefaultAPIKey,
	}
}

// WithDefaults fills empty fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.ClientName == "" {
		s.ClientName = d.ClientName
	}
	if s.APIURI == "" {
		s.APIURI = d.APIURI
	}
	if s.APIKey == "" {
		s.APIKey = d.APIKey
	}
	return s
}

// DispatchPath is the request path of f within c, relative to the API URI.
func DispatchPath(c spec.Category, f spec.Function) string {
	return toLower(c.UriPath) + "/" + toLower(f.Name)
}
