package engine

import (
	"bytes"
	"io/fs"
	"path"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/spec"
)

// TemplateData is what support templates may reference.
type TemplateData struct {
	ClientName string
	APIURI     string
	APIKey     string
	Version    string
}

func NewTemplateData(s Settings, p *spec.Project) TemplateData {
	s = s.WithDefaults()
	td := TemplateData{ClientName: s.ClientName, APIURI: s.APIURI, APIKey: s.APIKey}
	if p != nil {
		td.Version = p.Version
	}
	return td
}

// RenderTemplate executes the named template from fsys. Missing keys fail
// instead of rendering "<no value>".
func RenderTemplate(fsys fs.FS, name string, data any) (string, error) {
	tmpl, err := template.New(path.Base(name)).Option("missingkey=error").ParseFS(fsys, name)
	if err != nil {
		return "", errors.Wrapf(err, "engine: parse template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "engine: render template %s", name)
	}
	return buf.String(), nil
}
