package engine

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/spec"
)

// DefaultStyle holds a backend's literal syntax for parameter defaults.
type DefaultStyle struct {
	Null      string
	EmptyList string // lists and arrays
	EmptyMap  string // dictionaries
	// Enum renders a qualified member reference; typeName and member are
	// already sanitized.
	Enum func(typeName, member string) string
	// Quote renders a string literal.
	Quote func(s string) string
	// Fold rewrites a non-string primitive literal; nil means strings.ToLower.
	Fold func(typeName, value string) string
}

// DefaultFormatter implements DefaultValueFormatter from a DefaultStyle.
type DefaultFormatter struct {
	Style     DefaultStyle
	Sanitizer IdentifierSanitizer
}

func (f *DefaultFormatter) Format(p spec.Parameter) (string, error) {
	if !p.HasDefaultValue {
		return "", errors.Newf("engine: parameter %q has no default value", p.Name)
	}
	dt := p.Type
	st := f.Style

	switch {
	case dt != nil && dt.IsDictionary:
		return st.EmptyMap, nil
	case dt != nil && (dt.IsList || dt.IsArray):
		return st.EmptyList, nil
	case p.DefaultValue == nil:
		return st.Null, nil
	}

	value := *p.DefaultValue
	if dt == nil || !dt.IsPrimitive {
		typeName, member := dt.Name(), value
		if f.Sanitizer != nil {
			typeName = f.Sanitizer.Sanitize(typeName)
			member = f.Sanitizer.Sanitize(member)
		}
		return st.Enum(typeName, member), nil
	}
	if dt.Name() == "String" {
		return st.Quote(value), nil
	}
	if st.Fold != nil {
		return st.Fold(dt.Name(), value), nil
	}
	return strings.ToLower(value), nil
}
