package engine

import (
	"github.com/mark3labs/eeclientgen/internal/spec"
)

// PrimitiveNames is the primitive TypeName vocabulary of the API description.
// Every backend table maps all of them.
var PrimitiveNames = []string{
	"String", "Int32", "Int64", "Double", "Decimal", "Boolean", "DateTime", "Guid",
	"TextResponse", "XmlResponse", "HtmlResponse", "JavascriptResponse", "JsonResponse",
}

// TypeTable configures how a backend spells types. Compound formats receive
// already resolved element names.
type TypeTable struct {
	// Primitives maps primitive TypeNames to target types.
	Primitives map[string]string
	// DictPrimitives is used for dictionary components; nil means Primitives.
	DictPrimitives map[string]string

	// Custom qualifies a non-primitive name, e.g. "ApiTypes." + name.
	Custom func(name string) string
	// DictCustom qualifies non-primitive dictionary components; nil means Custom.
	DictCustom func(name string) string

	// File is the file payload type.
	File string
	// FileSeq wraps File for list parameters; nil means List.
	FileSeq func(file string, forParam bool) string
	// FileSeqOnArray also wraps File when the type is an array.
	FileSeqOnArray bool

	// List wraps elem; forParam selects the iterable spelling.
	List func(elem string, forParam bool) string
	// Array renders a native array of elem.
	Array func(elem string) string
	// Map renders a dictionary.
	Map func(key, value string) string
	// Nullable marks t nullable; nil means the language has no marker.
	Nullable func(t string) string

	// ListWrapper may replace list wrapping with a synthetic named type. It
	// receives the call's Session so the wrapper can be recorded for
	// declaration, the bare element name (sanitized when custom) and the
	// resolved element type.
	ListWrapper func(s *Session, dt *spec.DataType, name, elem string) (string, bool)
}

// Mapper resolves DataTypes through a TypeTable within one Session. Custom
// names pass through Names before they are qualified, so references spell
// classes the way their declarations do.
type Mapper struct {
	Backend string
	Table   *TypeTable
	Names   IdentifierSanitizer
	Session *Session
}

// NewMapper binds table to s. names may be nil when the backend has no
// reserved words.
func NewMapper(backend string, table *TypeTable, names IdentifierSanitizer, s *Session) *Mapper {
	return &Mapper{Backend: backend, Table: table, Names: names, Session: s}
}

// Resolve applies, in order: void, dictionary, file, primitive or custom
// name, sequence wrapping, nullability.
func (m *Mapper) Resolve(dt *spec.DataType, voidName string, forParam bool) (string, error) {
	if dt.IsVoid() {
		return voidName, nil
	}
	t := m.Table

	if dt.IsDictionary {
		k, v, err := spec.DictionaryComponents(dt)
		if err != nil {
			return "", &spec.MalformedIRError{Path: dt.Name(), Reason: err.Error()}
		}
		return t.Map(m.dictComponent(k), m.dictComponent(v)), nil
	}

	if dt.IsFile {
		name := t.File
		if dt.IsList || (t.FileSeqOnArray && dt.IsArray) {
			if t.FileSeq != nil {
				return t.FileSeq(name, forParam), nil
			}
			return t.List(name, forParam), nil
		}
		return name, nil
	}

	name := dt.Name()
	var resolved string
	if dt.IsPrimitive {
		mapped, ok := t.Primitives[name]
		if !ok {
			return "", &UnknownTypeError{Backend: m.Backend, TypeName: name}
		}
		resolved = mapped
	} else {
		name = m.sanitize(name)
		resolved = t.Custom(name)
	}

	if t.ListWrapper != nil {
		if wrapped, ok := t.ListWrapper(m.Session, dt, name, resolved); ok {
			return wrapped, nil
		}
	}

	switch {
	case dt.IsList:
		resolved = t.List(resolved, forParam)
	case dt.IsArray:
		resolved = t.Array(resolved)
	}

	if dt.IsNullable && t.Nullable != nil {
		resolved = t.Nullable(resolved)
	}
	return resolved, nil
}

func (m *Mapper) dictComponent(name string) string {
	prims := m.Table.DictPrimitives
	if prims == nil {
		prims = m.Table.Primitives
	}
	if mapped, ok := prims[name]; ok {
		return mapped
	}
	name = m.sanitize(name)
	if m.Table.DictCustom != nil {
		return m.Table.DictCustom(name)
	}
	return m.Table.Custom(name)
}

func (m *Mapper) sanitize(name string) string {
	if m.Names == nil {
		return name
	}
	return m.Names.Sanitize(name)
}

// Prefixed returns a Custom func that prepends prefix.
func Prefixed(prefix string) func(string) string {
	return func(name string) string { return prefix + name }
}

// Bare returns names unchanged.
func Bare(name string) string { return name }
