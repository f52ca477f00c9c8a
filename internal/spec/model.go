package spec

import "sort"

// Intermediate representation of one API description. Every backend reads
// the same *Project; nothing below is mutated after Load returns.

// DataType describes the shape of one value. A nil TypeName means void.
type DataType struct {
	TypeName     *string `json:"TypeName"`
	IsList       bool    `json:"IsList"`
	IsArray      bool    `json:"IsArray"`
	IsNullable   bool    `json:"IsNullable"`
	IsPrimitive  bool    `json:"IsPrimitive"`
	IsFile       bool    `json:"IsFile"`
	IsEnum       bool    `json:"IsEnum"`
	IsDictionary bool    `json:"IsDictionary"`
}

// IsVoid reports whether dt carries no value.
func (dt *DataType) IsVoid() bool {
	return dt == nil || dt.TypeName == nil
}

// Name returns the type name or "" for void.
func (dt *DataType) Name() string {
	if dt.IsVoid() {
		return ""
	}
	return *dt.TypeName
}

// IsCollection reports whether values of dt are lists, arrays or dictionaries.
func (dt *DataType) IsCollection() bool {
	return dt != nil && (dt.IsList || dt.IsArray || dt.IsDictionary)
}

// Field is the name/type/description record shared by class members and
// function parameters.
type Field struct {
	Name        string    `json:"Name" validate:"required"`
	Type        *DataType `json:"Type"`
	Description string    `json:"Description"`
	Example     string    `json:"Example"`
}

// Member is a Field declared on a Class. Enum members carry Value.
type Member struct {
	Field
	Value *int `json:"Value,omitempty"`
}

// CallSite holds the facets a Field only has when it appears in a function
// signature.
type CallSite struct {
	// HasDefaultValue is distinct from DefaultValue == nil: a parameter may
	// default to null.
	HasDefaultValue  bool    `json:"HasDefaultValue"`
	DefaultValue     *string `json:"DefaultValue"`
	IsFilePostUpload bool    `json:"IsFilePostUpload"`
	IsFilePutUpload  bool    `json:"IsFilePutUpload"`
}

// Parameter is a Field used at a call site.
type Parameter struct {
	Field
	CallSite
}

// APIKeyParam is the implicit parameter present in every function. Emitters
// inject it instead of surfacing it in signatures.
const APIKeyParam = "apikey"

// IsAPIKey reports whether p is the implicit api key parameter.
func (p Parameter) IsAPIKey() bool {
	return p.Name == APIKeyParam
}

// IsUpload reports whether p is a transport payload rather than a query value.
func (p Parameter) IsUpload() bool {
	return p.IsFilePostUpload || p.IsFilePutUpload
}

type Function struct {
	Name       string      `json:"Name" validate:"required"`
	Summary    string      `json:"Summary"`
	ReturnType *DataType   `json:"ReturnType"`
	Parameters []Parameter `json:"Parameters" validate:"dive"`
	Example    string      `json:"Example"`
}

// CallParameters returns the parameters surfaced in generated signatures,
// in declaration order.
func (f Function) CallParameters() []Parameter {
	out := make([]Parameter, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		if p.IsAPIKey() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ReturnsFile reports whether f answers with a raw file payload.
func (f Function) ReturnsFile() bool {
	return f.ReturnType != nil && f.ReturnType.IsFile
}

type Category struct {
	Name      string     `json:"Name" validate:"required"`
	UriPath   string     `json:"UriPath" validate:"required"`
	Summary   string     `json:"Summary"`
	Functions []Function `json:"Functions" validate:"dive"`
}

// SortedFunctions returns the category's functions in ascending name order.
func (c Category) SortedFunctions() []Function {
	out := append([]Function(nil), c.Functions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type Class struct {
	Name    string   `json:"Name" validate:"required"`
	Summary string   `json:"Summary"`
	IsEnum  bool     `json:"IsEnum"`
	Fields  []Member `json:"Fields" validate:"dive"`
}

type Project struct {
	Version    string              `json:"Version"`
	Categories map[string]Category `json:"Categories" validate:"dive"`
	Classes    []Class             `json:"Classes" validate:"dive"`
}

// SortedCategories returns categories in ascending name order, ties broken
// by map key so the result never depends on map iteration.
func (p *Project) SortedCategories() []Category {
	keys := make([]string, 0, len(p.Categories))
	for k := range p.Categories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := p.Categories[keys[i]], p.Categories[keys[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return keys[i] < keys[j]
	})
	out := make([]Category, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.Categories[k])
	}
	return out
}

// SortedClasses returns classes in ascending name order.
func (p *Project) SortedClasses() []Class {
	out := append([]Class(nil), p.Classes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClassByName looks up a declared class.
func (p *Project) ClassByName(name string) (Class, bool) {
	for _, c := range p.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return Class{}, false
}

// String returns a pointer to s, handy when building DataTypes by hand.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }
