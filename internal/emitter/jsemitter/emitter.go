// Package jsemitter renders a browser JavaScript client built on jQuery.
package jsemitter

import (
	"embed"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/spec"
)

//go:embed templates/*.tmpl
var templates embed.FS

const ID = "javascript"

var primitives = map[string]string{
	"String":             "String",
	"Int32":              "Number",
	"Int64":              "Number",
	"Double":             "Number",
	"Decimal":            "Number",
	"Boolean":            "Boolean",
	"DateTime":           "Date",
	"Guid":               "String",
	"TextResponse":       "String",
	"XmlResponse":        "String",
	"HtmlResponse":       "String",
	"JavascriptResponse": "String",
	"JsonResponse":       "String",
}

var reserved = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete",
	"do", "else", "enum", "export", "extends", "false", "finally", "for", "function", "if",
	"implements", "import", "in", "instanceof", "interface", "let", "new", "null", "package",
	"private", "protected", "public", "return", "static", "super", "switch", "this", "throw",
	"true", "try", "typeof", "var", "void", "while", "with", "yield", "callback", "that",
}

const fileType = "{content: Object, filename: String}"

var typeTable = engine.TypeTable{
	Primitives: primitives,
	Custom:     engine.Prefixed("ApiTypes."),
	File:       fileType,
	List:       func(elem string, _ bool) string { return "Array.<" + elem + ">" },
	Array:      func(elem string) string { return "Array.<" + elem + ">" },
	Map:        func(k, v string) string { return "Object.<" + k + ", " + v + ">" },
}

func NewTypeMapper(s *engine.Session) *engine.Mapper {
	return engine.NewMapper(ID, &typeTable, NewSanitizer(), s)
}

func NewSanitizer() *engine.Sanitizer {
	return engine.NewSanitizer(reserved...)
}

func NewDefaultFormatter(names engine.IdentifierSanitizer) *engine.DefaultFormatter {
	return &engine.DefaultFormatter{
		Sanitizer: names,
		Style: engine.DefaultStyle{
			Null:      "null",
			EmptyList: "[]",
			EmptyMap:  "{}",
			Enum:      func(t, m string) string { return "ApiTypes." + t + "." + m },
			Quote:     engine.SingleQuoted,
		},
	}
}

// Emitter renders EEAPI(options), a factory returning one object per
// category plus the ApiTypes namespace.
type Emitter struct {
	settings engine.Settings
}

func New(settings engine.Settings) *Emitter {
	return &Emitter{settings: settings.WithDefaults()}
}

func (e *Emitter) ID() string { return ID }

func (e *Emitter) Aliases() []string { return []string{"3", "js", "javascript"} }

func (e *Emitter) Emit(s *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("jsemitter: nil Project")
	}
	names := NewSanitizer()
	r := &renderer{
		types:    NewTypeMapper(s),
		names:    names,
		defaults: NewDefaultFormatter(names),
		uploads:  engine.Resolver{},
		w:        engine.NewWriter("    "),
	}

	prologue, err := engine.RenderTemplate(templates, "templates/prologue.js.tmpl", engine.NewTemplateData(e.settings, p))
	if err != nil {
		return nil, err
	}
	r.w.Raw(prologue)
	r.w.Indent()

	cats := p.SortedCategories()
	for _, cat := range cats {
		if err := r.category(cat); err != nil {
			return nil, errors.Wrapf(err, "jsemitter: category %s", cat.Name)
		}
	}

	r.w.Line("/* region ApiTypes */")
	r.w.Line("var ApiTypes = {};")
	r.w.Blank()
	for _, cls := range p.SortedClasses() {
		if err := r.class(cls); err != nil {
			return nil, errors.Wrapf(err, "jsemitter: class %s", cls.Name)
		}
	}
	r.w.Line("/* endregion ApiTypes */")
	r.w.Blank()

	r.w.Line("/*-- PUBLIC METHODS --*/")
	r.w.Line("that.setApiKey = setApiKey;")
	r.w.Line("that.ApiTypes = ApiTypes;")
	for _, cat := range cats {
		v := r.variable(cat)
		r.w.Line("that.%s = %s;", v, v)
	}
	r.w.Line("return that;")
	r.w.Dedent()
	r.w.Line("}")

	return engine.SingleFile(ID, e.settings.ClientName+".js", []byte(r.w.String())), nil
}

type renderer struct {
	types    engine.TypeMapper
	names    engine.IdentifierSanitizer
	defaults engine.DefaultValueFormatter
	uploads  engine.UploadResolver
	w        *engine.Writer
}

// variable is the local name of a category object, e.g. "email".
func (r *renderer) variable(cat spec.Category) string {
	return r.names.Sanitize(strings.ToLower(cat.Name))
}

func (r *renderer) category(cat spec.Category) error {
	w := r.w
	v := r.variable(cat)
	w.Line("/* region %s */", cat.Name)
	jsdoc(w, engine.DocLines(cat.Summary))
	w.Line("var %s = {};", v)
	w.Blank()
	for _, fn := range cat.SortedFunctions() {
		if err := r.function(v, cat, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	w.Line("/* endregion %s */", cat.Name)
	w.Blank()
	return nil
}

func (r *renderer) function(v string, cat spec.Category, fn spec.Function) error {
	w := r.w
	doc := engine.DocLines(fn.Summary)
	params := fn.CallParameters()
	args := make([]string, 0, len(params)+1)
	for _, prm := range params {
		t, err := r.types.Resolve(prm.Type, "Object", true)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		ident := r.names.Sanitize(prm.Name)
		line := fmt.Sprintf("@param {%s} %s", t, ident)
		if desc := engine.DocText(prm.Description); desc != "" {
			line += " - " + desc
		}
		doc = append(doc, line)
		args = append(args, ident)
	}
	doc = append(doc, "@param {Function} callback - receives (data, error)")
	if !fn.ReturnType.IsVoid() {
		ret, err := r.types.Resolve(fn.ReturnType, "", false)
		if err != nil {
			return err
		}
		doc = append(doc, "@return {"+ret+"}")
	}
	jsdoc(w, doc)

	args = append(args, "callback")
	w.Line("%s.%s = function (%s) {", v, r.names.Sanitize(fn.Name), strings.Join(args, ", "))
	w.Indent()
	for _, prm := range params {
		if !prm.HasDefaultValue {
			continue
		}
		def, err := r.defaults.Format(prm)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		ident := r.names.Sanitize(prm.Name)
		w.Line("%s = typeof %s !== 'undefined' ? %s : %s;", ident, ident, ident, def)
	}

	up := r.uploads.Resolve(fn)
	query := make([]string, 0, len(up.Query))
	for _, prm := range up.Query {
		query = append(query, fmt.Sprintf("%s: %s", prm.Name, r.queryValue(prm)))
	}
	target := "'/" + engine.DispatchPath(cat, fn) + "'"
	q := "{" + strings.Join(query, ", ") + "}"
	switch up.Transport {
	case engine.TransportMultipart:
		files := make([]string, 0, len(up.Payload))
		for _, prm := range up.Payload {
			files = append(files, r.names.Sanitize(prm.Name))
		}
		// A list-typed file parameter is passed through as the array itself.
		list := "[" + strings.Join(files, ", ") + "]"
		if len(up.Payload) == 1 && up.Payload[0].Type != nil && (up.Payload[0].Type.IsList || up.Payload[0].Type.IsArray) {
			list = files[0]
		}
		w.Line("uploadPostFile(%s, %s, %s, callback);", target, list, q)
	case engine.TransportPut:
		w.Line("uploadPutFile(%s, %s, %s, callback);", target, r.names.Sanitize(up.Payload[0].Name), q)
	case engine.TransportFileGet:
		w.Line("requestFile(%s, %s, callback);", target, q)
	default:
		w.Line("request(%s, %s, callback);", target, q)
	}
	w.Dedent()
	w.Line("};")
	w.Blank()
	return nil
}

// queryValue serialises custom types as JSON; everything else is left to
// flatten in the runtime.
func (r *renderer) queryValue(prm spec.Parameter) string {
	ident := r.names.Sanitize(prm.Name)
	if dt := prm.Type; dt != nil && !dt.IsPrimitive && !dt.IsEnum && !dt.IsDictionary && !dt.IsFile {
		return "toJson(" + ident + ")"
	}
	return ident
}

func (r *renderer) class(cls spec.Class) error {
	w := r.w
	name := r.names.Sanitize(cls.Name)
	doc := engine.DocLines(cls.Summary)
	if cls.IsEnum {
		jsdoc(w, append(doc, "@readonly", "@enum {Number}"))
		w.Line("ApiTypes.%s = Object.freeze({", name)
		w.Indent()
		for i, m := range cls.Fields {
			sep := ","
			if i == len(cls.Fields)-1 {
				sep = ""
			}
			jsdoc(w, engine.DocLines(m.Description))
			w.Line("%s: %d%s", r.names.Sanitize(m.Name), *m.Value, sep)
		}
		w.Dedent()
		w.Line("});")
		w.Blank()
		return nil
	}

	for _, m := range cls.Fields {
		t, err := r.types.Resolve(m.Type, "Object", false)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		doc = append(doc, strings.TrimSpace(fmt.Sprintf("@property {%s} %s %s", t, m.Name, engine.DocText(m.Description))))
	}
	jsdoc(w, append(doc, "@constructor"))
	w.Line("ApiTypes.%s = function (data) {", name)
	w.Indent()
	w.Line("data = data || {};")
	for _, m := range cls.Fields {
		w.Line("this[%s] = typeof data[%s] !== 'undefined' ? data[%s] : null;", engine.SingleQuoted(m.Name), engine.SingleQuoted(m.Name), engine.SingleQuoted(m.Name))
	}
	w.Dedent()
	w.Line("};")
	w.Blank()
	return nil
}

func jsdoc(w *engine.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.Line("/**")
	for _, l := range lines {
		w.Line(" * " + l)
	}
	w.Line(" */")
}
