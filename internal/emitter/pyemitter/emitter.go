package pyemitter

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

const ID = "python"

var primitives = map[string]string{
	"String":             "str",
	"Int32":              "int",
	"Int64":              "int",
	"Double":             "float",
	"Decimal":            "Decimal",
	"Boolean":            "bool",
	"DateTime":           "datetime",
	"Guid":               "str",
	"TextResponse":       "str",
	"XmlResponse":        "str",
	"HtmlResponse":       "str",
	"JavascriptResponse": "str",
	"JsonResponse":       "str",
}

var reserved = []string{
	"from", "none", "and", "as", "assert", "async", "await", "break", "class", "continue",
	"def", "del", "elif", "else", "except", "false", "finally", "for", "global", "if",
	"import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return",
	"true", "try", "while", "with", "yield", "data",
}

var typeTable = engine.TypeTable{
	Primitives:     primitives,
	Custom:         engine.Prefixed("ApiTypes."),
	File:           "File",
	FileSeqOnArray: true,
	List: func(elem string, forParam bool) string {
		if forParam {
			return "Iterable[" + elem + "]"
		}
		return "List[" + elem + "]"
	},
	Array:    func(elem string) string { return "List[" + elem + "]" },
	Map:      func(k, v string) string { return "Dict[" + k + ", " + v + "]" },
	Nullable: func(t string) string { return "Optional[" + t + "]" },
}

func NewTypeMapper(s *engine.Session) *engine.Mapper {
	return engine.NewMapper(ID, &typeTable, NewSanitizer(), s)
}

func NewSanitizer() *engine.Sanitizer {
	return engine.NewSanitizer(reserved...)
}

// NewDefaultFormatter renders Python literals: None, True/False for booleans,
// other primitives verbatim.
func NewDefaultFormatter(names engine.IdentifierSanitizer) *engine.DefaultFormatter {
	return &engine.DefaultFormatter{
		Sanitizer: names,
		Style: engine.DefaultStyle{
			Null:      "None",
			EmptyList: "[]",
			EmptyMap:  "{}",
			Enum:      func(t, m string) string { return "ApiTypes." + t + "." + m },
			Quote:     engine.SingleQuoted,
			Fold: func(typeName, value string) string {
				if typeName == "Boolean" {
					if strings.EqualFold(value, "true") {
						return "True"
					}
					return "False"
				}
				return value
			},
		},
	}
}

type Emitter struct {
	settings engine.Settings
}

func New(settings engine.Settings) *Emitter {
	return &Emitter{settings: settings.WithDefaults()}
}

func (e *Emitter) ID() string { return ID }

func (e *Emitter) Aliases() []string { return []string{"6", "py", "python"} }

// Emit writes ApiTypes before the categories so enum defaults resolve when
// the module is imported.
func (e *Emitter) Emit(s *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("pyemitter: nil Project")
	}
	names := NewSanitizer()
	r := &renderer{
		types:    NewTypeMapper(s),
		names:    names,
		defaults: NewDefaultFormatter(names),
		uploads:  engine.Resolver{},
		w:        engine.NewWriter("    "),
	}
	prologue, err := engine.RenderTemplate(templates, "templates/prologue.py.tmpl", engine.NewTemplateData(e.settings, p))
	if err != nil {
		return nil, err
	}
	r.w.Raw(prologue)
	r.w.Blank()

	r.w.Line("class ApiTypes:")
	r.w.Indent()
	classes := p.SortedClasses()
	if len(classes) == 0 {
		r.w.Line("pass")
	}
	for _, cls := range classes {
		if err := r.class(cls); err != nil {
			return nil, errors.Wrapf(err, "pyemitter: class %s", cls.Name)
		}
	}
	r.w.Dedent()

	for _, cat := range p.SortedCategories() {
		if err := r.category(cat); err != nil {
			return nil, errors.Wrapf(err, "pyemitter: category %s", cat.Name)
		}
	}

	return engine.SingleFile(ID, e.settings.ClientName+".py", []byte(r.w.String())), nil
}

type renderer struct {
	types    engine.TypeMapper
	names    engine.IdentifierSanitizer
	defaults engine.DefaultValueFormatter
	uploads  engine.UploadResolver
	w        *engine.Writer
}

func (r *renderer) category(cat spec.Category) error {
	w := r.w
	w.Blank()
	w.Blank()
	w.Line("class %s:", r.names.Sanitize(cat.Name))
	w.Indent()
	docstring(w, engine.DocLines(cat.Summary))
	fns := cat.SortedFunctions()
	if len(fns) == 0 {
		w.Line("pass")
	}
	for _, fn := range fns {
		if err := r.function(cat, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	w.Dedent()
	return nil
}

func (r *renderer) function(cat spec.Category, fn spec.Function) error {
	w := r.w
	params := fn.CallParameters()
	doc := engine.DocLines(fn.Summary)
	args := make([]string, 0, len(params))
	for _, prm := range params {
		t, err := r.types.Resolve(prm.Type, "None", true)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		ident := r.names.Sanitize(prm.Name)
		line := t + " " + ident
		if desc := engine.DocText(prm.Description); desc != "" {
			line += " - " + desc
		}
		arg := ident
		if prm.HasDefaultValue {
			def, err := r.defaults.Format(prm)
			if err != nil {
				return errors.Wrapf(err, "parameter %s", prm.Name)
			}
			line += " (default " + def + ")"
			arg += "=" + def
		}
		doc = append(doc, "    "+line)
		args = append(args, arg)
	}
	if !fn.ReturnType.IsVoid() {
		ret, err := r.types.Resolve(fn.ReturnType, "None", false)
		if err != nil {
			return err
		}
		doc = append(doc, "Returns "+ret)
	}

	w.Blank()
	w.Line("@staticmethod")
	w.Line("def %s(%s):", r.names.Sanitize(fn.Name), strings.Join(args, ", "))
	w.Indent()
	docstring(w, doc)

	up := r.uploads.Resolve(fn)
	var dicts []spec.Parameter
	entries := make([]string, 0, len(up.Query))
	for _, prm := range up.Query {
		if prm.Type != nil && prm.Type.IsDictionary {
			dicts = append(dicts, prm)
			continue
		}
		entries = append(entries, fmt.Sprintf("'%s': %s", prm.Name, r.queryValue(prm)))
	}
	if len(entries) == 0 {
		w.Line("data = {}")
	} else {
		w.Line("data = {")
		w.Indent()
		for _, e := range entries {
			w.Line(e + ",")
		}
		w.Dedent()
		w.Line("}")
	}
	for _, prm := range dicts {
		w.Line("data.update(ApiClient.Flatten('%s', %s))", prm.Name, r.names.Sanitize(prm.Name))
	}

	url := "'/" + engine.DispatchPath(cat, fn) + "'"
	switch up.Transport {
	case engine.TransportMultipart:
		parts := make([]string, 0, len(up.Payload))
		for _, prm := range up.Payload {
			ident := r.names.Sanitize(prm.Name)
			if prm.Type.IsCollection() {
				parts = append(parts, "list("+ident+" or [])")
			} else {
				parts = append(parts, "["+ident+"]")
			}
		}
		w.Line("return ApiClient.Request('POST', %s, data, %s)", url, strings.Join(parts, " + "))
	case engine.TransportPut:
		w.Line("return ApiClient.PutFile(%s, data, %s)", url, r.names.Sanitize(up.Payload[0].Name))
	case engine.TransportFileGet:
		w.Line("return ApiClient.GetFile(%s, data)", url)
	default:
		w.Line("return ApiClient.Request('POST', %s, data)", url)
	}
	w.Dedent()
	return nil
}

// queryValue joins lists with ';' and serialises custom types as JSON.
// Enums, dates and booleans are rendered by ApiClient.Clean.
func (r *renderer) queryValue(prm spec.Parameter) string {
	ident := r.names.Sanitize(prm.Name)
	dt := prm.Type
	switch {
	case dt == nil:
		return ident
	case !dt.IsPrimitive && !dt.IsEnum && !dt.IsFile:
		return "ApiClient.ToJson(" + ident + ")"
	case dt.IsList || dt.IsArray:
		return "ApiClient.Join(" + ident + ")"
	}
	return ident
}

func (r *renderer) class(cls spec.Class) error {
	w := r.w
	w.Blank()
	name := r.names.Sanitize(cls.Name)
	if cls.IsEnum {
		w.Line("class %s(Enum):", name)
	} else {
		w.Line("class %s:", name)
	}
	w.Indent()
	defer w.Dedent()
	docstring(w, engine.DocLines(cls.Summary))
	for _, m := range cls.Fields {
		docstring(w, engine.DocLines(m.Description))
		if cls.IsEnum {
			w.Line("%s = %d", r.names.Sanitize(m.Name), *m.Value)
			continue
		}
		t, err := r.types.Resolve(m.Type, "None", false)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		w.Line("%s = None  # %s", r.names.Sanitize(m.Name), t)
	}
	if len(cls.Fields) == 0 && cls.Summary == "" {
		w.Line("pass")
	}
	return nil
}

func docstring(w *engine.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.Line(`"""`)
	for _, l := range lines {
		w.Line(l)
	}
	w.Line(`"""`)
}
