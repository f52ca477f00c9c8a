package phpemitter

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

const ID = "php"

const typesNamespace = `\ApiTypes\`

var primitives = map[string]string{
	"String":             "string",
	"Int32":              "int",
	"Int64":              "int",
	"Double":             "float",
	"Decimal":            "float",
	"Boolean":            "bool",
	"DateTime":           `\DateTime`,
	"Guid":               "string",
	"TextResponse":       "string",
	"XmlResponse":        "string",
	"HtmlResponse":       "string",
	"JavascriptResponse": "string",
	"JsonResponse":       "string",
}

var reserved = []string{
	"list", "copy", "delete", "public", "private", "interface", "abstract", "and", "array",
	"as", "break", "callable", "case", "catch", "class", "clone", "const", "continue",
	"declare", "default", "do", "echo", "else", "elseif", "empty", "enddeclare", "endfor",
	"endforeach", "endif", "endswitch", "endwhile", "eval", "exit", "extends", "final",
	"finally", "fn", "for", "foreach", "function", "global", "goto", "if", "implements",
	"include", "instanceof", "insteadof", "isset", "match", "namespace", "new", "or", "print",
	"protected", "require", "return", "static", "switch", "throw", "trait", "try", "unset",
	"use", "var", "while", "xor", "yield",
}

var typeTable = engine.TypeTable{
	Primitives:     primitives,
	Custom:         engine.Prefixed(typesNamespace),
	File:           "File",
	FileSeqOnArray: true,
	List: func(elem string, forParam bool) string {
		if forParam {
			return "array<" + elem + ">"
		}
		return "Array<" + elem + ">"
	},
	Array:    func(elem string) string { return "Array<" + elem + ">" },
	Map:      func(k, v string) string { return "array<" + k + ", " + v + ">" },
	Nullable: func(t string) string { return "?" + t },
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
			EmptyList: "array()",
			EmptyMap:  "array()",
			Enum:      func(t, m string) string { return typesNamespace + t + "::" + m },
			Quote:     engine.SingleQuoted,
		},
	}
}

// Emitter renders one PHP file holding the client namespace and the
// ApiTypes namespace.
type Emitter struct {
	settings engine.Settings
}

func New(settings engine.Settings) *Emitter {
	return &Emitter{settings: settings.WithDefaults()}
}

func (e *Emitter) ID() string { return ID }

func (e *Emitter) Aliases() []string { return []string{"5", "php"} }

func (e *Emitter) Emit(s *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("phpemitter: nil Project")
	}
	names := NewSanitizer()
	r := &renderer{
		types:    NewTypeMapper(s),
		names:    names,
		defaults: NewDefaultFormatter(names),
		uploads:  engine.Resolver{},
		w:        engine.NewWriter("    "),
	}
	prologue, err := engine.RenderTemplate(templates, "templates/prologue.php.tmpl", engine.NewTemplateData(e.settings, p))
	if err != nil {
		return nil, err
	}
	r.w.Raw(prologue)

	for _, cat := range p.SortedCategories() {
		if err := r.category(cat); err != nil {
			return nil, errors.Wrapf(err, "phpemitter: category %s", cat.Name)
		}
	}

	r.w.Line("namespace ApiTypes;")
	r.w.Blank()
	for _, cls := range p.SortedClasses() {
		if err := r.class(cls); err != nil {
			return nil, errors.Wrapf(err, "phpemitter: class %s", cls.Name)
		}
	}

	return engine.SingleFile(ID, e.settings.ClientName+".php", []byte(r.w.String())), nil
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
	docblock(w, engine.DocLines(cat.Summary))
	w.Line("class %s", r.names.Sanitize(cat.Name))
	w.Line("{")
	w.Indent()
	for _, fn := range cat.SortedFunctions() {
		if err := r.function(cat, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

func (r *renderer) function(cat spec.Category, fn spec.Function) error {
	w := r.w
	doc := engine.DocLines(fn.Summary)
	params := fn.CallParameters()
	args := make([]string, 0, len(params))
	for _, prm := range params {
		t, err := r.types.Resolve(prm.Type, "mixed", true)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		v := r.variable(prm.Name)
		doc = append(doc, strings.TrimSpace(fmt.Sprintf("@param %s %s %s", t, v, engine.DocText(prm.Description))))

		arg := v
		if prm.HasDefaultValue {
			def, err := r.defaults.Format(prm)
			if err != nil {
				return errors.Wrapf(err, "parameter %s", prm.Name)
			}
			if prm.Type != nil && prm.Type.IsCollection() {
				arg = "array " + arg
			}
			arg += " = " + def
		}
		args = append(args, arg)
	}
	if !fn.ReturnType.IsVoid() {
		ret, err := r.types.Resolve(fn.ReturnType, "void", false)
		if err != nil {
			return err
		}
		doc = append(doc, "@return "+ret)
	}
	doc = append(doc, "@throws ApiException")
	docblock(w, doc)

	w.Line("public function %s(%s)", r.names.Sanitize(fn.Name), strings.Join(args, ", "))
	w.Line("{")
	w.Indent()

	up := r.uploads.Resolve(fn)
	w.Line("$data = array(")
	w.Indent()
	var dicts []spec.Parameter
	entries := make([]string, 0, len(up.Query))
	for _, prm := range up.Query {
		if prm.Type != nil && prm.Type.IsDictionary {
			dicts = append(dicts, prm)
			continue
		}
		entries = append(entries, fmt.Sprintf("'%s' => %s", prm.Name, r.queryValue(prm)))
	}
	for i, e := range entries {
		if i < len(entries)-1 {
			e += ","
		}
		w.Line(e)
	}
	w.Dedent()
	w.Line(");")
	for _, prm := range dicts {
		v := r.variable(prm.Name)
		w.Line("foreach ((array)%s as $key => $value) {", v)
		w.Line("    $data['%s_' . $key] = $value;", prm.Name)
		w.Line("}")
	}

	target := "'" + engine.DispatchPath(cat, fn) + "'"
	switch up.Transport {
	case engine.TransportMultipart:
		files := make([]string, 0, len(up.Payload))
		for _, prm := range up.Payload {
			v := r.variable(prm.Name)
			if prm.Type != nil && prm.Type.IsCollection() {
				files = append(files, "(array)"+v)
			} else {
				files = append(files, "array("+v+")")
			}
		}
		w.Line("return ApiClient::Request(%s, $data, 'POST', array_merge(%s));", target, strings.Join(files, ", "))
	case engine.TransportPut:
		w.Line("return ApiClient::putFile(%s, $data, %s);", target, r.variable(up.Payload[0].Name))
	case engine.TransportFileGet:
		w.Line("return ApiClient::getFile(%s, $data);", target)
	default:
		w.Line("return ApiClient::Request(%s, $data);", target)
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

// queryValue joins lists with ';' and JSON-encodes custom types. Null values
// are removed by the runtime.
func (r *renderer) queryValue(prm spec.Parameter) string {
	v := r.variable(prm.Name)
	dt := prm.Type
	switch {
	case dt == nil:
		return v
	case !dt.IsPrimitive && !dt.IsEnum && !dt.IsFile:
		return fmt.Sprintf("(%s === null) ? null : json_encode(%s)", v, v)
	case dt.IsList || dt.IsArray:
		return fmt.Sprintf("empty(%s) ? null : join(';', %s)", v, v)
	}
	return v
}

func (r *renderer) variable(name string) string {
	return "$" + r.names.Sanitize(name)
}

func (r *renderer) class(cls spec.Class) error {
	w := r.w
	doc := engine.DocLines(cls.Summary)
	name := r.names.Sanitize(cls.Name)
	if cls.IsEnum {
		docblock(w, append(doc, "Enum class"))
		w.Line("abstract class %s", name)
	} else {
		docblock(w, doc)
		w.Line("class %s", name)
	}
	w.Line("{")
	w.Indent()
	for _, m := range cls.Fields {
		docblock(w, engine.DocLines(m.Description))
		if cls.IsEnum {
			w.Line("const %s = %d;", r.names.Sanitize(m.Name), *m.Value)
			w.Blank()
			continue
		}
		t, err := r.types.Resolve(m.Type, "mixed", false)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		w.Line("public /*%s*/ %s;", t, r.variable(m.Name))
		w.Blank()
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

func docblock(w *engine.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.Line("/**")
	for _, l := range lines {
		w.Line(" * " + l)
	}
	w.Line(" */")
}
