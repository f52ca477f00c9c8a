package javaemitter

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/spec"
)

//go:embed templates/*.tmpl
var templates embed.FS

const ID = "java"

var primitives = map[string]string{
	"String":             "String",
	"Int32":              "int",
	"Int64":              "long",
	"Double":             "double",
	"Decimal":            "BigDecimal",
	"Boolean":            "Boolean",
	"DateTime":           "Date",
	"Guid":               "UUID",
	"TextResponse":       "String",
	"XmlResponse":        "String",
	"HtmlResponse":       "String",
	"JavascriptResponse": "String",
	"JsonResponse":       "String",
}

// boxed is used inside generics, which cannot hold Java primitives.
var boxed = map[string]string{
	"String":             "String",
	"Int32":              "Integer",
	"Int64":              "Long",
	"Double":             "Double",
	"Decimal":            "BigDecimal",
	"Boolean":            "Boolean",
	"DateTime":           "Date",
	"Guid":               "UUID",
	"TextResponse":       "String",
	"XmlResponse":        "String",
	"HtmlResponse":       "String",
	"JavascriptResponse": "String",
	"JsonResponse":       "String",
}

var reserved = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char", "class", "const",
	"continue", "default", "do", "double", "else", "enum", "extends", "final", "finally", "float",
	"for", "goto", "if", "implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "package", "private", "protected", "public", "return", "short", "static", "strictfp",
	"super", "switch", "synchronized", "this", "throw", "throws", "transient", "try", "void",
	"volatile", "while", "true", "false", "null", "values",
}

const typesPrefix = "ApiTypes."

// listWrapper replaces lists of custom types and of String with a named
// ApiTypes.<Name>List subclass so the type has a usable class literal.
func listWrapper(s *engine.Session, dt *spec.DataType, name, elem string) (string, bool) {
	if !dt.IsList || (dt.IsPrimitive && elem != "String") {
		return "", false
	}
	s.Lists.Record(name)
	return typesPrefix + name + "List", true
}

func newTypeTable() *engine.TypeTable {
	return &engine.TypeTable{
		Primitives:     primitives,
		DictPrimitives: boxed,
		Custom:         engine.Prefixed(typesPrefix),
		File:           "FileData",
		List: func(elem string, forParam bool) string {
			if forParam {
				return "Iterable<" + box(elem) + ">"
			}
			return "ArrayList<" + box(elem) + ">"
		},
		Array:       func(elem string) string { return elem + "[]" },
		Map:         func(k, v string) string { return "HashMap<" + k + ", " + v + ">" },
		ListWrapper: listWrapper,
	}
}

func box(t string) string {
	for k, v := range primitives {
		if v == t {
			return boxed[k]
		}
	}
	return t
}

// NewTypeMapper returns the Java mapper. Wrapper types it names are recorded
// in s.Lists.
func NewTypeMapper(s *engine.Session) *engine.Mapper {
	return engine.NewMapper(ID, newTypeTable(), NewSanitizer(), s)
}

func NewSanitizer() *engine.Sanitizer {
	return engine.NewSanitizer(reserved...)
}

// NewDefaultFormatter renders defaults for Javadoc; Java has no default
// arguments.
func NewDefaultFormatter(names engine.IdentifierSanitizer) *engine.DefaultFormatter {
	return &engine.DefaultFormatter{
		Sanitizer: names,
		Style: engine.DefaultStyle{
			Null:      "null",
			EmptyList: "empty",
			EmptyMap:  "empty",
			Enum:      func(t, m string) string { return typesPrefix + t + "." + strings.ToUpper(m) },
			Quote:     engine.DoubleQuoted,
		},
	}
}

// Emitter renders a Java source tree, persisted as a zip archive.
type Emitter struct {
	settings engine.Settings
}

func New(settings engine.Settings) *Emitter {
	return &Emitter{settings: settings.WithDefaults()}
}

func (e *Emitter) ID() string { return ID }

func (e *Emitter) Aliases() []string { return []string{"2", "java"} }

func (e *Emitter) Emit(s *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("javaemitter: nil Project")
	}
	pkg := e.settings.ClientName
	data := engine.NewTemplateData(e.settings, p)
	names := NewSanitizer()
	r := &renderer{
		pkg:      pkg,
		types:    NewTypeMapper(s),
		names:    names,
		defaults: NewDefaultFormatter(names),
		uploads:  engine.Resolver{},
	}

	files := map[string][]byte{}
	for _, name := range []string{"API", "APIResponse", "ApiException", "FileData"} {
		text, err := engine.RenderTemplate(templates, "templates/"+name+".java.tmpl", data)
		if err != nil {
			return nil, err
		}
		files[path.Join(pkg, name+".java")] = []byte(text)
	}

	for _, cat := range p.SortedCategories() {
		text, err := r.category(cat)
		if err != nil {
			return nil, errors.Wrapf(err, "javaemitter: category %s", cat.Name)
		}
		files[path.Join(pkg, "functions", names.Sanitize(cat.Name)+".java")] = []byte(text)
	}

	// Classes are rendered last: wrapper declarations depend on every
	// list type the categories and fields resolved.
	types, err := r.apiTypes(p, s)
	if err != nil {
		return nil, err
	}
	files[path.Join(pkg, "ApiTypes.java")] = []byte(types)

	return engine.NewBundle(ID, pkg+".zip", files), nil
}

type renderer struct {
	pkg      string
	types    engine.TypeMapper
	names    engine.IdentifierSanitizer
	defaults engine.DefaultValueFormatter
	uploads  engine.UploadResolver
}

func (r *renderer) category(cat spec.Category) (string, error) {
	w := engine.NewWriter("\t")
	w.Line("package %s.functions;", r.pkg)
	w.Blank()
	for _, imp := range []string{
		"java.math.BigDecimal", "java.util.Date", "java.util.HashMap", "java.util.UUID",
	} {
		w.Line("import %s;", imp)
	}
	w.Blank()
	for _, imp := range []string{"API", "ApiTypes", "FileData", "APIResponse.VoidApiResponse"} {
		w.Line("import %s.%s;", r.pkg, imp)
	}
	w.Blank()
	javadoc(w, engine.DocLines(cat.Summary))
	w.Line("public class %s extends API {", r.names.Sanitize(cat.Name))
	w.Indent()
	for _, fn := range cat.SortedFunctions() {
		w.Blank()
		if err := r.function(w, cat, fn); err != nil {
			return "", errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	w.Dedent()
	w.Line("}")
	return w.String(), nil
}

func (r *renderer) function(w *engine.Writer, cat spec.Category, fn spec.Function) error {
	ret, err := r.types.Resolve(fn.ReturnType, "void", false)
	if err != nil {
		return err
	}

	doc := engine.DocLines(fn.Summary)
	args := make([]string, 0, len(fn.Parameters))
	for _, prm := range fn.CallParameters() {
		t, err := r.types.Resolve(prm.Type, "Object", true)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		ident := r.ident(prm.Name)
		line := "@param " + ident + " " + engine.DocText(prm.Description)
		if prm.HasDefaultValue {
			def, err := r.defaults.Format(prm)
			if err != nil {
				return err
			}
			line += " (default " + def + ")"
		}
		doc = append(doc, strings.TrimSpace(line))
		args = append(args, t+" "+ident)
	}
	if !fn.ReturnType.IsVoid() {
		doc = append(doc, "@return "+ret)
	}
	doc = append(doc, "@throws Exception")
	javadoc(w, doc)

	w.Line("public %s %s(%s) throws Exception {", ret, engine.LowerFirst(r.names.Sanitize(fn.Name)), strings.Join(args, ", "))
	w.Indent()
	w.Line("HashMap<String, String> values = new HashMap<String, String>();")
	w.Line(`values.put("apikey", API_KEY);`)
	up := r.uploads.Resolve(fn)
	for _, prm := range up.Query {
		if err := r.queryValue(w, prm); err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
	}

	url := fmt.Sprintf(`API_URI + "/%s"`, engine.DispatchPath(cat, fn))
	returnClass := classLiteral(ret)
	prefix := "return "
	if fn.ReturnType.IsVoid() {
		returnClass = "VoidApiResponse.class"
		prefix = ""
	}
	switch up.Transport {
	case engine.TransportMultipart:
		parts := make([]string, 0, len(up.Payload))
		for _, prm := range up.Payload {
			parts = append(parts, r.ident(prm.Name))
		}
		w.Line("%shttpPostFile(%s, fileList(%s), values, %s);", prefix, url, strings.Join(parts, ", "), returnClass)
	case engine.TransportPut:
		w.Line("%shttpPutFile(%s, %s, values, %s);", prefix, url, r.ident(up.Payload[0].Name), returnClass)
	case engine.TransportFileGet:
		w.Line("return httpGetFile(%s, values);", url)
	default:
		w.Line("%suploadValues(%s, values, %s);", prefix, url, returnClass)
	}
	w.Dedent()
	w.Line("}")
	return nil
}

// queryValue stores prm as a string; null values are dropped by the
// transport, never compared with defaults.
func (r *renderer) queryValue(w *engine.Writer, prm spec.Parameter) error {
	ident := r.ident(prm.Name)
	dt := prm.Type
	switch {
	case dt == nil:
		return &spec.MalformedIRError{Path: prm.Name, Reason: "parameter without Type"}
	case dt.IsDictionary:
		w.Line(`putAll(values, "%s", %s);`, prm.Name, ident)
	case !dt.IsPrimitive && !dt.IsEnum:
		w.Line(`values.put("%s", toJson(%s));`, prm.Name, ident)
	case dt.IsList:
		w.Line(`values.put("%s", join(%s, ","));`, prm.Name, ident)
	case dt.IsArray:
		w.Line(`values.put("%s", join(java.util.Arrays.asList(%s), ","));`, prm.Name, ident)
	default:
		w.Line(`values.put("%s", str(%s));`, prm.Name, ident)
	}
	return nil
}

func (r *renderer) ident(name string) string {
	return r.names.Sanitize(name)
}

func (r *renderer) apiTypes(p *spec.Project, s *engine.Session) (string, error) {
	body := engine.NewWriter("\t")
	body.Indent()
	for _, cls := range p.SortedClasses() {
		if err := r.class(body, cls); err != nil {
			return "", errors.Wrapf(err, "javaemitter: class %s", cls.Name)
		}
	}
	for _, name := range s.Lists.Names() {
		elem := name
		if mapped, ok := boxed[name]; ok {
			elem = mapped
		}
		body.Line("public static class %sList extends ArrayList<%s> {", name, elem)
		body.Line("\tprivate static final long serialVersionUID = 1L;")
		body.Line("}")
		body.Blank()
	}

	w := engine.NewWriter("\t")
	w.Line("package %s;", r.pkg)
	w.Blank()
	for _, imp := range []string{
		"java.math.BigDecimal", "java.util.ArrayList", "java.util.Date", "java.util.HashMap", "java.util.UUID",
		"com.fasterxml.jackson.annotation.JsonProperty", "com.fasterxml.jackson.annotation.JsonValue",
	} {
		w.Line("import %s;", imp)
	}
	w.Blank()
	w.Line("public class ApiTypes {")
	w.Raw(body.String())
	w.Line("}")
	return w.String(), nil
}

func (r *renderer) class(w *engine.Writer, cls spec.Class) error {
	javadoc(w, engine.DocLines(cls.Summary))
	name := r.names.Sanitize(cls.Name)
	if cls.IsEnum {
		w.Line("public enum %s {", name)
		w.Indent()
		for i, m := range cls.Fields {
			javadoc(w, engine.DocLines(m.Description))
			sep := ","
			if i == len(cls.Fields)-1 {
				sep = ";"
			}
			w.Line("%s(%d)%s", strings.ToUpper(r.names.Sanitize(m.Name)), *m.Value, sep)
		}
		if len(cls.Fields) == 0 {
			w.Line(";")
		}
		w.Blank()
		w.Line("private final int value;")
		w.Blank()
		w.Line("%s(int value) { this.value = value; }", name)
		w.Blank()
		w.Line("@JsonValue")
		w.Line("public int getValue() { return value; }")
		w.Dedent()
		w.Line("}")
		w.Blank()
		return nil
	}

	w.Line("public static class %s {", name)
	w.Indent()
	for _, m := range cls.Fields {
		t, err := r.types.Resolve(m.Type, "Object", false)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		javadoc(w, engine.DocLines(m.Description))
		w.Line(`@JsonProperty("%s")`, m.Name)
		w.Line("public %s %s;", t, engine.LowerFirst(r.names.Sanitize(m.Name)))
		w.Blank()
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

// classLiteral strips generic arguments: HashMap<String, String> -> HashMap.class.
func classLiteral(t string) string {
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	return t + ".class"
}

func javadoc(w *engine.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.Line("/**")
	for _, l := range lines {
		w.Line(" * " + l)
	}
	w.Line(" */")
}
