package csemitter

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

const ID = "csharp"

const dateFormat = "M/d/yyyy h:mm:ss tt"

var primitives = map[string]string{
	"String":             "string",
	"Int32":              "int",
	"Int64":              "long",
	"Double":             "double",
	"Decimal":            "decimal",
	"Boolean":            "bool",
	"DateTime":           "DateTime",
	"Guid":               "Guid",
	"TextResponse":       "string",
	"XmlResponse":        "string",
	"HtmlResponse":       "string",
	"JavascriptResponse": "string",
	"JsonResponse":       "string",
}

// valueTypes are C# structs; everything else is a reference type that may be null.
var valueTypes = map[string]bool{
	"Int32": true, "Int64": true, "Double": true, "Decimal": true,
	"Boolean": true, "DateTime": true, "Guid": true,
}

var reserved = []string{
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char", "checked",
	"class", "const", "continue", "decimal", "default", "delegate", "do", "double", "else",
	"enum", "event", "explicit", "extern", "false", "finally", "fixed", "float", "for",
	"foreach", "goto", "if", "implicit", "in", "int", "interface", "internal", "is", "lock",
	"long", "namespace", "new", "null", "object", "operator", "out", "override", "params",
	"private", "protected", "public", "readonly", "ref", "return", "sbyte", "sealed", "short",
	"sizeof", "stackalloc", "static", "string", "struct", "switch", "this", "throw", "true",
	"try", "typeof", "uint", "ulong", "unchecked", "unsafe", "ushort", "using", "virtual",
	"void", "volatile", "while",
}

var typeTable = engine.TypeTable{
	Primitives: primitives,
	Custom:     engine.Prefixed("ApiTypes."),
	File:       "ApiTypes.FileData",
	List: func(elem string, forParam bool) string {
		if forParam {
			return "IEnumerable<" + elem + ">"
		}
		return "List<" + elem + ">"
	},
	Array:    func(elem string) string { return elem + "[]" },
	Map:      func(k, v string) string { return "Dictionary<" + k + ", " + v + ">" },
	Nullable: func(t string) string { return t + "?" },
}

// NewTypeMapper returns the C# type mapper bound to s.
func NewTypeMapper(s *engine.Session) *engine.Mapper {
	return engine.NewMapper(ID, &typeTable, NewSanitizer(), s)
}

// NewSanitizer returns the C# identifier sanitizer.
func NewSanitizer() *engine.Sanitizer {
	return engine.NewSanitizer(reserved...)
}

// NewDefaultFormatter returns the C# default literal formatter. Collection
// defaults are null because optional arguments must be constants.
func NewDefaultFormatter(names engine.IdentifierSanitizer) *engine.DefaultFormatter {
	return &engine.DefaultFormatter{
		Sanitizer: names,
		Style: engine.DefaultStyle{
			Null:      "null",
			EmptyList: "null",
			EmptyMap:  "null",
			Enum:      func(t, m string) string { return "ApiTypes." + t + "." + m },
			Quote:     engine.DoubleQuoted,
		},
	}
}

// Emitter renders a single C# source file.
type Emitter struct {
	settings engine.Settings
}

func New(settings engine.Settings) *Emitter {
	return &Emitter{settings: settings.WithDefaults()}
}

func (e *Emitter) ID() string { return ID }

func (e *Emitter) Aliases() []string { return []string{"1", "c#", "cs", "csharp"} }

func (e *Emitter) Emit(s *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("csemitter: nil Project")
	}
	names := NewSanitizer()
	r := &renderer{
		types:    NewTypeMapper(s),
		names:    names,
		defaults: NewDefaultFormatter(names),
		uploads:  engine.Resolver{},
		w:        engine.NewWriter("    "),
	}
	data := engine.NewTemplateData(e.settings, p)

	prologue, err := engine.RenderTemplate(templates, "templates/prologue.cs.tmpl", data)
	if err != nil {
		return nil, err
	}
	fileData, err := engine.RenderTemplate(templates, "templates/filedata.cs.tmpl", data)
	if err != nil {
		return nil, err
	}

	r.w.Raw(prologue)
	r.w.Indent()
	r.w.Indent()
	for _, cat := range p.SortedCategories() {
		if err := r.category(cat); err != nil {
			return nil, errors.Wrapf(err, "csemitter: category %s", cat.Name)
		}
	}
	r.w.Dedent()
	r.w.Line("}")
	r.w.Blank()
	r.w.Line("#region Api Types")
	r.w.Line("public static class ApiTypes")
	r.w.Line("{")
	r.w.Raw(fileData)
	r.w.Line("#pragma warning disable 0649")
	r.w.Indent()
	for _, cls := range p.SortedClasses() {
		if err := r.class(cls); err != nil {
			return nil, errors.Wrapf(err, "csemitter: class %s", cls.Name)
		}
	}
	r.w.Dedent()
	r.w.Line("#pragma warning restore 0649")
	r.w.Line("}")
	r.w.Line("#endregion")
	r.w.Dedent()
	r.w.Line("}")

	return engine.SingleFile(ID, e.settings.ClientName+".cs", []byte(r.w.String())), nil
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
	name := r.names.Sanitize(cat.Name)
	w.Blank()
	w.Line("#region %s functions", name)
	summary(w, cat.Summary)
	w.Line("public static class %s", name)
	w.Line("{")
	w.Indent()
	for _, fn := range cat.SortedFunctions() {
		if err := r.function(cat, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	w.Dedent()
	w.Line("}")
	w.Line("#endregion")
	return nil
}

func (r *renderer) function(cat spec.Category, fn spec.Function) error {
	w := r.w
	ret, err := r.types.Resolve(fn.ReturnType, "void", false)
	if err != nil {
		return err
	}
	envelope, err := r.types.Resolve(fn.ReturnType, "VoidApiResponse", false)
	if err != nil {
		return err
	}

	summary(w, fn.Summary)
	args := make([]string, 0, len(fn.Parameters))
	for _, prm := range fn.CallParameters() {
		w.Line("/// <param name=\"%s\">%s</param>", r.names.Sanitize(prm.Name), engine.DocText(prm.Description))
		t, err := r.types.Resolve(prm.Type, "object", true)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		arg := t + " " + r.names.Sanitize(prm.Name)
		if prm.HasDefaultValue {
			def, err := r.defaults.Format(prm)
			if err != nil {
				return err
			}
			arg += " = " + def
		}
		args = append(args, arg)
	}
	if !fn.ReturnType.IsVoid() {
		w.Line("/// <returns>%s</returns>", strings.NewReplacer("<", "(", ">", ")").Replace(ret))
	}

	up := r.uploads.Resolve(fn)
	w.Line("public static %s %s(%s)", ret, r.names.Sanitize(fn.Name), strings.Join(args, ", "))
	w.Line("{")
	w.Indent()
	if up.Transport == engine.TransportForm {
		w.Line("WebClient client = new CustomWebClient();")
	}
	w.Line("NameValueCollection values = new NameValueCollection();")
	w.Line(`values.Add("apikey", Api.ApiKey);`)
	for _, prm := range up.Query {
		if err := r.queryValue(prm); err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
	}

	url := fmt.Sprintf(`Api.ApiUri + "/%s"`, engine.DispatchPath(cat, fn))
	switch up.Transport {
	case engine.TransportMultipart:
		w.Line("List<ApiTypes.FileData> files = new List<ApiTypes.FileData>();")
		for _, prm := range up.Payload {
			ident := r.names.Sanitize(prm.Name)
			if prm.Type != nil && (prm.Type.IsList || prm.Type.IsArray) {
				w.Line("if (%s != null) files.AddRange(%s);", ident, ident)
			} else {
				w.Line("if (%s != null) files.Add(%s);", ident, ident)
			}
		}
		w.Line("byte[] apiResponse = ApiUtilities.HttpPostFile(%s, files, values);", url)
	case engine.TransportPut:
		w.Line("byte[] apiResponse = ApiUtilities.HttpPutFile(%s, %s, values);", url, r.names.Sanitize(up.Payload[0].Name))
	case engine.TransportFileGet:
		w.Line("return ApiUtilities.HttpGetFile(%s, values);", url)
	default:
		w.Line("byte[] apiResponse = client.UploadValues(%s, values);", url)
	}

	switch {
	case up.Transport == engine.TransportFileGet:
	case fn.ReturnsFile():
		w.Line("return new ApiTypes.FileData { Content = apiResponse };")
	default:
		w.Line("ApiResponse<%s> apiRet = Newtonsoft.Json.JsonConvert.DeserializeObject<ApiResponse<%s>>(Encoding.UTF8.GetString(apiResponse));", envelope, envelope)
		w.Line("if (!apiRet.success) throw new ApiException(apiRet.error);")
		if !fn.ReturnType.IsVoid() {
			w.Line("return apiRet.Data;")
		}
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

// queryValue appends prm to the NameValueCollection. Null references are
// skipped; values are never compared with their defaults.
func (r *renderer) queryValue(prm spec.Parameter) error {
	w := r.w
	ident := r.names.Sanitize(prm.Name)
	dt := prm.Type
	if dt == nil {
		return &spec.MalformedIRError{Path: prm.Name, Reason: "parameter without Type"}
	}

	switch {
	case dt.IsDictionary:
		t, err := r.types.Resolve(dt, "object", false)
		if err != nil {
			return err
		}
		item := strings.Replace(t, "Dictionary<", "KeyValuePair<", 1)
		w.Line("if (%s != null)", ident)
		w.Block("{", func() {
			w.Line("foreach (%s _item in %s)", item, ident)
			w.Block("{", func() {
				w.Line(`values.Add("%s_" + _item.Key, Convert.ToString(_item.Value));`, prm.Name)
			}, "}")
		}, "}")
	case !dt.IsPrimitive && !dt.IsEnum:
		w.Line(`if (%s != null) values.Add("%s", Newtonsoft.Json.JsonConvert.SerializeObject(%s));`, ident, prm.Name, ident)
	case dt.IsArray:
		w.Line("if (%s != null)", ident)
		w.Block("{", func() {
			w.Line("foreach (var _item in %s)", ident)
			w.Block("{", func() {
				w.Line(`values.Add("%s", %s);`, prm.Name, scalarToString(dt, "_item", false))
			}, "}")
		}, "}")
	case dt.IsList:
		w.Line(`if (%s != null) values.Add("%s", string.Join(",", %s));`, ident, prm.Name, ident)
	case isReference(dt):
		w.Line(`if (%s != null) values.Add("%s", %s);`, ident, prm.Name, scalarToString(dt, ident, dt.IsNullable))
	default:
		w.Line(`values.Add("%s", %s);`, prm.Name, scalarToString(dt, ident, false))
	}
	return nil
}

// isReference reports whether a scalar parameter may hold null.
func isReference(dt *spec.DataType) bool {
	if dt.IsNullable {
		return true
	}
	if dt.IsEnum {
		return false
	}
	return !valueTypes[dt.Name()]
}

func scalarToString(dt *spec.DataType, expr string, nullable bool) string {
	if dt.Name() == "String" {
		return expr
	}
	if nullable {
		expr += ".Value"
	}
	if dt.Name() == "DateTime" {
		return expr + `.ToString("` + dateFormat + `")`
	}
	return expr + ".ToString()"
}

func (r *renderer) class(cls spec.Class) error {
	w := r.w
	summary(w, cls.Summary)
	kind := "class"
	if cls.IsEnum {
		kind = "enum"
	}
	w.Line("public %s %s", kind, r.names.Sanitize(cls.Name))
	w.Line("{")
	w.Indent()
	for _, m := range cls.Fields {
		summary(w, m.Description)
		ident := r.names.Sanitize(m.Name)
		if cls.IsEnum {
			w.Line("%s = %d,", ident, *m.Value)
			w.Blank()
			continue
		}
		t, err := r.types.Resolve(m.Type, "object", false)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		if ident != m.Name {
			w.Line(`[Newtonsoft.Json.JsonProperty("%s")]`, m.Name)
		}
		w.Line("public %s %s;", t, ident)
		w.Blank()
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

func summary(w *engine.Writer, text string) {
	w.Line("/// <summary>")
	lines := engine.DocLines(text)
	if len(lines) == 0 {
		w.Line("///")
	}
	for _, l := range lines {
		w.Line("/// " + l)
	}
	w.Line("/// </summary>")
}
