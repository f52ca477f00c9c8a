package perlemitter

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

const ID = "perl"

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

var reserved = []string{
	"from", "none", "and", "cmp", "do", "else", "elsif", "eq", "for", "foreach", "ge", "gt",
	"if", "last", "le", "lt", "my", "ne", "next", "no", "not", "or", "our", "package", "redo",
	"require", "return", "sub", "unless", "until", "use", "while", "xor", "new", "class",
	"params", "args", "self",
}

var typeTable = engine.TypeTable{
	Primitives:     primitives,
	Custom:         engine.Prefixed("ApiTypes::"),
	File:           "File",
	FileSeqOnArray: true,
	List:           func(elem string, _ bool) string { return "ArrayRef[" + elem + "]" },
	Array:          func(elem string) string { return "ArrayRef[" + elem + "]" },
	Map:            func(k, v string) string { return "HashRef[" + k + ", " + v + "]" },
	Nullable:       func(t string) string { return "Maybe[" + t + "]" },
}

func NewTypeMapper(s *engine.Session) *engine.Mapper {
	return engine.NewMapper(ID, &typeTable, NewSanitizer(), s)
}

func NewSanitizer() *engine.Sanitizer {
	return engine.NewSanitizer(reserved...)
}

// NewDefaultFormatter renders Perl literals. Booleans become 1 and 0 and
// enum members are class method calls on their constant package.
func NewDefaultFormatter(names engine.IdentifierSanitizer) *engine.DefaultFormatter {
	return &engine.DefaultFormatter{
		Sanitizer: names,
		Style: engine.DefaultStyle{
			Null:      "undef",
			EmptyList: "[]",
			EmptyMap:  "{}",
			Enum:      func(t, m string) string { return "ApiTypes::" + t + "->" + strings.ToUpper(m) },
			Quote:     engine.SingleQuoted,
			Fold: func(typeName, value string) string {
				if typeName == "Boolean" {
					if strings.EqualFold(value, "true") {
						return "1"
					}
					return "0"
				}
				return strings.ToLower(value)
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

func (e *Emitter) Aliases() []string { return []string{"4", "pl", "perl"} }

func (e *Emitter) Emit(s *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("perlemitter: nil Project")
	}
	names := NewSanitizer()
	r := &renderer{
		types:    NewTypeMapper(s),
		names:    names,
		defaults: NewDefaultFormatter(names),
		uploads:  engine.Resolver{},
		w:        engine.NewWriter("    "),
	}
	prologue, err := engine.RenderTemplate(templates, "templates/prologue.pl.tmpl", engine.NewTemplateData(e.settings, p))
	if err != nil {
		return nil, err
	}
	r.w.Raw(prologue)

	for _, cat := range p.SortedCategories() {
		if err := r.category(cat); err != nil {
			return nil, errors.Wrapf(err, "perlemitter: category %s", cat.Name)
		}
	}
	r.w.Line("###########################")
	r.w.Line("package ApiTypes;")
	r.w.Blank()
	for _, cls := range p.SortedClasses() {
		if err := r.class(cls); err != nil {
			return nil, errors.Wrapf(err, "perlemitter: class %s", cls.Name)
		}
	}
	r.w.Line("1;")

	return engine.SingleFile(ID, e.settings.ClientName+".pl", []byte(r.w.String())), nil
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
	w.Line("#")
	for _, l := range engine.DocLines(cat.Summary) {
		w.Line("# " + l)
	}
	w.Line("#")
	w.Line("package Api::%s;", r.names.Sanitize(cat.Name))
	w.Blank()
	for _, fn := range cat.SortedFunctions() {
		if err := r.function(cat, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	return nil
}

func (r *renderer) function(cat spec.Category, fn spec.Function) error {
	w := r.w
	params := fn.CallParameters()

	for _, l := range engine.DocLines(fn.Summary) {
		w.Line("# " + l)
	}
	vars := make([]string, 0, len(params)+1)
	vars = append(vars, "$class")
	var defaults []string
	for _, prm := range params {
		t, err := r.types.Resolve(prm.Type, "void", true)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", prm.Name)
		}
		v := r.variable(prm.Name)
		line := fmt.Sprintf("#   %s %s", t, v)
		if desc := engine.DocText(prm.Description); desc != "" {
			line += " - " + desc
		}
		if prm.HasDefaultValue {
			def, err := r.defaults.Format(prm)
			if err != nil {
				return errors.Wrapf(err, "parameter %s", prm.Name)
			}
			line += " (default " + def + ")"
			if def != "undef" {
				defaults = append(defaults, fmt.Sprintf("%s = %s unless defined %s;", v, def, v))
			}
		}
		w.Line(line)
		vars = append(vars, v)
	}
	if !fn.ReturnType.IsVoid() {
		ret, err := r.types.Resolve(fn.ReturnType, "void", false)
		if err != nil {
			return err
		}
		w.Line("# Returns " + ret)
	}

	w.Line("sub %s", r.names.Sanitize(fn.Name))
	w.Line("{")
	w.Indent()
	w.Line("my (%s) = @_;", strings.Join(vars, ", "))
	for _, d := range defaults {
		w.Line(d)
	}

	up := r.uploads.Resolve(fn)
	w.Line("my @params = (")
	w.Indent()
	for _, prm := range up.Query {
		w.Line(r.queryValue(prm) + ",")
	}
	w.Dedent()
	w.Line(");")

	target := "'" + engine.DispatchPath(cat, fn) + "'"
	switch up.Transport {
	case engine.TransportMultipart:
		files := make([]string, 0, len(up.Payload))
		for _, prm := range up.Payload {
			v := r.variable(prm.Name)
			if prm.Type.IsCollection() {
				files = append(files, "@{"+v+" || []}")
			} else {
				files = append(files, v)
			}
		}
		w.Line("return $Api::mainApi->PostFile(%s, \\@params, [%s]);", target, strings.Join(files, ", "))
	case engine.TransportPut:
		w.Line("return $Api::mainApi->PutFile(%s, \\@params, %s);", target, r.variable(up.Payload[0].Name))
	case engine.TransportFileGet:
		w.Line("return $Api::mainApi->GetFile(%s, \\@params);", target)
	default:
		w.Line("return $Api::mainApi->Request(%s, \\@params);", target)
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}

// queryValue renders one key/value pair of @params. Lists are joined with
// ';' and dictionaries flattened to name_key pairs.
func (r *renderer) queryValue(prm spec.Parameter) string {
	v := r.variable(prm.Name)
	dt := prm.Type
	switch {
	case dt != nil && dt.IsDictionary:
		return fmt.Sprintf("Api::Flatten('%s', %s)", prm.Name, v)
	case dt != nil && !dt.IsPrimitive && !dt.IsEnum && !dt.IsFile:
		return fmt.Sprintf("%s => Api::ToJson(%s)", prm.Name, v)
	case dt != nil && (dt.IsList || dt.IsArray):
		return fmt.Sprintf("%s => Api::Join(%s)", prm.Name, v)
	}
	return fmt.Sprintf("%s => %s", prm.Name, v)
}

func (r *renderer) variable(name string) string {
	return "$" + r.names.Sanitize(name)
}

func (r *renderer) class(cls spec.Class) error {
	w := r.w
	w.Indent()
	defer w.Dedent()

	w.Line("#")
	for _, l := range engine.DocLines(cls.Summary) {
		w.Line("# " + l)
	}
	w.Line("#")
	w.Line("package ApiTypes::%s;", r.names.Sanitize(cls.Name))
	if cls.IsEnum {
		w.Line("use constant {")
		w.Indent()
		for _, m := range cls.Fields {
			for _, l := range engine.DocLines(m.Description) {
				w.Line("# " + l)
			}
			w.Line("%s => %d,", strings.ToUpper(r.names.Sanitize(m.Name)), *m.Value)
		}
		w.Dedent()
		w.Line("};")
		w.Blank()
		return nil
	}

	w.Line("sub new")
	w.Line("{")
	w.Indent()
	w.Line("my ($class, %args) = @_;")
	w.Line("my $self = {")
	w.Indent()
	for _, m := range cls.Fields {
		t, err := r.types.Resolve(m.Type, "void", false)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		comment := strings.TrimSpace(t + " " + engine.DocText(m.Description))
		w.Line("# " + comment)
		w.Line("%s => $args{%s},", m.Name, m.Name)
	}
	w.Dedent()
	w.Line("};")
	w.Line("bless $self, $class;")
	w.Line("return $self;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	return nil
}
