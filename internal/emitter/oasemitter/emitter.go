// Package oasemitter describes the API as an OpenAPI 3 document, one
// operation per function at /<uripath>/<function>.
package oasemitter

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/spec"
)

const ID = "openapi"

const (
	formMedia   = "application/x-www-form-urlencoded"
	multiMedia  = "multipart/form-data"
	binaryMedia = "application/octet-stream"
	jsonMedia   = "application/json"
	schemaRef   = "#/components/schemas/"
)

// primitive returns a fresh schema for a primitive TypeName.
func primitive(name string) (*openapi3.Schema, bool) {
	switch name {
	case "String", "TextResponse", "XmlResponse", "HtmlResponse", "JavascriptResponse", "JsonResponse":
		return openapi3.NewStringSchema(), true
	case "Int32":
		return openapi3.NewInt32Schema(), true
	case "Int64":
		return openapi3.NewInt64Schema(), true
	case "Double", "Decimal":
		return openapi3.NewFloat64Schema(), true
	case "Boolean":
		return openapi3.NewBoolSchema(), true
	case "DateTime":
		return openapi3.NewDateTimeSchema(), true
	case "Guid":
		return openapi3.NewUUIDSchema(), true
	}
	return nil, false
}

func binary() *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Format = "binary"
	return s
}

// Emitter renders <Client>.openapi.json.
type Emitter struct {
	settings engine.Settings
}

func New(settings engine.Settings) *Emitter {
	return &Emitter{settings: settings.WithDefaults()}
}

func (e *Emitter) ID() string { return ID }

func (e *Emitter) Aliases() []string { return []string{"7", "oas", "openapi"} }

func (e *Emitter) Emit(_ *engine.Session, p *spec.Project) (*engine.Artifact, error) {
	if p == nil {
		return nil, errors.New("oasemitter: nil Project")
	}
	b := &builder{
		classes: map[string]*openapi3.Schema{},
		uploads: engine.Resolver{},
	}
	doc, err := b.document(e.settings, p)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, errors.Wrap(err, "oasemitter: generated document is invalid")
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "oasemitter: marshal document")
	}
	return engine.SingleFile(ID, e.settings.ClientName+".openapi.json", append(out, '\n')), nil
}

type builder struct {
	classes map[string]*openapi3.Schema
	enums   map[string]spec.Class
	uploads engine.UploadResolver
}

func (b *builder) document(settings engine.Settings, p *spec.Project) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   settings.ClientName,
			Version: p.Version,
		},
		Servers:    openapi3.Servers{{URL: settings.APIURI}},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}, SecuritySchemes: openapi3.SecuritySchemes{}},
	}
	if doc.Info.Version == "" {
		doc.Info.Version = "0"
	}
	doc.Components.SecuritySchemes["apikey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{Type: "apiKey", In: "query", Name: spec.APIKeyParam},
	}
	doc.Security = *openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate("apikey"))

	// Component schemas are allocated first so references can point at them
	// regardless of declaration order.
	b.enums = map[string]spec.Class{}
	classes := p.SortedClasses()
	for _, cls := range classes {
		b.classes[cls.Name] = &openapi3.Schema{}
		if cls.IsEnum {
			b.enums[cls.Name] = cls
		}
	}
	for _, cls := range classes {
		if err := b.class(cls); err != nil {
			return nil, errors.Wrapf(err, "oasemitter: class %s", cls.Name)
		}
		doc.Components.Schemas[cls.Name] = openapi3.NewSchemaRef("", b.classes[cls.Name])
	}

	for _, cat := range p.SortedCategories() {
		for _, fn := range cat.SortedFunctions() {
			op, err := b.operation(cat, fn)
			if err != nil {
				return nil, errors.Wrapf(err, "oasemitter: category %s: function %s", cat.Name, fn.Name)
			}
			method := http.MethodPost
			switch b.uploads.Resolve(fn).Transport {
			case engine.TransportPut:
				method = http.MethodPut
			case engine.TransportFileGet:
				method = http.MethodGet
			}
			doc.AddOperation("/"+engine.DispatchPath(cat, fn), method, op)
		}
	}
	return doc, nil
}

func (b *builder) class(cls spec.Class) error {
	target := b.classes[cls.Name]
	if cls.IsEnum {
		*target = *openapi3.NewInt32Schema()
		names := make([]string, 0, len(cls.Fields))
		for _, m := range cls.Fields {
			target.Enum = append(target.Enum, float64(*m.Value))
			names = append(names, m.Name+" = "+strconv.Itoa(*m.Value))
		}
		target.Description = strings.TrimSpace(cls.Summary + "\n\n" + strings.Join(names, ", "))
		return nil
	}
	*target = *openapi3.NewObjectSchema()
	target.Description = cls.Summary
	for _, m := range cls.Fields {
		ref, err := b.schema(m.Type)
		if err != nil {
			return errors.Wrapf(err, "field %s", m.Name)
		}
		if m.Description != "" && ref.Ref == "" {
			ref.Value.Description = m.Description
		}
		target.Properties[m.Name] = ref
	}
	return nil
}

// schema resolves dt to an inline schema or a component reference.
func (b *builder) schema(dt *spec.DataType) (*openapi3.SchemaRef, error) {
	if dt.IsVoid() {
		return openapi3.NewSchemaRef("", openapi3.NewObjectSchema()), nil
	}
	if dt.IsFile {
		if dt.IsList || dt.IsArray {
			return openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(binary())), nil
		}
		return openapi3.NewSchemaRef("", binary()), nil
	}
	if dt.IsDictionary {
		_, v, err := spec.DictionaryComponents(dt)
		if err != nil {
			return nil, &spec.MalformedIRError{Path: dt.Name(), Reason: err.Error()}
		}
		value, err := b.named(v, false)
		if err != nil {
			return nil, err
		}
		return openapi3.NewSchemaRef("", openapi3.NewObjectSchema().WithAdditionalProperties(value.Value)), nil
	}

	ref, err := b.named(dt.Name(), dt.IsPrimitive)
	if err != nil {
		return nil, err
	}
	if dt.IsList || dt.IsArray {
		arr := openapi3.NewArraySchema()
		arr.Items = ref
		ref = openapi3.NewSchemaRef("", arr)
	}
	if dt.IsNullable && ref.Ref == "" {
		ref.Value.Nullable = true
	}
	return ref, nil
}

// named resolves a primitive or class name. Dictionary components are
// looked up as primitives first.
func (b *builder) named(name string, mustBePrimitive bool) (*openapi3.SchemaRef, error) {
	if s, ok := primitive(name); ok {
		return openapi3.NewSchemaRef("", s), nil
	}
	if mustBePrimitive {
		return nil, &engine.UnknownTypeError{Backend: ID, TypeName: name}
	}
	if s, ok := b.classes[name]; ok {
		return openapi3.NewSchemaRef(schemaRef+name, s), nil
	}
	return nil, &engine.UnknownTypeError{Backend: ID, TypeName: name}
}

func (b *builder) operation(cat spec.Category, fn spec.Function) (*openapi3.Operation, error) {
	op := openapi3.NewOperation()
	op.OperationID = strings.ReplaceAll(engine.DispatchPath(cat, fn), "/", "_")
	op.Summary = fn.Summary
	op.Tags = []string{cat.Name}
	op.Responses = openapi3.Responses{}

	up := b.uploads.Resolve(fn)
	switch up.Transport {
	case engine.TransportForm:
		body, required, err := b.object(up.Query)
		if err != nil {
			return nil, err
		}
		body.Required = required
		if len(up.Query) > 0 {
			op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithSchema(body, []string{formMedia})}
		}
	case engine.TransportMultipart:
		if err := b.queryParams(op, up.Query); err != nil {
			return nil, err
		}
		body, required, err := b.object(up.Payload)
		if err != nil {
			return nil, err
		}
		body.Required = required
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithSchema(body, []string{multiMedia})}
	case engine.TransportPut:
		if err := b.queryParams(op, up.Query); err != nil {
			return nil, err
		}
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithSchema(binary(), []string{binaryMedia})}
	case engine.TransportFileGet:
		if err := b.queryParams(op, up.Query); err != nil {
			return nil, err
		}
	}

	if fn.ReturnsFile() {
		resp := openapi3.NewResponse().WithDescription("File content").
			WithContent(openapi3.NewContentWithSchema(binary(), []string{binaryMedia}))
		op.AddResponse(http.StatusOK, resp)
		return op, nil
	}
	data, err := b.schema(fn.ReturnType)
	if err != nil {
		return nil, errors.Wrap(err, "return type")
	}
	envelope := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithPropertyRef("data", data)
	errSchema := openapi3.NewStringSchema()
	errSchema.Nullable = true
	envelope.WithProperty("error", errSchema)
	envelope.Required = []string{"success"}
	op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Response envelope").WithJSONSchema(envelope))
	return op, nil
}

// object builds a form schema with one property per parameter. Parameters
// without a default are required.
func (b *builder) object(params []spec.Parameter) (*openapi3.Schema, []string, error) {
	obj := openapi3.NewObjectSchema()
	var required []string
	for _, prm := range params {
		ref, err := b.parameterSchema(prm)
		if err != nil {
			return nil, nil, err
		}
		obj.Properties[prm.Name] = ref
		if !prm.HasDefaultValue {
			required = append(required, prm.Name)
		}
	}
	return obj, required, nil
}

func (b *builder) queryParams(op *openapi3.Operation, params []spec.Parameter) error {
	for _, prm := range params {
		ref, err := b.parameterSchema(prm)
		if err != nil {
			return err
		}
		qp := openapi3.NewQueryParameter(prm.Name).WithRequired(!prm.HasDefaultValue)
		qp.Description = prm.Description
		qp.Schema = ref
		op.AddParameter(qp)
	}
	return nil
}

func (b *builder) parameterSchema(prm spec.Parameter) (*openapi3.SchemaRef, error) {
	ref, err := b.schema(prm.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "parameter %s", prm.Name)
	}
	if ref.Ref != "" {
		if def, ok := b.enumDefault(prm); ok {
			// A sibling default needs an inline wrapper around the reference.
			ref = openapi3.NewSchemaRef("", &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}, Default: def})
		}
		return ref, nil
	}
	if prm.Description != "" {
		ref.Value.Description = prm.Description
	}
	if def, ok := primitiveDefault(prm); ok {
		ref.Value.Default = def
	}
	return ref, nil
}

func (b *builder) enumDefault(prm spec.Parameter) (any, bool) {
	if !prm.HasDefaultValue || prm.DefaultValue == nil || prm.Type.IsCollection() {
		return nil, false
	}
	cls, ok := b.enums[prm.Type.Name()]
	if !ok {
		return nil, false
	}
	for _, m := range cls.Fields {
		if strings.EqualFold(m.Name, *prm.DefaultValue) {
			return float64(*m.Value), true
		}
	}
	return nil, false
}

// primitiveDefault converts a default literal to a JSON value. Literals that
// do not parse for their type are left out.
func primitiveDefault(prm spec.Parameter) (any, bool) {
	dt := prm.Type
	if !prm.HasDefaultValue || prm.DefaultValue == nil || dt.IsCollection() || !dt.IsPrimitive {
		return nil, false
	}
	v := *prm.DefaultValue
	switch dt.Name() {
	case "Int32", "Int64":
		n, err := strconv.ParseInt(v, 10, 64)
		return float64(n), err == nil
	case "Double", "Decimal":
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case "Boolean":
		t, err := strconv.ParseBool(strings.ToLower(v))
		return t, err == nil
	case "DateTime":
		return nil, false
	}
	return v, true
}
