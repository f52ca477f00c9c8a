// Package enginetest provides IR fixtures shared by backend tests.
package enginetest

import "github.com/mark3labs/eeclientgen/internal/spec"

func prim(name string) *spec.DataType {
	return &spec.DataType{TypeName: spec.String(name), IsPrimitive: true}
}

func apikey() spec.Parameter {
	return spec.Parameter{Field: spec.Field{Name: "apikey", Type: prim("String")}}
}

// EmailCategory is the "Email" category with a single Send function.
func EmailCategory() spec.Category {
	return spec.Category{
		Name:    "Email",
		UriPath: "email",
		Summary: "Send and inspect emails",
		Functions: []spec.Function{{
			Name:       "Send",
			Summary:    "Sends an email",
			ReturnType: prim("TextResponse"),
			Parameters: []spec.Parameter{
				apikey(),
				{Field: spec.Field{Name: "to", Type: prim("String"), Description: "Recipient address"}},
				{
					Field:    spec.Field{Name: "subject", Type: prim("String"), Description: "Subject line"},
					CallSite: spec.CallSite{HasDefaultValue: true},
				},
			},
		}},
	}
}

// EmailStatus is an enum with two members.
func EmailStatus() spec.Class {
	return spec.Class{
		Name:    "EmailStatus",
		Summary: "Delivery state",
		IsEnum:  true,
		Fields: []spec.Member{
			{Field: spec.Field{Name: "Sent", Description: "Delivered"}, Value: spec.Int(1)},
			{Field: spec.Field{Name: "Failed", Description: "Bounced"}, Value: spec.Int(2)},
		},
	}
}

// Minimal holds only the Email category and the EmailStatus enum.
func Minimal() *spec.Project {
	return &spec.Project{
		Version:    "2.4",
		Categories: map[string]spec.Category{"email": EmailCategory()},
		Classes:    []spec.Class{EmailStatus()},
	}
}

// Full exercises every facet: uploads, file returns, lists of custom types,
// dictionaries, enums with defaults, reserved names and unsorted input.
func Full() *spec.Project {
	contact := &spec.DataType{TypeName: spec.String("Contact"), IsList: true}
	file := &spec.DataType{TypeName: spec.String("File"), IsFile: true}
	status := &spec.DataType{TypeName: spec.String("EmailStatus"), IsEnum: true}

	attachment := spec.Category{
		Name:    "Attachment",
		UriPath: "attachment",
		Summary: "Manage attachments",
		Functions: []spec.Function{
			{
				Name:       "Upload",
				Summary:    "Uploads an attachment",
				ReturnType: &spec.DataType{TypeName: spec.String("Attachment")},
				Parameters: []spec.Parameter{
					apikey(),
					{Field: spec.Field{Name: "attachmentFile", Type: file}, CallSite: spec.CallSite{IsFilePostUpload: true}},
					{Field: spec.Field{Name: "fileName", Type: prim("String")}, CallSite: spec.CallSite{HasDefaultValue: true}},
				},
			},
			{
				Name:       "Get",
				Summary:    "Downloads an attachment",
				ReturnType: &spec.DataType{TypeName: spec.String("File"), IsFile: true},
				Parameters: []spec.Parameter{
					apikey(),
					{Field: spec.Field{Name: "attachmentID", Type: prim("Int64")}},
				},
			},
			{
				Name:       "Replace",
				Summary:    "Replaces attachment content",
				ReturnType: nil,
				Parameters: []spec.Parameter{
					apikey(),
					{Field: spec.Field{Name: "attachmentID", Type: prim("Int64")}},
					{Field: spec.Field{Name: "content", Type: file}, CallSite: spec.CallSite{IsFilePutUpload: true}},
				},
			},
		},
	}

	list := spec.Category{
		Name:    "List",
		UriPath: "list",
		Summary: "Contact lists",
		Functions: []spec.Function{
			{
				Name:       "Load",
				Summary:    "Loads contacts",
				ReturnType: contact,
				Parameters: []spec.Parameter{
					apikey(),
					{Field: spec.Field{Name: "listName", Type: prim("String")}},
					{Field: spec.Field{Name: "status", Type: status}, CallSite: spec.CallSite{HasDefaultValue: true, DefaultValue: spec.String("Sent")}},
					{Field: spec.Field{Name: "limit", Type: prim("Int32")}, CallSite: spec.CallSite{HasDefaultValue: true, DefaultValue: spec.String("100")}},
					{Field: spec.Field{Name: "active", Type: prim("Boolean")}, CallSite: spec.CallSite{HasDefaultValue: true, DefaultValue: spec.String("True")}},
				},
			},
			{
				Name:       "Delete",
				Summary:    "Deletes a list",
				ReturnType: nil,
				Parameters: []spec.Parameter{
					apikey(),
					{Field: spec.Field{Name: "listName", Type: prim("String")}},
					{Field: spec.Field{Name: "emails", Type: &spec.DataType{TypeName: spec.String("String"), IsPrimitive: true, IsList: true}}, CallSite: spec.CallSite{HasDefaultValue: true}},
					{Field: spec.Field{Name: "merge", Type: &spec.DataType{TypeName: spec.String("String,String"), IsDictionary: true}}, CallSite: spec.CallSite{HasDefaultValue: true}},
					{Field: spec.Field{Name: "since", Type: &spec.DataType{TypeName: spec.String("DateTime"), IsPrimitive: true, IsNullable: true}}, CallSite: spec.CallSite{HasDefaultValue: true}},
				},
			},
		},
	}

	return &spec.Project{
		Version: "2.4",
		Categories: map[string]spec.Category{
			"list":       list,
			"email":      EmailCategory(),
			"attachment": attachment,
		},
		Classes: []spec.Class{
			{
				Name:    "Contact",
				Summary: "One contact",
				Fields: []spec.Member{
					{Field: spec.Field{Name: "Email", Type: prim("String"), Description: "Address"}},
					{Field: spec.Field{Name: "Status", Type: status}},
					{Field: spec.Field{Name: "Custom", Type: &spec.DataType{TypeName: spec.String("String,Int32"), IsDictionary: true}}},
				},
			},
			EmailStatus(),
			{
				Name:    "Attachment",
				Summary: "Stored attachment",
				Fields: []spec.Member{
					{Field: spec.Field{Name: "ID", Type: prim("Int64")}},
					{Field: spec.Field{Name: "FileName", Type: prim("String")}},
				},
			},
		},
	}
}

// WithUnknownPrimitive returns Minimal with a parameter typed as a primitive
// no backend knows.
func WithUnknownPrimitive() *spec.Project {
	p := Minimal()
	cat := p.Categories["email"]
	fn := cat.Functions[0]
	fn.Parameters = append(append([]spec.Parameter(nil), fn.Parameters...),
		spec.Parameter{Field: spec.Field{Name: "when", Type: prim("TimeSpan")}})
	cat.Functions = []spec.Function{fn}
	p.Categories["email"] = cat
	return p
}

// WithReservedNames returns a project whose category and function are named
// after word, e.g. "list".
func WithReservedNames(word string) *spec.Project {
	return &spec.Project{
		Version: "1",
		Categories: map[string]spec.Category{
			word: {
				Name:    word,
				UriPath: word,
				Functions: []spec.Function{{
					Name:       word,
					ReturnType: prim("String"),
					Parameters: []spec.Parameter{apikey()},
				}},
			},
		},
	}
}

// WithReservedClass returns a project whose enum class is named word. The
// enum is returned, taken as a defaulted parameter, returned as a list and
// held by the Holder class's field and dictionary.
func WithReservedClass(word string) *spec.Project {
	enum := &spec.DataType{TypeName: spec.String(word), IsEnum: true}
	return &spec.Project{
		Version: "1",
		Categories: map[string]spec.Category{
			"kind": {
				Name:    "Kind",
				UriPath: "kind",
				Functions: []spec.Function{
					{
						Name:       "Get",
						ReturnType: enum,
						Parameters: []spec.Parameter{
							apikey(),
							{Field: spec.Field{Name: "kind", Type: enum}, CallSite: spec.CallSite{HasDefaultValue: true, DefaultValue: spec.String("A")}},
						},
					},
					{
						Name:       "All",
						ReturnType: &spec.DataType{TypeName: spec.String(word), IsEnum: true, IsList: true},
						Parameters: []spec.Parameter{apikey()},
					},
				},
			},
		},
		Classes: []spec.Class{
			{
				Name:   word,
				IsEnum: true,
				Fields: []spec.Member{
					{Field: spec.Field{Name: "A"}, Value: spec.Int(1)},
					{Field: spec.Field{Name: "B"}, Value: spec.Int(2)},
				},
			},
			{
				Name: "Holder",
				Fields: []spec.Member{
					{Field: spec.Field{Name: "Kind", Type: enum}},
					{Field: spec.Field{Name: "ByName", Type: &spec.DataType{TypeName: spec.String("String," + word), IsDictionary: true}}},
				},
			},
		},
	}
}
