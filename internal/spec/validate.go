package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// MalformedIRError reports a missing required field or an invalid facet
// combination. Path locates the offending element, e.g.
// "Categories[email].Functions[Send].Parameters[to]".
type MalformedIRError struct {
	Path   string
	Reason string
}

func (e *MalformedIRError) Error() string {
	if e.Path == "" {
		return "spec: malformed IR: " + e.Reason
	}
	return fmt.Sprintf("spec: malformed IR at %s: %s", e.Path, e.Reason)
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks p and returns the first *MalformedIRError encountered in
// sorted traversal order.
func Validate(p *Project) error {
	if p == nil {
		return &MalformedIRError{Reason: "nil project"}
	}

	keys := make([]string, 0, len(p.Categories))
	for k := range p.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]string, len(keys))
	for _, key := range keys {
		cat := p.Categories[key]
		path := fmt.Sprintf("Categories[%s]", key)
		if err := checkRequired(path, cat); err != nil {
			return err
		}
		if other, dup := names[cat.Name]; dup {
			return &MalformedIRError{Path: path, Reason: fmt.Sprintf("duplicate category name %q (also Categories[%s])", cat.Name, other)}
		}
		names[cat.Name] = key
		seen := make(map[string]struct{}, len(cat.Functions))
		for _, fn := range cat.SortedFunctions() {
			fpath := fmt.Sprintf("%s.Functions[%s]", path, fn.Name)
			if _, dup := seen[fn.Name]; dup {
				return &MalformedIRError{Path: fpath, Reason: "duplicate function name"}
			}
			seen[fn.Name] = struct{}{}
			if err := CheckDataType(fpath+".ReturnType", fn.ReturnType); err != nil {
				return err
			}
			for _, prm := range fn.Parameters {
				ppath := fmt.Sprintf("%s.Parameters[%s]", fpath, prm.Name)
				if prm.IsFilePostUpload && prm.IsFilePutUpload {
					return &MalformedIRError{Path: ppath, Reason: "IsFilePostUpload and IsFilePutUpload are mutually exclusive"}
				}
				if err := CheckDataType(ppath+".Type", prm.Type); err != nil {
					return err
				}
			}
		}
	}

	seen := make(map[string]struct{}, len(p.Classes))
	for _, cls := range p.SortedClasses() {
		path := fmt.Sprintf("Classes[%s]", cls.Name)
		if err := checkRequired(path, cls); err != nil {
			return err
		}
		if _, dup := seen[cls.Name]; dup {
			return &MalformedIRError{Path: path, Reason: "duplicate class name"}
		}
		seen[cls.Name] = struct{}{}
		for _, m := range cls.Fields {
			mpath := fmt.Sprintf("%s.Fields[%s]", path, m.Name)
			if cls.IsEnum {
				if m.Value == nil {
					return &MalformedIRError{Path: mpath, Reason: "enum member without integer Value"}
				}
				continue
			}
			if err := CheckDataType(mpath+".Type", m.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckDataType validates the facet combination of dt. Nil is void and valid.
func CheckDataType(path string, dt *DataType) error {
	if dt.IsVoid() || !dt.IsDictionary {
		return nil
	}
	if _, _, err := DictionaryComponents(dt); err != nil {
		return &MalformedIRError{Path: path, Reason: err.Error()}
	}
	return nil
}

// DictionaryComponents splits a dictionary TypeName into key and value names.
func DictionaryComponents(dt *DataType) (key, value string, err error) {
	parts := strings.Split(dt.Name(), ",")
	if len(parts) != 2 {
		return "", "", errors.Newf("dictionary TypeName %q must contain exactly one comma", dt.Name())
	}
	key, value = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if key == "" || value == "" {
		return "", "", errors.Newf("dictionary TypeName %q has an empty component", dt.Name())
	}
	return key, value, nil
}

func checkRequired(path string, v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &MalformedIRError{Path: path, Reason: err.Error()}
	}
	fe := verrs[0]
	// Namespace is "Category.Functions[0].Name"; drop the root type name.
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return &MalformedIRError{Path: path + "." + ns, Reason: fmt.Sprintf("required field %s is missing", fe.Field())}
}
