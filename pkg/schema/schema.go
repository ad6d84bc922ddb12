// Package schema implements declarative validation for module
// configuration. Modules declare their settings as a flat-or-nested
// property map (types, ranges, enums, patterns, defaults); the document
// is compiled to JSON Schema draft-07 and evaluated with gojsonschema.
package schema

import (
	"regexp"
	"sort"

	"github.com/aitherzero/configcore/pkg/errors"
)

// Property types accepted in a schema document.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeNumber = "number"
	TypeBool   = "bool"
	TypeArray  = "array"
	TypeObject = "object"
)

// Property describes a single configuration setting.
type Property struct {
	Type        string      `json:"type"`
	Required    bool        `json:"required,omitempty"`
	Default     interface{} `json:"default,omitempty"`
	Description string      `json:"description,omitempty"`

	// Numeric range, for int and number
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// String constraints
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Allowed values, any type
	Enum []interface{} `json:"enum,omitempty"`

	// Nested properties, for type object
	Properties map[string]*Property `json:"properties,omitempty"`
}

// Schema is the validation document a module registers for its settings.
type Schema struct {
	Description string               `json:"description,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
}

var validTypes = map[string]bool{
	TypeString: true,
	TypeInt:    true,
	TypeNumber: true,
	TypeBool:   true,
	TypeArray:  true,
	TypeObject: true,
}

// Check verifies the schema document itself is well-formed: known types,
// compilable patterns, nested properties only on objects. An empty schema
// is valid and matches anything.
func (s *Schema) Check() error {
	if s == nil {
		return nil
	}
	for _, name := range sortedNames(s.Properties) {
		if err := s.Properties[name].check(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Property) check(name string) error {
	if p == nil {
		return errors.Newf(errors.ErrSchemaInvalid, "property %q has no definition", name)
	}
	if !validTypes[p.Type] {
		return errors.Newf(errors.ErrSchemaInvalid, "property %q has unknown type %q", name, p.Type).
			WithDetail("property", name)
	}
	if p.Pattern != "" {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return errors.Wrapf(err, errors.ErrSchemaInvalid, "property %q has invalid pattern", name).
				WithDetail("property", name)
		}
	}
	if len(p.Properties) > 0 && p.Type != TypeObject {
		return errors.Newf(errors.ErrSchemaInvalid, "property %q declares nested properties but is not an object", name).
			WithDetail("property", name)
	}
	for _, child := range sortedNames(p.Properties) {
		if err := p.Properties[child].check(name + "." + child); err != nil {
			return err
		}
	}
	return nil
}

// Defaults returns the nested map of declared defaults. Objects with
// defaulted children yield a nested map even without an explicit default.
func (s *Schema) Defaults() map[string]interface{} {
	if s == nil {
		return map[string]interface{}{}
	}
	return propertyDefaults(s.Properties)
}

func propertyDefaults(props map[string]*Property) map[string]interface{} {
	out := make(map[string]interface{})
	for name, p := range props {
		if p == nil {
			continue
		}
		if p.Default != nil {
			out[name] = p.Default
			continue
		}
		if p.Type == TypeObject && len(p.Properties) > 0 {
			if nested := propertyDefaults(p.Properties); len(nested) > 0 {
				out[name] = nested
			}
		}
	}
	return out
}

func sortedNames(props map[string]*Property) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
