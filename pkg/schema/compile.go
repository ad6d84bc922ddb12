package schema

// Compilation of the declarative schema document into a JSON Schema
// draft-07 instance. Undeclared keys are allowed: the original system
// validated declared keys only, so additionalProperties stays open.

const draft7 = "http://json-schema.org/draft-07/schema#"

// jsonSchemaType maps declarative property types to JSON Schema types.
var jsonSchemaType = map[string]string{
	TypeString: "string",
	TypeInt:    "integer",
	TypeNumber: "number",
	TypeBool:   "boolean",
	TypeArray:  "array",
	TypeObject: "object",
}

// Compile renders the schema as a draft-07 JSON Schema document.
func (s *Schema) Compile() map[string]interface{} {
	doc := map[string]interface{}{
		"$schema":              draft7,
		"type":                 "object",
		"additionalProperties": true,
	}
	if s == nil {
		return doc
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	props, required := compileProperties(s.Properties)
	if len(props) > 0 {
		doc["properties"] = props
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func compileProperties(in map[string]*Property) (map[string]interface{}, []string) {
	props := make(map[string]interface{}, len(in))
	var required []string
	for _, name := range sortedNames(in) {
		p := in[name]
		props[name] = p.compile()
		if p.Required {
			required = append(required, name)
		}
	}
	return props, required
}

func (p *Property) compile() map[string]interface{} {
	out := map[string]interface{}{
		"type": jsonSchemaType[p.Type],
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Min != nil {
		out["minimum"] = *p.Min
	}
	if p.Max != nil {
		out["maximum"] = *p.Max
	}
	if p.MinLength != nil {
		out["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		out["maxLength"] = *p.MaxLength
	}
	if p.Pattern != "" {
		out["pattern"] = p.Pattern
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	if p.Type == TypeObject && len(p.Properties) > 0 {
		props, required := compileProperties(p.Properties)
		out["properties"] = props
		if len(required) > 0 {
			out["required"] = required
		}
		out["additionalProperties"] = true
	}
	return out
}
