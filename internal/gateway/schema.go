package gateway

// Schema is a JSON-schema subset rich enough to describe every structured
// output the agents request. It marshals to standard JSON schema so it can be
// embedded in prompts verbatim.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
}

// Object builds an object schema from property definitions, requiring every
// property. Agents declare their shapes this way; optional fields can be
// carved out by trimming Required afterwards.
func Object(properties map[string]*Schema) *Schema {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// Str returns a string schema with a description.
func Str(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// Array returns an array schema with the given item shape.
func Array(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// Relaxed returns a deep copy with every validation constraint stripped,
// keeping only type, properties, required and items. Some providers reject
// requests mentioning constraint keywords they do not support; retrying with
// the relaxed shape recovers those.
func (s *Schema) Relaxed() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		Type:        s.Type,
		Description: s.Description,
		Required:    append([]string(nil), s.Required...),
		Items:       s.Items.Relaxed(),
	}
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.Relaxed()
		}
	}
	return out
}

// FillDefaults ensures every required property exists in data, synthesizing a
// type-appropriate zero value where the model omitted one. Nested object
// schemas are filled recursively. The map is modified in place and returned.
func (s *Schema) FillDefaults(data map[string]interface{}) map[string]interface{} {
	if s == nil || s.Type != "object" {
		return data
	}
	if data == nil {
		data = make(map[string]interface{})
	}
	for _, name := range s.Required {
		prop := s.Properties[name]
		existing, present := data[name]
		if present && existing != nil {
			if prop != nil && prop.Type == "object" {
				if nested, ok := existing.(map[string]interface{}); ok {
					data[name] = prop.FillDefaults(nested)
				}
			}
			continue
		}
		data[name] = defaultValue(prop)
	}
	return data
}

func defaultValue(s *Schema) interface{} {
	if s == nil {
		return ""
	}
	switch s.Type {
	case "array":
		return []interface{}{}
	case "object":
		return s.FillDefaults(make(map[string]interface{}))
	case "number", "integer":
		return 0
	case "boolean":
		return false
	default:
		return ""
	}
}
