package llmservice

import (
	"encoding/json"

	"google.golang.org/genai"
)

// Schema is the subset of JSON Schema used to describe structured output. It
// converts to each backend's native form.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSON renders the schema as a JSON Schema document.
func (s *Schema) JSON() ([]byte, error) {
	if s == nil {
		return []byte(`"json"`), nil
	}
	return json.Marshal(s)
}

// Gemini converts the schema to a genai.Schema.
func (s *Schema) Gemini() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       s.Items.Gemini(),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, p := range s.Properties {
			out.Properties[k] = p.Gemini()
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
