package jsonschema

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
)

// DefinitionsPrefix is the JSON Pointer prefix of every reference emitted by the
// compiler. References are always local to the document.
const DefinitionsPrefix = "#/definitions/"

// Schema is a draft-07 style JSON Schema fragment. A document is a Schema whose
// Definitions map holds named fragments.
//
// Keywords without a dedicated field (for example those found in raw documents)
// are kept in Extra and written back verbatim.
type Schema struct {
	Ref string

	// Core
	Type        string
	Title       string
	Description string
	Examples    []any
	Default     *Literal
	Const       *Literal
	Enum        []any

	// Combinators
	AnyOf []*Schema
	AllOf []*Schema
	If    *Schema
	Then  *Schema
	Else  *Schema

	// Object
	Properties           map[string]*Schema
	Required             []string
	AdditionalProperties any // bool or *Schema

	// Array
	Items           any // *Schema, []*Schema or bool
	AdditionalItems any // bool or *Schema
	Contains        *Schema
	MinItems        *int
	MaxItems        *int
	UniqueItems     bool

	// Number
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// String
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string

	// Document
	Definitions map[string]*Schema

	Extra map[string]any

	// numbers holds the decoded literal of each numeric keyword read by
	// FromMap. ToMap writes it back while the typed field still matches.
	numbers map[string]any
}

// Literal wraps a JSON value whose presence matters even when it is null.
type Literal struct {
	Value any
}

// Lit returns a Literal holding v.
func Lit(v any) *Literal { return &Literal{Value: v} }

// Ref returns a fragment referencing the named definition.
func Ref(name string) *Schema { return &Schema{Ref: DefinitionsPrefix + name} }

// RefName returns the definition name referenced by s, if s is a local
// definitions reference.
func (s *Schema) RefName() (string, bool) {
	if s == nil || !strings.HasPrefix(s.Ref, DefinitionsPrefix) {
		return "", false
	}
	return strings.TrimPrefix(s.Ref, DefinitionsPrefix), true
}

// Clone returns a shallow copy of s. Nested fragments are shared.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Document wraps definitions into a document envelope.
func Document(definitions map[string]*Schema) *Schema {
	if definitions == nil {
		definitions = map[string]*Schema{}
	}
	return &Schema{Definitions: definitions}
}

// MarshalJSON encodes the schema through its map projection so that keys are
// emitted in a stable, sorted order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// UnmarshalJSON decodes a JSON document into s. Numbers are decoded as
// json.Number to keep integer precision in Extra, const and enum values.
func (s *Schema) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*s = *FromMap(m)
	return nil
}

// MarshalYAML implements yaml.Marshaler. Decoded json.Number literals are
// written as YAML numbers rather than quoted strings.
func (s *Schema) MarshalYAML() (any, error) {
	return yamlValue(s.ToMap()), nil
}

func yamlValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = yamlValue(t[i])
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// Parse decodes a JSON document.
func Parse(b []byte) (*Schema, error) {
	s := &Schema{}
	if err := s.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return s, nil
}
