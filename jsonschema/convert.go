package jsonschema

import (
	"math"
	"reflect"
	"strconv"
)

// ToMap projects s into plain JSON values (map[string]any, []any, float64, ...).
func (s *Schema) ToMap() map[string]any {
	if s == nil {
		return nil
	}
	m := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		m[k] = DeepCopy(v)
	}
	if s.Ref != "" {
		m["$ref"] = s.Ref
	}
	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Title != "" {
		m["title"] = s.Title
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Examples != nil {
		m["examples"] = DeepCopy(s.Examples)
	}
	if s.Default != nil {
		m["default"] = DeepCopy(s.Default.Value)
	}
	if s.Const != nil {
		m["const"] = DeepCopy(s.Const.Value)
	}
	if s.Enum != nil {
		m["enum"] = DeepCopy(s.Enum)
	}
	if len(s.AnyOf) > 0 {
		m["anyOf"] = listToMaps(s.AnyOf)
	}
	if len(s.AllOf) > 0 {
		m["allOf"] = listToMaps(s.AllOf)
	}
	if s.If != nil {
		m["if"] = s.If.ToMap()
	}
	if s.Then != nil {
		m["then"] = s.Then.ToMap()
	}
	if s.Else != nil {
		m["else"] = s.Else.ToMap()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for k, p := range s.Properties {
			props[k] = p.ToMap()
		}
		m["properties"] = props
	}
	if len(s.Required) > 0 {
		req := make([]any, len(s.Required))
		for i, r := range s.Required {
			req[i] = r
		}
		m["required"] = req
	}
	if v, ok := boolOrSchema(s.AdditionalProperties); ok {
		m["additionalProperties"] = v
	}
	switch it := s.Items.(type) {
	case *Schema:
		if it != nil {
			m["items"] = it.ToMap()
		}
	case []*Schema:
		m["items"] = listToMaps(it)
	case bool:
		m["items"] = it
	}
	if v, ok := boolOrSchema(s.AdditionalItems); ok {
		m["additionalItems"] = v
	}
	if s.Contains != nil {
		m["contains"] = s.Contains.ToMap()
	}
	s.putInt(m, "minItems", s.MinItems)
	s.putInt(m, "maxItems", s.MaxItems)
	if s.UniqueItems {
		m["uniqueItems"] = true
	}
	s.putFloat(m, "minimum", s.Minimum)
	s.putFloat(m, "maximum", s.Maximum)
	s.putFloat(m, "exclusiveMinimum", s.ExclusiveMinimum)
	s.putFloat(m, "exclusiveMaximum", s.ExclusiveMaximum)
	s.putFloat(m, "multipleOf", s.MultipleOf)
	s.putInt(m, "minLength", s.MinLength)
	s.putInt(m, "maxLength", s.MaxLength)
	if s.Pattern != "" {
		m["pattern"] = s.Pattern
	}
	if s.Format != "" {
		m["format"] = s.Format
	}
	if s.Definitions != nil {
		defs := make(map[string]any, len(s.Definitions))
		for k, d := range s.Definitions {
			defs[k] = d.ToMap()
		}
		m["definitions"] = defs
	}
	return m
}

// FromMap builds a Schema from decoded JSON or YAML values. Keywords whose
// value does not have the expected shape are preserved in Extra.
func FromMap(m map[string]any) *Schema {
	s := &Schema{}
	extra := func(k string, v any) {
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra[k] = DeepCopy(v)
	}
	for k, v := range m {
		ok := true
		switch k {
		case "$ref":
			s.Ref, ok = v.(string)
		case "type":
			s.Type, ok = v.(string)
		case "title":
			s.Title, ok = v.(string)
		case "description":
			s.Description, ok = v.(string)
		case "examples":
			var arr []any
			if arr, ok = v.([]any); ok {
				s.Examples = DeepCopy(arr).([]any)
			}
		case "default":
			s.Default = Lit(DeepCopy(v))
		case "const":
			s.Const = Lit(DeepCopy(v))
		case "enum":
			var arr []any
			if arr, ok = v.([]any); ok {
				s.Enum = DeepCopy(arr).([]any)
			}
		case "anyOf":
			s.AnyOf, ok = listFromAny(v)
		case "allOf":
			s.AllOf, ok = listFromAny(v)
		case "if":
			s.If, ok = schemaFromAny(v)
		case "then":
			s.Then, ok = schemaFromAny(v)
		case "else":
			s.Else, ok = schemaFromAny(v)
		case "properties", "definitions":
			var mm map[string]*Schema
			if mm, ok = mapFromAny(v); ok {
				if k == "properties" {
					s.Properties = mm
				} else {
					s.Definitions = mm
				}
			}
		case "required":
			s.Required, ok = stringsFromAny(v)
		case "additionalProperties":
			s.AdditionalProperties, ok = boolOrSchemaFromAny(v)
		case "items":
			switch it := v.(type) {
			case bool:
				s.Items = it
			case []any:
				var list []*Schema
				if list, ok = listFromAny(it); ok {
					s.Items = list
				}
			default:
				var sch *Schema
				if sch, ok = schemaFromAny(it); ok {
					s.Items = sch
				}
			}
		case "additionalItems":
			s.AdditionalItems, ok = boolOrSchemaFromAny(v)
		case "contains":
			s.Contains, ok = schemaFromAny(v)
		case "minItems":
			s.MinItems, ok = intFromAny(v)
		case "maxItems":
			s.MaxItems, ok = intFromAny(v)
		case "uniqueItems":
			s.UniqueItems, ok = v.(bool)
		case "minimum":
			s.Minimum, ok = floatFromAny(v)
		case "maximum":
			s.Maximum, ok = floatFromAny(v)
		case "exclusiveMinimum":
			s.ExclusiveMinimum, ok = floatFromAny(v)
		case "exclusiveMaximum":
			s.ExclusiveMaximum, ok = floatFromAny(v)
		case "multipleOf":
			s.MultipleOf, ok = floatFromAny(v)
		case "minLength":
			s.MinLength, ok = intFromAny(v)
		case "maxLength":
			s.MaxLength, ok = intFromAny(v)
		case "pattern":
			s.Pattern, ok = v.(string)
		case "format":
			s.Format, ok = v.(string)
		default:
			ok = false
		}
		if !ok {
			extra(k, v)
			continue
		}
		if _, numeric := numericKeywords[k]; numeric {
			if s.numbers == nil {
				s.numbers = map[string]any{}
			}
			s.numbers[k] = v
		}
	}
	return s
}

var numericKeywords = map[string]struct{}{
	"minItems": {}, "maxItems": {}, "minLength": {}, "maxLength": {},
	"minimum": {}, "maximum": {}, "exclusiveMinimum": {}, "exclusiveMaximum": {},
	"multipleOf": {},
}

// Equal reports whether a and b project to the same JSON value. Numbers are
// compared by value whatever their Go representation.
func Equal(a, b *Schema) bool {
	return reflect.DeepEqual(canonical(a.ToMap()), canonical(b.ToMap()))
}

// numberKey is the canonical spelling of a JSON number.
type numberKey string

func canonical(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = canonical(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = canonical(t[i])
		}
		return out
	case interface {
		Int64() (int64, error)
		Float64() (float64, error)
	}:
		if i, err := t.Int64(); err == nil {
			return numberKey(strconv.FormatInt(i, 10))
		}
		if f, err := t.Float64(); err == nil {
			return floatKey(f)
		}
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberKey(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numberKey(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return floatKey(rv.Float())
	}
	return v
}

func floatKey(f float64) numberKey {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return numberKey(strconv.FormatInt(int64(f), 10))
	}
	return numberKey(strconv.FormatFloat(f, 'g', -1, 64))
}

// DeepCopy copies nested maps and slices of decoded JSON values.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = DeepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = DeepCopy(t[i])
		}
		return out
	case *Schema:
		return t.ToMap()
	default:
		return v
	}
}

// Float converts a decoded JSON number to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func (s *Schema) putInt(m map[string]any, k string, v *int) {
	if v == nil {
		return
	}
	if orig, ok := s.literal(k, float64(*v)); ok {
		m[k] = orig
		return
	}
	m[k] = *v
}

func (s *Schema) putFloat(m map[string]any, k string, v *float64) {
	if v == nil {
		return
	}
	if orig, ok := s.literal(k, *v); ok {
		m[k] = orig
		return
	}
	m[k] = *v
}

// literal returns the decoded value of keyword k if it still denotes f.
func (s *Schema) literal(k string, f float64) (any, bool) {
	orig, ok := s.numbers[k]
	if !ok {
		return nil, false
	}
	if g, ok := Float(orig); !ok || g != f {
		return nil, false
	}
	return orig, true
}

func boolOrSchema(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case *Schema:
		if t != nil {
			return t.ToMap(), true
		}
	}
	return nil, false
}

func listToMaps(list []*Schema) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s.ToMap()
	}
	return out
}

func schemaFromAny(v any) (*Schema, bool) {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t), true
	case *Schema:
		return t, true
	}
	return nil, false
}

func listFromAny(v any) ([]*Schema, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*Schema, 0, len(arr))
	for _, e := range arr {
		s, ok := schemaFromAny(e)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func mapFromAny(v any) (map[string]*Schema, bool) {
	mm, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]*Schema, len(mm))
	for k, e := range mm {
		s, ok := schemaFromAny(e)
		if !ok {
			return nil, false
		}
		out[k] = s
	}
	return out, true
}

func stringsFromAny(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func boolOrSchemaFromAny(v any) (any, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if s, ok := schemaFromAny(v); ok {
		return s, true
	}
	return nil, false
}

func floatFromAny(v any) (*float64, bool) {
	f, ok := Float(v)
	if !ok {
		return nil, false
	}
	return &f, true
}

func intFromAny(v any) (*int, bool) {
	f, ok := Float(v)
	if !ok || f != math.Trunc(f) || f < 0 {
		return nil, false
	}
	n := int(f)
	return &n, true
}
