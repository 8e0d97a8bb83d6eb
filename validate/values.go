package validate

import (
	"maps"
	"math"
	"reflect"
	"slices"

	js "github.com/reoring/sureschema/jsonschema"
)

// hasType reports whether value is of the JSON Schema type name.
func hasType(name string, value any) bool {
	switch name {
	case "integer":
		f, ok := js.Float(value)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	case "number":
		_, ok := js.Float(value)
		return ok
	default:
		return jsonType(value) == name
	}
}

// jsonType names the JSON type of a decoded value.
func jsonType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := js.Float(value); ok {
		return "number"
	}
	return reflect.TypeOf(value).String()
}

// normalize turns every number into float64 so that values decoded by
// different decoders compare equal.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case nil, bool, string:
		return v
	}
	if f, ok := js.Float(v); ok {
		return f
	}
	return v
}

func equalJSON(a, b any) bool { return reflect.DeepEqual(normalize(a), normalize(b)) }

func inEnum(enum []any, v any) bool {
	nv := normalize(v)
	for _, e := range enum {
		if reflect.DeepEqual(normalize(e), nv) {
			return true
		}
	}
	return false
}

// firstDuplicate returns the positions of the first repeated item.
func firstDuplicate(arr []any) (int, int, bool) {
	norm := make([]any, len(arr))
	for i, e := range arr {
		norm[i] = normalize(e)
	}
	for j := 1; j < len(norm); j++ {
		for i := 0; i < j; i++ {
			if reflect.DeepEqual(norm[i], norm[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
