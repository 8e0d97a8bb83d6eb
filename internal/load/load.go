// Package load decodes JSON and YAML files into plain JSON values
// (map[string]any, []any, string, number, bool, nil).
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	js "github.com/reoring/sureschema/jsonschema"
)

// Format is a document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat parses "json" or "yaml" ("yml" is accepted).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatJSON, fmt.Errorf("unknown format %q", s)
}

// FormatOf picks the format from a file extension. Anything that is not
// .yaml or .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DuplicateKeyError reports an object key that appears twice.
type DuplicateKeyError struct {
	Path string // JSON Pointer of the object holding the key.
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("duplicate key %q at %s", e.Key, path)
}

// File reads and decodes path, choosing the format from its extension.
func File(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := Decode(b, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// SchemaFile reads a schema document from path.
func SchemaFile(path string) (*js.Schema, error) {
	v, err := File(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: schema must be an object, got %T", path, v)
	}
	return js.FromMap(m), nil
}

// Decode decodes b in the given format.
func Decode(b []byte, f Format) (any, error) {
	if f == FormatYAML {
		return YAML(b)
	}
	return JSON(b)
}

// JSON decodes a single JSON value. Numbers are kept as json.Number and
// duplicate object keys are rejected.
func JSON(b []byte) (any, error) {
	if err := checkDuplicateKeys(b); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// YAML decodes the first document of a YAML stream. yaml.v3 rejects
// duplicate mapping keys itself.
func YAML(b []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	return normalizeYAML(v), nil
}

// normalizeYAML converts map[any]any into map[string]any recursively.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}

type frame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
	key          string // last key of an object
	index        int    // current index of an array
}

// checkDuplicateKeys scans the token stream and reports the first repeated
// key. Syntax errors are left to the decoder.
func checkDuplicateKeys(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var stack []frame

	pointer := func() string {
		var sb strings.Builder
		for i, f := range stack {
			if i == len(stack)-1 {
				break
			}
			sb.WriteByte('/')
			if f.object {
				sb.WriteString(escape(f.key))
			} else {
				sb.WriteString(strconv.Itoa(f.index))
			}
		}
		return sb.String()
	}
	// valueDone advances the parent after a complete value.
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.object {
			top.expectingKey = true
		} else {
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, frame{object: true, keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				stack = append(stack, frame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.object && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						return &DuplicateKeyError{Path: pointer(), Key: v}
					}
					top.keys[v] = struct{}{}
					top.key = v
					top.expectingKey = false
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
