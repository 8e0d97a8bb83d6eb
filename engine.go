package sureschema

import (
	"context"
	"fmt"

	js "github.com/reoring/sureschema/jsonschema"
)

// Engine compiles extracted documents into validators. The validate package
// provides an implementation; any JSON Schema engine can be adapted.
type Engine interface {
	// Compile prepares doc for validation. With a non-empty definition the
	// validator checks values against doc's definitions/<definition>,
	// otherwise against doc itself. Unresolvable references fail with an
	// error matching ErrReference.
	Compile(doc *js.Schema, definition string) (Validator, error)
}

// Validator checks decoded JSON values (map[string]any, []any, string,
// float64 or json.Number, bool, nil).
type Validator interface {
	// Validate returns nil or Issues.
	Validate(ctx context.Context, v any) error
}

// Compile extracts the schema of n and compiles it with e.
func Compile(e Engine, n Node) (Validator, error) {
	single, err := ExtractSingleJSONSchema(n)
	if err != nil {
		return nil, err
	}
	v, err := e.Compile(single.Schema, single.Fragment)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return v, nil
}

// Validate compiles n with e and validates v once. Use Compile to validate
// many values against one node.
func Validate(ctx context.Context, e Engine, n Node, v any) error {
	val, err := Compile(e, n)
	if err != nil {
		return err
	}
	return val.Validate(ctx, v)
}

// Ensure returns v unchanged when it matches n, and the validation error
// otherwise.
func Ensure[T any](ctx context.Context, e Engine, n Node, v T) (T, error) {
	if err := Validate(ctx, e, n, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
