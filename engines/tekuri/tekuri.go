// Package tekuri adapts github.com/santhosh-tekuri/jsonschema/v5 to the
// sureschema.Engine contract, for callers who want a full draft-07
// implementation instead of the validate package.
package tekuri

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	sureschema "github.com/reoring/sureschema"
	js "github.com/reoring/sureschema/jsonschema"
)

// documentURL is the in-memory location documents are registered under.
const documentURL = "https://sureschema.invalid/schema.json"

// keywordCodes maps failing keywords to issue codes.
var keywordCodes = map[string]string{
	"type":                 sureschema.CodeInvalidType,
	"required":             sureschema.CodeRequired,
	"additionalProperties": sureschema.CodeUnknownKey,
	"minimum":              sureschema.CodeTooSmall,
	"exclusiveMinimum":     sureschema.CodeTooSmall,
	"maximum":              sureschema.CodeTooBig,
	"exclusiveMaximum":     sureschema.CodeTooBig,
	"minLength":            sureschema.CodeTooShort,
	"maxLength":            sureschema.CodeTooLong,
	"pattern":              sureschema.CodePattern,
	"enum":                 sureschema.CodeInvalidEnum,
	"const":                sureschema.CodeInvalidConst,
	"format":               sureschema.CodeInvalidFormat,
	"multipleOf":           sureschema.CodeNotMultipleOf,
	"minItems":             sureschema.CodeTooFewItems,
	"maxItems":             sureschema.CodeTooManyItems,
	"uniqueItems":          sureschema.CodeNotUnique,
	"contains":             sureschema.CodeContains,
	"anyOf":                sureschema.CodeNoMatch,
	"items":                sureschema.CodeAdditionalItem,
	"additionalItems":      sureschema.CodeAdditionalItem,
}

// Engine compiles documents with santhosh-tekuri/jsonschema in draft-07 mode.
type Engine struct{}

// New returns an Engine.
func New() *Engine { return &Engine{} }

var _ sureschema.Engine = (*Engine)(nil)

// Compile implements sureschema.Engine.
func (e *Engine) Compile(doc *js.Schema, definition string) (sureschema.Validator, error) {
	if doc == nil {
		return nil, fmt.Errorf("tekuri: nil document")
	}
	target := documentURL
	if definition != "" {
		if _, ok := doc.Definitions[definition]; !ok {
			return nil, &sureschema.ReferenceError{Ref: js.DefinitionsPrefix + definition, Detail: "definition not found"}
		}
		target += js.DefinitionsPrefix + escape(definition)
	}
	m := doc.ToMap()
	if err := checkRefs(m, m); err != nil {
		return nil, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	c := jsv.NewCompiler()
	c.Draft = jsv.Draft7
	if err := c.AddResource(documentURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("tekuri: %w", err)
	}
	s, err := c.Compile(target)
	if err != nil {
		return nil, fmt.Errorf("tekuri: compile: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validator wraps a compiled schema.
type Validator struct {
	schema *jsv.Schema
}

// Validate implements sureschema.Validator.
func (v *Validator) Validate(ctx context.Context, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := v.schema.Validate(value)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsv.ValidationError)
	if !ok {
		return err
	}
	var iss sureschema.Issues
	collect(ve, &iss)
	return iss
}

// collect appends one Issue per leaf error.
func collect(ve *jsv.ValidationError, iss *sureschema.Issues) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, iss)
		}
		return
	}
	kw := keyword(ve.KeywordLocation)
	code, ok := keywordCodes[kw]
	if !ok {
		code = kw
	}
	path := ve.InstanceLocation
	if path == "" {
		path = "/"
	}
	*iss = append(*iss, sureschema.Issue{Path: path, Code: code, Keyword: kw, Message: ve.Message})
}

// keyword returns the last non-index segment of a keyword location.
func keyword(loc string) string {
	segs := strings.Split(loc, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s != "" && strings.Trim(s, "0123456789") != "" {
			return s
		}
	}
	return ""
}

// checkRefs fails on references the document cannot resolve, so that they
// surface as sureschema.ErrReference.
func checkRefs(root map[string]any, v any) error {
	switch t := v.(type) {
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok && ref != "#" {
			name, ok := strings.CutPrefix(ref, js.DefinitionsPrefix)
			defs, _ := root["definitions"].(map[string]any)
			if _, found := defs[unescape(name)]; !ok || !found {
				return &sureschema.ReferenceError{Ref: ref, Detail: "unresolved reference"}
			}
		}
		for _, e := range t {
			if err := checkRefs(root, e); err != nil {
				return err
			}
		}
	case []any:
		for _, e := range t {
			if err := checkRefs(root, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
