package validate

import (
	"strings"

	sureschema "github.com/reoring/sureschema"
	js "github.com/reoring/sureschema/jsonschema"
)

// walk calls fn for s and every nested schema, definitions included. A false
// return skips the children of that schema.
func walk(s *js.Schema, fn func(*js.Schema) bool) {
	if s == nil || !fn(s) {
		return
	}
	for _, c := range s.AnyOf {
		walk(c, fn)
	}
	for _, c := range s.AllOf {
		walk(c, fn)
	}
	walk(s.If, fn)
	walk(s.Then, fn)
	walk(s.Else, fn)
	for _, k := range sortedKeys(s.Properties) {
		walk(s.Properties[k], fn)
	}
	if as, ok := s.AdditionalProperties.(*js.Schema); ok {
		walk(as, fn)
	}
	switch it := s.Items.(type) {
	case *js.Schema:
		walk(it, fn)
	case []*js.Schema:
		for _, c := range it {
			walk(c, fn)
		}
	}
	if ai, ok := s.AdditionalItems.(*js.Schema); ok {
		walk(ai, fn)
	}
	walk(s.Contains, fn)
	for _, k := range sortedKeys(s.Definitions) {
		walk(s.Definitions[k], fn)
	}
}

// resolve returns the definition a local reference points at.
func (v *Validator) resolve(ref string) (*js.Schema, error) {
	if ref == "#" {
		return v.doc, nil
	}
	if !strings.HasPrefix(ref, js.DefinitionsPrefix) {
		return nil, &sureschema.ReferenceError{Ref: ref, Detail: "unsupported reference (only #/definitions/X is supported)"}
	}
	name := unescapePointer(strings.TrimPrefix(ref, js.DefinitionsPrefix))
	def, ok := v.doc.Definitions[name]
	if !ok {
		return nil, &sureschema.ReferenceError{Ref: ref, Detail: "unresolved reference"}
	}
	return def, nil
}

// sameValueRefs lists references reached from s without descending into a
// child value: $ref and the combinator keywords apply to the value itself.
func sameValueRefs(s *js.Schema, out []string) []string {
	if s == nil {
		return out
	}
	if s.Ref != "" {
		out = append(out, s.Ref)
	}
	for _, c := range s.AnyOf {
		out = sameValueRefs(c, out)
	}
	for _, c := range s.AllOf {
		out = sameValueRefs(c, out)
	}
	out = sameValueRefs(s.If, out)
	out = sameValueRefs(s.Then, out)
	return sameValueRefs(s.Else, out)
}

// checkRefCycles rejects references that loop back to themselves without
// consuming any part of the value, such as a definition that is just its own
// $ref. Those would never terminate.
func checkRefCycles(v *Validator, root *js.Schema) error {
	const (
		unvisited = iota
		active
		done
	)
	state := map[string]int{}
	var visit func(ref string) error
	visit = func(ref string) error {
		switch state[ref] {
		case active:
			return &sureschema.ReferenceError{Ref: ref, Detail: "reference cycle"}
		case done:
			return nil
		}
		state[ref] = active
		def, err := v.resolve(ref)
		if err != nil {
			return err
		}
		for _, next := range sameValueRefs(def, nil) {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[ref] = done
		return nil
	}
	for _, ref := range sameValueRefs(root, nil) {
		if err := visit(ref); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(v.doc.Definitions) {
		if err := visit(js.DefinitionsPrefix + name); err != nil {
			return err
		}
	}
	return nil
}

func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
