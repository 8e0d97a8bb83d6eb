package validate

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/i18n"
	js "github.com/reoring/sureschema/jsonschema"
)

// Validator validates values against one compiled schema. It is read-only
// and safe for concurrent use.
type Validator struct {
	doc       *js.Schema
	root      *js.Schema
	patterns  map[string]*regexp.Regexp
	formats   map[string]FormatFunc
	maxIssues int
}

var _ sureschema.Validator = (*Validator)(nil)

// Validate implements sureschema.Validator. It returns nil or
// sureschema.Issues, or ctx.Err() when ctx is done.
func (v *Validator) Validate(ctx context.Context, value any) error {
	r := &run{v: v, ctx: ctx}
	iss := r.check(v.root, value, "")
	if r.err != nil {
		return r.err
	}
	if len(iss) == 0 {
		return nil
	}
	return iss
}

// run holds the state of one Validate call.
type run struct {
	v   *Validator
	ctx context.Context
	err error
	n   int
}

func (r *run) full() bool {
	if r.err != nil {
		return true
	}
	if err := r.ctx.Err(); err != nil {
		r.err = err
		return true
	}
	return r.v.maxIssues > 0 && r.n >= r.v.maxIssues
}

func (r *run) issue(path, code, keyword string, expected, actual any, data map[string]string) sureschema.Issue {
	r.n++
	if path == "" {
		path = "/"
	}
	return sureschema.Issue{
		Path:     path,
		Code:     code,
		Keyword:  keyword,
		Message:  i18n.T(code, data),
		Expected: expected,
		Actual:   actual,
	}
}

// check validates value against s and returns the issues found.
func (r *run) check(s *js.Schema, value any, path string) sureschema.Issues {
	if s == nil || r.full() {
		return nil
	}
	if s.Ref != "" {
		target, err := r.v.resolve(s.Ref)
		if err != nil {
			r.err = err
			return nil
		}
		return r.check(target, value, path)
	}

	var iss sureschema.Issues
	add := func(more ...sureschema.Issue) { iss = sureschema.AppendIssues(iss, more...) }

	if !r.checkType(s, value) {
		add(r.issue(path, sureschema.CodeInvalidType, "type", typeOf(s), jsonType(value), nil))
		return iss
	}
	if s.Const != nil && !equalJSON(s.Const.Value, value) {
		add(r.issue(path, sureschema.CodeInvalidConst, "const", s.Const.Value, value, nil))
	}
	if s.Enum != nil && !inEnum(s.Enum, value) {
		add(r.issue(path, sureschema.CodeInvalidEnum, "enum", s.Enum, value, nil))
	}

	switch t := value.(type) {
	case string:
		add(r.checkString(s, t, path)...)
	case map[string]any:
		add(r.checkObject(s, t, path)...)
	case []any:
		add(r.checkArray(s, t, path)...)
	default:
		if f, ok := js.Float(value); ok {
			add(r.checkNumber(s, f, path)...)
		}
	}

	for _, sub := range s.AllOf {
		add(r.check(sub, value, path)...)
	}
	if len(s.AnyOf) > 0 && !r.matchesAny(s.AnyOf, value, path) {
		add(r.issue(path, sureschema.CodeNoMatch, "anyOf", nil, value, nil))
	}
	if s.If != nil {
		branch := s.Else
		if r.matchesAny([]*js.Schema{s.If}, value, path) {
			branch = s.Then
		}
		add(r.check(branch, value, path)...)
	}
	return iss
}

func (r *run) matchesAny(list []*js.Schema, value any, path string) bool {
	for _, sub := range list {
		probe := &run{v: r.v, ctx: r.ctx}
		if len(probe.check(sub, value, path)) == 0 && probe.err == nil {
			return true
		}
		if probe.err != nil {
			r.err = probe.err
			return true
		}
	}
	return false
}

func (r *run) checkType(s *js.Schema, value any) bool {
	if s.Type != "" {
		return hasType(s.Type, value)
	}
	// Raw documents may list several types.
	if list, ok := s.Extra["type"].([]any); ok {
		for _, t := range list {
			if name, ok := t.(string); ok && hasType(name, value) {
				return true
			}
		}
		return false
	}
	return true
}

func (r *run) checkString(s *js.Schema, str, path string) sureschema.Issues {
	var iss sureschema.Issues
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		iss = append(iss, r.issue(path, sureschema.CodeTooShort, "minLength", *s.MinLength, n, limit(*s.MinLength)))
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		iss = append(iss, r.issue(path, sureschema.CodeTooLong, "maxLength", *s.MaxLength, n, limit(*s.MaxLength)))
	}
	if s.Pattern != "" {
		if re := r.v.patterns[s.Pattern]; re != nil && !re.MatchString(str) {
			iss = append(iss, r.issue(path, sureschema.CodePattern, "pattern", s.Pattern, str, nil))
		}
	}
	if s.Format != "" {
		if fn := r.v.formats[s.Format]; fn != nil {
			if err := fn(str); err != nil {
				iss = append(iss, r.issue(path, sureschema.CodeInvalidFormat, "format", s.Format, str, map[string]string{"format": s.Format}))
			}
		}
	}
	return iss
}

func (r *run) checkNumber(s *js.Schema, f float64, path string) sureschema.Issues {
	var iss sureschema.Issues
	if s.Minimum != nil && f < *s.Minimum {
		iss = append(iss, r.issue(path, sureschema.CodeTooSmall, "minimum", *s.Minimum, f, limitf(*s.Minimum)))
	}
	if s.ExclusiveMinimum != nil && f <= *s.ExclusiveMinimum {
		iss = append(iss, r.issue(path, sureschema.CodeTooSmall, "exclusiveMinimum", *s.ExclusiveMinimum, f, limitf(*s.ExclusiveMinimum)))
	}
	if s.Maximum != nil && f > *s.Maximum {
		iss = append(iss, r.issue(path, sureschema.CodeTooBig, "maximum", *s.Maximum, f, limitf(*s.Maximum)))
	}
	if s.ExclusiveMaximum != nil && f >= *s.ExclusiveMaximum {
		iss = append(iss, r.issue(path, sureschema.CodeTooBig, "exclusiveMaximum", *s.ExclusiveMaximum, f, limitf(*s.ExclusiveMaximum)))
	}
	if s.MultipleOf != nil && *s.MultipleOf > 0 && !isMultiple(f, *s.MultipleOf) {
		iss = append(iss, r.issue(path, sureschema.CodeNotMultipleOf, "multipleOf", *s.MultipleOf, f, limitf(*s.MultipleOf)))
	}
	return iss
}

func (r *run) checkObject(s *js.Schema, obj map[string]any, path string) sureschema.Issues {
	var iss sureschema.Issues
	for _, k := range s.Required {
		if _, ok := obj[k]; !ok {
			iss = append(iss, r.issue(path, sureschema.CodeRequired, "required", k, nil, map[string]string{"key": k}))
		}
	}
	for _, k := range sortedKeys(obj) {
		if r.full() {
			break
		}
		child := path + "/" + escapePointer(k)
		if ps, ok := s.Properties[k]; ok {
			iss = append(iss, r.check(ps, obj[k], child)...)
			continue
		}
		switch ap := s.AdditionalProperties.(type) {
		case bool:
			if !ap {
				iss = append(iss, r.issue(child, sureschema.CodeUnknownKey, "additionalProperties", false, k, map[string]string{"key": k}))
			}
		case *js.Schema:
			iss = append(iss, r.check(ap, obj[k], child)...)
		}
	}
	return iss
}

func (r *run) checkArray(s *js.Schema, arr []any, path string) sureschema.Issues {
	var iss sureschema.Issues
	n := len(arr)
	if s.MinItems != nil && n < *s.MinItems {
		iss = append(iss, r.issue(path, sureschema.CodeTooFewItems, "minItems", *s.MinItems, n, limit(*s.MinItems)))
	}
	if s.MaxItems != nil && n > *s.MaxItems {
		iss = append(iss, r.issue(path, sureschema.CodeTooManyItems, "maxItems", *s.MaxItems, n, limit(*s.MaxItems)))
	}
	at := func(i int) string { return path + "/" + strconv.Itoa(i) }
	switch it := s.Items.(type) {
	case *js.Schema:
		for i, e := range arr {
			if r.full() {
				break
			}
			iss = append(iss, r.check(it, e, at(i))...)
		}
	case bool:
		if !it && n > 0 {
			iss = append(iss, r.issue(at(0), sureschema.CodeAdditionalItem, "items", false, arr[0], nil))
		}
	case []*js.Schema:
		for i, e := range arr {
			if r.full() {
				break
			}
			if i < len(it) {
				iss = append(iss, r.check(it[i], e, at(i))...)
				continue
			}
			switch ai := s.AdditionalItems.(type) {
			case bool:
				if !ai {
					iss = append(iss, r.issue(at(i), sureschema.CodeAdditionalItem, "additionalItems", len(it), e, limit(len(it))))
				}
			case *js.Schema:
				iss = append(iss, r.check(ai, e, at(i))...)
			}
		}
	}
	if s.Contains != nil && !r.matchesSome(s.Contains, arr, path) {
		iss = append(iss, r.issue(path, sureschema.CodeContains, "contains", nil, nil, nil))
	}
	if s.UniqueItems {
		if i, j, dup := firstDuplicate(arr); dup {
			iss = append(iss, r.issue(at(j), sureschema.CodeNotUnique, "uniqueItems", fmt.Sprintf("distinct from /%d", i), arr[j], nil))
		}
	}
	return iss
}

func (r *run) matchesSome(s *js.Schema, arr []any, path string) bool {
	for i, e := range arr {
		probe := &run{v: r.v, ctx: r.ctx}
		if len(probe.check(s, e, path+"/"+strconv.Itoa(i))) == 0 && probe.err == nil {
			return true
		}
		if probe.err != nil {
			r.err = probe.err
			return true
		}
	}
	return false
}

func isMultiple(f, m float64) bool {
	q := f / m
	return math.Abs(q-math.Round(q)) < 1e-9
}

func limit(n int) map[string]string { return map[string]string{"limit": strconv.Itoa(n)} }

func limitf(f float64) map[string]string {
	return map[string]string{"limit": strconv.FormatFloat(f, 'g', -1, 64)}
}

func typeOf(s *js.Schema) any {
	if s.Type != "" {
		return s.Type
	}
	return s.Extra["type"]
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
