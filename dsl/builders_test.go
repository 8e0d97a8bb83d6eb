package dsl_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/dsl"
)

// expectErr runs fn through dsl.Build and checks the error kind.
func expectErr(t *testing.T, name string, kind error, fn func() sureschema.Node) {
	t.Helper()
	_, err := dsl.Build(fn)
	if err == nil {
		t.Fatalf("%s: expected error", name)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("%s: expected %v, got %v", name, kind, err)
	}
}

func TestDuplicateConstraints(t *testing.T) {
	tests := []struct {
		name string
		fn   func() sureschema.Node
	}{
		{"minLength", func() sureschema.Node { return dsl.String().MinLength(1).MinLength(2) }},
		{"maxLength", func() sureschema.Node { return dsl.String().MaxLength(3).Matches("x").MaxLength(4) }},
		{"pattern", func() sureschema.Node { return dsl.String().Matches("a").Numeric() }},
		{"format", func() sureschema.Node { return dsl.String().Format(dsl.FormatDate).Format(dsl.FormatTime) }},
		{"gt", func() sureschema.Node { return dsl.Number().Gt(1).Lt(5).Gt(2) }},
		{"lte", func() sureschema.Node { return dsl.Integer().Lte(1).Lte(2) }},
		{"multipleOf", func() sureschema.Node { return dsl.Number().MultipleOf(2).MultipleOf(3) }},
		{"const", func() sureschema.Node { return dsl.Boolean().Const(true).Const(false) }},
		{"enum", func() sureschema.Node { return dsl.String().Enum("a").Enum("b") }},
		{"default", func() sureschema.Node { return dsl.String().Default("a").Default("b") }},
		{"anyOf", func() sureschema.Node { return dsl.String().AnyOf(dsl.String()).AnyOf(dsl.String()) }},
		{"allOf", func() sureschema.Node { return dsl.Number().AllOf(dsl.Number()).AllOf(dsl.Number()) }},
		{"minItems", func() sureschema.Node { return dsl.Array(nil).MinItems(1).MinItems(1) }},
		{"maxItems", func() sureschema.Node { return dsl.Tuple().MaxItems(1).MaxItems(2) }},
		{"contains", func() sureschema.Node { return dsl.Array(nil).Contains(dsl.String()).Contains(dsl.Number()) }},
		{"tuple additional", func() sureschema.Node { return dsl.Tuple(dsl.String()).Additional(true).AdditionalNode(dsl.Number()) }},
		{"object additional", func() sureschema.Node { return dsl.Object(nil).Additional(false).Additional(true) }},
	}
	for _, tt := range tests {
		expectErr(t, tt.name, sureschema.ErrDuplicateConstraint, tt.fn)
	}
}

func TestDuplicateConstraint_Detail(t *testing.T) {
	_, err := dsl.Build(func() *dsl.StringNode { return dsl.String().MinLength(1).MinLength(2) })
	var ce *sureschema.ConstraintError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConstraintError, got %T", err)
	}
	if ce.Constraint != "minLength" {
		t.Fatalf("constraint = %q", ce.Constraint)
	}
}

func TestConflictingConstraints(t *testing.T) {
	tests := []struct {
		name string
		fn   func() sureschema.Node
	}{
		{"const after enum", func() sureschema.Node { return dsl.String().Enum("a").Const("a") }},
		{"enum after const", func() sureschema.Node { return dsl.Number().Const(1).Enum(1, 2) }},
		{"gt after gte", func() sureschema.Node { return dsl.Number().Gte(1).Gt(1) }},
		{"gte after gt", func() sureschema.Node { return dsl.Number().Gt(1).Gte(1) }},
		{"lt after lte", func() sureschema.Node { return dsl.Number().Lte(1).Lt(1) }},
		{"lte after lt", func() sureschema.Node { return dsl.Integer().Lt(1).Lte(1) }},
	}
	for _, tt := range tests {
		expectErr(t, tt.name, sureschema.ErrConflictingConstraint, tt.fn)
	}
}

func TestRangeErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() sureschema.Node
	}{
		{"min then max", func() sureschema.Node { return dsl.Array(nil).MinItems(2).MaxItems(1) }},
		{"max then min", func() sureschema.Node { return dsl.Array(nil).MaxItems(1).MinItems(2) }},
		{"tuple min below required", func() sureschema.Node { return dsl.Tuple(dsl.String(), dsl.String()).MinItems(1) }},
		{"tuple max below required", func() sureschema.Node { return dsl.Tuple(dsl.String(), dsl.String()).MaxItems(1) }},
		{"negative minItems", func() sureschema.Node { return dsl.Array(nil).MinItems(-1) }},
		{"string min above max", func() sureschema.Node { return dsl.String().MaxLength(1).MinLength(2) }},
		{"string max below min", func() sureschema.Node { return dsl.String().MinLength(2).MaxLength(1) }},
		{"negative minLength", func() sureschema.Node { return dsl.String().MinLength(-1) }},
		{"zero multipleOf", func() sureschema.Node { return dsl.Number().MultipleOf(0) }},
		{"empty anyOf", func() sureschema.Node { return dsl.AnyOf() }},
		{"empty allOf", func() sureschema.Node { return dsl.AllOf() }},
		{"empty value anyOf", func() sureschema.Node { return dsl.String().AnyOf() }},
	}
	for _, tt := range tests {
		expectErr(t, tt.name, sureschema.ErrRange, tt.fn)
	}
}

func TestTupleOptionalPositions(t *testing.T) {
	tup := dsl.Tuple(dsl.String(), dsl.Optional(dsl.Number()), dsl.String(), dsl.Optional(dsl.Boolean()))
	if got := tup.RequiredItems(); got != 3 {
		t.Fatalf("RequiredItems = %d, want 3", got)
	}
	if _, err := dsl.Build(func() *dsl.TupleNode { return tup.MinItems(3).MaxItems(4) }); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestSettersDoNotMutate(t *testing.T) {
	base := dsl.String()
	a := base.MinLength(1)
	b := base.MinLength(2)
	if base.IR().Constraints.MinLength != nil {
		t.Fatal("base was mutated")
	}
	if *a.IR().Constraints.MinLength != 1 || *b.IR().Constraints.MinLength != 2 {
		t.Fatal("derived nodes share state")
	}
	if a.IR().ID == base.IR().ID || a.IR().Ancestor != base.IR() {
		t.Fatal("derived node must be a new identity linked to its ancestor")
	}
}

func TestBuild_RepanicsNonErrors(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("recovered %v, want boom", r)
		}
	}()
	_, _ = dsl.Build(func() int { panic("boom") })
}

func TestNaming(t *testing.T) {
	if _, err := dsl.Build(func() *dsl.StringNode {
		return dsl.Define(sureschema.Annotations{Title: "no name"}, dsl.String())
	}); !errors.Is(err, sureschema.ErrNaming) {
		t.Fatalf("expected ErrNaming, got %v", err)
	}

	s := dsl.Annotate(sureschema.Annotations{Title: "T"}, dsl.String())
	named := dsl.EnsureNamed("X", s)
	ann, ok := dsl.AnnotationsOf(named)
	if !ok || ann.Name != "X" || ann.Title != "T" {
		t.Fatalf("annotations = %+v, %v", ann, ok)
	}
	if again := dsl.EnsureNamed("Y", named); dsl.NameOf(again) != "X" {
		t.Fatalf("EnsureNamed renamed an already named node")
	}
	if _, ok := dsl.AnnotationsOf(dsl.String()); ok {
		t.Fatal("fresh node has no annotations")
	}
	if dsl.NameOf(dsl.RawFragment(map[string]any{"definitions": map[string]any{"F": map[string]any{}}}, "F")) != "F" {
		t.Fatal("raw node answers to its fragment")
	}
	if got := dsl.NameOf(dsl.String().MinLength(1)); got != "" {
		t.Fatalf("NameOf = %q", got)
	}
}

func TestAnnotationsBelongToIdentity(t *testing.T) {
	named := dsl.Define(sureschema.Annotations{Name: "A"}, dsl.String())
	derived := named.MinLength(1)
	if dsl.NameOf(derived) != "" {
		t.Fatal("setters must not carry the annotation name to the derived node")
	}
}

func TestAnnotateCopiesExamples(t *testing.T) {
	examples := []any{"a"}
	n := dsl.Annotate(sureschema.Annotations{Examples: examples}, dsl.String())
	examples[0] = "changed"
	ann, _ := dsl.AnnotationsOf(n)
	if ann.Examples[0] != "a" {
		t.Fatalf("examples aliased the caller's slice: %v", ann.Examples)
	}
}

func TestWrappers(t *testing.T) {
	w := dsl.String().MinLength(1).Optional()
	if !w.IsOptional() {
		t.Fatal("expected optional")
	}
	if dsl.KindOf(w) != "string" {
		t.Fatalf("KindOf = %q", dsl.KindOf(w))
	}
	inner, ok := w.Unwrap().(*dsl.StringNode)
	if !ok {
		t.Fatalf("Unwrap = %T", w.Unwrap())
	}
	if *inner.IR().Constraints.MinLength != 1 {
		t.Fatal("unwrapped node lost its constraints")
	}
	if dsl.Required(w).IsOptional() {
		t.Fatal("outer Required wins")
	}
	if dsl.KindOf(dsl.Integer()) != "integer" {
		t.Fatal("Integer kind")
	}
}

func TestObjectAccessors(t *testing.T) {
	o := dsl.Object(map[string]sureschema.Node{
		"b": dsl.Number().Optional(),
		"a": dsl.String(),
	})
	if diff := cmp.Diff([]string{"a"}, o.RequiredKeys()); diff != "" {
		t.Fatalf("RequiredKeys (-want +got):\n%s", diff)
	}
	props := o.Properties()
	if _, ok := props["a"].(*dsl.StringNode); !ok {
		t.Fatalf("props[a] = %T", props["a"])
	}
	if _, ok := props["b"].(*dsl.WrapperNode); !ok {
		t.Fatalf("props[b] = %T", props["b"])
	}
}

func TestEnumCopiesValues(t *testing.T) {
	v := map[string]any{"k": "v"}
	n := dsl.Object(nil).Enum(v)
	v["k"] = "changed"
	got := n.IR().Constraints.Enum[0].(map[string]any)["k"]
	if got != "v" {
		t.Fatalf("enum value aliased the caller's map: %v", got)
	}
}

func TestRawDocument(t *testing.T) {
	r, err := dsl.RawJSON([]byte(`{"definitions":{"A":{"type":"string"}}}`), "A")
	if err != nil {
		t.Fatal(err)
	}
	if r.Fragment() != "A" {
		t.Fatalf("Fragment = %q", r.Fragment())
	}
	doc := r.Document()
	doc.Definitions["A"].Type = "number"
	if r.Document().Definitions["A"].Type != "string" {
		t.Fatal("Document must return a copy")
	}
	if _, err := dsl.Build(func() *dsl.RawNode { return dsl.Raw(42) }); err == nil {
		t.Fatal("expected unsupported type error")
	}
}
