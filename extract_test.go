package sureschema_test

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/dsl"
	js "github.com/reoring/sureschema/jsonschema"
)

// normalize marshals v to JSON and back so that numeric types and key order
// do not affect comparisons.
func normalize(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func assertJSON(t *testing.T, got *js.Schema, want string) {
	t.Helper()
	var w any
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("bad expectation: %v", err)
	}
	if diff := cmp.Diff(w, normalize(t, got)); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func single(t *testing.T, n sureschema.Node) *js.Schema {
	t.Helper()
	s, err := sureschema.ExtractSingleJSONSchema(n)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if s.Fragment != "" {
		t.Fatalf("unexpected fragment %q", s.Fragment)
	}
	return s.Schema
}

func TestExtractSingle_ObjectExample(t *testing.T) {
	user := dsl.Object(map[string]sureschema.Node{
		"name": dsl.String().MinLength(1),
		"age":  dsl.Number().Optional(),
	})
	assertJSON(t, single(t, user), `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"age": {"type": "number"}
		},
		"required": ["name"]
	}`)
}

func TestExtractSingle_Recursive(t *testing.T) {
	foo := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.Object(map[string]sureschema.Node{
		"self": dsl.Recursive(),
	}))
	s, err := sureschema.ExtractSingleJSONSchema(foo)
	if err != nil {
		t.Fatal(err)
	}
	if s.Fragment != "Foo" {
		t.Fatalf("fragment = %q, want Foo", s.Fragment)
	}
	assertJSON(t, s.Schema.Definitions["Foo"], `{
		"type": "object",
		"properties": {"self": {"$ref": "#/definitions/Foo"}},
		"required": ["self"]
	}`)

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{foo}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {"Foo": {
		"type": "object",
		"properties": {"self": {"$ref": "#/definitions/Foo"}},
		"required": ["self"]
	}}}`)

	optional := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.Object(map[string]sureschema.Node{
		"self": dsl.Optional(dsl.Recursive()),
	}))
	ext, err = sureschema.ExtractJSONSchema([]sureschema.Node{optional}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {"Foo": {
		"type": "object",
		"properties": {"self": {"$ref": "#/definitions/Foo"}}
	}}}`)
}

func TestExtract_RecursiveOutsideDefinition(t *testing.T) {
	_, err := sureschema.ExtractJSONSchema(
		[]sureschema.Node{dsl.Array(dsl.Recursive())},
		sureschema.ExtractOpt{OnUnnamed: sureschema.UnnamedLookup},
	)
	if !errors.Is(err, sureschema.ErrReference) {
		t.Fatalf("expected ErrReference, got %v", err)
	}
}

func TestExtract_NameConflict(t *testing.T) {
	a := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.String())
	b := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.Number())

	_, err := sureschema.ExtractJSONSchema([]sureschema.Node{a, b}, sureschema.ExtractOpt{})
	if !errors.Is(err, sureschema.ErrNaming) {
		t.Fatalf("expected ErrNaming, got %v", err)
	}

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{a, b}, sureschema.ExtractOpt{
		OnNameConflict: sureschema.ConflictRename,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {
		"Foo": {"type": "string"},
		"Foo_1": {"type": "number"}
	}}`)
	if diff := cmp.Diff(map[string]int{"Foo": 2}, ext.Duplicates); diff != "" {
		t.Fatalf("duplicates (-want +got):\n%s", diff)
	}
	if name, ok := ext.DefinitionName(b); !ok || name != "Foo_1" {
		t.Fatalf("DefinitionName(b) = %q, %v", name, ok)
	}
}

func TestExtract_RenameSkipsTakenSuffix(t *testing.T) {
	a := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.String())
	b := dsl.Define(sureschema.Annotations{Name: "Foo_1"}, dsl.String())
	c := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.String())
	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{a, b, c}, sureschema.ExtractOpt{
		OnNameConflict: sureschema.ConflictRename,
	})
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := ext.DefinitionName(c); name != "Foo_2" {
		t.Fatalf("DefinitionName(c) = %q, want Foo_2", name)
	}
}

func TestExtract_RefAllVsNoRefs(t *testing.T) {
	shared := dsl.Annotate(sureschema.Annotations{Name: "Id"}, dsl.String().Format(dsl.FormatUUID))
	user := dsl.Define(sureschema.Annotations{Name: "User"}, dsl.Object(map[string]sureschema.Node{"id": shared}))
	order := dsl.Define(sureschema.Annotations{Name: "Order"}, dsl.Object(map[string]sureschema.Node{"owner": shared}))

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{user, order}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {
		"Id": {"type": "string", "format": "uuid"},
		"User": {"type": "object", "properties": {"id": {"$ref": "#/definitions/Id"}}, "required": ["id"]},
		"Order": {"type": "object", "properties": {"owner": {"$ref": "#/definitions/Id"}}, "required": ["owner"]}
	}}`)

	ext, err = sureschema.ExtractJSONSchema([]sureschema.Node{user, order}, sureschema.ExtractOpt{
		RefMethod: sureschema.RefNone,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {
		"User": {"type": "object", "properties": {"id": {"type": "string", "format": "uuid"}}, "required": ["id"]},
		"Order": {"type": "object", "properties": {"owner": {"type": "string", "format": "uuid"}}, "required": ["owner"]}
	}}`)
}

func TestExtract_RefProvided(t *testing.T) {
	id := dsl.Define(sureschema.Annotations{Name: "Id"}, dsl.String())
	tag := dsl.Annotate(sureschema.Annotations{Name: "Tag"}, dsl.String().MaxLength(8))
	item := dsl.Define(sureschema.Annotations{Name: "Item"}, dsl.Object(map[string]sureschema.Node{
		"id":  id,
		"tag": tag,
	}))
	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{id, item}, sureschema.ExtractOpt{
		RefMethod: sureschema.RefProvided,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {
		"Id": {"type": "string"},
		"Item": {
			"type": "object",
			"properties": {"id": {"$ref": "#/definitions/Id"}, "tag": {"type": "string", "maxLength": 8}},
			"required": ["id", "tag"]
		}
	}}`)
}

func TestExtract_IdentityNotStructure(t *testing.T) {
	a := dsl.Annotate(sureschema.Annotations{Name: "Name"}, dsl.String())
	b := dsl.Annotate(sureschema.Annotations{Name: "Name"}, dsl.String())
	root := dsl.Define(sureschema.Annotations{Name: "Root"}, dsl.Object(map[string]sureschema.Node{"a": a, "b": b}))
	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{root}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Root", "Name", "Name_1"} {
		if _, ok := ext.Schema.Definitions[name]; !ok {
			t.Errorf("missing definition %q", name)
		}
	}
}

func TestExtract_UnnamedPolicies(t *testing.T) {
	named := dsl.Define(sureschema.Annotations{Name: "A"}, dsl.String())
	unnamed := dsl.Number()

	_, err := sureschema.ExtractJSONSchema([]sureschema.Node{named, unnamed}, sureschema.ExtractOpt{})
	if !errors.Is(err, sureschema.ErrNaming) {
		t.Fatalf("error policy: got %v", err)
	}

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{named, unnamed}, sureschema.ExtractOpt{OnUnnamed: sureschema.UnnamedIgnore})
	if err != nil {
		t.Fatal(err)
	}
	if len(ext.Schema.Definitions) != 1 {
		t.Fatalf("ignore policy: definitions = %v", ext.Schema.Definitions)
	}

	other := dsl.Boolean()
	ext, err = sureschema.ExtractJSONSchema([]sureschema.Node{unnamed, other}, sureschema.ExtractOpt{OnUnnamed: sureschema.UnnamedCreateName})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {"Unknown": {"type": "number"}, "Unknown_1": {"type": "boolean"}}}`)
	if len(ext.Duplicates) != 0 {
		t.Fatalf("synthetic names are not duplicates: %v", ext.Duplicates)
	}

	ext, err = sureschema.ExtractJSONSchema([]sureschema.Node{named, unnamed}, sureschema.ExtractOpt{OnUnnamed: sureschema.UnnamedLookup})
	if err != nil {
		t.Fatal(err)
	}
	if len(ext.Schema.Definitions) != 1 {
		t.Fatalf("lookup policy: definitions = %v", ext.Schema.Definitions)
	}
	frag, ok := ext.Lookup(unnamed)
	if !ok || frag.Type != "number" {
		t.Fatalf("lookup = %+v, %v", frag, ok)
	}
	def, ok := ext.Lookup(named)
	if !ok {
		t.Fatal("named input missing from lookup")
	}
	if name, ok := ext.RefName(def); !ok || name != "A" {
		t.Fatalf("RefName = %q, %v", name, ok)
	}
}

func TestExtract_DeduplicatesInputs(t *testing.T) {
	a := dsl.Define(sureschema.Annotations{Name: "A"}, dsl.String())
	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{a, a}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatalf("same node twice is not a conflict: %v", err)
	}
	if len(ext.Schema.Definitions) != 1 {
		t.Fatalf("definitions = %v", ext.Schema.Definitions)
	}
}

func TestExtractSingle_AnnotationOnlyChangesName(t *testing.T) {
	build := func() *dsl.ObjectNode {
		return dsl.Object(map[string]sureschema.Node{
			"tags": dsl.Array(dsl.String()).MinItems(1).Unique(),
			"n":    dsl.Integer().Gte(0).Optional(),
		}).Additional(false)
	}
	x := build()
	plain := single(t, x)
	named := single(t, dsl.Annotate(sureschema.Annotations{Name: "Thing"}, x))
	if diff := cmp.Diff(normalize(t, plain), normalize(t, named)); diff != "" {
		t.Fatalf("annotation changed the schema (-plain +named):\n%s", diff)
	}
}

func TestExtractSingle_CleanCloneMatchesFresh(t *testing.T) {
	item := dsl.String()
	x := dsl.Array(item).MinItems(1).MaxItems(3)
	fresh := dsl.Array(item)
	if diff := cmp.Diff(normalize(t, single(t, fresh)), normalize(t, single(t, dsl.Clone(x, false)))); diff != "" {
		t.Fatalf("clean clone differs (-fresh +clone):\n%s", diff)
	}
	if diff := cmp.Diff(normalize(t, single(t, x)), normalize(t, single(t, dsl.Clone(x, true)))); diff != "" {
		t.Fatalf("keeping clone differs (-orig +clone):\n%s", diff)
	}

	i := dsl.Integer().Gt(1)
	assertJSON(t, single(t, dsl.Clone(i, false)), `{"type": "integer"}`)

	cond := dsl.If(dsl.String()).Then(dsl.String().MinLength(1)).Else(dsl.Number())
	freshCond := dsl.If(dsl.String()).Then(dsl.String().MinLength(1)).Else(dsl.Number())
	if diff := cmp.Diff(normalize(t, single(t, freshCond)), normalize(t, single(t, dsl.Clone(cond, false)))); diff != "" {
		t.Fatalf("clean if/then/else clone differs (-fresh +clone):\n%s", diff)
	}
	assertJSON(t, single(t, dsl.Clone(cond, false)), `{
		"if": {"type": "string"},
		"then": {"type": "string", "minLength": 1},
		"else": {"type": "number"}
	}`)
}

func TestExtractSingle_Annotations(t *testing.T) {
	n := dsl.Annotate(sureschema.Annotations{
		Title:       "Port",
		Description: "TCP port",
		Examples:    []any{8080},
	}, dsl.Integer().Gte(1).Lte(65535))
	assertJSON(t, single(t, n), `{
		"type": "integer", "minimum": 1, "maximum": 65535,
		"title": "Port", "description": "TCP port", "examples": [8080]
	}`)
}

func TestExtractSingle_ValueCombinatorsStripType(t *testing.T) {
	n := dsl.String().AnyOf(dsl.String().MinLength(3), dsl.String().Format(dsl.FormatEmail))
	assertJSON(t, single(t, n), `{
		"type": "string",
		"anyOf": [{"minLength": 3}, {"format": "email"}]
	}`)

	c := dsl.AnyOf(dsl.String(), dsl.Null())
	assertJSON(t, single(t, c), `{"anyOf": [{"type": "string"}, {"type": "null"}]}`)
}

func TestExtractSingle_Tuple(t *testing.T) {
	tup := dsl.Tuple(dsl.String(), dsl.Number(), dsl.Optional(dsl.Boolean()))
	assertJSON(t, single(t, tup), `{
		"type": "array",
		"items": [{"type": "string"}, {"type": "number"}, {"type": "boolean"}],
		"additionalItems": false,
		"minItems": 2
	}`)
	open := dsl.Tuple(dsl.String()).AdditionalNode(dsl.Any())
	assertJSON(t, single(t, open), `{
		"type": "array",
		"items": [{"type": "string"}],
		"additionalItems": true,
		"minItems": 1
	}`)
	empty := dsl.Tuple()
	assertJSON(t, single(t, empty), `{"type": "array", "items": false, "additionalItems": false}`)
}

func TestExtractSingle_Conditional(t *testing.T) {
	n := dsl.If(dsl.String()).Then(dsl.String().MinLength(1)).Else(dsl.Null())
	assertJSON(t, single(t, n), `{
		"if": {"type": "string"},
		"then": {"type": "string", "minLength": 1},
		"else": {"type": "null"}
	}`)
}

func TestExtractSingle_ConstEnumDefault(t *testing.T) {
	assertJSON(t, single(t, dsl.String().Enum("a", "b", "a").Default("a")),
		`{"type": "string", "enum": ["a", "b"], "default": "a"}`)
	assertJSON(t, single(t, dsl.Null().Const(nil)), `{"type": "null", "const": null}`)
	assertJSON(t, single(t, dsl.Number().Gt(0).Lt(1).MultipleOf(0.25)),
		`{"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1, "multipleOf": 0.25}`)
}

func TestExtractSingle_ObjectAdditional(t *testing.T) {
	o := dsl.Object(map[string]sureschema.Node{"a": dsl.String()})
	assertJSON(t, single(t, o.AdditionalNode(dsl.Number())), `{
		"type": "object", "properties": {"a": {"type": "string"}}, "required": ["a"],
		"additionalProperties": {"type": "number"}
	}`)
	assertJSON(t, single(t, o.AdditionalNode(dsl.Any())), `{
		"type": "object", "properties": {"a": {"type": "string"}}, "required": ["a"]
	}`)
	assertJSON(t, single(t, dsl.Object(nil).Additional(false)), `{"type": "object", "additionalProperties": false}`)
}

func TestExtractSingle_PresenceOutermostWins(t *testing.T) {
	o := dsl.Object(map[string]sureschema.Node{
		"a": dsl.Required(dsl.Optional(dsl.String())),
		"b": dsl.Optional(dsl.Required(dsl.String())),
		"c": dsl.String(),
	})
	assertJSON(t, single(t, o), `{
		"type": "object",
		"properties": {"a": {"type": "string"}, "b": {"type": "string"}, "c": {"type": "string"}},
		"required": ["a", "c"]
	}`)
	if diff := cmp.Diff([]string{"a", "c"}, o.RequiredKeys()); diff != "" {
		t.Fatalf("RequiredKeys (-want +got):\n%s", diff)
	}
}

func TestRaw_FragmentAndSplice(t *testing.T) {
	doc := map[string]any{
		"definitions": map[string]any{
			"Color": map[string]any{"type": "string", "enum": []any{"red", "blue"}},
			"Size":  map[string]any{"type": "integer"},
		},
	}
	color := dsl.RawFragment(doc, "Color")
	size := dsl.RawFragment(doc, "Size")
	shirt := dsl.Define(sureschema.Annotations{Name: "Shirt"}, dsl.Object(map[string]sureschema.Node{
		"color": color,
		"size":  size,
	}))

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{color, size, shirt}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, ext.Schema, `{"definitions": {
		"Color": {"type": "string", "enum": ["red", "blue"]},
		"Size": {"type": "integer"},
		"Shirt": {
			"type": "object",
			"properties": {"color": {"$ref": "#/definitions/Color"}, "size": {"$ref": "#/definitions/Size"}},
			"required": ["color", "size"]
		}
	}}`)

	s, err := sureschema.ExtractSingleJSONSchema(color)
	if err != nil {
		t.Fatal(err)
	}
	if s.Fragment != "Color" || len(s.Schema.Definitions) != 2 {
		t.Fatalf("single raw = %+v", s)
	}
}

func TestRaw_Errors(t *testing.T) {
	doc := map[string]any{"definitions": map[string]any{"A": map[string]any{"type": "string"}}}

	_, err := sureschema.ExtractSingleJSONSchema(dsl.RawFragment(doc, "Missing"))
	if !errors.Is(err, sureschema.ErrReference) {
		t.Fatalf("expected ErrReference, got %v", err)
	}

	holder := dsl.Define(sureschema.Annotations{Name: "H"}, dsl.Array(dsl.RawFragment(doc, "Missing")))
	_, err = sureschema.ExtractJSONSchema([]sureschema.Node{holder}, sureschema.ExtractOpt{})
	if !errors.Is(err, sureschema.ErrReference) {
		t.Fatalf("nested: expected ErrReference, got %v", err)
	}

	named := dsl.Define(sureschema.Annotations{Name: "A"}, dsl.Number())
	_, err = sureschema.ExtractJSONSchema([]sureschema.Node{dsl.RawFragment(doc, "A"), named}, sureschema.ExtractOpt{})
	if !errors.Is(err, sureschema.ErrNaming) {
		t.Fatalf("conflict with raw definition: got %v", err)
	}

	if _, err := dsl.RawJSON([]byte(`{"type":`), ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRaw_FragmentNameWinsOverAnnotation(t *testing.T) {
	doc := map[string]any{"definitions": map[string]any{"Foo": map[string]any{"type": "string"}}}
	alias := dsl.Annotate(sureschema.Annotations{Name: "Alias"}, dsl.RawFragment(doc, "Foo"))
	if got := dsl.NameOf(alias); got != "Foo" {
		t.Fatalf("NameOf = %q, want Foo", got)
	}

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{alias}, sureschema.ExtractOpt{})
	if err != nil {
		t.Fatal(err)
	}
	if name, ok := ext.DefinitionName(alias); !ok || name != "Foo" {
		t.Fatalf("DefinitionName = %q, %v", name, ok)
	}
	assertJSON(t, ext.Schema, `{"definitions": {"Foo": {"type": "string"}}}`)

	other := dsl.Define(sureschema.Annotations{Name: "Alias"}, dsl.Number())
	if _, err := sureschema.ExtractJSONSchema([]sureschema.Node{alias, other}, sureschema.ExtractOpt{}); err != nil {
		t.Fatalf("annotation name of a fragment is not a definition: %v", err)
	}
	clash := dsl.Define(sureschema.Annotations{Name: "Foo"}, dsl.Number())
	if _, err := sureschema.ExtractJSONSchema([]sureschema.Node{alias, clash}, sureschema.ExtractOpt{}); !errors.Is(err, sureschema.ErrNaming) {
		t.Fatalf("expected ErrNaming, got %v", err)
	}
}

func TestRaw_EmbeddedDefinitionCollision(t *testing.T) {
	user := dsl.Define(sureschema.Annotations{Name: "User"}, dsl.Object(map[string]sureschema.Node{
		"id": dsl.String(),
	}))
	wrapper := dsl.EnsureNamed("Wrapper", dsl.Raw(map[string]any{
		"type":  "array",
		"items": map[string]any{"$ref": "#/definitions/User"},
		"definitions": map[string]any{
			"User": map[string]any{"type": "string"},
		},
	}))

	_, err := sureschema.ExtractJSONSchema([]sureschema.Node{user, wrapper}, sureschema.ExtractOpt{})
	var ne *sureschema.NamingError
	if !errors.As(err, &ne) || ne.Name != "User" || !strings.Contains(ne.Detail, "duplicate") {
		t.Fatalf("expected duplicate name User before compiling, got %v", err)
	}

	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{user, wrapper}, sureschema.ExtractOpt{
		OnNameConflict: sureschema.ConflictRename,
	})
	if err != nil {
		t.Fatal(err)
	}
	defs := ext.Schema.Definitions
	if defs["User"].Type != "object" || defs["User_1"].Type != "string" {
		t.Fatalf("definitions = %v", slices.Sorted(maps.Keys(defs)))
	}
	assertJSON(t, defs["Wrapper"], `{"type": "array", "items": {"$ref": "#/definitions/User_1"}}`)
	if diff := cmp.Diff(map[string]int{"User": 2}, ext.Duplicates); diff != "" {
		t.Fatalf("duplicates (-want +got):\n%s", diff)
	}
}

func TestRaw_KeepsLiterals(t *testing.T) {
	raw, err := dsl.RawJSON([]byte(`{"type":"integer","maximum":9007199254740993,"minimum":0.5,"enum":[]}`), "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := single(t, raw).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"enum":[],"maximum":9007199254740993,"minimum":0.5,"type":"integer"}`; got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestRaw_Inline(t *testing.T) {
	raw := dsl.Raw(map[string]any{"type": "string", "x-custom": true})
	assertJSON(t, single(t, raw), `{"type": "string", "x-custom": true}`)
}
