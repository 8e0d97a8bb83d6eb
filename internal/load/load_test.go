package load_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/sureschema/internal/load"
)

func TestJSON_DuplicateKeys(t *testing.T) {
	tests := []struct {
		in       string
		wantPath string
		wantKey  string
	}{
		{`{"a":1,"a":2}`, "", "a"},
		{`{"x":{"b":1,"c":[1,2],"b":3}}`, "/x", "b"},
		{`[{"k":1},{"k":1,"k":2}]`, "/1", "k"},
		{`{"a/b":{"n":{},"n":1}}`, "/a~1b", "n"},
	}
	for _, tt := range tests {
		_, err := load.JSON([]byte(tt.in))
		var de *load.DuplicateKeyError
		if !errors.As(err, &de) {
			t.Fatalf("%s: expected DuplicateKeyError, got %v", tt.in, err)
		}
		if de.Path != tt.wantPath || de.Key != tt.wantKey {
			t.Errorf("%s: got %s %q, want %s %q", tt.in, de.Path, de.Key, tt.wantPath, tt.wantKey)
		}
	}
}

func TestJSON_Decode(t *testing.T) {
	v, err := load.JSON([]byte(`{"a":[1,"x",true,null],"b":{"a":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("got %T", v)
	}
	arr := m["a"].([]any)
	if len(arr) != 4 || arr[1] != "x" || arr[2] != true || arr[3] != nil {
		t.Fatalf("unexpected array %v", arr)
	}
	if _, err := load.JSON([]byte(`{"a":`)); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestYAML_Normalize(t *testing.T) {
	v, err := load.YAML([]byte("name: x\nnested:\n  1: one\nlist:\n  - a\n  - b\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"name":   "x",
		"nested": map[string]any{"1": "one"},
		"list":   []any{"a", "b"},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := load.YAML([]byte("a: 1\na: 2\n")); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestSchemaFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "s.yaml")
	if err := os.WriteFile(p, []byte("type: string\nminLength: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := load.SchemaFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if s.Type != "string" || s.MinLength == nil || *s.MinLength != 2 {
		t.Fatalf("unexpected schema %+v", s)
	}

	q := filepath.Join(dir, "list.json")
	if err := os.WriteFile(q, []byte(`[1]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := load.SchemaFile(q); err == nil {
		t.Fatal("expected error for non-object schema")
	}
}

func TestFormat(t *testing.T) {
	if load.FormatOf("a.YML") != load.FormatYAML || load.FormatOf("a.json") != load.FormatJSON {
		t.Fatal("FormatOf mismatch")
	}
	if f, err := load.ParseFormat("yaml"); err != nil || f != load.FormatYAML {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
	if _, err := load.ParseFormat("xml"); err == nil {
		t.Fatal("expected error")
	}
}
