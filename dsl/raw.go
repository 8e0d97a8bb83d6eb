package dsl

import (
	"fmt"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
	js "github.com/reoring/sureschema/jsonschema"
)

// RawNode carries a pre-built JSON Schema document.
//
// Without a fragment the document is emitted verbatim wherever the node is
// used. With a fragment the document's definitions are spliced into the
// output and the node is emitted as a reference to definitions/<fragment>.
type RawNode struct{ n *ir.Node }

func (r *RawNode) IR() *ir.Node { return r.n }

func (r *RawNode) withIR(n *ir.Node) sureschema.Node { return &RawNode{n: n} }

// Raw wraps doc, which may be a map[string]any, JSON bytes or a
// *jsonschema.Schema. The document is copied.
func Raw(doc any) *RawNode { return RawFragment(doc, "") }

// RawFragment is Raw naming one definition inside doc. A fragment missing
// from doc's definitions fails when the node is compiled.
func RawFragment(doc any, fragment string) *RawNode {
	d, err := rawDocument(doc)
	if err != nil {
		fail(err)
	}
	n := ir.New(ir.NodeRaw)
	n.Raw = &ir.RawDoc{Doc: d, Fragment: fragment}
	return &RawNode{n: n}
}

// RawJSON is RawFragment for JSON input, returning decoding errors instead
// of panicking.
func RawJSON(b []byte, fragment string) (*RawNode, error) {
	return Build(func() *RawNode { return RawFragment(b, fragment) })
}

// Fragment is the referenced definition name, or "".
func (r *RawNode) Fragment() string { return r.n.Raw.Fragment }

// Document returns a copy of the wrapped document.
func (r *RawNode) Document() *js.Schema { return js.FromMap(r.n.Raw.Doc.ToMap()) }

func rawDocument(doc any) (*js.Schema, error) {
	switch d := doc.(type) {
	case map[string]any:
		return js.FromMap(js.DeepCopy(d).(map[string]any)), nil
	case *js.Schema:
		if d == nil {
			return &js.Schema{}, nil
		}
		return js.FromMap(d.ToMap()), nil
	case []byte:
		s, err := js.Parse(d)
		if err != nil {
			return nil, fmt.Errorf("raw document: %w", err)
		}
		return s, nil
	case string:
		return rawDocument([]byte(d))
	}
	return nil, fmt.Errorf("raw document: unsupported type %T", doc)
}
