package dsl

import (
	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
)

// WrapperNode is an Optional or Required wrapper. It emits its child's
// fragment unchanged; only the classification of the enclosing object
// property or tuple position changes. The outermost wrapper wins.
type WrapperNode struct{ n *ir.Node }

func (w *WrapperNode) IR() *ir.Node { return w.n }

func (w *WrapperNode) withIR(n *ir.Node) sureschema.Node { return &WrapperNode{n: n} }

// Unwrap returns the wrapped node.
func (w *WrapperNode) Unwrap() sureschema.Node { return facade(w.n.Child) }

// IsOptional reports whether the node is excluded from required lists.
func (w *WrapperNode) IsOptional() bool { return !w.n.IsRequired() }

// Optional marks n as not required in an object or tuple. Properties and
// tuple positions are required unless wrapped with Optional.
func Optional(n sureschema.Node) *WrapperNode { return wrapNode(ir.NodeOptional, n.IR()) }

// Required marks n as required, overriding an inner Optional.
func Required(n sureschema.Node) *WrapperNode { return wrapNode(ir.NodeRequired, n.IR()) }

func wrapNode(kind ir.NodeKind, child *ir.Node) *WrapperNode {
	w := ir.New(kind)
	w.Child = child
	return &WrapperNode{n: w}
}

// facade returns a Node for an ir node coming from inside the tree.
func facade(n *ir.Node) sureschema.Node {
	switch n.Kind {
	case ir.NodeOptional, ir.NodeRequired:
		return &WrapperNode{n: n}
	case ir.NodeString:
		return newString(n)
	case ir.NodeNumber, ir.NodeInteger:
		return newNumber(n)
	case ir.NodeBoolean:
		return newBoolean(n)
	case ir.NodeNull:
		return newNull(n)
	case ir.NodeObject:
		return newObject(n)
	case ir.NodeArray:
		return newArray(n)
	case ir.NodeTuple:
		return newTuple(n)
	case ir.NodeRaw:
		return &RawNode{n: n}
	}
	return &node{n: n}
}
