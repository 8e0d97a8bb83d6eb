package dsl

import (
	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
)

// AnyOf returns a node matching values that match at least one member.
func AnyOf(members ...sureschema.Node) sureschema.Node {
	return combinator(ir.NodeAnyOf, "anyOf", members)
}

// AllOf returns a node matching values that match every member.
func AllOf(members ...sureschema.Node) sureschema.Node {
	return combinator(ir.NodeAllOf, "allOf", members)
}

func combinator(kind ir.NodeKind, name string, members []sureschema.Node) sureschema.Node {
	if len(members) == 0 {
		fail(sureschema.NewRangeError(name, name+" must have at least 1 item"))
	}
	n := ir.New(kind)
	n.Children = irs(members)
	return &node{n: n}
}

// IfNode is a conditional schema without branches.
type IfNode struct{ n *ir.Node }

// ThenNode is a conditional schema with a then branch.
type ThenNode struct{ n *ir.Node }

// ElseNode is a complete if/then/else schema.
type ElseNode struct{ n *ir.Node }

// If starts a conditional schema on cond.
func If(cond sureschema.Node) *IfNode {
	n := ir.New(ir.NodeIf)
	n.If = cond.IR()
	return &IfNode{n: n}
}

func (x *IfNode) IR() *ir.Node { return x.n }
func (x *IfNode) withIR(n *ir.Node) sureschema.Node { return &IfNode{n: n} }
func (x *ThenNode) IR() *ir.Node { return x.n }
func (x *ThenNode) withIR(n *ir.Node) sureschema.Node { return &ThenNode{n: n} }
func (x *ElseNode) IR() *ir.Node { return x.n }
func (x *ElseNode) withIR(n *ir.Node) sureschema.Node { return &ElseNode{n: n} }

// Then sets the schema applied when the condition matches.
func (x *IfNode) Then(n sureschema.Node) *ThenNode {
	c := ir.New(ir.NodeIf)
	c.If, c.Then = x.n.If, n.IR()
	return &ThenNode{n: c}
}

// Else sets the schema applied when the condition does not match.
func (x *ThenNode) Else(n sureschema.Node) *ElseNode {
	c := ir.New(ir.NodeIf)
	c.If, c.Then, c.Else = x.n.If, x.n.Then, n.IR()
	return &ElseNode{n: c}
}

// Recursive returns a reference to the definition currently being emitted.
// It is only valid inside a named definition.
func Recursive() sureschema.Node { return &node{n: ir.New(ir.NodeRecursive)} }
