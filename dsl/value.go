package dsl

import (
	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
)

// valueNode carries the setters shared by every value kind. T is the Go type
// of accepted literals, N the concrete node type returned by setters.
type valueNode[T any, N any] struct {
	n    *ir.Node
	wrap func(*ir.Node) N
}

// IR implements sureschema.Node.
func (v valueNode[T, N]) IR() *ir.Node { return v.n }

func (v valueNode[T, N]) withIR(n *ir.Node) sureschema.Node {
	return any(v.wrap(n)).(sureschema.Node)
}

// Const restricts the value to exactly c. Const and Enum are exclusive.
func (v valueNode[T, N]) Const(c T) N {
	cs := v.n.Constraints
	if cs.Const != nil {
		fail(sureschema.NewDuplicateConstraint("const"))
	}
	if cs.Enum != nil {
		fail(sureschema.NewConflictingConstraint("const", "enum"))
	}
	return v.wrap(derive(v.n, func(c2 *ir.Constraints) { c2.Const = literal(c) }))
}

// Enum restricts the value to one of vals. Repeated values are dropped; an
// empty enum emits nothing.
func (v valueNode[T, N]) Enum(vals ...T) N {
	cs := v.n.Constraints
	if cs.Enum != nil {
		fail(sureschema.NewDuplicateConstraint("enum"))
	}
	if cs.Const != nil {
		fail(sureschema.NewConflictingConstraint("enum", "const"))
	}
	return v.wrap(derive(v.n, func(c *ir.Constraints) { c.Enum = uniqueValues(vals) }))
}

// Default sets the default value.
func (v valueNode[T, N]) Default(d T) N {
	if v.n.Constraints.Default != nil {
		fail(sureschema.NewDuplicateConstraint("default"))
	}
	return v.wrap(derive(v.n, func(c *ir.Constraints) { c.Default = literal(d) }))
}

// AnyOf requires the value to also match at least one of nodes.
func (v valueNode[T, N]) AnyOf(nodes ...sureschema.Node) N {
	if v.n.Constraints.AnyOf != nil {
		fail(sureschema.NewDuplicateConstraint("anyOf"))
	}
	if len(nodes) == 0 {
		fail(sureschema.NewRangeError("anyOf", "anyOf must have at least 1 item"))
	}
	return v.wrap(derive(v.n, func(c *ir.Constraints) { c.AnyOf = irs(nodes) }))
}

// AllOf requires the value to also match every one of nodes.
func (v valueNode[T, N]) AllOf(nodes ...sureschema.Node) N {
	if v.n.Constraints.AllOf != nil {
		fail(sureschema.NewDuplicateConstraint("allOf"))
	}
	if len(nodes) == 0 {
		fail(sureschema.NewRangeError("allOf", "allOf must have at least 1 item"))
	}
	return v.wrap(derive(v.n, func(c *ir.Constraints) { c.AllOf = irs(nodes) }))
}

// Optional wraps the node so that a containing object does not require it.
func (v valueNode[T, N]) Optional() *WrapperNode { return wrapNode(ir.NodeOptional, v.n) }

// Required wraps the node so that a containing object requires it.
func (v valueNode[T, N]) Required() *WrapperNode { return wrapNode(ir.NodeRequired, v.n) }
