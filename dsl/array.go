package dsl

import (
	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
)

// ArrayNode is an array whose items all match one node.
type ArrayNode struct {
	valueNode[[]any, *ArrayNode]
}

// Array returns an array of item. A nil item accepts any value.
func Array(item sureschema.Node) *ArrayNode {
	if item == nil {
		item = Any()
	}
	n := ir.New(ir.NodeArray)
	n.Child = item.IR()
	return newArray(n)
}

func newArray(n *ir.Node) *ArrayNode {
	a := &ArrayNode{}
	a.n, a.wrap = n, newArray
	return a
}

// MinItems sets the minimum number of items.
func (a *ArrayNode) MinItems(lo int) *ArrayNode {
	return newArray(setMinItems(a.n, lo, 0))
}

// MaxItems sets the maximum number of items.
func (a *ArrayNode) MaxItems(hi int) *ArrayNode {
	return newArray(setMaxItems(a.n, hi, 0))
}

// Contains requires at least one item to match n.
func (a *ArrayNode) Contains(n sureschema.Node) *ArrayNode {
	return newArray(setContains(a.n, n))
}

// Unique requires all items to be distinct.
func (a *ArrayNode) Unique() *ArrayNode {
	return newArray(derive(a.n, func(c *ir.Constraints) { c.Unique = ptr(true) }))
}

// TupleNode is an array with one node per position.
type TupleNode struct {
	valueNode[[]any, *TupleNode]
}

// Tuple returns a tuple of positions. Positions are required unless wrapped
// with Optional; the minimum length covers every position up to the last
// required one. Extra items are forbidden unless Additional allows them.
func Tuple(positions ...sureschema.Node) *TupleNode {
	n := ir.New(ir.NodeTuple)
	n.Children = irs(positions)
	return newTuple(n)
}

func newTuple(n *ir.Node) *TupleNode {
	t := &TupleNode{}
	t.n, t.wrap = n, newTuple
	return t
}

// RequiredItems is the minimum length implied by the positions.
func (t *TupleNode) RequiredItems() int { return ir.RequiredItems(t.n.Children) }

// MinItems sets the minimum number of items. It cannot be smaller than
// RequiredItems.
func (t *TupleNode) MinItems(lo int) *TupleNode {
	return newTuple(setMinItems(t.n, lo, t.RequiredItems()))
}

// MaxItems sets the maximum number of items. It cannot be smaller than
// RequiredItems.
func (t *TupleNode) MaxItems(hi int) *TupleNode {
	return newTuple(setMaxItems(t.n, hi, t.RequiredItems()))
}

// Additional allows (true) or forbids (false) items beyond the positions.
func (t *TupleNode) Additional(allowed bool) *TupleNode {
	return t.additional(&ir.Additional{Allowed: allowed})
}

// AdditionalNode allows items beyond the positions that match n.
func (t *TupleNode) AdditionalNode(n sureschema.Node) *TupleNode {
	return t.additional(&ir.Additional{Allowed: true, Node: n.IR()})
}

func (t *TupleNode) additional(a *ir.Additional) *TupleNode {
	if t.n.Constraints.AdditionalItems != nil {
		fail(sureschema.NewDuplicateConstraint("additional"))
	}
	return newTuple(derive(t.n, func(c *ir.Constraints) { c.AdditionalItems = a }))
}

// Contains requires at least one item to match n.
func (t *TupleNode) Contains(n sureschema.Node) *TupleNode {
	return newTuple(setContains(t.n, n))
}

// Unique requires all items to be distinct.
func (t *TupleNode) Unique() *TupleNode {
	return newTuple(derive(t.n, func(c *ir.Constraints) { c.Unique = ptr(true) }))
}

func setMinItems(n *ir.Node, lo, required int) *ir.Node {
	cs := n.Constraints
	if cs.MinItems != nil {
		fail(sureschema.NewDuplicateConstraint("minItems"))
	}
	if lo < 0 {
		fail(sureschema.NewRangeError("minItems", "minItems cannot be negative"))
	}
	if lo < required {
		fail(sureschema.NewRangeError("minItems", "minItems cannot be smaller than the number of required items"))
	}
	if cs.MaxItems != nil && *cs.MaxItems < lo {
		fail(sureschema.NewRangeError("minItems", "minItems cannot be larger than maxItems"))
	}
	return derive(n, func(c *ir.Constraints) { c.MinItems = ptr(lo) })
}

func setMaxItems(n *ir.Node, hi, required int) *ir.Node {
	cs := n.Constraints
	if cs.MaxItems != nil {
		fail(sureschema.NewDuplicateConstraint("maxItems"))
	}
	if hi < 0 {
		fail(sureschema.NewRangeError("maxItems", "maxItems cannot be negative"))
	}
	if cs.MinItems != nil && *cs.MinItems > hi {
		fail(sureschema.NewRangeError("maxItems", "maxItems cannot be smaller than minItems"))
	}
	if hi < required {
		fail(sureschema.NewRangeError("maxItems", "maxItems cannot be smaller than the number of required items"))
	}
	return derive(n, func(c *ir.Constraints) { c.MaxItems = ptr(hi) })
}

func setContains(n *ir.Node, item sureschema.Node) *ir.Node {
	if n.Constraints.Contains != nil {
		fail(sureschema.NewDuplicateConstraint("contains"))
	}
	return derive(n, func(c *ir.Constraints) { c.Contains = item.IR() })
}
