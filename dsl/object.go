package dsl

import (
	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
)

// ObjectNode is an object schema with a fixed property set.
type ObjectNode struct {
	valueNode[map[string]any, *ObjectNode]
}

// Object returns an object node with the given properties. A property is
// required unless its node is wrapped with Optional.
func Object(props map[string]sureschema.Node) *ObjectNode {
	n := ir.New(ir.NodeObject)
	for _, k := range ir.SortedKeys(props) {
		n.Properties = append(n.Properties, ir.Property{Name: k, Node: props[k].IR()})
	}
	return newObject(n)
}

func newObject(n *ir.Node) *ObjectNode {
	o := &ObjectNode{}
	o.n, o.wrap = n, newObject
	return o
}

// Additional allows (true) or forbids (false) properties not listed.
// Unlisted properties are allowed when Additional is never called.
func (o *ObjectNode) Additional(allowed bool) *ObjectNode {
	return o.additional(&ir.Additional{Allowed: allowed})
}

// AdditionalNode allows unlisted properties matching n.
func (o *ObjectNode) AdditionalNode(n sureschema.Node) *ObjectNode {
	return o.additional(&ir.Additional{Allowed: true, Node: n.IR()})
}

func (o *ObjectNode) additional(a *ir.Additional) *ObjectNode {
	if o.n.Constraints.AdditionalProperties != nil {
		fail(sureschema.NewDuplicateConstraint("additionalProperties"))
	}
	return newObject(derive(o.n, func(c *ir.Constraints) { c.AdditionalProperties = a }))
}

// Properties returns the property nodes by name.
func (o *ObjectNode) Properties() map[string]sureschema.Node {
	out := make(map[string]sureschema.Node, len(o.n.Properties))
	for _, p := range o.n.Properties {
		out[p.Name] = facade(p.Node)
	}
	return out
}

// RequiredKeys lists the properties a value must contain, in name order.
func (o *ObjectNode) RequiredKeys() []string {
	var out []string
	for _, p := range o.n.Properties {
		if p.Node.IsRequired() {
			out = append(out, p.Name)
		}
	}
	return out
}
