package dsl

import (
	"fmt"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
)

// Format is a string format understood by JSON Schema validators.
type Format string

const (
	FormatDateTime            Format = "date-time"
	FormatTime                Format = "time"
	FormatDate                Format = "date"
	FormatEmail               Format = "email"
	FormatIDNEmail            Format = "idn-email"
	FormatHostname            Format = "hostname"
	FormatIDNHostname         Format = "idn-hostname"
	FormatIPv4                Format = "ipv4"
	FormatIPv6                Format = "ipv6"
	FormatURI                 Format = "uri"
	FormatURIReference        Format = "uri-reference"
	FormatIRI                 Format = "iri"
	FormatIRIReference        Format = "iri-reference"
	FormatURITemplate         Format = "uri-template"
	FormatJSONPointer         Format = "json-pointer"
	FormatRelativeJSONPointer Format = "relative-json-pointer"
	FormatRegex               Format = "regex"
	FormatUUID                Format = "uuid"
)

// NumericPattern matches decimal numbers without exponent or leading zeros.
const NumericPattern = `^(0|-?([1-9][0-9]*)(\.[0-9]+)?)$`

// StringNode is a string schema.
type StringNode struct {
	valueNode[string, *StringNode]
}

// String returns an unconstrained string node.
func String() *StringNode { return newString(ir.New(ir.NodeString)) }

func newString(n *ir.Node) *StringNode {
	s := &StringNode{}
	s.n, s.wrap = n, newString
	return s
}

// MinLength sets the minimum length in characters.
func (s *StringNode) MinLength(n int) *StringNode {
	cs := s.n.Constraints
	if cs.MinLength != nil {
		fail(sureschema.NewDuplicateConstraint("minLength"))
	}
	if n < 0 {
		fail(sureschema.NewRangeError("minLength", "minLength cannot be negative"))
	}
	if cs.MaxLength != nil && *cs.MaxLength < n {
		fail(sureschema.NewRangeError("minLength", "minLength cannot be larger than maxLength"))
	}
	return newString(derive(s.n, func(c *ir.Constraints) { c.MinLength = ptr(n) }))
}

// MaxLength sets the maximum length in characters.
func (s *StringNode) MaxLength(n int) *StringNode {
	cs := s.n.Constraints
	if cs.MaxLength != nil {
		fail(sureschema.NewDuplicateConstraint("maxLength"))
	}
	if n < 0 {
		fail(sureschema.NewRangeError("maxLength", "maxLength cannot be negative"))
	}
	if cs.MinLength != nil && *cs.MinLength > n {
		fail(sureschema.NewRangeError("maxLength", "maxLength cannot be smaller than minLength"))
	}
	return newString(derive(s.n, func(c *ir.Constraints) { c.MaxLength = ptr(n) }))
}

// Matches sets the regular expression the value must match.
func (s *StringNode) Matches(pattern string) *StringNode {
	if s.n.Constraints.Pattern != nil {
		fail(sureschema.NewDuplicateConstraint("pattern"))
	}
	return newString(derive(s.n, func(c *ir.Constraints) { c.Pattern = ptr(pattern) }))
}

// Numeric is Matches(NumericPattern).
func (s *StringNode) Numeric() *StringNode { return s.Matches(NumericPattern) }

// Format sets the string format.
func (s *StringNode) Format(f Format) *StringNode {
	if s.n.Constraints.Format != nil {
		fail(sureschema.NewDuplicateConstraint("format"))
	}
	return newString(derive(s.n, func(c *ir.Constraints) { c.Format = ptr(string(f)) }))
}

// NumberNode is a number or integer schema.
type NumberNode struct {
	valueNode[float64, *NumberNode]
}

// Number returns an unconstrained number node.
func Number() *NumberNode { return newNumber(ir.New(ir.NodeNumber)) }

// Integer is Number().Integer().
func Integer() *NumberNode { return Number().Integer() }

func newNumber(n *ir.Node) *NumberNode {
	x := &NumberNode{}
	x.n, x.wrap = n, newNumber
	return x
}

// Integer restricts the value to integers.
func (x *NumberNode) Integer() *NumberNode {
	d := x.n.Derive()
	d.Kind = ir.NodeInteger
	return newNumber(d)
}

// Gt sets an exclusive lower bound (exclusiveMinimum).
func (x *NumberNode) Gt(v float64) *NumberNode { return x.bound("gt", "gte", v) }

// Gte sets an inclusive lower bound (minimum).
func (x *NumberNode) Gte(v float64) *NumberNode { return x.bound("gte", "gt", v) }

// Lt sets an exclusive upper bound (exclusiveMaximum).
func (x *NumberNode) Lt(v float64) *NumberNode { return x.bound("lt", "lte", v) }

// Lte sets an inclusive upper bound (maximum).
func (x *NumberNode) Lte(v float64) *NumberNode { return x.bound("lte", "lt", v) }

// MultipleOf requires the value to be a multiple of m.
func (x *NumberNode) MultipleOf(m float64) *NumberNode {
	if x.n.Constraints.MultipleOf != nil {
		fail(sureschema.NewDuplicateConstraint("multipleOf"))
	}
	if m <= 0 {
		fail(sureschema.NewRangeError("multipleOf", "multipleOf must be greater than 0"))
	}
	return newNumber(derive(x.n, func(c *ir.Constraints) { c.MultipleOf = ptr(m) }))
}

func (x *NumberNode) bound(name, pair string, v float64) *NumberNode {
	slot := func(c *ir.Constraints, which string) **float64 {
		switch which {
		case "gt":
			return &c.Gt
		case "gte":
			return &c.Gte
		case "lt":
			return &c.Lt
		case "lte":
			return &c.Lte
		}
		panic(fmt.Sprintf("dsl: unknown bound %q", which))
	}
	cs := x.n.Constraints
	if *slot(&cs, pair) != nil {
		fail(sureschema.NewConflictingConstraint(name, pair))
	}
	if *slot(&cs, name) != nil {
		fail(sureschema.NewDuplicateConstraint(name))
	}
	return newNumber(derive(x.n, func(c *ir.Constraints) { *slot(c, name) = ptr(v) }))
}

// BooleanNode is a boolean schema.
type BooleanNode struct {
	valueNode[bool, *BooleanNode]
}

// Boolean returns a boolean node.
func Boolean() *BooleanNode { return newBoolean(ir.New(ir.NodeBoolean)) }

func newBoolean(n *ir.Node) *BooleanNode {
	b := &BooleanNode{}
	b.n, b.wrap = n, newBoolean
	return b
}

// NullNode is a null schema.
type NullNode struct {
	valueNode[any, *NullNode]
}

// Null returns a node accepting only null.
func Null() *NullNode { return newNull(ir.New(ir.NodeNull)) }

func newNull(n *ir.Node) *NullNode {
	x := &NullNode{}
	x.n, x.wrap = n, newNull
	return x
}

// Any returns a node accepting every value. It emits an empty schema.
func Any() sureschema.Node { return &node{n: ir.New(ir.NodeAny)} }
