package ir

// Package ir defines the node representation shared by the DSL builders and the
// compiler. This package is internal and not part of the public API.

import (
	"maps"
	"slices"
	"sync/atomic"

	js "github.com/reoring/sureschema/jsonschema"
)

// NodeKind identifies a node variant.
type NodeKind int

const (
	NodeAny NodeKind = iota
	NodeBoolean
	NodeNumber
	NodeInteger
	NodeString
	NodeNull
	NodeObject
	NodeArray
	NodeTuple
	NodeAnyOf
	NodeAllOf
	NodeIf
	NodeRaw
	NodeRecursive
	NodeOptional
	NodeRequired
)

var kindNames = [...]string{
	NodeAny:       "any",
	NodeBoolean:   "boolean",
	NodeNumber:    "number",
	NodeInteger:   "integer",
	NodeString:    "string",
	NodeNull:      "null",
	NodeObject:    "object",
	NodeArray:     "array",
	NodeTuple:     "tuple",
	NodeAnyOf:     "any-of",
	NodeAllOf:     "all-of",
	NodeIf:        "if",
	NodeRaw:       "raw",
	NodeRecursive: "recursive",
	NodeOptional:  "optional",
	NodeRequired:  "required",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsValue reports whether nodes of this kind accept the value-level
// constraints (const, enum, default, anyOf, allOf).
func (k NodeKind) IsValue() bool {
	switch k {
	case NodeBoolean, NodeNumber, NodeInteger, NodeString, NodeNull, NodeObject, NodeArray, NodeTuple:
		return true
	}
	return false
}

// ID is a stable, process-unique node handle. The compiler keys all of its
// identity tables by ID.
type ID uint64

var lastID atomic.Uint64

func nextID() ID { return ID(lastID.Add(1)) }

// Annotations is descriptive metadata attached to one node identity.
type Annotations struct {
	Name        string
	Title       string
	Description string
	Examples    []any
}

// Node is an immutable schema node. Nodes are created through New and the
// Derive/Clone helpers; fields must not be modified after the node has been
// returned to a caller.
type Node struct {
	ID          ID
	Kind        NodeKind
	Annotations *Annotations
	// Ancestor is the node this one was derived from. It records provenance
	// only; Constraints already carries everything set along the chain.
	Ancestor    *Node
	Constraints Constraints

	Child      *Node      // Optional/Required wrapped node, Array item
	Children   []*Node    // Tuple positions, AnyOf/AllOf members
	Properties []Property // Object properties sorted by name
	If         *Node
	Then       *Node
	Else       *Node
	Raw        *RawDoc
}

// Property is a named object property.
type Property struct {
	Name string
	Node *Node
}

// RawDoc is a pre-built document carried by a raw node.
type RawDoc struct {
	Doc      *js.Schema
	Fragment string
}

// Additional configures additionalProperties / additionalItems. A nil Node
// means the boolean Allowed applies.
type Additional struct {
	Allowed bool
	Node    *Node
}

// Constraints is the flat constraint set of a node. Pointer and slice fields
// are nil when unset; values are shared between derived nodes and never
// mutated.
type Constraints struct {
	Const   *js.Literal
	Enum    []any
	Default *js.Literal
	AnyOf   []*Node
	AllOf   []*Node

	MultipleOf *float64
	Gt         *float64
	Gte        *float64
	Lt         *float64
	Lte        *float64

	MinLength *int
	MaxLength *int
	Pattern   *string
	Format    *string

	MinItems *int
	MaxItems *int
	Contains *Node
	Unique   *bool

	AdditionalItems      *Additional
	AdditionalProperties *Additional
}

// New allocates a node of the given kind with a fresh identity.
func New(kind NodeKind) *Node {
	return &Node{ID: nextID(), Kind: kind}
}

// Derive returns a copy of n with a fresh identity whose Ancestor is n. The
// copy keeps every constraint and drops the annotations, which belong to n's
// identity.
func (n *Node) Derive() *Node {
	c := *n
	c.ID = nextID()
	c.Ancestor = n
	c.Annotations = nil
	return &c
}

// Clone copies n. With keep the clone carries n's constraints (see Derive);
// without it the clone is a blank node of the same kind holding only the
// structural arguments n was constructed with.
func (n *Node) Clone(keep bool) *Node {
	if keep {
		return n.Derive()
	}
	c := New(n.Kind)
	switch n.Kind {
	case NodeOptional, NodeRequired:
		c.Child = n.Child.Clone(false)
	case NodeArray:
		c.Child = n.Child
	case NodeTuple, NodeAnyOf, NodeAllOf:
		c.Children = n.Children
	case NodeObject:
		c.Properties = n.Properties
	case NodeIf:
		c.If, c.Then, c.Else = n.If, n.Then, n.Else
	case NodeRaw:
		c.Raw = n.Raw
	}
	return c
}

// Annotate returns a derivation of n carrying ann.
func (n *Node) Annotate(ann Annotations) *Node {
	c := n.Derive()
	ann.Examples = slices.Clone(ann.Examples)
	c.Annotations = &ann
	return c
}

// Name is the name the node answers to. A raw node with a fragment is always
// emitted under that fragment, so the fragment wins over an annotation name.
func (n *Node) Name() string {
	if n.Kind == NodeRaw && n.Raw != nil && n.Raw.Fragment != "" {
		return n.Raw.Fragment
	}
	if n.Annotations != nil {
		return n.Annotations.Name
	}
	return ""
}

// Unwrap strips Optional/Required wrappers.
func (n *Node) Unwrap() *Node {
	for n.Kind == NodeOptional || n.Kind == NodeRequired {
		n = n.Child
	}
	return n
}

// EffectiveKind is the kind of the wrapped node for wrappers, n.Kind otherwise.
func (n *Node) EffectiveKind() NodeKind { return n.Unwrap().Kind }

// IsRequired classifies n as an object property or tuple position. Properties
// are required unless the outermost wrapper is Optional.
func (n *Node) IsRequired() bool {
	return n.Kind != NodeOptional
}

// RequiredItems is the minimum length implied by tuple positions: the count of
// positions up to and including the last required one.
func RequiredItems(positions []*Node) int {
	for i := len(positions) - 1; i >= 0; i-- {
		if positions[i].IsRequired() {
			return i + 1
		}
	}
	return 0
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
