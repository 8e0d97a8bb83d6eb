package compiler

import (
	"github.com/reoring/sureschema/internal/ir"
	js "github.com/reoring/sureschema/jsonschema"
)

// emit produces the fragment of n itself. Children go through visit.
func (c *Compiler) emit(n *ir.Node, current string) (*js.Schema, error) {
	var (
		s   *js.Schema
		err error
	)
	switch n.Kind {
	case ir.NodeAny:
		s = &js.Schema{}
	case ir.NodeBoolean, ir.NodeNull, ir.NodeString, ir.NodeNumber, ir.NodeInteger:
		s = &js.Schema{Type: typeName(n.Kind)}
	case ir.NodeObject:
		s, err = c.emitObject(n, current)
	case ir.NodeArray:
		s, err = c.emitArray(n, current)
	case ir.NodeTuple:
		s, err = c.emitTuple(n, current)
	case ir.NodeAnyOf:
		s = &js.Schema{}
		s.AnyOf, err = c.visitAll(n.Children, current, false)
	case ir.NodeAllOf:
		s = &js.Schema{}
		s.AllOf, err = c.visitAll(n.Children, current, false)
	case ir.NodeIf:
		s, err = c.emitIf(n, current)
	case ir.NodeRaw:
		if len(n.Raw.Doc.Definitions) > 0 {
			err = c.splice(n)
		}
		s = rawBody(n.Raw)
		if renames := c.rawRenames[n.Raw]; len(renames) > 0 {
			s = rewriteRefs(s, renames)
		}
	case ir.NodeRecursive:
		if current == "" {
			return nil, &Error{Kind: KindReference, Name: "", Detail: "recursive node outside of a named definition"}
		}
		c.referenced[current] = true
		s = js.Ref(current)
	case ir.NodeOptional, ir.NodeRequired:
		var child *js.Schema
		if child, err = c.visit(n.Child, current); err == nil {
			s = child.Clone()
		}
	}
	if err != nil {
		return nil, err
	}
	if n.Kind.IsValue() {
		if err := c.applyValue(s, n, current); err != nil {
			return nil, err
		}
	}
	applyAnnotations(s, n.Annotations)
	return s, nil
}

func typeName(k ir.NodeKind) string {
	switch k {
	case ir.NodeTuple:
		return "array"
	default:
		return k.String()
	}
}

// applyValue writes const, enum, default and the value-level combinators.
func (c *Compiler) applyValue(s *js.Schema, n *ir.Node, current string) error {
	cs := &n.Constraints
	s.Const = cs.Const
	s.Enum = cs.Enum
	s.Default = cs.Default
	var err error
	if len(cs.AnyOf) > 0 {
		if s.AnyOf, err = c.visitAll(cs.AnyOf, current, true); err != nil {
			return err
		}
	}
	if len(cs.AllOf) > 0 {
		if s.AllOf, err = c.visitAll(cs.AllOf, current, true); err != nil {
			return err
		}
	}
	switch n.Kind {
	case ir.NodeNumber, ir.NodeInteger:
		s.MultipleOf = cs.MultipleOf
		s.ExclusiveMinimum = cs.Gt
		s.Minimum = cs.Gte
		s.ExclusiveMaximum = cs.Lt
		s.Maximum = cs.Lte
	case ir.NodeString:
		s.MinLength = cs.MinLength
		s.MaxLength = cs.MaxLength
		if cs.Pattern != nil {
			s.Pattern = *cs.Pattern
		}
		if cs.Format != nil {
			s.Format = *cs.Format
		}
	}
	return nil
}

// visitAll visits members in order. Members attached to a value node have
// their type keyword removed; the enclosing node already states it.
func (c *Compiler) visitAll(nodes []*ir.Node, current string, stripType bool) ([]*js.Schema, error) {
	out := make([]*js.Schema, 0, len(nodes))
	for _, m := range nodes {
		s, err := c.visit(m, current)
		if err != nil {
			return nil, err
		}
		if stripType && s.Type != "" {
			s = s.Clone()
			s.Type = ""
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Compiler) emitObject(n *ir.Node, current string) (*js.Schema, error) {
	s := &js.Schema{Type: "object"}
	if len(n.Properties) > 0 {
		s.Properties = make(map[string]*js.Schema, len(n.Properties))
	}
	for _, p := range n.Properties {
		ps, err := c.visit(p.Node, current)
		if err != nil {
			return nil, err
		}
		s.Properties[p.Name] = ps
		if p.Node.IsRequired() {
			s.Required = append(s.Required, p.Name)
		}
	}
	if add := n.Constraints.AdditionalProperties; add != nil {
		switch {
		case add.Node == nil:
			s.AdditionalProperties = add.Allowed
		case add.Node.Kind == ir.NodeAny:
			// any value: same as omitting the keyword
		default:
			as, err := c.visit(add.Node, current)
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = as
		}
	}
	return s, nil
}

func (c *Compiler) emitArray(n *ir.Node, current string) (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	items, err := c.visit(n.Child, current)
	if err != nil {
		return nil, err
	}
	s.Items = items
	if err := c.applyItems(s, n, current, 0); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Compiler) emitTuple(n *ir.Node, current string) (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	add := n.Constraints.AdditionalItems
	if len(n.Children) == 0 {
		s.Items = add != nil && (add.Allowed || add.Node != nil)
	} else {
		items, err := c.visitAll(n.Children, current, false)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}
	switch {
	case add == nil:
		s.AdditionalItems = false
	case add.Node == nil:
		s.AdditionalItems = add.Allowed
	case add.Node.Kind == ir.NodeAny:
		s.AdditionalItems = true
	default:
		as, err := c.visit(add.Node, current)
		if err != nil {
			return nil, err
		}
		s.AdditionalItems = as
	}
	if err := c.applyItems(s, n, current, ir.RequiredItems(n.Children)); err != nil {
		return nil, err
	}
	return s, nil
}

// applyItems writes the size, contains and uniqueness keywords shared by
// arrays and tuples. required is the minimum length implied by positions.
func (c *Compiler) applyItems(s *js.Schema, n *ir.Node, current string, required int) error {
	cs := &n.Constraints
	if cs.Contains != nil {
		cn, err := c.visit(cs.Contains, current)
		if err != nil {
			return err
		}
		s.Contains = cn
	}
	switch {
	case cs.MinItems != nil:
		v := max(*cs.MinItems, required)
		s.MinItems = &v
	case required > 0:
		v := required
		s.MinItems = &v
	}
	s.MaxItems = cs.MaxItems
	if cs.Unique != nil {
		s.UniqueItems = *cs.Unique
	}
	return nil
}

func (c *Compiler) emitIf(n *ir.Node, current string) (*js.Schema, error) {
	s := &js.Schema{}
	var err error
	if s.If, err = c.visit(n.If, current); err != nil {
		return nil, err
	}
	if n.Then != nil {
		if s.Then, err = c.visit(n.Then, current); err != nil {
			return nil, err
		}
	}
	if n.Else != nil {
		if s.Else, err = c.visit(n.Else, current); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// rawBody is the raw document without its embedded definitions, which are
// spliced into the output instead.
func rawBody(raw *ir.RawDoc) *js.Schema {
	s := raw.Doc.Clone()
	s.Definitions = nil
	return s
}

// applyAnnotations sets title, description and examples unless the fragment
// already carries them. Wrapped fragments keep the child's own annotations.
func applyAnnotations(s *js.Schema, ann *ir.Annotations) {
	if ann == nil {
		return
	}
	if s.Title == "" {
		s.Title = ann.Title
	}
	if s.Description == "" {
		s.Description = ann.Description
	}
	if s.Examples == nil && len(ann.Examples) > 0 {
		s.Examples = ann.Examples
	}
}
