// Package compiler turns trees of ir nodes into a single JSON Schema document
// with a flat definitions map. A Compiler is single-use; all of its tables
// live for exactly one Run.
package compiler

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/sureschema/internal/ir"
	js "github.com/reoring/sureschema/jsonschema"
)

// Policy decides when a node is emitted as a $ref.
type Policy int

const (
	// RefAll references every node carrying an annotation name. Named nodes
	// that are not inputs become extra definitions on first encounter.
	RefAll Policy = iota
	// Provided references only nodes from the input set.
	Provided
	// NoRefs inlines everything.
	NoRefs
)

// unknownName is the base name for unnamed definitions.
const unknownName = "Unknown"

// Input is one top-level node. LookupOnly inputs are emitted inline into the
// lookup table and never into definitions.
type Input struct {
	Node       *ir.Node
	LookupOnly bool
}

// Result is the output of one compilation.
type Result struct {
	Document *js.Schema
	// Names maps every node that owns a definition (inputs and extras) to it.
	Names map[ir.ID]string
	// Extra holds the definitions created lazily during descent.
	Extra map[ir.ID]string
	// Lookup maps inputs and extras to their emitted fragment.
	Lookup map[ir.ID]*js.Schema
	// RefNames maps emitted definition fragments back to their names.
	RefNames map[*js.Schema]string
	// Duplicates counts colliding base names: 2 after the first collision.
	Duplicates map[string]int
	// Referenced records every definition name targeted by an emitted $ref.
	Referenced map[string]bool
}

// ErrorKind classifies compiler errors.
type ErrorKind int

const (
	KindNaming ErrorKind = iota
	KindReference
)

// Error is returned by Run. Name is the offending definition or fragment.
type Error struct {
	Kind   ErrorKind
	Name   string
	Detail string
}

func (e *Error) Error() string {
	kind := "naming"
	if e.Kind == KindReference {
		kind = "reference"
	}
	return fmt.Sprintf("%s error: %s %q", kind, e.Detail, e.Name)
}

// Compiler holds the per-run tables.
type Compiler struct {
	policy    Policy
	log       *zap.Logger
	renameRaw bool

	initial    map[ir.ID]string
	extra      map[ir.ID]string
	taken      map[string]struct{}
	defs       map[string]*js.Schema
	spliced    map[string]*js.Schema
	splicedDoc map[*ir.RawDoc]struct{}
	rawRenames map[*ir.RawDoc]map[string]string
	duplicates map[string]int
	lookup     map[ir.ID]*js.Schema
	refNames   map[*js.Schema]string
	referenced map[string]bool
}

// New returns a compiler for one Run. A nil logger disables logging.
func New(policy Policy, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		policy:     policy,
		log:        log,
		initial:    map[ir.ID]string{},
		extra:      map[ir.ID]string{},
		taken:      map[string]struct{}{},
		defs:       map[string]*js.Schema{},
		spliced:    map[string]*js.Schema{},
		splicedDoc: map[*ir.RawDoc]struct{}{},
		rawRenames: map[*ir.RawDoc]map[string]string{},
		duplicates: map[string]int{},
		lookup:     map[ir.ID]*js.Schema{},
		refNames:   map[*js.Schema]string{},
		referenced: map[string]bool{},
	}
}

// RenameEmbedded lets definitions embedded in raw documents take fallback
// names when theirs is taken. The fragment a raw node points at is never
// renamed.
func (c *Compiler) RenameEmbedded() *Compiler {
	c.renameRaw = true
	return c
}

// Run compiles inputs in order. On error no partial result is returned.
func (c *Compiler) Run(inputs []Input) (*Result, error) {
	// Raw documents first: their embedded names are reserved verbatim.
	for _, in := range inputs {
		if isFragmentRaw(in.Node) {
			if err := c.splice(in.Node); err != nil {
				return nil, err
			}
			c.initial[in.Node.ID] = in.Node.Raw.Fragment
		}
	}

	type pending struct {
		node *ir.Node
		name string
	}
	var order []pending
	for _, in := range inputs {
		if in.LookupOnly || isFragmentRaw(in.Node) {
			continue
		}
		name := c.nextName(in.Node.Name())
		c.initial[in.Node.ID] = name
		order = append(order, pending{node: in.Node, name: name})
	}

	j := 0
	for _, in := range inputs {
		switch {
		case isFragmentRaw(in.Node):
			frag := c.defs[in.Node.Raw.Fragment]
			c.lookup[in.Node.ID] = frag
		case in.LookupOnly:
			frag, err := c.emit(in.Node, "")
			if err != nil {
				return nil, err
			}
			c.lookup[in.Node.ID] = frag
		default:
			p := order[j]
			j++
			if _, err := c.insert(p.node, p.name); err != nil {
				return nil, err
			}
		}
	}

	names := make(map[ir.ID]string, len(c.initial)+len(c.extra))
	for id, n := range c.initial {
		names[id] = n
	}
	for id, n := range c.extra {
		names[id] = n
	}
	return &Result{
		Document:   js.Document(c.defs),
		Names:      names,
		Extra:      c.extra,
		Lookup:     c.lookup,
		RefNames:   c.refNames,
		Duplicates: c.duplicates,
		Referenced: c.referenced,
	}, nil
}

// insert emits n as the definition name. The name is threaded down as the
// target of Recursive nodes.
func (c *Compiler) insert(n *ir.Node, name string) (*js.Schema, error) {
	frag, err := c.emit(n, name)
	if err != nil {
		return nil, err
	}
	c.defs[name] = frag
	c.lookup[n.ID] = frag
	c.refNames[frag] = name
	return frag, nil
}

// visit resolves a nested node to either a $ref or its inline fragment.
func (c *Compiler) visit(n *ir.Node, current string) (*js.Schema, error) {
	if isFragmentRaw(n) {
		if err := c.splice(n); err != nil {
			return nil, err
		}
		c.referenced[n.Raw.Fragment] = true
		return js.Ref(n.Raw.Fragment), nil
	}
	name, ok, err := c.refName(n)
	if err != nil {
		return nil, err
	}
	if ok {
		c.referenced[name] = true
		return js.Ref(name), nil
	}
	return c.emit(n, current)
}

func (c *Compiler) refName(n *ir.Node) (string, bool, error) {
	if c.policy == NoRefs || n.Annotations == nil || n.Annotations.Name == "" {
		return "", false, nil
	}
	if name, ok := c.initial[n.ID]; ok {
		return name, true, nil
	}
	if c.policy == Provided {
		return "", false, nil
	}
	if name, ok := c.extra[n.ID]; ok {
		return name, true, nil
	}
	name := c.nextName(n.Annotations.Name)
	c.extra[n.ID] = name
	c.log.Debug("creating extra definition",
		zap.String("name", name),
		zap.Stringer("kind", n.Kind))
	if _, err := c.insert(n, name); err != nil {
		return "", false, err
	}
	return name, true, nil
}

// nextName allocates base if it is free, else the smallest free base_N.
func (c *Compiler) nextName(base string) string {
	if base == "" {
		base = unknownName
	} else if _, ok := c.taken[base]; ok {
		if d, ok := c.duplicates[base]; ok {
			c.duplicates[base] = d + 1
		} else {
			c.duplicates[base] = 2
		}
	}
	if _, ok := c.taken[base]; !ok {
		c.taken[base] = struct{}{}
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if _, ok := c.taken[name]; !ok {
			c.taken[name] = struct{}{}
			c.log.Debug("renamed definition",
				zap.String("name", base),
				zap.String("as", name))
			return name
		}
	}
}

// splice copies the embedded definitions of a raw node into the output.
// Identical definitions already spliced from another document are shared.
func (c *Compiler) splice(n *ir.Node) error {
	raw := n.Raw
	if _, done := c.splicedDoc[raw]; done {
		return nil
	}
	if raw.Fragment != "" {
		if _, ok := raw.Doc.Definitions[raw.Fragment]; !ok {
			return &Error{Kind: KindReference, Name: raw.Fragment, Detail: "fragment not found in raw document"}
		}
	}
	renames := map[string]string{}
	var fresh []string
	for _, name := range ir.SortedKeys(raw.Doc.Definitions) {
		prev, seen := c.spliced[name]
		if seen && js.Equal(prev, raw.Doc.Definitions[name]) {
			continue
		}
		if _, ok := c.taken[name]; !ok {
			c.taken[name] = struct{}{}
			fresh = append(fresh, name)
			continue
		}
		if !c.renameRaw || name == raw.Fragment {
			if seen {
				return &Error{Kind: KindNaming, Name: name, Detail: "conflicting raw definition"}
			}
			return &Error{Kind: KindNaming, Name: name, Detail: "raw definition collides with definition"}
		}
		renames[name] = c.nextName(name)
		fresh = append(fresh, name)
	}
	for _, name := range fresh {
		def := rewriteRefs(raw.Doc.Definitions[name], renames)
		if to, ok := renames[name]; ok {
			name = to
		}
		c.spliced[name] = def
		c.defs[name] = def
		c.refNames[def] = name
	}
	c.rawRenames[raw] = renames
	c.splicedDoc[raw] = struct{}{}
	return nil
}

// rewriteRefs returns a deep copy of s whose local references to renamed
// definitions point at the new names.
func rewriteRefs(s *js.Schema, renames map[string]string) *js.Schema {
	m := s.ToMap()
	rewriteRefValues(m, renames)
	return js.FromMap(m)
}

func rewriteRefValues(v any, renames map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			if ref, ok := vv.(string); ok && k == "$ref" {
				if name, ok := strings.CutPrefix(ref, js.DefinitionsPrefix); ok {
					if to, ok := renames[name]; ok {
						t[k] = js.DefinitionsPrefix + to
					}
				}
				continue
			}
			rewriteRefValues(vv, renames)
		}
	case []any:
		for _, vv := range t {
			rewriteRefValues(vv, renames)
		}
	}
}

func isFragmentRaw(n *ir.Node) bool {
	return n.Kind == ir.NodeRaw && n.Raw != nil && n.Raw.Fragment != ""
}
