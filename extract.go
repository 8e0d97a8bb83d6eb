package sureschema

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/reoring/sureschema/internal/compiler"
	"github.com/reoring/sureschema/internal/ir"
	js "github.com/reoring/sureschema/jsonschema"
)

// Extraction is the result of ExtractJSONSchema.
type Extraction struct {
	// Schema is the document: {"definitions": {...}}.
	Schema *js.Schema
	// Duplicates counts base names that collided and were renamed. The first
	// collision records 2.
	Duplicates map[string]int

	res *compiler.Result
}

// Lookup returns the fragment emitted for n, which must be an input or a
// definition created during extraction.
func (e *Extraction) Lookup(n Node) (*js.Schema, bool) {
	s, ok := e.res.Lookup[n.IR().ID]
	return s, ok
}

// RefName returns the definition name of a fragment returned by Lookup.
func (e *Extraction) RefName(s *js.Schema) (string, bool) {
	name, ok := e.res.RefNames[s]
	return name, ok
}

// DefinitionName returns the definition name allocated to n.
func (e *Extraction) DefinitionName(n Node) (string, bool) {
	name, ok := e.res.Names[n.IR().ID]
	return name, ok
}

// ExtractJSONSchema compiles nodes into one document with a definitions map.
// Inputs are deduplicated by identity, then checked against the naming and
// conflict policies of opt before anything is compiled.
func ExtractJSONSchema(nodes []Node, opt ExtractOpt) (*Extraction, error) {
	log := opt.logger()

	seen := make(map[ir.ID]struct{}, len(nodes))
	inputs := make([]compiler.Input, 0, len(nodes))
	for _, n := range nodes {
		in := n.IR()
		if _, dup := seen[in.ID]; dup {
			continue
		}
		seen[in.ID] = struct{}{}
		named := in.Name() != ""
		switch {
		case named:
			inputs = append(inputs, compiler.Input{Node: in})
		case opt.OnUnnamed == UnnamedIgnore:
			log.Debug("ignoring unnamed node", zap.Stringer("kind", in.Kind))
		case opt.OnUnnamed == UnnamedCreateName:
			inputs = append(inputs, compiler.Input{Node: in})
		case opt.OnUnnamed == UnnamedLookup:
			inputs = append(inputs, compiler.Input{Node: in, LookupOnly: true})
		default:
			return nil, &NamingError{Detail: fmt.Sprintf("unnamed %s node", in.Kind)}
		}
	}

	if opt.OnNameConflict == ConflictError {
		if err := checkConflicts(inputs); err != nil {
			return nil, err
		}
	}

	c := compiler.New(policyOf(opt.RefMethod), log)
	if opt.OnNameConflict == ConflictRename {
		c.RenameEmbedded()
	}
	res, err := c.Run(inputs)
	if err != nil {
		return nil, fromCompilerError(err)
	}
	for name, n := range res.Duplicates {
		log.Debug("renamed duplicate definitions", zap.String("name", name), zap.Int("count", n))
	}
	return &Extraction{Schema: res.Document, Duplicates: res.Duplicates, res: res}, nil
}

// SingleSchema is the result of ExtractSingleJSONSchema. With an empty
// Fragment, Schema is the node's own schema. Otherwise Schema is a document
// and Fragment names the definition that describes the node.
type SingleSchema struct {
	Schema   *js.Schema
	Fragment string
}

// ExtractSingleJSONSchema returns the schema of one node without a
// definitions envelope. A raw node with a fragment yields its document and
// the fragment name. A node whose schema needs $ref targets (a Recursive
// node, or spliced raw definitions) yields the whole document.
func ExtractSingleJSONSchema(n Node) (*SingleSchema, error) {
	in := n.IR()
	if in.Kind == ir.NodeRaw && in.Raw.Fragment != "" {
		if _, ok := in.Raw.Doc.Definitions[in.Raw.Fragment]; !ok {
			return nil, &ReferenceError{Ref: in.Raw.Fragment, Detail: "fragment not found in raw document"}
		}
		return &SingleSchema{Schema: js.FromMap(in.Raw.Doc.ToMap()), Fragment: in.Raw.Fragment}, nil
	}
	ext, err := ExtractJSONSchema([]Node{n}, ExtractOpt{
		RefMethod:      RefNone,
		OnNameConflict: ConflictRename,
		OnUnnamed:      UnnamedCreateName,
	})
	if err != nil {
		return nil, err
	}
	name, _ := ext.DefinitionName(n)
	if len(ext.Schema.Definitions) > 1 || ext.res.Referenced[name] {
		return &SingleSchema{Schema: ext.Schema, Fragment: name}, nil
	}
	return &SingleSchema{Schema: ext.Schema.Definitions[name]}, nil
}

// checkConflicts rejects two inputs answering to the same name, counting the
// definitions embedded in raw inputs. Raw documents may share embedded
// definitions as long as they are identical.
func checkConflicts(inputs []compiler.Input) error {
	type claim struct {
		id  ir.ID
		raw *js.Schema
	}
	claims := map[string]claim{}
	add := func(name string, c claim) error {
		prev, ok := claims[name]
		if !ok {
			claims[name] = c
			return nil
		}
		if prev.raw != nil && c.raw != nil && js.Equal(prev.raw, c.raw) {
			return nil
		}
		return &NamingError{Name: name, Detail: "duplicate definitions found with name"}
	}
	for _, in := range inputs {
		n := in.Node
		if n.Kind == ir.NodeRaw {
			for _, name := range ir.SortedKeys(n.Raw.Doc.Definitions) {
				if err := add(name, claim{raw: n.Raw.Doc.Definitions[name]}); err != nil {
					return err
				}
			}
			if n.Raw.Fragment != "" {
				continue
			}
		}
		if name := n.Name(); name != "" {
			if err := add(name, claim{id: n.ID}); err != nil {
				return err
			}
		}
	}
	return nil
}

func policyOf(m RefMethod) compiler.Policy {
	switch m {
	case RefProvided:
		return compiler.Provided
	case RefNone:
		return compiler.NoRefs
	default:
		return compiler.RefAll
	}
}

// fromCompilerError maps compiler errors onto the public taxonomy.
func fromCompilerError(err error) error {
	var ce *compiler.Error
	if !errors.As(err, &ce) {
		return err
	}
	if ce.Kind == compiler.KindReference {
		return &ReferenceError{Ref: ce.Name, Detail: ce.Detail}
	}
	return &NamingError{Name: ce.Name, Detail: ce.Detail}
}
