// Package dsl builds sureschema nodes.
//
// Overview
//   - Primitives: String(), Number(), Integer(), Boolean(), Null(), Any().
//   - Structures: Object(props), Array(item), Tuple(positions...).
//   - Combinators: AnyOf(...), AllOf(...), If(cond).Then(x).Else(y), Recursive().
//   - Pre-built documents: Raw(doc), RawFragment(doc, name), RawJSON(b, name).
//   - Presence: Optional(n)/Required(n) or the n.Optional()/n.Required() methods.
//   - Metadata: Define (named definition), Annotate, EnsureNamed.
//
// Nodes are immutable. Every setter returns a new node; the receiver keeps
// its constraints, so a base node may be shared and refined many times.
//
// Presence
//
// Object properties and tuple positions are required unless wrapped with
// Optional. Required re-includes an Optional node. When wrappers nest, the
// outermost one decides.
//
// Errors
//
// Setters check their constraint immediately. Setting a constraint twice,
// combining const with enum (or gt with gte, lt with lte) and ordering
// violations such as MinItems(2).MaxItems(1) panic with a
// *sureschema.ConstraintError. Wrap builder code in Build to get the error
// back as a value:
//
//	user, err := dsl.Build(func() *dsl.ObjectNode {
//	    return dsl.Define(sureschema.Annotations{Name: "User"},
//	        dsl.Object(map[string]sureschema.Node{
//	            "name": dsl.String().MinLength(1),
//	            "age":  dsl.Number().Optional(),
//	        }))
//	})
//	if err != nil {
//	    return err
//	}
//	ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{user}, sureschema.ExtractOpt{})
//
// Recursion
//
// Recursive() stands for the definition currently being emitted:
//
//	tree := dsl.Define(sureschema.Annotations{Name: "Tree"},
//	    dsl.Object(map[string]sureschema.Node{
//	        "value":    dsl.Number(),
//	        "children": dsl.Array(dsl.Recursive()).Optional(),
//	    }))
package dsl
