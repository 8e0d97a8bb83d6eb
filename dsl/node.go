package dsl

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/ir"
	js "github.com/reoring/sureschema/jsonschema"
)

// rewrapper is implemented by every node type of this package. It returns a
// node of the receiver's type around n.
type rewrapper interface {
	withIR(n *ir.Node) sureschema.Node
}

// node is the facade for kinds without setters of their own and for nodes
// implemented outside this package.
type node struct{ n *ir.Node }

func (x *node) IR() *ir.Node { return x.n }
func (x *node) withIR(n *ir.Node) sureschema.Node { return &node{n: n} }

// rewrap returns n around in, typed like the original.
func rewrap[N sureschema.Node](orig N, in *ir.Node) N {
	var out sureschema.Node
	if rw, ok := any(orig).(rewrapper); ok {
		out = rw.withIR(in)
	} else {
		out = &node{n: in}
	}
	res, ok := out.(N)
	if !ok {
		panic(fmt.Sprintf("dsl: cannot rebuild %T from a foreign node implementation", orig))
	}
	return res
}

// fail aborts the current builder chain. Build turns it back into an error.
func fail(err error) { panic(err) }

// Build runs fn and converts a failed constraint setter inside it into an
// error. Builders panic on invalid constraints so that they can be chained;
// Build is the error-returning entry point.
//
//	user, err := dsl.Build(func() *dsl.ObjectNode {
//	    return dsl.Object(map[string]sureschema.Node{
//	        "name": dsl.String().MinLength(1),
//	    })
//	})
func Build[N any](fn func() N) (res N, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		var rt runtime.Error
		if !ok || errors.As(e, &rt) {
			panic(r)
		}
		var zero N
		res, err = zero, e
	}()
	return fn(), nil
}

// Clone copies n. With keep the clone has every constraint of n; without it,
// the clone is a blank node of the same kind holding only the arguments n was
// constructed with (item type, properties, positions, members, condition or
// raw document). Either way the clone is a new identity without annotations.
func Clone[N sureschema.Node](n N, keep bool) N {
	return rewrap(n, n.IR().Clone(keep))
}

// Annotate attaches descriptive metadata to a derivation of n. The original
// node is left untouched.
func Annotate[N sureschema.Node](ann sureschema.Annotations, n N) N {
	return rewrap(n, n.IR().Annotate(ann))
}

// Define is Annotate for top-level definitions: ann.Name is mandatory.
func Define[N sureschema.Node](ann sureschema.Annotations, n N) N {
	if ann.Name == "" {
		fail(&sureschema.NamingError{Detail: "definition requires a name"})
	}
	return Annotate(ann, n)
}

// EnsureNamed names n unless it already answers to a name. Existing
// annotations are kept.
func EnsureNamed[N sureschema.Node](name string, n N) N {
	in := n.IR()
	if in.Name() != "" {
		return n
	}
	var ann sureschema.Annotations
	if in.Annotations != nil {
		ann = *in.Annotations
	}
	ann.Name = name
	return rewrap(n, in.Annotate(ann))
}

// AnnotationsOf returns the annotations carried by n itself, if any.
func AnnotationsOf(n sureschema.Node) (sureschema.Annotations, bool) {
	in := n.IR()
	if in.Annotations == nil {
		return sureschema.Annotations{}, false
	}
	return *in.Annotations, true
}

// NameOf is the definition name n answers to: the fragment of a raw node,
// else its annotation name.
func NameOf(n sureschema.Node) string { return n.IR().Name() }

// KindOf reports the kind of n, looking through Optional and Required.
func KindOf(n sureschema.Node) string { return n.IR().EffectiveKind().String() }

func irs(nodes []sureschema.Node) []*ir.Node {
	out := make([]*ir.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.IR()
	}
	return out
}

// derive applies fn to the constraints of a derivation of n.
func derive(n *ir.Node, fn func(c *ir.Constraints)) *ir.Node {
	d := n.Derive()
	fn(&d.Constraints)
	return d
}

func literal(v any) *js.Literal { return js.Lit(js.DeepCopy(v)) }

// uniqueValues drops repeated values, keeping the first occurrence.
func uniqueValues[T any](vals []T) []any {
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		c := js.DeepCopy(any(v))
		dup := false
		for _, seen := range out {
			if reflect.DeepEqual(seen, c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
