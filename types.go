package sureschema

import (
	"go.uber.org/zap"

	"github.com/reoring/sureschema/internal/ir"
)

// Node is implemented by every schema node built with the dsl package. Nodes
// are immutable and may be shared freely, including across goroutines.
type Node interface {
	// IR exposes the underlying node to the compiler.
	IR() *ir.Node
}

// Annotations is descriptive metadata attached to a node. Name drives the
// definition name in extracted documents; the other fields are emitted as
// title, description and examples.
type Annotations = ir.Annotations

// RefMethod controls when a node is emitted as a $ref instead of inline.
type RefMethod int

const (
	RefAll      RefMethod = iota // Reference every named node; unseen ones become extra definitions.
	RefProvided                  // Reference only nodes passed as top-level inputs.
	RefNone                      // Inline everything.
)

func (m RefMethod) String() string {
	switch m {
	case RefProvided:
		return "provided"
	case RefNone:
		return "no-refs"
	default:
		return "ref-all"
	}
}

// OnNameConflict controls what happens when two top-level nodes share a name.
type OnNameConflict int

const (
	ConflictError  OnNameConflict = iota // Fail the extraction.
	ConflictRename                       // Suffix later names with _1, _2, ...
)

// OnUnnamed controls how unnamed top-level nodes are handled.
type OnUnnamed int

const (
	UnnamedError      OnUnnamed = iota // Fail the extraction.
	UnnamedIgnore                      // Drop from the input set.
	UnnamedCreateName                  // Name them "Unknown" (suffixed on collision).
	UnnamedLookup                      // Emit only into the lookup table.
)

// ExtractOpt bundles extraction options. The zero value is the strict default:
// RefAll, ConflictError, UnnamedError and no logging.
type ExtractOpt struct {
	RefMethod      RefMethod
	OnNameConflict OnNameConflict
	OnUnnamed      OnUnnamed
	Logger         *zap.Logger
}

func (o ExtractOpt) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
