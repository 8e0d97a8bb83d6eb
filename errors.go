package sureschema

import (
	"errors"
	"fmt"
	"strings"
)

// Build and extraction error classes. Every error returned or raised by this
// module for a schema problem matches exactly one of them with errors.Is.
var (
	// ErrDuplicateConstraint reports a constraint set twice on one node chain.
	ErrDuplicateConstraint = errors.New("duplicate constraint")
	// ErrConflictingConstraint reports two constraints that cannot coexist.
	ErrConflictingConstraint = errors.New("conflicting constraint")
	// ErrRange reports a violated size ordering or an empty combinator.
	ErrRange = errors.New("range error")
	// ErrNaming reports an unnamed node under a strict naming policy or a
	// definition name collision under a strict conflict policy.
	ErrNaming = errors.New("naming error")
	// ErrReference reports a reference that cannot be resolved.
	ErrReference = errors.New("reference error")
)

// ConstraintError is raised by the DSL builders at the offending call.
type ConstraintError struct {
	Constraint string
	Kind       error // ErrDuplicateConstraint, ErrConflictingConstraint or ErrRange
	Detail     string
}

func (e *ConstraintError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%v: constraint %s already set", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Kind }

// NewDuplicateConstraint reports that constraint is already set.
func NewDuplicateConstraint(constraint string) *ConstraintError {
	return &ConstraintError{Constraint: constraint, Kind: ErrDuplicateConstraint}
}

// NewConflictingConstraint reports that constraint cannot be combined with other.
func NewConflictingConstraint(constraint, other string) *ConstraintError {
	return &ConstraintError{
		Constraint: constraint,
		Kind:       ErrConflictingConstraint,
		Detail:     fmt.Sprintf("cannot set %s when %s is set", constraint, other),
	}
}

// NewRangeError reports an ordering violation on constraint.
func NewRangeError(constraint, detail string) *ConstraintError {
	return &ConstraintError{Constraint: constraint, Kind: ErrRange, Detail: detail}
}

// NamingError is returned by extraction when naming policies are violated.
type NamingError struct {
	Name   string
	Detail string
}

func (e *NamingError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v: %s", ErrNaming, e.Detail)
	}
	return fmt.Sprintf("%v: %s %q", ErrNaming, e.Detail, e.Name)
}

func (e *NamingError) Unwrap() error { return ErrNaming }

// ReferenceError is returned when a reference target does not exist.
type ReferenceError struct {
	Ref    string
	Detail string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v: %s %q", ErrReference, e.Detail, e.Ref)
}

func (e *ReferenceError) Unwrap() error { return ErrReference }

// Issue codes reported by validation engines.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodePattern        = "pattern"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidConst   = "invalid_const"
	CodeInvalidFormat  = "invalid_format"
	CodeNotMultipleOf  = "not_multiple_of"
	CodeTooFewItems    = "too_few_items"
	CodeTooManyItems   = "too_many_items"
	CodeNotUnique      = "not_unique"
	CodeContains       = "contains"
	CodeNoMatch        = "no_match"
	CodeAdditionalItem = "additional_item"
)

// Issue is one structured validation failure.
type Issue struct {
	Path     string `json:"path"`              // JSON Pointer of the offending value (for example: /items/2/price).
	Code     string `json:"code"`              // One of the codes listed above.
	Keyword  string `json:"keyword,omitempty"` // Schema keyword that failed (for example: minLength).
	Message  string `json:"message"`
	Expected any    `json:"expected,omitempty"` // Constraint value from the schema.
	Actual   any    `json:"actual,omitempty"`   // Offending value (or the measured quantity, such as a length).
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
