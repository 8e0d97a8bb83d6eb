// Package validate is a JSON Schema engine for the documents produced by
// sureschema extraction. It implements sureschema.Engine.
//
// It understands the draft-07 keywords the extractor emits, resolves local
// #/definitions/ references and checks the common string formats. Remote
// references and keywords outside that set are ignored.
package validate

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	sureschema "github.com/reoring/sureschema"
	js "github.com/reoring/sureschema/jsonschema"
)

// Engine compiles documents into validators. It is safe for concurrent use.
type Engine struct {
	formats   map[string]FormatFunc
	maxIssues int
	log       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithFormat registers (or replaces) the checker for a format name.
func WithFormat(name string, fn FormatFunc) Option {
	return func(e *Engine) { e.formats[name] = fn }
}

// WithMaxIssues stops validation after n issues. n <= 0 means unlimited.
func WithMaxIssues(n int) Option {
	return func(e *Engine) { e.maxIssues = n }
}

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an engine with the built-in format checkers.
func New(opts ...Option) *Engine {
	e := &Engine{formats: defaultFormats(), log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

var _ sureschema.Engine = (*Engine)(nil)

// Compile implements sureschema.Engine.
func (e *Engine) Compile(doc *js.Schema, definition string) (sureschema.Validator, error) {
	return e.CompileSchema(doc, definition)
}

// CompileSchema is Compile returning the concrete validator.
func (e *Engine) CompileSchema(doc *js.Schema, definition string) (*Validator, error) {
	if doc == nil {
		return nil, fmt.Errorf("validate: nil document")
	}
	root := doc
	if definition != "" {
		def, ok := doc.Definitions[definition]
		if !ok {
			return nil, &sureschema.ReferenceError{Ref: js.DefinitionsPrefix + definition, Detail: "definition not found"}
		}
		root = def
	}
	v := &Validator{
		doc:       doc,
		root:      root,
		patterns:  map[string]*regexp.Regexp{},
		formats:   e.formats,
		maxIssues: e.maxIssues,
	}
	var err error
	walk(doc, func(s *js.Schema) bool {
		if err != nil {
			return false
		}
		if s.Ref != "" {
			if _, rerr := v.resolve(s.Ref); rerr != nil {
				err = rerr
				return false
			}
		}
		if s.Pattern != "" {
			if _, ok := v.patterns[s.Pattern]; !ok {
				re, cerr := regexp.Compile(s.Pattern)
				if cerr != nil {
					err = fmt.Errorf("validate: pattern %q: %w", s.Pattern, cerr)
					return false
				}
				v.patterns[s.Pattern] = re
			}
		}
		if s.Format != "" {
			if _, ok := e.formats[s.Format]; !ok {
				e.log.Debug("format not checked", zap.String("format", s.Format))
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if err := checkRefCycles(v, root); err != nil {
		return nil, err
	}
	return v, nil
}
