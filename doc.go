package sureschema

// Package sureschema provides:
//
// - A node model for describing data shapes once (built with the dsl package)
// - Extraction of node trees into one JSON Schema document with a flat definitions map
// - A stable error taxonomy (ErrDuplicateConstraint, ErrNaming, ...) and the Issues validation error model
// - Compile/Validate/Ensure on top of any Engine (see the validate package)
//
// Design policy:
// - Keep only public APIs in the root package; put the compiler under internal/.
// - Place builders under dsl/, the document type under jsonschema/, and the CLI under cmd/sureschema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  user := dsl.Define(sureschema.Annotations{Name: "User"}, dsl.Object(map[string]sureschema.Node{
//      "name": dsl.String().MinLength(1),
//      "age":  dsl.Number().Optional(),
//  }))
//  ext, err := sureschema.ExtractJSONSchema([]sureschema.Node{user}, sureschema.ExtractOpt{})
//  b, err := json.Marshal(ext.Schema)
//
//  err = sureschema.Validate(ctx, validate.New(), user, value)
//  if iss, ok := sureschema.AsIssues(err); ok { ... }
