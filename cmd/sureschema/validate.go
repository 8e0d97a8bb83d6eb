package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/internal/load"
	"github.com/reoring/sureschema/validate"
)

var validateFlags struct {
	schema     string
	definition string
	maxIssues  int
}

var validateCmd = &cobra.Command{
	Use:   "validate --schema file [--definition name] data...",
	Short: "Validate JSON or YAML data against a schema",
	Long: `Validates each data file against the schema. With --definition the data
is checked against definitions/<name> of the schema document.

Exits with status 1 when any file has issues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVarP(&validateFlags.schema, "schema", "s", "", "schema file (JSON or YAML)")
	f.StringVarP(&validateFlags.definition, "definition", "d", "", "definition to validate against")
	f.IntVar(&validateFlags.maxIssues, "max-issues", 0, "stop after this many issues per file (0: config or unlimited)")
	_ = validateCmd.MarkFlagRequired("schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := load.SchemaFile(validateFlags.schema)
	if err != nil {
		return err
	}
	maxIssues := validateFlags.maxIssues
	if maxIssues == 0 {
		maxIssues = cfg.MaxIssues
	}
	engine := validate.New(validate.WithMaxIssues(maxIssues), validate.WithLogger(logger))
	v, err := engine.CompileSchema(doc, validateFlags.definition)
	if err != nil {
		return fmt.Errorf("compile %s: %w", validateFlags.schema, err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		data, err := load.File(path)
		if err != nil {
			return err
		}
		err = v.Validate(cmd.Context(), data)
		if err == nil {
			fmt.Fprintf(out, "%s: ok\n", path)
			continue
		}
		iss, ok := sureschema.AsIssues(err)
		if !ok {
			return err
		}
		failed++
		logger.Debug("validation issues", zap.String("path", path), zap.Int("count", len(iss)))
		for _, it := range iss {
			fmt.Fprintf(out, "%s: %s: %s\n", path, it.Path, it.Message)
		}
	}
	if failed > 0 {
		return errInvalid
	}
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
