package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	sureschema "github.com/reoring/sureschema"
	"github.com/reoring/sureschema/dsl"
	"github.com/reoring/sureschema/internal/load"
	js "github.com/reoring/sureschema/jsonschema"
)

var bundleFlags struct {
	refMethod  string
	onConflict string
	format     string
	out        string
}

var bundleCmd = &cobra.Command{
	Use:   "bundle file...",
	Short: "Merge schema files into one definitions document",
	Long: `Reads JSON or YAML schema files and writes a single document whose
definitions hold every input.

A file that only carries "definitions" contributes each of them under its own
name. Any other file becomes one definition named after the file (without
extension); its own definitions are merged into the output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBundle,
}

func init() {
	f := bundleCmd.Flags()
	f.StringVar(&bundleFlags.refMethod, "ref-method", "", "reference policy: ref-all, provided or no-refs")
	f.StringVar(&bundleFlags.onConflict, "on-conflict", "", "name conflicts: error or rename")
	f.StringVar(&bundleFlags.format, "format", "", "output format: json or yaml")
	f.StringVarP(&bundleFlags.out, "output", "o", "", "output file (default stdout)")
}

func runBundle(cmd *cobra.Command, args []string) error {
	refMethod, err := parseRefMethod(orDefault(bundleFlags.refMethod, cfg.RefMethod))
	if err != nil {
		return err
	}
	onConflict, err := parseConflict(orDefault(bundleFlags.onConflict, cfg.OnConflict))
	if err != nil {
		return err
	}
	format, err := load.ParseFormat(orDefault(bundleFlags.format, cfg.Format))
	if err != nil {
		return err
	}

	var nodes []sureschema.Node
	for _, path := range args {
		doc, err := load.SchemaFile(path)
		if err != nil {
			return err
		}
		got := schemaNodes(path, doc)
		logger.Debug("loaded schema file", zap.String("path", path), zap.Int("definitions", len(got)))
		nodes = append(nodes, got...)
	}

	ext, err := sureschema.ExtractJSONSchema(nodes, sureschema.ExtractOpt{
		RefMethod:      refMethod,
		OnNameConflict: onConflict,
		OnUnnamed:      sureschema.UnnamedError,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	for name, n := range ext.Duplicates {
		logger.Info("renamed conflicting definitions", zap.String("name", name), zap.Int("count", n))
	}

	if bundleFlags.out == "" {
		return writeSchema(cmd.OutOrStdout(), ext.Schema, format)
	}
	f, err := os.Create(bundleFlags.out)
	if err != nil {
		return err
	}
	return writeAndClose(f, ext.Schema, format)
}

// writeAndClose writes s to wc and reports the close error of a successful
// write.
func writeAndClose(wc io.WriteCloser, s *js.Schema, f load.Format) error {
	if err := writeSchema(wc, s, f); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// schemaNodes turns one schema file into extraction inputs.
func schemaNodes(path string, doc *js.Schema) []sureschema.Node {
	if isDefinitionsOnly(doc) {
		var out []sureschema.Node
		for _, name := range sortedNames(doc.Definitions) {
			out = append(out, dsl.RawFragment(doc, name))
		}
		return out
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []sureschema.Node{dsl.EnsureNamed(base, dsl.Raw(doc))}
}

func isDefinitionsOnly(doc *js.Schema) bool {
	m := doc.ToMap()
	_, ok := m["definitions"]
	return ok && len(m) == 1
}

func writeSchema(w io.Writer, s *js.Schema, f load.Format) error {
	if f == load.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
