// Command sureschema bundles JSON Schema files into one definitions document
// and validates data against them.
//
// Usage:
//
//	sureschema bundle [--ref-method ref-all|provided|no-refs] [--on-conflict error|rename] [--format json|yaml] [-o out] file...
//	sureschema validate --schema schema.json [--definition Name] data.json...
//	sureschema version
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string

	logger = zap.NewNop()
	cfg    = defaultConfig()
)

// errInvalid marks a validation run that found issues. It exits with 1
// without printing a second error line.
var errInvalid = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:           "sureschema",
	Short:         "Bundle and validate JSON Schema definitions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l

		c, err := loadConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = c
		logger.Debug("config loaded", zap.String("path", configPath), zap.Any("config", cfg))
		return cfg.apply()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".sureschema.yaml", "config file")
	rootCmd.AddCommand(bundleCmd, validateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
