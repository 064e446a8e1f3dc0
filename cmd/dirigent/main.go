// dirigent resolves a priority-ordered bundle of directive units
// (agent persona, skills, rules, workflow steps) for an AI coding
// assistant from a catalog of YAML definitions and the signals read
// from a target project.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dirigent/internal/catalog"
	"dirigent/internal/config"
)

// Exit codes of the CLI wrapper.
const (
	exitOK          = 0
	exitInvalidCat  = 1
	exitInvalidArgs = 2
	exitInternal    = 3
)

var (
	// Global flags
	verbose    bool
	configPath string
	catalogDir string

	// Loaded config and logger, set up in PersistentPreRunE.
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "dirigent",
	Short: "dirigent - context-driven configuration resolution engine",
	Long: `dirigent selects a consistent, non-contradictory, priority-ordered
set of directives (agent persona + skills + rules + workflow steps)
for an AI coding assistant.

It reads signals from a target project (files present, declared tech
stack, keywords in the task request), matches them against a validated
catalog of directive units, closes the set under dependencies, redirects
deprecated units to their replacements, applies authoritative override,
and emits the final ordered bundle.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if catalogDir != "" {
			cfg.CatalogDir = catalogDir
		}

		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(levelFor(cfg.LogLevel))
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func levelFor(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "dirigent.json", "path to config file")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "", "catalog directory (overrides config)")

	// Flag parse errors are caller mistakes and exit 2, not 3.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &invalidArgsError{err: err}
	})

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
}

// minimumArgs is cobra.MinimumNArgs with the error marked as a caller
// mistake so it maps to the invalid-arguments exit code.
func minimumArgs(n int) cobra.PositionalArgs {
	inner := cobra.MinimumNArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := inner(cmd, args); err != nil {
			return &invalidArgsError{err: err}
		}
		return nil
	}
}

// loadCatalog loads and validates the configured catalog directory.
// Validation failures keep their own exit code; everything else from
// the loader (missing dir, unreadable path) is a caller mistake.
func loadCatalog() (*catalog.Catalog, error) {
	loader := catalog.NewLoader(logger)
	cat, err := loader.Load(cfg.CatalogDir)
	if err != nil {
		var verrs *catalog.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, err
		}
		return nil, &invalidArgsError{err: err}
	}
	return cat, nil
}

// exitCodeFor maps an error to the CLI exit code contract: catalog
// validation failures exit 1, invalid arguments (bad project root,
// bad flags) exit 2, internal invariant violations and anything else
// exit 3 so callers never mistake an engine bug for their own input.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	var verrs *catalog.ValidationErrors
	if errors.As(err, &verrs) {
		return exitInvalidCat
	}
	var argErr *invalidArgsError
	if errors.As(err, &argErr) {
		return exitInvalidArgs
	}
	return exitInternal
}

// invalidArgsError marks caller mistakes (missing project root, etc.).
type invalidArgsError struct {
	err error
}

func (e *invalidArgsError) Error() string { return e.err.Error() }
func (e *invalidArgsError) Unwrap() error { return e.err }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
