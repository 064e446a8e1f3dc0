package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirigent/internal/audit"
	"dirigent/internal/engine"
	"dirigent/internal/signal"
)

var (
	resolveMode    string
	resolveJSON    bool
	resolveAuditDB string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [project-root] [task text...]",
	Short: "Resolve a directive bundle for a project and task",
	Long: `Collects signals from the project root and the task text, matches
them against the catalog, and prints the resolved bundle.

Example:
  dirigent resolve ./myproject "add integration tests for the payment flow"`,
	Args: minimumArgs(2),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveMode, "mode", "", "explicit mode, overrides keyword inference")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "emit the bundle as JSON")
	resolveCmd.Flags().StringVar(&resolveAuditDB, "audit-db", "", "record the resolution to this SQLite database")
}

func runResolve(cmd *cobra.Command, args []string) error {
	projectRoot := args[0]
	taskText := strings.Join(args[1:], " ")

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	collector := signal.NewCollector(logger)
	sig, err := collector.Collect(projectRoot, taskText, resolveMode)
	if err != nil {
		return &invalidArgsError{err: err}
	}

	start := time.Now()
	eng := engine.New(logger)
	bundle, err := eng.Resolve(cmd.Context(), cat, sig)
	if err != nil {
		return err
	}
	took := time.Since(start)

	auditPath := resolveAuditDB
	if auditPath == "" {
		auditPath = cfg.AuditDB
	}
	if auditPath != "" {
		recorder, err := audit.Open(auditPath, logger)
		if err != nil {
			logger.Warn("audit disabled", zap.Error(err))
		} else {
			defer recorder.Close()
			recorder.Record(cmd.Context(), projectRoot, resolveMode, bundle, took)
		}
	}

	if resolveJSON {
		out, err := bundle.MarshalIndent()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	fmt.Fprint(os.Stdout, renderBundle(cat, bundle))
	return nil
}
