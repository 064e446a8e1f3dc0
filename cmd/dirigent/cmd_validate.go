package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalog and report every error",
	Long: `Loads the catalog directory and runs the full validation pass:
ID uniqueness, dependency cycles, broken references, and replacement
chains. All errors are reported together so the catalog can be fixed
in one pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "catalog OK: %d units\n", cat.Len())
		return nil
	},
}
