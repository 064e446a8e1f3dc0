package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dirigent/internal/catalog"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the catalog directory and hot-reload on change",
	Long: `Loads the catalog, then watches the directory for changes. Edits
that validate are swapped in atomically; edits that fail validation are
logged and the previous catalog stays in service. Runs until SIGINT or
SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		store := catalog.NewStore(cat)
		loader := catalog.NewLoader(logger)
		watcher, err := catalog.NewWatcher(cfg.CatalogDir, loader, store, logger)
		if err != nil {
			return err
		}
		watcher.SetDebounce(cfg.WatchDebounce())

		if err := watcher.Start(cmd.Context()); err != nil {
			return err
		}
		defer watcher.Stop()

		fmt.Fprintf(os.Stdout, "watching %s (%d units loaded), ctrl-c to stop\n",
			cfg.CatalogDir, cat.Len())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-cmd.Context().Done():
		}

		reloads, rejected := watcher.Stats()
		fmt.Fprintf(os.Stdout, "stopped: %d reloads, %d rejected\n", reloads, rejected)
		return nil
	},
}
