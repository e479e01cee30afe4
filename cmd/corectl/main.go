// Package main implements corectl, the command-line front end for
// browsecore: skill memory inspection, tiered fetches, change-tracking
// diffs, and a long-running maintenance daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogoldberg/browsecore/internal/changetracker"
	"github.com/ogoldberg/browsecore/internal/config"
	"github.com/ogoldberg/browsecore/internal/logging"
	"github.com/ogoldberg/browsecore/internal/memory"
	"github.com/ogoldberg/browsecore/internal/orchestrator"
)

var (
	configPath string
	debug      bool

	cfg      *config.Config
	memStore *memory.Store
	orch     *orchestrator.Orchestrator
	ctStore  *changetracker.Store
)

var rootCmd = &cobra.Command{
	Use:   "corectl",
	Short: "browsecore - adaptive browsing intelligence core CLI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if debug {
			cfg.Logging.DebugMode = true
		}
		if err := logging.Configure(cfg.Logging.DebugMode); err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}

		memStore = memory.New(cfg.Memory)
		if err := memStore.Initialize(); err != nil {
			return err
		}

		orch = orchestrator.New(cfg.Orchestrator, nil)
		if err := orch.LoadPreferences(); err != nil {
			return err
		}

		ctStore = changetracker.New(cfg.ChangeTracker)
		if err := ctStore.Initialize(); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if memStore != nil {
			_ = memStore.Save()
		}
		if orch != nil {
			_ = orch.SavePreferences()
		}
		if ctStore != nil {
			_ = ctStore.Save()
		}
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".browsecore/config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
