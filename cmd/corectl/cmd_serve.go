package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ogoldberg/browsecore/internal/logging"
)

var (
	serveDecaySchedule string
	serveSaveSchedule  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the maintenance daemon: periodic skill decay, pruning, and saves",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.Get(logging.CategoryMemory)

		c := cron.New()
		if _, err := c.AddFunc(serveDecaySchedule, func() {
			memStore.ApplySkillDecay()
			pruned := memStore.PruneFailedSkills()
			log.Info("ran skill decay and pruning", zap.Int("pruned", len(pruned)))
		}); err != nil {
			return fmt.Errorf("schedule decay job: %w", err)
		}
		if _, err := c.AddFunc(serveSaveSchedule, func() {
			if err := memStore.Save(); err != nil {
				log.Warn("periodic memory save failed", zap.Error(err))
			}
			if err := orch.SavePreferences(); err != nil {
				log.Warn("periodic preference save failed", zap.Error(err))
			}
			if err := ctStore.Save(); err != nil {
				log.Warn("periodic change history save failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule save job: %w", err)
		}

		c.Start()
		defer c.Stop()
		log.Info("maintenance daemon started",
			zap.String("decaySchedule", serveDecaySchedule),
			zap.String("saveSchedule", serveSaveSchedule))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("maintenance daemon shutting down")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveDecaySchedule, "decay-schedule", "@every 1h", "cron schedule for skill decay and pruning")
	serveCmd.Flags().StringVar(&serveSaveSchedule, "save-schedule", "@every 5m", "cron schedule for periodic persistence")
}
