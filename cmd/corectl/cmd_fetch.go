package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogoldberg/browsecore/internal/orchestrator"
)

var (
	fetchForceTier string
	fetchMaxCost   string
	fetchMaxLatency int64
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a URL through the tiered orchestrator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := orchestrator.Options{
			ForceTier:    orchestrator.Tier(fetchForceTier),
			MaxCostTier:  orchestrator.Tier(fetchMaxCost),
			MaxLatencyMs: fetchMaxLatency,
		}
		result := orch.Fetch(context.Background(), args[0], opts)
		if !result.Success {
			if result.Err != nil {
				return fmt.Errorf("fetch failed: %s (%s)", result.Err.Message, result.Err.Class)
			}
			return fmt.Errorf("fetch failed")
		}
		fmt.Printf("tier=%s bytes=%d attempted=%v cacheHit=%v\n",
			result.Result.Tier, len(result.Result.Content), result.Budget.TiersAttempted, result.Budget.CacheHit)
		return nil
	},
}

var fetchPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show learned per-domain tier preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, pref := range orch.ExportPreferences() {
			fmt.Printf("%s\tprefers=%s\tfailures=%d\tavgResponse=%s\n",
				pref.Domain, pref.PreferredTier, pref.ConsecutiveFailures, pref.AvgResponseTime)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchForceTier, "force-tier", "", "run only this tier")
	fetchCmd.Flags().StringVar(&fetchMaxCost, "max-cost-tier", "", "do not escalate past this tier")
	fetchCmd.Flags().Int64Var(&fetchMaxLatency, "max-latency-ms", 0, "abort escalation past this accumulated latency")
	fetchCmd.AddCommand(fetchPrefsCmd)
}
