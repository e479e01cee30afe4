package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Inspect and manage procedural memory skills",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		skills := memStore.GetAllSkills()
		for _, sk := range skills {
			fmt.Printf("%s\t%s\t%.0f%%\t%d uses\n", sk.ID, sk.Name, sk.Metrics.SuccessRate()*100, sk.Metrics.TimesUsed)
		}
		return nil
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a skill's full detail as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sk, ok := memStore.GetSkill(args[0])
		if !ok {
			return fmt.Errorf("skill not found: %s", args[0])
		}
		data, err := json.MarshalIndent(sk, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var skillExplainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Explain why a skill matches and how it has performed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		explanation, err := memStore.GenerateSkillExplanation(args[0])
		if err != nil {
			return err
		}
		fmt.Print(explanation)
		return nil
	},
}

var skillRollbackCmd = &cobra.Command{
	Use:   "rollback <id>",
	Short: "Roll a skill back to its previous version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := memStore.RollbackSkill(args[0], nil)
		if !result.Success {
			return fmt.Errorf("rollback failed: %s", result.Reason)
		}
		fmt.Printf("rolled back to version %d\n", result.Version)
		return nil
	},
}

var skillBootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the store with built-in generic skill templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		added := memStore.BootstrapFromTemplates()
		fmt.Printf("added %d template skill(s)\n", len(added))
		return nil
	},
}

var skillCoverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Show coverage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := memStore.GetCoverageStats()
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	skillCmd.AddCommand(skillListCmd, skillShowCmd, skillExplainCmd, skillRollbackCmd, skillBootstrapCmd, skillCoverageCmd)
}
