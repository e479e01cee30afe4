package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogoldberg/browsecore/internal/changetracker"
)

var (
	diffURL         string
	diffLanguage    string
	diffIgnoreFlags []string
	diffOnlyFlags   []string
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.json> <new.json>",
	Short: "Compute a field-level change report between two JSON snapshots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldObj, err := readJSONObject(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		newObj, err := readJSONObject(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}

		report := ctStore.Track(oldObj, newObj, changetracker.Options{
			URL:          diffURL,
			Language:     diffLanguage,
			IgnoreFields: diffIgnoreFlags,
			OnlyFields:   diffOnlyFlags,
		})
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var diffHistoryCmd = &cobra.Command{
	Use:   "history <url>",
	Short: "Show stored change history for a tracked URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist := ctStore.GetHistory(args[0])
		data, err := json.MarshalIndent(hist, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func readJSONObject(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func init() {
	diffCmd.Flags().StringVar(&diffURL, "url", "", "persist this report into that URL's history")
	diffCmd.Flags().StringVar(&diffLanguage, "language", "", "language for category/duration detection")
	diffCmd.Flags().StringSliceVar(&diffIgnoreFlags, "ignore", nil, "field paths/prefixes to ignore")
	diffCmd.Flags().StringSliceVar(&diffOnlyFlags, "only", nil, "restrict diffing to these field paths/prefixes")
	diffCmd.AddCommand(diffHistoryCmd)
}
