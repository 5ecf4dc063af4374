package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <app-id-or-url>",
	Short: "Analyze one app's reviews for unmet user needs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer := newAnalyzer()

		report, err := analyzer.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
