package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/marktron/app-gaps/internal/pipeline"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <app-id-or-url>",
	Short: "Print App Store metadata for an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, err := pipeline.ExtractAppID(args[0])
		if err != nil {
			return err
		}

		info, err := newStoreClient().Lookup(cmd.Context(), appID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
