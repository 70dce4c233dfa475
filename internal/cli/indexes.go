package cmd

import (
	"fmt"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "List the index pages of a site",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := adapterFactory(siteName, &metadata.NoopSink{})
		if err != nil {
			return err
		}
		for _, u := range adapter.IndexURLs() {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}
