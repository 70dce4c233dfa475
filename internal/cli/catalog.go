package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rohmanhakim/legaldata/internal/catalog"
	"github.com/spf13/cobra"
)

var errNoCatalogDir = errors.New("--catalog-dir is required")

var catalogCmd = &cobra.Command{
	Use:   "catalog [site [code]]",
	Short: "List catalogued documents, or print one record",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogDir == "" {
			return errNoCatalogDir
		}
		cat, err := catalog.Open(catalogDir)
		if err != nil {
			return err
		}
		defer cat.Close()

		if len(args) == 2 {
			return printRecord(cmd, cat, args[0], args[1])
		}
		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		return printSummaries(cmd, cat, filter)
	},
}

func printSummaries(cmd *cobra.Command, cat *catalog.Catalog, filter string) error {
	rows, err := cat.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	incomplete := 0
	for _, row := range rows {
		mark := ""
		if !row.Complete() {
			mark = " (incomplete)"
			incomplete++
		}
		fmt.Fprintf(out, "%s\t%s\t%d/%d\t%s%s\n", row.Site, row.Code, row.SavedCount, row.DownloadCount, row.Title, mark)
	}
	fmt.Fprintf(out, "%d documents, %d incomplete\n", len(rows), incomplete)
	return nil
}

func printRecord(cmd *cobra.Command, cat *catalog.Catalog, siteName string, code string) error {
	rec, err := cat.Get(cmd.Context(), siteName, code)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), rec)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
