// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibsearch/internal/library"
	"github.com/pdiddy/bibsearch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List citations written by cite",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		title, _ := cmd.Flags().GetString("title")
		sourceName, _ := cmd.Flags().GetString("source")
		asJSON, _ := cmd.Flags().GetBool("json")

		opts := library.ListOptions{Limit: limit, Title: title}
		if sourceName != "" {
			src, err := types.ParseSource(sourceName)
			if err != nil {
				return err
			}
			opts.Source = src
		}

		store, err := library.Open(viper.GetString("bib.history_db"))
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		formatHistory(entries, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().String("source", "", "only entries from this source")
	historyCmd.Flags().String("title", "", "only entries whose title contains this text")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(historyCmd)
}

func formatHistory(entries []library.Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No citations recorded.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-24s %-8s %s\n", e.AddedAt.Local().Format("2006-01-02"), e.Key, e.Record.Source, e.Record.Title)
		fmt.Fprintf(w, "            %s\n", e.BibPath)
	}
}
