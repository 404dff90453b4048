// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibsearch/internal/search"
	"github.com/pdiddy/bibsearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search arXiv, Crossref, and DBLP for papers",
	Long: `Search sends the query to every enabled source at once and prints progress
as each source answers. When all sources have settled the merged results are
printed in the order they arrived. A failing source is reported as a warning
and does not stop the others. Press Ctrl-C to stop waiting and keep what has
arrived so far.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd.Flags())
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML")
	searchCmd.Flags().String("save", "", "write the results to a YAML query file")
	searchCmd.Flags().Bool("quiet", false, "suppress progress output")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	if asJSON && asCSL {
		return fmt.Errorf("--json and --csl are mutually exclusive")
	}
	savePath, _ := cmd.Flags().GetString("save")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg, agg, err := searchSetup(cmd)
	if err != nil {
		return err
	}

	var progressOut io.Writer = cmd.ErrOrStderr()
	if quiet {
		progressOut = io.Discard
	}
	sess, records, err := runSession(cmd.Context(), agg, strings.Join(args, " "), cfg.Search.Limit, progressOut)
	if err != nil {
		return err
	}

	if savePath != "" {
		qf := search.NewQueryFile(sess, cfg.Search.Limit, agg.Backends())
		if err := search.WriteQueryFile(savePath, qf); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %d results to %s\n", len(records), savePath)
	}

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		return search.FormatJSON(records, out)
	case asCSL:
		return search.FormatCSL(records, out)
	default:
		search.FormatTable(records, out)
		return nil
	}
}

// searchSetup loads the configuration for a searching command and builds
// its aggregator.
func searchSetup(cmd *cobra.Command) (types.Config, *search.Aggregator, error) {
	if err := bindFlags(cmd, searchFlagKeys); err != nil {
		return types.Config{}, nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	agg, err := newAggregator(cfg.Search)
	if err != nil {
		return cfg, nil, err
	}
	log.WithField("sources", search.SourceNames(agg.Backends())).Debug("search configured")
	return cfg, agg, nil
}

// runSession runs query to completion, reporting progress on w. An
// interrupt abandons the session and returns the results merged so far.
// Source failures never fail the run.
func runSession(ctx context.Context, agg *search.Aggregator, query string, limit int, w io.Writer) (*search.Session, []types.Record, error) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(w, "searching %s for %q\n", search.SourceNames(agg.Backends()), query)
	sess := agg.Start(ctx, query, limit, newProgress(w, len(agg.Backends())))

	records, err := sess.Wait(sigCtx)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, search.ErrAbandoned) {
			return sess, nil, err
		}
		sess.Abandon()
		records, _ = sess.Snapshot()
		fmt.Fprintf(w, "warning: search interrupted; keeping %d results\n", len(records))
		return sess, records, nil
	}

	if errs := sess.Errors(); len(errs) > 0 && len(errs) == len(agg.Backends()) {
		fmt.Fprintln(w, "warning: every source failed")
	}
	return sess, records, nil
}
