// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibsearch/internal/bibfile"
	"github.com/pdiddy/bibsearch/internal/cite"
	"github.com/pdiddy/bibsearch/internal/library"
	"github.com/pdiddy/bibsearch/internal/search"
	"github.com/pdiddy/bibsearch/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite [query]...",
	Short: "Search and append a BibTeX entry for one result",
	Long: `Cite runs a search (or reads a query file saved with "search --save"),
takes the result chosen with --pick (or asks for one), and appends a BibTeX entry for it to the
bibliography. The citation key is the first author's surname, the year, and
the first significant title word. A key already present in the file gets a
letter suffix (b, c, ...). Each written entry is recorded in the history
database.`,
	RunE: runCite,
}

func init() {
	addSearchFlags(citeCmd.Flags())
	citeCmd.Flags().Int("pick", 0, "1-based index of the result to cite (default: prompt)")
	citeCmd.Flags().String("from", "", "read results from a saved query file instead of searching")
	citeCmd.Flags().String("bib", "", "target .bib file (default: the only .bib in the working directory, else references.bib)")
	citeCmd.Flags().Bool("dry-run", false, "print the entry without writing it")

	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	pick, _ := cmd.Flags().GetInt("pick")
	from, _ := cmd.Flags().GetString("from")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if from == "" && len(args) == 0 {
		return fmt.Errorf("cite needs a query or --from")
	}
	if err := bindFlags(cmd, map[string]string{"bib": "bib.file"}); err != nil {
		return err
	}

	records, cfg, err := citeCandidates(cmd, args, from)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no results to cite")
	}
	search.FormatTable(records, cmd.ErrOrStderr())
	if pick == 0 {
		if pick, err = promptPick(cmd.InOrStdin(), cmd.ErrOrStderr(), len(records)); err != nil {
			return err
		}
	}
	if pick < 1 || pick > len(records) {
		return fmt.Errorf("choice %d out of range: %d results", pick, len(records))
	}
	rec := records[pick-1]

	c, err := cite.Synthesize(rec)
	if err != nil {
		return fmt.Errorf("citing result %d: %w", pick, err)
	}

	bibPath, err := bibfile.Discover(".", cfg.Bib.File)
	if err != nil {
		return err
	}
	taken, err := bibfile.Keys(bibPath)
	if err != nil {
		return err
	}
	if key := bibfile.UniqueKey(c.Key, taken); key != c.Key {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: key %s already in %s, using %s\n", c.Key, bibPath, key)
		entry, err := cite.Render(rec, key)
		if err != nil {
			return err
		}
		c = cite.Citation{Key: key, Entry: entry}
	}

	if dryRun {
		fmt.Fprint(cmd.OutOrStdout(), c.Entry)
		return nil
	}

	if err := bibfile.Append(bibPath, c.Entry); err != nil {
		return err
	}
	recordHistory(cmd.Context(), cmd.ErrOrStderr(), cfg.Bib.HistoryDB, library.Entry{
		Key:     c.Key,
		Record:  rec,
		BibPath: bibPath,
		AddedAt: time.Now(),
	})
	fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", c.Key, bibPath)
	return nil
}

// promptPick asks on w for a result number between 1 and n and reads the
// answer from r.
func promptPick(r io.Reader, w io.Writer, n int) (int, error) {
	fmt.Fprintf(w, "cite which result? [1-%d]: ", n)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("reading choice: %w", err)
	}
	pick, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
	}
	return pick, nil
}

// citeCandidates returns the records to choose from: the saved query file
// when from is set, otherwise a fresh search for args.
func citeCandidates(cmd *cobra.Command, args []string, from string) ([]types.Record, types.Config, error) {
	if from != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, cfg, err
		}
		qf, err := search.ReadQueryFile(from)
		if err != nil {
			return nil, cfg, err
		}
		return qf.Results, cfg, nil
	}

	cfg, agg, err := searchSetup(cmd)
	if err != nil {
		return nil, cfg, err
	}
	_, records, err := runSession(cmd.Context(), agg, strings.Join(args, " "), cfg.Search.Limit, cmd.ErrOrStderr())
	return records, cfg, err
}

// recordHistory adds e to the history database. Failures are reported as
// warnings since the entry is already in the .bib file.
func recordHistory(ctx context.Context, w io.Writer, dbPath string, e library.Entry) {
	if dbPath == "" {
		return
	}
	store, err := library.Open(dbPath)
	if err != nil {
		fmt.Fprintf(w, "warning: opening history: %v\n", err)
		return
	}
	defer store.Close()

	prior, err := store.FindByIdentifier(ctx, e.Record.Source, e.Record.Identifier)
	if err != nil {
		log.WithError(err).Warn("history lookup failed")
	} else if prior != nil {
		fmt.Fprintf(w, "warning: %s was cited before as %s in %s (%s)\n",
			e.Record.Identifier, prior.Key, prior.BibPath, prior.AddedAt.Format("2006-01-02"))
	}

	if err := store.Add(ctx, e); err != nil {
		fmt.Fprintf(w, "warning: recording history: %v\n", err)
	}
}
