// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibsearch/internal/search"
	"github.com/pdiddy/bibsearch/internal/secrets"
	"github.com/pdiddy/bibsearch/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "bibsearch/0.1"
	defaultRPS       = 1.0
)

// envKeyReplacer maps "search.limit" to BIBSEARCH_SEARCH_LIMIT.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.limit", search.DefaultLimit)
	v.SetDefault("search.timeout", defaultTimeout)
	v.SetDefault("search.user_agent", defaultUserAgent)
	v.SetDefault("search.requests_per_second", defaultRPS)
	v.SetDefault("search.enable_arxiv", true)
	v.SetDefault("search.enable_crossref", true)
	v.SetDefault("search.enable_dblp", true)
	v.SetDefault("search.crossref_mailto", "")
	v.SetDefault("bib.file", "")
	v.SetDefault("bib.history_db", defaultHistoryDB())
}

func defaultHistoryDB() string {
	return filepath.Join(".bibsearch", "history.db")
}

// addSearchFlags registers the flags shared by commands that run a search.
func addSearchFlags(fs *pflag.FlagSet) {
	fs.Int("limit", search.DefaultLimit, "results requested from each source")
	fs.Duration("timeout", defaultTimeout, "HTTP request timeout")
	fs.String("sources", "", "comma-separated sources to query: arxiv, crossref, dblp (default all)")
	fs.String("mailto", "", "contact address for Crossref's polite pool")
}

// searchFlagKeys maps flag names to the viper keys they override.
var searchFlagKeys = map[string]string{
	"limit":   "search.limit",
	"timeout": "search.timeout",
	"mailto":  "search.crossref_mailto",
}

// bindFlags binds the running command's flags so that only flags the user
// set override the config file.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for name, key := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// loadConfig assembles the configuration from defaults, config file,
// environment, flags, and secrets.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	if f := cmd.Flags().Lookup("sources"); f != nil && f.Value.String() != "" {
		enabled, err := parseSources(f.Value.String())
		if err != nil {
			return cfg, err
		}
		cfg.Search.EnableArxiv = enabled[types.SourceArxiv]
		cfg.Search.EnableCrossref = enabled[types.SourceCrossref]
		cfg.Search.EnableDBLP = enabled[types.SourceDBLP]
	}

	cfg.Search.CrossrefMailto = secrets.Value(loadedSecrets, secrets.KeyCrossrefMailto, cfg.Search.CrossrefMailto)
	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = search.DefaultLimit
	}
	if cfg.Search.Timeout <= 0 {
		cfg.Search.Timeout = defaultTimeout
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = defaultUserAgent
	}
	return cfg, nil
}

func parseSources(list string) (map[types.Source]bool, error) {
	enabled := make(map[types.Source]bool)
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		src, err := types.ParseSource(name)
		if err != nil {
			return nil, err
		}
		enabled[src] = true
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("--sources lists no sources")
	}
	return enabled, nil
}

// newAggregator builds the aggregator for cfg.
func newAggregator(cfg types.SearchConfig) (*search.Aggregator, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	backends := search.NewBackends(client, cfg)
	if len(backends) == 0 {
		return nil, fmt.Errorf("no search sources enabled")
	}
	return search.NewAggregator(backends, log), nil
}
