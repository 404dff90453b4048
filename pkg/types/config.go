// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every backend.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibsearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for a search session.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Limit is the number of results requested from each source (default 20).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// EnableArxiv controls whether the arXiv backend is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv" mapstructure:"enable_arxiv"`

	// EnableCrossref controls whether the Crossref backend is used.
	EnableCrossref bool `json:"enable_crossref" yaml:"enable_crossref" mapstructure:"enable_crossref"`

	// EnableDBLP controls whether the DBLP backend is used.
	EnableDBLP bool `json:"enable_dblp" yaml:"enable_dblp" mapstructure:"enable_dblp"`

	// CrossrefMailto is sent as the mailto parameter for Crossref's polite pool.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty" mapstructure:"crossref_mailto"`

	// RequestsPerSecond caps the request rate to each source (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// BibConfig holds settings for where citations are written.
type BibConfig struct {
	// File is the target .bib file. Empty means discover one in the working
	// directory.
	File string `json:"file" yaml:"file" mapstructure:"file"`

	// HistoryDB is the SQLite database recording past citations.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`
}

// Config groups all bibsearch settings.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Bib    BibConfig    `json:"bib" yaml:"bib" mapstructure:"bib"`
}
