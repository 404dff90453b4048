// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibsearch/pkg/types"
)

// QueryFile is the on-disk representation of a finished search session.
// A saved session can be reloaded to pick a citation without re-querying
// the services.
type QueryFile struct {
	Query   string         `yaml:"query"`
	Limit   int            `yaml:"limit"`
	Sources []types.Source `yaml:"sources"`
	Results []types.Record `yaml:"results"`
	Summary QuerySummary   `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Session       string    `yaml:"session"`
	Total         int       `yaml:"total"`
	BackendErrors []string  `yaml:"backend_errors,omitempty"`
	Timestamp     time.Time `yaml:"timestamp"`
}

// NewQueryFile captures the current state of s.
func NewQueryFile(s *Session, limit int, backends []Backend) *QueryFile {
	records, _ := s.Snapshot()
	sources := make([]types.Source, len(backends))
	for i, b := range backends {
		sources[i] = b.Source()
	}
	return &QueryFile{
		Query:   s.Query,
		Limit:   limit,
		Sources: sources,
		Results: records,
		Summary: QuerySummary{
			Session:       s.ID,
			Total:         len(records),
			BackendErrors: s.ErrorSummary(),
			Timestamp:     time.Now().UTC(),
		},
	}
}

// WriteQueryFile saves qf to a YAML file.
func WriteQueryFile(path string, qf *QueryFile) error {
	data, err := yaml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	for i, r := range qf.Results {
		if r.Authors == nil {
			qf.Results[i].Authors = []string{}
		}
	}
	return &qf, nil
}
