// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for bibsearch.
package types

import (
	"fmt"
	"strings"
)

// Source tags which bibliographic service produced a record.
type Source string

const (
	SourceArxiv    Source = "arxiv"
	SourceCrossref Source = "crossref"
	SourceDBLP     Source = "dblp"
)

// AllSources lists the supported sources in their default query order.
var AllSources = []Source{SourceArxiv, SourceCrossref, SourceDBLP}

// ParseSource maps a user-supplied name to a Source.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceArxiv:
		return SourceArxiv, nil
	case SourceCrossref:
		return SourceCrossref, nil
	case SourceDBLP:
		return SourceDBLP, nil
	}
	return "", fmt.Errorf("unknown source %q (want arxiv, crossref, or dblp)", s)
}

// UnknownYear is stored in Record.Year when no date could be recovered.
const UnknownYear = "????"

// Record is the source-agnostic bibliographic record every backend produces.
// Records are values: once a backend returns one it is never modified.
type Record struct {
	// Source identifies which backend produced the record.
	Source Source `json:"source" yaml:"source"`

	// Title is whitespace-collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors are display names in source order ("Surname" or
	// "Surname, Given"). Never nil.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is four digits or UnknownYear.
	Year string `json:"year" yaml:"year"`

	// Identifier is an arXiv id (arxiv), a DOI (crossref), or a DOI or URL (dblp).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Venue is the journal or conference name; empty when the source has none.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// NewRecord builds a Record, collapsing whitespace in the title and
// defaulting missing authors and year.
func NewRecord(src Source, title string, authors []string, year, identifier, venue string) Record {
	a := make([]string, 0, len(authors))
	for _, name := range authors {
		if name = strings.TrimSpace(name); name != "" {
			a = append(a, name)
		}
	}
	if year == "" {
		year = UnknownYear
	}
	return Record{
		Source:     src,
		Title:      strings.Join(strings.Fields(title), " "),
		Authors:    a,
		Year:       year,
		Identifier: strings.TrimSpace(identifier),
		Venue:      strings.TrimSpace(venue),
	}
}
