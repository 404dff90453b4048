// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite derives a citation key and a BibTeX entry from a selected
// types.Record. Both are pure functions of the record.
package cite

import (
	"fmt"
	"strings"

	"github.com/pdiddy/bibsearch/internal/normalize"
	"github.com/pdiddy/bibsearch/pkg/types"
)

const (
	// arxivJournal is the journal label used for arXiv records.
	arxivJournal = "arXiv preprint"

	// unknownVenue is used when a record carries no venue.
	unknownVenue = "Unknown"
)

// MalformedRecordError reports a record that lacks a field the entry needs.
type MalformedRecordError struct {
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: missing %s", e.Field)
}

// Citation is a synthesized key and its BibTeX entry.
type Citation struct {
	Key   string
	Entry string
}

// Key returns the citation key for r: the cleaned first-author surname
// ("anon" without authors), the year, and the cleaned first significant
// title word.
func Key(r types.Record) string {
	return normalize.CleanForKey(normalize.FirstAuthorSurname(r.Authors)) +
		r.Year +
		normalize.CleanForKey(normalize.FirstSignificantWord(r.Title))
}

// Synthesize builds the citation for r.
func Synthesize(r types.Record) (Citation, error) {
	if err := validate(r); err != nil {
		return Citation{}, err
	}
	key := Key(r)
	return Citation{Key: key, Entry: render(r, key)}, nil
}

// Render builds the BibTeX entry for r under key. Callers use it to
// re-render an entry after resolving a key collision.
func Render(r types.Record, key string) (string, error) {
	if err := validate(r); err != nil {
		return "", err
	}
	return render(r, key), nil
}

func validate(r types.Record) error {
	if strings.TrimSpace(r.Title) == "" {
		return &MalformedRecordError{Field: "title"}
	}
	if strings.TrimSpace(r.Year) == "" {
		return &MalformedRecordError{Field: "year"}
	}
	return nil
}

func render(r types.Record, key string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "@article{%s,\n", key)
	field(&b, "title", r.Title)
	field(&b, "author", strings.Join(r.Authors, " and "))
	field(&b, "year", r.Year)

	switch r.Source {
	case types.SourceArxiv:
		field(&b, "journal", arxivJournal)
		field(&b, "eprint", r.Identifier)
		field(&b, "archivePrefix", "arXiv")
	case types.SourceCrossref:
		field(&b, "journal", venueOrUnknown(r.Venue))
		optionalField(&b, "doi", r.Identifier)
	case types.SourceDBLP:
		field(&b, "journal", venueOrUnknown(r.Venue))
		if IsDOI(r.Identifier) {
			field(&b, "doi", r.Identifier)
		} else {
			optionalField(&b, "url", r.Identifier)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func field(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  %s = {%s},\n", name, value)
}

// optionalField writes name only when value is non-empty.
func optionalField(b *strings.Builder, name, value string) {
	if value != "" {
		field(b, name, value)
	}
}

func venueOrUnknown(v string) string {
	if v == "" {
		return unknownVenue
	}
	return v
}

// IsDOI reports whether id looks like a bare DOI ("10.xxxx/...").
func IsDOI(id string) bool {
	return strings.HasPrefix(id, "10.")
}
