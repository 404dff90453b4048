// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts the author, venue, title, and date shapes that
// bibliographic services return into the canonical strings stored in a
// types.Record and used for citation keys. Nothing here performs I/O.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/bibsearch/pkg/types"
)

// AnonymousAuthor stands in for the first author when a record has none.
const AnonymousAuthor = "anon"

// FallbackWord is returned by FirstSignificantWord when a title has no
// usable word.
const FallbackWord = "paper"

// numericSuffix matches the disambiguation counter some services append to
// author and venue names (e.g. DBLP's "Jianxin Wang 0003").
var numericSuffix = regexp.MustCompile(`\s+[0-9]{1,4}$`)

var stopwords = map[string]bool{
	"a":   true,
	"an":  true,
	"the": true,
}

// Name is an author as a service may describe it: as free text, as a
// display name, or as family/given parts.
type Name struct {
	Text   string
	Name   string
	Family string
	Given  string
}

// Display returns a single display string for n. Text wins over Name. When
// only parts are present they are joined as "Family, Given", not as the
// plain "Family Given" concatenation, so the result is in the canonical
// "Surname, Given" author form and Surname recovers the family name.
func (n Name) Display() string {
	if s := strings.TrimSpace(n.Text); s != "" {
		return CollapseSpace(s)
	}
	if s := strings.TrimSpace(n.Name); s != "" {
		return CollapseSpace(s)
	}
	family := CollapseSpace(n.Family)
	given := CollapseSpace(n.Given)
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return given
	}
}

// CollapseSpace trims s and replaces every run of whitespace, including
// newlines, with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripNumericSuffix removes a trailing group of one to four digits that is
// separated from the rest of s by whitespace.
func StripNumericSuffix(s string) string {
	return numericSuffix.ReplaceAllString(strings.TrimSpace(s), "")
}

// Author returns the canonical display form of a plain author string.
func Author(s string) string {
	return CollapseSpace(StripNumericSuffix(s))
}

// Venue returns the canonical form of a venue string.
func Venue(s string) string {
	return CollapseSpace(StripNumericSuffix(s))
}

// Surname extracts the surname from a display name. The numeric suffix is
// stripped first. "Surname, Given" yields the text before the first comma;
// otherwise the last whitespace-delimited token is the surname. A non-empty
// input never yields an empty result.
func Surname(name string) string {
	name = CollapseSpace(name)
	if name == "" {
		return ""
	}
	stripped := StripNumericSuffix(name)
	if stripped == "" {
		return name
	}
	if i := strings.Index(stripped, ","); i >= 0 {
		if s := strings.TrimSpace(stripped[:i]); s != "" {
			return s
		}
		stripped = strings.TrimSpace(stripped[i+1:])
		if stripped == "" {
			return name
		}
	}
	fields := strings.Fields(stripped)
	return fields[len(fields)-1]
}

// FirstAuthorSurname returns the surname of the first author, or
// AnonymousAuthor when there are no authors.
func FirstAuthorSurname(authors []string) string {
	if len(authors) == 0 {
		return AnonymousAuthor
	}
	if s := Surname(authors[0]); s != "" {
		return s
	}
	return AnonymousAuthor
}

// CleanForKey lowercases s and drops every character outside [a-z0-9].
func CleanForKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FirstSignificantWord returns the first word of title that is not an
// article, with surrounding punctuation removed. It returns FallbackWord
// when no such word exists.
func FirstSignificantWord(title string) string {
	for _, tok := range strings.Fields(title) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if tok == "" || stopwords[strings.ToLower(tok)] {
			continue
		}
		return tok
	}
	return FallbackWord
}

// Year returns the four-digit year that s starts with ("2017",
// "2017-06-12T17:57:34Z"), or types.UnknownYear.
func Year(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return types.UnknownYear
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return types.UnknownYear
		}
	}
	if len(s) > 4 && s[4] >= '0' && s[4] <= '9' {
		return types.UnknownYear
	}
	return s[:4]
}

// YearFromParts returns the year from CSL-style date-parts
// ([[2024, 3, 1]]), or types.UnknownYear.
func YearFromParts(parts [][]int) string {
	if len(parts) == 0 || len(parts[0]) == 0 {
		return types.UnknownYear
	}
	y := parts[0][0]
	if y < 1000 || y > 9999 {
		return types.UnknownYear
	}
	return strconv.Itoa(y)
}
