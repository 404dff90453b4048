// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdiddy/bibsearch/internal/httputil"
	"github.com/pdiddy/bibsearch/internal/normalize"
	"github.com/pdiddy/bibsearch/pkg/types"
)

// crossrefAPIBase is the Crossref works search endpoint. Declared as a var
// so tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

const crossrefSelect = "DOI,title,author,container-title,published,published-print,published-online,issued"

// crossrefMaxRows is the largest page Crossref serves.
const crossrefMaxRows = 1000

// CrossrefBackend queries the Crossref REST API.
type CrossrefBackend struct {
	Fetcher *httputil.Fetcher
	// Mailto is sent as mailto parameter for polite pool access.
	Mailto string
}

// Source returns types.SourceCrossref.
func (b *CrossrefBackend) Source() types.Source { return types.SourceCrossref }

// Search queries Crossref's bibliographic search.
func (b *CrossrefBackend) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > crossrefMaxRows {
		limit = crossrefMaxRows
	}

	params := url.Values{
		"query.bibliographic": {query},
		"rows":                {strconv.Itoa(limit)},
		"select":              {crossrefSelect},
	}
	if b.Mailto != "" {
		params.Set("mailto", b.Mailto)
	}

	resp, err := b.Fetcher.Get(ctx, crossrefAPIBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, sourceError(types.SourceCrossref, fmt.Errorf("Crossref API request: %w", err))
	}
	defer resp.Body.Close()

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, sourceError(types.SourceCrossref, fmt.Errorf("parsing Crossref response: %w", err))
	}
	return cr.records(), nil
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Status  string          `json:"status"`
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	TotalResults int            `json:"total-results"`
	Items        []crossrefItem `json:"items"`
}

type crossrefItem struct {
	DOI             string           `json:"DOI"`
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	ContainerTitle  []string         `json:"container-title"`
	Published       crossrefDate     `json:"published"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Issued          crossrefDate     `json:"issued"`
}

// crossrefAuthor is a person ({given, family}) or an organization ({name}).
type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (r crossrefResponse) records() []types.Record {
	records := make([]types.Record, 0, len(r.Message.Items))
	for _, item := range r.Message.Items {
		title := firstNonEmpty(item.Title)
		if title == "" {
			continue
		}
		authors := make([]string, 0, len(item.Author))
		for _, a := range item.Author {
			n := normalize.Name{Name: a.Name, Family: a.Family, Given: a.Given}
			authors = append(authors, normalize.Author(n.Display()))
		}
		records = append(records, types.NewRecord(
			types.SourceCrossref,
			title,
			authors,
			item.year(),
			item.DOI,
			normalize.Venue(firstNonEmpty(item.ContainerTitle)),
		))
	}
	return records
}

// year takes the first date Crossref provides, most specific first.
func (item crossrefItem) year() string {
	for _, d := range []crossrefDate{item.Published, item.PublishedPrint, item.PublishedOnline, item.Issued} {
		if y := normalize.YearFromParts(d.DateParts); y != types.UnknownYear {
			return y
		}
	}
	return types.UnknownYear
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = normalize.CollapseSpace(v); v != "" {
			return v
		}
	}
	return ""
}
