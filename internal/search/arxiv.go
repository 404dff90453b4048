// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/bibsearch/internal/httputil"
	"github.com/pdiddy/bibsearch/internal/normalize"
	"github.com/pdiddy/bibsearch/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv API, which answers with an Atom feed.
type ArxivBackend struct {
	Fetcher *httputil.Fetcher
}

// Source returns types.SourceArxiv.
func (b *ArxivBackend) Source() types.Source { return types.SourceArxiv }

// Search queries arXiv for query across all fields.
func (b *ArxivBackend) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
	}

	resp, err := b.Fetcher.Get(ctx, arxivAPIBase+"?"+params.Encode(), "application/atom+xml")
	if err != nil {
		return nil, sourceError(types.SourceArxiv, fmt.Errorf("arXiv API request: %w", err))
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, sourceError(types.SourceArxiv, fmt.Errorf("parsing arXiv response: %w", err))
	}
	records, err := feed.records()
	if err != nil {
		return nil, sourceError(types.SourceArxiv, err)
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// records maps feed entries to Records. arXiv reports a rejected query as a
// single entry whose id lives under /api/errors; that feed is an error.
// Other entries without an /abs/ id or a title are skipped.
func (f arxivFeed) records() ([]types.Record, error) {
	records := make([]types.Record, 0, len(f.Entries))
	for _, e := range f.Entries {
		if strings.Contains(e.ID, "/api/errors") {
			return nil, fmt.Errorf("arXiv API error: %s", normalize.CollapseSpace(e.Summary))
		}
		id := extractArxivID(e.ID)
		if id == "" || strings.TrimSpace(e.Title) == "" {
			continue
		}
		authors := make([]string, 0, len(e.Authors))
		for _, a := range e.Authors {
			authors = append(authors, normalize.Author(a.Name))
		}
		records = append(records, types.NewRecord(
			types.SourceArxiv,
			e.Title,
			authors,
			normalize.Year(e.Published),
			id,
			"",
		))
	}
	return records, nil
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
