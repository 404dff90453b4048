// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdiddy/bibsearch/internal/httputil"
	"github.com/pdiddy/bibsearch/internal/normalize"
	"github.com/pdiddy/bibsearch/pkg/types"
)

// dblpAPIBase is the DBLP publication search endpoint. Declared as a var so
// tests can substitute an httptest server.
var dblpAPIBase = "https://dblp.org/search/publ/api"

// dblpMaxHits is the largest page DBLP serves.
const dblpMaxHits = 1000

// DBLPBackend queries the DBLP publication search API.
type DBLPBackend struct {
	Fetcher *httputil.Fetcher
}

// Source returns types.SourceDBLP.
func (b *DBLPBackend) Source() types.Source { return types.SourceDBLP }

// Search queries DBLP's publication index.
func (b *DBLPBackend) Search(ctx context.Context, query string, limit int) ([]types.Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > dblpMaxHits {
		limit = dblpMaxHits
	}
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"h":      {strconv.Itoa(limit)},
	}

	resp, err := b.Fetcher.Get(ctx, dblpAPIBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, sourceError(types.SourceDBLP, fmt.Errorf("DBLP API request: %w", err))
	}
	defer resp.Body.Close()

	var dr dblpResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, sourceError(types.SourceDBLP, fmt.Errorf("parsing DBLP response: %w", err))
	}
	return dr.records(), nil
}

// DBLP API JSON structures. DBLP collapses single-element arrays into a
// bare value, so authors and venues use oneOrMany.
type dblpResponse struct {
	Result struct {
		Hits struct {
			Total string    `json:"@total"`
			Hit   []dblpHit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type dblpHit struct {
	Info dblpInfo `json:"info"`
}

type dblpInfo struct {
	Authors struct {
		Author oneOrMany[dblpAuthor] `json:"author"`
	} `json:"authors"`
	Title string            `json:"title"`
	Venue oneOrMany[string] `json:"venue"`
	Year  string            `json:"year"`
	Type  string            `json:"type"`
	DOI   string            `json:"doi"`
	EE    oneOrMany[string] `json:"ee"`
	URL   string            `json:"url"`
}

// dblpAuthor is {"@pid": "...", "text": "Jianxin Wang 0003"} or, in older
// responses, a bare string.
type dblpAuthor struct {
	PID  string `json:"@pid"`
	Text string `json:"text"`
}

func (a *dblpAuthor) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &a.Text)
	}
	type plain dblpAuthor
	return json.Unmarshal(data, (*plain)(a))
}

// oneOrMany decodes either a single JSON value or an array of them.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = oneOrMany[T]{one}
	return nil
}

func (r dblpResponse) records() []types.Record {
	hits := r.Result.Hits.Hit
	records := make([]types.Record, 0, len(hits))
	for _, h := range hits {
		info := h.Info
		if normalize.CollapseSpace(info.Title) == "" {
			continue
		}
		authors := make([]string, 0, len(info.Authors.Author))
		for _, a := range info.Authors.Author {
			authors = append(authors, normalize.Author(normalize.Name{Text: a.Text}.Display()))
		}
		var venue string
		if len(info.Venue) > 0 {
			venue = normalize.Venue(info.Venue[0])
		}
		records = append(records, types.NewRecord(
			types.SourceDBLP,
			info.Title,
			authors,
			normalize.Year(info.Year),
			info.identifier(),
			venue,
		))
	}
	return records
}

// identifier prefers the DOI, then the first electronic edition link, then
// the DBLP record page.
func (info dblpInfo) identifier() string {
	if info.DOI != "" {
		return info.DOI
	}
	if len(info.EE) > 0 && info.EE[0] != "" {
		return info.EE[0]
	}
	return info.URL
}
