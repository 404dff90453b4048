// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/pdiddy/bibsearch/internal/search"
	"github.com/pdiddy/bibsearch/pkg/types"
)

// progress reports each settled source on w while a search runs.
type progress struct {
	w       io.Writer
	total   int
	settled int
	seen    int
}

func newProgress(w io.Writer, sources int) *progress {
	return &progress{w: w, total: sources}
}

func (p *progress) Merged(records []types.Record, aggregating bool) {
	p.settled++
	added := len(records) - p.seen
	p.seen = len(records)
	fmt.Fprintf(p.w, "[%d/%d] +%d results, %d total\n", p.settled, p.total, added, len(records))
	if !aggregating {
		fmt.Fprintln(p.w, "search complete")
	}
}

func (p *progress) Failed(err *search.SourceError) {
	fmt.Fprintf(p.w, "warning: %v\n", err)
	if err.RateLimited() {
		fmt.Fprintf(p.w, "warning: %s is rate limiting requests; try again later\n", err.Source)
	}
}
