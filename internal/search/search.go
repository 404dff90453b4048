// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries bibliographic services concurrently and merges
// their results into one growing list as each service answers.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/bibsearch/internal/httputil"
	"github.com/pdiddy/bibsearch/pkg/types"
)

// DefaultLimit is the number of results requested from each source when the
// caller does not specify one.
const DefaultLimit = 20

// Backend searches a single bibliographic service. Search issues exactly one
// request and either returns the records in the service's order or fails
// with a *SourceError.
type Backend interface {
	Source() types.Source
	Search(ctx context.Context, query string, limit int) ([]types.Record, error)
}

// SourceError reports that one source's request or response parsing failed.
// It never affects other sources in the same session.
type SourceError struct {
	Source types.Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// RateLimited reports whether the service rejected the request with HTTP 429.
func (e *SourceError) RateLimited() bool {
	return errors.Is(e.Err, httputil.ErrRateLimited)
}

// sourceError wraps err for src unless it already is a *SourceError.
func sourceError(src types.Source, err error) *SourceError {
	var se *SourceError
	if errors.As(err, &se) {
		return se
	}
	return &SourceError{Source: src, Err: err}
}

// NewBackends builds the enabled backends from cfg, all sharing client.
// Each backend gets its own request pacing.
func NewBackends(client *http.Client, cfg types.SearchConfig) []Backend {
	fetcher := func() *httputil.Fetcher {
		return httputil.NewFetcher(client, cfg.UserAgent, cfg.RequestsPerSecond)
	}
	var backends []Backend
	if cfg.EnableArxiv {
		backends = append(backends, &ArxivBackend{Fetcher: fetcher()})
	}
	if cfg.EnableCrossref {
		backends = append(backends, &CrossrefBackend{Fetcher: fetcher(), Mailto: cfg.CrossrefMailto})
	}
	if cfg.EnableDBLP {
		backends = append(backends, &DBLPBackend{Fetcher: fetcher()})
	}
	return backends
}

// SourceNames joins the sources of backends for display.
func SourceNames(backends []Backend) string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b.Source())
	}
	return strings.Join(names, ", ")
}
