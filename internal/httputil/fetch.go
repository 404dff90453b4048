// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single-shot HTTP GET used by every search
// backend. It paces requests per host but never retries.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// ErrRateLimited is matched by errors.Is when a service answered HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Is reports 429 responses as ErrRateLimited.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 200

// Fetcher issues paced GET requests. A nil Limiter disables pacing.
type Fetcher struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	UserAgent string
}

// NewFetcher returns a Fetcher that allows rps requests per second with a
// burst of one. rps <= 0 disables pacing.
func NewFetcher(client *http.Client, userAgent string, rps float64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{Client: client, UserAgent: userAgent}
	if rps > 0 {
		f.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return f
}

// Get waits for the limiter, sends exactly one request, and returns the
// response when the status is 2xx. The caller closes the body. Any other
// status yields a *StatusError after the body is drained.
func (f *Fetcher) Get(ctx context.Context, url string, accept string) (*http.Response, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	io.Copy(io.Discard, resp.Body)
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
