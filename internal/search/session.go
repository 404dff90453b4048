// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/bibsearch/pkg/types"
)

// ErrAbandoned is returned by Session.Wait once the session is abandoned.
var ErrAbandoned = errors.New("search session abandoned")

// Observer receives session progress. Calls are delivered one at a time in
// the order sources settle, and none starts after Session.Abandon returns.
// An Observer may call Session.Snapshot but must not call Session.Abandon
// or block on Session.Wait.
type Observer interface {
	// Merged is called after every source settles with a copy of the full
	// result list and whether any source is still pending.
	Merged(records []types.Record, aggregating bool)

	// Failed is called before Merged when a source fails.
	Failed(err *SourceError)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnMerged func(records []types.Record, aggregating bool)
	OnFailed func(err *SourceError)
}

func (o ObserverFuncs) Merged(records []types.Record, aggregating bool) {
	if o.OnMerged != nil {
		o.OnMerged(records, aggregating)
	}
}

func (o ObserverFuncs) Failed(err *SourceError) {
	if o.OnFailed != nil {
		o.OnFailed(err)
	}
}

// Aggregator fans one query out to every backend.
type Aggregator struct {
	backends []Backend
	log      logrus.FieldLogger
}

// NewAggregator returns an Aggregator over backends. A nil logger discards
// log output.
func NewAggregator(backends []Backend, log logrus.FieldLogger) *Aggregator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Aggregator{backends: backends, log: log}
}

// Backends returns the configured backends.
func (a *Aggregator) Backends() []Backend { return a.backends }

// Start issues query to every backend without waiting for any of them and
// returns the live session. limit <= 0 selects DefaultLimit. obs may be nil.
// With no backends the session is settled immediately.
func (a *Aggregator) Start(ctx context.Context, query string, limit int, obs Observer) *Session {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:      uuid.NewString(),
		Query:   query,
		records: []types.Record{},
		pending: len(a.backends),
		obs:     obs,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	log := a.log.WithFields(logrus.Fields{"session": s.ID, "query": query})
	log.WithField("sources", SourceNames(a.backends)).Debug("search started")

	if s.pending == 0 {
		close(s.done)
		cancel()
		return s
	}

	for _, b := range a.backends {
		go func(b Backend) {
			start := time.Now()
			records, err := b.Search(ctx, query, limit)
			entry := log.WithFields(logrus.Fields{
				"source":  b.Source(),
				"elapsed": time.Since(start).Round(time.Millisecond),
			})
			if err != nil {
				se := sourceError(b.Source(), err)
				entry.WithError(se.Err).Warn("source failed")
				s.settle(nil, se)
				return
			}
			entry.WithField("count", len(records)).Debug("source settled")
			s.settle(records, nil)
		}(b)
	}
	return s
}

// Session is one query's aggregation. Its result list only grows while
// sources are pending and is frozen once every source has settled.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Query is the query string the session was started with.
	Query string

	// notifyMu serializes observer calls in settle order and orders Abandon
	// after any call in progress. It is always acquired before mu.
	notifyMu sync.Mutex

	mu        sync.Mutex
	records   []types.Record
	errs      []*SourceError
	pending   int
	abandoned bool

	obs     Observer
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
}

// settle merges one source's outcome. records are appended in the order the
// backend returned them.
func (s *Session) settle(records []types.Record, err *SourceError) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.abandoned {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.errs = append(s.errs, err)
	} else {
		s.records = append(s.records, records...)
	}
	s.pending--
	aggregating := s.pending > 0
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.obs != nil {
		if err != nil && s.live() {
			s.obs.Failed(err)
		}
		if s.live() {
			s.obs.Merged(snapshot, aggregating)
		}
	}

	if !aggregating {
		s.cancel()
		close(s.done)
	}
}

// live reports whether observer calls may still be delivered.
func (s *Session) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.abandoned
}

func (s *Session) snapshotLocked() []types.Record {
	out := make([]types.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Snapshot returns a copy of the records merged so far and whether any
// source is still pending.
func (s *Session) Snapshot() ([]types.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), s.pending > 0 && !s.abandoned
}

// Aggregating reports whether any source is still pending.
func (s *Session) Aggregating() bool {
	_, aggregating := s.Snapshot()
	return aggregating
}

// Errors returns the failures reported so far.
func (s *Session) Errors() []*SourceError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*SourceError, len(s.errs))
	copy(out, s.errs)
	return out
}

// Done is closed once every source has settled. It is never closed for a
// session abandoned before that point.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until every source has settled and returns the final list.
// It returns ctx.Err() if ctx ends first and ErrAbandoned if the session
// was abandoned.
func (s *Session) Wait(ctx context.Context) ([]types.Record, error) {
	select {
	case <-s.done:
		records, _ := s.Snapshot()
		return records, nil
	case <-s.stopped:
		return nil, ErrAbandoned
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Abandon stops the session: outstanding requests are cancelled on a
// best-effort basis and their results are discarded without notifying the
// observer. The records merged so far stay readable through Snapshot.
// Abandon waits for an observer call already in progress to return.
func (s *Session) Abandon() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.abandoned || s.pending == 0 {
		return
	}
	s.abandoned = true
	close(s.stopped)
	s.cancel()
}

// Abandoned reports whether Abandon took effect.
func (s *Session) Abandoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abandoned
}

// ErrorSummary formats the session's failures one per line.
func (s *Session) ErrorSummary() []string {
	errs := s.Errors()
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return out
}
