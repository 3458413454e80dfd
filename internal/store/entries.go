// Package store keeps the entries of the active day and the state of the
// request that loads them.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pbaille/timeline/internal/domain"
)

// Status is the state of the entries request.
type Status int

const (
	StatusNone Status = iota
	StatusPending
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "none"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none":
		*s = StatusNone
	case "pending":
		*s = StatusPending
	case "success":
		*s = StatusSuccess
	case "failure":
		*s = StatusFailure
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Fetcher loads the entries of one YYYY-MM-DD day.
type Fetcher interface {
	Entries(ctx context.Context, date string) ([]domain.Entry, error)
}

// State is a snapshot of the store.
type State struct {
	Date       string
	Status     Status
	Entries    []domain.Entry
	Err        error
	Generation uint64
}

// EntriesStore caches the entries of the active date.
//
// A request is issued when nothing was loaded yet, when the date changes or
// when a refresh is forced. Callers asking while a request is pending share
// it. Every request carries a generation; a response whose generation is no
// longer current is handed to its own callers but never stored.
type EntriesStore struct {
	fetcher Fetcher
	logger  *slog.Logger
	flight  singleflight.Group

	mu      sync.Mutex
	date    string
	status  Status
	entries []domain.Entry
	err     error
	gen     uint64
}

// NewEntries creates an empty store.
func NewEntries(f Fetcher, logger *slog.Logger) *EntriesStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntriesStore{fetcher: f, logger: logger}
}

// GetEntries returns the entries of date, fetching them when needed.
// A failed request leaves the store empty with StatusFailure and returns the
// fetcher's error, so callers can tell an authentication failure apart.
func (s *EntriesStore) GetEntries(ctx context.Context, date string, forceRefresh bool) ([]domain.Entry, error) {
	s.mu.Lock()
	if date != s.date {
		forceRefresh = true
	}
	if s.status != StatusNone && s.status != StatusPending && !forceRefresh {
		entries, err := s.entries, s.err
		s.mu.Unlock()
		return entries, err
	}
	if s.status == StatusNone || forceRefresh {
		s.gen++
		s.date = date
		s.status = StatusPending
		s.logger.Debug("entries request", "date", date, "generation", s.gen)
	}
	gen := s.gen
	// Joining under the lock: the in-flight call cannot finish (and be
	// forgotten by the group) before it has taken the lock itself.
	ch := s.flight.DoChan(flightKey(date, gen), func() (any, error) {
		return s.fetch(ctx, date, gen)
	})
	s.mu.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return []domain.Entry{}, res.Err
		}
		return res.Val.([]domain.Entry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Refresh forces a new request for the current date.
func (s *EntriesStore) Refresh(ctx context.Context) ([]domain.Entry, error) {
	s.mu.Lock()
	date := s.date
	s.mu.Unlock()
	return s.GetEntries(ctx, date, true)
}

// State returns a snapshot of the store.
func (s *EntriesStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Date:       s.date,
		Status:     s.status,
		Entries:    s.entries,
		Err:        s.err,
		Generation: s.gen,
	}
}

func (s *EntriesStore) fetch(ctx context.Context, date string, gen uint64) ([]domain.Entry, error) {
	// The request is shared: one caller going away must not cancel it for
	// the others.
	entries, err := s.fetcher.Entries(context.WithoutCancel(ctx), date)
	if entries == nil {
		entries = []domain.Entry{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding stale entries response", "date", date, "generation", gen, "current", s.gen)
		return entries, err
	}
	if err != nil {
		s.status = StatusFailure
		s.entries = []domain.Entry{}
		s.err = err
		s.logger.Warn("entries request failed", "date", date, "err", err)
		return nil, err
	}
	s.status = StatusSuccess
	s.entries = entries
	s.err = nil
	s.logger.Debug("entries loaded", "date", date, "count", len(entries))
	return entries, nil
}

func flightKey(date string, gen uint64) string {
	return fmt.Sprintf("%s#%d", date, gen)
}
