package store

import (
	"context"
	"sync"

	"github.com/pbaille/timeline/internal/domain"
	"github.com/pbaille/timeline/internal/filter"
)

// Session is the state one viewer navigates: the active date, the enabled
// filters and the selected entry. It is the only place that state changes.
type Session struct {
	entries  *EntriesStore
	registry *filter.Registry

	mu       sync.Mutex
	date     string
	enabled  filter.Set
	selected string
}

// NewSession creates a session reading from entries. A nil registry means
// filter.Default.
func NewSession(entries *EntriesStore, registry *filter.Registry) *Session {
	if registry == nil {
		registry = filter.Default
	}
	return &Session{entries: entries, registry: registry}
}

// Date returns the active date.
func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Navigate makes date active. The selection is dropped before the entries
// of the new date are requested.
func (s *Session) Navigate(ctx context.Context, date string) ([]domain.Entry, error) {
	s.mu.Lock()
	changed := date != s.date
	if changed {
		s.date = date
		s.selected = ""
	}
	s.mu.Unlock()
	return s.entries.GetEntries(ctx, date, false)
}

// Refresh refetches the active date.
func (s *Session) Refresh(ctx context.Context) ([]domain.Entry, error) {
	return s.entries.GetEntries(ctx, s.Date(), true)
}

// Entries returns the unfiltered entries of the active date.
func (s *Session) Entries(ctx context.Context) ([]domain.Entry, error) {
	return s.entries.GetEntries(ctx, s.Date(), false)
}

// FilteredEntries returns the entries of the active date narrowed by the
// enabled filters.
func (s *Session) FilteredEntries(ctx context.Context) ([]domain.Entry, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return entries, err
	}
	return s.registry.Filter(entries, s.EnabledFilters()), nil
}

// Status returns the state of the entries request.
func (s *Session) Status() Status {
	return s.entries.State().Status
}

func (s *Session) Registry() *filter.Registry { return s.registry }

// ToggleFilter flips name in the enabled set.
func (s *Session) ToggleFilter(name string) (filter.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.registry.Toggle(s.enabled, name)
	if err != nil {
		return s.enabled, err
	}
	s.enabled = next
	return next, nil
}

// SetFilters replaces the enabled set.
func (s *Session) SetFilters(set filter.Set) {
	s.mu.Lock()
	s.enabled = set
	s.mu.Unlock()
}

func (s *Session) EnabledFilters() filter.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Session) Select(key string) {
	s.mu.Lock()
	s.selected = key
	s.mu.Unlock()
}

func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Session) ClearSelection() { s.Select("") }
