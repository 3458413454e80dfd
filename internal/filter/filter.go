// Package filter holds the fixed catalog of timeline filters.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbaille/timeline/internal/domain"
)

// Definition is a named predicate over entries plus its display metadata.
type Definition struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	DisplayNamePlural string `json:"display_name_plural"`
	IconClass         string `json:"icon_class"`

	Match func(e *domain.Entry) bool `json:"-"`
}

// UnknownFilterError is returned when a filter name is not in the catalog.
type UnknownFilterError struct {
	Name string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter %q", e.Name)
}

// Registry is the catalog. It is built once and never changes.
type Registry struct {
	defs   []Definition
	byName map[string]int
}

// Default is the catalog used by the application.
var Default = NewRegistry(catalog())

// NewRegistry indexes defs. Names must be unique.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{
		defs:   append([]Definition(nil), defs...),
		byName: make(map[string]int, len(defs)),
	}
	sort.SliceStable(r.defs, func(i, j int) bool { return r.defs[i].Name < r.defs[j].Name })
	for i, d := range r.defs {
		r.byName[d.Name] = i
	}
	return r
}

// Definitions returns the catalog sorted by name.
func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Lookup returns the named definition.
func (r *Registry) Lookup(name string) (Definition, error) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, &UnknownFilterError{Name: name}
	}
	return r.defs[i], nil
}

// Filter keeps the entries matching at least one enabled filter, in their
// original order. With no known filter enabled the input is returned as is.
func (r *Registry) Filter(entries []domain.Entry, enabled Set) []domain.Entry {
	preds := make([]func(*domain.Entry) bool, 0, enabled.Len())
	for _, name := range enabled.Names() {
		if i, ok := r.byName[name]; ok {
			preds = append(preds, r.defs[i].Match)
		}
	}
	if len(preds) == 0 {
		return entries
	}

	out := make([]domain.Entry, 0, len(entries))
	for i := range entries {
		for _, match := range preds {
			if match(&entries[i]) {
				out = append(out, entries[i])
				break
			}
		}
	}
	return out
}

// Count returns how many entries each filter matches, keyed by name.
func (r *Registry) Count(entries []domain.Entry) map[string]int {
	counts := make(map[string]int, len(r.defs))
	for _, d := range r.defs {
		for i := range entries {
			if d.Match(&entries[i]) {
				counts[d.Name]++
			}
		}
	}
	return counts
}

// Toggle flips name in enabled and returns the new set.
func (r *Registry) Toggle(enabled Set, name string) (Set, error) {
	if _, ok := r.byName[name]; !ok {
		return enabled, &UnknownFilterError{Name: name}
	}
	return enabled.toggle(name), nil
}

// ParseSet builds an enabled set from a comma separated list of names.
func (r *Registry) ParseSet(list string) (Set, error) {
	var s Set
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := r.byName[name]; !ok {
			return Set{}, &UnknownFilterError{Name: name}
		}
		if !s.Has(name) {
			s = s.toggle(name)
		}
	}
	return s, nil
}

// Set is an immutable, sorted set of enabled filter names.
type Set struct {
	names []string
}

// NewSet returns a set holding names. Names are not validated.
func NewSet(names ...string) Set {
	var s Set
	for _, n := range names {
		if !s.Has(n) {
			s = s.toggle(n)
		}
	}
	return s
}

func (s Set) Len() int { return len(s.names) }

// Names returns the names in sorted order.
func (s Set) Names() []string {
	return append([]string(nil), s.names...)
}

func (s Set) Has(name string) bool {
	i := sort.SearchStrings(s.names, name)
	return i < len(s.names) && s.names[i] == name
}

func (s Set) String() string {
	return strings.Join(s.names, ",")
}

func (s Set) toggle(name string) Set {
	next := make([]string, 0, len(s.names)+1)
	found := false
	for _, n := range s.names {
		if n == name {
			found = true
			continue
		}
		next = append(next, n)
	}
	if !found {
		next = append(next, name)
		sort.Strings(next)
	}
	return Set{names: next}
}
