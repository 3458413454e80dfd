package grouping

import (
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"github.com/pbaille/timeline/internal/domain"
)

// Memo caches the last grouping so views can ask for buckets repeatedly
// without regrouping an unchanged entry list.
type Memo struct {
	loc *time.Location

	mu      sync.Mutex
	key     uint64
	valid   bool
	buckets []Bucket
}

func NewMemo(loc *time.Location) *Memo {
	return &Memo{loc: loc}
}

// Group returns Group(entries, loc), reusing the previous result when the
// entries hold the same content. Any change to an entry regroups, so a
// refreshed list never renders through the previous entries.
func (m *Memo) Group(entries []domain.Entry) []Bucket {
	key, ok := fingerprint(entries)

	m.mu.Lock()
	defer m.mu.Unlock()
	if ok && m.valid && m.key == key {
		return m.buckets
	}
	m.buckets = Group(entries, m.loc)
	m.key = key
	m.valid = ok
	return m.buckets
}

// fingerprint hashes the JSON form of every entry. Entries that cannot be
// encoded are never cached.
func fingerprint(entries []domain.Entry) (uint64, bool) {
	h := fnv.New64a()
	if err := json.NewEncoder(h).Encode(entries); err != nil {
		return 0, false
	}
	return h.Sum64(), true
}
