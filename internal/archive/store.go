// Package archive is a local sqlite backend: it stores entries and their
// derived artifacts and answers the per-day queries the timeline needs.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/timeline/internal/domain"
)

//go:embed schema.sql
var schema string

const dayLayout = "2006-01-02"

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("not found")

// Store handles database operations
type Store struct {
	db  *sql.DB
	loc *time.Location
}

// New opens the archive at dbPath. Entry days are computed in loc.
func New(dbPath string, loc *time.Location) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{db: db, loc: loc}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddEntries inserts or replaces entries. Entries without an id get one.
// The stored copies, ids included, are returned.
func (s *Store) AddEntries(ctx context.Context, entries []domain.Entry) ([]domain.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries
			(id, entry_type, date_start, date_end, date_on_timeline, day_start, day_end,
			 title, description, file_path, checksum, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.EntryType == "" {
			return nil, fmt.Errorf("insert entry %q: missing entry_type", e.ID)
		}
		start, ok := domain.ParseTimestamp(e.DateStart, s.loc)
		if !ok {
			return nil, fmt.Errorf("insert entry %q: invalid date_start %q", e.ID, e.DateStart)
		}
		end := start
		if e.DateEnd != "" {
			t, ok := domain.ParseTimestamp(e.DateEnd, s.loc)
			if !ok {
				return nil, fmt.Errorf("insert entry %q: invalid date_end %q", e.ID, e.DateEnd)
			}
			if t.After(start) {
				end = t
			}
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.DateOnTimeline == "" {
			e.DateOnTimeline = e.DateStart
		}
		data := e.Data
		if data == nil {
			data = map[string]any{}
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode data of %q: %w", e.ID, err)
		}
		var dateEnd sql.NullString
		if e.DateEnd != "" {
			dateEnd = sql.NullString{String: e.DateEnd, Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			e.ID, e.EntryType, e.DateStart, dateEnd, e.DateOnTimeline,
			start.In(s.loc).Format(dayLayout), end.In(s.loc).Format(dayLayout),
			e.Title, e.Description, e.FilePath, e.Checksum, string(raw),
		)
		if err != nil {
			return nil, fmt.Errorf("insert entry %q: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// EntriesForDate returns the entries overlapping day, in timeline order.
func (s *Store) EntriesForDate(ctx context.Context, day string) ([]domain.Entry, error) {
	if _, err := time.Parse(dayLayout, day); err != nil {
		return nil, fmt.Errorf("entries for date: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entry_type, date_start, date_end, date_on_timeline,
		       title, description, file_path, checksum, data
		FROM entries
		WHERE day_start <= ? AND day_end >= ?
		ORDER BY date_on_timeline, id`, day, day)
	if err != nil {
		return nil, fmt.Errorf("entries for date: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries for date: %w", err)
	}
	s.sortChronologically(entries)
	return entries, nil
}

// sortChronologically orders by decoded timeline time; text order is only
// right when every stamp shares an offset. Undecodable stamps go last, in
// their query order.
func (s *Store) sortChronologically(entries []domain.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, oki := entries[i].TimelineTime(s.loc)
		tj, okj := entries[j].TimelineTime(s.loc)
		if oki != okj {
			return oki
		}
		return oki && ti.Before(tj)
	})
}

func scanEntry(rows *sql.Rows) (domain.Entry, error) {
	var (
		e       domain.Entry
		dateEnd sql.NullString
		raw     string
	)
	err := rows.Scan(&e.ID, &e.EntryType, &e.DateStart, &dateEnd, &e.DateOnTimeline,
		&e.Title, &e.Description, &e.FilePath, &e.Checksum, &raw)
	if err != nil {
		return e, fmt.Errorf("scan entry: %w", err)
	}
	e.DateEnd = dateEnd.String
	if err := json.Unmarshal([]byte(raw), &e.Data); err != nil {
		return e, fmt.Errorf("decode data of %q: %w", e.ID, err)
	}
	return e, nil
}

// Dates lists every day with at least one entry, multi-day entries
// counting for each day they cover.
func (s *Store) Dates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT day_start, day_end FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan dates: %w", err)
		}
		from, err1 := time.Parse(dayLayout, start)
		to, err2 := time.Parse(dayLayout, end)
		if err1 != nil || err2 != nil {
			continue
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			seen[d.Format(dayLayout)] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}

	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	return days, nil
}

// Finances sums the transaction amounts of each day. Amounts are summed as
// exact decimals and rendered as strings.
func (s *Store) Finances(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_start, json_extract(data, '$.amount')
		FROM entries
		WHERE entry_type = 'transaction' OR entry_type LIKE 'finance.%'`)
	if err != nil {
		return nil, fmt.Errorf("finances: %w", err)
	}
	defer rows.Close()

	sums := map[string]*big.Rat{}
	for rows.Next() {
		var (
			day    string
			amount sql.NullString
		)
		if err := rows.Scan(&day, &amount); err != nil {
			return nil, fmt.Errorf("scan finances: %w", err)
		}
		r, ok := new(big.Rat).SetString(amount.String)
		if !amount.Valid || !ok {
			continue
		}
		if sums[day] == nil {
			sums[day] = new(big.Rat)
		}
		sums[day].Add(sums[day], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finances: %w", err)
	}

	out := make(map[string]string, len(sums))
	for day, sum := range sums {
		out[day] = sum.FloatString(2)
	}
	return out, nil
}

// Artifact is a derived file of an entry.
type Artifact struct {
	Checksum    string
	Name        string
	ContentType string
	Body        []byte
}

// PutArtifact stores or replaces an artifact.
func (s *Store) PutArtifact(ctx context.Context, a Artifact) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO artifacts (checksum, name, content_type, body) VALUES (?, ?, ?, ?)",
		a.Checksum, a.Name, a.ContentType, a.Body,
	)
	if err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	return nil
}

// GetArtifact returns an artifact or ErrNotFound.
func (s *Store) GetArtifact(ctx context.Context, checksum, name string) (*Artifact, error) {
	a := Artifact{Checksum: checksum, Name: name}
	err := s.db.QueryRowContext(ctx,
		"SELECT content_type, body FROM artifacts WHERE checksum = ? AND name = ?",
		checksum, name,
	).Scan(&a.ContentType, &a.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artifact %s/%s: %w", checksum, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return &a, nil
}

// Artifact returns the body of an artifact. It lets the archive stand in for
// the remote backend as an artifact.Source.
func (s *Store) Artifact(ctx context.Context, checksum, name string) ([]byte, error) {
	a, err := s.GetArtifact(ctx, checksum, name)
	if err != nil {
		return nil, err
	}
	return a.Body, nil
}

// Entries lets the archive stand in for the remote backend as a
// store.Fetcher.
func (s *Store) Entries(ctx context.Context, date string) ([]domain.Entry, error) {
	return s.EntriesForDate(ctx, date)
}
