package domain

import (
	"strconv"
	"strings"
	"time"
)

// Entry is one item of a day's timeline as returned by the backend.
// Entries are read-only snapshots: a new fetch replaces them wholesale.
type Entry struct {
	ID             string         `json:"id,omitempty"`
	EntryType      string         `json:"entry_type"`
	DateStart      string         `json:"date_start"`
	DateEnd        string         `json:"date_end,omitempty"`
	DateOnTimeline string         `json:"date_on_timeline,omitempty"`
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description,omitempty"`
	FilePath       string         `json:"file_path,omitempty"`
	Checksum       string         `json:"checksum,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// EntriesResponse is the body of GET /entries/{date}.json
type EntriesResponse struct {
	Entries []Entry `json:"entries"`
}

// Key returns a stable identifier for the entry within one day.
func (e *Entry) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Checksum + "@" + e.TimelineStamp()
}

// TimelineStamp is the timestamp used for grouping and sorting.
// Older archives only carry date_start.
func (e *Entry) TimelineStamp() string {
	if e.DateOnTimeline != "" {
		return e.DateOnTimeline
	}
	return e.DateStart
}

// TimelineTime decodes TimelineStamp. Naive timestamps are read in loc.
func (e *Entry) TimelineTime(loc *time.Location) (time.Time, bool) {
	return ParseTimestamp(e.TimelineStamp(), loc)
}

// Category is the leading dotted segment of the entry type:
// "social.reddit.post" -> "social", "image" -> "image".
func (e *Entry) Category() string {
	category, _, _ := strings.Cut(e.EntryType, ".")
	return category
}

// Segment returns the n-th dotted segment of the entry type, or "".
func (e *Entry) Segment(n int) string {
	parts := strings.Split(e.EntryType, ".")
	if n < 0 || n >= len(parts) {
		return ""
	}
	return parts[n]
}

// DataString returns data[key] rendered as a string. Numbers are formatted
// without a trailing ".0" so ids stored as JSON numbers stay readable.
func (e *Entry) DataString(key string) string {
	return stringify(e.Data[key])
}

// DataMap returns a nested object from data, or nil.
func (e *Entry) DataMap(key string) map[string]any {
	m, _ := e.Data[key].(map[string]any)
	return m
}

// DataFloat returns data[key] as a number. Numeric strings are accepted since
// the archive stores decimal amounts as strings.
func (e *Entry) DataFloat(key string) (float64, bool) {
	return Number(e.Data[key])
}

// Location is the optional geolocation of an entry.
type Location struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
}

// Location returns data.location if present.
func (e *Entry) Location() (Location, bool) {
	m := e.DataMap("location")
	if m == nil {
		return Location{}, false
	}
	return Location{Latitude: m["latitude"], Longitude: m["longitude"]}, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp decodes the ISO-8601 variants the archive emits.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Truthy mirrors the loose truthiness the archive data was written against:
// nil, false, 0, NaN and "" are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && x == x
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Number decodes a JSON number or numeric string.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
