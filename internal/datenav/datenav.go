// Package datenav owns the timeline's current date: parsing and validating
// the date query parameter and moving it by days, weeks, months and years.
package datenav

import (
	"fmt"
	"net/url"
	"time"
)

const (
	// Layout is the only accepted date format.
	Layout = "2006-01-02"
	// Param is the query parameter holding the current date.
	Param = "date"
)

// InvalidDateError reports a missing or malformed date parameter.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return "missing date"
	}
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.Value)
}

// Controller resolves dates relative to "today" in a fixed location.
type Controller struct {
	loc *time.Location
	now func() time.Time
}

// New returns a controller for loc. A nil loc means time.Local.
func New(loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{loc: loc, now: time.Now}
}

// WithClock returns a copy of c that reads the time from now.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Controller) Location() *time.Location { return c.loc }

// Today is midnight of the current day.
func (c *Controller) Today() time.Time {
	return midnight(c.now().In(c.loc))
}

// Parse reads a strict YYYY-MM-DD date.
func (c *Controller) Parse(s string) (time.Time, error) {
	if len(s) != len(Layout) {
		return time.Time{}, &InvalidDateError{Value: s}
	}
	t, err := time.ParseInLocation(Layout, s, c.loc)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s}
	}
	return t, nil
}

// Format serializes a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Guard validates the date parameter of query. When it is valid the date is
// returned with a nil redirect. Otherwise the returned redirect is a copy of
// query with the date set to today, to replace the current location with,
// and the error is an *InvalidDateError.
func (c *Controller) Guard(query url.Values) (time.Time, url.Values, error) {
	d, err := c.Parse(query.Get(Param))
	if err == nil {
		return d, nil, nil
	}
	redirect := make(url.Values, len(query)+1)
	for k, v := range query {
		redirect[k] = append([]string(nil), v...)
	}
	today := c.Today()
	redirect.Set(Param, Format(today))
	return today, redirect, err
}

// Offset moves d by n units using calendar arithmetic.
func Offset(d time.Time, n int, u Unit) time.Time {
	switch u {
	case Week:
		return d.AddDate(0, 0, 7*n)
	case Month:
		return addMonths(d, n)
	case Year:
		return addMonths(d, 12*n)
	default:
		return d.AddDate(0, 0, n)
	}
}

// OffsetString moves a YYYY-MM-DD date by n units.
func (c *Controller) OffsetString(s string, n int, u Unit) (string, error) {
	d, err := c.Parse(s)
	if err != nil {
		return "", err
	}
	return Format(Offset(d, n, u)), nil
}

// addMonths clamps the day to the length of the target month, so Jan 31 plus
// one month is the last day of February.
func addMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	total := int(m) - 1 + n
	y += floorDiv(total, 12)
	m = time.Month(floorMod(total, 12) + 1)
	if last := daysIn(y, m, d.Location()); day > last {
		day = last
	}
	h, mi, sec := d.Clock()
	return time.Date(y, m, day, h, mi, sec, d.Nanosecond(), d.Location())
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

// CanMove reports whether moving d by n units stays on or before today.
func (c *Controller) CanMove(d time.Time, n int, u Unit) bool {
	return !Offset(d, n, u).After(c.Today())
}

// Move returns d moved by n units, refusing to go past today.
func (c *Controller) Move(d time.Time, n int, u Unit) (time.Time, bool) {
	if !c.CanMove(d, n, u) {
		return d, false
	}
	return Offset(d, n, u), true
}

// Forward tells which forward controls are usable from d.
type Forward struct {
	Day   bool `json:"day"`
	Week  bool `json:"week"`
	Month bool `json:"month"`
	Year  bool `json:"year"`
}

func (c *Controller) Forward(d time.Time) Forward {
	return Forward{
		Day:   c.CanMove(d, 1, Day),
		Week:  c.CanMove(d, 1, Week),
		Month: c.CanMove(d, 1, Month),
		Year:  c.CanMove(d, 1, Year),
	}
}

// Relative describes d relative to today: "today", "in 3 days", "a month ago".
func (c *Controller) Relative(d time.Time) string {
	days := civilDays(c.Today(), d)
	if days == 0 {
		return "today"
	}
	return Humanize(days)
}

// civilDays counts calendar days from a to b, ignoring DST shifts.
func civilDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
