package datenav

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a navigation step.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return "day"
	}
}

// ParseUnit accepts singular or plural unit names.
func ParseUnit(s string) (Unit, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "day", "d":
		return Day, nil
	case "week", "w":
		return Week, nil
	case "month", "m":
		return Month, nil
	case "year", "y":
		return Year, nil
	}
	return Day, fmt.Errorf("unknown unit %q", s)
}

// Step is a signed move of one unit.
type Step struct {
	N    int
	Unit Unit
}

// KeyBindings maps keyboard keys to navigation steps. Lower case moves
// forward, upper case moves back.
var KeyBindings = map[string]Step{
	"d":     {1, Day},
	"right": {1, Day},
	"D":     {-1, Day},
	"left":  {-1, Day},
	"w":     {1, Week},
	"W":     {-1, Week},
	"m":     {1, Month},
	"M":     {-1, Month},
	"y":     {1, Year},
	"Y":     {-1, Year},
}

// Humanize renders a signed distance in days the way relative dates are
// usually spoken: "in a day", "5 days ago", "in 2 months", "a year ago".
func Humanize(days int) string {
	abs := days
	if abs < 0 {
		abs = -abs
	}

	months := int(math.Round(float64(abs) * 4800 / 146097))
	years := int(math.Round(float64(abs) / 365.2425))

	var s string
	switch {
	case abs <= 1:
		s = "a day"
	case abs < 26:
		s = fmt.Sprintf("%d days", abs)
	case months <= 1:
		s = "a month"
	case months < 11:
		s = fmt.Sprintf("%d months", months)
	case years <= 1:
		s = "a year"
	default:
		s = fmt.Sprintf("%d years", years)
	}

	if days > 0 {
		return "in " + s
	}
	return s + " ago"
}
