package timeutil

import (
	"strings"
	"time"
)

// Business is the business time zone (Africa/Tunis, UTC+1, no DST)
var Business *time.Location

func init() {
	var err error
	Business, err = time.LoadLocation("Africa/Tunis")
	if err != nil {
		// Fallback: fixed zone if tzdata is not available
		Business = time.FixedZone("CET", 1*60*60)
	}
}

// SetLocation overrides the business zone (config `timezone`)
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Business = loc
	return nil
}

// Now returns the current time in the business zone
func Now() time.Time {
	return time.Now().In(Business)
}

// StartOfDay returns the start of day (00:00:00) in the business zone for the given time
func StartOfDay(t time.Time) time.Time {
	b := t.In(Business)
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Business)
}

// SameDay reports whether a and b fall on the same calendar day in the business zone
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// StartOfMonth returns the first day of t's month in the business zone
func StartOfMonth(t time.Time) time.Time {
	b := t.In(Business)
	return time.Date(b.Year(), b.Month(), 1, 0, 0, 0, 0, Business)
}

// Persisted and display layouts
const (
	DateLayout     = "02/01/2006"
	StampLayout    = "02/01/2006 15:04"
	MonthKeyLayout = "01-2006"
	ISODateLayout  = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Day-first first, month-first last so that ambiguous values read as dd/mm.
var parseLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// ParseDate parses a stored date. Unparseable or empty input yields ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, Business); err == nil {
			return StartOfDay(t), true
		}
	}
	return time.Time{}, false
}

// FormatDate formats t in the persisted dd/mm/yyyy layout
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Business).Format(DateLayout)
}

// FormatOptionalDate formats a nullable date; nil yields the empty string
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

// MonthKey returns the MM-YYYY bucket key for t
func MonthKey(t time.Time) string {
	return t.In(Business).Format(MonthKeyLayout)
}

// ParseMonthKey parses an MM-YYYY bucket key
func ParseMonthKey(key string) (time.Time, bool) {
	t, err := time.ParseInLocation(MonthKeyLayout, strings.TrimSpace(key), Business)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Stamp renders the note timestamp prefix, e.g. "[19/10/2026 14:05]"
func Stamp(t time.Time) string {
	return "[" + t.In(Business).Format(StampLayout) + "]"
}
