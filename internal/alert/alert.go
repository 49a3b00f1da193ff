// Package alert derives the follow-up alert shown next to a client record.
package alert

import (
	"strings"
	"time"

	"megacrm-backend/internal/timeutil"
)

const (
	None     = ""
	Overdue  = "overdue"
	DueToday = "due-today"
)

// Input is everything the alert depends on. FollowUp is nil when the stored
// date is empty or unparseable.
type Input struct {
	Manual   string
	FollowUp *time.Time
	Enrolled bool
}

// Derive returns the alert for a record as of today. Enrollment wins over
// everything, then a manual override, then the follow-up date.
func Derive(in Input, today time.Time) string {
	if in.Enrolled {
		return None
	}
	if manual := strings.TrimSpace(in.Manual); manual != "" {
		return manual
	}
	if in.FollowUp == nil {
		return None
	}
	due := timeutil.StartOfDay(*in.FollowUp)
	day := timeutil.StartOfDay(today)
	switch {
	case due.Before(day):
		return Overdue
	case due.Equal(day):
		return DueToday
	default:
		return None
	}
}

// FromStored parses the raw follow-up cell and derives the alert
func FromStored(manual, followUp string, enrolled bool, today time.Time) string {
	in := Input{Manual: manual, Enrolled: enrolled}
	if t, ok := timeutil.ParseDate(followUp); ok {
		in.FollowUp = &t
	}
	return Derive(in, today)
}

// IsActive reports whether an alert value should count as a current alert
func IsActive(a string) bool {
	return strings.TrimSpace(a) != ""
}
