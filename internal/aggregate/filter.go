package aggregate

import (
	"sort"
	"strings"

	"megacrm-backend/internal/alert"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
)

func filter(views []models.ClientView, keep func(models.ClientView) bool) []models.ClientView {
	out := make([]models.ClientView, 0, len(views))
	for _, v := range views {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// FilterEmployee keeps the rows of one employee table
func FilterEmployee(views []models.ClientView, employee string) []models.ClientView {
	if employee == "" {
		return views
	}
	return filter(views, func(v models.ClientView) bool { return v.Source == employee })
}

// FilterMonth keeps rows added in month (MM-YYYY); empty month keeps all
func FilterMonth(views []models.ClientView, month string) []models.ClientView {
	if month == "" {
		return views
	}
	return filter(views, func(v models.ClientView) bool { return v.Month == month })
}

// FilterFormation keeps rows of a formation, compared case-insensitively
func FilterFormation(views []models.ClientView, formation string) []models.ClientView {
	formation = strings.TrimSpace(formation)
	if formation == "" {
		return views
	}
	return filter(views, func(v models.ClientView) bool {
		return strings.EqualFold(strings.TrimSpace(v.Formation), formation)
	})
}

// WithAlerts keeps rows carrying an active alert
func WithAlerts(views []models.ClientView) []models.ClientView {
	return filter(views, func(v models.ClientView) bool { return alert.IsActive(v.Alert) })
}

// Enrolled keeps enrolled rows
func Enrolled(views []models.ClientView) []models.ClientView {
	return filter(views, func(v models.ClientView) bool { return v.Enrolled })
}

// Apply runs the employee list filters
func Apply(views []models.ClientView, f models.ClientFilter) []models.ClientView {
	out := FilterFormation(FilterMonth(views, f.Month), f.Formation)
	if f.AlertsOnly {
		out = WithAlerts(out)
	}
	return out
}

// PendingRemarks counts rows still waiting for a first remark
func PendingRemarks(views []models.ClientView) int {
	n := 0
	for _, v := range views {
		if strings.TrimSpace(v.Remark) == "" {
			n++
		}
	}
	return n
}

// Months lists the distinct MM-YYYY keys, newest first
func Months(views []models.ClientView) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range views {
		if v.Month != "" && !seen[v.Month] {
			seen[v.Month] = true
			out = append(out, v.Month)
		}
	}
	sort.Slice(out, func(i, j int) bool { return monthOrder(out[i]) > monthOrder(out[j]) })
	return out
}

// Formations lists the distinct non-empty formations, sorted
func Formations(views []models.ClientView) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range views {
		f := strings.TrimSpace(v.Formation)
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// SearchPhone finds every row whose normalized phone equals the normalized query
func SearchPhone(views []models.ClientView, raw string) []models.ClientView {
	key := phone.Normalize(raw)
	if key == "" {
		return nil
	}
	return filter(views, func(v models.ClientView) bool { return v.PhoneKey == key })
}

// FindDuplicate returns the first row carrying key, ignoring the row at
// (skipSource, skipRow). Used for the global phone uniqueness check.
func FindDuplicate(views []models.ClientView, key, skipSource string, skipRow int) (models.ClientView, bool) {
	if key == "" {
		return models.ClientView{}, false
	}
	for _, v := range views {
		if v.PhoneKey != key {
			continue
		}
		if v.Source == skipSource && v.Row == skipRow {
			continue
		}
		return v, true
	}
	return models.ClientView{}, false
}
