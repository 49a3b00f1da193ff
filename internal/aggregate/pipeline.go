// Package aggregate merges every employee table into one view with derived
// columns and computes the dashboard breakdowns. Everything is recomputed
// from scratch on each call.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"megacrm-backend/internal/alert"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/timeutil"
)

// Unknown is the bucket for rows whose grouping key is empty
const Unknown = "unknown"

// Merge unifies employee tables and derives phone key, month and alert for
// each row. Enrolled rows lose their follow-up date in the view.
func Merge(tables []models.EmployeeTable, today time.Time) []models.ClientView {
	var out []models.ClientView
	for _, t := range tables {
		for _, c := range t.Clients {
			v := models.ClientView{Client: c, Source: t.Employee}
			if v.PhoneKey == "" {
				v.PhoneKey = phone.Normalize(v.Phone)
			}
			v.Alert = alert.Derive(alert.Input{
				Manual:   c.ManualAlert,
				FollowUp: c.FollowUp,
				Enrolled: c.Enrolled,
			}, today)
			if c.Enrolled {
				v.FollowUp = nil
			}
			if c.DateAdded != nil {
				v.Month = timeutil.MonthKey(*c.DateAdded)
			}
			out = append(out, v)
		}
	}
	return out
}

// Rate is the enrollment percentage rounded to two decimals, 0 for no clients
func Rate(enrolled, clients int) float64 {
	if clients == 0 {
		return 0
	}
	return math.Round(float64(enrolled)/float64(clients)*100*100) / 100
}

func addedOn(v models.ClientView, today time.Time) bool {
	return v.DateAdded != nil && timeutil.SameDay(*v.DateAdded, today)
}

// Dashboard computes the headline KPIs
func Dashboard(views []models.ClientView, today time.Time) models.Dashboard {
	var d models.Dashboard
	d.TotalClients = len(views)
	for _, v := range views {
		added := addedOn(v, today)
		if added {
			d.AddedToday++
		}
		if v.Enrolled {
			d.Enrolled++
			if added {
				d.EnrolledToday++
			}
		}
		if alert.IsActive(v.Alert) {
			d.Alerts++
		}
	}
	d.Rate = Rate(d.Enrolled, d.TotalClients)
	return d
}

type grouper func(models.ClientView) (string, bool)

func group(views []models.ClientView, today time.Time, key grouper) []models.GroupStats {
	idx := make(map[string]*models.GroupStats)
	var order []string
	for _, v := range views {
		k, ok := key(v)
		if !ok {
			continue
		}
		g, seen := idx[k]
		if !seen {
			g = &models.GroupStats{Key: k}
			idx[k] = g
			order = append(order, k)
		}
		g.Clients++
		added := addedOn(v, today)
		if added {
			g.AddedToday++
		}
		if v.Enrolled {
			g.Enrolled++
			if added {
				g.EnrolledToday++
			}
		}
		if alert.IsActive(v.Alert) {
			g.Alerts++
		}
	}
	sort.Strings(order)
	out := make([]models.GroupStats, 0, len(order))
	for _, k := range order {
		g := idx[k]
		g.Rate = Rate(g.Enrolled, g.Clients)
		out = append(out, *g)
	}
	return out
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unknown
	}
	return s
}

// ByEmployee groups by source table, most alerts first, then most clients
func ByEmployee(views []models.ClientView, today time.Time) []models.GroupStats {
	out := group(views, today, func(v models.ClientView) (string, bool) {
		return orUnknown(v.Source), true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Alerts != out[j].Alerts {
			return out[i].Alerts > out[j].Alerts
		}
		return out[i].Clients > out[j].Clients
	})
	return out
}

// ByMonth groups by MM-YYYY of date added, newest month first. Rows without
// a parseable date added are left out.
func ByMonth(views []models.ClientView, today time.Time) []models.GroupStats {
	out := group(views, today, func(v models.ClientView) (string, bool) {
		return v.Month, v.Month != ""
	})
	sort.SliceStable(out, func(i, j int) bool {
		return monthOrder(out[i].Key) > monthOrder(out[j].Key)
	})
	return out
}

// ByFormation groups the rows of one month (all rows when month is empty) by
// formation, largest first.
func ByFormation(views []models.ClientView, month string, today time.Time) []models.GroupStats {
	out := group(FilterMonth(views, month), today, func(v models.ClientView) (string, bool) {
		return orUnknown(v.Formation), true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Clients > out[j].Clients
	})
	return out
}

func monthOrder(key string) int {
	t, ok := timeutil.ParseMonthKey(key)
	if !ok {
		return 0
	}
	return t.Year()*100 + int(t.Month())
}
