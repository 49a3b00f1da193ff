package ledger

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

var clientNotePattern = regexp.MustCompile(`(?m)Client:\s*([^/\n]+?)\s*(?:/|$)`)

// ClientNameFromNote extracts <name> from a note of the form
// "Client: <name> / ...". Notes without the marker yield "".
func ClientNameFromNote(note string) string {
	m := clientNotePattern.FindStringSubmatch(note)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// NormalizeName folds case and collapses whitespace for name matching
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// MonthReconciliation is the enrolled-client view of one MM-YYYY bucket
type MonthReconciliation struct {
	Month               string          `json:"month"`
	PaidByEnrolled      decimal.Decimal `json:"paid_by_enrolled"`
	OutstandingEnrolled decimal.Decimal `json:"outstanding_enrolled"`
}

// Reconciliation is the per-month view of what enrolled clients paid and still owe
type Reconciliation struct {
	Months              []MonthReconciliation `json:"months"`
	TotalPaidByEnrolled decimal.Decimal       `json:"total_paid_by_enrolled"`
	TotalOutstanding    decimal.Decimal       `json:"total_outstanding"`
	Matched             int                   `json:"matched"`
	Unmatched           int                   `json:"unmatched"`
}

// Reconcile matches revenue rows to enrolled clients and buckets them by month.
// A row matches by its client key when it has one, otherwise by the name in
// its "Client:" note. Paid amounts are bucketed by entry date; outstanding
// balances by due date (falling back to entry date) and only for the current
// month onwards.
func Reconcile(entries []models.RevenueEntry, enrolled []models.Client, now time.Time) Reconciliation {
	byKey := make(map[string]bool, len(enrolled))
	byName := make(map[string]bool, len(enrolled))
	for _, c := range enrolled {
		if c.PhoneKey != "" {
			byKey[c.PhoneKey] = true
		}
		if n := NormalizeName(c.Name); n != "" {
			byName[n] = true
		}
	}

	current := timeutil.StartOfMonth(now)
	buckets := make(map[string]*MonthReconciliation)
	bucket := func(key string) *MonthReconciliation {
		b, ok := buckets[key]
		if !ok {
			b = &MonthReconciliation{Month: key, PaidByEnrolled: decimal.Zero, OutstandingEnrolled: decimal.Zero}
			buckets[key] = b
		}
		return b
	}

	out := Reconciliation{TotalPaidByEnrolled: decimal.Zero, TotalOutstanding: decimal.Zero}
	for _, e := range entries {
		if !matches(e, byKey, byName) {
			out.Unmatched++
			continue
		}
		out.Matched++
		out.TotalPaidByEnrolled = out.TotalPaidByEnrolled.Add(e.Total)

		if e.Date != nil {
			b := bucket(timeutil.MonthKey(*e.Date))
			b.PaidByEnrolled = b.PaidByEnrolled.Add(e.Total)
		}

		due := e.DueDate
		if due == nil {
			due = e.Date
		}
		if due == nil || timeutil.StartOfMonth(*due).Before(current) {
			continue
		}
		b := bucket(timeutil.MonthKey(*due))
		b.OutstandingEnrolled = b.OutstandingEnrolled.Add(e.Remaining)
		out.TotalOutstanding = out.TotalOutstanding.Add(e.Remaining)
	}

	for _, b := range buckets {
		out.Months = append(out.Months, *b)
	}
	sort.Slice(out.Months, func(i, j int) bool {
		return monthOrder(out.Months[i].Month) < monthOrder(out.Months[j].Month)
	})
	return out
}

func matches(e models.RevenueEntry, byKey, byName map[string]bool) bool {
	if e.ClientKey != "" {
		return byKey[e.ClientKey]
	}
	name := ClientNameFromNote(e.Note)
	if name == "" {
		return false
	}
	return byName[NormalizeName(name)]
}

// monthOrder turns "MM-YYYY" into a sortable YYYYMM number
func monthOrder(key string) int {
	t, ok := timeutil.ParseMonthKey(key)
	if !ok {
		return 0
	}
	return t.Year()*100 + int(t.Month())
}
