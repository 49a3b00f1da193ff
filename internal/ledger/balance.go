// Package ledger holds the money rules: running balances for payments and
// revenue rows, branch month summaries and the reconciliation of revenue
// against enrolled clients.
package ledger

import (
	"fmt"
	"strings"

	"megacrm-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Remaining is max(price - (sum(prior) + current), 0)
func Remaining(price decimal.Decimal, prior []decimal.Decimal, current decimal.Decimal) decimal.Decimal {
	paid := Sum(prior...).Add(current)
	rest := price.Sub(paid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// SameLabel compares ledger labels case-insensitively, ignoring surrounding blanks
func SameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// RevenueRemaining recomputes the balance of a new revenue row from every
// existing row of the month that carries the same label.
func RevenueRemaining(existing []models.RevenueEntry, label string, price, total decimal.Decimal) decimal.Decimal {
	var prior []decimal.Decimal
	for _, e := range existing {
		if SameLabel(e.Label, label) {
			prior = append(prior, e.Total)
		}
	}
	return Remaining(price, prior, total)
}

// PaymentRemaining recomputes the balance of a new installment from every
// earlier installment of the same client in the employee's payments table.
func PaymentRemaining(existing []models.Payment, phoneKey string, price, amount decimal.Decimal) decimal.Decimal {
	var prior []decimal.Decimal
	for _, p := range existing {
		if p.PhoneKey == phoneKey {
			prior = append(prior, p.Amount)
		}
	}
	return Remaining(price, prior, amount)
}

// RevenueTotal is the sum of the three revenue components
func RevenueTotal(admin, structure, prereg decimal.Decimal) decimal.Decimal {
	return admin.Add(structure).Add(prereg)
}

// DefaultLabel is the label proposed when a revenue row is linked to a client
func DefaultLabel(formation, name string) string {
	return strings.TrimSpace(fmt.Sprintf("Paiement %s - %s", formation, name))
}

// DefaultNote is the note proposed when a revenue row is linked to a client.
// ClientNameFromNote reads the name back out of it.
func DefaultNote(name, displayPhone, formation string) string {
	return fmt.Sprintf("Client: %s / %s / %s", name, displayPhone, formation)
}

// Summarize totals a branch month
func Summarize(branch string, month int, revenues []models.RevenueEntry, expenses []models.ExpenseEntry) models.FinanceSummary {
	sum := models.FinanceSummary{
		Branch:   branch,
		Month:    month,
		Revenue:  decimal.Zero,
		Expenses: decimal.Zero,
		BySource: make(map[string]decimal.Decimal, len(models.CashBoxes)),
	}
	for _, box := range models.CashBoxes {
		sum.BySource[box] = decimal.Zero
	}
	for _, r := range revenues {
		sum.Revenue = sum.Revenue.Add(r.Total)
	}
	for _, e := range expenses {
		sum.Expenses = sum.Expenses.Add(e.Amount)
		sum.BySource[e.Source] = sum.BySource[e.Source].Add(e.Amount)
	}
	sum.Net = sum.Revenue.Sub(sum.Expenses)
	return sum
}
