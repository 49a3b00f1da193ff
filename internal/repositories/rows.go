package repositories

import (
	"strings"
	"time"

	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// Reserved table names and suffixes
const (
	TransferTable  = "_TRANSFERS"
	PaymentsSuffix = "_PAIEMENTS"
)

// IsEmployeeTable reports whether a table holds an employee's clients.
// Internal tables, payment tables and finance tables are excluded.
func IsEmployeeTable(name string) bool {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return false
	case strings.HasPrefix(name, "_"):
		return false
	case strings.HasSuffix(name, PaymentsSuffix):
		return false
	case IsFinanceTable(name):
		return false
	}
	return true
}

// IsFinanceTable reports whether name looks like "Revenue <Mois> (<code>)" or
// "Dépense <Mois> (<code>)"
func IsFinanceTable(name string) bool {
	if !strings.HasSuffix(name, ")") {
		return false
	}
	return strings.HasPrefix(name, "Revenue ") || strings.HasPrefix(name, "Dépense ")
}

// PaymentsTable is the payments table of an employee
func PaymentsTable(employee string) string {
	return employee + PaymentsSuffix
}

// cell returns the trimmed value at 1-based column col, "" past the end
func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func optionalDate(s string) *time.Time {
	t, ok := timeutil.ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}

func amount(s string) decimal.Decimal {
	return ledger.ParseAmount(s)
}

// decodeRows walks the data rows of a table, skipping blank rows and flagging
// rows wider than the header. decode returns a reason when the row is rejected.
func decodeRows(table string, rows [][]string, decode func(n int, row []string) string) []models.RowError {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])
	var skipped []models.RowError
	for i, row := range rows[1:] {
		n := i + 2
		if blank(row) {
			skipped = append(skipped, models.RowError{Table: table, Row: n, Reason: "blank row"})
			continue
		}
		if reason := decode(n, row); reason != "" {
			skipped = append(skipped, models.RowError{Table: table, Row: n, Reason: reason})
			continue
		}
		if width > 0 && len(row) > width && !blank(row[width:]) {
			skipped = append(skipped, models.RowError{Table: table, Row: n, Reason: "extra cells ignored"})
		}
	}
	return skipped
}
