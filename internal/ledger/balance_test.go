package ledger_test

import (
	"testing"

	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"":           "0",
		"120":        "120",
		"120,50":     "120.5",
		"1 200 DT":   "1200",
		"300 TND":    "300",
		"€45.10":     "45.1",
		"$ 9":        "9",
		"abc":        "0",
		"250 دينار":  "250",
	}
	for in, want := range tests {
		assert.True(t, d(want).Equal(ledger.ParseAmount(in)), "%q -> %s", in, ledger.ParseAmount(in))
	}
}

func TestRemaining(t *testing.T) {
	assert.True(t, d("300").Equal(ledger.Remaining(d("500"), nil, d("200"))))
	assert.True(t, d("100").Equal(ledger.Remaining(d("500"), []decimal.Decimal{d("200")}, d("200"))))
	assert.True(t, decimal.Zero.Equal(ledger.Remaining(d("500"), []decimal.Decimal{d("400")}, d("200"))), "never negative")
}

func TestRevenueRemaining_LabelMatchIsTrimmedAndCaseInsensitive(t *testing.T) {
	existing := []models.RevenueEntry{
		{Label: "Paiement Excel - Amine", Total: d("150")},
		{Label: "  paiement excel - amine ", Total: d("100")},
		{Label: "Paiement Word - Amine", Total: d("999")},
	}
	got := ledger.RevenueRemaining(existing, "PAIEMENT EXCEL - AMINE", d("600"), d("50"))
	assert.True(t, d("300").Equal(got), got.String())
}

func TestPaymentRemaining_KeyedByPhone(t *testing.T) {
	existing := []models.Payment{
		{PhoneKey: "21698765432", Amount: d("100")},
		{PhoneKey: "21622333444", Amount: d("700")},
	}
	got := ledger.PaymentRemaining(existing, "21698765432", d("450"), d("50"))
	assert.True(t, d("300").Equal(got), got.String())
}

func TestSummarize(t *testing.T) {
	revenues := []models.RevenueEntry{{Total: d("200")}, {Total: d("150.5")}}
	expenses := []models.ExpenseEntry{
		{Amount: d("40"), Source: models.CashBoxAdmin},
		{Amount: d("10"), Source: models.CashBoxAdmin},
		{Amount: d("25"), Source: models.CashBoxStructure},
	}
	sum := ledger.Summarize("Bizerte", 3, revenues, expenses)

	assert.True(t, d("350.5").Equal(sum.Revenue))
	assert.True(t, d("75").Equal(sum.Expenses))
	assert.True(t, d("275.5").Equal(sum.Net))
	assert.True(t, d("50").Equal(sum.BySource[models.CashBoxAdmin]))
	assert.True(t, decimal.Zero.Equal(sum.BySource[models.CashBoxInscription]))
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "Paiement Excel - Amine", ledger.DefaultLabel("Excel", "Amine"))
	note := ledger.DefaultNote("Amine Ben Ali", "+21698765432", "Excel")
	assert.Equal(t, "Client: Amine Ben Ali / +21698765432 / Excel", note)
	assert.Equal(t, "Amine Ben Ali", ledger.ClientNameFromNote(note))
}
