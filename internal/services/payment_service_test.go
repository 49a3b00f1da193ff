package services_test

import (
	"context"
	"testing"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPayments_RemainingIsClampedRunningBalance(t *testing.T) {
	f := newFixture(t, "Sana")
	ctx := context.Background()
	f.add(t, "Sana", "Amine", "98765432", "Excel")
	session := employeeSession("Sana", models.GrantPayments+"Sana")

	want := []int64{300, 100, 0}
	for i, amount := range []int64{200, 200, 200} {
		p, err := f.payments.Add(ctx, session, "Sana", &models.CreatePaymentRequest{
			Phone: "98765432", Price: dec(500), Amount: dec(amount),
		})
		require.NoError(t, err)
		assert.True(t, dec(want[i]).Equal(p.Remaining), "installment %d: got %s", i+1, p.Remaining)
		assert.Equal(t, "Excel", p.Formation, "formation defaults to the client's")
	}

	other, err := f.payments.Add(ctx, session, "Sana", &models.CreatePaymentRequest{
		Phone: "22333444", Formation: "Python", Price: dec(400), Amount: dec(100),
	})
	require.NoError(t, err)
	assert.True(t, dec(300).Equal(other.Remaining), "balances are kept per phone")

	list, err := f.payments.List(ctx, session, "Sana", "+216 98 765 432")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestPayments_RequireGrantAndPositiveAmounts(t *testing.T) {
	f := newFixture(t, "Sana")
	ctx := context.Background()

	_, err := f.payments.List(ctx, employeeSession("Sana"), "Sana", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.payments.List(ctx, employeeSession("Walid", models.GrantPayments+"Walid"), "Sana", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	session := employeeSession("Sana", models.GrantPayments+"Sana")
	_, err = f.payments.Add(ctx, session, "Sana", &models.CreatePaymentRequest{Phone: "98765432", Price: dec(0), Amount: dec(10)})
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.payments.Add(ctx, session, "Sana", &models.CreatePaymentRequest{Phone: "98765432", Price: dec(100), Amount: dec(-5)})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestPayments_AllWithTotals(t *testing.T) {
	f := newFixture(t, "Sana", "Walid")
	ctx := context.Background()
	admin := adminSession()

	_, err := f.payments.Add(ctx, admin, "Sana", &models.CreatePaymentRequest{Phone: "98765432", Formation: "Excel", Price: dec(500), Amount: dec(200), Date: "01/03/2026"})
	require.NoError(t, err)
	_, err = f.payments.Add(ctx, admin, "Sana", &models.CreatePaymentRequest{Phone: "98765432", Formation: "Excel", Price: dec(500), Amount: dec(100), Date: "05/03/2026"})
	require.NoError(t, err)
	_, err = f.payments.Add(ctx, admin, "Walid", &models.CreatePaymentRequest{Phone: "50000111", Formation: "Python", Price: dec(300), Amount: dec(300), Date: "02/02/2026"})
	require.NoError(t, err)

	all, err := f.payments.All(ctx, admin, models.PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Payments, 3)
	assert.True(t, dec(600).Equal(all.TotalPaid))
	assert.True(t, dec(200).Equal(all.TotalRemaining), "latest balance per client: 200 + 0")
	assert.True(t, dec(100).Equal(all.Payments[0].Amount), "newest first when not ascending")
	assert.Equal(t, "Walid", all.Payments[2].Employee)

	excel, err := f.payments.All(ctx, admin, models.PaymentFilter{Formations: []string{"excel"}, SortBy: "amount", Ascending: true})
	require.NoError(t, err)
	require.Len(t, excel.Payments, 2)
	assert.True(t, dec(100).Equal(excel.Payments[0].Amount))

	_, err = f.payments.All(ctx, employeeSession("Sana", models.GrantPayments+"Sana"), models.PaymentFilter{})
	assert.ErrorIs(t, err, services.ErrForbidden)
}
