package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"
)

type PaymentRepository struct {
	Store store.TableStore
}

func NewPaymentRepository(s store.TableStore) *PaymentRepository {
	return &PaymentRepository{Store: s}
}

// Employees returns the employees that own a payments table
func (r *PaymentRepository) Employees(ctx context.Context) ([]string, error) {
	names, err := r.Store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var out []string
	for _, n := range names {
		if strings.HasSuffix(n, PaymentsSuffix) && len(n) > len(PaymentsSuffix) {
			out = append(out, strings.TrimSuffix(n, PaymentsSuffix))
		}
	}
	return out, nil
}

// List returns every installment of an employee. A missing table is empty.
func (r *PaymentRepository) List(ctx context.Context, employee string) ([]models.Payment, []models.RowError, error) {
	table := PaymentsTable(employee)
	rows, err := r.Store.ReadAll(ctx, table)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", table, err)
	}
	payments, skipped := DecodePayments(employee, table, rows)
	return payments, skipped, nil
}

// Append stores an installment, creating the payments table on first use
func (r *PaymentRepository) Append(ctx context.Context, employee string, p models.Payment) error {
	table := PaymentsTable(employee)
	if err := store.EnsureTable(ctx, r.Store, table, models.PaymentHeader); err != nil {
		return err
	}
	if err := r.Store.AppendRow(ctx, table, EncodePayment(p)); err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}

func DecodePayments(employee, table string, rows [][]string) ([]models.Payment, []models.RowError) {
	var payments []models.Payment
	skipped := decodeRows(table, rows, func(n int, row []string) string {
		key := phone.Normalize(cell(row, 1))
		if key == "" {
			return "missing phone"
		}
		payments = append(payments, models.Payment{
			Row:       n,
			Employee:  employee,
			PhoneKey:  key,
			Formation: cell(row, 2),
			Price:     amount(cell(row, 3)),
			Amount:    amount(cell(row, 4)),
			Date:      optionalDate(cell(row, 5)),
			Remaining: amount(cell(row, 6)),
		})
		return ""
	})
	return payments, skipped
}

// EncodePayment renders an installment in PaymentHeader order
func EncodePayment(p models.Payment) []string {
	return []string{
		p.PhoneKey,
		p.Formation,
		ledger.FormatAmount(p.Price),
		ledger.FormatAmount(p.Amount),
		timeutil.FormatOptionalDate(p.Date),
		ledger.FormatAmount(p.Remaining),
	}
}
