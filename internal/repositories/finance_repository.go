package repositories

import (
	"context"
	"errors"
	"fmt"

	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"
)

// FinanceRepository reads and appends branch month ledgers. Tables are
// created lazily on the first append.
type FinanceRepository struct {
	Store store.TableStore
}

func NewFinanceRepository(s store.TableStore) *FinanceRepository {
	return &FinanceRepository{Store: s}
}

func (r *FinanceRepository) read(ctx context.Context, kind string, month int, code string) (string, [][]string, error) {
	table, err := models.FinanceTable(kind, month, code)
	if err != nil {
		return "", nil, err
	}
	rows, err := r.Store.ReadAll(ctx, table)
	if errors.Is(err, store.ErrTableNotFound) {
		return table, nil, nil
	}
	if err != nil {
		return table, nil, fmt.Errorf("read %s: %w", table, err)
	}
	return table, rows, nil
}

func (r *FinanceRepository) Revenues(ctx context.Context, code string, month int) ([]models.RevenueEntry, []models.RowError, error) {
	table, rows, err := r.read(ctx, models.KindRevenue, month, code)
	if err != nil {
		return nil, nil, err
	}
	entries, skipped := DecodeRevenues(table, rows)
	return entries, skipped, nil
}

func (r *FinanceRepository) Expenses(ctx context.Context, code string, month int) ([]models.ExpenseEntry, []models.RowError, error) {
	table, rows, err := r.read(ctx, models.KindExpense, month, code)
	if err != nil {
		return nil, nil, err
	}
	entries, skipped := DecodeExpenses(table, rows)
	return entries, skipped, nil
}

func (r *FinanceRepository) AppendRevenue(ctx context.Context, code string, month int, e models.RevenueEntry) error {
	return r.append(ctx, models.KindRevenue, month, code, models.RevenueHeader, EncodeRevenue(e))
}

func (r *FinanceRepository) AppendExpense(ctx context.Context, code string, month int, e models.ExpenseEntry) error {
	return r.append(ctx, models.KindExpense, month, code, models.ExpenseHeader, EncodeExpense(e))
}

func (r *FinanceRepository) append(ctx context.Context, kind string, month int, code string, header, row []string) error {
	table, err := models.FinanceTable(kind, month, code)
	if err != nil {
		return err
	}
	if err := store.EnsureTable(ctx, r.Store, table, header); err != nil {
		return err
	}
	if err := r.Store.AppendRow(ctx, table, row); err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}

func DecodeRevenues(table string, rows [][]string) ([]models.RevenueEntry, []models.RowError) {
	var out []models.RevenueEntry
	skipped := decodeRows(table, rows, func(n int, row []string) string {
		out = append(out, models.RevenueEntry{
			Row:             n,
			Date:            optionalDate(cell(row, 1)),
			Label:           cell(row, 2),
			Price:           amount(cell(row, 3)),
			AdminAmount:     amount(cell(row, 4)),
			StructureAmount: amount(cell(row, 5)),
			PreRegAmount:    amount(cell(row, 6)),
			Total:           amount(cell(row, 7)),
			DueDate:         optionalDate(cell(row, 8)),
			Remaining:       amount(cell(row, 9)),
			Mode:            cell(row, 10),
			Employee:        cell(row, 11),
			Category:        cell(row, 12),
			Note:            cell(row, 13),
			ClientKey:       cell(row, 14),
		})
		return ""
	})
	return out, skipped
}

func EncodeRevenue(e models.RevenueEntry) []string {
	return []string{
		timeutil.FormatOptionalDate(e.Date),
		e.Label,
		ledger.FormatAmount(e.Price),
		ledger.FormatAmount(e.AdminAmount),
		ledger.FormatAmount(e.StructureAmount),
		ledger.FormatAmount(e.PreRegAmount),
		ledger.FormatAmount(e.Total),
		timeutil.FormatOptionalDate(e.DueDate),
		ledger.FormatAmount(e.Remaining),
		e.Mode,
		e.Employee,
		e.Category,
		e.Note,
		e.ClientKey,
	}
}

func DecodeExpenses(table string, rows [][]string) ([]models.ExpenseEntry, []models.RowError) {
	var out []models.ExpenseEntry
	skipped := decodeRows(table, rows, func(n int, row []string) string {
		out = append(out, models.ExpenseEntry{
			Row:      n,
			Date:     optionalDate(cell(row, 1)),
			Label:    cell(row, 2),
			Amount:   amount(cell(row, 3)),
			Source:   cell(row, 4),
			Mode:     cell(row, 5),
			Employee: cell(row, 6),
			Category: cell(row, 7),
			Note:     cell(row, 8),
		})
		return ""
	})
	return out, skipped
}

func EncodeExpense(e models.ExpenseEntry) []string {
	return []string{
		timeutil.FormatOptionalDate(e.Date),
		e.Label,
		ledger.FormatAmount(e.Amount),
		e.Source,
		e.Mode,
		e.Employee,
		e.Category,
		e.Note,
	}
}
