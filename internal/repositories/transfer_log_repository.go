package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"
)

// TransferLogRepository appends reassignment records to the transfer table.
// Rows are never updated or deleted.
type TransferLogRepository struct {
	Store store.TableStore
}

func NewTransferLogRepository(s store.TableStore) *TransferLogRepository {
	return &TransferLogRepository{Store: s}
}

func (r *TransferLogRepository) Create(ctx context.Context, l models.TransferLog) error {
	if err := store.EnsureTable(ctx, r.Store, TransferTable, models.TransferLogHeader); err != nil {
		return err
	}
	row := []string{
		l.At.In(timeutil.Business).Format(timeutil.DateTimeLayout),
		l.Actor,
		l.ClientName,
		l.PhoneKey,
		l.Source,
		l.Destination,
	}
	if err := r.Store.AppendRow(ctx, TransferTable, row); err != nil {
		return fmt.Errorf("append transfer log: %w", err)
	}
	return nil
}

// List returns the log, newest first
func (r *TransferLogRepository) List(ctx context.Context) ([]models.TransferLog, error) {
	rows, err := r.Store.ReadAll(ctx, TransferTable)
	if errors.Is(err, store.ErrTableNotFound) {
		return []models.TransferLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read transfer log: %w", err)
	}
	logs := make([]models.TransferLog, 0, len(rows))
	decodeRows(TransferTable, rows, func(n int, row []string) string {
		at, err := time.ParseInLocation(timeutil.DateTimeLayout, cell(row, 1), timeutil.Business)
		if err != nil {
			return "invalid timestamp"
		}
		logs = append(logs, models.TransferLog{
			At:          at,
			Actor:       cell(row, 2),
			ClientName:  cell(row, 3),
			PhoneKey:    cell(row, 4),
			Source:      cell(row, 5),
			Destination: cell(row, 6),
		})
		return ""
	})
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].At.After(logs[j].At) })
	return logs, nil
}
