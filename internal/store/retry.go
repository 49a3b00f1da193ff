package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// Retrying wraps a TableStore and retries each call once, after a fixed
// delay, when it fails with a transient error.
type Retrying struct {
	next    TableStore
	delay   time.Duration
	OnRetry func(op string, err error)
}

func WithRetry(next TableStore, delay time.Duration) *Retrying {
	return &Retrying{next: next, delay: delay}
}

// Unwrap returns the wrapped store
func (r *Retrying) Unwrap() TableStore {
	return r.next
}

func (r *Retrying) do(ctx context.Context, op string, fn func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(r.delay), 1), ctx)
	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		log.Printf("[Store] %s failed (%v), retrying in %v", op, err, wait)
		if r.OnRetry != nil {
			r.OnRetry(op, err)
		}
	})
}

func (r *Retrying) ListTables(ctx context.Context) ([]string, error) {
	var out []string
	err := r.do(ctx, "list_tables", func() (err error) {
		out, err = r.next.ListTables(ctx)
		return err
	})
	return out, err
}

func (r *Retrying) CreateTable(ctx context.Context, name string, header []string) error {
	return r.do(ctx, "create_table", func() error { return r.next.CreateTable(ctx, name, header) })
}

func (r *Retrying) DropTable(ctx context.Context, name string) error {
	return r.do(ctx, "drop_table", func() error { return r.next.DropTable(ctx, name) })
}

func (r *Retrying) ReadAll(ctx context.Context, name string) ([][]string, error) {
	var out [][]string
	err := r.do(ctx, "read_all", func() (err error) {
		out, err = r.next.ReadAll(ctx, name)
		return err
	})
	return out, err
}

func (r *Retrying) WriteHeader(ctx context.Context, name string, header []string) error {
	return r.do(ctx, "write_header", func() error { return r.next.WriteHeader(ctx, name, header) })
}

func (r *Retrying) AppendRow(ctx context.Context, name string, row []string) error {
	return r.do(ctx, "append_row", func() error { return r.next.AppendRow(ctx, name, row) })
}

func (r *Retrying) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	return r.do(ctx, "update_cell", func() error { return r.next.UpdateCell(ctx, name, row, col, value) })
}

func (r *Retrying) DeleteRow(ctx context.Context, name string, row int) error {
	return r.do(ctx, "delete_row", func() error { return r.next.DeleteRow(ctx, name, row) })
}

func (r *Retrying) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
