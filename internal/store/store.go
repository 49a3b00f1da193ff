// Package store is the record store adapter: named tables of ordered string
// rows, where row 1 is the header. Backends are interchangeable behind
// TableStore.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableExists   = errors.New("table already exists")
	ErrRowOutOfRange = errors.New("row out of range")
	ErrInvalidName   = errors.New("invalid table name")
	// ErrTransient marks failures worth one retry (rate limiting, dropped connection)
	ErrTransient = errors.New("transient store error")
)

// TableStore is implemented by every backend. Row and column indexes are
// 1-based; row 1 is the header row.
type TableStore interface {
	ListTables(ctx context.Context) ([]string, error)
	CreateTable(ctx context.Context, name string, header []string) error
	DropTable(ctx context.Context, name string) error
	ReadAll(ctx context.Context, name string) ([][]string, error)
	WriteHeader(ctx context.Context, name string, header []string) error
	AppendRow(ctx context.Context, name string, row []string) error
	UpdateCell(ctx context.Context, name string, row, col int, value string) error
	DeleteRow(ctx context.Context, name string, row int) error
	Ping(ctx context.Context) error
}

// NameChecker is implemented by backends that restrict table names
type NameChecker interface {
	CheckTableName(name string) error
}

// CheckTableName asks the backend behind s, unwrapping decorators, whether
// name can be created. Backends without restrictions accept every name.
func CheckTableName(s TableStore, name string) error {
	for {
		if c, ok := s.(NameChecker); ok {
			return c.CheckTableName(name)
		}
		u, ok := s.(interface{ Unwrap() TableStore })
		if !ok {
			return nil
		}
		s = u.Unwrap()
	}
}

// EnsureTable creates the table when missing, and rewrites its header when the
// stored one is shorter than or differs from the expected header.
func EnsureTable(ctx context.Context, s TableStore, name string, header []string) error {
	err := s.CreateTable(ctx, name, header)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrTableExists) {
		return fmt.Errorf("create table %q: %w", name, err)
	}
	rows, err := s.ReadAll(ctx, name)
	if err != nil {
		return fmt.Errorf("read table %q: %w", name, err)
	}
	if len(rows) > 0 && headerMatches(rows[0], header) {
		return nil
	}
	if err := s.WriteHeader(ctx, name, header); err != nil {
		return fmt.Errorf("write header %q: %w", name, err)
	}
	return nil
}

// TableExists reports whether name is one of the store's tables
func TableExists(ctx context.Context, s TableStore, name string) (bool, error) {
	names, err := s.ListTables(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func headerMatches(got, want []string) bool {
	if len(got) < len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func checkRow(name string, row, rows int) error {
	if row < 2 || row > rows {
		return fmt.Errorf("%s row %d: %w", name, row, ErrRowOutOfRange)
	}
	return nil
}
