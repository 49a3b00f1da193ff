// Package pgstore keeps record-store tables in PostgreSQL: one crm_tables row
// per table and one crm_rows row per stored row, with dense 1-based positions.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"megacrm-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT name FROM crm_tables ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) CreateTable(ctx context.Context, name string, header []string) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `INSERT INTO crm_tables (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: %w", name, store.ErrTableExists)
		}
		_, err = tx.Exec(ctx, `INSERT INTO crm_rows (table_name, position, cells) VALUES ($1, 1, $2)`, name, header)
		return err
	})
}

func (s *Store) DropTable(ctx context.Context, name string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM crm_tables WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context, name string) ([][]string, error) {
	if err := s.exists(ctx, s.DB, name); err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, `SELECT cells FROM crm_rows WHERE table_name = $1 ORDER BY position`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (s *Store) WriteHeader(ctx context.Context, name string, header []string) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if err := s.lock(ctx, tx, name); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE crm_rows SET cells = $2 WHERE table_name = $1 AND position = 1`, name, header)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `INSERT INTO crm_rows (table_name, position, cells) VALUES ($1, 1, $2)`, name, header)
		return err
	})
}

func (s *Store) AppendRow(ctx context.Context, name string, row []string) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if err := s.lock(ctx, tx, name); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO crm_rows (table_name, position, cells)
			SELECT $1, COALESCE(MAX(position), 0) + 1, $2 FROM crm_rows WHERE table_name = $1
		`, name, row)
		return err
	})
}

func (s *Store) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	if col < 1 {
		return fmt.Errorf("%s column %d: %w", name, col, store.ErrRowOutOfRange)
	}
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if err := s.lock(ctx, tx, name); err != nil {
			return err
		}
		if row < 2 {
			return fmt.Errorf("%s row %d: %w", name, row, store.ErrRowOutOfRange)
		}
		var cells []string
		err := tx.QueryRow(ctx, `SELECT cells FROM crm_rows WHERE table_name = $1 AND position = $2`, name, row).Scan(&cells)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s row %d: %w", name, row, store.ErrRowOutOfRange)
		}
		if err != nil {
			return err
		}
		for len(cells) < col {
			cells = append(cells, "")
		}
		cells[col-1] = value
		_, err = tx.Exec(ctx, `UPDATE crm_rows SET cells = $3 WHERE table_name = $1 AND position = $2`, name, row, cells)
		return err
	})
}

func (s *Store) DeleteRow(ctx context.Context, name string, row int) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if err := s.lock(ctx, tx, name); err != nil {
			return err
		}
		if row < 2 {
			return fmt.Errorf("%s row %d: %w", name, row, store.ErrRowOutOfRange)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM crm_rows WHERE table_name = $1 AND position = $2`, name, row)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s row %d: %w", name, row, store.ErrRowOutOfRange)
		}
		// Shift in two passes so the primary key never collides mid-statement.
		if _, err := tx.Exec(ctx, `UPDATE crm_rows SET position = -position WHERE table_name = $1 AND position > $2`, name, row); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE crm_rows SET position = -position - 1 WHERE table_name = $1 AND position < 0`, name)
		return err
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) exists(ctx context.Context, q querier, name string) error {
	var found string
	err := q.QueryRow(ctx, `SELECT name FROM crm_tables WHERE name = $1`, name).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	return err
}

// lock serializes writers of one table for the rest of the transaction
func (s *Store) lock(ctx context.Context, tx pgx.Tx, name string) error {
	var found string
	err := tx.QueryRow(ctx, `SELECT name FROM crm_tables WHERE name = $1 FOR UPDATE`, name).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	return err
}
