package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process TableStore. It backs the default dev setup and tests.
type Memory struct {
	mu     sync.RWMutex
	order  []string
	tables map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]string)}
}

func (m *Memory) ListTables(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out, nil
}

func (m *Memory) CreateTable(ctx context.Context, name string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrTableExists)
	}
	m.tables[name] = [][]string{cloneRow(header)}
	m.order = append(m.order, name)
	return nil
}

func (m *Memory) DropTable(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	delete(m.tables, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ReadAll(ctx context.Context, name string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = cloneRow(r)
	}
	return out, nil
}

func (m *Memory) WriteHeader(ctx context.Context, name string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	if len(rows) == 0 {
		m.tables[name] = [][]string{cloneRow(header)}
		return nil
	}
	rows[0] = cloneRow(header)
	return nil
}

func (m *Memory) AppendRow(ctx context.Context, name string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	m.tables[name] = append(rows, cloneRow(row))
	return nil
}

func (m *Memory) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	if err := checkRow(name, row, len(rows)); err != nil {
		return err
	}
	if col < 1 {
		return fmt.Errorf("%s column %d: %w", name, col, ErrRowOutOfRange)
	}
	r := rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	rows[row-1] = r
	return nil
}

func (m *Memory) DeleteRow(ctx context.Context, name string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	if err := checkRow(name, row, len(rows)); err != nil {
		return err
	}
	m.tables[name] = append(rows[:row-1], rows[row:]...)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func cloneRow(r []string) []string {
	out := make([]string, len(r))
	copy(out, r)
	return out
}
