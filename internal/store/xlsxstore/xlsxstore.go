// Package xlsxstore keeps record-store tables as worksheets of a single .xlsx
// workbook on disk. Every write is saved immediately.
package xlsxstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"megacrm-backend/internal/store"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	// maxSheetName is the worksheet name limit of the xlsx format
	maxSheetName = 31
)

type Store struct {
	mu   sync.Mutex
	path string
	file *excelize.File
	// placeholder is true while the workbook only holds excelize's default sheet
	placeholder bool
}

// Open loads the workbook at path, creating an empty one when it does not exist
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		s.file = f
		s.placeholder = isPlaceholder(f)
	case errors.Is(err, os.ErrNotExist):
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create workbook dir: %w", err)
			}
		}
		s.file = excelize.NewFile()
		s.placeholder = true
		if err := s.file.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
	default:
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placeholder {
		return nil, nil
	}
	return s.file.GetSheetList(), nil
}

func (s *Store) CreateTable(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkName(name); err != nil {
		return err
	}
	// Sheet lookups ignore case, so "sana" would reuse the sheet of "Sana".
	if existing, ok := s.sheetFold(name); ok {
		if existing == name {
			return fmt.Errorf("%s: %w", name, store.ErrTableExists)
		}
		return fmt.Errorf("%s collides with %s: %w", name, existing, store.ErrTableExists)
	}
	if s.placeholder {
		if err := s.file.SetSheetName(defaultSheet, name); err != nil {
			return err
		}
		s.placeholder = false
	} else {
		if _, err := s.file.NewSheet(name); err != nil {
			return err
		}
	}
	if err := s.file.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) DropTable(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSheet(name) {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	if len(s.file.GetSheetList()) == 1 {
		// A workbook needs one sheet; keep an empty placeholder instead.
		if _, err := s.file.NewSheet(defaultSheet); err != nil {
			return err
		}
		s.placeholder = true
	}
	if err := s.file.DeleteSheet(name); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) ReadAll(ctx context.Context, name string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSheet(name) {
		return nil, fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	return s.file.GetRows(name)
}

func (s *Store) WriteHeader(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSheet(name) {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	if err := s.file.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) AppendRow(ctx context.Context, name string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSheet(name) {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	rows, err := s.file.GetRows(name)
	if err != nil {
		return err
	}
	next := len(rows) + 1
	if next < 2 {
		next = 2
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	if err := s.file.SetSheetRow(name, cell, &row); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRow(name, row); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%s column %d: %w", name, col, store.ErrRowOutOfRange)
	}
	if err := s.file.SetCellStr(name, cell, value); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) DeleteRow(ctx context.Context, name string, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRow(name, row); err != nil {
		return err
	}
	if err := s.file.RemoveRow(name, row); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

// CheckTableName rejects names that cannot be worksheet names
func (s *Store) CheckTableName(name string) error {
	return checkName(name)
}

func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("empty sheet name: %w", store.ErrInvalidName)
	case utf8.RuneCountInString(name) > maxSheetName:
		return fmt.Errorf("%q is longer than %d characters: %w", name, maxSheetName, store.ErrInvalidName)
	case strings.ContainsAny(name, `:\/?*[]`):
		return fmt.Errorf("%q contains one of : \\ / ? * [ ]: %w", name, store.ErrInvalidName)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("%q starts or ends with an apostrophe: %w", name, store.ErrInvalidName)
	}
	return nil
}

// sheetFold finds a sheet whose name equals name ignoring case
func (s *Store) sheetFold(name string) (string, bool) {
	if s.placeholder {
		return "", false
	}
	for _, n := range s.file.GetSheetList() {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

func (s *Store) hasSheet(name string) bool {
	if s.placeholder {
		return false
	}
	for _, n := range s.file.GetSheetList() {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Store) checkRow(name string, row int) error {
	if !s.hasSheet(name) {
		return fmt.Errorf("%s: %w", name, store.ErrTableNotFound)
	}
	rows, err := s.file.GetRows(name)
	if err != nil {
		return err
	}
	if row < 2 || row > len(rows) {
		return fmt.Errorf("%s row %d: %w", name, row, store.ErrRowOutOfRange)
	}
	return nil
}

func isPlaceholder(f *excelize.File) bool {
	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != defaultSheet {
		return false
	}
	rows, err := f.GetRows(defaultSheet)
	return err == nil && len(rows) == 0
}

func (s *Store) save() error {
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
