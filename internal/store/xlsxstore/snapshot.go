package xlsxstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidWorkbook is returned by Import when the upload is not a readable .xlsx
var ErrInvalidWorkbook = errors.New("invalid workbook")

// Snapshot copies every table of src into a fresh in-memory workbook
func Snapshot(ctx context.Context, src store.TableStore) ([]byte, error) {
	names, err := src.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range names {
		rows, err := src.ReadAll(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			row := row
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import loads every worksheet of an uploaded workbook into dst. Existing
// tables are skipped. Date columns stored as Excel serials are rewritten to
// dd/mm/yyyy. It returns the names of the imported tables.
func Import(ctx context.Context, r io.Reader, dst store.TableStore) ([]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = file.Close() }()

	var imported []string
	for _, name := range file.GetSheetList() {
		rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return imported, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		exists, err := store.TableExists(ctx, dst, name)
		if err != nil {
			return imported, err
		}
		if exists {
			continue
		}
		header := rows[0]
		if err := dst.CreateTable(ctx, name, header); err != nil {
			return imported, fmt.Errorf("create %s: %w", name, err)
		}
		for _, row := range rows[1:] {
			if err := dst.AppendRow(ctx, name, normalizeDates(header, row)); err != nil {
				return imported, fmt.Errorf("append %s: %w", name, err)
			}
		}
		imported = append(imported, name)
	}
	return imported, nil
}

func normalizeDates(header, row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	for i, v := range out {
		if i >= len(header) || !strings.HasPrefix(header[i], "Date") {
			continue
		}
		if _, ok := timeutil.ParseDate(v); ok {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			out[i] = t.Format(timeutil.DateLayout)
		}
	}
	return out
}
