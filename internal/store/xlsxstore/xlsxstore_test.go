package xlsxstore_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"megacrm-backend/internal/store"
	"megacrm-backend/internal/store/xlsxstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "crm.xlsx")

	s, err := xlsxstore.Open(path)
	require.NoError(t, err)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	require.NoError(t, s.CreateTable(ctx, "Sana", []string{"Nom", "Tel"}))
	require.NoError(t, s.CreateTable(ctx, "Sana_PAIEMENTS", []string{"Tel"}))
	assert.ErrorIs(t, s.CreateTable(ctx, "Sana", nil), store.ErrTableExists)

	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"Amine", "21698765432"}))
	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"Ines", "21622333444"}))
	require.NoError(t, s.UpdateCell(ctx, "Sana", 2, 1, "Amine B."))
	require.NoError(t, s.DeleteRow(ctx, "Sana", 3))
	assert.ErrorIs(t, s.DeleteRow(ctx, "Sana", 7), store.ErrRowOutOfRange)
	require.NoError(t, s.Close())

	reopened, err := xlsxstore.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	tables, err = reopened.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sana", "Sana_PAIEMENTS"}, tables)

	rows, err := reopened.ReadAll(ctx, "Sana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nom", "Tel"}, {"Amine B.", "21698765432"}}, rows)

	require.NoError(t, reopened.DropTable(ctx, "Sana_PAIEMENTS"))
	_, err = reopened.ReadAll(ctx, "Sana_PAIEMENTS")
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestSnapshotAndImport(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	require.NoError(t, src.CreateTable(ctx, "Sana", []string{"Nom", "Date ajout"}))
	require.NoError(t, src.AppendRow(ctx, "Sana", []string{"Amine", "01/02/2026"}))
	require.NoError(t, src.CreateTable(ctx, "_TRANSFERS", []string{"Horodatage"}))

	data, err := xlsxstore.Snapshot(ctx, src)
	require.NoError(t, err)

	dst := store.NewMemory()
	imported, err := xlsxstore.Import(ctx, bytes.NewReader(data), dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sana", "_TRANSFERS"}, imported)

	rows, err := dst.ReadAll(ctx, "Sana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nom", "Date ajout"}, {"Amine", "01/02/2026"}}, rows)

	// a second import skips tables that already exist
	imported, err = xlsxstore.Import(ctx, bytes.NewReader(data), dst)
	require.NoError(t, err)
	assert.Empty(t, imported)
}

func TestImport_ConvertsExcelSerialDates(t *testing.T) {
	ctx := context.Background()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"Nom", "Date ajout"}))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "Amine"))
	require.NoError(t, f.SetCellFloat("Sheet1", "B2", 46023, 0, 64))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	dst := store.NewMemory()
	_, err = xlsxstore.Import(ctx, bytes.NewReader(buf.Bytes()), dst)
	require.NoError(t, err)

	rows, err := dst.ReadAll(ctx, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "01/01/2026", rows[1][1])
}

func TestCreateTable_CaseOnlyCollision(t *testing.T) {
	ctx := context.Background()
	s, err := xlsxstore.Open(filepath.Join(t.TempDir(), "crm.xlsx"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateTable(ctx, "Sana", []string{"Nom"}))
	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"Amine"}))

	assert.ErrorIs(t, s.CreateTable(ctx, "sana", []string{"X"}), store.ErrTableExists)

	rows, err := s.ReadAll(ctx, "Sana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nom"}, {"Amine"}}, rows, "existing sheet is untouched")

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sana"}, tables)
}

func TestCheckTableName(t *testing.T) {
	ctx := context.Background()
	s, err := xlsxstore.Open(filepath.Join(t.TempDir(), "crm.xlsx"))
	require.NoError(t, err)
	defer s.Close()
	wrapped := store.WithRetry(s, time.Millisecond)

	tests := []struct {
		name  string
		table string
		ok    bool
	}{
		{"short", "Sana_PAIEMENTS", true},
		{"exactly 31", strings.Repeat("a", 31), true},
		{"too long", "Mohamed Amine Ben Salah_PAIEMENTS", false},
		{"slash", "Sana/Walid", false},
		{"bracket", "Sana[1]", false},
		{"apostrophe", "'Sana", false},
		{"blank", "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.CheckTableName(wrapped, tt.table)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, store.ErrInvalidName)
			assert.ErrorIs(t, s.CreateTable(ctx, tt.table, []string{"h"}), store.ErrInvalidName)
		})
	}

	assert.NoError(t, store.CheckTableName(store.NewMemory(), strings.Repeat("a", 90)))
}
