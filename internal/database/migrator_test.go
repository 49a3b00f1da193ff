package database_test

import (
	"testing"
	"testing/fstest"

	"megacrm-backend/internal/database"
	"megacrm-backend/internal/database/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":     {Data: []byte("SELECT 2")},
		"001_a.sql":     {Data: []byte("SELECT 1")},
		"003_reset.sql": {Data: []byte("DROP TABLE x")},
		"README.md":     {Data: []byte("docs")},
		"004_c.sql":     {Data: []byte("SELECT 4")},
	}

	files, err := database.PendingFiles(fsys, ".", map[string]bool{"004_c.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := database.PendingFiles(migrations.FS, ".", nil)
	require.NoError(t, err)
	assert.Contains(t, files, "001_record_store.sql")
}
