package pgstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"megacrm-backend/internal/database"
	"megacrm-backend/internal/database/migrations"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/store/pgstore"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL and returns a migrated store.
// Skipped in -short mode and when Docker is not reachable.
func startPostgres(t *testing.T) *pgstore.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container-based test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "megacrm",
				"POSTGRES_PASSWORD": "megacrm",
				"POSTGRES_DB":       "megacrm",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker not available: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://megacrm:megacrm@%s:%s/megacrm?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.NewMigrator(pool, migrations.FS, ".").RunMigrations(ctx))
	return pgstore.New(pool)
}

func TestStore_TableLifecycle(t *testing.T) {
	s := startPostgres(t)
	ctx := context.Background()
	header := []string{"Nom", "Tel"}

	require.NoError(t, s.CreateTable(ctx, "Sana", header))
	assert.ErrorIs(t, s.CreateTable(ctx, "Sana", header), store.ErrTableExists)

	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"Amine", "21622111333"}))
	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"Rim", "21622111444"}))
	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"Hedi", "21622111555"}))

	require.NoError(t, s.UpdateCell(ctx, "Sana", 3, 1, "Rim B."))
	require.NoError(t, s.DeleteRow(ctx, "Sana", 2))
	assert.ErrorIs(t, s.DeleteRow(ctx, "Sana", 9), store.ErrRowOutOfRange)

	rows, err := s.ReadAll(ctx, "Sana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		header,
		{"Rim B.", "21622111444"},
		{"Hedi", "21622111555"},
	}, rows)

	names, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sana"}, names)

	require.NoError(t, s.DropTable(ctx, "Sana"))
	_, err = s.ReadAll(ctx, "Sana")
	assert.ErrorIs(t, err, store.ErrTableNotFound)
	assert.NoError(t, s.Ping(ctx))
}
