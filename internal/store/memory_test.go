package store_test

import (
	"context"
	"testing"

	"megacrm-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_TableLifecycle(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, s.CreateTable(ctx, "Sana", []string{"A", "B"}))
	err := s.CreateTable(ctx, "Sana", []string{"A"})
	assert.ErrorIs(t, err, store.ErrTableExists)

	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"1", "2"}))
	require.NoError(t, s.AppendRow(ctx, "Sana", []string{"3"}))
	require.NoError(t, s.UpdateCell(ctx, "Sana", 3, 2, "4"))

	rows, err := s.ReadAll(ctx, "Sana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}, {"1", "2"}, {"3", "4"}}, rows)

	require.NoError(t, s.DeleteRow(ctx, "Sana", 2))
	rows, err = s.ReadAll(ctx, "Sana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}, {"3", "4"}}, rows)

	assert.ErrorIs(t, s.DeleteRow(ctx, "Sana", 1), store.ErrRowOutOfRange)
	assert.ErrorIs(t, s.UpdateCell(ctx, "Sana", 9, 1, "x"), store.ErrRowOutOfRange)

	require.NoError(t, s.DropTable(ctx, "Sana"))
	_, err = s.ReadAll(ctx, "Sana")
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestMemory_ReadAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.CreateTable(ctx, "t", []string{"h"}))
	require.NoError(t, s.AppendRow(ctx, "t", []string{"v"}))

	rows, err := s.ReadAll(ctx, "t")
	require.NoError(t, err)
	rows[1][0] = "mutated"

	again, err := s.ReadAll(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "v", again[1][0])
}

func TestEnsureTable_RepairsHeader(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.CreateTable(ctx, "t", []string{"a"}))

	require.NoError(t, store.EnsureTable(ctx, s, "t", []string{"a", "b"}))
	rows, err := s.ReadAll(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rows[0])

	require.NoError(t, store.EnsureTable(ctx, s, "new", []string{"x"}))
	ok, err := store.TableExists(ctx, s, "new")
	require.NoError(t, err)
	assert.True(t, ok)
}
