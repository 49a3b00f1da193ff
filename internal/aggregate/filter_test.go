package aggregate_test

import (
	"testing"

	"megacrm-backend/internal/aggregate"
	"megacrm-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters(t *testing.T) {
	views := aggregate.Merge(fixture(), today)

	sana := aggregate.FilterEmployee(views, "Sana")
	assert.Len(t, sana, 3)
	assert.Equal(t, 2, aggregate.PendingRemarks(sana))

	assert.Len(t, aggregate.Apply(views, models.ClientFilter{Month: "01-2026", Formation: "excel"}), 3)
	assert.Len(t, aggregate.Apply(views, models.ClientFilter{AlertsOnly: true}), 3)
	assert.Len(t, aggregate.Enrolled(views), 2)

	assert.Equal(t, []string{"03-2026", "02-2026", "01-2026"}, aggregate.Months(views))
	assert.Equal(t, []string{"Excel", "Python"}, aggregate.Formations(views))
}

func TestSearchPhone(t *testing.T) {
	views := aggregate.Merge(fixture(), today)

	found := aggregate.SearchPhone(views, "+216 98-765-432")
	require.Len(t, found, 1)
	assert.Equal(t, "Amine", found[0].Name)
	assert.Empty(t, aggregate.SearchPhone(views, ""))
}

func TestFindDuplicate(t *testing.T) {
	views := aggregate.Merge(fixture(), today)

	dup, ok := aggregate.FindDuplicate(views, "21698765432", "", 0)
	require.True(t, ok)
	assert.Equal(t, "Sana", dup.Source)

	_, ok = aggregate.FindDuplicate(views, "21698765432", "Sana", 2)
	assert.False(t, ok, "the edited row itself is not a duplicate")
}
