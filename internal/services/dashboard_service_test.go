package services_test

import (
	"context"
	"testing"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService(t *testing.T) {
	f := newFixture(t, "Sana", "Walid")
	ctx := context.Background()
	f.add(t, "Sana", "Amine", "98765432", "Excel")
	_, err := f.clients.AddClient(ctx, "Walid", &models.CreateClientRequest{
		Name: "Mouna", Phone: "50000111", Formation: "Python", FollowUp: "10/03/2026", DateAdded: "20/02/2026",
	})
	require.NoError(t, err)
	_, err = f.clients.AddClient(ctx, "Walid", &models.CreateClientRequest{
		Name: "Rim", Phone: "50000333", Formation: "Python", Enrolled: true,
	})
	require.NoError(t, err)

	d, err := f.dashboard.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Dashboard{TotalClients: 3, AddedToday: 2, EnrolledToday: 1, Alerts: 1, Enrolled: 1, Rate: 33.33}, *d)

	byEmployee, err := f.dashboard.ByEmployee(ctx)
	require.NoError(t, err)
	require.Len(t, byEmployee, 2)
	assert.Equal(t, "Walid", byEmployee[0].Key)

	byMonth, err := f.dashboard.ByMonth(ctx)
	require.NoError(t, err)
	require.Len(t, byMonth, 2)
	assert.Equal(t, "03-2026", byMonth[0].Key)

	byFormation, err := f.dashboard.ByFormation(ctx, "02-2026")
	require.NoError(t, err)
	require.Len(t, byFormation, 1)
	assert.Equal(t, "Python", byFormation[0].Key)

	_, err = f.dashboard.ByFormation(ctx, "2026-02")
	assert.ErrorIs(t, err, services.ErrValidation)
}
