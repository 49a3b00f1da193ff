package services

import (
	"context"
	"time"

	"megacrm-backend/internal/aggregate"
	"megacrm-backend/internal/cache"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/timeutil"
)

// DashboardService serves the aggregate views. The raw employee tables are
// cached; derived columns are recomputed per request since alerts depend on
// the current day.
type DashboardService struct {
	Clients *repositories.ClientRepository
	Cache   *cache.Cache
	TTL     time.Duration
	Now     func() time.Time
}

func NewDashboardService(clients *repositories.ClientRepository, c *cache.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{Clients: clients, Cache: c, TTL: ttl, Now: timeutil.Now}
}

func (s *DashboardService) tables(ctx context.Context) ([]models.EmployeeTable, error) {
	var tables []models.EmployeeTable
	if s.Cache.GetJSON(ctx, cache.ClientsKey, &tables) {
		return tables, nil
	}
	tables, err := s.Clients.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.SetJSON(ctx, cache.ClientsKey, tables, s.TTL)
	return tables, nil
}

// Views returns the unified client table with derived columns
func (s *DashboardService) Views(ctx context.Context) ([]models.ClientView, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Merge(tables, s.Now()), nil
}

func (s *DashboardService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	views, err := s.Views(ctx)
	if err != nil {
		return nil, err
	}
	d := aggregate.Dashboard(views, s.Now())
	return &d, nil
}

func (s *DashboardService) ByEmployee(ctx context.Context) ([]models.GroupStats, error) {
	views, err := s.Views(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(aggregate.ByEmployee(views, s.Now())), nil
}

func (s *DashboardService) ByMonth(ctx context.Context) ([]models.GroupStats, error) {
	views, err := s.Views(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(aggregate.ByMonth(views, s.Now())), nil
}

// ByFormation breaks one month (all months when empty) down by formation
func (s *DashboardService) ByFormation(ctx context.Context, month string) ([]models.GroupStats, error) {
	if month != "" {
		if _, ok := timeutil.ParseMonthKey(month); !ok {
			return nil, invalid("month must be MM-YYYY, got %q", month)
		}
	}
	views, err := s.Views(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(aggregate.ByFormation(views, month, s.Now())), nil
}

func nonNil(stats []models.GroupStats) []models.GroupStats {
	if stats == nil {
		return []models.GroupStats{}
	}
	return stats
}
