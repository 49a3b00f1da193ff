package health_test

import (
	"context"
	"errors"
	"testing"

	"megacrm-backend/internal/health"
	"megacrm-backend/internal/store"

	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCheckBasic(t *testing.T) {
	down := pinger{err: errors.New("connection refused")}

	tests := []struct {
		name        string
		store       health.Pinger
		cache       health.Pinger
		want        string
		cacheStatus string
	}{
		{"all up", store.NewMemory(), pinger{}, "healthy", "healthy"},
		{"no cache", store.NewMemory(), nil, "healthy", "disabled"},
		{"cache down", store.NewMemory(), down, "degraded", "unhealthy"},
		{"store down", down, pinger{}, "unhealthy", "healthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := health.NewHealthChecker(tt.store, tt.cache).CheckBasic(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.cacheStatus, status.Cache.Status)
		})
	}
}

func TestCheckDetailed(t *testing.T) {
	d := health.NewHealthChecker(store.NewMemory(), nil).CheckDetailed(context.Background())
	assert.Equal(t, "healthy", d.Status)
	assert.NotEmpty(t, d.Uptime)
}
