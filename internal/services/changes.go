package services

import (
	"context"

	"megacrm-backend/internal/cache"
	"megacrm-backend/internal/realtime"
)

// Changes is called after every successful write: the whole cache namespace
// is dropped and connected clients are told to refetch.
type Changes struct {
	Cache *cache.Cache
	Hub   *realtime.Hub
}

func NewChanges(c *cache.Cache, hub *realtime.Hub) *Changes {
	return &Changes{Cache: c, Hub: hub}
}

func (c *Changes) Notify(ctx context.Context, ev realtime.Event) {
	if c == nil {
		return
	}
	c.Cache.InvalidateAll(ctx)
	c.Hub.Publish(ev)
}
