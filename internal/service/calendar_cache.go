package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"benevita/internal/entities"

	"github.com/go-redis/redis/v8"
)

// CalendarCache memoizes resolved week grids. Keys carry the wall clock
// bucketed to the minute, so Past/PastToday classifications age out on
// their own; mutations additionally drop the live bucket.
type CalendarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCalendarCache(rdb *redis.Client) *CalendarCache {
	return &CalendarCache{rdb: rdb, ttl: 2 * time.Minute}
}

func calendarKey(providerID string, weekStart, now time.Time) string {
	return fmt.Sprintf("calendar:%s:%s:%s",
		providerID,
		weekStart.UTC().Format("2006-01-02"),
		now.UTC().Truncate(time.Minute).Format("2006-01-02T15:04"),
	)
}

func (c *CalendarCache) Get(ctx context.Context, providerID string, weekStart, now time.Time) (*entities.CalendarResponse, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, calendarKey(providerID, weekStart, now)).Result()
	if err != nil {
		return nil, false
	}
	var resp entities.CalendarResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *CalendarCache) Set(ctx context.Context, providerID string, weekStart, now time.Time, resp *entities.CalendarResponse) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, calendarKey(providerID, weekStart, now), raw, c.ttl)
}

// Drop discards the live bucket of the week containing t, so a mutation is
// visible to the very next read.
func (c *CalendarCache) Drop(ctx context.Context, providerID string, weekStart, now time.Time) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, calendarKey(providerID, weekStart, now))
}
