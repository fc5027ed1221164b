package service

import (
	"context"
	"encoding/json"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/daypaste/dayclip/internal/domain"
)

const (
	latestFeedKey = "dayclip:latest"
	latestFeedTTL = 30 // seconds
)

// FeedCache keeps the default cross-day latest page in memcached between
// mutations. Every successful mutation deletes the key, so clients never see
// a feed older than the last write.
type FeedCache struct {
	mc *memcache.Client
}

func NewFeedCache(mc *memcache.Client) *FeedCache {
	return &FeedCache{mc: mc}
}

func (c *FeedCache) GetLatest(ctx context.Context) ([]domain.Entry, bool) {
	item, err := c.mc.Get(latestFeedKey)
	if err != nil {
		return nil, false
	}

	var entries []domain.Entry
	if err := json.Unmarshal(item.Value, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *FeedCache) SetLatest(ctx context.Context, entries []domain.Entry) {
	value, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = c.mc.Set(&memcache.Item{
		Key:        latestFeedKey,
		Value:      value,
		Expiration: latestFeedTTL,
	})
}

func (c *FeedCache) Invalidate(ctx context.Context) {
	_ = c.mc.Delete(latestFeedKey)
}
