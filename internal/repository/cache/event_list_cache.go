// Package cache keeps listing pages in Redis. Entries are keyed by a generation
// counter that every catalog mutation bumps, so stale pages are never read back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"ourevents/internal/domain"
)

const defaultPrefix = "ourevents:events"

type eventListCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewEventListCache returns a Redis-backed listing cache. A nil client yields a cache
// that never hits, so callers can run without Redis.
func NewEventListCache(client *redis.Client, ttl time.Duration) domain.EventListCache {
	if client == nil {
		return noopCache{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &eventListCache{client: client, ttl: ttl, prefix: defaultPrefix}
}

func (c *eventListCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *eventListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *eventListCache) Get(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) (*domain.EventPage, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	raw, err := c.client.Get(ctx, PageKey(c.prefix, gen, filter, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}
	var result domain.EventPage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, gen, false, fmt.Errorf("decode cached page: %w", err)
	}
	return &result, gen, true, nil
}

// Set stores result under gen, the generation returned by the Get that missed.
// If an invalidation happened in between, the entry lands under a retired
// generation and is never read.
func (c *eventListCache) Set(ctx context.Context, gen int64, filter domain.EventFilter, page domain.PaginationParams, result *domain.EventPage) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	return c.client.Set(ctx, PageKey(c.prefix, gen, filter, page), raw, c.ttl).Err()
}

func (c *eventListCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

// PageKey builds the cache key of one listing page for the given generation.
func PageKey(prefix string, gen int64, filter domain.EventFilter, page domain.PaginationParams) string {
	category := "-"
	if filter.CategoryID != nil {
		category = fmt.Sprintf("%d", *filter.CategoryID)
	}
	return fmt.Sprintf("%s:v%d:page=%d:limit=%d:category=%s:city=%s",
		prefix, gen, page.Page, page.PageSize, category, url.QueryEscape(filter.City))
}

type noopCache struct{}

func (noopCache) Get(context.Context, domain.EventFilter, domain.PaginationParams) (*domain.EventPage, int64, bool, error) {
	return nil, 0, false, nil
}

func (noopCache) Set(context.Context, int64, domain.EventFilter, domain.PaginationParams, *domain.EventPage) error {
	return nil
}

func (noopCache) Invalidate(context.Context) error { return nil }
