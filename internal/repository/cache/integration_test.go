//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"ourevents/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	redisURL, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client := NewRedisClient(ctx, redisURL)
	require.NotNil(t, client, "redis at %s did not answer", redisURL)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func samplePage() *domain.EventPage {
	description := "Soirée jazz au bord du Rhône"
	start := time.Date(2030, 6, 1, 20, 30, 0, 0, time.UTC)
	return &domain.EventPage{
		Items: []*domain.Event{{
			ID:            3,
			Title:         "Concert Jazz Live",
			Description:   &description,
			ImageURL:      "https://example.com/jazz.jpg",
			Capacity:      150,
			StartDatetime: start,
			EndDatetime:   start.Add(3 * time.Hour),
			PremiseID:     2,
			Premise:       &domain.Premise{ID: 2, Address: "10 Quai Rambaud", City: "Lyon", PostalCode: "69002"},
			ManagerID:     1,
			Categories:    []*domain.Category{{ID: 1, Name: "Music"}, {ID: 4, Name: "Festival"}},
		}},
		TotalCount: 5,
	}
}

func TestIntegration_EventListCache_RoundTrip(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	c := NewEventListCache(client, time.Minute)

	cat := int64(1)
	filter := domain.EventFilter{CategoryID: &cat, City: "Lyon"}
	page := domain.PaginationParams{Page: 1, PageSize: 3}

	got, gen, ok, err := c.Get(ctx, filter, page)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, int64(0), gen)

	want := samplePage()
	require.NoError(t, c.Set(ctx, gen, filter, page, want))

	got, gen, ok, err = c.Get(ctx, filter, page)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(0), gen)
	assert.Equal(t, want, got)
	require.NotNil(t, got.Items[0].Premise)
	assert.Equal(t, "Lyon", got.Items[0].Premise.City)
	assert.Len(t, got.Items[0].Categories, 2)

	ttl, err := client.TTL(ctx, PageKey(defaultPrefix, gen, filter, page)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	_, _, ok, err = c.Get(ctx, domain.EventFilter{City: "Paris"}, page)
	require.NoError(t, err)
	assert.False(t, ok, "other filters have their own entries")
}

func TestIntegration_EventListCache_InvalidateMisses(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	c := NewEventListCache(client, time.Minute)
	page := domain.PaginationParams{Page: 1, PageSize: 3}

	_, gen, _, err := c.Get(ctx, domain.EventFilter{}, page)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, gen, domain.EventFilter{}, page, samplePage()))

	require.NoError(t, c.Invalidate(ctx))

	got, newGen, ok, err := c.Get(ctx, domain.EventFilter{}, page)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, gen+1, newGen)
}

func TestIntegration_EventListCache_WriteUnderRetiredGeneration(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	c := NewEventListCache(client, time.Minute)
	page := domain.PaginationParams{Page: 1, PageSize: 3}

	_, gen, ok, err := c.Get(ctx, domain.EventFilter{}, page)
	require.NoError(t, err)
	require.False(t, ok)

	// an event write lands between the miss and the store
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, domain.EventFilter{}, page, samplePage()))

	_, _, ok, err = c.Get(ctx, domain.EventFilter{}, page)
	require.NoError(t, err)
	assert.False(t, ok)
}
