package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okDep(name string) Dependency {
	return Dependency{Name: name, Ping: func(context.Context) (time.Duration, error) { return time.Millisecond, nil }}
}

func TestCollect_WithoutRedis(t *testing.T) {
	c := &Collector{Service: "events", Deps: []Dependency{okDep("database")}}
	result := c.Collect(context.Background())
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "events", result.Service)
	assert.Equal(t, "connected", result.Dependencies["database"].Status)
	assert.Equal(t, "disabled", result.Dependencies["redis"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
}

func TestCollect_FailingDependency(t *testing.T) {
	down := Dependency{Name: "users", Ping: func(context.Context) (time.Duration, error) { return 0, errors.New("refused") }}
	c := &Collector{Service: "gateway", Deps: []Dependency{okDep("events"), down}}
	result := c.Collect(context.Background())
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "error", result.Dependencies["users"].Status)
	assert.Nil(t, result.Dependencies["users"].PingMs)
}

func TestCollect_TrafficFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	keys := middleware.HealthKeys("events")
	ctx := context.Background()
	c := &Collector{Service: "events", Rdb: rdb, Keys: keys}

	result := c.Collect(ctx)
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "100", result.Traffic.SuccessRate)

	require.NoError(t, rdb.Set(ctx, keys.Key(middleware.KeyReqTotal), "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, keys.Key(middleware.KeyReqErrors), "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, keys.Key(middleware.KeyResTime), "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, keys.Key(middleware.KeyResCount), "10", 0).Err())

	result = c.Collect(ctx)
	assert.Equal(t, 10, result.Traffic.TotalRequests)
	assert.Equal(t, 2, result.Traffic.FailedCount)
	assert.Equal(t, 8, result.Traffic.SuccessCount)
	assert.Equal(t, "80.0", result.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result.Traffic.AvgResponseTime)
}
