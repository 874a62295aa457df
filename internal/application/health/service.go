package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"planner-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Dependency is something a service needs to do its job: its database, or a downstream service.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) (time.Duration, error)
}

// CollectResult is the /health/json payload.
type CollectResult struct {
	Service      string               `json:"service"`
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMb"`
	HeapUsedMB int `json:"heapUsedMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// Collector gathers health for one service.
type Collector struct {
	Service string
	Rdb     *redis.Client // optional; traffic stats need it
	Keys    middleware.HealthKeys
	Deps    []Dependency
	Started time.Time
}

// Collect pings every dependency and reads traffic stats. Status is "ok" when every dependency
// (and Redis, when configured) answered.
func (c *Collector) Collect(ctx context.Context) CollectResult {
	result := CollectResult{
		Service:      c.Service,
		Status:       "ok",
		Dependencies: make(map[string]DepStatus),
	}

	for _, d := range c.Deps {
		st := DepStatus{Status: "connected"}
		if elapsed, err := d.Ping(ctx); err != nil {
			st.Status = "error"
			result.Status = "issue"
		} else {
			st.PingMs = elapsed.Milliseconds()
		}
		result.Dependencies[d.Name] = st
	}

	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := c.Started.UnixMilli()
	if c.Started.IsZero() {
		startTimeMs = time.Now().UnixMilli()
	}

	if c.Rdb == nil {
		result.Dependencies["redis"] = DepStatus{Status: "disabled"}
	} else {
		start := time.Now()
		if err := c.Rdb.Ping(ctx).Err(); err != nil {
			result.Dependencies["redis"] = DepStatus{Status: "error"}
			result.Status = "issue"
		} else {
			result.Dependencies["redis"] = DepStatus{Status: "connected", PingMs: time.Since(start).Milliseconds()}
			startTimeMs = c.readTraffic(ctx, &stats, startTimeMs)
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	result.Traffic = stats
	return result
}

func (c *Collector) readTraffic(ctx context.Context, stats *TrafficInfo, startTimeMs int64) int64 {
	totalReq, _ := c.Rdb.Get(ctx, c.Keys.Key(middleware.KeyReqTotal)).Result()
	totalErr, _ := c.Rdb.Get(ctx, c.Keys.Key(middleware.KeyReqErrors)).Result()
	totalTime, _ := c.Rdb.Get(ctx, c.Keys.Key(middleware.KeyResTime)).Result()
	resCount, _ := c.Rdb.Get(ctx, c.Keys.Key(middleware.KeyResCount)).Result()
	startTimeStr, _ := c.Rdb.Get(ctx, c.Keys.Key(middleware.KeyStartTime)).Result()
	lastReqStr, _ := c.Rdb.Get(ctx, c.Keys.Key(middleware.KeyLastReq)).Result()

	if startTimeStr != "" {
		if t, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		c.Rdb.Set(ctx, c.Keys.Key(middleware.KeyStartTime), startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(totalReq)
	stats.FailedCount, _ = strconv.Atoi(totalErr)
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(totalTime, 64)
	countSum, _ := strconv.Atoi(resCount)
	if countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if lastReqStr != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
		stats.LastRequest = lastReq
	}
	return startTimeMs
}
