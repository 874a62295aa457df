package middleware

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis key suffixes for per-service request stats. Keys are "health:<service>:<suffix>" so
// services sharing one Redis keep separate counters.
const (
	KeyReqTotal  = "req_total"
	KeyReqErrors = "req_errors"
	KeyResTime   = "res_time_total"
	KeyResCount  = "res_count"
	KeyStartTime = "start_time"
	KeyLastReq   = "last_request"
	KeyErrorLog  = "error_log"

	errorLogSize = 50
)

// HealthKeys builds the Redis keys for one service.
type HealthKeys string

func (k HealthKeys) Key(suffix string) string {
	return "health:" + string(k) + ":" + suffix
}

// All returns every stats key, for reset.
func (k HealthKeys) All() []string {
	return []string{k.Key(KeyReqTotal), k.Key(KeyReqErrors), k.Key(KeyResTime), k.Key(KeyResCount), k.Key(KeyStartTime), k.Key(KeyLastReq), k.Key(KeyErrorLog)}
}

// HealthMarker records request stats in Redis (skip /health*, favicon). 5xx responses are pushed
// onto a capped error log.
func HealthMarker(rdb *redis.Client, keys HealthKeys) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		lastReq := map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		}
		b, _ := json.Marshal(lastReq)
		ctx := c.UserContext()
		_, _ = rdb.Set(ctx, keys.Key(KeyLastReq), b, 0).Result()
		_, _ = rdb.Incr(ctx, keys.Key(KeyReqTotal)).Result()

		err := c.Next()

		ms := time.Since(start).Milliseconds()
		_, _ = rdb.Incr(ctx, keys.Key(KeyResCount)).Result()
		_, _ = rdb.IncrByFloat(ctx, keys.Key(KeyResTime), float64(ms)).Result()
		status := c.Response().StatusCode()
		if err != nil {
			// The global error handler has not rendered err yet.
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		if status >= fiber.StatusInternalServerError {
			_, _ = rdb.Incr(ctx, keys.Key(KeyReqErrors)).Result()
			entry, _ := json.Marshal(map[string]interface{}{
				"time":     start,
				"method":   c.Method(),
				"path":     c.OriginalURL(),
				"status":   status,
				"trace_id": GetTraceID(c),
				"error":    errString(err),
			})
			_, _ = rdb.LPush(ctx, keys.Key(KeyErrorLog), entry).Result()
			_, _ = rdb.LTrim(ctx, keys.Key(KeyErrorLog), 0, errorLogSize-1).Result()
		}
		return err
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
