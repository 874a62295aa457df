package health

import (
	"encoding/json"
	"strconv"
	"time"

	healthsvc "planner-backend/internal/application/health"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Collector      *healthsvc.Collector
	HealthAdminKey string
}

// Live answers GET /health without touching dependencies.
func (h *Handlers) Live(c *fiber.Ctx) error {
	return response.Success(c, "OK", fiber.Map{"service": h.Collector.Service, "status": "ok"}, nil)
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	rdb := h.Collector.Rdb
	if rdb == nil {
		return response.Error(c, "Redis is not configured", fiber.StatusServiceUnavailable, nil)
	}
	ctx := c.UserContext()
	keys := h.Collector.Keys
	if err := rdb.Del(ctx, keys.All()...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := rdb.Set(ctx, keys.Key(middleware.KeyStartTime), strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns health data: service, status, runtime, traffic, dependencies.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.JSON(h.Collector.Collect(c.UserContext()))
}

// Errors returns the last 50 error log entries from Redis.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	rdb := h.Collector.Rdb
	if rdb == nil {
		return c.JSON([]interface{}{})
	}
	entries, err := rdb.LRange(c.UserContext(), h.Collector.Keys.Key(middleware.KeyErrorLog), 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, s := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil && m != nil {
			out = append(out, m)
		}
	}
	return c.JSON(out)
}
