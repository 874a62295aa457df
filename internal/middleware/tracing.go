package middleware

import (
	"planner-backend/internal/pkg/trace"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const traceIDLocal = "trace_id"

// Tracing adds a trace ID to the request and response. An incoming X-Trace-Id (set by the gateway
// or portal on their outbound calls) is kept so one user action shares an id across services.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(trace.Header)
		if traceID == "" || len(traceID) > 64 {
			traceID = uuid.New().String()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(trace.Header, traceID)
		c.SetUserContext(trace.With(c.UserContext(), traceID))
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}
