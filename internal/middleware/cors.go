package middleware

import (
	"strings"

	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/trace"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig says which browser origins may call the gateway. An origin is let through when its
// host ends in AllowedSuffix or when the request carries the dev-password header.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

var localOrigins = []string{"http://localhost:", "http://127.0.0.1:"}

const corsAllowHeaders = "Content-Type, Authorization, " + trace.Header + ", dev-password"

// CORS rejects cross-origin requests from unknown origins with 403. Requests without an Origin
// header are not cross-origin and pass untouched. Local preflights are answered directly.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		switch {
		case origin == "":
			return c.Next()
		case c.Method() == fiber.MethodOptions && isLocalOrigin(origin):
			allowOrigin(c, origin)
			return c.SendStatus(fiber.StatusNoContent)
		case suffix != "" && strings.HasSuffix(strings.ToLower(origin), suffix),
			cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword:
			allowOrigin(c, origin)
			return c.Next()
		}
		return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
	}
}

func isLocalOrigin(origin string) bool {
	for _, prefix := range localOrigins {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

func allowOrigin(c *fiber.Ctx, origin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
	c.Set(fiber.HeaderAccessControlExposeHeaders, trace.Header)
}
