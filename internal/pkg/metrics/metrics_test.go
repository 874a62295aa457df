package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware("metrics-test"))
	app.Get("/metrics", Handler())
	app.Get("/events/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "down")
	})

	for _, path := range []string{"/events/1", "/events/2", "/boom"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	out := scrape(t, app)
	assert.Contains(t, out, `planner_http_requests_total{method="GET",route="/events/:id",service="metrics-test",status="404"} 2`)
	assert.Contains(t, out, `planner_http_requests_total{method="GET",route="/boom",service="metrics-test",status="502"} 1`)
	assert.Contains(t, out, `planner_http_request_duration_seconds_count{method="GET",route="/events/:id",service="metrics-test"} 2`)
}

func TestObserveUpstream(t *testing.T) {
	ObserveUpstream("metrics-store", "GET", "unreachable", 5*time.Millisecond)

	app := fiber.New()
	app.Get("/metrics", Handler())
	out := scrape(t, app)
	assert.Contains(t, out, `planner_upstream_requests_total{method="GET",outcome="unreachable",target="metrics-store"} 1`)
}
