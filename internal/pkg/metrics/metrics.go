// Package metrics exposes Prometheus counters and latency histograms for inbound requests and
// for calls between services.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "planner"

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests by service, method, route and status.",
	}, []string{"service", "method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by service, method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	upstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Outbound calls to other services by target, method and outcome.",
	}, []string{"target", "method", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Outbound call latency by target and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"target", "method"})
)

// Middleware counts requests and observes their latency. The route label is the matched route
// pattern, so ids do not explode the label space.
func Middleware(service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := c.Route().Path
		requests.WithLabelValues(service, c.Method(), route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(service, c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveUpstream records one outbound call. outcome is "ok", the answered status code, or a
// failure class such as "unreachable".
func ObserveUpstream(target, method, outcome string, d time.Duration) {
	upstreamCalls.WithLabelValues(target, method, outcome).Inc()
	upstreamDuration.WithLabelValues(target, method).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
