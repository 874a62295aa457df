// Command portal serves the user-facing views and form actions on top of the gateway.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/config"
	"planner-backend/internal/infrastructure/upstream"
	"planner-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	bootstrap.Run(router.ServicePortal, "8080", func(cfg *config.Config, rdb *redis.Client) (*fiber.App, error) {
		return router.CreatePortalApp(cfg, upstream.New(router.ServiceGateway, cfg.GatewayURL, cfg.RequestTimeout), rdb)
	})
}
