// Command gateway serves the orchestration API in front of the stores.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/config"
	"planner-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	bootstrap.Run(router.ServiceGateway, "8000", func(cfg *config.Config, rdb *redis.Client) (*fiber.App, error) {
		return router.CreateGatewayApp(cfg, router.NewGatewayService(cfg), rdb), nil
	})
}
