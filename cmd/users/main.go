// Command users serves the user directory: registration, login and JWT verification.
package main

import (
	"planner-backend/bootstrap"
	"planner-backend/internal/config"
	"planner-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	bootstrap.Run(router.ServiceUsers, "8001", func(cfg *config.Config, rdb *redis.Client) (*fiber.App, error) {
		if err := bootstrap.EnsureJWTSecret(cfg); err != nil {
			return nil, err
		}
		return bootstrap.Store(router.ServiceUsers, router.CreateUsersApp)(cfg, rdb)
	})
}
