// Package bootstrap is the shared startup of the service binaries under cmd/.
package bootstrap

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"planner-backend/internal/config"
	"planner-backend/internal/infrastructure/database"
	"planner-backend/internal/interfaces/router"
	"planner-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	devJWTSecret    = "planner-dev-secret"
	shutdownTimeout = 10 * time.Second
)

var ErrJWTSecretRequired = errors.New("JWT_SECRET is required in production")

// Builder creates a service's Fiber app. rdb is nil when REDIS_URL is unset.
type Builder func(cfg *config.Config, rdb *redis.Client) (*fiber.App, error)

// Run loads config, connects Redis, builds the app and serves it on PORT (default port) until
// SIGINT or SIGTERM.
func Run(service, port string, build Builder) {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}
	logger.Setup(service, cfg.Env, cfg.LogLevel)

	rdb, err := router.OpenRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis config")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
		defer rdb.Close()
	}

	app, err := build(cfg, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.PortOr(port)
	go func() {
		log.Info().Str("addr", addr).Msg("server running")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("listen")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// OpenDatabase opens DATABASE_URL and checks the connection. Outside production an unset
// DATABASE_URL falls back to a SQLite file named after the service.
func OpenDatabase(cfg *config.Config, service string) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		if cfg.IsProduction() {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		dsn = "sqlite:" + service + ".db"
		log.Warn().Str("dsn", dsn).Msg("DATABASE_URL not set, using local SQLite")
	}
	db, err := database.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(db); err != nil {
		return nil, err
	}
	log.Info().Msg("database connected")
	return db, nil
}

// EnsureJWTSecret refuses to start the users service in production without JWT_SECRET. Elsewhere
// it falls back to a fixed development secret.
func EnsureJWTSecret(cfg *config.Config) error {
	if cfg.JWTSecret != "" {
		return nil
	}
	if cfg.IsProduction() {
		return ErrJWTSecretRequired
	}
	log.Warn().Msg("JWT_SECRET not set, using the development secret")
	cfg.JWTSecret = devJWTSecret
	return nil
}

// Store returns a Builder for a store service: it opens the service's database first.
func Store(service string, create func(*config.Config, *gorm.DB, *redis.Client) (*fiber.App, error)) Builder {
	return func(cfg *config.Config, rdb *redis.Client) (*fiber.App, error) {
		db, err := OpenDatabase(cfg, service)
		if err != nil {
			return nil, err
		}
		return create(cfg, db, rdb)
	}
}
