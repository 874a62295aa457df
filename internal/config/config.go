package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper). Every service binary loads the same
// struct and reads the fields it needs.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string // postgres DSN, or sqlite:<path> for local runs
	RedisURL    string

	JWTSecret string
	TokenTTL  time.Duration

	UsersURL          string
	EventsURL         string
	InvitationsURL    string
	ParticipationsURL string
	CalendarsURL      string
	GatewayURL        string
	RequestTimeout    time.Duration

	HealthAdminKey      string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	// Host names match the docker-compose services of the deployment.
	viper.SetDefault("USERS_URL", "http://backend-auth:8000")
	viper.SetDefault("EVENTS_URL", "http://backend-events:8000")
	viper.SetDefault("INVITATIONS_URL", "http://backend-invitations:8000")
	viper.SetDefault("PARTICIPATIONS_URL", "http://backend-participations:8000")
	viper.SetDefault("CALENDARS_URL", "http://backend-calendar:8000")
	viper.SetDefault("GATEWAY_URL", "http://backend-middleman:8000")

	return &Config{
		Env:                 viper.GetString("APP_ENV"),
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		RedisURL:            viper.GetString("REDIS_URL"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		TokenTTL:            time.Duration(viper.GetInt("TOKEN_TTL_MINUTES")) * time.Minute,
		UsersURL:            trimURL(viper.GetString("USERS_URL")),
		EventsURL:           trimURL(viper.GetString("EVENTS_URL")),
		InvitationsURL:      trimURL(viper.GetString("INVITATIONS_URL")),
		ParticipationsURL:   trimURL(viper.GetString("PARTICIPATIONS_URL")),
		CalendarsURL:        trimURL(viper.GetString("CALENDARS_URL")),
		GatewayURL:          trimURL(viper.GetString("GATEWAY_URL")),
		RequestTimeout:      time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
	}, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PortOr returns the configured port or def when PORT is unset.
func (c *Config) PortOr(def string) string {
	if c.Port == "" {
		return def
	}
	return c.Port
}

func trimURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
