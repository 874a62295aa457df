package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	calsvc "planner-backend/internal/application/calendars"
	eventsvc "planner-backend/internal/application/events"
	gatewaysvc "planner-backend/internal/application/gateway"
	healthsvc "planner-backend/internal/application/health"
	invsvc "planner-backend/internal/application/invitations"
	partsvc "planner-backend/internal/application/participations"
	portalsvc "planner-backend/internal/application/portal"
	usersvc "planner-backend/internal/application/users"
	"planner-backend/internal/config"
	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"
	"planner-backend/internal/infrastructure/upstream"
	calhandler "planner-backend/internal/interfaces/handlers/calendars"
	eventhandler "planner-backend/internal/interfaces/handlers/events"
	gatewayhandler "planner-backend/internal/interfaces/handlers/gateway"
	healthhandler "planner-backend/internal/interfaces/handlers/health"
	invhandler "planner-backend/internal/interfaces/handlers/invitations"
	parthandler "planner-backend/internal/interfaces/handlers/participations"
	portalhandler "planner-backend/internal/interfaces/handlers/portal"
	userhandler "planner-backend/internal/interfaces/handlers/users"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service names; also the prefix of each service's health keys in Redis.
const (
	ServiceUsers          = "users"
	ServiceEvents         = "events"
	ServiceInvitations    = "invitations"
	ServiceParticipations = "participations"
	ServiceCalendars      = "calendars"
	ServiceGateway        = "gateway"
	ServicePortal         = "portal"
)

var ErrRedisRequired = errors.New("REDIS_URL is required")

// OpenRedis connects to REDIS_URL. Returns nil, nil when url is empty.
func OpenRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func dbDependency(db *gorm.DB) healthsvc.Dependency {
	return healthsvc.Dependency{Name: "database", Ping: func(ctx context.Context) (time.Duration, error) {
		start := time.Now()
		if err := database.Ping(db); err != nil {
			return 0, err
		}
		return time.Since(start), nil
	}}
}

func upstreamDependency(c *upstream.Client) healthsvc.Dependency {
	return healthsvc.Dependency{Name: c.Name, Ping: c.Ping}
}

// newApp builds the Fiber app every service shares: error handler, tracing, logging, metrics,
// CORS, request stats when Redis is configured, and the /health and /metrics endpoints.
func newApp(service string, cfg *config.Config, rdb *redis.Client, deps ...healthsvc.Dependency) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:                 "planner-" + service,
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(metrics.Middleware(service))
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	keys := middleware.HealthKeys(service)
	if rdb != nil {
		app.Use(middleware.HealthMarker(rdb, keys))
	}

	hh := &healthhandler.Handlers{
		Collector:      &healthsvc.Collector{Service: service, Rdb: rdb, Keys: keys, Deps: deps, Started: time.Now()},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health", hh.Live)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)
	app.Get("/metrics", metrics.Handler())
	return app
}

// CreateUsersApp serves the user directory on db.
func CreateUsersApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*fiber.App, error) {
	if err := database.AutoMigrate(db, &domain.User{}); err != nil {
		return nil, err
	}
	app := newApp(ServiceUsers, cfg, rdb, dbDependency(db))
	h := &userhandler.Handlers{Service: &usersvc.Service{DB: db, Tokens: usersvc.NewTokens(cfg.JWTSecret, cfg.TokenTTL)}}
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/me", h.Me)
	app.Get("/users", h.List)
	app.Get("/users/:id", h.Get)
	return app, nil
}

// CreateEventsApp serves the event store on db.
func CreateEventsApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*fiber.App, error) {
	if err := database.AutoMigrate(db, &domain.Event{}); err != nil {
		return nil, err
	}
	app := newApp(ServiceEvents, cfg, rdb, dbDependency(db))
	h := &eventhandler.Handlers{Service: &eventsvc.Service{DB: db}}
	app.Get("/events", h.List)
	app.Get("/events/:id", h.Get)
	app.Post("/events", h.Create)
	return app, nil
}

// CreateInvitationsApp serves the invitation store on db.
func CreateInvitationsApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*fiber.App, error) {
	if err := database.AutoMigrate(db, &domain.Invitation{}); err != nil {
		return nil, err
	}
	app := newApp(ServiceInvitations, cfg, rdb, dbDependency(db))
	h := &invhandler.Handlers{Service: &invsvc.Service{DB: db}}
	app.Get("/invitations", h.List)
	app.Get("/invitations/:id", h.Get)
	app.Post("/invitations", h.Create)
	app.Put("/invitations/:id/status/:status", h.UpdateStatus)
	return app, nil
}

// CreateParticipationsApp serves the participation store on db.
func CreateParticipationsApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*fiber.App, error) {
	if err := database.AutoMigrate(db, &domain.Participation{}); err != nil {
		return nil, err
	}
	app := newApp(ServiceParticipations, cfg, rdb, dbDependency(db))
	h := &parthandler.Handlers{Service: &partsvc.Service{DB: db}}
	app.Get("/participations", h.List)
	app.Get("/participations/:id", h.Get)
	app.Post("/participations", h.Create)
	app.Put("/participations/:id/status/:status", h.UpdateStatus)
	return app, nil
}

// CreateCalendarsApp serves the calendar-share store on db.
func CreateCalendarsApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*fiber.App, error) {
	if err := database.AutoMigrate(db, &domain.CalendarShare{}); err != nil {
		return nil, err
	}
	app := newApp(ServiceCalendars, cfg, rdb, dbDependency(db))
	h := &calhandler.Handlers{Service: &calsvc.Service{DB: db}}
	app.Get("/calendars", h.List)
	app.Get("/calendars/:id", h.Get)
	app.Post("/calendars", h.Create)
	return app, nil
}

// NewGatewayService wires the gateway to the store URLs in cfg.
func NewGatewayService(cfg *config.Config) *gatewaysvc.Service {
	return &gatewaysvc.Service{
		Users:          upstream.New(gatewaysvc.StoreUsers, cfg.UsersURL, cfg.RequestTimeout),
		Events:         upstream.New(gatewaysvc.StoreEvents, cfg.EventsURL, cfg.RequestTimeout),
		Invitations:    upstream.New(gatewaysvc.StoreInvitations, cfg.InvitationsURL, cfg.RequestTimeout),
		Participations: upstream.New(gatewaysvc.StoreParticipations, cfg.ParticipationsURL, cfg.RequestTimeout),
		Calendars:      upstream.New(gatewaysvc.StoreCalendars, cfg.CalendarsURL, cfg.RequestTimeout),
	}
}

// CreateGatewayApp serves the orchestration gateway. Its health pings every store.
func CreateGatewayApp(cfg *config.Config, svc *gatewaysvc.Service, rdb *redis.Client) *fiber.App {
	app := newApp(ServiceGateway, cfg, rdb,
		upstreamDependency(svc.Users),
		upstreamDependency(svc.Events),
		upstreamDependency(svc.Invitations),
		upstreamDependency(svc.Participations),
		upstreamDependency(svc.Calendars),
	)
	h := &gatewayhandler.Handlers{Service: svc}

	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/me", h.Me)

	app.Get("/users", h.ListUsers)
	app.Get("/users/:id", h.GetUser)

	app.Get("/events", h.ListEvents)
	app.Get("/events/:id", h.GetEvent)
	app.Post("/events", h.CreateEvent)

	app.Get("/invitation", h.ListInvitations)
	app.Get("/invitation/:id", h.GetInvitation)
	app.Post("/invitation", h.CreateInvitation)
	app.Put("/invitation/:id/status/:status", h.UpdateInvitationStatus)

	app.Get("/participation", h.ListParticipations)
	app.Get("/participation/:id", h.GetParticipation)
	app.Post("/participation", h.CreateParticipation)
	app.Put("/participation/:id/status/:status", h.UpdateParticipationStatus)

	app.Get("/calendar", h.ListCalendarShares)
	app.Get("/calendar/:id", h.GetCalendarShare)
	app.Post("/calendar", h.ShareCalendar)

	app.Post("/rsvp", h.RSVP)
	return app
}

// CreatePortalApp serves the portal against the gateway at cfg.GatewayURL. Sessions live in
// Redis, so rdb is required.
func CreatePortalApp(cfg *config.Config, gateway *upstream.Client, rdb *redis.Client) (*fiber.App, error) {
	if rdb == nil {
		return nil, ErrRedisRequired
	}
	app := newApp(ServicePortal, cfg, rdb, upstreamDependency(gateway))
	app.Use(middleware.Session(rdb))

	h := &portalhandler.Handlers{
		Service: &portalsvc.Service{Gateway: gateway},
		Rdb:     rdb,
		Session: middleware.SessionConfig{
			AllowCrossSiteDev: cfg.AllowCrossSiteDev,
			IsProduction:      cfg.IsProduction(),
		},
	}
	app.Post("/login", h.Login)
	app.Post("/register", h.Register)
	app.Get("/logout", h.Logout)
	app.Get("/", h.Home)

	auth := middleware.RequireAuth()
	app.Post("/event", auth, h.CreateEvent)
	app.Get("/event/:id", auth, h.Event)
	app.Get("/calendar", auth, h.Calendar)
	app.Post("/calendar", auth, h.Calendar)
	app.Post("/share", auth, h.Share)
	app.Get("/invites", auth, h.Invites)
	app.Post("/invites", auth, h.RSVP)
	return app, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
