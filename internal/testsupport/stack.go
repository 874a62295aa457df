// Package testsupport runs the services in-process for tests: every store on its own in-memory
// SQLite database behind an httptest server, with the gateway in front of them.
package testsupport

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	gatewaysvc "planner-backend/internal/application/gateway"
	"planner-backend/internal/config"
	"planner-backend/internal/contracts"
	"planner-backend/internal/infrastructure/database"
	"planner-backend/internal/infrastructure/upstream"
	"planner-backend/internal/interfaces/router"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const Secret = "test-secret"

// Config is the configuration every in-process service runs with.
func Config() *config.Config {
	return &config.Config{
		Env:            "test",
		JWTSecret:      Secret,
		TokenTTL:       time.Hour,
		RequestTimeout: 2 * time.Second,
		HealthAdminKey: "admin",
	}
}

type Stack struct {
	Users          *httptest.Server
	Events         *httptest.Server
	Invitations    *httptest.Server
	Participations *httptest.Server
	Calendars      *httptest.Server
	Gateway        *httptest.Server

	GatewayService *gatewaysvc.Service
	DBs            map[string]*gorm.DB
}

type storeApp func(*config.Config, *gorm.DB, *redis.Client) (*fiber.App, error)

func serve(t testing.TB, app *fiber.App) *httptest.Server {
	srv := httptest.NewServer(router.Handler(app))
	t.Cleanup(srv.Close)
	return srv
}

func serveStore(t testing.TB, cfg *config.Config, create storeApp) (*httptest.Server, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	app, err := create(cfg, db, nil)
	require.NoError(t, err)
	return serve(t, app), db
}

// NewStack starts the five stores and a gateway wired to them.
func NewStack(t testing.TB) *Stack {
	t.Helper()
	cfg := Config()
	s := &Stack{DBs: map[string]*gorm.DB{}}

	var db *gorm.DB
	s.Users, db = serveStore(t, cfg, router.CreateUsersApp)
	s.DBs[router.ServiceUsers] = db
	s.Events, db = serveStore(t, cfg, router.CreateEventsApp)
	s.DBs[router.ServiceEvents] = db
	s.Invitations, db = serveStore(t, cfg, router.CreateInvitationsApp)
	s.DBs[router.ServiceInvitations] = db
	s.Participations, db = serveStore(t, cfg, router.CreateParticipationsApp)
	s.DBs[router.ServiceParticipations] = db
	s.Calendars, db = serveStore(t, cfg, router.CreateCalendarsApp)
	s.DBs[router.ServiceCalendars] = db

	cfg.UsersURL = s.Users.URL
	cfg.EventsURL = s.Events.URL
	cfg.InvitationsURL = s.Invitations.URL
	cfg.ParticipationsURL = s.Participations.URL
	cfg.CalendarsURL = s.Calendars.URL
	s.GatewayService = router.NewGatewayService(cfg)
	s.Gateway = serve(t, router.CreateGatewayApp(cfg, s.GatewayService, nil))
	return s
}

// GatewayClient returns a client for the stack's gateway.
func (s *Stack) GatewayClient() *upstream.Client {
	return upstream.New("gateway", s.Gateway.URL, 2*time.Second)
}

// Portal starts a portal against the stack's gateway with sessions in a fresh miniredis.
func (s *Stack) Portal(t testing.TB) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app, err := router.CreatePortalApp(Config(), s.GatewayClient(), rdb)
	require.NoError(t, err)
	return app, mr
}

// Register creates a user through the gateway.
func (s *Stack) Register(t testing.TB, username string) contracts.User {
	t.Helper()
	u, err := s.GatewayService.Register(context.Background(), contracts.Credentials{Username: username, Password: "secret"})
	require.NoError(t, err)
	return *u
}

// CreateEvent creates an event for organizer through the gateway.
func (s *Stack) CreateEvent(t testing.TB, organizer uint, title string, public bool) contracts.Event {
	t.Helper()
	e, err := s.GatewayService.CreateEvent(context.Background(), contracts.NewEvent{
		OrganizerID: organizer,
		Title:       title,
		Date:        "2025-06-14",
		IsPublic:    public,
	})
	require.NoError(t, err)
	return *e
}

// Invite creates a pending invitation through the gateway.
func (s *Stack) Invite(t testing.TB, inviter, event, invitee uint) contracts.Invitation {
	t.Helper()
	inv, err := s.GatewayService.CreateInvitation(context.Background(), contracts.NewInvitation{
		UserID:    inviter,
		EventID:   event,
		InviteeID: invitee,
	})
	require.NoError(t, err)
	return *inv
}
