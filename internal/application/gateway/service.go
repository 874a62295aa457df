package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"planner-backend/internal/contracts"
	"planner-backend/internal/infrastructure/upstream"
	"planner-backend/internal/pkg/trace"

	"github.com/rs/zerolog/log"
)

// Store names, used in logs and in "<store> unreachable" details.
const (
	StoreUsers          = "users"
	StoreEvents         = "events"
	StoreInvitations    = "invitations"
	StoreParticipations = "participations"
	StoreCalendars      = "calendars"
)

// Service orchestrates the stores: it checks that referenced users and events exist before a
// write, rejects duplicates and reconciles RSVPs. It keeps no state.
type Service struct {
	Users          *upstream.Client
	Events         *upstream.Client
	Invitations    *upstream.Client
	Participations *upstream.Client
	Calendars      *upstream.Client
}

func idPath(prefix string, id uint) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10)
}

func setID(q url.Values, key string, id uint) {
	if id != 0 {
		q.Set(key, strconv.FormatUint(uint64(id), 10))
	}
}

// checkFailed turns a failed existence check into a NotFound-class error. Unreachable stores are
// logged; the caller sees 404 either way.
func checkFailed(ctx context.Context, store, entity string, id uint, err error) error {
	out := fromStore(store, err, http.StatusNotFound)
	if errors.Is(err, upstream.ErrUnreachable) {
		log.Warn().Err(err).Str("trace_id", trace.From(ctx)).Str("store", store).Uint("id", id).Msg("reference check: store unreachable")
		if ge, ok := AsError(out); ok {
			ge.Message = entity + " not found"
		}
	}
	return out
}

// User checks that a user exists and returns it.
func (s *Service) User(ctx context.Context, id uint) (*contracts.User, error) {
	var u contracts.User
	if err := s.Users.Get(ctx, idPath("/users", id), nil, &u); err != nil {
		return nil, checkFailed(ctx, StoreUsers, "User", id, err)
	}
	return &u, nil
}

// userExists and eventExists only look at the status code of the lookup; the body is not decoded.
func (s *Service) userExists(ctx context.Context, id uint) error {
	if err := s.Users.Get(ctx, idPath("/users", id), nil, nil); err != nil {
		return checkFailed(ctx, StoreUsers, "User", id, err)
	}
	return nil
}

func (s *Service) eventExists(ctx context.Context, id uint) error {
	if err := s.Events.Get(ctx, idPath("/events", id), nil, nil); err != nil {
		return checkFailed(ctx, StoreEvents, "Event", id, err)
	}
	return nil
}

// Event checks that an event exists and returns it.
func (s *Service) Event(ctx context.Context, id uint) (*contracts.Event, error) {
	var e contracts.Event
	if err := s.Events.Get(ctx, idPath("/events", id), nil, &e); err != nil {
		return nil, checkFailed(ctx, StoreEvents, "Event", id, err)
	}
	return &e, nil
}

// Auth

func (s *Service) Register(ctx context.Context, in contracts.Credentials) (*contracts.User, error) {
	var u contracts.User
	if err := s.Users.Post(ctx, "/auth/register", in, &u); err != nil {
		return nil, fromStore(StoreUsers, err, http.StatusBadGateway)
	}
	return &u, nil
}

func (s *Service) Login(ctx context.Context, in contracts.Credentials) (*contracts.LoginResult, error) {
	var res contracts.LoginResult
	if err := s.Users.Post(ctx, "/auth/login", in, &res); err != nil {
		return nil, fromStore(StoreUsers, err, http.StatusBadGateway)
	}
	return &res, nil
}

func (s *Service) Me(ctx context.Context, token string) (*contracts.User, error) {
	var u contracts.User
	if err := s.Users.Get(upstream.WithBearer(ctx, token), "/auth/me", nil, &u); err != nil {
		return nil, fromStore(StoreUsers, err, http.StatusBadGateway)
	}
	return &u, nil
}

// ListUsers lists users, optionally only the one called username.
func (s *Service) ListUsers(ctx context.Context, username string) ([]contracts.User, error) {
	q := url.Values{}
	if username != "" {
		q.Set("username", username)
	}
	var list []contracts.User
	if err := s.Users.Get(ctx, "/users", q, &list); err != nil {
		return nil, fromStore(StoreUsers, err, http.StatusBadGateway)
	}
	return list, nil
}

// UserByName resolves a username to its user. An unknown name is NotFound.
func (s *Service) UserByName(ctx context.Context, username string) (*contracts.User, error) {
	list, err := s.ListUsers(ctx, username)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Username == username {
			return &list[i], nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("User %q not found", username)}
}

// Events

func (s *Service) CreateEvent(ctx context.Context, in contracts.NewEvent) (*contracts.Event, error) {
	if in.OrganizerID == 0 {
		return nil, badInput("organizer_id is required")
	}
	if err := s.userExists(ctx, in.OrganizerID); err != nil {
		return nil, err
	}
	var e contracts.Event
	if err := s.Events.Post(ctx, "/events", in, &e); err != nil {
		return nil, fromStore(StoreEvents, err, http.StatusBadGateway)
	}
	return &e, nil
}

func (s *Service) ListEvents(ctx context.Context, publicOnly bool, organizerID uint) ([]contracts.Event, error) {
	q := url.Values{}
	if publicOnly {
		q.Set("public", "true")
	}
	if organizerID != 0 {
		if err := s.userExists(ctx, organizerID); err != nil {
			return nil, err
		}
		setID(q, "organizer_id", organizerID)
	}
	var list []contracts.Event
	if err := s.Events.Get(ctx, "/events", q, &list); err != nil {
		return nil, fromStore(StoreEvents, err, http.StatusBadGateway)
	}
	return list, nil
}

// Invitations

type InvitationFilter struct {
	UserID    uint
	EventID   uint
	InviteeID uint
	Status    string
}

func (s *Service) CreateInvitation(ctx context.Context, in contracts.NewInvitation) (*contracts.Invitation, error) {
	if in.UserID == 0 || in.EventID == 0 || in.InviteeID == 0 {
		return nil, badInput("user_id, event_id and invitee_id are required")
	}
	if err := s.userExists(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := s.eventExists(ctx, in.EventID); err != nil {
		return nil, err
	}
	if err := s.userExists(ctx, in.InviteeID); err != nil {
		return nil, err
	}
	var inv contracts.Invitation
	if err := s.Invitations.Post(ctx, "/invitations", in, &inv); err != nil {
		return nil, fromStore(StoreInvitations, err, http.StatusBadGateway)
	}
	return &inv, nil
}

func (s *Service) GetInvitation(ctx context.Context, id uint) (*contracts.Invitation, error) {
	var inv contracts.Invitation
	if err := s.Invitations.Get(ctx, idPath("/invitations", id), nil, &inv); err != nil {
		return nil, fromStore(StoreInvitations, err, http.StatusBadGateway)
	}
	return &inv, nil
}

// ListInvitations validates every id filter before querying.
func (s *Service) ListInvitations(ctx context.Context, f InvitationFilter) ([]contracts.Invitation, error) {
	if f.UserID != 0 {
		if err := s.userExists(ctx, f.UserID); err != nil {
			return nil, err
		}
	}
	if f.EventID != 0 {
		if err := s.eventExists(ctx, f.EventID); err != nil {
			return nil, err
		}
	}
	if f.InviteeID != 0 {
		if err := s.userExists(ctx, f.InviteeID); err != nil {
			return nil, err
		}
	}
	return s.invitations(ctx, f)
}

func (s *Service) invitations(ctx context.Context, f InvitationFilter) ([]contracts.Invitation, error) {
	q := url.Values{}
	setID(q, "user_id", f.UserID)
	setID(q, "event_id", f.EventID)
	setID(q, "invitee_id", f.InviteeID)
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	var list []contracts.Invitation
	if err := s.Invitations.Get(ctx, "/invitations", q, &list); err != nil {
		return nil, fromStore(StoreInvitations, err, http.StatusBadGateway)
	}
	return list, nil
}

func (s *Service) UpdateInvitationStatus(ctx context.Context, id uint, status string) (*contracts.Invitation, error) {
	var inv contracts.Invitation
	path := idPath("/invitations", id) + "/status/" + url.PathEscape(status)
	if err := s.Invitations.Put(ctx, path, nil, &inv); err != nil {
		return nil, fromStore(StoreInvitations, err, http.StatusBadGateway)
	}
	return &inv, nil
}

// Participations

type ParticipationFilter struct {
	UserID  uint
	EventID uint
	Status  string
}

// CreateParticipation checks user and event, then refuses a second participation for the pair.
// The store's unique index catches a racing insert.
func (s *Service) CreateParticipation(ctx context.Context, in contracts.NewParticipation) (*contracts.Participation, error) {
	if in.UserID == 0 || in.EventID == 0 {
		return nil, badInput("user_id and event_id are required")
	}
	if err := s.userExists(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := s.eventExists(ctx, in.EventID); err != nil {
		return nil, err
	}
	existing, err := s.participations(ctx, ParticipationFilter{UserID: in.UserID, EventID: in.EventID})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, conflict("Participation already exists")
	}
	return s.createParticipation(ctx, in)
}

func (s *Service) createParticipation(ctx context.Context, in contracts.NewParticipation) (*contracts.Participation, error) {
	var p contracts.Participation
	if err := s.Participations.Post(ctx, "/participations", in, &p); err != nil {
		return nil, fromStore(StoreParticipations, err, http.StatusBadGateway)
	}
	return &p, nil
}

func (s *Service) GetParticipation(ctx context.Context, id uint) (*contracts.Participation, error) {
	var p contracts.Participation
	if err := s.Participations.Get(ctx, idPath("/participations", id), nil, &p); err != nil {
		return nil, fromStore(StoreParticipations, err, http.StatusBadGateway)
	}
	return &p, nil
}

func (s *Service) ListParticipations(ctx context.Context, f ParticipationFilter) ([]contracts.Participation, error) {
	if f.UserID != 0 {
		if err := s.userExists(ctx, f.UserID); err != nil {
			return nil, err
		}
	}
	if f.EventID != 0 {
		if err := s.eventExists(ctx, f.EventID); err != nil {
			return nil, err
		}
	}
	return s.participations(ctx, f)
}

func (s *Service) participations(ctx context.Context, f ParticipationFilter) ([]contracts.Participation, error) {
	q := url.Values{}
	setID(q, "user_id", f.UserID)
	setID(q, "event_id", f.EventID)
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	var list []contracts.Participation
	if err := s.Participations.Get(ctx, "/participations", q, &list); err != nil {
		return nil, fromStore(StoreParticipations, err, http.StatusBadGateway)
	}
	return list, nil
}

func (s *Service) UpdateParticipationStatus(ctx context.Context, id uint, status string) (*contracts.Participation, error) {
	var p contracts.Participation
	path := idPath("/participations", id) + "/status/" + url.PathEscape(status)
	if err := s.Participations.Put(ctx, path, nil, &p); err != nil {
		return nil, fromStore(StoreParticipations, err, http.StatusBadGateway)
	}
	return &p, nil
}

// Calendar shares

func (s *Service) ShareCalendar(ctx context.Context, in contracts.NewCalendarShare) (*contracts.CalendarShare, error) {
	owner := in.Owner()
	if owner == 0 || in.SharedWithID == 0 {
		return nil, badInput("owner_id and shared_with_id are required")
	}
	if owner == in.SharedWithID {
		return nil, badInput("User cannot share calendar with themselves.")
	}
	if err := s.userExists(ctx, owner); err != nil {
		return nil, err
	}
	if err := s.userExists(ctx, in.SharedWithID); err != nil {
		return nil, err
	}
	body := contracts.NewCalendarShare{OwnerID: owner, SharedWithID: in.SharedWithID}
	var share contracts.CalendarShare
	if err := s.Calendars.Post(ctx, "/calendars", body, &share); err != nil {
		return nil, fromStore(StoreCalendars, err, http.StatusBadGateway)
	}
	return &share, nil
}

func (s *Service) GetCalendarShare(ctx context.Context, id uint) (*contracts.CalendarShare, error) {
	var share contracts.CalendarShare
	if err := s.Calendars.Get(ctx, idPath("/calendars", id), nil, &share); err != nil {
		return nil, fromStore(StoreCalendars, err, http.StatusBadGateway)
	}
	return &share, nil
}

func (s *Service) ListCalendarShares(ctx context.Context, ownerID, sharedWithID uint) ([]contracts.CalendarShare, error) {
	for _, id := range []uint{ownerID, sharedWithID} {
		if id == 0 {
			continue
		}
		if err := s.userExists(ctx, id); err != nil {
			return nil, err
		}
	}
	q := url.Values{}
	setID(q, "owner_id", ownerID)
	setID(q, "shared_with_id", sharedWithID)
	var list []contracts.CalendarShare
	if err := s.Calendars.Get(ctx, "/calendars", q, &list); err != nil {
		return nil, fromStore(StoreCalendars, err, http.StatusBadGateway)
	}
	return list, nil
}
