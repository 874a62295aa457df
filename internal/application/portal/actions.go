package portal

import (
	"context"
	"net/url"
	"strings"

	"planner-backend/internal/contracts"
	"planner-backend/internal/pkg/trace"

	"github.com/rs/zerolog/log"
)

// EventForm is the create-event form. Visibility is "public" or "private"; Invites holds
// usernames separated by ";".
type EventForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"`
	Visibility  string `json:"publicprivate" form:"publicprivate"`
	Invites     string `json:"invites" form:"invites"`
}

func (f EventForm) IsPublic() bool {
	return strings.EqualFold(strings.TrimSpace(f.Visibility), "public")
}

// CreatedEvent is the outcome of the create-event action.
type CreatedEvent struct {
	Event   contracts.Event `json:"event"`
	Invited []string        `json:"invited"`
	Skipped []string        `json:"skipped,omitempty"`
}

func (s *Service) Login(ctx context.Context, in contracts.Credentials) (*contracts.LoginResult, error) {
	var res contracts.LoginResult
	if err := s.Gateway.Post(ctx, "/auth/login", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) Register(ctx context.Context, in contracts.Credentials) (*contracts.User, error) {
	var u contracts.User
	if err := s.Gateway.Post(ctx, "/auth/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// userByName resolves a username through the gateway; nil when nobody has it.
func (s *Service) userByName(ctx context.Context, username string) (*contracts.User, error) {
	var list []contracts.User
	if err := s.Gateway.Get(ctx, "/users", url.Values{"username": {username}}, &list); err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Username == username {
			return &list[i], nil
		}
	}
	return nil, nil
}

// splitUsernames splits "a; b;;c" into distinct, trimmed names.
func splitUsernames(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range strings.Split(s, ";") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// CreateEvent creates an event organized by the viewer and invites the listed usernames.
// Unknown usernames, the organizer and failed invitations are skipped.
func (s *Service) CreateEvent(ctx context.Context, viewer Viewer, form EventForm) (*CreatedEvent, error) {
	var e contracts.Event
	in := contracts.NewEvent{
		OrganizerID: viewer.UserID,
		Title:       form.Title,
		Description: form.Description,
		Date:        form.Date,
		IsPublic:    form.IsPublic(),
	}
	if err := s.Gateway.Post(ctx, "/events", in, &e); err != nil {
		return nil, err
	}

	out := &CreatedEvent{Event: e, Invited: []string{}}
	for _, name := range splitUsernames(form.Invites) {
		if name == viewer.Username {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		invitee, err := s.userByName(ctx, name)
		if err != nil || invitee == nil {
			log.Warn().Err(err).Str("trace_id", trace.From(ctx)).Str("username", name).Msg("invite skipped: unknown user")
			out.Skipped = append(out.Skipped, name)
			continue
		}
		var inv contracts.Invitation
		body := contracts.NewInvitation{UserID: viewer.UserID, EventID: e.EventID, InviteeID: invitee.UserID}
		if err := s.Gateway.Post(ctx, "/invitation", body, &inv); err != nil {
			log.Warn().Err(err).Str("trace_id", trace.From(ctx)).Str("username", name).Msg("invite skipped")
			out.Skipped = append(out.Skipped, name)
			continue
		}
		out.Invited = append(out.Invited, name)
	}
	return out, nil
}

// Share lets username read the viewer's calendar.
func (s *Service) Share(ctx context.Context, viewer Viewer, username string) (*contracts.CalendarShare, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if username == viewer.Username {
		return nil, ErrSelfShare
	}
	target, err := s.userByName(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUnknownUser
	}
	var share contracts.CalendarShare
	body := contracts.NewCalendarShare{OwnerID: viewer.UserID, SharedWithID: target.UserID}
	if err := s.Gateway.Post(ctx, "/calendar", body, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// RSVP forwards the viewer's answer for an event.
func (s *Service) RSVP(ctx context.Context, viewer Viewer, eventID uint, response string) (*contracts.RSVPResult, error) {
	if eventID == 0 {
		return nil, ErrInvalidRequest
	}
	var res contracts.RSVPResult
	body := contracts.RSVP{UserID: viewer.UserID, EventID: eventID, Response: response}
	if err := s.Gateway.Post(ctx, "/rsvp", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
