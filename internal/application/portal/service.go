package portal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"planner-backend/internal/contracts"
	"planner-backend/internal/infrastructure/upstream"
	"planner-backend/internal/pkg/trace"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotVisible     = errors.New("Event is private")
	ErrEventNotFound  = errors.New("Event not found")
	ErrUnknownUser    = errors.New("User not found")
	ErrEmptyUsername  = errors.New("Username is required")
	ErrSelfShare      = errors.New("User cannot share calendar with themselves.")
	ErrInvalidRequest = errors.New("Invalid request")
)

// Viewer is the logged-in user a view is built for.
type Viewer struct {
	UserID   uint
	Username string
}

// Service composes gateway reads into the portal's views and forwards its actions.
type Service struct {
	Gateway *upstream.Client
}

type HomeRow struct {
	EventID   uint   `json:"event_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Organizer string `json:"organizer"`
}

type InviteRow struct {
	EventID    uint   `json:"event_id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Organizer  string `json:"organizer"`
	Visibility string `json:"visibility"`
}

type CalendarRow struct {
	EventID    uint   `json:"event_id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Organizer  string `json:"organizer"`
	Status     string `json:"status"`
	Visibility string `json:"visibility"`
}

// CalendarView is a user's calendar. Success is false when the viewer may not see it.
type CalendarView struct {
	Success  bool          `json:"success"`
	Username string        `json:"username"`
	Calendar []CalendarRow `json:"calendar,omitempty"`
}

type Participant struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

type EventDetail struct {
	EventID      uint          `json:"event_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Date         string        `json:"date"`
	Organizer    string        `json:"organizer"`
	Visibility   string        `json:"visibility"`
	Participants []Participant `json:"participants"`
}

func skipRow(ctx context.Context, view, reason string, id uint) {
	log.Warn().Str("trace_id", trace.From(ctx)).Str("view", view).Uint("id", id).Msg("skipping row: " + reason)
}

func findUser(users []contracts.User, id uint) (contracts.User, bool) {
	for _, u := range users {
		if u.UserID == id {
			return u, true
		}
	}
	return contracts.User{}, false
}

func findEvent(events []contracts.Event, id uint) (contracts.Event, bool) {
	for _, e := range events {
		if e.EventID == id {
			return e, true
		}
	}
	return contracts.Event{}, false
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *Service) users(ctx context.Context) ([]contracts.User, error) {
	var list []contracts.User
	if err := s.Gateway.Get(ctx, "/users", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) events(ctx context.Context, q url.Values) ([]contracts.Event, error) {
	var list []contracts.Event
	if err := s.Gateway.Get(ctx, "/events", q, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Home lists public events with their organizer's username.
func (s *Service) Home(ctx context.Context) ([]HomeRow, error) {
	events, err := s.events(ctx, url.Values{"public": {"true"}})
	if err != nil {
		return nil, err
	}
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]HomeRow, 0, len(events))
	for _, e := range events {
		organizer, ok := findUser(users, e.OrganizerID)
		if !ok {
			skipRow(ctx, "home", "organizer missing", e.EventID)
			continue
		}
		rows = append(rows, HomeRow{EventID: e.EventID, Title: e.Title, Date: e.Day(), Organizer: organizer.Username})
	}
	return rows, nil
}

// Invites lists the viewer's pending invitations.
func (s *Service) Invites(ctx context.Context, viewer Viewer) ([]InviteRow, error) {
	var invites []contracts.Invitation
	if err := s.Gateway.Get(ctx, "/invitation", url.Values{"invitee_id": {itoa(viewer.UserID)}, "status": {"pending"}}, &invites); err != nil {
		return nil, err
	}
	if len(invites) == 0 {
		return []InviteRow{}, nil
	}
	events, err := s.events(ctx, nil)
	if err != nil {
		return nil, err
	}
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]InviteRow, 0, len(invites))
	for _, inv := range invites {
		e, ok := findEvent(events, inv.EventID)
		if !ok {
			skipRow(ctx, "invites", "event missing", inv.InviteID)
			continue
		}
		organizer, ok := findUser(users, e.OrganizerID)
		if !ok {
			skipRow(ctx, "invites", "organizer missing", inv.InviteID)
			continue
		}
		rows = append(rows, InviteRow{
			EventID:    e.EventID,
			Title:      e.Title,
			Date:       e.Day(),
			Organizer:  organizer.Username,
			Visibility: e.Visibility(),
		})
	}
	return rows, nil
}

// Calendar shows username's participations. Other users' calendars need a share from them to
// the viewer.
func (s *Service) Calendar(ctx context.Context, viewer Viewer, username string) (*CalendarView, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = viewer.Username
	}
	view := &CalendarView{Username: username}

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	var owner *contracts.User
	for i := range users {
		if users[i].Username == username {
			owner = &users[i]
			break
		}
	}
	if owner == nil {
		return view, nil
	}
	if owner.UserID != viewer.UserID {
		var shares []contracts.CalendarShare
		q := url.Values{"owner_id": {itoa(owner.UserID)}, "shared_with_id": {itoa(viewer.UserID)}}
		if err := s.Gateway.Get(ctx, "/calendar", q, &shares); err != nil {
			return nil, err
		}
		if len(shares) == 0 {
			return view, nil
		}
	}

	var parts []contracts.Participation
	if err := s.Gateway.Get(ctx, "/participation", url.Values{"user_id": {itoa(owner.UserID)}}, &parts); err != nil {
		return nil, err
	}
	events, err := s.events(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]CalendarRow, 0, len(parts))
	for _, p := range parts {
		e, ok := findEvent(events, p.EventID)
		if !ok {
			skipRow(ctx, "calendar", "event missing", p.ParticipationID)
			continue
		}
		organizer, ok := findUser(users, e.OrganizerID)
		if !ok {
			skipRow(ctx, "calendar", "organizer missing", p.ParticipationID)
			continue
		}
		rows = append(rows, CalendarRow{
			EventID:    e.EventID,
			Title:      e.Title,
			Date:       e.Day(),
			Organizer:  organizer.Username,
			Status:     p.Status,
			Visibility: e.Visibility(),
		})
	}
	view.Success = true
	view.Calendar = rows
	return view, nil
}

// EventDetail shows an event and its participants to a viewer allowed to see it: the event is
// public, the viewer organizes it, or the viewer holds an invitation to it.
func (s *Service) EventDetail(ctx context.Context, viewer Viewer, eventID uint) (*EventDetail, error) {
	var e contracts.Event
	if err := s.Gateway.Get(ctx, "/events/"+itoa(eventID), nil, &e); err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !e.IsPublic && e.OrganizerID != viewer.UserID {
		var invites []contracts.Invitation
		if err := s.Gateway.Get(ctx, "/invitation", url.Values{"event_id": {itoa(e.EventID)}, "invitee_id": {itoa(viewer.UserID)}}, &invites); err != nil {
			return nil, err
		}
		if len(invites) == 0 {
			return nil, ErrNotVisible
		}
	}

	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	organizer, ok := findUser(users, e.OrganizerID)
	if !ok {
		return nil, ErrEventNotFound
	}
	var parts []contracts.Participation
	if err := s.Gateway.Get(ctx, "/participation", url.Values{"event_id": {itoa(e.EventID)}}, &parts); err != nil {
		return nil, err
	}
	participants := make([]Participant, 0, len(parts))
	for _, p := range parts {
		u, ok := findUser(users, p.UserID)
		if !ok {
			skipRow(ctx, "event", "participant missing", p.ParticipationID)
			continue
		}
		participants = append(participants, Participant{Username: u.Username, Status: p.Status})
	}
	return &EventDetail{
		EventID:      e.EventID,
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Day(),
		Organizer:    organizer.Username,
		Visibility:   e.Visibility(),
		Participants: participants,
	}, nil
}
