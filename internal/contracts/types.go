// Package contracts holds the JSON shapes exchanged between the services. Stores serialize their
// GORM rows into these shapes; the gateway and the portal decode them.
package contracts

import (
	"strings"
	"time"
)

type User struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Event struct {
	EventID     uint   `json:"event_id"`
	OrganizerID uint   `json:"organizer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	IsPublic    bool   `json:"is_public"`
}

// Day returns the event date as YYYY-MM-DD, or the raw value when it cannot be parsed.
func (e Event) Day() string {
	if t, err := time.Parse(time.RFC3339, e.Date); err == nil {
		return t.Format("2006-01-02")
	}
	if len(e.Date) >= 10 {
		if _, err := time.Parse("2006-01-02", e.Date[:10]); err == nil {
			return e.Date[:10]
		}
	}
	return e.Date
}

// Visibility is the label shown for is_public.
func (e Event) Visibility() string {
	if e.IsPublic {
		return "Public"
	}
	return "Private"
}

type NewEvent struct {
	OrganizerID uint   `json:"organizer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	IsPublic    bool   `json:"is_public"`
}

type Invitation struct {
	InviteID  uint   `json:"invite_id"`
	UserID    uint   `json:"user_id"`
	EventID   uint   `json:"event_id"`
	InviteeID uint   `json:"invitee_id"`
	Status    string `json:"status"`
}

type NewInvitation struct {
	UserID    uint `json:"user_id"`
	EventID   uint `json:"event_id"`
	InviteeID uint `json:"invitee_id"`
}

type Participation struct {
	ParticipationID uint   `json:"participation_id"`
	UserID          uint   `json:"user_id"`
	EventID         uint   `json:"event_id"`
	Status          string `json:"status"`
}

type NewParticipation struct {
	UserID  uint   `json:"user_id"`
	EventID uint   `json:"event_id"`
	Status  string `json:"status"`
}

type CalendarShare struct {
	CalendarID   uint `json:"calendar_id"`
	OwnerID      uint `json:"owner_id"`
	SharedWithID uint `json:"shared_with_id"`
}

// NewCalendarShare accepts the owner either as owner_id or as user_id.
type NewCalendarShare struct {
	OwnerID      uint `json:"owner_id"`
	UserID       uint `json:"user_id,omitempty"`
	SharedWithID uint `json:"shared_with_id"`
}

// Owner returns OwnerID, falling back to UserID.
func (n NewCalendarShare) Owner() uint {
	if n.OwnerID != 0 {
		return n.OwnerID
	}
	return n.UserID
}

// RSVP is a user's answer to an event, with Response in the form labels or status spelling.
type RSVP struct {
	UserID   uint   `json:"user_id"`
	EventID  uint   `json:"event_id"`
	Response string `json:"response"`
}

// RSVP actions.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionUnchanged = "unchanged"
)

type RSVPResult struct {
	Invitation    *Invitation   `json:"invitation,omitempty"`
	Participation Participation `json:"participation"`
	Action        string        `json:"action"`
}

// NormalizeResponse trims and lower-cases an RSVP answer.
func NormalizeResponse(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
