package gateway

import (
	"context"
	"net/http"

	"planner-backend/internal/contracts"
	"planner-backend/internal/domain"
	"planner-backend/internal/pkg/trace"

	"github.com/rs/zerolog/log"
)

// rsvpStatuses maps the answers the portal offers, and the status spellings, to a status.
var rsvpStatuses = map[string]string{
	"participate":       domain.ParticipationAccepted,
	"accepted":          domain.ParticipationAccepted,
	"don't participate": domain.ParticipationDeclined,
	"don’t participate": domain.ParticipationDeclined,
	"declined":          domain.ParticipationDeclined,
	"maybe":             domain.ParticipationMaybe,
	"maybe participate": domain.ParticipationMaybe,
}

// StatusForResponse maps an RSVP answer to a participation status.
func StatusForResponse(response string) (string, bool) {
	status, ok := rsvpStatuses[contracts.NormalizeResponse(response)]
	return status, ok
}

// RSVP records a user's answer to an event.
//
// A pending invitation is answered and a participation with the same status is created (or, when
// the invitee already registered, updated). Without a pending invitation the user's participation
// is created or updated; private events accept that only from the organizer or an invitee.
func (s *Service) RSVP(ctx context.Context, in contracts.RSVP) (*contracts.RSVPResult, error) {
	status, ok := StatusForResponse(in.Response)
	if !ok {
		return nil, badInput("Invalid response. Use: Participate, Don't Participate, Maybe")
	}
	if in.UserID == 0 || in.EventID == 0 {
		return nil, badInput("user_id and event_id are required")
	}
	if err := s.userExists(ctx, in.UserID); err != nil {
		return nil, err
	}
	event, err := s.Event(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	invites, err := s.invitations(ctx, InvitationFilter{EventID: in.EventID, InviteeID: in.UserID})
	if err != nil {
		return nil, err
	}
	for _, inv := range invites {
		if inv.Status != domain.InvitationPending {
			continue
		}
		answered, err := s.UpdateInvitationStatus(ctx, inv.InviteID, status)
		if err != nil {
			return nil, err
		}
		p, action, err := s.createOrUpdateParticipation(ctx, in.UserID, in.EventID, status)
		if err != nil {
			return nil, err
		}
		return &contracts.RSVPResult{Invitation: answered, Participation: *p, Action: action}, nil
	}

	if !event.IsPublic && event.OrganizerID != in.UserID && len(invites) == 0 {
		return nil, forbidden("Event is private")
	}

	existing, err := s.participations(ctx, ParticipationFilter{UserID: in.UserID, EventID: in.EventID})
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		p, action, err := s.createOrUpdateParticipation(ctx, in.UserID, in.EventID, status)
		if err != nil {
			return nil, err
		}
		return &contracts.RSVPResult{Participation: *p, Action: action}, nil
	}
	if len(existing) > 1 {
		log.Warn().Str("trace_id", trace.From(ctx)).Uint("user_id", in.UserID).Uint("event_id", in.EventID).
			Int("count", len(existing)).Msg("rsvp: duplicate participations, updating the first")
	}
	p, action, err := s.setParticipationStatus(ctx, existing[0], status)
	if err != nil {
		return nil, err
	}
	return &contracts.RSVPResult{Participation: *p, Action: action}, nil
}

// createOrUpdateParticipation inserts a participation; when the store reports the pair already
// exists, the existing row is updated instead.
func (s *Service) createOrUpdateParticipation(ctx context.Context, userID, eventID uint, status string) (*contracts.Participation, string, error) {
	p, err := s.createParticipation(ctx, contracts.NewParticipation{UserID: userID, EventID: eventID, Status: status})
	if err == nil {
		return p, contracts.ActionCreated, nil
	}
	if ge, ok := AsError(err); !ok || ge.Status != http.StatusConflict {
		return nil, "", err
	}
	existing, err := s.participations(ctx, ParticipationFilter{UserID: userID, EventID: eventID})
	if err != nil {
		return nil, "", err
	}
	if len(existing) == 0 {
		return nil, "", conflict("Participation already exists")
	}
	return s.setParticipationStatus(ctx, existing[0], status)
}

func (s *Service) setParticipationStatus(ctx context.Context, p contracts.Participation, status string) (*contracts.Participation, string, error) {
	if p.Status == status {
		return &p, contracts.ActionUnchanged, nil
	}
	updated, err := s.UpdateParticipationStatus(ctx, p.ParticipationID, status)
	if err != nil {
		return nil, "", err
	}
	return updated, contracts.ActionUpdated, nil
}
