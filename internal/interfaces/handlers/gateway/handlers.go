package gateway

import (
	"strings"

	gatewaysvc "planner-backend/internal/application/gateway"
	"planner-backend/internal/contracts"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers exposes the gateway over HTTP. Store answers are forwarded with their status and body.
type Handlers struct {
	Service *gatewaysvc.Service
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	if ge, ok := gatewaysvc.AsError(err); ok {
		if ge.Status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("gateway request failed")
		}
		return response.Error(c, ge.Message, ge.Status, ge.Details)
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("gateway request failed")
	return response.Internal(c)
}

func pathID(c *fiber.Ctx) (uint, error) {
	return validation.ParseID(c.Params("id"))
}

// queryID parses an optional id filter; the error names the parameter.
func queryID(c *fiber.Ctx, key string) (uint, error) {
	id, err := validation.ParseOptionalID(c.Query(key))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+": "+err.Error())
	}
	return id, nil
}

func badQuery(c *fiber.Ctx, err error) error {
	return response.BadRequest(c, err.Error())
}

// Auth

// Register POST /auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in contracts.Credentials
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Username and password are required")
	}
	u, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "User registered", u, nil)
}

// Login POST /auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in contracts.Credentials
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Username and password are required")
	}
	res, err := h.Service.Login(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Login successful", res, nil)
}

// Me GET /auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		return response.Unauthorized(c, "Missing bearer token")
	}
	u, err := h.Service.Me(c.UserContext(), token)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Authenticated", u, nil)
}

// Users

// ListUsers GET /users[?username=]
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	list, err := h.Service.ListUsers(c.UserContext(), c.Query("username"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Users fetched", list, nil)
}

// GetUser GET /users/:id
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	u, err := h.Service.User(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "User fetched", u, nil)
}

// Events

// CreateEvent POST /events
func (h *Handlers) CreateEvent(c *fiber.Ctx) error {
	var in contracts.NewEvent
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	e, err := h.Service.CreateEvent(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Event created", e, nil)
}

// GetEvent GET /events/:id
func (h *Handlers) GetEvent(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	e, err := h.Service.Event(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Event fetched", e, nil)
}

// ListEvents GET /events[?public=true&organizer_id=]
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	organizerID, err := queryID(c, "organizer_id")
	if err != nil {
		return badQuery(c, err)
	}
	list, err := h.Service.ListEvents(c.UserContext(), strings.EqualFold(c.Query("public"), "true"), organizerID)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Events fetched", list, nil)
}

// Invitations

// CreateInvitation POST /invitation
func (h *Handlers) CreateInvitation(c *fiber.Ctx) error {
	var in contracts.NewInvitation
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	inv, err := h.Service.CreateInvitation(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Invitation created", inv, nil)
}

// GetInvitation GET /invitation/:id
func (h *Handlers) GetInvitation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	inv, err := h.Service.GetInvitation(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Invitation fetched", inv, nil)
}

// ListInvitations GET /invitation[?user_id&event_id&invitee_id&status]
func (h *Handlers) ListInvitations(c *fiber.Ctx) error {
	var f gatewaysvc.InvitationFilter
	var err error
	if f.UserID, err = queryID(c, "user_id"); err != nil {
		return badQuery(c, err)
	}
	if f.EventID, err = queryID(c, "event_id"); err != nil {
		return badQuery(c, err)
	}
	if f.InviteeID, err = queryID(c, "invitee_id"); err != nil {
		return badQuery(c, err)
	}
	f.Status = c.Query("status")
	list, err := h.Service.ListInvitations(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Invitations fetched", list, nil)
}

// UpdateInvitationStatus PUT /invitation/:id/status/:status
func (h *Handlers) UpdateInvitationStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	inv, err := h.Service.UpdateInvitationStatus(c.UserContext(), id, c.Params("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Invitation status updated", inv, nil)
}

// Participations

// CreateParticipation POST /participation
func (h *Handlers) CreateParticipation(c *fiber.Ctx) error {
	var in contracts.NewParticipation
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.CreateParticipation(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Participation created", p, nil)
}

// GetParticipation GET /participation/:id
func (h *Handlers) GetParticipation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	p, err := h.Service.GetParticipation(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Participation fetched", p, nil)
}

// ListParticipations GET /participation[?user_id&event_id&status]
func (h *Handlers) ListParticipations(c *fiber.Ctx) error {
	var f gatewaysvc.ParticipationFilter
	var err error
	if f.UserID, err = queryID(c, "user_id"); err != nil {
		return badQuery(c, err)
	}
	if f.EventID, err = queryID(c, "event_id"); err != nil {
		return badQuery(c, err)
	}
	f.Status = c.Query("status")
	list, err := h.Service.ListParticipations(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Participations fetched", list, nil)
}

// UpdateParticipationStatus PUT /participation/:id/status/:status
func (h *Handlers) UpdateParticipationStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	p, err := h.Service.UpdateParticipationStatus(c.UserContext(), id, c.Params("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Participation status updated", p, nil)
}

// Calendar shares

// ShareCalendar POST /calendar
func (h *Handlers) ShareCalendar(c *fiber.Ctx) error {
	var in contracts.NewCalendarShare
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	share, err := h.Service.ShareCalendar(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Calendar shared", share, nil)
}

// GetCalendarShare GET /calendar/:id
func (h *Handlers) GetCalendarShare(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	share, err := h.Service.GetCalendarShare(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Calendar share fetched", share, nil)
}

// ListCalendarShares GET /calendar[?owner_id&shared_with_id]
func (h *Handlers) ListCalendarShares(c *fiber.Ctx) error {
	ownerID, err := queryID(c, "owner_id")
	if err != nil {
		return badQuery(c, err)
	}
	sharedWithID, err := queryID(c, "shared_with_id")
	if err != nil {
		return badQuery(c, err)
	}
	list, err := h.Service.ListCalendarShares(c.UserContext(), ownerID, sharedWithID)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Calendar shares fetched", list, nil)
}

// RSVP POST /rsvp
func (h *Handlers) RSVP(c *fiber.Ctx) error {
	var in contracts.RSVP
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	res, err := h.Service.RSVP(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Uint("user_id", in.UserID).Uint("event_id", in.EventID).
		Str("status", res.Participation.Status).Str("action", res.Action).Msg("rsvp recorded")
	return response.Success(c, "RSVP recorded", res, nil)
}
