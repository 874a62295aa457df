package invitations

import (
	"errors"

	invsvc "planner-backend/internal/application/invitations"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *invsvc.Service
}

// Create POST /invitations
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in invsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	inv, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Uint("invite_id", inv.ID).Uint("event_id", inv.EventID).Uint("invitee_id", inv.InviteeID).Msg("invitation created")
	return response.SuccessCreated(c, "Invitation created", inv, nil)
}

// Get GET /invitations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	inv, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Invitation fetched", inv, nil)
}

// List GET /invitations[?user_id&event_id&invitee_id&status]
func (h *Handlers) List(c *fiber.Ctx) error {
	var f invsvc.Filter
	var err error
	if f.UserID, err = validation.ParseOptionalID(c.Query("user_id")); err != nil {
		return response.BadRequest(c, "user_id: "+err.Error())
	}
	if f.EventID, err = validation.ParseOptionalID(c.Query("event_id")); err != nil {
		return response.BadRequest(c, "event_id: "+err.Error())
	}
	if f.InviteeID, err = validation.ParseOptionalID(c.Query("invitee_id")); err != nil {
		return response.BadRequest(c, "invitee_id: "+err.Error())
	}
	f.Status = c.Query("status")
	list, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Invitations fetched", list, nil)
}

// UpdateStatus PUT /invitations/:id/status/:status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	inv, err := h.Service.UpdateStatus(c.UserContext(), id, c.Params("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Invitation status updated", inv, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, invsvc.ErrInvitationNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, invsvc.ErrInvalidStatus), errors.Is(err, invsvc.ErrMissingReference):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, invsvc.ErrReopen):
		return response.Conflict(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("invitations request failed")
	return response.Internal(c)
}
