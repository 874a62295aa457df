package participations

import (
	"errors"

	partsvc "planner-backend/internal/application/participations"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *partsvc.Service
}

// Create POST /participations
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in partsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Participation created", p, nil)
}

// Get GET /participations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	p, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Participation fetched", p, nil)
}

// List GET /participations[?user_id&event_id&status]
func (h *Handlers) List(c *fiber.Ctx) error {
	var f partsvc.Filter
	var err error
	if f.UserID, err = validation.ParseOptionalID(c.Query("user_id")); err != nil {
		return response.BadRequest(c, "user_id: "+err.Error())
	}
	if f.EventID, err = validation.ParseOptionalID(c.Query("event_id")); err != nil {
		return response.BadRequest(c, "event_id: "+err.Error())
	}
	f.Status = c.Query("status")
	list, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Participations fetched", list, nil)
}

// UpdateStatus PUT /participations/:id/status/:status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	p, err := h.Service.UpdateStatus(c.UserContext(), id, c.Params("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Participation status updated", p, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, partsvc.ErrParticipationNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, partsvc.ErrInvalidStatus), errors.Is(err, partsvc.ErrMissingReference):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, partsvc.ErrDuplicate):
		return response.Conflict(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("participations request failed")
	return response.Internal(c)
}
