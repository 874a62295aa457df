package calendars

import (
	"errors"

	calsvc "planner-backend/internal/application/calendars"
	"planner-backend/internal/contracts"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *calsvc.Service
}

// Create POST /calendars. The owner may be given as owner_id or user_id.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in contracts.NewCalendarShare
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	share, err := h.Service.Create(c.UserContext(), in.Owner(), in.SharedWithID)
	if err != nil {
		return h.fail(c, err)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Uint("owner_id", share.OwnerID).Uint("shared_with_id", share.SharedWithID).Msg("calendar shared")
	return response.SuccessCreated(c, "Calendar shared", share, nil)
}

// Get GET /calendars/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	share, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Calendar share fetched", share, nil)
}

// List GET /calendars[?owner_id&shared_with_id]
func (h *Handlers) List(c *fiber.Ctx) error {
	var f calsvc.Filter
	var err error
	if f.OwnerID, err = validation.ParseOptionalID(c.Query("owner_id")); err != nil {
		return response.BadRequest(c, "owner_id: "+err.Error())
	}
	if f.SharedWithID, err = validation.ParseOptionalID(c.Query("shared_with_id")); err != nil {
		return response.BadRequest(c, "shared_with_id: "+err.Error())
	}
	list, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Calendar shares fetched", list, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, calsvc.ErrShareNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, calsvc.ErrSelfShare), errors.Is(err, calsvc.ErrMissingReference):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, calsvc.ErrAlreadyShared):
		return response.Conflict(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("calendars request failed")
	return response.Internal(c)
}
