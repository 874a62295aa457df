package events

import (
	"errors"
	"strings"

	eventsvc "planner-backend/internal/application/events"
	"planner-backend/internal/contracts"
	"planner-backend/internal/domain"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *eventsvc.Service
}

// present renders an event row with its date as YYYY-MM-DD.
func present(e domain.Event) contracts.Event {
	return contracts.Event{
		EventID:     e.ID,
		OrganizerID: e.OrganizerID,
		Title:       e.Title,
		Description: e.Description,
		Date:        eventsvc.Day(e.Date),
		IsPublic:    e.IsPublic,
	}
}

// Create POST /events
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in eventsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	e, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Uint("event_id", e.ID).Uint("organizer_id", e.OrganizerID).Msg("event created")
	return response.SuccessCreated(c, "Event created", present(*e), nil)
}

// Get GET /events/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	e, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Event fetched", present(*e), nil)
}

// List GET /events[?public=true&organizer_id=]
func (h *Handlers) List(c *fiber.Ctx) error {
	organizerID, err := validation.ParseOptionalID(c.Query("organizer_id"))
	if err != nil {
		return response.BadRequest(c, "organizer_id: "+err.Error())
	}
	f := eventsvc.Filter{
		PublicOnly:  strings.EqualFold(c.Query("public"), "true"),
		OrganizerID: organizerID,
	}
	list, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]contracts.Event, 0, len(list))
	for _, e := range list {
		out = append(out, present(e))
	}
	return response.Success(c, "Events fetched", out, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, eventsvc.ErrEventNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, eventsvc.ErrTitleRequired),
		errors.Is(err, eventsvc.ErrOrganizerMissing),
		errors.Is(err, validation.ErrInvalidDate):
		return response.BadRequest(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("events request failed")
	return response.Internal(c)
}
