package users

import (
	"errors"
	"strings"

	usersvc "planner-backend/internal/application/users"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the user directory endpoints.
type Handlers struct {
	Service *usersvc.Service
}

// Register POST /auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in usersvc.Credentials
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, usersvc.ErrCredentialsRequired.Error())
	}
	user, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Uint("user_id", user.ID).Msg("user registered")
	return response.SuccessCreated(c, "User registered", user, nil)
}

// Login POST /auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in usersvc.Credentials
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, usersvc.ErrCredentialsRequired.Error())
	}
	token, user, err := h.Service.Login(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Login successful", fiber.Map{"token": token, "user": user}, nil)
}

// Me GET /auth/me with "Authorization: Bearer <token>".
func (h *Handlers) Me(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		return response.Unauthorized(c, "Missing bearer token")
	}
	user, err := h.Service.Me(c.UserContext(), strings.TrimSpace(token))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Authenticated", user, nil)
}

// List GET /users[?username=]
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext(), c.Query("username"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Users fetched", list, nil)
}

// Get GET /users/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	user, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "User fetched", user, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usersvc.ErrCredentialsRequired),
		errors.Is(err, usersvc.ErrInvalidUsername),
		errors.Is(err, usersvc.ErrInvalidPassword),
		errors.Is(err, usersvc.ErrUsernameTaken):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, usersvc.ErrInvalidCredentials), errors.Is(err, usersvc.ErrInvalidToken):
		return response.Unauthorized(c, err.Error())
	case errors.Is(err, usersvc.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("users request failed")
	return response.Internal(c)
}
