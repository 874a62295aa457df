package portal

import (
	"errors"
	"net/http"

	portalsvc "planner-backend/internal/application/portal"
	"planner-backend/internal/contracts"
	"planner-backend/internal/infrastructure/upstream"
	"planner-backend/internal/middleware"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers serves the portal: composed views and form actions. Actions answer with a 303 redirect
// and leave their outcome as a flash in the session.
type Handlers struct {
	Service *portalsvc.Service
	Rdb     *redis.Client
	Session middleware.SessionConfig
}

type credentialsForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type usernameForm struct {
	Username string `json:"username" form:"username"`
}

type rsvpForm struct {
	EventID  string `json:"event_id" form:"event_id"`
	Response string `json:"response" form:"response"`
}

func viewer(c *fiber.Ctx) portalsvc.Viewer {
	u := middleware.GetUser(c)
	if u == nil {
		return portalsvc.Viewer{}
	}
	return portalsvc.Viewer{UserID: u.UserID, Username: u.Username}
}

// ensureSession gives anonymous visitors a session so a flash survives the redirect.
func (h *Handlers) ensureSession(c *fiber.Ctx) {
	if middleware.GetSessionID(c) != "" {
		return
	}
	h.setCookie(c, middleware.RegenerateSessionID(c))
}

func (h *Handlers) setCookie(c *fiber.Ctx, sid string) {
	cookie := middleware.SessionCookieConfig(h.Session)
	cookie.Value = sid
	c.Cookie(&cookie)
}

// message is the flash text for a failed action.
func message(err error) string {
	if se, ok := upstream.AsStatus(err); ok {
		if msg := se.Message(); msg != "" {
			return msg
		}
		return http.StatusText(se.Status)
	}
	if errors.Is(err, upstream.ErrUnreachable) {
		return "Service unavailable, please try again"
	}
	return err.Error()
}

// done records the outcome of action and redirects to target.
func (h *Handlers) done(c *fiber.Ctx, action, target string, err error) error {
	h.ensureSession(c)
	f := middleware.Flash{Action: action, Success: err == nil}
	if err != nil {
		f.Message = message(err)
		log.Info().Str("trace_id", middleware.GetTraceID(c)).Str("action", action).Str("reason", f.Message).Msg("portal action failed")
	}
	middleware.SetFlash(c, f)
	return c.Redirect(target, fiber.StatusSeeOther)
}

// viewFailed renders a failed view read.
func viewFailed(c *fiber.Ctx, err error) error {
	if se, ok := upstream.AsStatus(err); ok {
		return response.Error(c, message(err), se.Status, se.Detail())
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("portal view failed")
	return response.Error(c, message(err), fiber.StatusBadGateway, nil)
}

// Login POST /login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var form credentialsForm
	if err := c.BodyParser(&form); err != nil {
		return h.done(c, "login", "/", portalsvc.ErrInvalidRequest)
	}
	res, err := h.Service.Login(c.UserContext(), contracts.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		return h.done(c, "login", "/", err)
	}
	if old := middleware.GetSessionID(c); old != "" && h.Rdb != nil {
		_ = h.Rdb.Del(c.UserContext(), middleware.SessionRedisPrefix+old).Err()
	}
	h.setCookie(c, middleware.RegenerateSessionID(c))
	middleware.SetSessionUser(c, middleware.SessionUser{UserID: res.User.UserID, Username: res.User.Username})
	return h.done(c, "login", "/", nil)
}

// Register POST /register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var form credentialsForm
	if err := c.BodyParser(&form); err != nil {
		return h.done(c, "register", "/", portalsvc.ErrInvalidRequest)
	}
	_, err := h.Service.Register(c.UserContext(), contracts.Credentials{Username: form.Username, Password: form.Password})
	return h.done(c, "register", "/", err)
}

// Logout GET /logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" && h.Rdb != nil {
		_ = h.Rdb.Del(c.UserContext(), middleware.SessionRedisPrefix+sid).Err()
	}
	middleware.DestroySession(c)
	cookie := middleware.SessionCookieConfig(h.Session)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Home GET /
func (h *Handlers) Home(c *fiber.Ctx) error {
	rows, err := h.Service.Home(c.UserContext())
	if err != nil {
		return viewFailed(c, err)
	}
	return response.Success(c, "Home", fiber.Map{
		"user":   middleware.GetUser(c),
		"flash":  middleware.PopFlash(c),
		"events": rows,
	}, nil)
}

// CreateEvent POST /event
func (h *Handlers) CreateEvent(c *fiber.Ctx) error {
	var form portalsvc.EventForm
	if err := c.BodyParser(&form); err != nil {
		return h.done(c, "create_event", "/", portalsvc.ErrInvalidRequest)
	}
	_, err := h.Service.CreateEvent(c.UserContext(), viewer(c), form)
	return h.done(c, "create_event", "/", err)
}

// Event GET /event/:id
func (h *Handlers) Event(c *fiber.Ctx) error {
	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	detail, err := h.Service.EventDetail(c.UserContext(), viewer(c), id)
	switch {
	case errors.Is(err, portalsvc.ErrEventNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, portalsvc.ErrNotVisible):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case err != nil:
		return viewFailed(c, err)
	}
	return response.Success(c, "Event", fiber.Map{
		"user":  middleware.GetUser(c),
		"flash": middleware.PopFlash(c),
		"event": detail,
	}, nil)
}

// Calendar GET|POST /calendar. GET reads ?username=, POST the form field; both default to the viewer.
func (h *Handlers) Calendar(c *fiber.Ctx) error {
	username := c.Query("username")
	if c.Method() == fiber.MethodPost {
		var form usernameForm
		if err := c.BodyParser(&form); err != nil {
			return response.BadRequest(c, portalsvc.ErrInvalidRequest.Error())
		}
		username = form.Username
	}
	view, err := h.Service.Calendar(c.UserContext(), viewer(c), username)
	if err != nil {
		return viewFailed(c, err)
	}
	return response.Success(c, "Calendar", fiber.Map{
		"user":     middleware.GetUser(c),
		"flash":    middleware.PopFlash(c),
		"calendar": view,
	}, nil)
}

// Share POST /share
func (h *Handlers) Share(c *fiber.Ctx) error {
	var form usernameForm
	if err := c.BodyParser(&form); err != nil {
		return h.done(c, "share", "/calendar", portalsvc.ErrInvalidRequest)
	}
	_, err := h.Service.Share(c.UserContext(), viewer(c), form.Username)
	return h.done(c, "share", "/calendar", err)
}

// Invites GET /invites
func (h *Handlers) Invites(c *fiber.Ctx) error {
	rows, err := h.Service.Invites(c.UserContext(), viewer(c))
	if err != nil {
		return viewFailed(c, err)
	}
	return response.Success(c, "Invites", fiber.Map{
		"user":    middleware.GetUser(c),
		"flash":   middleware.PopFlash(c),
		"invites": rows,
	}, nil)
}

// RSVP POST /invites
func (h *Handlers) RSVP(c *fiber.Ctx) error {
	var form rsvpForm
	if err := c.BodyParser(&form); err != nil {
		return h.done(c, "rsvp", "/invites", portalsvc.ErrInvalidRequest)
	}
	eventID, err := validation.ParseID(form.EventID)
	if err != nil {
		return h.done(c, "rsvp", "/invites", err)
	}
	_, err = h.Service.RSVP(c.UserContext(), viewer(c), eventID, form.Response)
	return h.done(c, "rsvp", "/invites", err)
}
