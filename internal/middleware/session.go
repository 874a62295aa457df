package middleware

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig for the Redis-backed portal session.
type SessionConfig struct {
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "planner.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour

	sessionDataLocal = "session_data"
	sessionIDLocal   = "session_id"
	flashKey         = "flash"
)

// SessionUser is the identity stored in the session under "user".
type SessionUser struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Flash is a one-shot outcome of a portal action, shown by the next view.
type Flash struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Session returns a Fiber middleware that loads the session from Redis into Locals and saves it
// back after the handler ran.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		ctx := c.UserContext()

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(ctx, SessionRedisPrefix+sessionID).Bytes()
			switch {
			case err == nil:
				_ = json.Unmarshal(b, &data)
			case err != redis.Nil:
				log.Warn().Err(err).Str("trace_id", GetTraceID(c)).Msg("session load failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(sessionDataLocal, data)
		c.Locals(userLocal, parseSessionUser(data["user"]))
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		if sid, _ := c.Locals(sessionIDLocal).(string); sid != "" {
			updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
			if updated != nil {
				b, _ := json.Marshal(updated)
				if err := rdb.Set(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
					log.Warn().Err(err).Str("trace_id", GetTraceID(c)).Msg("session save failed")
				}
			}
		}
		return nil
	}
}

// parseSessionUser reads the stored user map. JSON numbers decode as float64.
func parseSessionUser(v interface{}) *SessionUser {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	var id uint
	switch n := m["user_id"].(type) {
	case float64:
		id = uint(n)
	case uint:
		id = n
	case int:
		id = uint(n)
	case string:
		parsed, _ := strconv.ParseUint(n, 10, 32)
		id = uint(parsed)
	}
	username, _ := m["username"].(string)
	if id == 0 || username == "" {
		return nil
	}
	return &SessionUser{UserID: id, Username: username}
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

func sessionData(c *fiber.Ctx) map[string]interface{} {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
		c.Locals(sessionDataLocal, data)
	}
	return data
}

// SetSessionUser sets the user in the session. Call RegenerateSessionID first.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data := sessionData(c)
	data["user"] = map[string]interface{}{
		"user_id":  user.UserID,
		"username": user.Username,
	}
	u := user
	c.Locals(userLocal, &u)
}

// RegenerateSessionID creates a new session ID and sets it in Locals (cookie set by handler).
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession clears user and session data from Locals; caller must clear cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionIDLocal, "")
}

// SetFlash records the outcome of an action for the next view. Without a session id the flash
// cannot be persisted and is dropped.
func SetFlash(c *fiber.Ctx, f Flash) {
	sessionData(c)[flashKey] = map[string]interface{}{
		"action":  f.Action,
		"success": f.Success,
		"message": f.Message,
	}
}

// PopFlash returns and clears the pending flash, if any.
func PopFlash(c *fiber.Ctx) *Flash {
	data := sessionData(c)
	m, ok := data[flashKey].(map[string]interface{})
	if !ok {
		return nil
	}
	delete(data, flashKey)
	f := &Flash{}
	f.Action, _ = m["action"].(string)
	f.Success, _ = m["success"].(bool)
	f.Message, _ = m["message"].(string)
	return f
}

// SessionCookieConfig returns the cookie options for SetCookie/ClearCookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	secure := cfg.IsProduction || cfg.AllowCrossSiteDev
	return fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
