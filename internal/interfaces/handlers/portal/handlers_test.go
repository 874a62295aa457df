package portal_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"planner-backend/internal/middleware"
	"planner-backend/internal/testsupport"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browser replays the session cookie like a browser would.
type browser struct {
	t   *testing.T
	app *fiber.App
	sid string
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	if b.sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: b.sid})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName {
			b.sid = ck.Value
			if ck.MaxAge < 0 {
				b.sid = ""
			}
		}
	}
	return resp
}

func (b *browser) post(path string, form url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) get(path string) (*http.Response, map[string]interface{}) {
	b.t.Helper()
	resp := b.do(httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	var env struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(b.t, json.Unmarshal(body, &env))
	return resp, env.Data
}

func login(t *testing.T, app *fiber.App, username string) *browser {
	b := &browser{t: t, app: app}
	resp := b.post("/login", url.Values{"username": {username}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.NotEmpty(t, b.sid)
	return b
}

func TestPortal_LoginFlashAndLogout(t *testing.T) {
	s := testsupport.NewStack(t)
	app, mr := s.Portal(t)

	anon := &browser{t: t, app: app}
	resp := anon.post("/register", url.Values{"username": {"alice"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, data := anon.get("/")
	assert.Equal(t, map[string]interface{}{"action": "register", "success": true}, data["flash"])
	assert.Nil(t, data["user"])

	// The flash is shown once.
	_, data = anon.get("/")
	assert.Nil(t, data["flash"])

	bad := &browser{t: t, app: app}
	bad.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	_, data = bad.get("/")
	flash := data["flash"].(map[string]interface{})
	assert.Equal(t, false, flash["success"])
	assert.Equal(t, "Invalid username or password", flash["message"])

	b := login(t, app, "alice")
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+b.sid))
	_, data = b.get("/")
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	sid := b.sid
	resp = b.do(httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+sid))

	resp, _ = b.get("/invites")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPortal_EventInviteAndRSVP(t *testing.T) {
	s := testsupport.NewStack(t)
	app, _ := s.Portal(t)
	s.Register(t, "alice")
	s.Register(t, "bob")
	s.Register(t, "carol")

	alice := login(t, app, "alice")
	resp := alice.post("/event", url.Values{
		"title":         {"Party"},
		"description":   {"Rooftop"},
		"date":          {"2025-07-01"},
		"publicprivate": {"private"},
		"invites":       {"bob"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	bob := login(t, app, "bob")
	resp, data := bob.get("/invites")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	invites := data["invites"].([]interface{})
	require.Len(t, invites, 1)
	row := invites[0].(map[string]interface{})
	assert.Equal(t, "Party", row["title"])
	eventID := strconv.Itoa(int(row["event_id"].(float64)))

	carol := login(t, app, "carol")
	resp, _ = carol.get("/event/" + eventID)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = bob.post("/invites", url.Values{"event_id": {eventID}, "response": {"Participate"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/invites", resp.Header.Get("Location"))

	_, data = bob.get("/invites")
	assert.Empty(t, data["invites"])
	assert.Equal(t, map[string]interface{}{"action": "rsvp", "success": true}, data["flash"])

	resp, data = bob.get("/event/" + eventID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	event := data["event"].(map[string]interface{})
	assert.Equal(t, "alice", event["organizer"])
	assert.Len(t, event["participants"], 1)

	resp, _ = bob.get("/event/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPortal_CalendarShare(t *testing.T) {
	s := testsupport.NewStack(t)
	app, _ := s.Portal(t)
	s.Register(t, "alice")
	s.Register(t, "bob")

	alice := login(t, app, "alice")
	bob := login(t, app, "bob")

	_, data := bob.get("/calendar?username=alice")
	cal := data["calendar"].(map[string]interface{})
	assert.Equal(t, false, cal["success"])

	resp := alice.post("/share", url.Values{"username": {"alice"}})
	assert.Equal(t, "/calendar", resp.Header.Get("Location"))
	_, data = alice.get("/calendar")
	flash := data["flash"].(map[string]interface{})
	assert.Equal(t, "User cannot share calendar with themselves.", flash["message"])

	alice.post("/share", url.Values{"username": {"bob"}})

	resp = bob.post("/calendar", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, data = bob.get("/calendar?username=alice")
	cal = data["calendar"].(map[string]interface{})
	assert.Equal(t, true, cal["success"])
	assert.Equal(t, "alice", cal["username"])
}
