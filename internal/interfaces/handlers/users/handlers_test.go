package users

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	usersvc "planner-backend/internal/application/users"
	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *fiber.App {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, &domain.User{}))
	h := &Handlers{Service: &usersvc.Service{DB: db, Tokens: usersvc.NewTokens("secret", time.Hour)}}

	app := fiber.New()
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/me", h.Me)
	app.Get("/users", h.List)
	app.Get("/users/:id", h.Get)
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req)
}

func TestRegisterLoginMe(t *testing.T) {
	app := setupApp(t)

	code, out := postJSON(t, app, "/auth/register", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, fiber.StatusCreated, code)
	user := out["data"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	code, out = postJSON(t, app, "/auth/register", map[string]string{"username": "alice", "password": "pw"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Username already exists", out["error"].(map[string]interface{})["message"])

	code, _ = postJSON(t, app, "/auth/login", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, out = postJSON(t, app, "/auth/login", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, fiber.StatusOK, code)
	token := out["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	code, out = send(t, app, req)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "alice", out["data"].(map[string]interface{})["username"])

	code, _ = send(t, app, httptest.NewRequest("GET", "/auth/me", nil))
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestRegister_MissingFields(t *testing.T) {
	app := setupApp(t)
	code, out := postJSON(t, app, "/auth/register", map[string]string{"username": "bob"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Username and password are required", out["error"].(map[string]interface{})["message"])
}

func TestGetAndList(t *testing.T) {
	app := setupApp(t)
	_, out := postJSON(t, app, "/auth/register", map[string]string{"username": "alice", "password": "pw"})
	id := out["data"].(map[string]interface{})["user_id"].(float64)
	assert.Equal(t, float64(1), id)

	code, out := send(t, app, httptest.NewRequest("GET", "/users/1", nil))
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "alice", out["data"].(map[string]interface{})["username"])

	code, out = send(t, app, httptest.NewRequest("GET", "/users/2", nil))
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "User not found", out["error"].(map[string]interface{})["message"])

	code, _ = send(t, app, httptest.NewRequest("GET", "/users/abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out = send(t, app, httptest.NewRequest("GET", "/users?username=alice", nil))
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"].([]interface{}), 1)

	code, out = send(t, app, httptest.NewRequest("GET", "/users?username=zed", nil))
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"].([]interface{}), 0)
}
