package calendars

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	calsvc "planner-backend/internal/application/calendars"
	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *fiber.App {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, &domain.CalendarShare{}))
	h := &Handlers{Service: &calsvc.Service{DB: db}}

	app := fiber.New()
	app.Post("/calendars", h.Create)
	app.Get("/calendars", h.List)
	app.Get("/calendars/:id", h.Get)
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

func create(t *testing.T, app *fiber.App, body map[string]interface{}) (int, map[string]interface{}) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/calendars", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, req)
}

func TestCreate_AcceptsUserIDAsOwner(t *testing.T) {
	app := setupApp(t)
	code, out := create(t, app, map[string]interface{}{"user_id": 1, "shared_with_id": 2})
	require.Equal(t, fiber.StatusCreated, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["owner_id"])
	assert.Equal(t, float64(1), data["calendar_id"])

	code, out = send(t, app, httptest.NewRequest("GET", "/calendars?shared_with_id=2", nil))
	require.Equal(t, fiber.StatusOK, code)
	list := out["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), list[0].(map[string]interface{})["owner_id"])
}

func TestCreate_Rejects(t *testing.T) {
	app := setupApp(t)
	code, out := create(t, app, map[string]interface{}{"owner_id": 4, "shared_with_id": 4})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "User cannot share calendar with themselves.", out["error"].(map[string]interface{})["message"])

	code, _ = create(t, app, map[string]interface{}{"owner_id": 1, "shared_with_id": 2})
	require.Equal(t, fiber.StatusCreated, code)
	code, _ = create(t, app, map[string]interface{}{"owner_id": 1, "shared_with_id": 2})
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = send(t, app, httptest.NewRequest("GET", "/calendars/5", nil))
	assert.Equal(t, fiber.StatusNotFound, code)
}
