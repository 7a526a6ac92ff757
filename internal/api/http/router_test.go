package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store := repository.NewMemoryStore()
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}, service.AuthDependencies{UserRepo: store.Users()})

	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets(),
		NoteRepo:   store.Notes(),
		UserRepo:   store.Users(),
		Dispatcher: dispatcher,
	})

	logger := zap.NewNop()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("support-desk", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func doJSONList(t *testing.T, app *fiber.App, path, token string) (*http.Response, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, name, email, role string) (token, userID string) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "s3cret",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	return token, user["id"].(string)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	app := newTestApp(t)

	_, userID := register(t, app, "Alice", "alice@example.com", "customer")

	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "s3cret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, userID, user["id"])
	assert.Equal(t, "customer", user["role"])
	assert.NotEmpty(t, body["token"])
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "alice@example.com", "customer")

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "alice@example.com", "customer")

	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestMissingTokenRejected(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/tickets/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Authentication required", body["message"])
}

func TestTicketCreationScenario(t *testing.T) {
	app := newTestApp(t)
	token, userID := register(t, app, "Alice", "alice@example.com", "customer")

	resp, body := doJSON(t, app, http.MethodPost, "/tickets/", token, map[string]any{
		"title":       "Printer broken",
		"description": "It jams on every page.",
		"priority":    "High",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "TKT-001", body["ticketId"])
	assert.Equal(t, "Pending", body["status"])
	assert.Equal(t, "High", body["priority"])

	customer := body["customer"].(map[string]any)
	assert.Equal(t, userID, customer["id"])
	assert.Equal(t, "Alice", customer["name"])

	notes := body["notes"].([]any)
	require.Len(t, notes, 1)
	note := notes[0].(map[string]any)
	assert.Equal(t, "It jams on every page.", note["content"])
	assert.Equal(t, userID, note["createdBy"])

	resp, body = doJSON(t, app, http.MethodPost, "/tickets/", token, map[string]any{
		"title":       "Second issue",
		"description": "Another problem.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "TKT-002", body["ticketId"])
}

func TestListTicketsRoleFiltered(t *testing.T) {
	app := newTestApp(t)
	aliceToken, _ := register(t, app, "Alice", "alice@example.com", "customer")
	bobToken, _ := register(t, app, "Bob", "bob@example.com", "customer")
	agentToken, agentID := register(t, app, "Aaron", "aaron@example.com", "agent")

	resp, created := doJSON(t, app, http.MethodPost, "/tickets/", aliceToken, map[string]any{
		"title":         "Assigned one",
		"description":   "d",
		"assignedAgent": agentID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_, _ = doJSON(t, app, http.MethodPost, "/tickets/", bobToken, map[string]any{
		"title":       "Bob's ticket",
		"description": "d",
	})

	resp, aliceList := doJSONList(t, app, "/tickets/", aliceToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, aliceList, 1)
	assert.Equal(t, created["id"], aliceList[0]["id"])
	agent := aliceList[0]["assignedAgent"].(map[string]any)
	assert.Equal(t, "Aaron", agent["name"])

	resp, agentList := doJSONList(t, app, "/tickets/", agentToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, agentList, 1)
	assert.Equal(t, created["id"], agentList[0]["id"])
}

func TestListTicketsEmptyForIdleAgent(t *testing.T) {
	app := newTestApp(t)
	customerToken, _ := register(t, app, "Alice", "alice@example.com", "customer")
	agentToken, _ := register(t, app, "Aaron", "aaron@example.com", "agent")

	_, _ = doJSON(t, app, http.MethodPost, "/tickets/", customerToken, map[string]any{
		"title":       "t",
		"description": "d",
	})

	resp, list := doJSONList(t, app, "/tickets/", agentToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)
}

func TestForceCloseEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, _ := register(t, app, "Alice", "alice@example.com", "customer")

	_, created := doJSON(t, app, http.MethodPost, "/tickets/", token, map[string]any{
		"title":       "t",
		"description": "d",
	})
	ticketID := created["id"].(string)

	// The body is ignored, whatever it claims the status should be.
	resp, body := doJSON(t, app, http.MethodPut, "/tickets/"+ticketID, token, map[string]any{
		"status": "Active",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Issue is solved.", body["message"])

	resp, detail := doJSON(t, app, http.MethodGet, "/tickets/"+ticketID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Closed", detail["status"])

	// Closing again still succeeds.
	resp, body = doJSON(t, app, http.MethodPut, "/tickets/"+ticketID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
}

func TestForceCloseUnknownTicket(t *testing.T) {
	app := newTestApp(t)
	token, _ := register(t, app, "Alice", "alice@example.com", "customer")

	resp, body := doJSON(t, app, http.MethodPut, "/tickets/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Ticket not found.", body["message"])
}

func TestStatusTransitionEndpoint(t *testing.T) {
	app := newTestApp(t)
	customerToken, _ := register(t, app, "Alice", "alice@example.com", "customer")
	agentToken, agentID := register(t, app, "Aaron", "aaron@example.com", "agent")

	_, created := doJSON(t, app, http.MethodPost, "/tickets/", customerToken, map[string]any{
		"title":         "t",
		"description":   "d",
		"assignedAgent": agentID,
	})
	ticketID := created["id"].(string)
	statusPath := fmt.Sprintf("/tickets/%s/status", ticketID)

	resp, body := doJSON(t, app, http.MethodPut, statusPath, agentToken, map[string]any{"status": "Active"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Active", body["status"])

	// Backwards transition rejected.
	resp, _ = doJSON(t, app, http.MethodPut, statusPath, agentToken, map[string]any{"status": "Pending"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The customer may not use the validated endpoint.
	resp, _ = doJSON(t, app, http.MethodPut, statusPath, customerToken, map[string]any{"status": "Resolved"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAddNoteEndpoint(t *testing.T) {
	app := newTestApp(t)
	token, userID := register(t, app, "Alice", "alice@example.com", "customer")

	_, created := doJSON(t, app, http.MethodPost, "/tickets/", token, map[string]any{
		"title":       "t",
		"description": "d",
	})
	ticketID := created["id"].(string)

	resp, note := doJSON(t, app, http.MethodPost, "/tickets/"+ticketID+"/notes", token, map[string]any{
		"content": "Any update?",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Any update?", note["content"])
	assert.Equal(t, userID, note["createdBy"])

	_, detail := doJSON(t, app, http.MethodGet, "/tickets/"+ticketID, token, nil)
	notes := detail["notes"].([]any)
	assert.Len(t, notes, 2)
}
