package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	adapthttp "tesnim/internal/adapter/http"
	"tesnim/internal/adapter/memory"
	"tesnim/internal/backend"
	"tesnim/internal/domain"
)

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

func newServices(t *testing.T) *backend.Services {
	t.Helper()
	db := memory.New()
	svc := backend.New(backend.Storage{
		Accounts: db,
		Tokens:   db.NewTokenRepo(),
		Tasks:    memory.NewTable[domain.Task](),
		Events:   memory.NewTable[domain.Event](),
		Todos:    memory.NewTable[domain.Todo](),
		Timer:    db,
	}, backend.TokenConfig{Secret: "test-secret", Issuer: "tesnim-test"})
	svc.Auth.SetBcryptCost(bcrypt.MinCost)
	if err := svc.Auth.SeedDemoUser(context.Background()); err != nil {
		t.Fatalf("SeedDemoUser: %v", err)
	}
	return svc
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(adapthttp.New(newServices(t)).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+"/api/v1"+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func login(t *testing.T, ts *httptest.Server) map[string]any {
	t.Helper()
	resp := call(t, ts, http.MethodPost, "/auth/login", "", map[string]string{
		"email": backend.DemoEmail, "password": backend.DemoPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	return decodeBody(t, resp)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := call(t, ts, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store, got %q", got)
	}
	if body := decodeBody(t, resp); body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := login(t, ts)
	user, _ := body["user"].(map[string]any)
	if body["success"] != true || body["token"] == "" || body["refreshToken"] == "" || user["role"] != "admin" {
		t.Fatalf("unexpected login body: %v", body)
	}

	resp := call(t, ts, http.MethodPost, "/auth/login", "", map[string]string{"email": backend.DemoEmail, "password": "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	failed := decodeBody(t, resp)
	if failed["error"] != "Invalid email or password" || failed["code"] != "invalid_credentials" {
		t.Errorf("unexpected error body: %v", failed)
	}

	resp = call(t, ts, http.MethodGet, "/auth/login", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/tasks", "/events", "/todos", "/users/timer-settings", "/timer/stats"} {
		resp := call(t, ts, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}
	resp := call(t, ts, http.MethodGet, "/tasks", "forged", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("forged token: expected 401, got %d", resp.StatusCode)
	}
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)["token"].(string)

	resp := call(t, ts, http.MethodPost, "/tasks", token, map[string]any{"title": "Ship it", "priority": "high"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	id := decodeBody(t, resp)["id"].(string)

	resp = call(t, ts, http.MethodPut, "/tasks/"+id, token, map[string]any{"completed": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeBody(t, resp)
	if updated["completed"] != true || updated["title"] != "Ship it" {
		t.Errorf("expected merged task, got %v", updated)
	}

	resp = call(t, ts, http.MethodGet, "/tasks/stats", token, nil)
	if stats := decodeBody(t, resp); stats["completedToday"] != float64(1) {
		t.Errorf("unexpected stats: %v", stats)
	}

	resp = call(t, ts, http.MethodDelete, "/tasks/"+id, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp = call(t, ts, http.MethodDelete, "/tasks/"+id, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["code"] != "not_found" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestTodoRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)["token"].(string)

	for _, in := range []map[string]any{
		{"text": "buy milk", "priority": "high", "tags": []string{"home"}},
		{"text": "file taxes", "priority": "low"},
	} {
		if resp := call(t, ts, http.MethodPost, "/todos", token, in); resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d", resp.StatusCode)
		}
	}

	tests := []struct {
		path string
		want int
	}{
		{"/todos", 2},
		{"/todos/tag/home", 1},
		{"/todos/priority/low", 1},
		{"/todos/status/pending", 2},
		{"/todos?priority=high", 1},
	}
	for _, tc := range tests {
		resp := call(t, ts, http.MethodGet, tc.path, token, nil)
		var todos []domain.Todo
		if err := json.NewDecoder(resp.Body).Decode(&todos); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if len(todos) != tc.want {
			t.Errorf("%s: got %d todos; want %d", tc.path, len(todos), tc.want)
		}
	}

	if resp := call(t, ts, http.MethodGet, "/todos/due-date", token, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("due-date without query: expected 400, got %d", resp.StatusCode)
	}
}

func TestTimerRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)["token"].(string)

	settings := domain.DefaultTimerSettings()
	settings.FocusTime = 3000
	resp := call(t, ts, http.MethodPut, "/users/timer-settings", token, map[string]any{"settings": settings})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save settings: expected 200, got %d", resp.StatusCode)
	}

	resp = call(t, ts, http.MethodGet, "/users/timer-settings", token, nil)
	if body := decodeBody(t, resp); body["focusTime"] != float64(3000) {
		t.Errorf("unexpected settings: %v", body)
	}

	resp = call(t, ts, http.MethodPost, "/timer/sessions", token, map[string]any{"duration": 1500, "completed": true})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save session: expected 201, got %d", resp.StatusCode)
	}
	resp = call(t, ts, http.MethodGet, "/timer/stats", token, nil)
	if body := decodeBody(t, resp); body["completedSessionsToday"] != float64(1) {
		t.Errorf("unexpected stats: %v", body)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	ts := newTestServer(t)
	body := login(t, ts)
	refresh := body["refreshToken"].(string)

	resp := call(t, ts, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}
	pair := decodeBody(t, resp)
	if pair["token"] == "" || pair["refreshToken"] == refresh {
		t.Fatalf("expected rotated pair, got %v", pair)
	}

	resp = call(t, ts, http.MethodPost, "/auth/logout", pair["token"].(string), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp = call(t, ts, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": pair["refreshToken"].(string)})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("refresh after logout: expected 401, got %d", resp.StatusCode)
	}
}

func TestSSODisabled(t *testing.T) {
	ts := newTestServer(t)

	resp := call(t, ts, http.MethodGet, "/auth/config", "", nil)
	if body := decodeBody(t, resp); body["sso_enabled"] != false {
		t.Errorf("expected sso disabled, got %v", body)
	}
	if resp := call(t, ts, http.MethodGet, "/auth/sso/login", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
