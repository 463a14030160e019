package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vedang-raul/taskhub/internal/auth"
	"github.com/vedang-raul/taskhub/internal/config"
	httpx "github.com/vedang-raul/taskhub/internal/http"
	"github.com/vedang-raul/taskhub/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const adminCode = "YouKnowNothingJonSnow"

// newTestServer builds the real router on top of the memory repos, so the
// whole middleware and handler chain is exercised without a database.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := config.Config{
		Env:       "test",
		JWTSecret: "integration-test-secret",
		AdminCode: adminCode,
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtManager := auth.NewManager(cfg.JWTSecret, "HS256", 30*time.Minute)

	return httpx.NewRouter(log, cfg, httpx.Deps{
		Users: memory.NewUsersRepo(),
		Tasks: memory.NewTasksRepo(),
		JWT:   jwtManager,
	})
}

func do(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}

	return out
}

func register(t *testing.T, r http.Handler, username, email, password, code string) *httptest.ResponseRecorder {
	t.Helper()

	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	if code != "" {
		body["adminCode"] = code
	}

	b, _ := json.Marshal(body)

	return do(t, r, http.MethodPost, "/api/v1/auth/register", "", string(b))
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()

	w := do(t, r, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"`+email+`","password":"`+password+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login %s failed: status %d, body=%s", email, w.Code, w.Body.String())
	}

	token, _ := decode(t, w)["accessToken"].(string)
	if token == "" {
		t.Fatalf("login %s returned no token: %s", email, w.Body.String())
	}

	return token
}

func TestFullAPIFlow(t *testing.T) {
	r := newTestServer(t)

	// registration: one admin via the bootstrap code, one regular user
	if w := register(t, r, "root", "root@example.com", "rootpass1", adminCode); w.Code != http.StatusCreated {
		t.Fatalf("admin register: status %d, body=%s", w.Code, w.Body.String())
	}

	if w := register(t, r, "alice", "alice@example.com", "alicepass1", ""); w.Code != http.StatusCreated {
		t.Fatalf("user register: status %d, body=%s", w.Code, w.Body.String())
	}

	if w := register(t, r, "alice2", "alice@example.com", "alicepass2", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: status %d, want 400", w.Code)
	}

	// wrong password is a flat 401
	if w := do(t, r, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"alice@example.com","password":"wrong-password"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d, want 401", w.Code)
	}

	adminToken := login(t, r, "root@example.com", "rootpass1")
	userToken := login(t, r, "alice@example.com", "alicepass1")

	// unauthenticated access is rejected before any handler runs
	if w := do(t, r, http.MethodGet, "/api/v1/tasks", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", w.Code)
	}

	// task creation is admin-only
	if w := do(t, r, http.MethodPost, "/api/v1/tasks", userToken,
		`{"title":"forbidden","description":"should not exist"}`); w.Code != http.StatusForbidden {
		t.Fatalf("user create task: status %d, want 403", w.Code)
	}

	w := do(t, r, http.MethodPost, "/api/v1/tasks", adminToken,
		`{"title":"Ship release","description":"Cut the tag"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create task: status %d, body=%s", w.Code, w.Body.String())
	}

	taskID, _ := decode(t, w)["id"].(string)
	if taskID == "" {
		t.Fatalf("created task has no id: %s", w.Body.String())
	}

	// everyone authenticated can read the listing
	w = do(t, r, http.MethodGet, "/api/v1/tasks", userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("user list tasks: status %d", w.Code)
	}
	if count, _ := decode(t, w)["count"].(float64); count != 1 {
		t.Fatalf("got count %v, want 1", count)
	}

	// non-admins may flip completed, nothing else
	w = do(t, r, http.MethodPut, "/api/v1/tasks/"+taskID, userToken, `{"completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("user completed patch: status %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/api/v1/tasks/"+taskID, userToken, `{"title":"hijacked","completed":false}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user title patch: status %d, want 403", w.Code)
	}

	// the rejected patch must not have applied anything
	w = do(t, r, http.MethodGet, "/api/v1/tasks", adminToken, "")
	if bytes.Contains(w.Body.Bytes(), []byte("hijacked")) {
		t.Fatalf("forbidden patch was partially applied: %s", w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"completed":true`)) {
		t.Fatalf("earlier completed patch lost: %s", w.Body.String())
	}

	if w := do(t, r, http.MethodPut, "/api/v1/tasks/not-a-uuid", adminToken, `{"completed":true}`); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed task id: status %d, want 400", w.Code)
	}

	// user listing is admin-only and never exposes password hashes
	if w := do(t, r, http.MethodGet, "/api/v1/auth/get-all", userToken, ""); w.Code != http.StatusForbidden {
		t.Fatalf("user get-all: status %d, want 403", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/v1/auth/get-all", adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin get-all: status %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("$2a$")) || bytes.Contains(w.Body.Bytes(), []byte("passwordHash")) {
		t.Fatalf("user listing leaks password material: %s", w.Body.String())
	}

	var aliceID string
	if items, ok := decode(t, w)["items"].([]any); ok {
		for _, it := range items {
			m, _ := it.(map[string]any)
			if m["email"] == "alice@example.com" {
				aliceID, _ = m["id"].(string)
			}
		}
	}
	if aliceID == "" {
		t.Fatalf("alice missing from listing: %s", w.Body.String())
	}

	// deleting a user invalidates their outstanding token on the next request
	if w := do(t, r, http.MethodDelete, "/api/v1/auth/delete/"+aliceID, adminToken, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete user: status %d, body=%s", w.Code, w.Body.String())
	}

	if w := do(t, r, http.MethodGet, "/api/v1/tasks", userToken, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user token: status %d, want 401", w.Code)
	}

	// task deletion is admin-only, second delete is a 404
	if w := do(t, r, http.MethodDelete, "/api/v1/tasks/"+taskID, adminToken, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete task: status %d", w.Code)
	}

	if w := do(t, r, http.MethodDelete, "/api/v1/tasks/"+taskID, adminToken, ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete task twice: status %d, want 404", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestServer(t)

	if w := do(t, r, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}

	// no ping function wired means ready
	if w := do(t, r, http.MethodGet, "/readyz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz: status %d", w.Code)
	}
}

func TestPostWithoutJSONContentType(t *testing.T) {
	r := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415", w.Code)
	}
}
