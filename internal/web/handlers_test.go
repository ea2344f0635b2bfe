package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"timetracker/internal/repository"
	"timetracker/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "timetracker-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	server := NewServer(
		service.NewAuthService(userRepo, "test-secret", time.Hour),
		service.NewTaskService(taskRepo),
		service.NewTimerService(db, taskRepo, entryRepo),
		service.NewStatsService(taskRepo, entryRepo),
	)
	return server.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, handler http.Handler, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "hunter2"}
	if rec := doJSON(t, handler, http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	token, _ := decode(t, rec)["access_token"].(string)
	if token == "" {
		t.Fatal("login returned no access_token")
	}
	return token
}

func createTaskHTTP(t *testing.T, handler http.Handler, token, title string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/tasks", token, map[string]string{"title": title, "category": "Work"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d body %s", rec.Code, rec.Body.String())
	}
	id, _ := decode(t, rec)["id"].(string)
	if id == "" {
		t.Fatal("created task has no id")
	}
	return id
}

func TestAuthRequired(t *testing.T) {
	handler := setupServer(t)

	if rec := doJSON(t, handler, http.MethodGet, "/tasks", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/tasks", "bogus-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", rec.Code)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	handler := setupServer(t)
	creds := map[string]string{"email": "ann@example.com", "password": "hunter2"}

	if rec := doJSON(t, handler, http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodPost, "/auth/register", "", creds); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", rec.Code)
	}
}

func TestTimerEndpoints(t *testing.T) {
	handler := setupServer(t)
	token := registerAndLogin(t, handler, "ann@example.com")
	taskID := createTaskHTTP(t, handler, token, "Write report")
	otherID := createTaskHTTP(t, handler, token, "Other work")

	rec := doJSON(t, handler, http.MethodPost, "/tasks/"+taskID+"/start-timer", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status %d body %s", rec.Code, rec.Body.String())
	}

	if rec := doJSON(t, handler, http.MethodPost, "/tasks/"+otherID+"/start-timer", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("second start: status %d, want 409", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/tasks/active-timer", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active-timer: status %d", rec.Code)
	}
	if got, _ := decode(t, rec)["taskId"].(string); got != taskID {
		t.Fatalf("active timer taskId = %q, want %q", got, taskID)
	}

	rec = doJSON(t, handler, http.MethodPost, "/tasks/"+taskID+"/stop-timer", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["endTime"] == nil {
		t.Fatal("stopped entry has no endTime")
	}
	if duration, ok := body["duration"].(float64); !ok || duration < 0 {
		t.Fatalf("stopped entry duration = %v", body["duration"])
	}

	if rec := doJSON(t, handler, http.MethodPost, "/tasks/"+taskID+"/stop-timer", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("double stop: status %d, want 409", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/tasks/active-timer", token, nil)
	if active, _ := decode(t, rec)["active"].(bool); active {
		t.Fatal("active timer reported after stop")
	}

	if rec := doJSON(t, handler, http.MethodPost, "/tasks/no-such-task/start-timer", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown task start: status %d, want 404", rec.Code)
	}
}

func TestTaskCRUDEndpoints(t *testing.T) {
	handler := setupServer(t)
	token := registerAndLogin(t, handler, "ann@example.com")
	taskID := createTaskHTTP(t, handler, token, "Write report")

	rec := doJSON(t, handler, http.MethodPatch, "/tasks/"+taskID, token, map[string]string{"status": "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status %d body %s", rec.Code, rec.Body.String())
	}
	if status, _ := decode(t, rec)["status"].(string); status != "completed" {
		t.Fatalf("status after patch = %q", status)
	}

	if rec := doJSON(t, handler, http.MethodPatch, "/tasks/"+taskID, token, map[string]string{"priority": "urgent"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad priority: status %d, want 400", rec.Code)
	}

	if rec := doJSON(t, handler, http.MethodDelete, "/tasks/"+taskID, token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d, want 204", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/tasks/"+taskID, token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: status %d, want 404", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler := setupServer(t)
	token := registerAndLogin(t, handler, "ann@example.com")
	taskID := createTaskHTTP(t, handler, token, "Tracked")

	doJSON(t, handler, http.MethodPost, "/tasks/"+taskID+"/start-timer", token, nil)
	doJSON(t, handler, http.MethodPost, "/tasks/"+taskID+"/stop-timer", token, nil)
	doJSON(t, handler, http.MethodPatch, "/tasks/"+taskID, token, map[string]string{"status": "completed"})

	rec := doJSON(t, handler, http.MethodGet, "/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if completed, _ := body["tasksCompletedToday"].(float64); completed != 1 {
		t.Fatalf("tasksCompletedToday = %v, want 1", body["tasksCompletedToday"])
	}
	dist, ok := body["categoryDistribution"].([]any)
	if !ok || len(dist) != 1 {
		t.Fatalf("categoryDistribution = %v, want one bucket", body["categoryDistribution"])
	}
}

func TestUsersCannotTouchEachOthersTasks(t *testing.T) {
	handler := setupServer(t)
	annToken := registerAndLogin(t, handler, "ann@example.com")
	bobToken := registerAndLogin(t, handler, "bob@example.com")
	taskID := createTaskHTTP(t, handler, annToken, "Ann's task")

	if rec := doJSON(t, handler, http.MethodGet, "/tasks/"+taskID, bobToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get: status %d, want 404", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodPost, "/tasks/"+taskID+"/start-timer", bobToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign start: status %d, want 404", rec.Code)
	}
}
