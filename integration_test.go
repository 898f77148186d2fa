package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm/logger"
)

func TestApplicationStartup(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DB_DRIVER", "sqlite")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DB_DRIVER")
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg == nil {
		t.Fatal("Configuration should not be nil")
	}

	t.Log("Application configuration loaded successfully")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "development"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   ":memory:",
		},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:          "sqlite",
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
		LogLevel:        logger.Silent,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return setupRouter(cfg, pool, nil)
}

func TestTaskLifecycle_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	// Create
	body := []byte(`{"text": "Buy milk", "priority": "high", "dueDate": "2020-01-01"}`)
	req, _ := http.NewRequest("POST", "/api/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Create: expected status %d, got %d (%s)", http.StatusCreated, w.Code, w.Body.String())
	}

	var created models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Create: failed to unmarshal response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Create: expected a store-assigned id")
	}

	// List
	req, _ = http.NewRequest("GET", "/api/tasks?filter=active", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var listed []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("List: failed to unmarshal response: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("List: expected 1 active task, got %d", len(listed))
	}

	// Stats reflect the overdue pending task
	req, _ = http.NewRequest("GET", "/api/tasks/stats", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var stats map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Stats: failed to unmarshal response: %v", err)
	}
	if stats["overdue"] != float64(1) {
		t.Errorf("Stats: expected 1 overdue task, got %v", stats["overdue"])
	}

	// Complete it via update
	req, _ = http.NewRequest("PUT", "/api/tasks/1", bytes.NewBufferString(`{"completed": true}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Update: expected status %d, got %d (%s)", http.StatusOK, w.Code, w.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Update: failed to unmarshal response: %v", err)
	}
	if !updated.Completed {
		t.Error("Update: expected task to be completed")
	}
	if updated.Text != "Buy milk" {
		t.Errorf("Update: expected untouched text, got '%s'", updated.Text)
	}

	// Delete
	req, _ = http.NewRequest("DELETE", "/api/tasks/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Delete: expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Subsequent fetch fails
	req, _ = http.NewRequest("GET", "/api/tasks/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Get after delete: expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestBulkUpdate_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	for _, text := range []string{"one", "two", "three"} {
		body, _ := json.Marshal(map[string]string{"text": text})
		req, _ := http.NewRequest("POST", "/api/tasks", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Create '%s': expected status %d, got %d", text, http.StatusCreated, w.Code)
		}
	}

	body := []byte(`{"task_ids": [1, 2], "updates": {"completed": true, "priority": "low"}}`)
	req, _ := http.NewRequest("PUT", "/api/tasks/bulk", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Bulk update: expected status %d, got %d (%s)", http.StatusOK, w.Code, w.Body.String())
	}

	var response struct {
		Message      string        `json:"message"`
		UpdatedTasks []models.Task `json:"updated_tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Bulk update: failed to unmarshal response: %v", err)
	}
	if len(response.UpdatedTasks) != 2 {
		t.Fatalf("Bulk update: expected 2 updated tasks, got %d", len(response.UpdatedTasks))
	}

	// An unknown id leaves everything untouched
	body = []byte(`{"task_ids": [3, 9999], "updates": {"completed": true}}`)
	req, _ = http.NewRequest("PUT", "/api/tasks/bulk", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Bulk update with bad id: expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	req, _ = http.NewRequest("GET", "/api/tasks/3", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var third models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &third); err != nil {
		t.Fatalf("Get: failed to unmarshal response: %v", err)
	}
	if third.Completed {
		t.Error("Expected task 3 to be untouched after failed bulk update")
	}
}

func TestFallbackHandlers(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/no/such/route", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for unknown route, got %d", http.StatusNotFound, w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["error"] == "" {
		t.Error("Expected a fallback error body")
	}

	req, _ = http.NewRequest("PATCH", "/api/tasks", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d for unsupported method, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d (%s)", http.StatusOK, w.Code, w.Body.String())
	}
}
