package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
	"github.com/bigkaa/goartstore/mcp-sync/internal/api/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_Auth(t *testing.T) {
	logger := testLogger()
	api := handlers.NewAPIHandler(handlers.NewHealthHandler(nil, nil), nil, nil, nil, nil, nil, nil, nil, nil, logger)
	router := NewRouter("token", logger, api)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"liveness без токена", http.MethodGet, "/health/live", "", http.StatusOK},
		{"метрики без токена", http.MethodGet, "/metrics", "", http.StatusOK},
		{"API без токена", http.MethodGet, "/api/v1/keys", "", http.StatusUnauthorized},
		{"API с неверным токеном", http.MethodGet, "/api/v1/keys", "Bearer nope", http.StatusUnauthorized},
		{"описание API без токена", http.MethodGet, "/api/v1/openapi.json", "", http.StatusUnauthorized},
		// Проверка запроса выполняется до обращения к сервисам.
		{"API с токеном", http.MethodDelete, "/api/v1/services", "Bearer token", http.StatusBadRequest},
		{"некорректный параметр пути", http.MethodPost, "/api/v1/users/abc/sync", "Bearer token", http.StatusBadRequest},
		{"неизвестный маршрут", http.MethodGet, "/api/v1/unknown", "Bearer token", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("статус = %d, хотели %d", rec.Code, tt.want)
			}
		})
	}
}

// Ошибка разбора параметра пути отдаётся в формате ошибок API.
func TestRouter_ParamErrorFormat(t *testing.T) {
	router := NewRouter("token", testLogger(), generated.Unimplemented{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/services/moodlemcp_student/users/x1", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, хотели 400", rec.Code)
	}
	var body generated.Error
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if body.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("код = %q, хотели VALIDATION_ERROR", body.Error.Code)
	}
}

func TestOpenAPISpec(t *testing.T) {
	doc, err := generated.GetSwagger()
	if err != nil {
		t.Fatalf("GetSwagger: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("описание API не проходит проверку: %v", err)
	}
	for _, path := range []string{"/api/v1/sync", "/api/v1/keys/{mcpkey}/regenerate", "/api/v1/events"} {
		if doc.Paths.Value(path) == nil {
			t.Errorf("в описании нет пути %s", path)
		}
	}

	router := NewRouter("token", testLogger(), generated.Unimplemented{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, хотели 200", rec.Code)
	}
	var served struct {
		OpenAPI string `json:"openapi"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&served); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if served.OpenAPI != "3.0.3" {
		t.Errorf("openapi = %q, хотели 3.0.3", served.OpenAPI)
	}
}
