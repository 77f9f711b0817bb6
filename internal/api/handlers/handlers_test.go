package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apierrors "github.com/bigkaa/goartstore/mcp-sync/internal/api/errors"
	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("разбор тела ошибки: %v", err)
	}
	return body
}

func TestWriteServiceError(t *testing.T) {
	h := &APIHandler{logger: testLogger()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"валидация", fmt.Errorf("%w: пустая тема", service.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"не найдено", fmt.Errorf("%w: ключ", service.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"нет сервиса", fmt.Errorf("%w: moodlemcp_x", service.ErrMissingService), http.StatusNotFound, "MISSING_SERVICE"},
		{"лицензия", service.ErrInvalidLicense, http.StatusConflict, "INVALID_LICENSE"},
		{"лицензия панели", &panel.Error{Code: panel.CodeInvalidLicense}, http.StatusConflict, "INVALID_LICENSE"},
		{"не подходит", service.ErrNotEligible, http.StatusUnprocessableEntity, "NOT_ELIGIBLE"},
		{"нет сервисов", service.ErrNoServicesDefined, http.StatusConflict, "CONFLICT"},
		{"ошибка панели", &panel.Error{Code: panel.CodeTransport, Message: "timeout"}, http.StatusBadGateway, "PANEL_UNAVAILABLE"},
		{
			"пересчёт с ошибкой панели",
			fmt.Errorf("%w: %w", service.ErrRecalculateFailed, &panel.Error{Code: panel.CodeAPIError}),
			http.StatusBadGateway, "PANEL_UNAVAILABLE",
		},
		{"прочее", errors.New("соединение разорвано"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeServiceError(rec, "операция", tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, хотели %d", rec.Code, tt.wantStatus)
			}
			if got := decodeError(t, rec).Error.Code; got != tt.wantCode {
				t.Errorf("код = %q, хотели %q", got, tt.wantCode)
			}
		})
	}
}

var _ generated.ServerInterface = (*APIHandler)(nil)

// newTestRouter собирает маршруты generated поверх обработчика без сервисов.
func newTestRouter(h generated.ServerInterface) http.Handler {
	return generated.HandlerWithOptions(h, generated.ChiServerOptions{
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			apierrors.ValidationError(w, err.Error())
		},
	})
}

// Запросы, отклоняемые до обращения к сервисам.
func TestRoutes_RequestValidation(t *testing.T) {
	h := NewAPIHandler(NewHealthHandler(nil, nil), nil, nil, nil, nil, nil, nil, nil, nil, testLogger())
	r := newTestRouter(h)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"удаление без подтверждения", http.MethodDelete, "/api/v1/services", ""},
		{"неверное подтверждение", http.MethodDelete, "/api/v1/services?confirm=1", ""},
		{"некорректный userid", http.MethodPost, "/api/v1/users/abc/recalculate", ""},
		{"отрицательный userid", http.MethodPut, "/api/v1/services/moodlemcp_student/users/-1", ""},
		{"нулевой userid", http.MethodPost, "/api/v1/users/0/sync", ""},
		{"неизвестный тип задачи", http.MethodPost, "/api/v1/tasks", `{"kind":"reindex"}`},
		{"некорректный limit", http.MethodGet, "/api/v1/tasks?limit=0", ""},
		{"нечисловой limit", http.MethodGet, "/api/v1/tasks?limit=many", ""},
		{"битый JSON", http.MethodPatch, "/api/v1/settings", `{"auto_sync":`},
		{"пустое тело", http.MethodPut, "/api/v1/license", ""},
		{"дата не по формату", http.MethodPost, "/api/v1/keys/k1/regenerate", `{"expires_on":"31.12.2026"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("статус = %d, хотели 400", rec.Code)
			}
			if got := decodeError(t, rec).Error.Code; got != "VALIDATION_ERROR" {
				t.Errorf("код = %q, хотели VALIDATION_ERROR", got)
			}
		})
	}
}

// Health через маршруты generated делегируется в HealthHandler.
func TestRoutes_HealthDelegation(t *testing.T) {
	h := NewAPIHandler(NewHealthHandler(stubPG{"ok", ""}, stubPanel{}), nil, nil, nil, nil, nil, nil, nil, nil, testLogger())
	r := newTestRouter(h)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("статус = %d, хотели 200", rec.Code)
			}
		})
	}
}

// Операции без реализации отвечают 501 через generated.Unimplemented.
func TestRoutes_Unimplemented(t *testing.T) {
	r := newTestRouter(generated.Unimplemented{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/keys", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("статус = %d, хотели 501", rec.Code)
	}
}

func TestMapKey(t *testing.T) {
	k := &panel.Key{
		MCPKey:      "k1",
		MCPURL:      "https://mcp.example/k1",
		MoodleToken: "tok",
		Status:      "active",
		SentAt:      "2026-01-02",
	}
	got := mapKey(k)
	if got.MoodleRoles == nil {
		t.Error("moodleRoles = nil, ожидается пустой список")
	}
	if got.SentAt == nil || *got.SentAt != "2026-01-02" {
		t.Errorf("sentAt = %v, хотели 2026-01-02", got.SentAt)
	}
	if got.ExpiresOn != nil || got.Name != nil {
		t.Error("пустые поля должны отсутствовать в ответе")
	}
	if mapKeyPtr(nil) != nil {
		t.Error("mapKeyPtr(nil) должен вернуть nil")
	}
}

func TestMapTask(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := &model.Task{
		ID:        "t1",
		Kind:      model.TaskSyncUser,
		Status:    model.TaskStatusPending,
		Payload:   json.RawMessage(`{"userid":7}`),
		CreatedAt: now,
	}
	got := mapTask(task)
	if got.Kind != generated.TaskKindSyncUser || got.Status != generated.TaskStatusPending {
		t.Errorf("kind/status = %q/%q", got.Kind, got.Status)
	}
	if got.Payload == nil || (*got.Payload)["userid"] != float64(7) {
		t.Errorf("payload = %v, хотели userid=7", got.Payload)
	}
	if got.RunAfter != nil {
		t.Error("run_after должен отсутствовать для нулевого времени")
	}
	if got.CreatedAt == nil || !got.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, хотели %v", got.CreatedAt, now)
	}
}

type stubPG struct{ status, msg string }

func (s stubPG) CheckReady() (string, string) { return s.status, s.msg }

type stubPanel struct{ err error }

func (s stubPanel) CheckReady(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		pg         ReadinessChecker
		panel      PanelChecker
		wantStatus string
		wantCode   int
	}{
		{"всё доступно", stubPG{"ok", ""}, stubPanel{}, "ok", http.StatusOK},
		{"панель недоступна", stubPG{"ok", ""}, stubPanel{errors.New("timeout")}, "degraded", http.StatusOK},
		{"БД недоступна", stubPG{"fail", "refused"}, stubPanel{}, "fail", http.StatusServiceUnavailable},
		{"не инициализированы", nil, nil, "fail", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pg, tt.panel)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("HTTP статус = %d, хотели %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("разбор ответа: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("статус = %q, хотели %q", resp.Status, tt.wantStatus)
			}
			if resp.Service != "mcp-sync" {
				t.Errorf("service = %q", resp.Service)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil).HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, хотели 200", rec.Code)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"ok", "ok"}, "ok"},
		{[]string{"ok", "degraded"}, "degraded"},
		{[]string{"degraded", "fail"}, "fail"},
		{nil, "ok"},
	}
	for _, tt := range tests {
		if got := overallStatus(tt.in...); got != tt.want {
			t.Errorf("overallStatus(%v) = %q, хотели %q", tt.in, got, tt.want)
		}
	}
}
