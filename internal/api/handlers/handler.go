// handler.go — обработчик admin API, реализующий generated.ServerInterface.
// Тонкий слой: разбирает запрос, вызывает сервисы и отдаёт JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/mcp-sync/internal/api/errors"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/service"
)

// maxBodyBytes — предельный размер тела запроса.
const maxBodyBytes = 1 << 20

// APIHandler — обработчики /api/v1.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	health   *HealthHandler
	registry *service.RegistryService
	users    *service.UserService
	keys     *service.KeyService
	license  *service.LicenseService
	settings *service.SettingsService
	sync     *service.SyncService
	tasks    *service.TaskService
	events   *service.EventService
	logger   *slog.Logger
}

// NewAPIHandler создаёт обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	registry *service.RegistryService,
	users *service.UserService,
	keys *service.KeyService,
	license *service.LicenseService,
	settings *service.SettingsService,
	syncSvc *service.SyncService,
	tasks *service.TaskService,
	events *service.EventService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		registry: registry,
		users:    users,
		keys:     keys,
		license:  license,
		settings: settings,
		sync:     syncSvc,
		tasks:    tasks,
		events:   events,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса. Пустое тело допустимо, если allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
	return false
}

// validUserID отклоняет неположительный идентификатор пользователя.
func validUserID(w http.ResponseWriter, id int64) bool {
	if id <= 0 {
		apierrors.ValidationError(w, "Некорректный userid")
		return false
	}
	return true
}

// writeServiceError переводит ошибку сервисного слоя в ответ API.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var perr *panel.Error
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrMissingService):
		apierrors.MissingService(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrInvalidLicense), errors.Is(err, panel.ErrInvalidLicense):
		apierrors.InvalidLicense(w, "Лицензия не задана или не подтверждена")
	case errors.Is(err, service.ErrNotEligible):
		apierrors.NotEligible(w, err.Error())
	case errors.Is(err, service.ErrNoServicesDefined), errors.Is(err, service.ErrNoTargetService):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrPanelUnavailable), errors.As(err, &perr):
		h.logger.Warn("Ошибка панели ключей", slog.String("op", op), slog.String("error", err.Error()))
		apierrors.PanelUnavailable(w, err.Error())
	default:
		h.logger.Error("Ошибка обработки запроса", slog.String("op", op), slog.String("error", err.Error()))
		apierrors.InternalError(w, op)
	}
}
