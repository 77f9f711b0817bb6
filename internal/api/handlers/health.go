// health.go — обработчики health endpoints.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (PostgreSQL обязателен, панель ключей — нет)
// /metrics — Prometheus метрики
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/goartstore/mcp-sync/internal/config"
)

const (
	serviceName       = "mcp-sync"
	readinessTimeout  = 3 * time.Second
	statusOK          = "ok"
	statusDegraded    = "degraded"
	statusFail        = "fail"
	msgNotInitialized = "не инициализирован"
)

// ReadinessChecker — проверка готовности PostgreSQL.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// PanelChecker — проверка доступности панели ключей.
type PanelChecker interface {
	CheckReady(ctx context.Context) error
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	pgChecker    ReadinessChecker
	panelChecker PanelChecker
	promHandler  http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// Любой из checker-ов может быть nil.
func NewHealthHandler(pgChecker ReadinessChecker, panelChecker PanelChecker) *HealthHandler {
	return &HealthHandler{
		pgChecker:    pgChecker,
		panelChecker: panelChecker,
		promHandler:  promhttp.Handler(),
	}
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		PostgreSQL healthCheckResult `json:"postgresql"`
		Panel      healthCheckResult `json:"panel"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. Проверки выполняются параллельно.
// Недоступная панель даёт degraded (200), недоступная БД — fail (503).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		if h.pgChecker == nil {
			resp.Checks.PostgreSQL = healthCheckResult{Status: statusFail, Message: msgNotInitialized}
			return nil
		}
		st, msg := h.pgChecker.CheckReady()
		resp.Checks.PostgreSQL = healthCheckResult{Status: st, Message: msg}
		return nil
	})
	g.Go(func() error {
		switch {
		case h.panelChecker == nil:
			resp.Checks.Panel = healthCheckResult{Status: statusDegraded, Message: msgNotInitialized}
		default:
			if err := h.panelChecker.CheckReady(ctx); err != nil {
				resp.Checks.Panel = healthCheckResult{Status: statusDegraded, Message: err.Error()}
			} else {
				resp.Checks.Panel = healthCheckResult{Status: statusOK, Message: "панель отвечает"}
			}
		}
		return nil
	})
	_ = g.Wait()

	resp.Status = overallStatus(resp.Checks.PostgreSQL.Status, resp.Checks.Panel.Status)

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// overallStatus: хотя бы один fail — fail, хотя бы один degraded — degraded.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == statusDegraded {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return statusDegraded
	}
	return statusOK
}
