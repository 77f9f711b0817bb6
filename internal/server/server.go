// Пакет server — HTTP-сервер MCP Sync с graceful shutdown.
// Без TLS: сервис работает внутри кластера рядом с хост-системой.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/mcp-sync/internal/api/errors"
	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
	"github.com/bigkaa/goartstore/mcp-sync/internal/api/middleware"
	"github.com/bigkaa/goartstore/mcp-sync/internal/config"
)

// Server — HTTP-сервер MCP Sync.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт сервер с маршрутами и middleware.
// handler — реализация generated.ServerInterface (APIHandler).
func New(cfg *config.Config, logger *slog.Logger, handler generated.ServerInterface) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      NewRouter(cfg.AdminToken, logger, handler),
			ReadTimeout:  30 * time.Second,
			// Полная синхронизация выполняется синхронно в POST /api/v1/sync.
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
		cfg:    cfg,
	}
}

// NewRouter собирает chi-роутер.
// Health и metrics доступны без токена, остальное — только с MS_ADMIN_TOKEN.
func NewRouter(adminToken string, logger *slog.Logger, handler generated.ServerInterface) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	// Health и metrics опрашиваются Kubernetes напрямую.
	router.Use(authWithExclusions(middleware.BearerAuth(adminToken, logger), "/health/", "/metrics"))

	router.Get("/api/v1/openapi.json", openAPISpec(logger))

	// Все маршруты API через oapi-codegen chi-server.
	// Ошибки разбора параметров пути и query отдаются в формате API.
	generated.HandlerWithOptions(handler, generated.ChiServerOptions{
		BaseRouter: router,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			apierrors.ValidationError(w, err.Error())
		},
	})

	return router
}

// authWithExclusions пропускает без авторизации пути с указанными префиксами.
func authWithExclusions(auth func(http.Handler) http.Handler, excludePrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := auth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// openAPISpec отдаёт встроенное OpenAPI-описание API в JSON.
func openAPISpec(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		swagger, err := generated.GetSwagger()
		if err != nil {
			logger.Error("Не удалось загрузить OpenAPI-описание", slog.String("error", err.Error()))
			apierrors.InternalError(w, "OpenAPI-описание недоступно")
			return
		}
		data, err := swagger.MarshalJSON()
		if err != nil {
			apierrors.InternalError(w, "OpenAPI-описание недоступно")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

// Run запускает сервер и блокируется до отмены ctx или ошибки сервера.
// При отмене ctx выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
