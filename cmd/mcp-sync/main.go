// Точка входа MCP Sync — сервиса синхронизации ролей хост-системы
// с сервисами веб-API и ключами панели MCP.
// Загружает конфигурацию, подключается к PostgreSQL хост-системы,
// применяет миграции собственных таблиц, создаёт сервисы модуля,
// запускает плановую синхронизацию, обработчик очереди задач,
// topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/goartstore/mcp-sync/internal/api/handlers"
	"github.com/bigkaa/goartstore/mcp-sync/internal/config"
	"github.com/bigkaa/goartstore/mcp-sync/internal/database"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/mailer"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
	"github.com/bigkaa/goartstore/mcp-sync/internal/server"
	"github.com/bigkaa/goartstore/mcp-sync/internal/service"
)

func main() {
	// 1. Конфигурация и логирование
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	logger.Info("MCP Sync запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("site_url", cfg.SiteURL),
		slog.String("panel_url", cfg.PanelURL),
	)
	if !cfg.MailEnabled() {
		logger.Warn("MS_SMTP_HOST не задан, письма с ключами не отправляются")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Миграции собственных таблиц
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. PostgreSQL хост-системы
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 4. Репозитории
	prefix := cfg.DBTablePrefix
	store := repository.NewStore(pool, prefix)
	txRunner := repository.NewStoreTxRunner(pool, prefix)
	classifier := rbac.NewClassifier(repository.NewRoleQuery(pool, prefix))

	// 5. Внешние клиенты: панель ключей и SMTP
	panelClient := panel.New(cfg.PanelURL, cfg.SiteURL, cfg.PanelTimeout, cfg.LicenseTimeout, nil, logger)
	mail := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	// 6. Сервисы
	settingsSvc := service.NewSettingsService(store.Config, logger)
	licenseSvc := service.NewLicenseService(settingsSvc, panelClient, logger)
	registrySvc := service.NewRegistryService(store.Services, txRunner, logger)
	engine := service.NewEngine(store, txRunner, classifier, panelClient, mail, logger)
	syncSvc := service.NewSyncService(engine, settingsSvc,
		repository.NewSyncStateRepository(pool), cfg.SyncSchedule, logger)
	keySvc := service.NewKeyService(engine, settingsSvc, cfg.KeyCacheSize, cfg.KeyCacheTTL, logger)
	userSvc := service.NewUserService(engine, registrySvc, settingsSvc, logger)
	taskSvc := service.NewTaskService(repository.NewTaskRepository(pool), syncSvc, engine, settingsSvc,
		cfg.TaskPollInterval, cfg.TaskMaxAttempts, logger)
	eventSvc := service.NewEventService(taskSvc, settingsSvc, logger)

	// 7. Установка: настройки по умолчанию, сервисы модуля, проверка лицензии
	if err := settingsSvc.EnsureDefaults(ctx); err != nil {
		logger.Error("Ошибка записи настроек по умолчанию", slog.String("error", err.Error()))
		os.Exit(1)
	}
	created, err := registrySvc.EnsureServices(ctx)
	if err != nil {
		logger.Error("Ошибка создания сервисов модуля", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Сервисы модуля проверены", slog.Int("created", created))

	if st, err := licenseSvc.Refresh(ctx); err != nil {
		logger.Warn("Ошибка проверки лицензии при старте", slog.String("error", err.Error()))
	} else {
		logger.Info("Состояние лицензии", slog.String("status", st.Status))
	}

	// 8. Фоновые задачи: плановая синхронизация и очередь
	if err := syncSvc.Start(ctx); err != nil {
		logger.Error("Ошибка запуска планировщика", slog.String("error", err.Error()))
		os.Exit(1)
	}
	taskSvc.Start(ctx)

	// 9. topologymetrics — мониторинг PostgreSQL и панели ключей
	dephealthSvc, err := service.NewDephealthService(
		"mcp-sync",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.PanelURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		dephealthSvc = nil
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		dephealthSvc = nil
	}

	// 10. HTTP API
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), panelClient)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		registrySvc,
		userSvc,
		keySvc,
		licenseSvc,
		settingsSvc,
		syncSvc,
		taskSvc,
		eventSvc,
		logger,
	)
	srv := server.New(cfg, logger, apiHandler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Получен сигнал завершения, останавливаем фоновые задачи...")
		syncSvc.Stop()
		taskSvc.Stop()
		if dephealthSvc != nil {
			dephealthSvc.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("MCP Sync остановлен")
}
