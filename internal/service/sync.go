// sync.go — пакетная синхронизация пользователей и плановый запуск.
//
// Пакетный запуск читает настройки один раз, один раз запрашивает список
// ключей панели (KeyMap) и последовательно согласует пользователей.
// Ошибка одного пользователя не прерывает пакет: сохраняется только первая.
//
// Prometheus-метрики:
//   - mcp_sync_sync_duration_seconds — длительность пакетной синхронизации
//   - mcp_sync_sync_runs_total — количество запусков по результату
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

var (
	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mcp_sync_sync_duration_seconds",
		Help:    "Длительность пакетной синхронизации пользователей",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s … ~205s
	})

	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_sync_sync_runs_total",
		Help: "Количество запусков пакетной синхронизации",
	}, []string{"scope", "result"})
)

// SyncService — пакетная и плановая синхронизация.
type SyncService struct {
	engine   *Engine
	settings *SettingsService
	state    repository.SyncStateRepository
	schedule string
	logger   *slog.Logger

	// mu — пакетные запуски выполняются по одному
	mu   sync.Mutex
	cron *cron.Cron
}

// NewSyncService создаёт сервис синхронизации.
// schedule — cron-выражение планового запуска (5 полей).
func NewSyncService(
	engine *Engine,
	settings *SettingsService,
	state repository.SyncStateRepository,
	schedule string,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		engine:   engine,
		settings: settings,
		state:    state,
		schedule: schedule,
		logger:   logger.With(slog.String("component", "sync")),
	}
}

// SyncAll синхронизирует всех пользователей.
// filter — shortname сервиса: согласуется только он, глобальный отзыв
// ключей удалённых пользователей не выполняется.
func (s *SyncService) SyncAll(ctx context.Context, filter string) (*model.SyncResult, error) {
	if filter != "" && !rbac.IsKnownService(filter) {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, filter)
	}
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.License.Valid() {
		return nil, ErrInvalidLicense
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scope := "full"
	if filter != "" {
		scope = "filtered"
	}
	runID := uuid.New().String()
	logger := s.logger.With(slog.String("run_id", runID), slog.String("filter", filter))
	start := time.Now()
	res := &model.SyncResult{StartedAt: start.UTC()}

	err = s.syncAll(ctx, snap, filter, res, logger)
	res.CompletedAt = time.Now().UTC()
	syncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		syncRunsTotal.WithLabelValues(scope, "error").Inc()
		return res, err
	}
	syncRunsTotal.WithLabelValues(scope, "ok").Inc()

	if filter == "" {
		if err := s.state.Save(ctx, res); err != nil {
			logger.Warn("Не удалось сохранить состояние синхронизации", slog.String("error", err.Error()))
		}
	}

	logger.Info("Синхронизация пользователей завершена",
		slog.Int("synced", res.Synced),
		slog.Int("added", res.Added),
		slog.Int("removed", res.Removed),
		slog.Int("revoked", res.Revoked),
		slog.String("first_error", res.FirstError),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *SyncService) syncAll(
	ctx context.Context,
	snap *Settings,
	filter string,
	res *model.SyncResult,
	logger *slog.Logger,
) error {
	e := s.engine
	if _, err := ensureServices(ctx, e.store.Services, e.logger); err != nil {
		return err
	}
	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return err
	}
	var filterID int64
	if filter != "" {
		id, ok := ix.id(filter)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingService, filter)
		}
		filterID = id
	}

	km := loadKeyMap(ctx, e.panel, snap.License, logger)

	if filter == "" {
		if err := s.revokeOrphanKeys(ctx, snap, km, res, logger); err != nil {
			return err
		}
	}

	// Администраторы сайта не выражаются назначением роли,
	// поэтому для сервиса admin перебирается список администраторов.
	if filter == rbac.ServiceForRole(rbac.RoleAdmin) {
		ids, err := e.store.Site.SiteAdminIDs(ctx)
		if err != nil {
			return err
		}
		users, err := e.store.Users.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range users {
			if err := ctx.Err(); err != nil {
				return err
			}
			if users[i].Deleted {
				continue
			}
			s.syncOne(ctx, snap, &users[i], km, filter, res, logger)
		}
		return nil
	}

	guestID, err := e.store.Site.GuestID(ctx)
	if err != nil {
		return err
	}
	users, err := e.store.Users.ListActive(ctx, guestID)
	if err != nil {
		return err
	}

	var assigned []int64
	if filter != "" {
		assigned, err = e.store.Grants.ListAssignedUserIDs(ctx, filterID)
		if err != nil {
			return err
		}
	}

	for i := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		u := &users[i]
		if u.Suspended {
			continue
		}
		if filter != "" && !slices.Contains(assigned, u.ID) {
			eligible, err := e.classifier.IsEligible(ctx, u.ID, filter)
			if err != nil {
				logger.Warn("Ошибка проверки ролей пользователя",
					slog.Int64("user_id", u.ID),
					slog.String("error", err.Error()),
				)
				setFirstError(res, err)
				continue
			}
			if !eligible {
				continue
			}
		}
		s.syncOne(ctx, snap, u, km, filter, res, logger)
	}
	return nil
}

// syncOne согласует одного пользователя и добавляет итог в res.
func (s *SyncService) syncOne(
	ctx context.Context,
	snap *Settings,
	user *model.User,
	km *KeyMap,
	filter string,
	res *model.SyncResult,
	logger *slog.Logger,
) {
	r, err := s.engine.Reconcile(ctx, snap, user, km, filter, false)
	res.Synced++
	if r != nil {
		res.Added += r.Added
		res.Removed += r.Removed
	}
	if err != nil {
		logger.Warn("Ошибка синхронизации пользователя",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		setFirstError(res, err)
	}
}

// revokeOrphanKeys отзывает ключи, токены которых больше не принадлежат
// действующему пользователю, и удаляет такие токены.
func (s *SyncService) revokeOrphanKeys(
	ctx context.Context,
	snap *Settings,
	km *KeyMap,
	res *model.SyncResult,
	logger *slog.Logger,
) error {
	e := s.engine
	for _, token := range km.Tokens() {
		user, err := e.userByToken(ctx, token)
		if err != nil {
			return err
		}
		if user != nil {
			continue
		}

		k, _ := km.Get(token)
		if k.MCPKey != "" && k.Status != panel.StatusRevoked {
			if err := e.panel.RevokeKey(ctx, snap.License, k.MCPKey); err != nil {
				logger.Warn("Не удалось отозвать ключ удалённого пользователя",
					slog.String("error", err.Error()),
				)
				setFirstError(res, err)
			} else {
				res.Revoked++
			}
		}
		if err := e.store.Tokens.DeleteByValue(ctx, token); err != nil {
			return err
		}
		km.Remove(token)
	}
	return nil
}

// SyncUser согласует одного пользователя.
// Заблокированный пользователь пропускается: (nil, nil).
func (s *SyncService) SyncUser(ctx context.Context, userID int64, filter string, removeOnly bool) (*ReconcileResult, error) {
	if filter != "" && !rbac.IsKnownService(filter) {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, filter)
	}
	user, err := s.engine.store.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь %d", ErrNotFound, userID)
		}
		return nil, err
	}
	if user.Deleted {
		return nil, fmt.Errorf("%w: пользователь %d удалён", ErrNotFound, userID)
	}
	if user.Suspended {
		s.logger.Debug("Пользователь заблокирован, синхронизация пропущена", slog.Int64("user_id", userID))
		return nil, nil
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.License.Valid() {
		return nil, ErrInvalidLicense
	}
	if _, err := ensureServices(ctx, s.engine.store.Services, s.engine.logger); err != nil {
		return nil, err
	}
	return s.engine.Reconcile(ctx, snap, user, nil, filter, removeOnly)
}

// State возвращает состояние последней полной синхронизации.
func (s *SyncService) State(ctx context.Context) (*model.SyncState, error) {
	st, err := s.state.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return st, err
}

// RunScheduled — плановый запуск. Выполняется только при включённой
// настройке auto_sync; nil-результат без ошибки означает пропуск.
func (s *SyncService) RunScheduled(ctx context.Context) (*model.SyncResult, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.AutoSync {
		s.logger.Debug("Автосинхронизация выключена, плановый запуск пропущен")
		return nil, nil
	}
	res, err := s.SyncAll(ctx, "")
	if err != nil {
		return res, err
	}
	s.logger.Info("Плановая синхронизация выполнена",
		slog.Int("synced", res.Synced),
		slog.Int("revoked", res.Revoked),
	)
	return res, nil
}

// Start запускает планировщик. ctx передаётся плановым запускам.
func (s *SyncService) Start(ctx context.Context) error {
	l := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.SkipIfStillRunning(l)),
	)
	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunScheduled(ctx); err != nil {
			s.logger.Error("Ошибка плановой синхронизации", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("некорректное расписание %q: %w", s.schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("Плановая синхронизация запущена", slog.String("schedule", s.schedule))
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущего запуска.
func (s *SyncService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Плановая синхронизация остановлена")
}

// setFirstError запоминает первую ошибку запуска.
func setFirstError(res *model.SyncResult, err error) {
	if res.FirstError == "" {
		res.FirstError = err.Error()
	}
}

// cronLogger — адаптер slog для cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
