// tasks.go — очередь ad-hoc задач и фоновый обработчик.
//
// Задачи хранятся в mcpsync_tasks и забираются через FOR UPDATE SKIP LOCKED,
// поэтому несколько экземпляров сервиса могут работать с одной очередью.
// Неуспешная задача повторяется с экспоненциальной задержкой до
// maxAttempts попыток. Задача с недействительными данными (неизвестный
// сервис, удалённый пользователь) завершается без повторов.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

var tasksProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mcp_sync_tasks_processed_total",
	Help: "Количество обработанных ad-hoc задач",
}, []string{"kind", "result"})

// Границы задержки повтора.
const (
	retryBaseDelay = 10 * time.Second
	retryMaxDelay  = 30 * time.Minute
)

// TaskService — постановка и выполнение ad-hoc задач.
type TaskService struct {
	repo        repository.TaskRepository
	sync        *SyncService
	engine      *Engine
	settings    *SettingsService
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
	now         func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewTaskService создаёт сервис задач.
func NewTaskService(
	repo repository.TaskRepository,
	syncSvc *SyncService,
	engine *Engine,
	settings *SettingsService,
	interval time.Duration,
	maxAttempts int,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		repo:        repo,
		sync:        syncSvc,
		engine:      engine,
		settings:    settings,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger.With(slog.String("component", "task_worker")),
		now:         time.Now,
	}
}

// EnqueueSyncUser ставит в очередь синхронизацию пользователя.
func (s *TaskService) EnqueueSyncUser(ctx context.Context, userID int64, filter string, removeOnly bool) (*model.Task, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: некорректный userid", ErrValidation)
	}
	if filter != "" && !rbac.IsKnownService(filter) {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, filter)
	}
	return s.enqueue(ctx, model.TaskSyncUser, model.TaskPayload{
		UserID:        userID,
		ServiceFilter: filter,
		RemoveOnly:    removeOnly,
	})
}

// EnqueueSyncAll ставит в очередь синхронизацию всех пользователей.
func (s *TaskService) EnqueueSyncAll(ctx context.Context, filter string) (*model.Task, error) {
	if filter != "" && !rbac.IsKnownService(filter) {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, filter)
	}
	return s.enqueue(ctx, model.TaskSyncAllUsers, model.TaskPayload{ServiceFilter: filter})
}

// EnqueueDeleteUserKeys ставит в очередь удаление ключей пользователя.
func (s *TaskService) EnqueueDeleteUserKeys(ctx context.Context, userID int64) (*model.Task, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: некорректный userid", ErrValidation)
	}
	return s.enqueue(ctx, model.TaskDeleteUserKeys, model.TaskPayload{UserID: userID})
}

func (s *TaskService) enqueue(ctx context.Context, kind model.TaskKind, payload model.TaskPayload) (*model.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация задачи: %w", err)
	}
	task := &model.Task{Kind: kind, Payload: data}
	if err := s.repo.Enqueue(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Debug("Задача поставлена в очередь",
		slog.String("task_id", task.ID),
		slog.String("kind", string(kind)),
	)
	return task, nil
}

// List возвращает задачи очереди.
func (s *TaskService) List(ctx context.Context, status string, limit int) ([]model.Task, error) {
	var st *string
	if status != "" {
		switch status {
		case model.TaskStatusPending, model.TaskStatusRunning, model.TaskStatusDone, model.TaskStatusFailed:
		default:
			return nil, fmt.Errorf("%w: неизвестный статус %q", ErrValidation, status)
		}
		st = &status
	}
	return s.repo.List(ctx, st, limit)
}

// Start запускает фоновый обработчик очереди.
func (s *TaskService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.logger.Info("Обработчик задач запущен", slog.String("interval", s.interval.String()))

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Обработчик задач остановлен")
				return
			case <-ticker.C:
				// Забираем задачи, пока очередь не опустеет.
				for {
					ok, err := s.RunOnce(ctx)
					if err != nil {
						s.logger.Error("Ошибка обработки очереди", slog.String("error", err.Error()))
						break
					}
					if !ok || ctx.Err() != nil {
						break
					}
				}
			}
		}
	}()
}

// Stop останавливает обработчик и ждёт завершения текущей задачи.
func (s *TaskService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// RunOnce забирает и выполняет одну задачу.
// false — очередь пуста.
func (s *TaskService) RunOnce(ctx context.Context) (bool, error) {
	task, err := s.repo.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	logger := s.logger.With(
		slog.String("task_id", task.ID),
		slog.String("kind", string(task.Kind)),
		slog.Int("attempt", task.Attempts),
	)

	runErr := s.execute(ctx, task)
	switch {
	case runErr == nil:
		tasksProcessedTotal.WithLabelValues(string(task.Kind), "done").Inc()
		logger.Debug("Задача выполнена")
		return true, s.repo.Complete(ctx, task.ID)

	case isSkippable(runErr):
		tasksProcessedTotal.WithLabelValues(string(task.Kind), "skipped").Inc()
		logger.Info("Задача пропущена", slog.String("reason", runErr.Error()))
		return true, s.repo.Complete(ctx, task.ID)

	case task.Attempts >= s.maxAttempts:
		tasksProcessedTotal.WithLabelValues(string(task.Kind), "failed").Inc()
		logger.Error("Задача не выполнена, попытки исчерпаны", slog.String("error", runErr.Error()))
		return true, s.repo.Fail(ctx, task.ID, runErr.Error())

	default:
		tasksProcessedTotal.WithLabelValues(string(task.Kind), "retry").Inc()
		delay := retryDelay(task.Attempts)
		logger.Warn("Задача будет повторена",
			slog.String("error", runErr.Error()),
			slog.Duration("delay", delay),
		)
		return true, s.repo.Retry(ctx, task.ID, s.now().Add(delay), runErr.Error())
	}
}

// execute выполняет задачу по её типу.
func (s *TaskService) execute(ctx context.Context, task *model.Task) error {
	var p model.TaskPayload
	if len(task.Payload) > 0 {
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("%w: некорректные данные задачи: %w", ErrValidation, err)
		}
	}

	switch task.Kind {
	case model.TaskSyncUser:
		if p.UserID <= 0 {
			return fmt.Errorf("%w: не указан userid", ErrValidation)
		}
		_, err := s.sync.SyncUser(ctx, p.UserID, p.ServiceFilter, p.RemoveOnly)
		return err

	case model.TaskSyncAllUsers:
		_, err := s.sync.SyncAll(ctx, p.ServiceFilter)
		return err

	case model.TaskDeleteUserKeys:
		if p.UserID <= 0 {
			return fmt.Errorf("%w: не указан userid", ErrValidation)
		}
		snap, err := s.settings.Snapshot(ctx)
		if err != nil {
			return err
		}
		return s.engine.DeleteUserKeys(ctx, snap, p.UserID)

	default:
		return fmt.Errorf("%w: неизвестный тип задачи %q", ErrValidation, task.Kind)
	}
}

// isSkippable — ошибки, при которых повтор задачи бессмысленен.
func isSkippable(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMissingService) ||
		errors.Is(err, ErrInvalidLicense)
}

// retryDelay — экспоненциальная задержка: 10s, 20s, 40s … не более 30m.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := retryBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return d
}
