// events.go — реакция на события хост-системы.
// События назначения ролей ставят в очередь синхронизацию пользователя
// только по сервису затронутой роли и только если для роли включена
// автосинхронизация.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
)

// Типы событий хост-системы.
const (
	EventRoleAssigned   = "role_assigned"
	EventRoleUnassigned = "role_unassigned"
	EventUserDeleted    = "user_deleted"
	EventUserUpdated    = "user_updated"
)

// Event — событие хост-системы.
type Event struct {
	Name   string `json:"event"`
	UserID int64  `json:"userid"`
	// RoleShortname — shortname роли хост-системы (для событий ролей)
	RoleShortname string `json:"role,omitempty"`
}

// EventService — обработчик событий.
type EventService struct {
	tasks    *TaskService
	settings *SettingsService
	logger   *slog.Logger
}

// NewEventService создаёт обработчик событий.
func NewEventService(tasks *TaskService, settings *SettingsService, logger *slog.Logger) *EventService {
	return &EventService{
		tasks:    tasks,
		settings: settings,
		logger:   logger.With(slog.String("component", "events")),
	}
}

// HandleEvent ставит в очередь задачу по событию.
// nil-задача без ошибки — событие не требует действий.
func (s *EventService) HandleEvent(ctx context.Context, ev Event) (*model.Task, error) {
	if ev.UserID <= 0 {
		return nil, fmt.Errorf("%w: не указан userid", ErrValidation)
	}

	switch ev.Name {
	case EventRoleAssigned, EventRoleUnassigned:
		role, ok := rbac.RoleForHostRole(ev.RoleShortname)
		if !ok {
			s.logger.Debug("Роль не отслеживается", slog.String("role", ev.RoleShortname))
			return nil, nil
		}
		snap, err := s.settings.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		shortname := rbac.ServiceForRole(role)
		if !snap.AutoSyncForService(shortname) {
			return nil, nil
		}
		return s.tasks.EnqueueSyncUser(ctx, ev.UserID, shortname, ev.Name == EventRoleUnassigned)

	case EventUserDeleted:
		return s.tasks.EnqueueDeleteUserKeys(ctx, ev.UserID)

	case EventUserUpdated:
		snap, err := s.settings.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		if !snap.AutoSync {
			return nil, nil
		}
		return s.tasks.EnqueueSyncUser(ctx, ev.UserID, "", false)

	default:
		return nil, fmt.Errorf("%w: неизвестное событие %q", ErrValidation, ev.Name)
	}
}
