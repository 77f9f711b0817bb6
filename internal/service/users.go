package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

// UserService — назначение пользователей на сервисы администратором.
type UserService struct {
	engine   *Engine
	registry *RegistryService
	settings *SettingsService
	logger   *slog.Logger
}

// NewUserService создаёт сервис назначений.
func NewUserService(engine *Engine, registry *RegistryService, settings *SettingsService, logger *slog.Logger) *UserService {
	return &UserService{
		engine:   engine,
		registry: registry,
		settings: settings,
		logger:   logger.With(slog.String("component", "users")),
	}
}

// ListAssigned возвращает пользователей, назначенных на сервис.
func (s *UserService) ListAssigned(ctx context.Context, shortname, search string) ([]model.User, error) {
	id, err := s.registry.ServiceID(ctx, shortname)
	if err != nil {
		return nil, err
	}
	return s.engine.store.Users.ListAssigned(ctx, id, search)
}

// SearchCandidates ищет пользователей, которых можно назначить на сервис:
// подтверждённых, не заблокированных, не гостя, ещё не назначенных
// и подходящих по ролям.
func (s *UserService) SearchCandidates(ctx context.Context, shortname, search string) ([]model.User, error) {
	id, err := s.registry.ServiceID(ctx, shortname)
	if err != nil {
		return nil, err
	}
	guestID, err := s.engine.store.Site.GuestID(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.engine.store.Users.SearchCandidates(ctx, id, guestID, search)
	if err != nil {
		return nil, err
	}

	out := users[:0]
	for _, u := range users {
		ok, err := s.engine.classifier.IsEligible(ctx, u.ID, shortname)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Assign назначает пользователя на сервис.
func (s *UserService) Assign(ctx context.Context, userID int64, shortname string) (*AssignResult, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.AssignUser(ctx, snap, userID, shortname)
}

// Unassign снимает назначение и пересчитывает ключ.
func (s *UserService) Unassign(ctx context.Context, userID int64, shortname string) error {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}
	return s.engine.UnassignUser(ctx, snap, userID, shortname)
}

// RecalculateKey пересчитывает ключ пользователя без изменения назначений.
func (s *UserService) RecalculateKey(ctx context.Context, userID int64) (*ReconcileResult, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.License.Valid() {
		return nil, ErrInvalidLicense
	}
	key, err := s.engine.RecalculateKey(ctx, snap, userID)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{Key: key}, nil
}
