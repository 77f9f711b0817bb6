// registry.go — фиксированный набор сервисов (grants) модуля.
// Каждой роли MCP соответствует один сервис moodlemcp_<role>.
// Сервисы создаются лениво и удаляются только при удалении модуля.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

// TxStore выполняет fn с репозиториями, привязанными к одной транзакции.
type TxStore interface {
	WithinTx(ctx context.Context, fn func(store *repository.Store) error) error
}

// Definitions возвращает определения сервисов модуля в порядке ролей.
// Базовый набор функций каждого сервиса пуст.
func Definitions() []model.ServiceDefinition {
	roles := rbac.Roles()
	out := make([]model.ServiceDefinition, 0, len(roles))
	for _, role := range roles {
		out = append(out, model.ServiceDefinition{
			Shortname: rbac.ServiceForRole(role),
			Name:      "Moodle MCP (" + role + ")",
		})
	}
	return out
}

// definitionShortnames — shortname всех сервисов модуля в порядке определений.
func definitionShortnames() []string {
	defs := Definitions()
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Shortname
	}
	return out
}

// definitionFor возвращает определение сервиса по shortname.
func definitionFor(shortname string) (model.ServiceDefinition, bool) {
	for _, d := range Definitions() {
		if d.Shortname == shortname {
			return d, true
		}
	}
	return model.ServiceDefinition{}, false
}

// serviceIndex — существующие в БД сервисы модуля.
type serviceIndex struct {
	byShort map[string]int64
	// ids — id сервисов в порядке определений
	ids []int64
	// shortByID — обратное соответствие id -> shortname
	shortByID map[int64]string
}

// loadServiceIndex читает сервисы модуля из БД.
func loadServiceIndex(ctx context.Context, repo repository.ServiceRepository) (*serviceIndex, error) {
	shortnames := definitionShortnames()
	list, err := repo.ListByShortnames(ctx, shortnames)
	if err != nil {
		return nil, err
	}

	ix := &serviceIndex{
		byShort:   make(map[string]int64, len(list)),
		shortByID: make(map[int64]string, len(list)),
	}
	for _, s := range list {
		ix.byShort[s.Shortname] = s.ID
		ix.shortByID[s.ID] = s.Shortname
	}
	for _, sn := range shortnames {
		if id, ok := ix.byShort[sn]; ok {
			ix.ids = append(ix.ids, id)
		}
	}
	return ix, nil
}

// id возвращает id сервиса по shortname.
func (ix *serviceIndex) id(shortname string) (int64, bool) {
	id, ok := ix.byShort[shortname]
	return id, ok
}

// shortname возвращает shortname по id.
func (ix *serviceIndex) shortname(id int64) string {
	return ix.shortByID[id]
}

// ensureServices создаёт отсутствующие сервисы модуля.
// Возвращает количество созданных.
func ensureServices(ctx context.Context, repo repository.ServiceRepository, logger *slog.Logger) (int, error) {
	existing, err := repo.ListByShortnames(ctx, definitionShortnames())
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(existing))
	for _, s := range existing {
		present[s.Shortname] = true
	}

	created := 0
	for _, def := range Definitions() {
		if present[def.Shortname] {
			continue
		}
		svc := &model.Service{
			Name:            def.Name,
			Shortname:       def.Shortname,
			Component:       repository.PluginName,
			Enabled:         true,
			RestrictedUsers: true,
		}
		if err := repo.Create(ctx, svc); err != nil {
			// Сервис создан параллельным вызовом — это не ошибка.
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return created, err
		}
		if err := repo.ReplaceFunctions(ctx, svc.ID, def.Functions); err != nil {
			return created, err
		}
		created++
		logger.Info("Сервис создан",
			slog.String("shortname", def.Shortname),
			slog.Int64("service_id", svc.ID),
		)
	}
	return created, nil
}

// RegistryService — операции с набором сервисов модуля.
type RegistryService struct {
	services repository.ServiceRepository
	tx       TxStore
	logger   *slog.Logger
}

// NewRegistryService создаёт сервис реестра.
func NewRegistryService(services repository.ServiceRepository, tx TxStore, logger *slog.Logger) *RegistryService {
	return &RegistryService{
		services: services,
		tx:       tx,
		logger:   logger.With(slog.String("component", "registry")),
	}
}

// EnsureServices создаёт отсутствующие сервисы. Повторный вызов возвращает 0.
func (s *RegistryService) EnsureServices(ctx context.Context) (int, error) {
	n, err := ensureServices(ctx, s.services, s.logger)
	if err != nil {
		return n, fmt.Errorf("создание сервисов модуля: %w", err)
	}
	return n, nil
}

// List возвращает существующие сервисы модуля с их функциями.
func (s *RegistryService) List(ctx context.Context) ([]model.Service, error) {
	list, err := s.services.ListByShortnames(ctx, definitionShortnames())
	if err != nil {
		return nil, err
	}
	order := definitionShortnames()
	slices.SortFunc(list, func(a, b model.Service) int {
		return slices.Index(order, a.Shortname) - slices.Index(order, b.Shortname)
	})
	for i := range list {
		fns, err := s.services.ListFunctions(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		list[i].Functions = fns
	}
	return list, nil
}

// ServiceIDs возвращает id существующих сервисов модуля в порядке определений.
func (s *RegistryService) ServiceIDs(ctx context.Context) ([]int64, error) {
	ix, err := loadServiceIndex(ctx, s.services)
	if err != nil {
		return nil, err
	}
	return ix.ids, nil
}

// ServiceID возвращает id сервиса модуля по shortname.
// Неизвестный shortname или отсутствующая запись — ErrMissingService.
func (s *RegistryService) ServiceID(ctx context.Context, shortname string) (int64, error) {
	if _, ok := definitionFor(shortname); !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingService, shortname)
	}
	svc, err := s.services.GetByShortname(ctx, shortname)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrMissingService, shortname)
		}
		return 0, err
	}
	return svc.ID, nil
}

// RestoreBaseline возвращает сервису базовый набор функций.
// false — если shortname неизвестен или сервис отсутствует в БД.
func (s *RegistryService) RestoreBaseline(ctx context.Context, shortname string) (bool, error) {
	def, ok := definitionFor(shortname)
	if !ok {
		return false, nil
	}
	svc, err := s.services.GetByShortname(ctx, shortname)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	err = s.tx.WithinTx(ctx, func(st *repository.Store) error {
		return st.Services.ReplaceFunctions(ctx, svc.ID, def.Functions)
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("Базовый набор функций восстановлен", slog.String("shortname", shortname))
	return true, nil
}

// SetFunctions заменяет набор разрешённых функций сервиса модуля.
// Неизвестные функции отклоняются с ErrValidation.
func (s *RegistryService) SetFunctions(ctx context.Context, shortname string, functions []string) error {
	id, err := s.ServiceID(ctx, shortname)
	if err != nil {
		return err
	}

	known, err := s.services.ListExternalFunctions(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(known))
	for _, f := range known {
		names[f.Name] = true
	}
	fns := make([]string, 0, len(functions))
	for _, fn := range functions {
		if !names[fn] {
			return fmt.Errorf("%w: неизвестная функция %q", ErrValidation, fn)
		}
		if !slices.Contains(fns, fn) {
			fns = append(fns, fn)
		}
	}

	err = s.tx.WithinTx(ctx, func(st *repository.Store) error {
		return st.Services.ReplaceFunctions(ctx, id, fns)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Функции сервиса обновлены",
		slog.String("shortname", shortname),
		slog.Int("count", len(fns)),
	)
	return nil
}

// ListFunctions возвращает все функции веб-сервисов хост-системы.
func (s *RegistryService) ListFunctions(ctx context.Context) ([]model.ExternalFunction, error) {
	return s.services.ListExternalFunctions(ctx)
}

// Purge удаляет все данные модуля: функции, назначения и токены сервисов,
// сами сервисы и настройки модуля. Сервисы определяются по shortname.
func (s *RegistryService) Purge(ctx context.Context) error {
	err := s.tx.WithinTx(ctx, func(st *repository.Store) error {
		ix, err := loadServiceIndex(ctx, st.Services)
		if err != nil {
			return err
		}
		if err := st.Services.DeleteFunctions(ctx, ix.ids); err != nil {
			return err
		}
		if err := st.Grants.DeleteByServices(ctx, ix.ids); err != nil {
			return err
		}
		if err := st.Tokens.DeleteByServices(ctx, ix.ids); err != nil {
			return err
		}
		if err := st.Services.Delete(ctx, ix.ids); err != nil {
			return err
		}
		return st.Config.DeleteAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("удаление данных модуля: %w", err)
	}
	s.logger.Warn("Данные модуля удалены")
	return nil
}
