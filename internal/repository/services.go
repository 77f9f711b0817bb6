package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

// ServiceRepository — интерфейс для таблиц {external_services}
// и {external_services_functions}.
type ServiceRepository interface {
	// GetByShortname возвращает сервис по shortname. Если не найден — ErrNotFound.
	GetByShortname(ctx context.Context, shortname string) (*model.Service, error)
	// ListByShortnames возвращает существующие сервисы из списка shortname.
	ListByShortnames(ctx context.Context, shortnames []string) ([]model.Service, error)
	// Create создаёт сервис и заполняет svc.ID.
	Create(ctx context.Context, svc *model.Service) error
	// Delete удаляет сервисы по id.
	Delete(ctx context.Context, ids []int64) error
	// ListFunctions возвращает разрешённые функции сервиса (по имени).
	ListFunctions(ctx context.Context, serviceID int64) ([]string, error)
	// ReplaceFunctions заменяет список разрешённых функций сервиса.
	ReplaceFunctions(ctx context.Context, serviceID int64, functions []string) error
	// DeleteFunctions удаляет функции всех указанных сервисов.
	DeleteFunctions(ctx context.Context, serviceIDs []int64) error
	// ListExternalFunctions возвращает все функции веб-сервисов хост-системы.
	ListExternalFunctions(ctx context.Context) ([]model.ExternalFunction, error)
}

// serviceRepo — реализация ServiceRepository.
type serviceRepo struct {
	db DBTX
	hostSQL
}

// NewServiceRepository создаёт репозиторий сервисов.
func NewServiceRepository(db DBTX, prefix string) ServiceRepository {
	return &serviceRepo{db: db, hostSQL: hostSQL{prefix: prefix}}
}

const serviceColumns = `id, name, shortname, component, enabled, restrictedusers`

func scanService(row pgx.Row) (*model.Service, error) {
	s := &model.Service{}
	var enabled, restricted int16
	var shortname, component *string
	if err := row.Scan(&s.ID, &s.Name, &shortname, &component, &enabled, &restricted); err != nil {
		return nil, err
	}
	if shortname != nil {
		s.Shortname = *shortname
	}
	if component != nil {
		s.Component = *component
	}
	s.Enabled = enabled == 1
	s.RestrictedUsers = restricted == 1
	return s, nil
}

func (r *serviceRepo) GetByShortname(ctx context.Context, shortname string) (*model.Service, error) {
	query := r.q(`SELECT ` + serviceColumns + ` FROM {external_services} WHERE shortname = $1`)

	s, err := scanService(r.db.QueryRow(ctx, query, shortname))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения сервиса %s: %w", shortname, err)
	}
	return s, nil
}

func (r *serviceRepo) ListByShortnames(ctx context.Context, shortnames []string) ([]model.Service, error) {
	if len(shortnames) == 0 {
		return nil, nil
	}
	query := r.q(`SELECT ` + serviceColumns + ` FROM {external_services}
		WHERE shortname = ANY($1)
		ORDER BY id`)

	rows, err := r.db.Query(ctx, query, shortnames)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка сервисов: %w", err)
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования сервиса: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *serviceRepo) Create(ctx context.Context, svc *model.Service) error {
	query := r.q(`
		INSERT INTO {external_services}
			(name, enabled, restrictedusers, component, timecreated, timemodified,
			 shortname, downloadfiles, uploadfiles)
		VALUES ($1, $2, $3, $4, $5, $5, $6, 0, 0)
		RETURNING id`)

	now := time.Now().Unix()
	err := r.db.QueryRow(ctx, query,
		svc.Name, boolInt(svc.Enabled), boolInt(svc.RestrictedUsers),
		svc.Component, now, svc.Shortname,
	).Scan(&svc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания сервиса %s: %w", svc.Shortname, err)
	}
	return nil
}

func (r *serviceRepo) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, r.q(`DELETE FROM {external_services} WHERE id = ANY($1)`), ids)
	if err != nil {
		return fmt.Errorf("ошибка удаления сервисов: %w", err)
	}
	return nil
}

func (r *serviceRepo) ListFunctions(ctx context.Context, serviceID int64) ([]string, error) {
	query := r.q(`
		SELECT functionname FROM {external_services_functions}
		WHERE externalserviceid = $1
		ORDER BY functionname`)

	rows, err := r.db.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения функций сервиса %d: %w", serviceID, err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ReplaceFunctions удаляет все функции сервиса и вставляет новые.
// Атомарность обеспечивает вызывающий код (транзакция).
func (r *serviceRepo) ReplaceFunctions(ctx context.Context, serviceID int64, functions []string) error {
	if _, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_services_functions} WHERE externalserviceid = $1`),
		serviceID,
	); err != nil {
		return fmt.Errorf("ошибка очистки функций сервиса %d: %w", serviceID, err)
	}

	if len(functions) == 0 {
		return nil
	}

	query := r.q(`
		INSERT INTO {external_services_functions} (externalserviceid, functionname)
		SELECT $1, fn FROM unnest($2::text[]) AS fn`)
	if _, err := r.db.Exec(ctx, query, serviceID, functions); err != nil {
		return fmt.Errorf("ошибка сохранения функций сервиса %d: %w", serviceID, err)
	}
	return nil
}

func (r *serviceRepo) DeleteFunctions(ctx context.Context, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_services_functions} WHERE externalserviceid = ANY($1)`),
		serviceIDs,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления функций сервисов: %w", err)
	}
	return nil
}

func (r *serviceRepo) ListExternalFunctions(ctx context.Context) ([]model.ExternalFunction, error) {
	rows, err := r.db.Query(ctx, r.q(`
		SELECT name, COALESCE(component, '') FROM {external_functions}
		ORDER BY name`))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения функций веб-сервисов: %w", err)
	}
	defer rows.Close()

	var out []model.ExternalFunction
	for rows.Next() {
		var f model.ExternalFunction
		if err := rows.Scan(&f.Name, &f.Component); err != nil {
			return nil, fmt.Errorf("ошибка сканирования функции: %w", err)
		}
		if f.Component == "" {
			f.Component = "core"
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// boolInt — флаги хост-системы хранятся как SMALLINT 0/1.
func boolInt(b bool) int16 {
	if b {
		return 1
	}
	return 0
}
