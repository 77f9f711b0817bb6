package repository

import (
	"context"
	"fmt"
	"time"
)

// GrantRepository — назначения пользователей на сервисы ({external_services_users}).
type GrantRepository interface {
	// Authorize назначает пользователя на сервис, если назначения ещё нет.
	// Возвращает true, если запись создана.
	Authorize(ctx context.Context, userID, serviceID int64) (bool, error)
	// Unassign снимает назначение. Возвращает true, если запись удалена.
	Unassign(ctx context.Context, userID, serviceID int64) (bool, error)
	// UnassignAll снимает назначения пользователя на все указанные сервисы.
	UnassignAll(ctx context.Context, userID int64, serviceIDs []int64) error
	// ListAssignedServiceIDs возвращает id сервисов из serviceIDs, на которые назначен пользователь.
	ListAssignedServiceIDs(ctx context.Context, userID int64, serviceIDs []int64) ([]int64, error)
	// ListAssignedUserIDs возвращает id пользователей, назначенных на сервис.
	ListAssignedUserIDs(ctx context.Context, serviceID int64) ([]int64, error)
	// DeleteByServices удаляет все назначения на указанные сервисы.
	DeleteByServices(ctx context.Context, serviceIDs []int64) error
}

// grantRepo — реализация GrantRepository.
type grantRepo struct {
	db DBTX
	hostSQL
}

// NewGrantRepository создаёт репозиторий назначений.
func NewGrantRepository(db DBTX, prefix string) GrantRepository {
	return &grantRepo{db: db, hostSQL: hostSQL{prefix: prefix}}
}

func (r *grantRepo) Authorize(ctx context.Context, userID, serviceID int64) (bool, error) {
	query := r.q(`
		INSERT INTO {external_services_users} (externalserviceid, userid, timecreated)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM {external_services_users}
			WHERE externalserviceid = $1 AND userid = $2
		)`)

	tag, err := r.db.Exec(ctx, query, serviceID, userID, time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка назначения пользователя %d на сервис %d: %w", userID, serviceID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *grantRepo) Unassign(ctx context.Context, userID, serviceID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_services_users} WHERE externalserviceid = $1 AND userid = $2`),
		serviceID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка снятия назначения пользователя %d с сервиса %d: %w", userID, serviceID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *grantRepo) UnassignAll(ctx context.Context, userID int64, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_services_users} WHERE userid = $1 AND externalserviceid = ANY($2)`),
		userID, serviceIDs,
	)
	if err != nil {
		return fmt.Errorf("ошибка снятия назначений пользователя %d: %w", userID, err)
	}
	return nil
}

func (r *grantRepo) ListAssignedServiceIDs(ctx context.Context, userID int64, serviceIDs []int64) ([]int64, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, r.q(`
		SELECT DISTINCT externalserviceid FROM {external_services_users}
		WHERE userid = $1 AND externalserviceid = ANY($2)
		ORDER BY externalserviceid`),
		userID, serviceIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения назначений пользователя %d: %w", userID, err)
	}
	return collectInt64(rows)
}

func (r *grantRepo) ListAssignedUserIDs(ctx context.Context, serviceID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, r.q(`
		SELECT DISTINCT userid FROM {external_services_users}
		WHERE externalserviceid = $1
		ORDER BY userid`),
		serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей сервиса %d: %w", serviceID, err)
	}
	return collectInt64(rows)
}

func (r *grantRepo) DeleteByServices(ctx context.Context, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_services_users} WHERE externalserviceid = ANY($1)`),
		serviceIDs,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления назначений сервисов: %w", err)
	}
	return nil
}
