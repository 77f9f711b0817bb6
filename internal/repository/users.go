package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

// maxSearchResults — предел выдачи поиска кандидатов.
const maxSearchResults = 100

// UserRepository — чтение пользователей хост-системы ({user}).
type UserRepository interface {
	// GetByID возвращает пользователя по id. Если не найден — ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// ListByIDs возвращает существующих пользователей из списка id.
	ListByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	// ListActive возвращает неудалённых пользователей, кроме excludeID (гостя).
	ListActive(ctx context.Context, excludeID int64) ([]model.User, error)
	// SearchCandidates ищет подтверждённых незаблокированных пользователей,
	// ещё не назначенных на сервис. Каждое слово search должно совпасть
	// с именем, фамилией, email или логином.
	SearchCandidates(ctx context.Context, serviceID, excludeID int64, search string) ([]model.User, error)
	// ListAssigned возвращает пользователей, назначенных на сервис.
	ListAssigned(ctx context.Context, serviceID int64, search string) ([]model.User, error)
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
	hostSQL
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX, prefix string) UserRepository {
	return &userRepo{db: db, hostSQL: hostSQL{prefix: prefix}}
}

const userColumns = `u.id, u.username, u.firstname, u.lastname, u.email, u.deleted, u.suspended, u.confirmed`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var deleted, suspended, confirmed int16
	if err := row.Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email,
		&deleted, &suspended, &confirmed,
	); err != nil {
		return nil, err
	}
	u.Deleted = deleted == 1
	u.Suspended = suspended == 1
	u.Confirmed = confirmed == 1
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := r.q(`SELECT ` + userColumns + ` FROM {user} u WHERE u.id = $1`)

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		r.q(`SELECT `+userColumns+` FROM {user} u WHERE u.id = ANY($1) ORDER BY u.id`),
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	return collectUsers(rows)
}

func (r *userRepo) ListActive(ctx context.Context, excludeID int64) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		r.q(`SELECT `+userColumns+` FROM {user} u WHERE u.deleted = 0 AND u.id <> $1 ORDER BY u.id`),
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	return collectUsers(rows)
}

func (r *userRepo) SearchCandidates(ctx context.Context, serviceID, excludeID int64, search string) ([]model.User, error) {
	where := []string{
		"u.deleted = 0",
		"u.confirmed = 1",
		"u.suspended = 0",
		"u.id <> $1",
		"NOT EXISTS (SELECT 1 FROM {external_services_users} esu WHERE esu.userid = u.id AND esu.externalserviceid = $2)",
	}
	args := []any{excludeID, serviceID}
	where, args = appendSearch(where, args, search)

	query := r.q(`SELECT ` + userColumns + ` FROM {user} u WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY u.lastname, u.firstname, u.id LIMIT ` + strconv.Itoa(maxSearchResults))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска пользователей: %w", err)
	}
	return collectUsers(rows)
}

func (r *userRepo) ListAssigned(ctx context.Context, serviceID int64, search string) ([]model.User, error) {
	where := []string{"u.deleted = 0", "esu.externalserviceid = $1"}
	args := []any{serviceID}
	where, args = appendSearch(where, args, search)

	query := r.q(`SELECT ` + userColumns + ` FROM {user} u
		JOIN {external_services_users} esu ON esu.userid = u.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY u.lastname, u.firstname, u.id`)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения назначенных пользователей сервиса %d: %w", serviceID, err)
	}
	return collectUsers(rows)
}

// appendSearch добавляет условие на каждое слово поисковой строки.
func appendSearch(where []string, args []any, search string) ([]string, []any) {
	for _, word := range strings.Fields(search) {
		args = append(args, "%"+escapeLike(strings.ToLower(word))+"%")
		n := "$" + strconv.Itoa(len(args))
		where = append(where, "(LOWER(u.firstname) LIKE "+n+
			" OR LOWER(u.lastname) LIKE "+n+
			" OR LOWER(u.email) LIKE "+n+
			" OR LOWER(u.username) LIKE "+n+")")
	}
	return where, args
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
