package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

// tokenTypePermanent — EXTERNAL_TOKEN_PERMANENT хост-системы.
const tokenTypePermanent = 0

// TokenRepository — токены веб-сервисов ({external_tokens}).
type TokenRepository interface {
	// Get возвращает токен пользователя для сервиса. Если нет — ErrNotFound.
	// GetByValue возвращает токен по значению. Если нет — ErrNotFound.
	GetByValue(ctx context.Context, token string) (*model.Token, error)
	// ListForUser возвращает токены пользователя для указанных сервисов.
	ListForUser(ctx context.Context, userID int64, serviceIDs []int64) ([]model.Token, error)
	// Create сохраняет новый бессрочный токен, привязанный к контексту contextID.
	Create(ctx context.Context, t *model.Token, contextID, creatorID int64) error
	// DeleteForUser удаляет токены пользователя для сервиса.
	DeleteForUser(ctx context.Context, userID, serviceID int64) error
	// DeleteForUserExcept удаляет токены пользователя для serviceIDs, кроме keepServiceID.
	DeleteForUserExcept(ctx context.Context, userID, keepServiceID int64, serviceIDs []int64) error
	// DeleteForUserServices удаляет все токены пользователя для serviceIDs.
	DeleteForUserServices(ctx context.Context, userID int64, serviceIDs []int64) error
	// DeleteByValue удаляет токен по значению. Пустое значение — no-op.
	DeleteByValue(ctx context.Context, token string) error
	// DeleteByServices удаляет все токены указанных сервисов.
	DeleteByServices(ctx context.Context, serviceIDs []int64) error
}

// tokenRepo — реализация TokenRepository.
type tokenRepo struct {
	db DBTX
	hostSQL
}

// NewTokenRepository создаёт репозиторий токенов.
func NewTokenRepository(db DBTX, prefix string) TokenRepository {
	return &tokenRepo{db: db, hostSQL: hostSQL{prefix: prefix}}
}

const tokenColumns = `id, token, userid, externalserviceid, COALESCE(validuntil, 0)`

func scanToken(row pgx.Row) (*model.Token, error) {
	t := &model.Token{}
	if err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.ServiceID, &t.ValidUntil); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tokenRepo) GetByValue(ctx context.Context, token string) (*model.Token, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	query := r.q(`SELECT ` + tokenColumns + ` FROM {external_tokens} WHERE token = $1 LIMIT 1`)

	t, err := scanToken(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска токена: %w", err)
	}
	return t, nil
}

func (r *tokenRepo) ListForUser(ctx context.Context, userID int64, serviceIDs []int64) ([]model.Token, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	query := r.q(`SELECT ` + tokenColumns + ` FROM {external_tokens}
		WHERE userid = $1 AND externalserviceid = ANY($2)
		ORDER BY id`)

	rows, err := r.db.Query(ctx, query, userID, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения токенов пользователя %d: %w", userID, err)
	}
	defer rows.Close()

	var out []model.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования токена: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *tokenRepo) Create(ctx context.Context, t *model.Token, contextID, creatorID int64) error {
	query := r.q(`
		INSERT INTO {external_tokens}
			(token, privatetoken, tokentype, userid, externalserviceid, contextid,
			 creatorid, validuntil, timecreated)
		VALUES ($1, NULL, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`)

	err := r.db.QueryRow(ctx, query,
		t.Token, tokenTypePermanent, t.UserID, t.ServiceID, contextID,
		creatorID, t.ValidUntil, time.Now().Unix(),
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания токена пользователя %d: %w", t.UserID, err)
	}
	return nil
}

func (r *tokenRepo) DeleteForUser(ctx context.Context, userID, serviceID int64) error {
	_, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_tokens} WHERE userid = $1 AND externalserviceid = $2`),
		userID, serviceID,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления токенов пользователя %d сервиса %d: %w", userID, serviceID, err)
	}
	return nil
}

func (r *tokenRepo) DeleteForUserExcept(ctx context.Context, userID, keepServiceID int64, serviceIDs []int64) error {
	others := make([]int64, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		if id != keepServiceID {
			others = append(others, id)
		}
	}
	return r.DeleteForUserServices(ctx, userID, others)
}

func (r *tokenRepo) DeleteForUserServices(ctx context.Context, userID int64, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_tokens} WHERE userid = $1 AND externalserviceid = ANY($2)`),
		userID, serviceIDs,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления токенов пользователя %d: %w", userID, err)
	}
	return nil
}

func (r *tokenRepo) DeleteByValue(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := r.db.Exec(ctx, r.q(`DELETE FROM {external_tokens} WHERE token = $1`), token)
	if err != nil {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

func (r *tokenRepo) DeleteByServices(ctx context.Context, serviceIDs []int64) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		r.q(`DELETE FROM {external_tokens} WHERE externalserviceid = ANY($1)`),
		serviceIDs,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления токенов сервисов: %w", err)
	}
	return nil
}
