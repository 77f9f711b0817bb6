package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// contextLevelSystem и contextLevelCourse — уровни контекста хост-системы.
const (
	contextLevelSystem = 10
	contextLevelCourse = 50
)

// SiteRepository — глобальные данные сайта: администраторы, гость, системный контекст.
type SiteRepository interface {
	// SiteAdminIDs возвращает id администраторов сайта (настройка siteadmins).
	SiteAdminIDs(ctx context.Context) ([]int64, error)
	// GuestID возвращает id гостевого пользователя (0, если не задан).
	GuestID(ctx context.Context) (int64, error)
	// SystemContextID возвращает id системного контекста.
	SystemContextID(ctx context.Context) (int64, error)
}

// siteRepo — реализация SiteRepository.
type siteRepo struct {
	db DBTX
	hostSQL
}

// NewSiteRepository создаёт репозиторий данных сайта.
func NewSiteRepository(db DBTX, prefix string) SiteRepository {
	return &siteRepo{db: db, hostSQL: hostSQL{prefix: prefix}}
}

// coreConfig читает значение из {config}. Отсутствие записи — пустая строка.
func (r *siteRepo) coreConfig(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, r.q(`SELECT value FROM {config} WHERE name = $1`), name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("ошибка чтения настройки %s: %w", name, err)
	}
	return value, nil
}

func (r *siteRepo) SiteAdminIDs(ctx context.Context) ([]int64, error) {
	value, err := r.coreConfig(ctx, "siteadmins")
	if err != nil {
		return nil, err
	}
	return parseIDList(value), nil
}

func (r *siteRepo) GuestID(ctx context.Context) (int64, error) {
	value, err := r.coreConfig(ctx, "siteguest")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

func (r *siteRepo) SystemContextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		r.q(`SELECT id FROM {context} WHERE contextlevel = $1 ORDER BY id LIMIT 1`),
		contextLevelSystem,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("ошибка получения системного контекста: %w", err)
	}
	return id, nil
}

// parseIDList разбирает CSV идентификаторов, пропуская мусор и дубли.
func parseIDList(value string) []int64 {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
