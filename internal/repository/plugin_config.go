package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PluginName — имя модуля в {config_plugins}.
const PluginName = "local_moodlemcp"

// PluginSetting — запись настройки модуля.
type PluginSetting struct {
	// Имя настройки (например "license_key")
	Name string
	// Значение (строковое представление)
	Value string
}

// PluginConfigRepository — настройки модуля в таблице {config_plugins}.
type PluginConfigRepository interface {
	// Get возвращает значение настройки. Если не найдена — ErrNotFound.
	Get(ctx context.Context, name string) (string, error)
	// Set создаёт или обновляет настройку (upsert).
	Set(ctx context.Context, name, value string) error
	// SetIfAbsent создаёт настройку, только если её ещё нет.
	SetIfAbsent(ctx context.Context, name, value string) error
	// List возвращает все настройки модуля.
	List(ctx context.Context) ([]PluginSetting, error)
	// Unset удаляет настройку. Отсутствие записи — не ошибка.
	Unset(ctx context.Context, name string) error
	// DeleteAll удаляет все настройки модуля.
	DeleteAll(ctx context.Context) error
}

// pluginConfigRepo — реализация PluginConfigRepository.
type pluginConfigRepo struct {
	db DBTX
	hostSQL
}

// NewPluginConfigRepository создаёт репозиторий настроек модуля.
func NewPluginConfigRepository(db DBTX, prefix string) PluginConfigRepository {
	return &pluginConfigRepo{db: db, hostSQL: hostSQL{prefix: prefix}}
}

// Get возвращает значение настройки по имени.
func (r *pluginConfigRepo) Get(ctx context.Context, name string) (string, error) {
	query := r.q(`SELECT value FROM {config_plugins} WHERE plugin = $1 AND name = $2`)

	var value string
	err := r.db.QueryRow(ctx, query, PluginName, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("ошибка получения настройки %s: %w", name, err)
	}
	return value, nil
}

// Set создаёт или обновляет настройку (INSERT ... ON CONFLICT DO UPDATE).
func (r *pluginConfigRepo) Set(ctx context.Context, name, value string) error {
	query := r.q(`
		INSERT INTO {config_plugins} (plugin, name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (plugin, name) DO UPDATE
		SET value = EXCLUDED.value`)

	if _, err := r.db.Exec(ctx, query, PluginName, name, value); err != nil {
		return fmt.Errorf("ошибка сохранения настройки %s: %w", name, err)
	}
	return nil
}

// SetIfAbsent создаёт настройку, не трогая существующее значение.
func (r *pluginConfigRepo) SetIfAbsent(ctx context.Context, name, value string) error {
	query := r.q(`
		INSERT INTO {config_plugins} (plugin, name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (plugin, name) DO NOTHING`)

	if _, err := r.db.Exec(ctx, query, PluginName, name, value); err != nil {
		return fmt.Errorf("ошибка сохранения настройки %s: %w", name, err)
	}
	return nil
}

// List возвращает все настройки модуля, отсортированные по имени.
func (r *pluginConfigRepo) List(ctx context.Context) ([]PluginSetting, error) {
	query := r.q(`SELECT name, value FROM {config_plugins} WHERE plugin = $1 ORDER BY name`)

	rows, err := r.db.Query(ctx, query, PluginName)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения настроек модуля: %w", err)
	}
	defer rows.Close()

	var settings []PluginSetting
	for rows.Next() {
		var s PluginSetting
		if err := rows.Scan(&s.Name, &s.Value); err != nil {
			return nil, fmt.Errorf("ошибка сканирования настройки: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Unset удаляет настройку по имени.
func (r *pluginConfigRepo) Unset(ctx context.Context, name string) error {
	query := r.q(`DELETE FROM {config_plugins} WHERE plugin = $1 AND name = $2`)
	if _, err := r.db.Exec(ctx, query, PluginName, name); err != nil {
		return fmt.Errorf("ошибка удаления настройки %s: %w", name, err)
	}
	return nil
}

// DeleteAll удаляет все настройки модуля.
func (r *pluginConfigRepo) DeleteAll(ctx context.Context) error {
	query := r.q(`DELETE FROM {config_plugins} WHERE plugin = $1`)
	if _, err := r.db.Exec(ctx, query, PluginName); err != nil {
		return fmt.Errorf("ошибка удаления настроек модуля: %w", err)
	}
	return nil
}
