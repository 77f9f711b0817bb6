// settings.go — настройки модуля в {config_plugins}.
// Настройки читаются один раз за запуск согласования в снимок Settings,
// чтобы весь пакет пользователей обрабатывался при одинаковой конфигурации.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

// Имена настроек модуля.
const (
	cfgLicenseKey       = "license_key"
	cfgLicenseStatus    = "license_status"
	cfgLicenseCheckedAt = "license_checked_at"
	cfgLicenseLastError = "license_last_error"
	cfgAutoSync         = "auto_sync"
	cfgAutoSyncPrefix   = "auto_sync_"
	cfgAutoEmail        = "auto_email"
	cfgEmailSubject     = "email_subject"
	cfgEmailBody        = "email_body"
)

// Шаблоны письма по умолчанию.
const (
	DefaultEmailSubject = "Your Moodle MCP key"
	DefaultEmailBody    = "Hello, {$a->firstname}:\n\n" +
		"Here is your Moodle MCP key:\n\n" +
		"{$a->mcpkey}\n\n" +
		"Keep it safe. Contact your administrator if you need a new one."
)

// Settings — снимок настроек модуля.
type Settings struct {
	License          panel.License
	LicenseCheckedAt time.Time
	LicenseLastError string
	// AutoSync — плановая синхронизация включена
	AutoSync bool
	// AutoSyncRoles — реакция на события назначения ролей, по ролям MCP
	AutoSyncRoles map[string]bool
	AutoEmail     bool
	EmailSubject  string
	EmailBody     string
}

// AutoSyncForService — включена ли автосинхронизация для роли сервиса.
func (s *Settings) AutoSyncForService(shortname string) bool {
	return s.AutoSyncRoles[rbac.RoleFromService(shortname)]
}

// SettingsUpdate — изменяемые администратором настройки.
// nil-поля не меняются.
type SettingsUpdate struct {
	AutoSync      *bool
	AutoSyncRoles map[string]bool
	AutoEmail     *bool
	EmailSubject  *string
	EmailBody     *string
}

// SettingsService — чтение и изменение настроек модуля.
type SettingsService struct {
	repo   repository.PluginConfigRepository
	logger *slog.Logger
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(repo repository.PluginConfigRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger.With(slog.String("component", "settings")),
	}
}

// Snapshot читает все настройки модуля одним запросом.
func (s *SettingsService) Snapshot(ctx context.Context) (*Settings, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение настроек модуля: %w", err)
	}
	values := make(map[string]string, len(list))
	for _, item := range list {
		values[item.Name] = item.Value
	}

	snap := &Settings{
		License: panel.License{
			Key:    values[cfgLicenseKey],
			Status: values[cfgLicenseStatus],
		},
		LicenseLastError: values[cfgLicenseLastError],
		AutoSync:         flag(values[cfgAutoSync]),
		AutoSyncRoles:    make(map[string]bool, len(rbac.Roles())),
		AutoEmail:        flag(values[cfgAutoEmail]),
		EmailSubject:     DefaultEmailSubject,
		EmailBody:        DefaultEmailBody,
	}
	if snap.License.Status == "" {
		snap.License.Status = panel.LicenseMissing
	}
	if ts, err := strconv.ParseInt(values[cfgLicenseCheckedAt], 10, 64); err == nil && ts > 0 {
		snap.LicenseCheckedAt = time.Unix(ts, 0).UTC()
	}
	for _, role := range rbac.Roles() {
		snap.AutoSyncRoles[role] = flag(values[cfgAutoSyncPrefix+role])
	}
	if v, ok := values[cfgEmailSubject]; ok {
		snap.EmailSubject = v
	}
	if v, ok := values[cfgEmailBody]; ok {
		snap.EmailBody = v
	}
	return snap, nil
}

// EnsureDefaults создаёт отсутствующие настройки со значениями по умолчанию.
// Существующие значения не меняются.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	defaults := []struct{ name, value string }{
		{cfgLicenseStatus, panel.LicenseMissing},
		{cfgAutoSync, "0"},
		{cfgAutoEmail, "0"},
		{cfgEmailSubject, DefaultEmailSubject},
		{cfgEmailBody, DefaultEmailBody},
	}
	for _, d := range defaults {
		if err := s.repo.SetIfAbsent(ctx, d.name, d.value); err != nil {
			return err
		}
	}
	return nil
}

// Update применяет изменения настроек и возвращает новый снимок.
func (s *SettingsService) Update(ctx context.Context, upd SettingsUpdate) (*Settings, error) {
	for role := range upd.AutoSyncRoles {
		if !rbac.IsValidRole(role) {
			return nil, fmt.Errorf("%w: неизвестная роль %q", ErrValidation, role)
		}
	}
	if upd.EmailSubject != nil && strings.TrimSpace(*upd.EmailSubject) == "" {
		return nil, fmt.Errorf("%w: тема письма не может быть пустой", ErrValidation)
	}

	if upd.AutoSync != nil {
		if err := s.repo.Set(ctx, cfgAutoSync, flagValue(*upd.AutoSync)); err != nil {
			return nil, err
		}
	}
	for _, role := range rbac.Roles() {
		v, ok := upd.AutoSyncRoles[role]
		if !ok {
			continue
		}
		if err := s.repo.Set(ctx, cfgAutoSyncPrefix+role, flagValue(v)); err != nil {
			return nil, err
		}
	}
	if upd.AutoEmail != nil {
		if err := s.repo.Set(ctx, cfgAutoEmail, flagValue(*upd.AutoEmail)); err != nil {
			return nil, err
		}
	}
	if upd.EmailSubject != nil {
		if err := s.repo.Set(ctx, cfgEmailSubject, *upd.EmailSubject); err != nil {
			return nil, err
		}
	}
	if upd.EmailBody != nil {
		if err := s.repo.Set(ctx, cfgEmailBody, *upd.EmailBody); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Настройки модуля обновлены")
	return s.Snapshot(ctx)
}

// get возвращает значение настройки; отсутствие — пустая строка.
func (s *SettingsService) get(ctx context.Context, name string) (string, error) {
	v, err := s.repo.Get(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// flag разбирает флаг 0/1 хост-системы.
func flag(v string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n == 1
}

func flagValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
