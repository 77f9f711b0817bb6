// license.go — проверка и сохранение лицензии модуля.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
)

// LicenseVerifier — проверка ключа лицензии в панели.
type LicenseVerifier interface {
	VerifyLicense(ctx context.Context, licenseKey string) panel.Verification
}

// LicenseState — сохранённое состояние лицензии.
type LicenseState struct {
	// MaskedKey — ключ с замаскированной серединой
	MaskedKey string     `json:"masked_key"`
	Status    string     `json:"status"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// LicenseService — операции с лицензией.
type LicenseService struct {
	settings *SettingsService
	verifier LicenseVerifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewLicenseService создаёт сервис лицензии.
func NewLicenseService(settings *SettingsService, verifier LicenseVerifier, logger *slog.Logger) *LicenseService {
	return &LicenseService{
		settings: settings,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "license")),
		now:      time.Now,
	}
}

// Validate проверяет ключ, ничего не сохраняя.
func (s *LicenseService) Validate(ctx context.Context, licenseKey string) panel.Verification {
	return s.verifier.VerifyLicense(ctx, licenseKey)
}

// Save проверяет ключ и сохраняет его вместе с результатом проверки.
func (s *LicenseService) Save(ctx context.Context, licenseKey string) (*LicenseState, error) {
	licenseKey = strings.TrimSpace(licenseKey)
	v := s.Validate(ctx, licenseKey)

	if err := s.settings.repo.Set(ctx, cfgLicenseKey, licenseKey); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Лицензия сохранена", slog.String("status", v.Status))
	return s.Status(ctx)
}

// Refresh повторно проверяет сохранённый ключ.
// Если ключ не задан — статус становится missing.
func (s *LicenseService) Refresh(ctx context.Context) (*LicenseState, error) {
	key, err := s.settings.get(ctx, cfgLicenseKey)
	if err != nil {
		return nil, err
	}

	if key == "" {
		status, err := s.settings.get(ctx, cfgLicenseStatus)
		if err != nil {
			return nil, err
		}
		if status != panel.LicenseMissing {
			if err := s.settings.repo.Set(ctx, cfgLicenseStatus, panel.LicenseMissing); err != nil {
				return nil, err
			}
			if err := s.settings.repo.Unset(ctx, cfgLicenseLastError); err != nil {
				return nil, err
			}
		}
		return s.Status(ctx)
	}

	v := s.Validate(ctx, key)
	if err := s.persist(ctx, v); err != nil {
		return nil, err
	}
	if !v.OK() {
		s.logger.Warn("Лицензия не прошла проверку", slog.String("message", v.Message))
	}
	return s.Status(ctx)
}

// Status возвращает сохранённое состояние лицензии.
func (s *LicenseService) Status(ctx context.Context) (*LicenseState, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	st := &LicenseState{
		MaskedKey: maskKey(snap.License.Key),
		Status:    snap.License.Status,
	}
	if !snap.LicenseCheckedAt.IsZero() {
		t := snap.LicenseCheckedAt
		st.CheckedAt = &t
	}
	if snap.License.Status != panel.LicenseOK {
		st.LastError = snap.LicenseLastError
	}
	return st, nil
}

// persist сохраняет статус, время проверки и последнюю ошибку.
func (s *LicenseService) persist(ctx context.Context, v panel.Verification) error {
	repo := s.settings.repo
	if err := repo.Set(ctx, cfgLicenseStatus, v.Status); err != nil {
		return err
	}
	if err := repo.Set(ctx, cfgLicenseCheckedAt, strconv.FormatInt(s.now().Unix(), 10)); err != nil {
		return err
	}
	if v.Message != "" {
		return repo.Set(ctx, cfgLicenseLastError, v.Message)
	}
	return repo.Unset(ctx, cfgLicenseLastError)
}

// maskKey оставляет видимыми только последние 4 символа ключа.
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
