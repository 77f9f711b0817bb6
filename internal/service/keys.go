// keys.go — управление ключами панели, созданными модулем.
// Список ключей кэшируется в LRU с TTL (hashicorp/golang-lru/v2/expirable),
// любая изменяющая операция сбрасывает кэш.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

var (
	keyCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcp_sync_key_cache_hits_total",
		Help: "Попадания в кэш списка ключей панели.",
	})
	keyCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcp_sync_key_cache_misses_total",
		Help: "Промахи кэша списка ключей панели.",
	})
)

// expiresLayout — формат даты окончания действия ключа.
const expiresLayout = "2006-01-02"

// KeyResult — итог перевыпуска ключа.
type KeyResult struct {
	Key     *panel.Key `json:"key"`
	Emailed bool       `json:"emailed"`
}

// KeyService — операции администратора с ключами.
type KeyService struct {
	engine   *Engine
	settings *SettingsService
	// cache — ключ лицензии -> ключи, созданные модулем
	cache  *expirable.LRU[string, []panel.Key]
	logger *slog.Logger
}

// NewKeyService создаёт сервис ключей.
func NewKeyService(engine *Engine, settings *SettingsService, cacheSize int, cacheTTL time.Duration, logger *slog.Logger) *KeyService {
	return &KeyService{
		engine:   engine,
		settings: settings,
		cache:    expirable.NewLRU[string, []panel.Key](cacheSize, nil, cacheTTL),
		logger:   logger.With(slog.String("component", "keys")),
	}
}

// List возвращает ключи, созданные модулем.
func (s *KeyService) List(ctx context.Context) ([]panel.Key, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, snap)
}

func (s *KeyService) list(ctx context.Context, snap *Settings) ([]panel.Key, error) {
	if keys, ok := s.cache.Get(snap.License.Key); ok {
		keyCacheHitsTotal.Inc()
		return keys, nil
	}
	keyCacheMissesTotal.Inc()

	all, err := s.engine.panel.ListKeys(ctx, snap.License)
	if err != nil {
		return nil, err
	}
	keys := make([]panel.Key, 0, len(all))
	for _, k := range all {
		if k.CreatedBy == panel.CreatedByMoodle {
			keys = append(keys, k)
		}
	}
	s.cache.Add(snap.License.Key, keys)
	return keys, nil
}

// find ищет ключ в списке по mcpKey.
func (s *KeyService) find(ctx context.Context, snap *Settings, mcpKey string) (panel.Key, error) {
	keys, err := s.list(ctx, snap)
	if err != nil {
		return panel.Key{}, err
	}
	for _, k := range keys {
		if k.MCPKey == mcpKey {
			return k, nil
		}
	}
	return panel.Key{}, fmt.Errorf("%w: ключ не найден", ErrNotFound)
}

// Revoke отзывает ключ. Владелец ключа теряет все токены и назначения модуля.
func (s *KeyService) Revoke(ctx context.Context, mcpKey string) error {
	return s.drop(ctx, mcpKey, true)
}

// Delete удаляет ключ. Владелец ключа теряет все токены и назначения модуля.
func (s *KeyService) Delete(ctx context.Context, mcpKey string) error {
	return s.drop(ctx, mcpKey, false)
}

func (s *KeyService) drop(ctx context.Context, mcpKey string, revoke bool) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	// Ключа может не быть в списке (создан до кэша) — тогда только панель.
	k, err := s.find(ctx, snap, mcpKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	p := s.engine.panel
	if revoke {
		err = p.RevokeKey(ctx, snap.License, mcpKey)
	} else {
		err = p.DeleteKey(ctx, snap.License, mcpKey)
	}
	if err != nil {
		return err
	}
	s.invalidate()

	if k.MoodleToken == "" {
		return nil
	}
	if err := s.dropOwner(ctx, k.MoodleToken); err != nil {
		return err
	}
	s.logger.Info("Ключ удалён из панели",
		slog.Bool("revoke", revoke),
		slog.String("username", k.MoodleUsername),
	)
	return nil
}

// dropOwner удаляет токены и назначения владельца токена.
// Если владельца нет — удаляется только сам токен.
func (s *KeyService) dropOwner(ctx context.Context, token string) error {
	user, err := s.engine.userByToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return s.engine.store.Tokens.DeleteByValue(ctx, token)
	}
	return s.engine.tx.WithinTx(ctx, func(st *repository.Store) error {
		ix, err := loadServiceIndex(ctx, st.Services)
		if err != nil {
			return err
		}
		if err := st.Tokens.DeleteForUserServices(ctx, user.ID, ix.ids); err != nil {
			return err
		}
		return st.Grants.UnassignAll(ctx, user.ID, ix.ids)
	})
}

// Suspend приостанавливает ключ.
func (s *KeyService) Suspend(ctx context.Context, mcpKey string) error {
	return s.suspend(ctx, mcpKey, true)
}

// Activate возобновляет ключ.
func (s *KeyService) Activate(ctx context.Context, mcpKey string) error {
	return s.suspend(ctx, mcpKey, false)
}

func (s *KeyService) suspend(ctx context.Context, mcpKey string, suspend bool) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.engine.panel.SuspendKey(ctx, snap.License, mcpKey, suspend); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Send отправляет ключ владельцу и отмечает его отправленным.
func (s *KeyService) Send(ctx context.Context, mcpKey string) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	k, err := s.find(ctx, snap, mcpKey)
	if err != nil {
		return err
	}
	user, err := s.engine.userByToken(ctx, k.MoodleToken)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: владелец ключа не найден", ErrNotFound)
	}
	if !s.engine.sendKey(ctx, snap, user, &k) {
		return fmt.Errorf("%w: письмо не отправлено", ErrValidation)
	}
	s.invalidate()
	return nil
}

// Regenerate перевыпускает ключ: старый ключ удаляется, пользователь
// получает новый токен основного сервиса и ключ с одной основной ролью.
// expiresOn — дата YYYY-MM-DD или пустая строка.
func (s *KeyService) Regenerate(ctx context.Context, mcpKey, expiresOn string) (*KeyResult, error) {
	if expiresOn != "" {
		if _, err := time.Parse(expiresLayout, expiresOn); err != nil {
			return nil, fmt.Errorf("%w: дата окончания должна быть в формате YYYY-MM-DD", ErrValidation)
		}
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	old, err := s.find(ctx, snap, mcpKey)
	if err != nil {
		return nil, err
	}

	e := s.engine
	user, err := e.userByToken(ctx, old.MoodleToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: владелец ключа не найден", ErrNotFound)
	}

	roles, err := e.classifier.EffectiveRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	primary := rbac.PrimaryRole(roles)

	if _, err := ensureServices(ctx, e.store.Services, e.logger); err != nil {
		return nil, err
	}
	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return nil, err
	}
	serviceID, ok := ix.id(rbac.ServiceForRole(primary))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTargetService, primary)
	}

	if err := e.panel.DeleteKey(ctx, snap.License, old.MCPKey); err != nil {
		s.logger.Warn("Не удалось удалить старый ключ, перевыпуск продолжается",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	s.invalidate()

	var token string
	err = e.tx.WithinTx(ctx, func(st *repository.Store) error {
		if _, err := st.Grants.Authorize(ctx, user.ID, serviceID); err != nil {
			return err
		}
		if err := st.Tokens.DeleteForUserServices(ctx, user.ID, ix.ids); err != nil {
			return err
		}
		token, err = e.rotateToken(ctx, st, user.ID, serviceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	key, err := e.panel.CreateKey(ctx, snap.License, panel.CreateKeyRequest{
		MoodleToken:    token,
		MoodleRoles:    []string{primary},
		MoodleUsername: user.Username,
		ExpiresOn:      expiresOn,
	})
	if err != nil {
		return nil, err
	}
	if key.MCPKey == "" || key.MCPURL == "" {
		return nil, fmt.Errorf("%w: панель не вернула ключ", ErrPanelUnavailable)
	}

	res := &KeyResult{Key: key}
	if snap.AutoEmail && !old.Sent() {
		res.Emailed = e.sendKey(ctx, snap, user, key)
	}

	s.logger.Info("Ключ перевыпущен",
		slog.Int64("user_id", user.ID),
		slog.String("role", primary),
	)
	return res, nil
}

// snapshot читает настройки и проверяет лицензию.
func (s *KeyService) snapshot(ctx context.Context) (*Settings, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.License.Valid() {
		return nil, ErrInvalidLicense
	}
	return snap, nil
}

func (s *KeyService) invalidate() {
	s.cache.Purge()
}
