// engine.go — согласование назначений сервисов и ключа MCP пользователя.
//
// Для пользователя вычисляются эффективные роли, по ним — целевые сервисы,
// назначения приводятся к целевому набору, затем пересчитывается
// единственный ключ панели: токен основного сервиса, полный список ролей,
// удаление ключей по токенам остальных сервисов.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/mailer"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

// Prometheus метрики согласования.
var (
	reconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_sync_reconcile_total",
		Help: "Количество согласований пользователей",
	}, []string{"result"})

	grantChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_sync_grant_changes_total",
		Help: "Количество изменений назначений сервисов",
	}, []string{"op"})

	keyEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_sync_key_emails_total",
		Help: "Количество писем с ключами",
	}, []string{"result"})
)

// KeyPanel — операции с ключами в панели.
type KeyPanel interface {
	CreateKey(ctx context.Context, lic panel.License, req panel.CreateKeyRequest) (*panel.Key, error)
	ListKeys(ctx context.Context, lic panel.License) ([]panel.Key, error)
	RevokeKey(ctx context.Context, lic panel.License, mcpKey string) error
	DeleteKey(ctx context.Context, lic panel.License, mcpKey string) error
	SuspendKey(ctx context.Context, lic panel.License, mcpKey string, suspend bool) error
	MarkSent(ctx context.Context, lic panel.License, mcpKey string) error
}

// ReconcileResult — итог согласования одного пользователя.
type ReconcileResult struct {
	Added   int        `json:"added"`
	Removed int        `json:"removed"`
	Key     *panel.Key `json:"key,omitempty"`
	Emailed bool       `json:"emailed"`
}

// AssignResult — итог ручного назначения пользователя на сервис.
type AssignResult struct {
	// Added — назначение создано (false — уже было)
	Added   bool       `json:"added"`
	Key     *panel.Key `json:"key,omitempty"`
	Emailed bool       `json:"emailed"`
}

// Engine — движок согласования.
type Engine struct {
	store      *repository.Store
	tx         TxStore
	classifier *rbac.Classifier
	panel      KeyPanel
	mail       mailer.Sender
	logger     *slog.Logger
	// newToken — генератор значений токенов, подменяется в тестах
	newToken func() (string, error)
}

// NewEngine создаёт движок согласования.
func NewEngine(
	store *repository.Store,
	tx TxStore,
	classifier *rbac.Classifier,
	keyPanel KeyPanel,
	mail mailer.Sender,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		store:      store,
		tx:         tx,
		classifier: classifier,
		panel:      keyPanel,
		mail:       mail,
		logger:     logger.With(slog.String("component", "reconcile")),
		newToken:   randomToken,
	}
}

// Reconcile приводит назначения пользователя к его эффективным ролям
// и пересчитывает ключ.
//
// limit — shortname сервиса: согласуется только он, остальные назначения
// не затрагиваются. removeOnly — только снимать назначения.
// Если пересчёт ключа не удался, возвращается результат с применёнными
// изменениями и ошибка, оборачивающая ErrRecalculateFailed.
func (e *Engine) Reconcile(
	ctx context.Context,
	snap *Settings,
	user *model.User,
	keys *KeyMap,
	limit string,
	removeOnly bool,
) (*ReconcileResult, error) {
	if !snap.License.Valid() {
		return nil, ErrInvalidLicense
	}
	if limit != "" && !rbac.IsKnownService(limit) {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, limit)
	}

	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return nil, err
	}
	var limitID int64
	if limit != "" {
		id, ok := ix.id(limit)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingService, limit)
		}
		limitID = id
	}

	roles, err := e.classifier.EffectiveRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var target []int64
	for _, sn := range rbac.ServicesForRoles(roles) {
		if id, ok := ix.id(sn); ok {
			target = append(target, id)
		}
	}

	current, err := e.store.Grants.ListAssignedServiceIDs(ctx, user.ID, ix.ids)
	if err != nil {
		return nil, err
	}

	var toAdd, toRemove []int64
	if limit != "" {
		eligible := slices.Contains(target, limitID)
		assigned := slices.Contains(current, limitID)
		if eligible && !assigned && !removeOnly {
			toAdd = append(toAdd, limitID)
		}
		if assigned && !eligible {
			toRemove = append(toRemove, limitID)
		}
	} else {
		for _, id := range current {
			if !slices.Contains(target, id) {
				toRemove = append(toRemove, id)
			}
		}
		if !removeOnly {
			for _, id := range target {
				if !slices.Contains(current, id) {
					toAdd = append(toAdd, id)
				}
			}
		}
	}

	res := &ReconcileResult{}
	for _, id := range toRemove {
		ok, err := e.store.Grants.Unassign(ctx, user.ID, id)
		if err != nil {
			return res, err
		}
		if ok {
			res.Removed++
			grantChangesTotal.WithLabelValues("remove").Inc()
		}
	}
	for _, id := range toAdd {
		ok, err := e.store.Grants.Authorize(ctx, user.ID, id)
		if err != nil {
			return res, err
		}
		if ok {
			res.Added++
			grantChangesTotal.WithLabelValues("add").Inc()
		}
	}

	if keys == nil {
		keys = loadKeyMap(ctx, e.panel, snap.License, e.logger)
	}
	key, err := e.recalculate(ctx, e.store, snap, ix, user.ID, keys)
	if err != nil {
		reconcileTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("%w: пользователь %d: %w", ErrRecalculateFailed, user.ID, err)
	}
	res.Key = key
	reconcileTotal.WithLabelValues("ok").Inc()

	if key != nil && snap.AutoEmail && !key.Sent() {
		res.Emailed = e.sendKey(ctx, snap, user, key)
	}

	if res.Added > 0 || res.Removed > 0 {
		e.logger.Info("Назначения пользователя согласованы",
			slog.Int64("user_id", user.ID),
			slog.Int("added", res.Added),
			slog.Int("removed", res.Removed),
		)
	}
	return res, nil
}

// RecalculateKey пересчитывает ключ пользователя по текущим назначениям.
// nil-ключ без ошибки — у пользователя нет назначений.
func (e *Engine) RecalculateKey(ctx context.Context, snap *Settings, userID int64) (*panel.Key, error) {
	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return nil, err
	}
	return e.recalculate(ctx, e.store, snap, ix, userID, nil)
}

// recalculate — пересчёт ключа в рамках st (пул или транзакция).
func (e *Engine) recalculate(
	ctx context.Context,
	st *repository.Store,
	snap *Settings,
	ix *serviceIndex,
	userID int64,
	km *KeyMap,
) (*panel.Key, error) {
	if len(ix.ids) == 0 {
		return nil, ErrNoServicesDefined
	}
	user, err := st.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь %d", ErrNotFound, userID)
		}
		return nil, err
	}

	assigned, err := st.Grants.ListAssignedServiceIDs(ctx, userID, ix.ids)
	if err != nil {
		return nil, err
	}
	if km == nil {
		km = loadKeyMap(ctx, e.panel, snap.License, e.logger)
	}
	if len(assigned) == 0 {
		return nil, e.dropUserKeys(ctx, st, snap, ix, userID, km, false)
	}

	// Роли перечисляются в порядке определений сервисов.
	var userRoles []string
	for _, id := range ix.ids {
		if slices.Contains(assigned, id) {
			userRoles = append(userRoles, rbac.RoleFromService(ix.shortname(id)))
		}
	}
	primary := rbac.PrimaryRole(userRoles)
	targetID, ok := ix.id(rbac.ServiceForRole(primary))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTargetService, primary)
	}

	tokens, err := st.Tokens.ListForUser(ctx, userID, ix.ids)
	if err != nil {
		return nil, err
	}
	var token string
	for _, t := range tokens {
		if t.ServiceID == targetID {
			token = t.Token
			continue
		}
		k, ok := km.Get(t.Token)
		if !ok || k.MCPKey == "" {
			continue
		}
		if err := e.panel.DeleteKey(ctx, snap.License, k.MCPKey); err != nil {
			e.logger.Warn("Не удалось удалить устаревший ключ",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}
		km.Remove(t.Token)
	}

	if err := st.Tokens.DeleteForUserExcept(ctx, userID, targetID, ix.ids); err != nil {
		return nil, err
	}
	if token == "" {
		token, err = e.rotateToken(ctx, st, userID, targetID)
		if err != nil {
			return nil, err
		}
	}

	key, err := e.panel.CreateKey(ctx, snap.License, panel.CreateKeyRequest{
		MoodleToken:    token,
		MoodleRoles:    userRoles,
		MoodleUsername: user.Username,
	})
	if err != nil {
		return nil, err
	}
	if key.MoodleToken == "" {
		key.MoodleToken = token
	}
	km.Put(*key)
	return key, nil
}

// rotateToken удаляет токен пользователя для сервиса и выпускает новый
// бессрочный токен в системном контексте.
func (e *Engine) rotateToken(ctx context.Context, st *repository.Store, userID, serviceID int64) (string, error) {
	if err := st.Tokens.DeleteForUser(ctx, userID, serviceID); err != nil {
		return "", err
	}
	contextID, err := st.Site.SystemContextID(ctx)
	if err != nil {
		return "", fmt.Errorf("системный контекст: %w", err)
	}
	value, err := e.newToken()
	if err != nil {
		return "", err
	}
	t := &model.Token{Token: value, UserID: userID, ServiceID: serviceID}
	if err := st.Tokens.Create(ctx, t, contextID, userID); err != nil {
		return "", err
	}
	return value, nil
}

// DeleteUserKeys удаляет ключи панели и локальные токены пользователя.
func (e *Engine) DeleteUserKeys(ctx context.Context, snap *Settings, userID int64) error {
	return e.dropKeys(ctx, snap, userID, false)
}

// RevokeUserKeys отзывает ключи панели и удаляет локальные токены пользователя.
func (e *Engine) RevokeUserKeys(ctx context.Context, snap *Settings, userID int64) error {
	return e.dropKeys(ctx, snap, userID, true)
}

func (e *Engine) dropKeys(ctx context.Context, snap *Settings, userID int64, revoke bool) error {
	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return err
	}
	return e.dropUserKeys(ctx, e.store, snap, ix, userID, nil, revoke)
}

// dropUserKeys удаляет (или отзывает) ключи панели по токенам пользователя
// и всегда удаляет сами токены, даже если панель недоступна.
func (e *Engine) dropUserKeys(
	ctx context.Context,
	st *repository.Store,
	snap *Settings,
	ix *serviceIndex,
	userID int64,
	km *KeyMap,
	revoke bool,
) error {
	if len(ix.ids) == 0 {
		return nil
	}
	tokens, err := st.Tokens.ListForUser(ctx, userID, ix.ids)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	if km == nil {
		km = loadKeyMap(ctx, e.panel, snap.License, e.logger)
	}

	for _, t := range tokens {
		if k, ok := km.Get(t.Token); ok && k.MCPKey != "" {
			var perr error
			if revoke {
				perr = e.panel.RevokeKey(ctx, snap.License, k.MCPKey)
			} else {
				perr = e.panel.DeleteKey(ctx, snap.License, k.MCPKey)
			}
			if perr != nil {
				e.logger.Warn("Ключ в панели не удалён",
					slog.Int64("user_id", userID),
					slog.Bool("revoke", revoke),
					slog.String("error", perr.Error()),
				)
			} else {
				km.Remove(t.Token)
			}
		}
		if err := st.Tokens.DeleteByValue(ctx, t.Token); err != nil {
			return err
		}
	}
	return nil
}

// AssignUser назначает пользователя на сервис и пересчитывает ключ
// в одной транзакции. Ошибка пересчёта откатывает локальные изменения;
// состояние панели не компенсируется.
func (e *Engine) AssignUser(ctx context.Context, snap *Settings, userID int64, shortname string) (*AssignResult, error) {
	if !snap.License.Valid() {
		return nil, ErrInvalidLicense
	}
	if !rbac.IsKnownService(shortname) {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, shortname)
	}
	user, err := e.store.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь %d", ErrNotFound, userID)
		}
		return nil, err
	}
	eligible, err := e.classifier.IsEligible(ctx, userID, shortname)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, shortname)
	}
	if _, err := ensureServices(ctx, e.store.Services, e.logger); err != nil {
		return nil, err
	}
	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return nil, err
	}
	serviceID, ok := ix.id(shortname)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingService, shortname)
	}

	res := &AssignResult{}
	err = e.tx.WithinTx(ctx, func(st *repository.Store) error {
		added, err := st.Grants.Authorize(ctx, userID, serviceID)
		if err != nil {
			return err
		}
		res.Added = added
		key, err := e.recalculate(ctx, st, snap, ix, userID, nil)
		if err != nil {
			return fmt.Errorf("%w: пользователь %d: %w", ErrRecalculateFailed, userID, err)
		}
		res.Key = key
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Added {
		grantChangesTotal.WithLabelValues("add").Inc()
	}

	e.logger.Info("Пользователь назначен на сервис",
		slog.Int64("user_id", userID),
		slog.String("shortname", shortname),
	)
	if res.Key != nil && snap.AutoEmail && !res.Key.Sent() {
		res.Emailed = e.sendKey(ctx, snap, user, res.Key)
	}
	return res, nil
}

// UnassignUser снимает назначение и пересчитывает ключ.
func (e *Engine) UnassignUser(ctx context.Context, snap *Settings, userID int64, shortname string) error {
	if !rbac.IsKnownService(shortname) {
		return fmt.Errorf("%w: %s", ErrMissingService, shortname)
	}
	ix, err := loadServiceIndex(ctx, e.store.Services)
	if err != nil {
		return err
	}
	serviceID, ok := ix.id(shortname)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingService, shortname)
	}

	removed, err := e.store.Grants.Unassign(ctx, userID, serviceID)
	if err != nil {
		return err
	}
	if removed {
		grantChangesTotal.WithLabelValues("remove").Inc()
	}
	if !snap.License.Valid() {
		// Без лицензии ключи в панели не трогаем, локальные токены удаляем.
		if err := e.store.Tokens.DeleteForUser(ctx, userID, serviceID); err != nil {
			return err
		}
		return nil
	}
	if _, err := e.recalculate(ctx, e.store, snap, ix, userID, nil); err != nil {
		return fmt.Errorf("%w: пользователь %d: %w", ErrRecalculateFailed, userID, err)
	}

	e.logger.Info("Назначение пользователя снято",
		slog.Int64("user_id", userID),
		slog.String("shortname", shortname),
	)
	return nil
}

// userByToken возвращает действующего пользователя, которому принадлежит токен.
// nil без ошибки — токена нет или пользователь удалён.
func (e *Engine) userByToken(ctx context.Context, token string) (*model.User, error) {
	t, err := e.store.Tokens.GetByValue(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	u, err := e.store.Users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if u.Deleted {
		return nil, nil
	}
	return u, nil
}

// sendKey отправляет письмо с ключом и отмечает ключ отправленным.
// Письмо без ключа или адреса MCP не отправляется.
func (e *Engine) sendKey(ctx context.Context, snap *Settings, user *model.User, key *panel.Key) bool {
	if key.MCPKey == "" || key.MCPURL == "" {
		return false
	}
	msg := mailer.KeyMessage(snap.EmailSubject, snap.EmailBody, mailer.KeyData{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Email:     user.Email,
		MCPKey:    key.MCPKey,
		MCPURL:    key.MCPURL,
	})
	if err := e.mail.Send(ctx, msg); err != nil {
		keyEmailsTotal.WithLabelValues("error").Inc()
		e.logger.Warn("Письмо с ключом не отправлено",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	keyEmailsTotal.WithLabelValues("ok").Inc()

	if err := e.panel.MarkSent(ctx, snap.License, key.MCPKey); err != nil {
		e.logger.Warn("Не удалось отметить ключ отправленным",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	return true
}

// randomToken — 32 шестнадцатеричных символа из crypto/rand.
func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("генерация токена: %w", err)
	}
	return hex.EncodeToString(b), nil
}
