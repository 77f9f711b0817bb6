package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
)

// seedOrphan добавляет удалённого пользователя с токеном и ключом в панели.
func seedOrphan(t *testing.T, env *testEnv) {
	t.Helper()
	env.host.addUser(model.User{ID: 4, Username: "gone", Deleted: true})
	env.host.tokens = append(env.host.tokens, model.Token{
		ID: 100, Token: "orphan", UserID: 4, ServiceID: env.host.serviceID(t, svcStudent),
	})
	env.panel.keys["mcp-orphan"] = &panel.Key{
		MCPKey: "mcp-orphan", MoodleToken: "orphan", Status: panel.StatusActive, CreatedBy: panel.CreatedByMoodle,
	}
}

func TestSyncAll_Full(t *testing.T) {
	env := newTestEnv(t)
	seedOrphan(t, env)
	env.host.addUser(model.User{ID: 3, Username: "ivanov"})
	env.host.courseRoles[3] = []string{"student"}
	env.host.addUser(model.User{ID: 5, Username: "blocked", Suspended: true})
	env.host.courseRoles[5] = []string{"teacher"}
	env.host.addUser(model.User{ID: 6, Username: "plain"})

	res, err := env.sync.SyncAll(context.Background(), "")
	if err != nil {
		t.Fatalf("SyncAll() ошибка: %v", err)
	}
	// Обработаны 2 (admin), 3, 6; гость, удалённый и заблокированный пропущены.
	if res.Synced != 3 {
		t.Errorf("synced = %d, хотели 3", res.Synced)
	}
	if res.Added != 4 {
		t.Errorf("added = %d, хотели 4 (admin+user, student, user)", res.Added)
	}
	if res.Revoked != 1 {
		t.Errorf("revoked = %d, хотели 1", res.Revoked)
	}
	if res.FirstError != "" {
		t.Errorf("first_error = %q, ожидается пусто", res.FirstError)
	}
	if k := env.panel.keys["mcp-orphan"]; k.Status != panel.StatusRevoked {
		t.Errorf("ключ удалённого пользователя не отозван: %s", k.Status)
	}
	if got := env.host.userTokens(4); len(got) != 0 {
		t.Errorf("токен удалённого пользователя остался: %+v", got)
	}
	if got := env.assigned(5); len(got) != 0 {
		t.Errorf("заблокированный пользователь получил назначения: %v", got)
	}
	if got := env.assigned(2); !slices.Equal(got, []string{svcAdmin, svcUser}) {
		t.Errorf("назначения администратора = %v, хотели [admin user]", got)
	}
	if env.panel.listCalls != 1 {
		t.Errorf("список ключей запрошен %d раз, хотели 1", env.panel.listCalls)
	}
	if env.state.saved == nil || env.state.saved.Synced != 3 {
		t.Errorf("состояние синхронизации не сохранено: %+v", env.state.saved)
	}

	again, err := env.sync.SyncAll(context.Background(), "")
	if err != nil {
		t.Fatalf("повторный SyncAll() ошибка: %v", err)
	}
	if again.Added != 0 || again.Removed != 0 || again.Revoked != 0 {
		t.Errorf("повторный SyncAll: added=%d removed=%d revoked=%d, хотели 0", again.Added, again.Removed, again.Revoked)
	}
}

func TestSyncAll_AdminFilter(t *testing.T) {
	env := newTestEnv(t)
	seedOrphan(t, env)
	env.host.addUser(model.User{ID: 3, Username: "ivanov"})
	env.host.courseRoles[3] = []string{"teacher"}
	env.host.grants[grantKey{3, env.host.serviceID(t, svcStudent)}] = true

	res, err := env.sync.SyncAll(context.Background(), svcAdmin)
	if err != nil {
		t.Fatalf("SyncAll(admin) ошибка: %v", err)
	}
	if res.Synced != 1 || res.Added != 1 || res.Removed != 0 {
		t.Errorf("synced=%d added=%d removed=%d, хотели 1/1/0", res.Synced, res.Added, res.Removed)
	}
	if got := env.assigned(2); !slices.Equal(got, []string{svcAdmin}) {
		t.Errorf("назначения администратора = %v, хотели только [admin]", got)
	}
	if got := env.assigned(3); !slices.Equal(got, []string{svcStudent}) {
		t.Errorf("фильтр изменил чужие назначения: %v", got)
	}
	if res.Revoked != 0 || len(env.panel.revoked) != 0 {
		t.Errorf("фильтрованная синхронизация отозвала ключи: %v", env.panel.revoked)
	}
	if env.state.saved != nil {
		t.Error("фильтрованная синхронизация сохранила состояние")
	}
}

func TestSyncAll_StudentFilter(t *testing.T) {
	env := newTestEnv(t)
	env.host.addUser(model.User{ID: 3, Username: "ivanov"})
	env.host.courseRoles[3] = []string{"student"}
	env.host.addUser(model.User{ID: 6, Username: "plain"})
	env.host.addUser(model.User{ID: 7, Username: "former"})
	env.host.grants[grantKey{7, env.host.serviceID(t, svcStudent)}] = true
	env.host.addUser(model.User{ID: 5, Username: "blocked", Suspended: true})
	env.host.courseRoles[5] = []string{"student"}

	res, err := env.sync.SyncAll(context.Background(), svcStudent)
	if err != nil {
		t.Fatalf("SyncAll(student) ошибка: %v", err)
	}
	if res.Synced != 2 || res.Added != 1 || res.Removed != 1 {
		t.Errorf("synced=%d added=%d removed=%d, хотели 2/1/1", res.Synced, res.Added, res.Removed)
	}
	if got := env.assigned(6); len(got) != 0 {
		t.Errorf("неподходящий пользователь получил назначения: %v", got)
	}
	if got := env.assigned(2); len(got) != 0 {
		t.Errorf("фильтр student изменил назначения администратора: %v", got)
	}
	if got := env.assigned(5); len(got) != 0 {
		t.Errorf("заблокированный пользователь получил назначения: %v", got)
	}
	if got := env.host.userTokens(5); len(got) != 0 {
		t.Errorf("заблокированному пользователю выпущены токены: %d", len(got))
	}
	if len(env.panel.creates) != 1 {
		t.Errorf("создано ключей: %d, хотели 1", len(env.panel.creates))
	}
}

func TestSyncAll_FirstErrorDoesNotAbort(t *testing.T) {
	env := newTestEnv(t)
	env.host.addUser(model.User{ID: 3, Username: "ivanov"})
	env.panel.createErr = &panel.Error{Code: panel.CodeAPIError, Message: "boom"}

	res, err := env.sync.SyncAll(context.Background(), "")
	if err != nil {
		t.Fatalf("SyncAll() ошибка: %v", err)
	}
	if res.Synced != 2 {
		t.Errorf("synced = %d, хотели 2", res.Synced)
	}
	if res.FirstError == "" {
		t.Error("first_error не заполнен")
	}
}

func TestSyncAll_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.sync.SyncAll(ctx, "moodlemcp_unknown"); !errors.Is(err, ErrMissingService) {
		t.Errorf("SyncAll(unknown) ошибка = %v, ожидается ErrMissingService", err)
	}

	env.host.config[cfgLicenseStatus] = panel.LicenseError
	if _, err := env.sync.SyncAll(ctx, ""); !errors.Is(err, ErrInvalidLicense) {
		t.Errorf("SyncAll() без лицензии ошибка = %v, ожидается ErrInvalidLicense", err)
	}
}

func TestSyncUser(t *testing.T) {
	env := newTestEnv(t)
	env.host.addUser(model.User{ID: 3, Username: "ivanov"})
	env.host.courseRoles[3] = []string{"student"}
	env.host.addUser(model.User{ID: 4, Username: "gone", Deleted: true})
	env.host.addUser(model.User{ID: 5, Username: "blocked", Suspended: true})
	ctx := context.Background()

	res, err := env.sync.SyncUser(ctx, 3, "", false)
	if err != nil {
		t.Fatalf("SyncUser() ошибка: %v", err)
	}
	if res.Added != 1 || res.Key == nil {
		t.Errorf("SyncUser() = %+v, ожидается added=1 и ключ", res)
	}

	res, err = env.sync.SyncUser(ctx, 5, "", false)
	if err != nil || res != nil {
		t.Errorf("SyncUser(заблокирован) = %+v, %v; ожидается пропуск", res, err)
	}

	for _, id := range []int64{4, 42} {
		if _, err := env.sync.SyncUser(ctx, id, "", false); !errors.Is(err, ErrNotFound) {
			t.Errorf("SyncUser(%d) ошибка = %v, ожидается ErrNotFound", id, err)
		}
	}
	if _, err := env.sync.SyncUser(ctx, 3, "bogus", false); !errors.Is(err, ErrMissingService) {
		t.Errorf("SyncUser(bogus) ошибка = %v, ожидается ErrMissingService", err)
	}
}

func TestRunScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.sync.RunScheduled(ctx)
	if err != nil || res != nil {
		t.Fatalf("RunScheduled() при выключенной автосинхронизации = %+v, %v", res, err)
	}
	if env.state.saved != nil {
		t.Error("пропущенный запуск сохранил состояние")
	}

	env.host.config[cfgAutoSync] = "1"
	res, err = env.sync.RunScheduled(ctx)
	if err != nil {
		t.Fatalf("RunScheduled() ошибка: %v", err)
	}
	if res == nil || res.Synced != 1 {
		t.Errorf("RunScheduled() = %+v, ожидается synced=1", res)
	}

	st, err := env.sync.State(ctx)
	if err != nil {
		t.Fatalf("State() ошибка: %v", err)
	}
	if st.LastSynced != 1 || st.LastSyncAt == nil {
		t.Errorf("State() = %+v", st)
	}
}

func TestSyncService_StartStop(t *testing.T) {
	env := newTestEnv(t)

	bad := NewSyncService(env.engine, env.settings, env.state, "not a schedule", testLogger())
	if err := bad.Start(context.Background()); err == nil {
		t.Error("Start() с некорректным расписанием не вернул ошибку")
	}
	bad.Stop()

	if err := env.sync.Start(context.Background()); err != nil {
		t.Fatalf("Start() ошибка: %v", err)
	}
	env.sync.Stop()
}

func TestKeyMap(t *testing.T) {
	km := NewKeyMap([]panel.Key{
		{MCPKey: "a", MoodleToken: "t2"},
		{MCPKey: "b", MoodleToken: ""},
		{MCPKey: "c", MoodleToken: "t1"},
	})
	if km.Len() != 2 {
		t.Errorf("Len() = %d, хотели 2 (ключ без токена пропускается)", km.Len())
	}
	if !slices.Equal(km.Tokens(), []string{"t1", "t2"}) {
		t.Errorf("Tokens() = %v", km.Tokens())
	}
	if k, ok := km.Get("t2"); !ok || k.MCPKey != "a" {
		t.Errorf("Get(t2) = %+v, %v", k, ok)
	}
	km.Put(panel.Key{MCPKey: "d", MoodleToken: "t2"})
	if k, _ := km.Get("t2"); k.MCPKey != "d" {
		t.Errorf("Put не заменил ключ: %+v", k)
	}
	km.Remove("t2")
	if _, ok := km.Get("t2"); ok {
		t.Error("Remove не удалил ключ")
	}
}
