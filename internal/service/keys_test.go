package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
)

// seedKeyOwner создаёт пользователя 3 с ключом mcp-1 и ручной ключ панели.
func seedKeyOwner(t *testing.T, env *testEnv, courseRoles ...string) *panel.Key {
	t.Helper()
	env.host.addUser(model.User{ID: 3, Username: "ivanov", FirstName: "Иван", Email: "ivanov@example.com"})
	env.host.courseRoles[3] = courseRoles
	env.panel.keys["manual-1"] = &panel.Key{MCPKey: "manual-1", MoodleToken: "manual", Status: panel.StatusActive}

	res, err := env.engine.Reconcile(context.Background(), env.snapshot(t), env.user(t, 3), nil, "", false)
	if err != nil {
		t.Fatalf("Reconcile() ошибка: %v", err)
	}
	if res.Key == nil {
		t.Fatal("Reconcile() не создал ключ")
	}
	return res.Key
}

func TestKeys_ListFiltersAndCaches(t *testing.T) {
	env := newTestEnv(t)
	seedKeyOwner(t, env, "student")
	ctx := context.Background()

	keys, err := env.keys.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(keys) != 1 || keys[0].MCPKey != "mcp-1" {
		t.Fatalf("List() = %+v, ожидается только mcp-1", keys)
	}

	calls := env.panel.listCalls
	if _, err := env.keys.List(ctx); err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if env.panel.listCalls != calls {
		t.Error("повторный List() обратился к панели, ожидался кэш")
	}

	if err := env.keys.Suspend(ctx, "mcp-1"); err != nil {
		t.Fatalf("Suspend() ошибка: %v", err)
	}
	keys, err = env.keys.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if env.panel.listCalls != calls+1 {
		t.Error("кэш не сброшен после Suspend()")
	}
	if keys[0].Status != panel.StatusSuspended {
		t.Errorf("статус = %q, хотели suspended", keys[0].Status)
	}

	if err := env.keys.Activate(ctx, "mcp-1"); err != nil {
		t.Fatalf("Activate() ошибка: %v", err)
	}
	if env.panel.keys["mcp-1"].Status != panel.StatusActive {
		t.Error("ключ не возобновлён")
	}
}

func TestKeys_RevokeDropsOwnerAccess(t *testing.T) {
	env := newTestEnv(t)
	seedKeyOwner(t, env, "editingteacher", "student")
	ctx := context.Background()

	if err := env.keys.Revoke(ctx, "mcp-1"); err != nil {
		t.Fatalf("Revoke() ошибка: %v", err)
	}
	if env.panel.keys["mcp-1"].Status != panel.StatusRevoked {
		t.Error("ключ не отозван в панели")
	}
	if got := env.host.userTokens(3); len(got) != 0 {
		t.Errorf("токены после отзыва: %+v", got)
	}
	if got := env.assigned(3); len(got) != 0 {
		t.Errorf("назначения после отзыва: %v", got)
	}
}

func TestKeys_Delete(t *testing.T) {
	t.Run("ключ удалённого пользователя", func(t *testing.T) {
		env := newTestEnv(t)
		key := seedKeyOwner(t, env, "student")
		env.host.users[3].Deleted = true

		if err := env.keys.Delete(context.Background(), "mcp-1"); err != nil {
			t.Fatalf("Delete() ошибка: %v", err)
		}
		if _, ok := env.panel.keys["mcp-1"]; ok {
			t.Error("ключ остался в панели")
		}
		for _, tk := range env.host.tokens {
			if tk.Token == key.MoodleToken {
				t.Error("токен удалённого пользователя не удалён")
			}
		}
	})

	t.Run("ключ создан вручную", func(t *testing.T) {
		env := newTestEnv(t)
		seedKeyOwner(t, env, "student")

		if err := env.keys.Delete(context.Background(), "manual-1"); err != nil {
			t.Fatalf("Delete() ошибка: %v", err)
		}
		if _, ok := env.panel.keys["manual-1"]; ok {
			t.Error("ручной ключ остался в панели")
		}
		if len(env.host.userTokens(3)) != 1 {
			t.Error("удаление чужого ключа затронуло токены пользователя")
		}
	})

	t.Run("ключа нет в панели", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.keys.Delete(context.Background(), "nope")
		var perr *panel.Error
		if !errors.As(err, &perr) {
			t.Errorf("Delete(nope) ошибка = %v, ожидается ошибка панели", err)
		}
	})
}

func TestKeys_Send(t *testing.T) {
	env := newTestEnv(t)
	seedKeyOwner(t, env, "student")
	ctx := context.Background()

	if err := env.keys.Send(ctx, "mcp-1"); err != nil {
		t.Fatalf("Send() ошибка: %v", err)
	}
	if len(env.mail.sent) != 1 || env.mail.sent[0].To != "ivanov@example.com" {
		t.Fatalf("письма: %+v", env.mail.sent)
	}
	if !slices.Equal(env.panel.sent, []string{"mcp-1"}) {
		t.Errorf("отмечены отправленными: %v", env.panel.sent)
	}

	env.mail.err = errors.New("smtp недоступен")
	if err := env.keys.Send(ctx, "mcp-1"); !errors.Is(err, ErrValidation) {
		t.Errorf("Send() при сбое почты ошибка = %v, ожидается ErrValidation", err)
	}
	if err := env.keys.Send(ctx, "manual-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Send(manual-1) ошибка = %v, ожидается ErrNotFound", err)
	}
}

func TestKeys_Regenerate(t *testing.T) {
	env := newTestEnv(t)
	old := seedKeyOwner(t, env, "editingteacher", "student")
	env.host.config[cfgAutoEmail] = "1"
	ctx := context.Background()

	res, err := env.keys.Regenerate(ctx, "mcp-1", "2027-01-31")
	if err != nil {
		t.Fatalf("Regenerate() ошибка: %v", err)
	}
	if res.Key.MCPKey == old.MCPKey {
		t.Error("ключ не перевыпущен")
	}
	if _, ok := env.panel.keys[old.MCPKey]; ok {
		t.Error("старый ключ остался в панели")
	}
	if !slices.Equal(res.Key.MoodleRoles, []string{"editingteacher"}) {
		t.Errorf("роли нового ключа = %v, хотели [editingteacher]", res.Key.MoodleRoles)
	}
	if res.Key.ExpiresOn != "2027-01-31" {
		t.Errorf("срок действия = %q", res.Key.ExpiresOn)
	}

	tokens := env.host.userTokens(3)
	if len(tokens) != 1 || tokens[0].ServiceID != env.host.serviceID(t, svcEditingTeacher) {
		t.Fatalf("токены = %+v, ожидается один токен editingteacher", tokens)
	}
	if tokens[0].Token == old.MoodleToken || tokens[0].Token != res.Key.MoodleToken {
		t.Errorf("токен не перевыпущен: %q", tokens[0].Token)
	}
	if !res.Emailed || len(env.mail.sent) != 1 {
		t.Errorf("emailed = %v, писем %d", res.Emailed, len(env.mail.sent))
	}
}

func TestKeys_RegenerateDeleteFailure(t *testing.T) {
	env := newTestEnv(t)
	old := seedKeyOwner(t, env, "student")
	env.panel.deleteErr = &panel.Error{Code: panel.CodeTransport, Message: "timeout"}

	res, err := env.keys.Regenerate(context.Background(), "mcp-1", "")
	if err != nil {
		t.Fatalf("Regenerate() ошибка: %v", err)
	}
	if res.Key == nil || res.Key.MCPKey == old.MCPKey {
		t.Errorf("ключ не перевыпущен: %+v", res.Key)
	}
	tokens := env.host.userTokens(3)
	if len(tokens) != 1 || tokens[0].Token != res.Key.MoodleToken {
		t.Errorf("токены = %+v, ожидается один новый токен", tokens)
	}
}

func TestKeys_RegenerateErrors(t *testing.T) {
	env := newTestEnv(t)
	seedKeyOwner(t, env, "student")
	ctx := context.Background()

	if _, err := env.keys.Regenerate(ctx, "mcp-1", "31.01.2027"); !errors.Is(err, ErrValidation) {
		t.Errorf("некорректная дата: ошибка = %v, ожидается ErrValidation", err)
	}
	if _, err := env.keys.Regenerate(ctx, "nope", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("неизвестный ключ: ошибка = %v, ожидается ErrNotFound", err)
	}

	env.host.config[cfgLicenseStatus] = panel.LicenseError
	if _, err := env.keys.Regenerate(ctx, "mcp-1", ""); !errors.Is(err, ErrInvalidLicense) {
		t.Errorf("без лицензии: ошибка = %v, ожидается ErrInvalidLicense", err)
	}
	if _, err := env.keys.List(ctx); !errors.Is(err, ErrInvalidLicense) {
		t.Errorf("List() без лицензии: ошибка = %v, ожидается ErrInvalidLicense", err)
	}
}
