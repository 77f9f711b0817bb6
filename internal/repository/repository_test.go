package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/goartstore/mcp-sync/internal/config"
	"github.com/bigkaa/goartstore/mcp-sync/internal/database"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
)

const testPrefix = "mdl_"

// setupTestDB запускает PostgreSQL контейнер, применяет миграции модуля
// и создаёт таблицы хост-системы из testdata/host_schema.sql.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("moodle_test"),
		postgres.WithUsername("moodle"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("MS_DB_HOST", host)
	t.Setenv("MS_DB_PORT", port.Port())
	t.Setenv("MS_DB_NAME", "moodle_test")
	t.Setenv("MS_DB_USER", "moodle")
	t.Setenv("MS_DB_PASSWORD", "test-password")
	t.Setenv("MS_DB_SSL_MODE", "disable")
	t.Setenv("MS_SITE_URL", "http://lms.test")
	t.Setenv("MS_ADMIN_TOKEN", "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	schema, err := os.ReadFile("testdata/host_schema.sql")
	if err != nil {
		t.Fatalf("Не удалось прочитать схему хост-системы: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Ошибка создания таблиц хост-системы: %v", err)
	}

	return pool
}

// createService создаёт сервис модуля для тестов.
func createService(t *testing.T, store *Store, shortname string) int64 {
	t.Helper()
	svc := &model.Service{
		Name:            shortname,
		Shortname:       shortname,
		Component:       "local_moodlemcp",
		Enabled:         true,
		RestrictedUsers: true,
	}
	if err := store.Services.Create(context.Background(), svc); err != nil {
		t.Fatalf("Create(%s) ошибка: %v", shortname, err)
	}
	return svc.ID
}

func TestHostSQLPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		in     string
		want   string
	}{
		{"mdl_", "SELECT * FROM {user} u JOIN {role_assignments} ra", "SELECT * FROM mdl_user u JOIN mdl_role_assignments ra"},
		{"", "DELETE FROM {external_tokens}", "DELETE FROM external_tokens"},
		{"m_", "SELECT '{Not}' FROM {config}", "SELECT '{Not}' FROM m_config"},
	}
	for _, tt := range tests {
		got := hostSQL{prefix: tt.prefix}.q(tt.in)
		if got != tt.want {
			t.Errorf("q(%q) = %q, хотели %q", tt.in, got, tt.want)
		}
	}
}

func TestParseIDList(t *testing.T) {
	got := parseIDList(" 2, 5,abc,,5,-1,7")
	want := []int64{2, 5, 7}
	if !slices.Equal(got, want) {
		t.Errorf("parseIDList() = %v, хотели %v", got, want)
	}
	if ids := parseIDList(""); len(ids) != 0 {
		t.Errorf("parseIDList(\"\") = %v, ожидается пустой список", ids)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_a\b`); got != `50\%\_a\\b` {
		t.Errorf("escapeLike() = %q", got)
	}
}

// --- Тесты ServiceRepository ---

func TestServiceCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool, testPrefix)

	id := createService(t, store, "moodlemcp_student")

	got, err := store.Services.GetByShortname(ctx, "moodlemcp_student")
	if err != nil {
		t.Fatalf("GetByShortname() ошибка: %v", err)
	}
	if got.ID != id || !got.Enabled || !got.RestrictedUsers || got.Component != "local_moodlemcp" {
		t.Errorf("GetByShortname() = %+v", got)
	}

	// Повторное создание — конфликт уникальности
	dup := &model.Service{Name: "moodlemcp_student", Shortname: "moodlemcp_student"}
	if err := store.Services.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("повторный Create() = %v, хотели ErrConflict", err)
	}

	if _, err := store.Services.GetByShortname(ctx, "moodlemcp_unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByShortname(unknown) = %v, хотели ErrNotFound", err)
	}

	list, err := store.Services.ListByShortnames(ctx, []string{"moodlemcp_student", "moodlemcp_admin"})
	if err != nil {
		t.Fatalf("ListByShortnames() ошибка: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListByShortnames() вернул %d записей, хотели 1", len(list))
	}

	// Функции
	fns := []string{"core_webservice_get_site_info", "core_course_get_courses"}
	if err := store.Services.ReplaceFunctions(ctx, id, fns); err != nil {
		t.Fatalf("ReplaceFunctions() ошибка: %v", err)
	}
	gotFns, err := store.Services.ListFunctions(ctx, id)
	if err != nil {
		t.Fatalf("ListFunctions() ошибка: %v", err)
	}
	if !slices.Equal(gotFns, []string{"core_course_get_courses", "core_webservice_get_site_info"}) {
		t.Errorf("ListFunctions() = %v", gotFns)
	}
	if err := store.Services.ReplaceFunctions(ctx, id, nil); err != nil {
		t.Fatalf("ReplaceFunctions(nil) ошибка: %v", err)
	}
	gotFns, _ = store.Services.ListFunctions(ctx, id)
	if len(gotFns) != 0 {
		t.Errorf("после очистки ListFunctions() = %v", gotFns)
	}

	ext, err := store.Services.ListExternalFunctions(ctx)
	if err != nil {
		t.Fatalf("ListExternalFunctions() ошибка: %v", err)
	}
	if len(ext) != 2 {
		t.Errorf("ListExternalFunctions() вернул %d записей, хотели 2", len(ext))
	}

	if err := store.Services.Delete(ctx, []int64{id}); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := store.Services.GetByShortname(ctx, "moodlemcp_student"); !errors.Is(err, ErrNotFound) {
		t.Errorf("после Delete ожидали ErrNotFound, получили: %v", err)
	}
}

// --- Тесты GrantRepository и TokenRepository ---

func TestGrantsAndTokens(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool, testPrefix)

	student := createService(t, store, "moodlemcp_student")
	teacher := createService(t, store, "moodlemcp_teacher")
	ids := []int64{student, teacher}

	created, err := store.Grants.Authorize(ctx, 3, student)
	if err != nil || !created {
		t.Fatalf("Authorize() = %v, %v, хотели true", created, err)
	}
	created, err = store.Grants.Authorize(ctx, 3, student)
	if err != nil || created {
		t.Fatalf("повторный Authorize() = %v, %v, хотели false", created, err)
	}
	if _, err := store.Grants.Authorize(ctx, 3, teacher); err != nil {
		t.Fatalf("Authorize(teacher) ошибка: %v", err)
	}

	assigned, err := store.Grants.ListAssignedServiceIDs(ctx, 3, ids)
	if err != nil {
		t.Fatalf("ListAssignedServiceIDs() ошибка: %v", err)
	}
	if len(assigned) != 2 {
		t.Errorf("ListAssignedServiceIDs() = %v, хотели 2 сервиса", assigned)
	}

	users, err := store.Grants.ListAssignedUserIDs(ctx, student)
	if err != nil {
		t.Fatalf("ListAssignedUserIDs() ошибка: %v", err)
	}
	if !slices.Equal(users, []int64{3}) {
		t.Errorf("ListAssignedUserIDs() = %v, хотели [3]", users)
	}

	// Токены
	for _, sid := range ids {
		tok := &model.Token{Token: "tok-" + time.Now().Format("150405.000000000"), UserID: 3, ServiceID: sid}
		if err := store.Tokens.Create(ctx, tok, 1, 2); err != nil {
			t.Fatalf("Token Create() ошибка: %v", err)
		}
		if tok.ID == 0 {
			t.Error("ID токена не установлен")
		}
	}

	studentToks, err := store.Tokens.ListForUser(ctx, 3, []int64{student})
	if err != nil || len(studentToks) != 1 {
		t.Fatalf("ListForUser(student) = %+v, %v", studentToks, err)
	}
	got := studentToks[0]
	byValue, err := store.Tokens.GetByValue(ctx, got.Token)
	if err != nil || byValue.UserID != 3 {
		t.Fatalf("GetByValue() = %+v, %v", byValue, err)
	}
	if _, err := store.Tokens.GetByValue(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByValue(\"\") = %v, хотели ErrNotFound", err)
	}

	if err := store.Tokens.DeleteForUserExcept(ctx, 3, student, ids); err != nil {
		t.Fatalf("DeleteForUserExcept() ошибка: %v", err)
	}
	toks, _ := store.Tokens.ListForUser(ctx, 3, ids)
	if len(toks) != 1 || toks[0].ServiceID != student {
		t.Errorf("после DeleteForUserExcept остались токены %+v", toks)
	}

	if err := store.Tokens.DeleteByValue(ctx, got.Token); err != nil {
		t.Fatalf("DeleteByValue() ошибка: %v", err)
	}
	if _, err := store.Tokens.GetByValue(ctx, got.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("после DeleteByValue ожидали ErrNotFound, получили: %v", err)
	}

	removed, err := store.Grants.Unassign(ctx, 3, teacher)
	if err != nil || !removed {
		t.Fatalf("Unassign() = %v, %v", removed, err)
	}
	removed, _ = store.Grants.Unassign(ctx, 3, teacher)
	if removed {
		t.Error("повторный Unassign() вернул true")
	}

	if err := store.Grants.UnassignAll(ctx, 3, ids); err != nil {
		t.Fatalf("UnassignAll() ошибка: %v", err)
	}
	assigned, _ = store.Grants.ListAssignedServiceIDs(ctx, 3, ids)
	if len(assigned) != 0 {
		t.Errorf("после UnassignAll назначения: %v", assigned)
	}
}

// --- Тесты UserRepository, SiteRepository, RoleQuery ---

func TestUsersAndSite(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool, testPrefix)

	u, err := store.Users.GetByID(ctx, 4)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if !u.Suspended || u.Active() {
		t.Errorf("пользователь 4 должен быть заблокирован: %+v", u)
	}
	if _, err := store.Users.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(999) = %v, хотели ErrNotFound", err)
	}

	guest, err := store.Site.GuestID(ctx)
	if err != nil || guest != 1 {
		t.Fatalf("GuestID() = %d, %v, хотели 1", guest, err)
	}
	admins, err := store.Site.SiteAdminIDs(ctx)
	if err != nil || !slices.Equal(admins, []int64{2}) {
		t.Fatalf("SiteAdminIDs() = %v, %v", admins, err)
	}
	sysctx, err := store.Site.SystemContextID(ctx)
	if err != nil || sysctx != 1 {
		t.Fatalf("SystemContextID() = %d, %v", sysctx, err)
	}

	active, err := store.Users.ListActive(ctx, guest)
	if err != nil {
		t.Fatalf("ListActive() ошибка: %v", err)
	}
	var activeIDs []int64
	for _, u := range active {
		activeIDs = append(activeIDs, u.ID)
	}
	// Удалённый (5) и гость (1) исключены, заблокированный (4) остаётся
	if !slices.Equal(activeIDs, []int64{2, 3, 4, 6}) {
		t.Errorf("ListActive() = %v", activeIDs)
	}

	svc := createService(t, store, "moodlemcp_user")
	candidates, err := store.Users.SearchCandidates(ctx, svc, guest, "")
	if err != nil {
		t.Fatalf("SearchCandidates() ошибка: %v", err)
	}
	// Только подтверждённые и незаблокированные: 2 и 3
	if len(candidates) != 2 {
		t.Errorf("SearchCandidates() вернул %d записей, хотели 2", len(candidates))
	}

	found, err := store.Users.SearchCandidates(ctx, svc, guest, "IVAN example")
	if err != nil {
		t.Fatalf("SearchCandidates(search) ошибка: %v", err)
	}
	if len(found) != 1 || found[0].ID != 3 {
		t.Errorf("SearchCandidates(IVAN example) = %+v", found)
	}

	if _, err := store.Grants.Authorize(ctx, 3, svc); err != nil {
		t.Fatalf("Authorize() ошибка: %v", err)
	}
	candidates, _ = store.Users.SearchCandidates(ctx, svc, guest, "")
	if len(candidates) != 1 || candidates[0].ID != 2 {
		t.Errorf("назначенный пользователь не должен быть кандидатом: %+v", candidates)
	}
	assigned, err := store.Users.ListAssigned(ctx, svc, "")
	if err != nil || len(assigned) != 1 || assigned[0].ID != 3 {
		t.Errorf("ListAssigned() = %+v, %v", assigned, err)
	}
}

func TestRoleQuery(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	// Пользователь 3: manager в системе, student в курсе
	_, err := pool.Exec(ctx, `
		INSERT INTO mdl_role_assignments (roleid, contextid, userid)
		SELECT r.id, 1, 3 FROM mdl_role r WHERE r.shortname = 'manager'
		UNION ALL
		SELECT r.id, 2, 3 FROM mdl_role r WHERE r.shortname = 'student'`)
	if err != nil {
		t.Fatalf("ошибка назначения ролей: %v", err)
	}

	rq := NewRoleQuery(pool, testPrefix)

	tests := []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"admin 2", func() (bool, error) { return rq.IsSiteAdmin(ctx, 2) }, true},
		{"admin 3", func() (bool, error) { return rq.IsSiteAdmin(ctx, 3) }, false},
		{"system manager", func() (bool, error) { return rq.HasSystemRole(ctx, 3, "manager") }, true},
		{"course manager", func() (bool, error) { return rq.HasCourseRole(ctx, 3, "manager") }, false},
		{"course student", func() (bool, error) { return rq.HasCourseRole(ctx, 3, "student") }, true},
		{"course teacher", func() (bool, error) { return rq.HasCourseRole(ctx, 3, "teacher", "noneditingteacher") }, false},
		{"no shortnames", func() (bool, error) { return rq.HasCourseRole(ctx, 3) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			if err != nil {
				t.Fatalf("ошибка: %v", err)
			}
			if got != tt.want {
				t.Errorf("= %v, хотели %v", got, tt.want)
			}
		})
	}
}

// --- Тесты PluginConfigRepository ---

func TestPluginConfig(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPluginConfigRepository(pool, testPrefix)

	if _, err := repo.Get(ctx, "auto_sync"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() до Set = %v, хотели ErrNotFound", err)
	}
	if err := repo.SetIfAbsent(ctx, "auto_sync", "0"); err != nil {
		t.Fatalf("SetIfAbsent() ошибка: %v", err)
	}
	if err := repo.SetIfAbsent(ctx, "auto_sync", "1"); err != nil {
		t.Fatalf("повторный SetIfAbsent() ошибка: %v", err)
	}
	if v, _ := repo.Get(ctx, "auto_sync"); v != "0" {
		t.Errorf("SetIfAbsent перезаписал значение: %q", v)
	}
	if err := repo.Set(ctx, "auto_sync", "1"); err != nil {
		t.Fatalf("Set() ошибка: %v", err)
	}
	if v, _ := repo.Get(ctx, "auto_sync"); v != "1" {
		t.Errorf("Get() = %q, хотели \"1\"", v)
	}
	_ = repo.Set(ctx, "license_key", "LIC")

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List() = %v, %v", list, err)
	}
	if err := repo.Unset(ctx, "license_key"); err != nil {
		t.Fatalf("Unset() ошибка: %v", err)
	}
	if err := repo.Unset(ctx, "license_key"); err != nil {
		t.Fatalf("повторный Unset() ошибка: %v", err)
	}
	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() ошибка: %v", err)
	}
	list, _ = repo.List(ctx)
	if len(list) != 0 {
		t.Errorf("после DeleteAll осталось %d настроек", len(list))
	}
}

// --- Тесты TaskRepository и SyncStateRepository ---

func TestTaskQueue(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool)

	payload, _ := json.Marshal(model.TaskPayload{UserID: 3, ServiceFilter: "moodlemcp_student"})
	task := &model.Task{Kind: model.TaskSyncUser, Payload: payload}
	if err := repo.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue() ошибка: %v", err)
	}
	if task.ID == "" || task.Status != model.TaskStatusPending {
		t.Fatalf("Enqueue() не заполнил поля: %+v", task)
	}

	// Отложенная задача не должна забираться
	later := &model.Task{Kind: model.TaskSyncAllUsers, RunAfter: time.Now().Add(time.Hour)}
	if err := repo.Enqueue(ctx, later); err != nil {
		t.Fatalf("Enqueue(later) ошибка: %v", err)
	}

	claimed, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("ClaimNext() ошибка: %v", err)
	}
	if claimed.ID != task.ID || claimed.Attempts != 1 || claimed.Status != model.TaskStatusRunning {
		t.Errorf("ClaimNext() = %+v", claimed)
	}
	var p model.TaskPayload
	if err := json.Unmarshal(claimed.Payload, &p); err != nil || p.UserID != 3 {
		t.Errorf("payload = %s, %v", claimed.Payload, err)
	}

	if _, err := repo.ClaimNext(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("ClaimNext() на пустой очереди = %v, хотели ErrNotFound", err)
	}

	if err := repo.Retry(ctx, claimed.ID, time.Now().Add(-time.Second), "panel unavailable"); err != nil {
		t.Fatalf("Retry() ошибка: %v", err)
	}
	again, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("ClaimNext() после Retry ошибка: %v", err)
	}
	if again.Attempts != 2 || again.LastError == nil || *again.LastError != "panel unavailable" {
		t.Errorf("после Retry: %+v", again)
	}
	if err := repo.Complete(ctx, again.ID); err != nil {
		t.Fatalf("Complete() ошибка: %v", err)
	}
	if err := repo.Fail(ctx, "00000000-0000-0000-0000-000000000000", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fail(unknown) = %v, хотели ErrNotFound", err)
	}

	done := model.TaskStatusDone
	list, err := repo.List(ctx, &done, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("List(done) = %v, %v", list, err)
	}
	all, _ := repo.List(ctx, nil, 0)
	if len(all) != 2 {
		t.Errorf("List() вернул %d задач, хотели 2", len(all))
	}
}

func TestSyncState(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSyncStateRepository(pool)

	state, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if state.LastSyncAt != nil {
		t.Errorf("LastSyncAt = %v, ожидается nil", state.LastSyncAt)
	}

	res := &model.SyncResult{Synced: 5, Added: 2, Removed: 1, Revoked: 1,
		FirstError: "boom", CompletedAt: time.Now()}
	if err := repo.Save(ctx, res); err != nil {
		t.Fatalf("Save() ошибка: %v", err)
	}
	state, _ = repo.Get(ctx)
	if state.LastSynced != 5 || state.LastAdded != 2 || state.LastSyncAt == nil {
		t.Errorf("после Save: %+v", state)
	}
	if state.LastError == nil || *state.LastError != "boom" {
		t.Errorf("LastError = %v, хотели boom", state.LastError)
	}
}

func TestStoreTxRunnerRollback(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(pool, testPrefix)
	svc := createService(t, store, "moodlemcp_student")

	runner := NewStoreTxRunner(pool, testPrefix)
	boom := errors.New("boom")
	err := runner.WithinTx(ctx, func(tx *Store) error {
		if _, err := tx.Grants.Authorize(ctx, 3, svc); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() = %v, хотели boom", err)
	}
	assigned, _ := store.Grants.ListAssignedServiceIDs(ctx, 3, []int64{svc})
	if len(assigned) != 0 {
		t.Errorf("после отката остались назначения: %v", assigned)
	}
}
