package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/rbac"
	"github.com/bigkaa/goartstore/mcp-sync/internal/mailer"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Хост-система в памяти ---

type grantKey struct {
	userID, serviceID int64
}

// fakeHost — таблицы хост-системы в памяти.
type fakeHost struct {
	services    map[int64]*model.Service
	nextService int64
	grants      map[grantKey]bool
	tokens      []model.Token
	nextToken   int64
	users       map[int64]*model.User
	admins      []int64
	guestID     int64
	sysContext  int64
	config      map[string]string
	functions   []model.ExternalFunction

	systemRoles map[int64][]string
	courseRoles map[int64][]string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		services:   map[int64]*model.Service{},
		grants:     map[grantKey]bool{},
		users:      map[int64]*model.User{},
		guestID:    1,
		sysContext: 1,
		config:     map[string]string{},
		functions: []model.ExternalFunction{
			{Name: "core_course_get_courses", Component: "moodle"},
			{Name: "core_user_get_users", Component: "moodle"},
		},
		systemRoles: map[int64][]string{},
		courseRoles: map[int64][]string{},
	}
}

// clone — глубокая копия состояния для отката транзакции.
func (h *fakeHost) clone() *fakeHost {
	c := *h
	c.services = make(map[int64]*model.Service, len(h.services))
	for id, s := range h.services {
		cp := *s
		cp.Functions = slices.Clone(s.Functions)
		c.services[id] = &cp
	}
	c.grants = maps.Clone(h.grants)
	c.tokens = slices.Clone(h.tokens)
	c.users = make(map[int64]*model.User, len(h.users))
	for id, u := range h.users {
		cp := *u
		c.users[id] = &cp
	}
	c.admins = slices.Clone(h.admins)
	c.config = maps.Clone(h.config)
	return &c
}

func (h *fakeHost) addUser(u model.User) {
	if !u.Deleted {
		u.Confirmed = true
	}
	h.users[u.ID] = &u
}

func (h *fakeHost) store() *repository.Store {
	return &repository.Store{
		Services: fakeServices{h},
		Grants:   fakeGrants{h},
		Tokens:   fakeTokens{h},
		Users:    fakeUsers{h},
		Site:     fakeSite{h},
		Config:   fakeConfig{h},
	}
}

func (h *fakeHost) serviceID(t *testing.T, shortname string) int64 {
	t.Helper()
	for id, s := range h.services {
		if s.Shortname == shortname {
			return id
		}
	}
	t.Fatalf("сервис %s не найден", shortname)
	return 0
}

func (h *fakeHost) userTokens(userID int64) []model.Token {
	var out []model.Token
	for _, tk := range h.tokens {
		if tk.UserID == userID {
			out = append(out, tk)
		}
	}
	return out
}

// RoleQuery

func (h *fakeHost) IsSiteAdmin(_ context.Context, userID int64) (bool, error) {
	return slices.Contains(h.admins, userID), nil
}

func (h *fakeHost) HasSystemRole(_ context.Context, userID int64, shortnames ...string) (bool, error) {
	return hasAny(h.systemRoles[userID], shortnames), nil
}

func (h *fakeHost) HasCourseRole(_ context.Context, userID int64, shortnames ...string) (bool, error) {
	return hasAny(h.courseRoles[userID], shortnames), nil
}

func hasAny(assigned, wanted []string) bool {
	for _, w := range wanted {
		if slices.Contains(assigned, w) {
			return true
		}
	}
	return false
}

// fakeTx откатывает состояние хоста при ошибке fn.
type fakeTx struct {
	h *fakeHost
}

func (f fakeTx) WithinTx(_ context.Context, fn func(*repository.Store) error) error {
	saved := f.h.clone()
	if err := fn(f.h.store()); err != nil {
		*f.h = *saved
		return err
	}
	return nil
}

// services

type fakeServices struct{ h *fakeHost }

func (f fakeServices) GetByShortname(_ context.Context, shortname string) (*model.Service, error) {
	for _, s := range f.h.services {
		if s.Shortname == shortname {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeServices) ListByShortnames(_ context.Context, shortnames []string) ([]model.Service, error) {
	var out []model.Service
	for _, s := range f.h.services {
		if slices.Contains(shortnames, s.Shortname) {
			out = append(out, *s)
		}
	}
	slices.SortFunc(out, func(a, b model.Service) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f fakeServices) Create(_ context.Context, svc *model.Service) error {
	for _, s := range f.h.services {
		if s.Shortname == svc.Shortname {
			return repository.ErrConflict
		}
	}
	f.h.nextService++
	svc.ID = f.h.nextService
	cp := *svc
	f.h.services[svc.ID] = &cp
	return nil
}

func (f fakeServices) Delete(_ context.Context, ids []int64) error {
	for _, id := range ids {
		delete(f.h.services, id)
	}
	return nil
}

func (f fakeServices) ListFunctions(_ context.Context, serviceID int64) ([]string, error) {
	if s, ok := f.h.services[serviceID]; ok {
		return slices.Clone(s.Functions), nil
	}
	return nil, nil
}

func (f fakeServices) ReplaceFunctions(_ context.Context, serviceID int64, functions []string) error {
	if s, ok := f.h.services[serviceID]; ok {
		s.Functions = slices.Clone(functions)
	}
	return nil
}

func (f fakeServices) DeleteFunctions(_ context.Context, serviceIDs []int64) error {
	for _, id := range serviceIDs {
		if s, ok := f.h.services[id]; ok {
			s.Functions = nil
		}
	}
	return nil
}

func (f fakeServices) ListExternalFunctions(context.Context) ([]model.ExternalFunction, error) {
	return slices.Clone(f.h.functions), nil
}

// grants

type fakeGrants struct{ h *fakeHost }

func (f fakeGrants) Authorize(_ context.Context, userID, serviceID int64) (bool, error) {
	k := grantKey{userID, serviceID}
	if f.h.grants[k] {
		return false, nil
	}
	f.h.grants[k] = true
	return true, nil
}

func (f fakeGrants) Unassign(_ context.Context, userID, serviceID int64) (bool, error) {
	k := grantKey{userID, serviceID}
	if !f.h.grants[k] {
		return false, nil
	}
	delete(f.h.grants, k)
	return true, nil
}

func (f fakeGrants) UnassignAll(_ context.Context, userID int64, serviceIDs []int64) error {
	for _, id := range serviceIDs {
		delete(f.h.grants, grantKey{userID, id})
	}
	return nil
}

func (f fakeGrants) ListAssignedServiceIDs(_ context.Context, userID int64, serviceIDs []int64) ([]int64, error) {
	var out []int64
	for _, id := range serviceIDs {
		if f.h.grants[grantKey{userID, id}] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f fakeGrants) ListAssignedUserIDs(_ context.Context, serviceID int64) ([]int64, error) {
	var out []int64
	for k := range f.h.grants {
		if k.serviceID == serviceID {
			out = append(out, k.userID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (f fakeGrants) DeleteByServices(_ context.Context, serviceIDs []int64) error {
	for k := range f.h.grants {
		if slices.Contains(serviceIDs, k.serviceID) {
			delete(f.h.grants, k)
		}
	}
	return nil
}

// tokens

type fakeTokens struct{ h *fakeHost }

func (f fakeTokens) GetByValue(_ context.Context, token string) (*model.Token, error) {
	for _, tk := range f.h.tokens {
		if token != "" && tk.Token == token {
			cp := tk
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeTokens) ListForUser(_ context.Context, userID int64, serviceIDs []int64) ([]model.Token, error) {
	var out []model.Token
	for _, tk := range f.h.tokens {
		if tk.UserID == userID && slices.Contains(serviceIDs, tk.ServiceID) {
			out = append(out, tk)
		}
	}
	return out, nil
}

func (f fakeTokens) Create(_ context.Context, t *model.Token, _, _ int64) error {
	for _, tk := range f.h.tokens {
		if tk.Token == t.Token {
			return repository.ErrConflict
		}
	}
	f.h.nextToken++
	t.ID = f.h.nextToken
	f.h.tokens = append(f.h.tokens, *t)
	return nil
}

func (f fakeTokens) deleteWhere(pred func(model.Token) bool) {
	f.h.tokens = slices.DeleteFunc(f.h.tokens, pred)
}

func (f fakeTokens) DeleteForUser(_ context.Context, userID, serviceID int64) error {
	f.deleteWhere(func(tk model.Token) bool { return tk.UserID == userID && tk.ServiceID == serviceID })
	return nil
}

func (f fakeTokens) DeleteForUserExcept(_ context.Context, userID, keep int64, serviceIDs []int64) error {
	f.deleteWhere(func(tk model.Token) bool {
		return tk.UserID == userID && tk.ServiceID != keep && slices.Contains(serviceIDs, tk.ServiceID)
	})
	return nil
}

func (f fakeTokens) DeleteForUserServices(_ context.Context, userID int64, serviceIDs []int64) error {
	f.deleteWhere(func(tk model.Token) bool {
		return tk.UserID == userID && slices.Contains(serviceIDs, tk.ServiceID)
	})
	return nil
}

func (f fakeTokens) DeleteByValue(_ context.Context, token string) error {
	f.deleteWhere(func(tk model.Token) bool { return token != "" && tk.Token == token })
	return nil
}

func (f fakeTokens) DeleteByServices(_ context.Context, serviceIDs []int64) error {
	f.deleteWhere(func(tk model.Token) bool { return slices.Contains(serviceIDs, tk.ServiceID) })
	return nil
}

// users

type fakeUsers struct{ h *fakeHost }

func (f fakeUsers) sorted(pred func(*model.User) bool) []model.User {
	var out []model.User
	for _, u := range f.h.users {
		if pred(u) {
			out = append(out, *u)
		}
	}
	slices.SortFunc(out, func(a, b model.User) int { return int(a.ID - b.ID) })
	return out
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.h.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) ListByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	return f.sorted(func(u *model.User) bool { return slices.Contains(ids, u.ID) }), nil
}

func (f fakeUsers) ListActive(_ context.Context, excludeID int64) ([]model.User, error) {
	return f.sorted(func(u *model.User) bool { return !u.Deleted && u.ID != excludeID }), nil
}

func (f fakeUsers) SearchCandidates(_ context.Context, serviceID, excludeID int64, search string) ([]model.User, error) {
	return f.sorted(func(u *model.User) bool {
		return !u.Deleted && u.Confirmed && !u.Suspended && u.ID != excludeID &&
			!f.h.grants[grantKey{u.ID, serviceID}] && matches(u, search)
	}), nil
}

func (f fakeUsers) ListAssigned(_ context.Context, serviceID int64, search string) ([]model.User, error) {
	return f.sorted(func(u *model.User) bool {
		return !u.Deleted && f.h.grants[grantKey{u.ID, serviceID}] && matches(u, search)
	}), nil
}

func matches(u *model.User, search string) bool {
	hay := strings.ToLower(u.FirstName + " " + u.LastName + " " + u.Email + " " + u.Username)
	for _, w := range strings.Fields(strings.ToLower(search)) {
		if !strings.Contains(hay, w) {
			return false
		}
	}
	return true
}

// site

type fakeSite struct{ h *fakeHost }

func (f fakeSite) SiteAdminIDs(context.Context) ([]int64, error) { return slices.Clone(f.h.admins), nil }
func (f fakeSite) GuestID(context.Context) (int64, error)        { return f.h.guestID, nil }
func (f fakeSite) SystemContextID(context.Context) (int64, error) {
	if f.h.sysContext == 0 {
		return 0, repository.ErrNotFound
	}
	return f.h.sysContext, nil
}

// config

type fakeConfig struct{ h *fakeHost }

func (f fakeConfig) Get(_ context.Context, name string) (string, error) {
	v, ok := f.h.config[name]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (f fakeConfig) Set(_ context.Context, name, value string) error {
	f.h.config[name] = value
	return nil
}

func (f fakeConfig) SetIfAbsent(_ context.Context, name, value string) error {
	if _, ok := f.h.config[name]; !ok {
		f.h.config[name] = value
	}
	return nil
}

func (f fakeConfig) List(context.Context) ([]repository.PluginSetting, error) {
	var out []repository.PluginSetting
	for _, k := range slices.Sorted(maps.Keys(f.h.config)) {
		out = append(out, repository.PluginSetting{Name: k, Value: f.h.config[k]})
	}
	return out, nil
}

func (f fakeConfig) Unset(_ context.Context, name string) error {
	delete(f.h.config, name)
	return nil
}

func (f fakeConfig) DeleteAll(context.Context) error {
	clear(f.h.config)
	return nil
}

// --- Панель ключей в памяти ---

type fakePanel struct {
	keys      map[string]*panel.Key
	next      int
	createErr error
	listErr   error
	deleteErr error

	creates   []panel.CreateKeyRequest
	listCalls int
	deleted   []string
	revoked   []string
	sent      []string
}

func newFakePanel() *fakePanel {
	return &fakePanel{keys: map[string]*panel.Key{}}
}

func (p *fakePanel) CreateKey(_ context.Context, lic panel.License, req panel.CreateKeyRequest) (*panel.Key, error) {
	if !lic.Valid() {
		return nil, panel.ErrInvalidLicense
	}
	p.creates = append(p.creates, req)
	if p.createErr != nil {
		return nil, p.createErr
	}
	for _, k := range p.keys {
		if k.MoodleToken == req.MoodleToken {
			k.MoodleRoles = slices.Clone(req.MoodleRoles)
			k.ExpiresOn = req.ExpiresOn
			cp := *k
			return &cp, nil
		}
	}
	p.next++
	k := &panel.Key{
		MCPKey:         fmt.Sprintf("mcp-%d", p.next),
		MCPURL:         fmt.Sprintf("https://mcp.example/%d", p.next),
		MoodleToken:    req.MoodleToken,
		MoodleRoles:    slices.Clone(req.MoodleRoles),
		MoodleUsername: req.MoodleUsername,
		Status:         panel.StatusActive,
		ExpiresOn:      req.ExpiresOn,
		CreatedBy:      panel.CreatedByMoodle,
	}
	p.keys[k.MCPKey] = k
	cp := *k
	return &cp, nil
}

func (p *fakePanel) ListKeys(_ context.Context, lic panel.License) ([]panel.Key, error) {
	if !lic.Valid() {
		return nil, panel.ErrInvalidLicense
	}
	p.listCalls++
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]panel.Key, 0, len(p.keys))
	for _, mk := range slices.Sorted(maps.Keys(p.keys)) {
		out = append(out, *p.keys[mk])
	}
	return out, nil
}

func (p *fakePanel) RevokeKey(_ context.Context, _ panel.License, mcpKey string) error {
	k, ok := p.keys[mcpKey]
	if !ok {
		return &panel.Error{Code: panel.CodeAPIError, Message: "key not found"}
	}
	k.Status = panel.StatusRevoked
	p.revoked = append(p.revoked, mcpKey)
	return nil
}

func (p *fakePanel) DeleteKey(_ context.Context, _ panel.License, mcpKey string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	if _, ok := p.keys[mcpKey]; !ok {
		return &panel.Error{Code: panel.CodeAPIError, Message: "key not found"}
	}
	delete(p.keys, mcpKey)
	p.deleted = append(p.deleted, mcpKey)
	return nil
}

func (p *fakePanel) SuspendKey(_ context.Context, _ panel.License, mcpKey string, suspend bool) error {
	k, ok := p.keys[mcpKey]
	if !ok {
		return &panel.Error{Code: panel.CodeAPIError, Message: "key not found"}
	}
	if suspend {
		k.Status = panel.StatusSuspended
	} else {
		k.Status = panel.StatusActive
	}
	return nil
}

func (p *fakePanel) MarkSent(_ context.Context, _ panel.License, mcpKey string) error {
	k, ok := p.keys[mcpKey]
	if !ok {
		return &panel.Error{Code: panel.CodeAPIError, Message: "key not found"}
	}
	k.SentAt = "2026-10-15T00:00:00Z"
	p.sent = append(p.sent, mcpKey)
	return nil
}

// keyByToken возвращает ключ панели по токену.
func (p *fakePanel) keyByToken(token string) *panel.Key {
	for _, k := range p.keys {
		if k.MoodleToken == token {
			return k
		}
	}
	return nil
}

// --- Почта ---

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// --- Очередь задач и состояние синхронизации ---

// fakeTasks — очередь в памяти; run_after не учитывается.
type fakeTasks struct {
	tasks []*model.Task
}

func (f *fakeTasks) Enqueue(_ context.Context, task *model.Task) error {
	task.ID = fmt.Sprintf("task-%d", len(f.tasks)+1)
	task.Status = model.TaskStatusPending
	cp := *task
	f.tasks = append(f.tasks, &cp)
	return nil
}

func (f *fakeTasks) ClaimNext(context.Context) (*model.Task, error) {
	for _, t := range f.tasks {
		if t.Status == model.TaskStatusPending {
			t.Status = model.TaskStatusRunning
			t.Attempts++
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTasks) get(id string) *model.Task {
	for _, t := range f.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (f *fakeTasks) Complete(_ context.Context, id string) error {
	f.get(id).Status = model.TaskStatusDone
	return nil
}

func (f *fakeTasks) Retry(_ context.Context, id string, runAfter time.Time, lastError string) error {
	t := f.get(id)
	t.Status = model.TaskStatusPending
	t.RunAfter = runAfter
	t.LastError = &lastError
	return nil
}

func (f *fakeTasks) Fail(_ context.Context, id, lastError string) error {
	t := f.get(id)
	t.Status = model.TaskStatusFailed
	t.LastError = &lastError
	return nil
}

func (f *fakeTasks) List(_ context.Context, status *string, _ int) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if status == nil || t.Status == *status {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeSyncState struct {
	saved *model.SyncResult
}

func (f *fakeSyncState) Get(context.Context) (*model.SyncState, error) {
	if f.saved == nil {
		return nil, repository.ErrNotFound
	}
	at := f.saved.CompletedAt
	return &model.SyncState{
		LastSyncAt:  &at,
		LastSynced:  f.saved.Synced,
		LastAdded:   f.saved.Added,
		LastRemoved: f.saved.Removed,
		LastRevoked: f.saved.Revoked,
	}, nil
}

func (f *fakeSyncState) Save(_ context.Context, res *model.SyncResult) error {
	cp := *res
	f.saved = &cp
	return nil
}

// --- Окружение теста ---

type testEnv struct {
	host     *fakeHost
	panel    *fakePanel
	mail     *fakeMailer
	tasks    *fakeTasks
	state    *fakeSyncState
	engine   *Engine
	settings *SettingsService
	registry *RegistryService
	sync     *SyncService
	keys     *KeyService
	users    *UserService
	queue    *TaskService
	events   *EventService
}

// newTestEnv — окружение с действующей лицензией и созданными сервисами.
// Пользователи: 1 — гость, 2 — администратор сайта.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	h := newFakeHost()
	h.addUser(model.User{ID: 1, Username: "guest"})
	h.addUser(model.User{ID: 2, Username: "admin", FirstName: "Админ", Email: "admin@example.com"})
	h.admins = []int64{2}
	h.config[cfgLicenseKey] = "LIC-1"
	h.config[cfgLicenseStatus] = panel.LicenseOK

	env := &testEnv{
		host:  h,
		panel: newFakePanel(),
		mail:  &fakeMailer{},
		tasks: &fakeTasks{},
		state: &fakeSyncState{},
	}
	logger := testLogger()
	store := h.store()
	tx := fakeTx{h: h}

	env.engine = NewEngine(store, tx, rbac.NewClassifier(h), env.panel, env.mail, logger)
	n := 0
	env.engine.newToken = func() (string, error) {
		n++
		return fmt.Sprintf("tok-%02d", n), nil
	}
	env.settings = NewSettingsService(store.Config, logger)
	env.registry = NewRegistryService(store.Services, tx, logger)
	env.sync = NewSyncService(env.engine, env.settings, env.state, "0 * * * *", logger)
	env.keys = NewKeyService(env.engine, env.settings, 16, time.Minute, logger)
	env.users = NewUserService(env.engine, env.registry, env.settings, logger)
	env.queue = NewTaskService(env.tasks, env.sync, env.engine, env.settings, time.Second, 3, logger)
	env.events = NewEventService(env.queue, env.settings, logger)

	if _, err := env.registry.EnsureServices(context.Background()); err != nil {
		t.Fatalf("EnsureServices() ошибка: %v", err)
	}
	return env
}

func (env *testEnv) snapshot(t *testing.T) *Settings {
	t.Helper()
	snap, err := env.settings.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() ошибка: %v", err)
	}
	return snap
}

func (env *testEnv) user(t *testing.T, id int64) *model.User {
	t.Helper()
	u, ok := env.host.users[id]
	if !ok {
		t.Fatalf("пользователь %d не найден", id)
	}
	cp := *u
	return &cp
}

// assigned возвращает shortname сервисов пользователя в порядке определений.
func (env *testEnv) assigned(userID int64) []string {
	var out []string
	for _, d := range Definitions() {
		for id, s := range env.host.services {
			if s.Shortname == d.Shortname && env.host.grants[grantKey{userID, id}] {
				out = append(out, d.Shortname)
			}
		}
	}
	return out
}
