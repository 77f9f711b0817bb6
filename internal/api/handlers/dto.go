// dto.go — преобразование моделей в типы generated для ответов API.
package handlers

import (
	"encoding/json"

	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/panel"
	"github.com/bigkaa/goartstore/mcp-sync/internal/service"
)

func mapService(s model.Service) generated.Service {
	fns := s.Functions
	if fns == nil {
		fns = []string{}
	}
	return generated.Service{
		Id:              s.ID,
		Name:            s.Name,
		Shortname:       s.Shortname,
		Component:       s.Component,
		Enabled:         s.Enabled,
		RestrictedUsers: s.RestrictedUsers,
		Functions:       fns,
	}
}

func mapUsers(users []model.User) []generated.User {
	out := make([]generated.User, len(users))
	for i, u := range users {
		out[i] = generated.User{
			Id:        u.ID,
			Username:  u.Username,
			Firstname: u.FirstName,
			Lastname:  u.LastName,
			Email:     u.Email,
			Suspended: u.Suspended,
		}
	}
	return out
}

// mapKey — ключ панели. Пустые необязательные поля не выводятся.
func mapKey(k *panel.Key) generated.PanelKey {
	roles := []string(k.MoodleRoles)
	if roles == nil {
		roles = []string{}
	}
	return generated.PanelKey{
		McpKey:         k.MCPKey,
		McpUrl:         k.MCPURL,
		MoodleToken:    k.MoodleToken,
		MoodleRoles:    roles,
		MoodleUsername: optString(k.MoodleUsername),
		Status:         k.Status,
		ExpiresOn:      optString(k.ExpiresOn),
		SentAt:         optString(k.SentAt),
		CreatedBy:      optString(k.CreatedBy),
		Name:           optString(k.Name),
	}
}

func mapKeyPtr(k *panel.Key) *generated.PanelKey {
	if k == nil {
		return nil
	}
	pk := mapKey(k)
	return &pk
}

func mapReconcile(res *service.ReconcileResult) generated.ReconcileResult {
	return generated.ReconcileResult{
		Added:   res.Added,
		Removed: res.Removed,
		Key:     mapKeyPtr(res.Key),
		Emailed: res.Emailed,
	}
}

func mapLicenseState(st *service.LicenseState) generated.LicenseState {
	return generated.LicenseState{
		MaskedKey: st.MaskedKey,
		Status:    st.Status,
		CheckedAt: st.CheckedAt,
		LastError: optString(st.LastError),
	}
}

func mapSettings(s *service.Settings) generated.Settings {
	roles := s.AutoSyncRoles
	if roles == nil {
		roles = map[string]bool{}
	}
	return generated.Settings{
		AutoSync:      s.AutoSync,
		AutoSyncRoles: roles,
		AutoEmail:     s.AutoEmail,
		EmailSubject:  s.EmailSubject,
		EmailBody:     s.EmailBody,
		LicenseStatus: s.License.Status,
	}
}

func mapSyncResult(res *model.SyncResult) generated.SyncResult {
	return generated.SyncResult{
		Synced:      res.Synced,
		Added:       res.Added,
		Removed:     res.Removed,
		Revoked:     res.Revoked,
		FirstError:  optString(res.FirstError),
		StartedAt:   res.StartedAt,
		CompletedAt: res.CompletedAt,
	}
}

// mapTask — задача очереди. Payload разворачивается в объект,
// нераспознанный payload не выводится.
func mapTask(t *model.Task) generated.Task {
	resp := generated.Task{
		Id:        t.ID,
		Kind:      generated.TaskKind(t.Kind),
		Status:    generated.TaskStatus(t.Status),
		Attempts:  t.Attempts,
		LastError: t.LastError,
	}
	if len(t.Payload) > 0 {
		var payload map[string]interface{}
		if err := json.Unmarshal(t.Payload, &payload); err == nil {
			resp.Payload = &payload
		}
	}
	if !t.RunAfter.IsZero() {
		ra := t.RunAfter
		resp.RunAfter = &ra
	}
	if !t.CreatedAt.IsZero() {
		ca := t.CreatedAt
		resp.CreatedAt = &ca
	}
	return resp
}

// optString — nil для пустой строки.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString — пустая строка для nil.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
