// users.go — назначение пользователей на сервисы и пересчёт ключей.
package handlers

import (
	"net/http"

	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
)

// ListAssignedUsers — GET /api/v1/services/{shortname}/users?search=.
func (h *APIHandler) ListAssignedUsers(w http.ResponseWriter, r *http.Request, shortname generated.Shortname, params generated.ListAssignedUsersParams) {
	users, err := h.users.ListAssigned(r.Context(), shortname, derefString(params.Search))
	if err != nil {
		h.writeServiceError(w, "Ошибка получения назначенных пользователей", err)
		return
	}
	writeJSON(w, http.StatusOK, generated.UserListResponse{Items: mapUsers(users)})
}

// SearchCandidates — GET /api/v1/services/{shortname}/candidates?search=.
func (h *APIHandler) SearchCandidates(w http.ResponseWriter, r *http.Request, shortname generated.Shortname, params generated.SearchCandidatesParams) {
	users, err := h.users.SearchCandidates(r.Context(), shortname, derefString(params.Search))
	if err != nil {
		h.writeServiceError(w, "Ошибка поиска пользователей", err)
		return
	}
	writeJSON(w, http.StatusOK, generated.UserListResponse{Items: mapUsers(users)})
}

// AssignUser — PUT /api/v1/services/{shortname}/users/{userid}.
func (h *APIHandler) AssignUser(w http.ResponseWriter, r *http.Request, shortname generated.Shortname, userid generated.UserId) {
	if !validUserID(w, userid) {
		return
	}
	res, err := h.users.Assign(r.Context(), userid, shortname)
	if err != nil {
		h.writeServiceError(w, "Ошибка назначения пользователя", err)
		return
	}
	status := http.StatusOK
	if res.Added {
		status = http.StatusCreated
	}
	writeJSON(w, status, generated.AssignResult{
		Added:   res.Added,
		Key:     mapKeyPtr(res.Key),
		Emailed: res.Emailed,
	})
}

// UnassignUser — DELETE /api/v1/services/{shortname}/users/{userid}.
func (h *APIHandler) UnassignUser(w http.ResponseWriter, r *http.Request, shortname generated.Shortname, userid generated.UserId) {
	if !validUserID(w, userid) {
		return
	}
	if err := h.users.Unassign(r.Context(), userid, shortname); err != nil {
		h.writeServiceError(w, "Ошибка снятия назначения", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecalculateUserKey — POST /api/v1/users/{userid}/recalculate.
func (h *APIHandler) RecalculateUserKey(w http.ResponseWriter, r *http.Request, userid generated.UserId) {
	if !validUserID(w, userid) {
		return
	}
	res, err := h.users.RecalculateKey(r.Context(), userid)
	if err != nil {
		h.writeServiceError(w, "Ошибка пересчёта ключа", err)
		return
	}
	writeJSON(w, http.StatusOK, mapReconcile(res))
}

// SyncUser — POST /api/v1/users/{userid}/sync.
// Синхронное согласование одного пользователя.
func (h *APIHandler) SyncUser(w http.ResponseWriter, r *http.Request, userid generated.UserId) {
	if !validUserID(w, userid) {
		return
	}
	var req generated.SyncUserJSONRequestBody
	if !decodeJSON(w, r, &req, true) {
		return
	}
	res, err := h.sync.SyncUser(r.Context(), userid, derefString(req.Servicefilter), derefBool(req.RemoveOnly))
	if err != nil {
		h.writeServiceError(w, "Ошибка синхронизации пользователя", err)
		return
	}
	if res == nil {
		// Заблокированный пользователь пропускается.
		writeJSON(w, http.StatusOK, generated.ReconcileResult{})
		return
	}
	writeJSON(w, http.StatusOK, mapReconcile(res))
}
