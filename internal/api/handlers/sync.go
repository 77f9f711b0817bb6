// sync.go — синхронизация, очередь задач и события хост-системы.
package handlers

import (
	"net/http"

	apierrors "github.com/bigkaa/goartstore/mcp-sync/internal/api/errors"
	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
	"github.com/bigkaa/goartstore/mcp-sync/internal/domain/model"
	"github.com/bigkaa/goartstore/mcp-sync/internal/service"
)

// RunSync — POST /api/v1/sync.
// Синхронный запуск пакетной синхронизации (всех или по одному сервису).
func (h *APIHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	var req generated.RunSyncJSONRequestBody
	if !decodeJSON(w, r, &req, true) {
		return
	}
	res, err := h.sync.SyncAll(r.Context(), derefString(req.Servicefilter))
	if err != nil {
		h.writeServiceError(w, "Ошибка синхронизации", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSyncResult(res))
}

// GetSyncState — GET /api/v1/sync/state.
func (h *APIHandler) GetSyncState(w http.ResponseWriter, r *http.Request) {
	st, err := h.sync.State(r.Context())
	if err != nil {
		h.writeServiceError(w, "Полная синхронизация ещё не выполнялась", err)
		return
	}
	writeJSON(w, http.StatusOK, generated.SyncState{
		LastSyncAt:  st.LastSyncAt,
		LastSynced:  st.LastSynced,
		LastAdded:   st.LastAdded,
		LastRemoved: st.LastRemoved,
		LastRevoked: st.LastRevoked,
		LastError:   st.LastError,
	})
}

// EnqueueTask — POST /api/v1/tasks.
func (h *APIHandler) EnqueueTask(w http.ResponseWriter, r *http.Request) {
	var req generated.EnqueueTaskJSONRequestBody
	if !decodeJSON(w, r, &req, false) {
		return
	}

	var userID int64
	if req.Userid != nil {
		userID = *req.Userid
	}
	filter := derefString(req.Servicefilter)

	var (
		task *model.Task
		err  error
	)
	switch req.Kind {
	case generated.TaskKindSyncUser:
		task, err = h.tasks.EnqueueSyncUser(r.Context(), userID, filter, derefBool(req.RemoveOnly))
	case generated.TaskKindSyncAllUsers:
		task, err = h.tasks.EnqueueSyncAll(r.Context(), filter)
	case generated.TaskKindDeleteUserKeys:
		task, err = h.tasks.EnqueueDeleteUserKeys(r.Context(), userID)
	default:
		apierrors.ValidationError(w, "Неизвестный тип задачи: "+string(req.Kind))
		return
	}
	if err != nil {
		h.writeServiceError(w, "Ошибка постановки задачи", err)
		return
	}
	writeJSON(w, http.StatusAccepted, mapTask(task))
}

// ListTasks — GET /api/v1/tasks?status=&limit=.
func (h *APIHandler) ListTasks(w http.ResponseWriter, r *http.Request, params generated.ListTasksParams) {
	limit := 100
	if params.Limit != nil {
		if *params.Limit < 1 || *params.Limit > 1000 {
			apierrors.ValidationError(w, "limit должен быть от 1 до 1000")
			return
		}
		limit = *params.Limit
	}
	var status string
	if params.Status != nil {
		status = string(*params.Status)
	}
	tasks, err := h.tasks.List(r.Context(), status, limit)
	if err != nil {
		h.writeServiceError(w, "Ошибка получения списка задач", err)
		return
	}
	items := make([]generated.Task, len(tasks))
	for i := range tasks {
		items[i] = mapTask(&tasks[i])
	}
	writeJSON(w, http.StatusOK, generated.TaskListResponse{Items: items})
}

// HandleEvent — POST /api/v1/events.
// 202 с задачей или 204, если событие не требует действий.
func (h *APIHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req generated.HandleEventJSONRequestBody
	if !decodeJSON(w, r, &req, false) {
		return
	}
	task, err := h.events.HandleEvent(r.Context(), service.Event{
		Name:          string(req.Event),
		UserID:        req.Userid,
		RoleShortname: derefString(req.Role),
	})
	if err != nil {
		h.writeServiceError(w, "Ошибка обработки события", err)
		return
	}
	if task == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusAccepted, mapTask(task))
}
