// services.go — сервисы модуля и их функции.
package handlers

import (
	"net/http"

	apierrors "github.com/bigkaa/goartstore/mcp-sync/internal/api/errors"
	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
)

// ListServices — GET /api/v1/services.
func (h *APIHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.registry.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка получения списка сервисов", err)
		return
	}
	items := make([]generated.Service, len(list))
	for i, s := range list {
		items[i] = mapService(s)
	}
	writeJSON(w, http.StatusOK, generated.ServiceListResponse{Items: items})
}

// EnsureServices — POST /api/v1/services/ensure.
// Создаёт отсутствующие сервисы модуля.
func (h *APIHandler) EnsureServices(w http.ResponseWriter, r *http.Request) {
	created, err := h.registry.EnsureServices(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка создания сервисов", err)
		return
	}
	writeJSON(w, http.StatusOK, generated.EnsureServicesResponse{Created: created})
}

// PurgeServices — DELETE /api/v1/services?confirm=yes.
// Удаляет сервисы, назначения, токены и настройки модуля.
func (h *APIHandler) PurgeServices(w http.ResponseWriter, r *http.Request, params generated.PurgeServicesParams) {
	if derefString(params.Confirm) != "yes" {
		apierrors.ValidationError(w, "Удаление данных модуля требует параметра confirm=yes")
		return
	}
	if err := h.registry.Purge(r.Context()); err != nil {
		h.writeServiceError(w, "Ошибка удаления данных модуля", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFunctions — GET /api/v1/functions.
// Все функции веб-сервисов хост-системы.
func (h *APIHandler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	fns, err := h.registry.ListFunctions(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка получения списка функций", err)
		return
	}
	items := make([]generated.ExternalFunction, len(fns))
	for i, f := range fns {
		items[i] = generated.ExternalFunction{Name: f.Name, Component: f.Component}
	}
	writeJSON(w, http.StatusOK, generated.ExternalFunctionListResponse{Items: items})
}

// SetServiceFunctions — PUT /api/v1/services/{shortname}/functions.
func (h *APIHandler) SetServiceFunctions(w http.ResponseWriter, r *http.Request, shortname generated.Shortname) {
	var req generated.SetServiceFunctionsJSONRequestBody
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := h.registry.SetFunctions(r.Context(), shortname, req.Functions); err != nil {
		h.writeServiceError(w, "Ошибка изменения функций сервиса", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreServiceFunctions — POST /api/v1/services/{shortname}/functions/restore.
func (h *APIHandler) RestoreServiceFunctions(w http.ResponseWriter, r *http.Request, shortname generated.Shortname) {
	ok, err := h.registry.RestoreBaseline(r.Context(), shortname)
	if err != nil {
		h.writeServiceError(w, "Ошибка восстановления функций сервиса", err)
		return
	}
	if !ok {
		apierrors.MissingService(w, "Сервис не найден: "+shortname)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
