// license.go — лицензия и настройки модуля.
package handlers

import (
	"net/http"

	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
	"github.com/bigkaa/goartstore/mcp-sync/internal/service"
)

// GetLicense — GET /api/v1/license.
func (h *APIHandler) GetLicense(w http.ResponseWriter, r *http.Request) {
	st, err := h.license.Status(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка чтения лицензии", err)
		return
	}
	writeJSON(w, http.StatusOK, mapLicenseState(st))
}

// ValidateLicense — POST /api/v1/license/validate.
// Проверяет ключ, ничего не сохраняя.
func (h *APIHandler) ValidateLicense(w http.ResponseWriter, r *http.Request) {
	var req generated.ValidateLicenseJSONRequestBody
	if !decodeJSON(w, r, &req, false) {
		return
	}
	v := h.license.Validate(r.Context(), req.LicenseKey)
	writeJSON(w, http.StatusOK, generated.LicenseValidation{
		Valid:   v.OK(),
		Status:  v.Status,
		Message: optString(v.Message),
	})
}

// SaveLicense — PUT /api/v1/license.
// Ключ сохраняется вместе с результатом проверки, даже неуспешным.
func (h *APIHandler) SaveLicense(w http.ResponseWriter, r *http.Request) {
	var req generated.SaveLicenseJSONRequestBody
	if !decodeJSON(w, r, &req, false) {
		return
	}
	st, err := h.license.Save(r.Context(), req.LicenseKey)
	if err != nil {
		h.writeServiceError(w, "Ошибка сохранения лицензии", err)
		return
	}
	writeJSON(w, http.StatusOK, mapLicenseState(st))
}

// RefreshLicense — POST /api/v1/license/refresh.
func (h *APIHandler) RefreshLicense(w http.ResponseWriter, r *http.Request) {
	st, err := h.license.Refresh(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка проверки лицензии", err)
		return
	}
	writeJSON(w, http.StatusOK, mapLicenseState(st))
}

// GetSettings — GET /api/v1/settings.
func (h *APIHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.settings.Snapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка чтения настроек", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSettings(snap))
}

// UpdateSettings — PATCH /api/v1/settings.
// Отсутствующие поля не меняются.
func (h *APIHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req generated.UpdateSettingsJSONRequestBody
	if !decodeJSON(w, r, &req, false) {
		return
	}
	upd := service.SettingsUpdate{
		AutoSync:     req.AutoSync,
		AutoEmail:    req.AutoEmail,
		EmailSubject: req.EmailSubject,
		EmailBody:    req.EmailBody,
	}
	if req.AutoSyncRoles != nil {
		upd.AutoSyncRoles = *req.AutoSyncRoles
	}
	snap, err := h.settings.Update(r.Context(), upd)
	if err != nil {
		h.writeServiceError(w, "Ошибка изменения настроек", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSettings(snap))
}
