// keys.go — ключи панели, созданные модулем.
package handlers

import (
	"net/http"

	"github.com/bigkaa/goartstore/mcp-sync/internal/api/generated"
)

// ListKeys — GET /api/v1/keys.
func (h *APIHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "Ошибка получения списка ключей", err)
		return
	}
	items := make([]generated.PanelKey, len(keys))
	for i := range keys {
		items[i] = mapKey(&keys[i])
	}
	writeJSON(w, http.StatusOK, generated.KeyListResponse{Items: items})
}

// RevokeKey — POST /api/v1/keys/{mcpkey}/revoke.
func (h *APIHandler) RevokeKey(w http.ResponseWriter, r *http.Request, mcpkey generated.McpKey) {
	if err := h.keys.Revoke(r.Context(), mcpkey); err != nil {
		h.writeServiceError(w, "Ошибка отзыва ключа", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteKey — DELETE /api/v1/keys/{mcpkey}.
func (h *APIHandler) DeleteKey(w http.ResponseWriter, r *http.Request, mcpkey generated.McpKey) {
	if err := h.keys.Delete(r.Context(), mcpkey); err != nil {
		h.writeServiceError(w, "Ошибка удаления ключа", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuspendKey — POST /api/v1/keys/{mcpkey}/suspend.
func (h *APIHandler) SuspendKey(w http.ResponseWriter, r *http.Request, mcpkey generated.McpKey) {
	if err := h.keys.Suspend(r.Context(), mcpkey); err != nil {
		h.writeServiceError(w, "Ошибка приостановки ключа", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateKey — POST /api/v1/keys/{mcpkey}/activate.
func (h *APIHandler) ActivateKey(w http.ResponseWriter, r *http.Request, mcpkey generated.McpKey) {
	if err := h.keys.Activate(r.Context(), mcpkey); err != nil {
		h.writeServiceError(w, "Ошибка возобновления ключа", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendKey — POST /api/v1/keys/{mcpkey}/send.
func (h *APIHandler) SendKey(w http.ResponseWriter, r *http.Request, mcpkey generated.McpKey) {
	if err := h.keys.Send(r.Context(), mcpkey); err != nil {
		h.writeServiceError(w, "Ошибка отправки ключа", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateKey — POST /api/v1/keys/{mcpkey}/regenerate.
// expires_on — YYYY-MM-DD или отсутствует.
func (h *APIHandler) RegenerateKey(w http.ResponseWriter, r *http.Request, mcpkey generated.McpKey) {
	var req generated.RegenerateKeyJSONRequestBody
	if !decodeJSON(w, r, &req, true) {
		return
	}
	var expiresOn string
	if req.ExpiresOn != nil {
		expiresOn = req.ExpiresOn.String()
	}
	res, err := h.keys.Regenerate(r.Context(), mcpkey, expiresOn)
	if err != nil {
		h.writeServiceError(w, "Ошибка перевыпуска ключа", err)
		return
	}
	writeJSON(w, http.StatusOK, generated.KeyResult{Key: mapKey(res.Key), Emailed: res.Emailed})
}
