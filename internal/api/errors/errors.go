// Пакет errors — ответы с ошибками admin API.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок API.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidLicense   = "INVALID_LICENSE"
	CodeNotEligible      = "NOT_ELIGIBLE"
	CodeMissingService   = "MISSING_SERVICE"
	CodeConflict         = "CONFLICT"
	CodePanelUnavailable = "PANEL_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// InvalidLicense — 409 лицензия не задана или не подтверждена.
func InvalidLicense(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeInvalidLicense, message)
}

// NotEligible — 422 пользователь не подходит по ролям.
func NotEligible(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, CodeNotEligible, message)
}

// MissingService — 404 сервис модуля не найден.
func MissingService(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeMissingService, message)
}

// Conflict — 409 конфликт состояния.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// PanelUnavailable — 502 панель ключей недоступна или вернула ошибку.
func PanelUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodePanelUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
