package panel

import "fmt"

// Коды ошибок панели.
const (
	// CodeInvalidLicense — лицензия не задана или не подтверждена; запрос не отправлялся.
	CodeInvalidLicense = "invalid_license"
	// CodeMissingKey — не указан mcpKey; запрос не отправлялся.
	CodeMissingKey = "missing_key"
	// CodeTransport — сетевая ошибка.
	CodeTransport = "transport"
	// CodeInvalidJSON — ответ не является JSON-объектом.
	CodeInvalidJSON = "invalid_json"
	// CodeAPIError — панель вернула ошибку без описания или success=false.
	CodeAPIError = "api_error"
)

// ErrInvalidLicense — сравнивается через errors.Is с любой ошибкой кода invalid_license.
var ErrInvalidLicense = &Error{Code: CodeInvalidLicense}

// Error — неуспешный вызов панели.
// Все операции клиента возвращают ошибки только этого типа.
type Error struct {
	// Code — код ошибки (CodeXxx или код, присланный панелью)
	Code string
	// Message — текст для журнала и администратора
	Message string
	// Data — тело ответа панели, если оно было разобрано
	Data map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" || e.Message == e.Code {
		return "panel: " + e.Code
	}
	return fmt.Sprintf("panel: %s: %s", e.Code, e.Message)
}

// Is сравнивает ошибки панели по коду.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
