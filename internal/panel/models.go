package panel

import (
	"encoding/json"
	"fmt"
)

// Статусы ключа в панели.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusRevoked   = "revoked"
)

// CreatedByMoodle — ключи, созданные модулем (а не вручную в панели).
const CreatedByMoodle = "moodle"

// Key — запись ключа MCP в панели.
type Key struct {
	MCPKey         string `json:"mcpKey"`
	MCPURL         string `json:"mcpUrl"`
	MoodleToken    string `json:"moodleToken"`
	MoodleRoles    Roles  `json:"moodleRoles"`
	MoodleUsername string `json:"moodleUsername,omitempty"`
	Status         string `json:"status"`
	ExpiresOn      string `json:"expiresOn,omitempty"`
	SentAt         string `json:"sentAt,omitempty"`
	CreatedBy      string `json:"createdBy,omitempty"`
	Name           string `json:"name,omitempty"`
}

// Sent — ключ уже отправлялся пользователю.
func (k *Key) Sent() bool {
	return k.SentAt != ""
}

// Roles — список ролей ключа. Панель может вернуть одну строку вместо массива.
type Roles []string

// UnmarshalJSON принимает как массив строк, так и одиночную строку.
func (r *Roles) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*r = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("moodleRoles: ожидается строка или массив строк: %w", err)
	}
	if single == "" {
		*r = nil
		return nil
	}
	*r = Roles{single}
	return nil
}

// CreateKeyRequest — параметры создания или обновления ключа.
type CreateKeyRequest struct {
	MoodleToken    string
	MoodleRoles    []string
	MoodleUsername string
	// ExpiresOn — дата окончания (YYYY-MM-DD), пустая — бессрочный
	ExpiresOn string
}

// License — лицензия модуля, как она сохранена в настройках.
type License struct {
	Key    string
	Status string
}

// Статусы лицензии.
const (
	LicenseMissing = "missing"
	LicenseOK      = "ok"
	LicenseError   = "error"
)

// Valid — ключ задан и последняя проверка успешна.
func (l License) Valid() bool {
	return l.Key != "" && l.Status == LicenseOK
}

// Verification — результат проверки лицензии.
type Verification struct {
	// Status — LicenseOK или LicenseError
	Status string
	// Message — сообщение для администратора (пустое при успехе)
	Message string
}

// OK — лицензия подтверждена.
func (v Verification) OK() bool {
	return v.Status == LicenseOK
}

// --- Тела запросов к панели ---

type createKeyPayload struct {
	LicenseKey     string   `json:"licenseKey"`
	MoodleToken    string   `json:"moodleToken"`
	MoodleRoles    []string `json:"moodleRoles"`
	MoodleUsername string   `json:"moodleUsername"`
	ExpiresOn      *string  `json:"expiresOn"`
}

type licensePayload struct {
	LicenseKey string `json:"licenseKey"`
}

type keyPayload struct {
	LicenseKey string `json:"licenseKey"`
	MCPKey     string `json:"mcpKey"`
}

type suspendPayload struct {
	LicenseKey string `json:"licenseKey"`
	MCPKey     string `json:"mcpKey"`
	Suspend    bool   `json:"suspend"`
}

type verifyPayload struct {
	LicenseKey string `json:"licenseKey"`
	MoodleURL  string `json:"moodleUrl"`
}

type listResponse struct {
	Keys []Key `json:"keys"`
}
