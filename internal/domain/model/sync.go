package model

import "time"

// SyncState — состояние плановой синхронизации (одна строка в БД).
// Таблица mcpsync_sync_state (id = 1).
type SyncState struct {
	// LastSyncAt — время завершения последней полной синхронизации
	LastSyncAt *time.Time
	LastSynced  int
	LastAdded   int
	LastRemoved int
	LastRevoked int
	// LastError — первая ошибка последнего запуска
	LastError *string
	UpdatedAt time.Time
}

// SyncResult — итог пакетной синхронизации пользователей.
type SyncResult struct {
	// Synced — сколько пользователей обработано
	Synced int `json:"synced"`
	// Added — сколько назначений на сервисы добавлено
	Added int `json:"added"`
	// Removed — сколько назначений снято
	Removed int `json:"removed"`
	// Revoked — сколько ключей отозвано у удалённых пользователей
	Revoked int `json:"revoked"`
	// FirstError — первая ошибка за запуск (информационно)
	FirstError string `json:"first_error,omitempty"`
	// StartedAt — время начала
	StartedAt time.Time `json:"started_at"`
	// CompletedAt — время завершения
	CompletedAt time.Time `json:"completed_at"`
}
