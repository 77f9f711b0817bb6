package model

import (
	"encoding/json"
	"time"
)

// TaskKind — тип ad-hoc задачи.
type TaskKind string

const (
	// TaskSyncUser — синхронизация одного пользователя.
	TaskSyncUser TaskKind = "sync_user"
	// TaskSyncAllUsers — синхронизация всех пользователей (опционально по сервису).
	TaskSyncAllUsers TaskKind = "sync_all_users"
	// TaskDeleteUserKeys — удаление ключей пользователя.
	TaskDeleteUserKeys TaskKind = "delete_user_keys"
)

// Статусы задач.
const (
	TaskStatusPending = "pending"
	TaskStatusRunning = "running"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"
)

// Task — запись очереди ad-hoc задач (таблица mcpsync_tasks).
type Task struct {
	ID        string
	Kind      TaskKind
	Payload   json.RawMessage
	Status    string
	Attempts  int
	LastError *string
	RunAfter  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskPayload — данные задачи. Набор заполненных полей зависит от Kind.
type TaskPayload struct {
	UserID        int64  `json:"userid,omitempty"`
	ServiceFilter string `json:"servicefilter,omitempty"`
	RemoveOnly    bool   `json:"remove_only,omitempty"`
}
