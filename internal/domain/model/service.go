package model

// Service — внешний сервис (grant) хост-системы.
// Таблица {external_services}.
type Service struct {
	ID              int64
	Name            string
	Shortname       string
	Component       string
	Enabled         bool
	RestrictedUsers bool
	// Functions — разрешённые функции веб-сервиса
	Functions []string
}

// ServiceDefinition — описание сервиса, который модуль создаёт при установке.
type ServiceDefinition struct {
	Shortname string
	Name      string
	// Functions — базовый набор функций (по умолчанию пуст)
	Functions []string
}

// Token — токен веб-сервиса хост-системы.
// Таблица {external_tokens}.
type Token struct {
	ID        int64
	Token     string
	UserID    int64
	ServiceID int64
	// ValidUntil — unix-время окончания действия, 0 — бессрочный
	ValidUntil int64
}

// ExternalFunction — функция веб-сервиса хост-системы.
type ExternalFunction struct {
	Name      string
	Component string
}
