// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidLicense — лицензия не задана или не подтверждена.
	ErrInvalidLicense = errors.New("лицензия не задана или не подтверждена")
	// ErrNotEligible — пользователь не подходит для сервиса по ролям.
	ErrNotEligible = errors.New("пользователь не подходит для сервиса")
	// ErrMissingService — сервис не входит в набор модуля или отсутствует в БД.
	ErrMissingService = errors.New("сервис не найден")
	// ErrNoServicesDefined — в БД нет ни одного сервиса модуля.
	ErrNoServicesDefined = errors.New("сервисы модуля не созданы")
	// ErrNoTargetService — отсутствует сервис основной роли пользователя.
	ErrNoTargetService = errors.New("сервис основной роли не найден")
	// ErrRecalculateFailed — не удалось пересчитать ключ пользователя.
	// Всегда оборачивает исходную причину.
	ErrRecalculateFailed = errors.New("ошибка пересчёта ключа")
	// ErrPanelUnavailable — операция в панели не выполнена.
	ErrPanelUnavailable = errors.New("панель ключей недоступна")
)
