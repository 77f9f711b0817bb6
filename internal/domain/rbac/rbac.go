// Пакет rbac — роли MCP и их соответствие сервисам (grants) хост-системы.
// Роли упорядочены по приоритету: admin > manager > editingteacher >
// teacher > student > user. Каждой роли соответствует ровно один сервис
// с shortname "moodlemcp_<role>".
package rbac

import "strings"

// Роли в порядке убывания приоритета.
const (
	RoleAdmin          = "admin"
	RoleManager        = "manager"
	RoleEditingTeacher = "editingteacher"
	RoleTeacher        = "teacher"
	RoleStudent        = "student"
	RoleUser           = "user"
)

// Префиксы shortname сервисов.
const (
	// ServicePrefix — текущий префикс сервисов модуля.
	ServicePrefix = "moodlemcp_"
	// legacyServicePrefix — префикс ранних версий плагина.
	legacyServicePrefix = "moodle_"
)

// roles — роли в порядке убывания приоритета.
// Этот же порядок используется как порядок определений сервисов.
var roles = []string{
	RoleAdmin,
	RoleManager,
	RoleEditingTeacher,
	RoleTeacher,
	RoleStudent,
	RoleUser,
}

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем выше приоритет.
var roleWeight = map[string]int{
	RoleAdmin:          6,
	RoleManager:        5,
	RoleEditingTeacher: 4,
	RoleTeacher:        3,
	RoleStudent:        2,
	RoleUser:           1,
}

// Roles возвращает копию списка ролей в порядке убывания приоритета.
func Roles() []string {
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// PrimaryRole возвращает роль с максимальным приоритетом из набора.
// Если набор пуст или не содержит известных ролей — возвращает RoleUser.
func PrimaryRole(set []string) string {
	best := ""
	for _, r := range set {
		if roleWeight[r] > roleWeight[best] {
			best = r
		}
	}
	if best == "" {
		return RoleUser
	}
	return best
}

// ServiceForRole возвращает shortname сервиса для роли.
func ServiceForRole(role string) string {
	return ServicePrefix + role
}

// RoleFromService возвращает роль по shortname сервиса.
// Поддерживается устаревший префикс "moodle_"; неизвестные shortname
// возвращаются без изменений.
func RoleFromService(shortname string) string {
	if role, ok := strings.CutPrefix(shortname, ServicePrefix); ok {
		return role
	}
	if role, ok := strings.CutPrefix(shortname, legacyServicePrefix); ok {
		return role
	}
	return shortname
}

// ServicesForRoles возвращает shortname сервисов для набора ролей без дубликатов.
func ServicesForRoles(set []string) []string {
	seen := make(map[string]bool, len(set))
	out := make([]string, 0, len(set))
	for _, r := range set {
		s := ServiceForRole(r)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// IsKnownService проверяет, что shortname принадлежит фиксированному набору сервисов модуля.
func IsKnownService(shortname string) bool {
	if !strings.HasPrefix(shortname, ServicePrefix) {
		return false
	}
	return IsValidRole(RoleFromService(shortname))
}
