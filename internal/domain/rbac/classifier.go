package rbac

import (
	"context"
	"fmt"
)

// Shortname ролей хост-системы, из которых выводятся роли MCP.
var (
	hostManagerRoles        = []string{"manager"}
	hostEditingTeacherRoles = []string{"editingteacher"}
	// "noneditingteacher" — устаревшее имя роли teacher.
	hostTeacherRoles = []string{"teacher", "noneditingteacher"}
	hostStudentRoles = []string{"student"}
)

// RoleQuery — доступ к назначениям ролей хост-системы.
type RoleQuery interface {
	// IsSiteAdmin — входит ли пользователь в список администраторов сайта.
	IsSiteAdmin(ctx context.Context, userID int64) (bool, error)
	// HasSystemRole — есть ли у пользователя одна из ролей в системном контексте.
	HasSystemRole(ctx context.Context, userID int64, shortnames ...string) (bool, error)
	// HasCourseRole — есть ли у пользователя одна из ролей в контексте любого курса.
	HasCourseRole(ctx context.Context, userID int64, shortnames ...string) (bool, error)
}

// Classifier вычисляет эффективные роли MCP пользователя.
type Classifier struct {
	query RoleQuery
}

// NewClassifier создаёт классификатор ролей поверх RoleQuery.
func NewClassifier(query RoleQuery) *Classifier {
	return &Classifier{query: query}
}

// EffectiveRoles возвращает роли пользователя в порядке убывания приоритета.
// Результат никогда не пуст: если у пользователя нет ролей в курсах
// (editingteacher, teacher, student), добавляется роль user, в том числе
// при наличии admin или manager.
func (c *Classifier) EffectiveRoles(ctx context.Context, userID int64) ([]string, error) {
	var out []string

	for _, role := range []string{RoleAdmin, RoleManager, RoleEditingTeacher, RoleTeacher, RoleStudent} {
		ok, err := c.hasRole(ctx, userID, role)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, role)
		}
	}

	hasCourse := false
	for _, r := range out {
		if r == RoleEditingTeacher || r == RoleTeacher || r == RoleStudent {
			hasCourse = true
			break
		}
	}
	if !hasCourse {
		out = append(out, RoleUser)
	}

	return out, nil
}

// IsEligible проверяет, может ли пользователь быть назначен на сервис.
// Для user всегда true, для неизвестных сервисов всегда false.
func (c *Classifier) IsEligible(ctx context.Context, userID int64, shortname string) (bool, error) {
	role := RoleFromService(shortname)
	switch role {
	case RoleUser:
		return true, nil
	case RoleAdmin, RoleManager, RoleEditingTeacher, RoleTeacher, RoleStudent:
		return c.hasRole(ctx, userID, role)
	default:
		return false, nil
	}
}

// hasRole проверяет одну роль MCP (кроме user).
func (c *Classifier) hasRole(ctx context.Context, userID int64, role string) (bool, error) {
	var (
		ok  bool
		err error
	)

	switch role {
	case RoleAdmin:
		ok, err = c.query.IsSiteAdmin(ctx, userID)
	case RoleManager:
		ok, err = c.query.HasSystemRole(ctx, userID, hostManagerRoles...)
		if err == nil && !ok {
			ok, err = c.query.HasCourseRole(ctx, userID, hostManagerRoles...)
		}
	case RoleEditingTeacher:
		ok, err = c.query.HasCourseRole(ctx, userID, hostEditingTeacherRoles...)
	case RoleTeacher:
		ok, err = c.query.HasCourseRole(ctx, userID, hostTeacherRoles...)
	case RoleStudent:
		ok, err = c.query.HasCourseRole(ctx, userID, hostStudentRoles...)
	default:
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("проверка роли %s пользователя %d: %w", role, userID, err)
	}
	return ok, nil
}

// RoleForHostRole сопоставляет shortname роли хост-системы роли MCP.
// Используется обработчиком событий назначения ролей.
func RoleForHostRole(hostShortname string) (string, bool) {
	switch hostShortname {
	case "manager":
		return RoleManager, true
	case "editingteacher":
		return RoleEditingTeacher, true
	case "teacher", "noneditingteacher":
		return RoleTeacher, true
	case "student":
		return RoleStudent, true
	default:
		return "", false
	}
}
