package repository

import (
	"context"
	"fmt"
	"slices"
)

// RoleQuery — проверки назначений ролей хост-системы
// ({role}, {role_assignments}, {context}). Реализует rbac.RoleQuery.
type RoleQuery struct {
	db DBTX
	hostSQL
}

// NewRoleQuery создаёт RoleQuery.
func NewRoleQuery(db DBTX, prefix string) *RoleQuery {
	return &RoleQuery{db: db, hostSQL: hostSQL{prefix: prefix}}
}

// IsSiteAdmin проверяет, входит ли пользователь в список siteadmins.
func (r *RoleQuery) IsSiteAdmin(ctx context.Context, userID int64) (bool, error) {
	var value string
	err := r.db.QueryRow(ctx,
		r.q(`SELECT COALESCE((SELECT value FROM {config} WHERE name = 'siteadmins'), '')`),
	).Scan(&value)
	if err != nil {
		return false, fmt.Errorf("ошибка чтения siteadmins: %w", err)
	}
	return slices.Contains(parseIDList(value), userID), nil
}

// HasSystemRole проверяет назначение одной из ролей на уровне системы.
func (r *RoleQuery) HasSystemRole(ctx context.Context, userID int64, shortnames ...string) (bool, error) {
	return r.hasRoleAtLevel(ctx, userID, contextLevelSystem, shortnames)
}

// HasCourseRole проверяет назначение одной из ролей в любом курсе.
func (r *RoleQuery) HasCourseRole(ctx context.Context, userID int64, shortnames ...string) (bool, error) {
	return r.hasRoleAtLevel(ctx, userID, contextLevelCourse, shortnames)
}

func (r *RoleQuery) hasRoleAtLevel(ctx context.Context, userID int64, level int, shortnames []string) (bool, error) {
	if len(shortnames) == 0 {
		return false, nil
	}
	query := r.q(`
		SELECT EXISTS (
			SELECT 1
			FROM {role_assignments} ra
			JOIN {role} r ON r.id = ra.roleid
			JOIN {context} ctx ON ctx.id = ra.contextid
			WHERE ra.userid = $1
			  AND ctx.contextlevel = $2
			  AND r.shortname = ANY($3)
		)`)

	var ok bool
	if err := r.db.QueryRow(ctx, query, userID, level, shortnames).Scan(&ok); err != nil {
		return false, fmt.Errorf("ошибка проверки ролей пользователя %d на уровне %d: %w", userID, level, err)
	}
	return ok, nil
}
