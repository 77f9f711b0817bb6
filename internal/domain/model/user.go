// Пакет model — доменные модели MCP Sync Module.
package model

// User — пользователь хост-системы.
// Хранится в таблице {user} хост-системы, модуль только читает её.
type User struct {
	// ID — идентификатор пользователя
	ID int64
	// Username — логин
	Username string
	// FirstName — имя
	FirstName string
	// LastName — фамилия
	LastName string
	// Email — адрес электронной почты
	Email string
	// Deleted — пользователь удалён
	Deleted bool
	// Suspended — учётная запись заблокирована
	Suspended bool
	// Confirmed — учётная запись подтверждена
	Confirmed bool
}

// FullName возвращает "Имя Фамилия".
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Active — пользователь не удалён и не заблокирован.
func (u *User) Active() bool {
	return !u.Deleted && !u.Suspended
}
