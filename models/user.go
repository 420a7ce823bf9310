package models

// UserRole - роль из JWT. Пользователи и выдача токенов живут во внешнем сервисе.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RoleService   UserRole = "service"
	RolePlayer    UserRole = "player"
)

func ParseUserRole(v string) (UserRole, error) {
	return parseEnum("user role", v, RoleAdmin, RoleOrganizer, RoleService, RolePlayer)
}
