// Пакет rbac — логика ролевого доступа к view/endpoint'ам.
// Роль разрешается из ролевого документа в БД по subject токена IdP;
// неизвестный subject получает RoleNone — это отсутствие доступа, не ошибка.
package rbac

// Роли системы.
const (
	// RoleAdmin — администратор библиотеки.
	RoleAdmin = "admin"
	// RoleCitizen — гражданин (читатель).
	RoleCitizen = "citizen"
	// RoleNone — роль не разрешена (нет ролевого документа).
	RoleNone = ""
)

// validRoles — допустимые значения ролевого документа.
var validRoles = map[string]bool{
	RoleAdmin:   true,
	RoleCitizen: true,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
// RoleNone допустимой ролью не считается.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// Allowed проверяет доступ роли к view с ограничением allowed.
// Пустой allowed означает «любой аутентифицированный пользователь».
// RoleNone не проходит никакое ограничение, включая пустое:
// неизвестная роль трактуется как отсутствие доступа.
func Allowed(role string, allowed ...string) bool {
	if role == RoleNone {
		return false
	}
	if len(allowed) == 0 {
		return IsValidRole(role)
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
