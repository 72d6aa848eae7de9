package model

import "time"

// User — ролевой документ аутентифицированного пользователя.
// Ключ — subject (sub) токена Identity Provider; хранится в таблице users.
// Роль берётся отсюда, а не из токена: IdP отвечает только за identity.
type User struct {
	// Subject — sub из JWT Identity Provider
	Subject string `json:"subject"`
	// CitizenID — CNP гражданина (пустой у администраторов без профиля)
	CitizenID string `json:"citizenId"`
	// Name — полное имя
	Name string `json:"name"`
	// Email — адрес электронной почты
	Email string `json:"email"`
	// Role — роль (admin, citizen)
	Role string `json:"role"`
	// CreatedAt — время создания записи
	CreatedAt time.Time `json:"createdAt"`
}
