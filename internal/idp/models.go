// Пакет idp — HTTP-клиент к Admin REST API Identity Provider.
// models.go — модели данных IdP.
package idp

import "time"

// TokenResponse — ответ на запрос токена через Client Credentials flow.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// IDPUser — пользователь в Identity Provider.
type IDPUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Enabled       bool   `json:"enabled"`
	CreatedAt     int64  `json:"createdTimestamp"`
	EmailVerified bool   `json:"emailVerified"`
}

// CreatedAtTime возвращает CreatedAt как time.Time.
// IdP хранит timestamp в миллисекундах.
func (u *IDPUser) CreatedAtTime() time.Time {
	return time.UnixMilli(u.CreatedAt)
}

// RealmRepresentation — краткая информация о realm.
type RealmRepresentation struct {
	Realm   string `json:"realm"`
	Enabled bool   `json:"enabled"`
}

// userCreateRequest — запрос на создание пользователя в IdP.
// Поля соответствуют Admin REST API.
type userCreateRequest struct {
	Username      string           `json:"username"`
	Email         string           `json:"email,omitempty"`
	FirstName     string           `json:"firstName,omitempty"`
	LastName      string           `json:"lastName,omitempty"`
	Enabled       bool             `json:"enabled"`
	EmailVerified bool             `json:"emailVerified"`
	Credentials   []userCredential `json:"credentials,omitempty"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
}

// userCredential — учётные данные пользователя.
type userCredential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}
