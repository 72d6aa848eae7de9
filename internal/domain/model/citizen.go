package model

import "time"

// Citizen — гражданин, зарегистрированный в системе.
// ID — внешний идентификатор (CNP, ровно 13 цифр).
type Citizen struct {
	// ID — CNP гражданина
	ID string `json:"id"`
	// Name — полное имя
	Name string `json:"name"`
}

// Membership — читательский билет гражданина.
// Ровно одна запись на гражданина (проверяется при enrollment).
type Membership struct {
	// ID — номер членства (формат M<unix-millis>)
	ID string `json:"id"`
	// CitizenID — CNP владельца
	CitizenID string `json:"citizenId"`
	// IssueDate — дата выдачи
	IssueDate time.Time `json:"issueDate"`
	// Active — действует ли членство
	Active bool `json:"active"`
}
