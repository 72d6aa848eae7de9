// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrIDPUnavailable — Identity Provider (Keycloak) недоступен.
	ErrIDPUnavailable = errors.New("Identity Provider недоступен")
	// ErrBookUnavailable — все экземпляры книги выданы.
	ErrBookUnavailable = errors.New("книга недоступна для выдачи")
	// ErrNotEnrolled — у гражданина нет активного читательского билета.
	ErrNotEnrolled = errors.New("активный читательский билет не найден")
	// ErrAlreadyEnrolled — у гражданина уже есть активный читательский билет.
	ErrAlreadyEnrolled = errors.New("читательский билет уже оформлен")
	// ErrAlreadyBorrowed — книга уже выдана этому читателю.
	ErrAlreadyBorrowed = errors.New("книга уже выдана этому читателю")
	// ErrQueueFull — очередь заявок переполнена.
	ErrQueueFull = errors.New("очередь заявок переполнена")
)
