// Пакет model — доменные модели библиотечной системы.
package model

// Book — книга в каталоге библиотеки.
// Хранится в таблице books.
type Book struct {
	// ID — идентификатор книги
	ID string `json:"id"`
	// Name — название книги
	Name string `json:"name"`
	// Author — автор
	Author string `json:"author"`
	// Available — доступна ли книга для выдачи.
	// Производный флаг: false, пока существует открытый borrow.
	Available bool `json:"available"`
	// TotalPieces — общее количество экземпляров
	TotalPieces int `json:"totalPieces"`
}
