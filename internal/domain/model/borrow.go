package model

import "time"

// Borrow — запись о выдаче книги.
// ReturnDate == nil означает, что книга ещё на руках.
type Borrow struct {
	// ID — UUID записи
	ID string `json:"id"`
	// BookID — идентификатор выданной книги
	BookID string `json:"bookId"`
	// MembershipID — членство, на которое выдана книга
	MembershipID string `json:"membershipId"`
	// BorrowDate — дата выдачи
	BorrowDate time.Time `json:"borrowDate"`
	// DueDate — срок возврата (выдача + 30 дней)
	DueDate time.Time `json:"dueDate"`
	// ReturnDate — фактическая дата возврата (nil — не возвращена)
	ReturnDate *time.Time `json:"returnDate"`
}

// Open сообщает, что книга ещё не возвращена.
func (b *Borrow) Open() bool {
	return b.ReturnDate == nil
}

// Fee — штраф за просрочку возврата. Привязан 1:1 к Borrow.
type Fee struct {
	// ID — идентификатор штрафа (совпадает с BorrowID у авто-сгенерированных)
	ID string `json:"id"`
	// BorrowID — выдача, за которую начислен штраф
	BorrowID string `json:"borrowId"`
	// MembershipID — членство должника
	MembershipID string `json:"membershipId"`
	// Amount — сумма в долларах ($1 за день просрочки)
	Amount float64 `json:"amount"`
	// Paid — оплачен ли штраф
	Paid bool `json:"paid"`
}
