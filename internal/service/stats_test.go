package service

import (
	"testing"
	"time"

	"github.com/apirvulescu/bureausys/internal/domain/aggregate"
	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// newDataset строит снимок с индексами как после fetch.
func newDataset(
	books []*model.Book,
	borrows []*model.Borrow,
	fees []*model.Fee,
	citizens []*model.Citizen,
	memberships []*model.Membership,
) *dataset {
	return &dataset{
		books:          books,
		borrows:        borrows,
		fees:           fees,
		citizens:       citizens,
		memberships:    memberships,
		bookByID:       aggregate.Index(books, func(b *model.Book) string { return b.ID }),
		borrowByID:     aggregate.Index(borrows, func(b *model.Borrow) string { return b.ID }),
		membershipByID: aggregate.Index(memberships, func(m *model.Membership) string { return m.ID }),
		citizenByID:    aggregate.Index(citizens, func(c *model.Citizen) string { return c.ID }),
	}
}

func datumValue(t *testing.T, data []aggregate.Datum, id string) float64 {
	t.Helper()
	for _, d := range data {
		if d.ID == id {
			return d.Value
		}
	}
	t.Fatalf("категория %q не найдена в серии %+v", id, data)
	return 0
}

// TestDataset_BooksPerAuthor проверяет группировку каталога по авторам.
func TestDataset_BooksPerAuthor(t *testing.T) {
	ds := newDataset([]*model.Book{
		{ID: "b1", Name: "Война и мир", Author: "Толстой"},
		{ID: "b2", Name: "Анна Каренина", Author: "Толстой"},
		{ID: "b3", Name: "Чайка", Author: "Чехов"},
	}, nil, nil, nil, nil)

	got := ds.booksPerAuthor()
	if len(got) != 2 {
		t.Fatalf("len = %d, ожидалось 2", len(got))
	}
	if v := datumValue(t, got, "Толстой"); v != 2 {
		t.Errorf("Толстой = %v, ожидалось 2", v)
	}
	if v := datumValue(t, got, "Чехов"); v != 1 {
		t.Errorf("Чехов = %v, ожидалось 1", v)
	}
}

// TestDataset_TopBorrowed проверяет топ выдач: выдача книги,
// отсутствующей в каталоге, исключается молча.
func TestDataset_TopBorrowed(t *testing.T) {
	books := []*model.Book{
		{ID: "b1", Name: "Война и мир"},
		{ID: "b2", Name: "Чайка"},
	}
	borrows := []*model.Borrow{
		{ID: "w1", BookID: "b1"},
		{ID: "w2", BookID: "b1"},
		{ID: "w3", BookID: "b2"},
		{ID: "w4", BookID: "ghost"}, // книги нет в каталоге
	}
	ds := newDataset(books, borrows, nil, nil, nil)

	got := ds.topBorrowed()
	if len(got) != 2 {
		t.Fatalf("len = %d, ожидалось 2 (висячая ссылка исключена)", len(got))
	}
	if got[0].ID != "Война и мир" || got[0].Value != 2 {
		t.Errorf("топ-1 = %+v, ожидалась Война и мир со значением 2", got[0])
	}
}

// TestDataset_AverageBorrowDays: в среднее входят только закрытые выдачи
// с книгой в каталоге.
func TestDataset_AverageBorrowDays(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ret10 := base.Add(10 * 24 * time.Hour)
	ret20 := base.Add(20 * 24 * time.Hour)

	books := []*model.Book{{ID: "b1", Name: "Война и мир"}}
	borrows := []*model.Borrow{
		{ID: "w1", BookID: "b1", BorrowDate: base, ReturnDate: &ret10},
		{ID: "w2", BookID: "b1", BorrowDate: base, ReturnDate: &ret20},
		{ID: "w3", BookID: "b1", BorrowDate: base},                    // открыта
		{ID: "w4", BookID: "ghost", BorrowDate: base, ReturnDate: &ret10}, // книги нет
	}
	ds := newDataset(books, borrows, nil, nil, nil)

	got := ds.averageBorrowDays()
	if len(got) != 1 {
		t.Fatalf("len = %d, ожидалось 1", len(got))
	}
	if got[0].Value != 15 {
		t.Errorf("среднее = %v, ожидалось 15", got[0].Value)
	}
}

// TestDataset_Enrollment проверяет разбиение граждан по наличию
// действующего билета.
func TestDataset_Enrollment(t *testing.T) {
	citizens := []*model.Citizen{
		{ID: "1111111111111", Name: "Ион"},
		{ID: "2222222222222", Name: "Мария"},
		{ID: "3333333333333", Name: "Андрей"},
	}
	memberships := []*model.Membership{
		{ID: "M1", CitizenID: "1111111111111", Active: true},
		{ID: "M2", CitizenID: "2222222222222", Active: false}, // деактивирован
	}
	ds := newDataset(nil, nil, nil, citizens, memberships)

	got := ds.enrollment()
	if v := datumValue(t, got, "enrolled"); v != 1 {
		t.Errorf("enrolled = %v, ожидалось 1", v)
	}
	if v := datumValue(t, got, "unenrolled"); v != 2 {
		t.Errorf("unenrolled = %v, ожидалось 2", v)
	}
}

// TestDataset_RevenueByMember: только оплаченные штрафы, штраф по
// неизвестному членству исключается.
func TestDataset_RevenueByMember(t *testing.T) {
	citizens := []*model.Citizen{{ID: "1111111111111", Name: "Ион"}}
	memberships := []*model.Membership{{ID: "M1", CitizenID: "1111111111111", Active: true}}
	fees := []*model.Fee{
		{ID: "f1", MembershipID: "M1", Amount: 3, Paid: true},
		{ID: "f2", MembershipID: "M1", Amount: 5, Paid: true},
		{ID: "f3", MembershipID: "M1", Amount: 7, Paid: false},  // не оплачен
		{ID: "f4", MembershipID: "ghost", Amount: 9, Paid: true}, // членства нет
	}
	ds := newDataset(nil, nil, fees, citizens, memberships)

	got := ds.revenueByMember()
	if len(got) != 1 {
		t.Fatalf("len = %d, ожидалось 1", len(got))
	}
	if got[0].ID != "Ион" || got[0].Value != 8 {
		t.Errorf("got = %+v, ожидался Ион со значением 8", got[0])
	}
}

// TestDataset_RevenueByMonth группирует по месяцу возврата книги.
func TestDataset_RevenueByMonth(t *testing.T) {
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	borrows := []*model.Borrow{
		{ID: "w1", ReturnDate: &jan},
		{ID: "w2", ReturnDate: &feb},
		{ID: "w3"}, // не возвращена
	}
	fees := []*model.Fee{
		{ID: "f1", BorrowID: "w1", Amount: 2, Paid: true},
		{ID: "f2", BorrowID: "w1", Amount: 4, Paid: true},
		{ID: "f3", BorrowID: "w2", Amount: 1, Paid: true},
		{ID: "f4", BorrowID: "w3", Amount: 9, Paid: true},  // выдача не закрыта
		{ID: "f5", BorrowID: "w1", Amount: 5, Paid: false}, // не оплачен
	}
	ds := newDataset(nil, borrows, fees, nil, nil)

	got := ds.revenueByMonth()
	if len(got) != 2 {
		t.Fatalf("len = %d, ожидалось 2", len(got))
	}
	if v := datumValue(t, got, "2026-01"); v != 6 {
		t.Errorf("2026-01 = %v, ожидалось 6", v)
	}
	if v := datumValue(t, got, "2026-02"); v != 1 {
		t.Errorf("2026-02 = %v, ожидалось 1", v)
	}
}

// TestDataset_MembershipStatus: разбиение билетов по состоянию.
func TestDataset_MembershipStatus(t *testing.T) {
	memberships := []*model.Membership{
		{ID: "M1", Active: true},
		{ID: "M2", Active: true},
		{ID: "M3", Active: false},
	}
	ds := newDataset(nil, nil, nil, nil, memberships)

	got := ds.membershipStatus()
	if v := datumValue(t, got, "active"); v != 2 {
		t.Errorf("active = %v, ожидалось 2", v)
	}
	if v := datumValue(t, got, "inactive"); v != 1 {
		t.Errorf("inactive = %v, ожидалось 1", v)
	}
}
