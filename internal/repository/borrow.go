package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// BorrowRepository — доступ к таблице borrows.
type BorrowRepository interface {
	// Create регистрирует выдачу книги.
	Create(ctx context.Context, b *model.Borrow) error
	// GetByID возвращает запись о выдаче.
	GetByID(ctx context.Context, id string) (*model.Borrow, error)
	// GetOpenByBook возвращает открытую выдачу книги на членство.
	GetOpenByBook(ctx context.Context, bookID, membershipID string) (*model.Borrow, error)
	// ListByMembership возвращает выдачи членства.
	ListByMembership(ctx context.Context, membershipID string) ([]*model.Borrow, error)
	// ListAll возвращает все выдачи (для агрегаций).
	ListAll(ctx context.Context) ([]*model.Borrow, error)
	// SetReturned проставляет дату возврата открытой выдачи.
	SetReturned(ctx context.Context, id string, returnDate time.Time) error
	// Update обновляет даты выдачи (административная правка).
	Update(ctx context.Context, b *model.Borrow) error
}

// borrowRepo — реализация BorrowRepository.
type borrowRepo struct {
	db DBTX
}

// NewBorrowRepository создаёт репозиторий выдач.
func NewBorrowRepository(db DBTX) BorrowRepository {
	return &borrowRepo{db: db}
}

func (r *borrowRepo) Create(ctx context.Context, b *model.Borrow) error {
	query := `
		INSERT INTO borrows (id, book_id, membership_id, borrow_date, due_date, return_date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		b.ID, b.BookID, b.MembershipID, b.BorrowDate, b.DueDate, b.ReturnDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: книга %s уже выдана по членству %s", ErrConflict, b.BookID, b.MembershipID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: книга или членство не найдены", ErrNotFound)
		}
		return fmt.Errorf("ошибка регистрации выдачи: %w", err)
	}
	return nil
}

func (r *borrowRepo) GetByID(ctx context.Context, id string) (*model.Borrow, error) {
	query := `
		SELECT id, book_id, membership_id, borrow_date, due_date, return_date
		FROM borrows
		WHERE id = $1`

	b := &model.Borrow{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.BookID, &b.MembershipID, &b.BorrowDate, &b.DueDate, &b.ReturnDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения выдачи: %w", err)
	}
	return b, nil
}

func (r *borrowRepo) GetOpenByBook(ctx context.Context, bookID, membershipID string) (*model.Borrow, error) {
	query := `
		SELECT id, book_id, membership_id, borrow_date, due_date, return_date
		FROM borrows
		WHERE book_id = $1 AND membership_id = $2 AND return_date IS NULL`

	b := &model.Borrow{}
	err := r.db.QueryRow(ctx, query, bookID, membershipID).Scan(
		&b.ID, &b.BookID, &b.MembershipID, &b.BorrowDate, &b.DueDate, &b.ReturnDate,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения открытой выдачи: %w", err)
	}
	return b, nil
}

func (r *borrowRepo) ListByMembership(ctx context.Context, membershipID string) ([]*model.Borrow, error) {
	query := `
		SELECT id, book_id, membership_id, borrow_date, due_date, return_date
		FROM borrows
		WHERE membership_id = $1
		ORDER BY borrow_date`

	rows, err := r.db.Query(ctx, query, membershipID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения выдач членства: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

func (r *borrowRepo) ListAll(ctx context.Context) ([]*model.Borrow, error) {
	query := `
		SELECT id, book_id, membership_id, borrow_date, due_date, return_date
		FROM borrows
		ORDER BY borrow_date`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка выдач: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

func scanBorrows(rows pgx.Rows) ([]*model.Borrow, error) {
	var result []*model.Borrow
	for rows.Next() {
		b := &model.Borrow{}
		if err := rows.Scan(
			&b.ID, &b.BookID, &b.MembershipID, &b.BorrowDate, &b.DueDate, &b.ReturnDate,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования выдачи: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *borrowRepo) SetReturned(ctx context.Context, id string, returnDate time.Time) error {
	query := `
		UPDATE borrows
		SET return_date = $2
		WHERE id = $1 AND return_date IS NULL`

	tag, err := r.db.Exec(ctx, query, id, returnDate)
	if err != nil {
		return fmt.Errorf("ошибка закрытия выдачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *borrowRepo) Update(ctx context.Context, b *model.Borrow) error {
	query := `
		UPDATE borrows
		SET borrow_date = $2, due_date = $3, return_date = $4
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, b.ID, b.BorrowDate, b.DueDate, b.ReturnDate)
	if err != nil {
		return fmt.Errorf("ошибка обновления выдачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
