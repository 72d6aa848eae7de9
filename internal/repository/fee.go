package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// FeeRepository — доступ к таблице fees.
type FeeRepository interface {
	// Create начисляет штраф. Повторное начисление по той же выдаче — ErrConflict.
	Create(ctx context.Context, f *model.Fee) error
	// GetByID возвращает штраф по идентификатору.
	GetByID(ctx context.Context, id string) (*model.Fee, error)
	// GetByBorrow возвращает штраф по идентификатору выдачи.
	GetByBorrow(ctx context.Context, borrowID string) (*model.Fee, error)
	// ListByMembership возвращает штрафы членства.
	ListByMembership(ctx context.Context, membershipID string) ([]*model.Fee, error)
	// ListAll возвращает все штрафы (для агрегаций).
	ListAll(ctx context.Context) ([]*model.Fee, error)
	// MarkPaid помечает штраф оплаченным.
	MarkPaid(ctx context.Context, id string) error
	// Update обновляет сумму и состояние оплаты штрафа.
	Update(ctx context.Context, f *model.Fee) error
	// Delete удаляет штраф.
	Delete(ctx context.Context, id string) error
}

// feeRepo — реализация FeeRepository.
type feeRepo struct {
	db DBTX
}

// NewFeeRepository создаёт репозиторий штрафов.
func NewFeeRepository(db DBTX) FeeRepository {
	return &feeRepo{db: db}
}

func (r *feeRepo) Create(ctx context.Context, f *model.Fee) error {
	query := `
		INSERT INTO fees (id, borrow_id, membership_id, amount, paid)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, f.ID, f.BorrowID, f.MembershipID, f.Amount, f.Paid)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: штраф по выдаче %s уже начислен", ErrConflict, f.BorrowID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: выдача или членство не найдены", ErrNotFound)
		}
		return fmt.Errorf("ошибка начисления штрафа: %w", err)
	}
	return nil
}

func (r *feeRepo) GetByID(ctx context.Context, id string) (*model.Fee, error) {
	query := `
		SELECT id, borrow_id, membership_id, amount, paid
		FROM fees
		WHERE id = $1`

	f := &model.Fee{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.BorrowID, &f.MembershipID, &f.Amount, &f.Paid,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения штрафа: %w", err)
	}
	return f, nil
}

func (r *feeRepo) GetByBorrow(ctx context.Context, borrowID string) (*model.Fee, error) {
	query := `
		SELECT id, borrow_id, membership_id, amount, paid
		FROM fees
		WHERE borrow_id = $1`

	f := &model.Fee{}
	err := r.db.QueryRow(ctx, query, borrowID).Scan(
		&f.ID, &f.BorrowID, &f.MembershipID, &f.Amount, &f.Paid,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения штрафа: %w", err)
	}
	return f, nil
}

func (r *feeRepo) ListByMembership(ctx context.Context, membershipID string) ([]*model.Fee, error) {
	query := `
		SELECT id, borrow_id, membership_id, amount, paid
		FROM fees
		WHERE membership_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, membershipID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения штрафов членства: %w", err)
	}
	defer rows.Close()

	return scanFees(rows)
}

func (r *feeRepo) ListAll(ctx context.Context) ([]*model.Fee, error) {
	query := `
		SELECT id, borrow_id, membership_id, amount, paid
		FROM fees
		ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка штрафов: %w", err)
	}
	defer rows.Close()

	return scanFees(rows)
}

func scanFees(rows pgx.Rows) ([]*model.Fee, error) {
	var result []*model.Fee
	for rows.Next() {
		f := &model.Fee{}
		if err := rows.Scan(&f.ID, &f.BorrowID, &f.MembershipID, &f.Amount, &f.Paid); err != nil {
			return nil, fmt.Errorf("ошибка сканирования штрафа: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *feeRepo) MarkPaid(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE fees SET paid = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка оплаты штрафа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *feeRepo) Update(ctx context.Context, f *model.Fee) error {
	query := `
		UPDATE fees
		SET amount = $2, paid = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, f.ID, f.Amount, f.Paid)
	if err != nil {
		return fmt.Errorf("ошибка обновления штрафа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *feeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления штрафа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
