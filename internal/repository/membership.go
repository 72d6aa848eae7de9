package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// MembershipRepository — доступ к таблице memberships.
type MembershipRepository interface {
	// Create создаёт членство. Повторное активное членство
	// того же гражданина — ErrConflict (частичный уникальный индекс).
	Create(ctx context.Context, m *model.Membership) error
	// GetByID возвращает членство по номеру.
	GetByID(ctx context.Context, id string) (*model.Membership, error)
	// GetActiveByCitizen возвращает активное членство гражданина.
	GetActiveByCitizen(ctx context.Context, citizenID string) (*model.Membership, error)
	// List возвращает все членства.
	List(ctx context.Context) ([]*model.Membership, error)
	// SetActive включает или выключает членство.
	SetActive(ctx context.Context, id string, active bool) error
}

// membershipRepo — реализация MembershipRepository.
type membershipRepo struct {
	db DBTX
}

// NewMembershipRepository создаёт репозиторий членств.
func NewMembershipRepository(db DBTX) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, m *model.Membership) error {
	query := `
		INSERT INTO memberships (id, citizen_id, issue_date, active)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, m.ID, m.CitizenID, m.IssueDate, m.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: у гражданина %s уже есть активное членство", ErrConflict, m.CitizenID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: гражданин %s не зарегистрирован", ErrNotFound, m.CitizenID)
		}
		return fmt.Errorf("ошибка создания членства: %w", err)
	}
	return nil
}

func (r *membershipRepo) GetByID(ctx context.Context, id string) (*model.Membership, error) {
	query := `
		SELECT id, citizen_id, issue_date, active
		FROM memberships
		WHERE id = $1`

	m := &model.Membership{}
	err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.CitizenID, &m.IssueDate, &m.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения членства: %w", err)
	}
	return m, nil
}

func (r *membershipRepo) GetActiveByCitizen(ctx context.Context, citizenID string) (*model.Membership, error) {
	query := `
		SELECT id, citizen_id, issue_date, active
		FROM memberships
		WHERE citizen_id = $1 AND active`

	m := &model.Membership{}
	err := r.db.QueryRow(ctx, query, citizenID).Scan(&m.ID, &m.CitizenID, &m.IssueDate, &m.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения активного членства: %w", err)
	}
	return m, nil
}

func (r *membershipRepo) List(ctx context.Context) ([]*model.Membership, error) {
	query := `
		SELECT id, citizen_id, issue_date, active
		FROM memberships
		ORDER BY issue_date`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка членств: %w", err)
	}
	defer rows.Close()

	var result []*model.Membership
	for rows.Next() {
		m := &model.Membership{}
		if err := rows.Scan(&m.ID, &m.CitizenID, &m.IssueDate, &m.Active); err != nil {
			return nil, fmt.Errorf("ошибка сканирования членства: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *membershipRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE memberships SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("ошибка изменения статуса членства: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
