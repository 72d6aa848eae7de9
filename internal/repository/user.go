package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// UserRepository — доступ к таблице users (роли пользователей портала).
type UserRepository interface {
	// Create создаёт запись пользователя.
	Create(ctx context.Context, u *model.User) error
	// GetBySubject возвращает пользователя по subject токена.
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	// GetByCitizenID возвращает пользователя по CNP.
	GetByCitizenID(ctx context.Context, citizenID string) (*model.User, error)
	// List возвращает всех пользователей.
	List(ctx context.Context) ([]*model.User, error)
	// ResolveUser возвращает пользователя по subject или nil, nil если запись отсутствует.
	// Реализует middleware.RoleProvider.
	ResolveUser(ctx context.Context, subject string) (*model.User, error)
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (subject, citizen_id, name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		u.Subject, u.CitizenID, u.Name, u.Email, u.Role,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: пользователь %s уже зарегистрирован", ErrConflict, u.Subject)
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	query := `
		SELECT subject, citizen_id, name, email, role, created_at
		FROM users
		WHERE subject = $1`

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, subject).Scan(
		&u.Subject, &u.CitizenID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByCitizenID(ctx context.Context, citizenID string) (*model.User, error) {
	query := `
		SELECT subject, citizen_id, name, email, role, created_at
		FROM users
		WHERE citizen_id = $1`

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, citizenID).Scan(
		&u.Subject, &u.CitizenID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя по CNP: %w", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT subject, citizen_id, name, email, role, created_at
		FROM users
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.Subject, &u.CitizenID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// ResolveUser — адаптер для middleware: отсутствие записи не является ошибкой.
func (r *userRepo) ResolveUser(ctx context.Context, subject string) (*model.User, error) {
	u, err := r.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}
