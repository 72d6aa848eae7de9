package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// CitizenRepository — доступ к таблице citizens.
type CitizenRepository interface {
	// Create регистрирует гражданина.
	Create(ctx context.Context, c *model.Citizen) error
	// GetByID возвращает гражданина по CNP.
	GetByID(ctx context.Context, id string) (*model.Citizen, error)
	// List возвращает всех граждан.
	List(ctx context.Context) ([]*model.Citizen, error)
	// Update обновляет данные гражданина.
	Update(ctx context.Context, c *model.Citizen) error
	// Delete удаляет гражданина.
	Delete(ctx context.Context, id string) error
}

// citizenRepo — реализация CitizenRepository.
type citizenRepo struct {
	db DBTX
}

// NewCitizenRepository создаёт репозиторий граждан.
func NewCitizenRepository(db DBTX) CitizenRepository {
	return &citizenRepo{db: db}
}

func (r *citizenRepo) Create(ctx context.Context, c *model.Citizen) error {
	query := `INSERT INTO citizens (id, name) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, c.ID, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: гражданин с CNP %s уже зарегистрирован", ErrConflict, c.ID)
		}
		return fmt.Errorf("ошибка регистрации гражданина: %w", err)
	}
	return nil
}

func (r *citizenRepo) GetByID(ctx context.Context, id string) (*model.Citizen, error) {
	query := `SELECT id, name FROM citizens WHERE id = $1`

	c := &model.Citizen{}
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения гражданина: %w", err)
	}
	return c, nil
}

func (r *citizenRepo) List(ctx context.Context) ([]*model.Citizen, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM citizens ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка граждан: %w", err)
	}
	defer rows.Close()

	var result []*model.Citizen
	for rows.Next() {
		c := &model.Citizen{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования гражданина: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *citizenRepo) Update(ctx context.Context, c *model.Citizen) error {
	query := `UPDATE citizens SET name = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("ошибка обновления гражданина: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *citizenRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM citizens WHERE id = $1`, id)
	if err != nil {
		// Гражданин с членствами не удаляется.
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: у гражданина есть связанные членства", ErrConflict)
		}
		return fmt.Errorf("ошибка удаления гражданина: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
