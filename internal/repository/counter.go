package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// CounterRepository — доступ к таблице counters (окна обслуживания).
// Хранилище — источник истины для флага паузы: воркер выдачи перечитывает
// is_paused перед каждой заявкой.
type CounterRepository interface {
	// Upsert создаёт или обновляет запись окна по (department, counter_id).
	Upsert(ctx context.Context, c *model.Counter) error
	// GetByID возвращает окно по идентификатору записи.
	GetByID(ctx context.Context, id string) (*model.Counter, error)
	// GetByNumber возвращает окно по отделу и номеру.
	GetByNumber(ctx context.Context, department string, counterID int) (*model.Counter, error)
	// List возвращает окна отдела.
	List(ctx context.Context, department string) ([]*model.Counter, error)
	// SetPaused ставит окно на паузу или снимает с неё.
	SetPaused(ctx context.Context, id string, paused bool) error
}

// counterRepo — реализация CounterRepository.
type counterRepo struct {
	db DBTX
}

// NewCounterRepository создаёт репозиторий окон обслуживания.
func NewCounterRepository(db DBTX) CounterRepository {
	return &counterRepo{db: db}
}

func (r *counterRepo) Upsert(ctx context.Context, c *model.Counter) error {
	query := `
		INSERT INTO counters (id, counter_id, department, is_paused)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (department, counter_id)
		DO UPDATE SET is_paused = EXCLUDED.is_paused
		RETURNING id`

	err := r.db.QueryRow(ctx, query, c.ID, c.CounterID, c.Department, c.IsPaused).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения окна обслуживания: %w", err)
	}
	return nil
}

func (r *counterRepo) GetByID(ctx context.Context, id string) (*model.Counter, error) {
	query := `
		SELECT id, counter_id, department, is_paused
		FROM counters
		WHERE id = $1`

	c := &model.Counter{}
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.CounterID, &c.Department, &c.IsPaused)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения окна обслуживания: %w", err)
	}
	return c, nil
}

func (r *counterRepo) GetByNumber(ctx context.Context, department string, counterID int) (*model.Counter, error) {
	query := `
		SELECT id, counter_id, department, is_paused
		FROM counters
		WHERE department = $1 AND counter_id = $2`

	c := &model.Counter{}
	err := r.db.QueryRow(ctx, query, department, counterID).Scan(&c.ID, &c.CounterID, &c.Department, &c.IsPaused)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения окна обслуживания: %w", err)
	}
	return c, nil
}

func (r *counterRepo) List(ctx context.Context, department string) ([]*model.Counter, error) {
	query := `
		SELECT id, counter_id, department, is_paused
		FROM counters
		WHERE department = $1
		ORDER BY counter_id`

	rows, err := r.db.Query(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка окон: %w", err)
	}
	defer rows.Close()

	var result []*model.Counter
	for rows.Next() {
		c := &model.Counter{}
		if err := rows.Scan(&c.ID, &c.CounterID, &c.Department, &c.IsPaused); err != nil {
			return nil, fmt.Errorf("ошибка сканирования окна: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *counterRepo) SetPaused(ctx context.Context, id string, paused bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE counters SET is_paused = $2 WHERE id = $1`, id, paused)
	if err != nil {
		return fmt.Errorf("ошибка изменения паузы окна: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
