package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// OfficeRepository — доступ к таблицам offices и office_documents.
// Конфигурация офисов сохраняется целиком: офис вместе с документами.
type OfficeRepository interface {
	// Create создаёт офис с документами.
	Create(ctx context.Context, o *model.Office) error
	// GetByID возвращает офис с документами.
	GetByID(ctx context.Context, id string) (*model.Office, error)
	// List возвращает все офисы с документами.
	List(ctx context.Context) ([]*model.Office, error)
	// Update заменяет офис и его документы.
	Update(ctx context.Context, o *model.Office) error
	// Delete удаляет офис (документы каскадно).
	Delete(ctx context.Context, id string) error
}

// officeRepo — реализация OfficeRepository.
type officeRepo struct {
	db DBTX
}

// NewOfficeRepository создаёт репозиторий офисов.
func NewOfficeRepository(db DBTX) OfficeRepository {
	return &officeRepo{db: db}
}

func (r *officeRepo) Create(ctx context.Context, o *model.Office) error {
	query := `
		INSERT INTO offices (id, name, counter_count)
		VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, o.ID, o.Name, o.CounterCount)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: офис %s уже существует", ErrConflict, o.ID)
		}
		return fmt.Errorf("ошибка создания офиса: %w", err)
	}

	return r.insertDocuments(ctx, o.ID, o.Documents)
}

func (r *officeRepo) insertDocuments(ctx context.Context, officeID string, docs []model.OfficeDocument) error {
	for _, d := range docs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO office_documents (office_id, name, dependencies) VALUES ($1, $2, $3)`,
			officeID, d.Name, d.Dependencies,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: документ %q офиса %s уже описан", ErrConflict, d.Name, officeID)
			}
			return fmt.Errorf("ошибка сохранения документа офиса: %w", err)
		}
	}
	return nil
}

func (r *officeRepo) GetByID(ctx context.Context, id string) (*model.Office, error) {
	query := `SELECT id, name, counter_count FROM offices WHERE id = $1`

	o := &model.Office{}
	err := r.db.QueryRow(ctx, query, id).Scan(&o.ID, &o.Name, &o.CounterCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения офиса: %w", err)
	}

	docs, err := r.loadDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Documents = docs
	return o, nil
}

func (r *officeRepo) loadDocuments(ctx context.Context, officeID string) ([]model.OfficeDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, dependencies FROM office_documents WHERE office_id = $1 ORDER BY name`,
		officeID,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения документов офиса: %w", err)
	}
	defer rows.Close()

	var docs []model.OfficeDocument
	for rows.Next() {
		var d model.OfficeDocument
		if err := rows.Scan(&d.Name, &d.Dependencies); err != nil {
			return nil, fmt.Errorf("ошибка сканирования документа: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *officeRepo) List(ctx context.Context) ([]*model.Office, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, counter_count FROM offices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка офисов: %w", err)
	}
	defer rows.Close()

	var result []*model.Office
	for rows.Next() {
		o := &model.Office{}
		if err := rows.Scan(&o.ID, &o.Name, &o.CounterCount); err != nil {
			return nil, fmt.Errorf("ошибка сканирования офиса: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range result {
		docs, err := r.loadDocuments(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Documents = docs
	}
	return result, nil
}

func (r *officeRepo) Update(ctx context.Context, o *model.Office) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE offices SET name = $2, counter_count = $3 WHERE id = $1`,
		o.ID, o.Name, o.CounterCount,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления офиса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Документы заменяются целиком
	if _, err := r.db.Exec(ctx, `DELETE FROM office_documents WHERE office_id = $1`, o.ID); err != nil {
		return fmt.Errorf("ошибка очистки документов офиса: %w", err)
	}
	return r.insertDocuments(ctx, o.ID, o.Documents)
}

func (r *officeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM offices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления офиса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
