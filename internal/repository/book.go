package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// BookRepository — CRUD для таблицы books.
type BookRepository interface {
	// Create добавляет книгу в каталог.
	Create(ctx context.Context, b *model.Book) error
	// GetByID возвращает книгу по идентификатору.
	GetByID(ctx context.Context, id string) (*model.Book, error)
	// GetByNameAuthor возвращает книгу по названию и автору.
	GetByNameAuthor(ctx context.Context, name, author string) (*model.Book, error)
	// List возвращает книги каталога постранично.
	List(ctx context.Context, limit, offset int) ([]*model.Book, error)
	// ListAll возвращает весь каталог (для агрегаций).
	ListAll(ctx context.Context) ([]*model.Book, error)
	// Update обновляет книгу.
	Update(ctx context.Context, b *model.Book) error
	// Delete удаляет книгу из каталога.
	Delete(ctx context.Context, id string) error
	// SetAvailable меняет флаг доступности книги.
	SetAvailable(ctx context.Context, id string, available bool) error
	// Count возвращает количество книг в каталоге.
	Count(ctx context.Context) (int, error)
}

// bookRepo — реализация BookRepository.
type bookRepo struct {
	db DBTX
}

// NewBookRepository создаёт репозиторий книг.
func NewBookRepository(db DBTX) BookRepository {
	return &bookRepo{db: db}
}

func (r *bookRepo) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (id, name, author, available, total_pieces)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, b.ID, b.Name, b.Author, b.Available, b.TotalPieces)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: книга %s уже есть в каталоге", ErrConflict, b.ID)
		}
		return fmt.Errorf("ошибка добавления книги: %w", err)
	}
	return nil
}

func (r *bookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	query := `
		SELECT id, name, author, available, total_pieces
		FROM books
		WHERE id = $1`

	b := &model.Book{}
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Author, &b.Available, &b.TotalPieces)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения книги: %w", err)
	}
	return b, nil
}

func (r *bookRepo) GetByNameAuthor(ctx context.Context, name, author string) (*model.Book, error) {
	query := `
		SELECT id, name, author, available, total_pieces
		FROM books
		WHERE name = $1 AND author = $2
		ORDER BY id
		LIMIT 1`

	b := &model.Book{}
	err := r.db.QueryRow(ctx, query, name, author).Scan(&b.ID, &b.Name, &b.Author, &b.Available, &b.TotalPieces)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска книги по названию и автору: %w", err)
	}
	return b, nil
}

func (r *bookRepo) List(ctx context.Context, limit, offset int) ([]*model.Book, error) {
	query := `
		SELECT id, name, author, available, total_pieces
		FROM books
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка книг: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *bookRepo) ListAll(ctx context.Context) ([]*model.Book, error) {
	query := `
		SELECT id, name, author, available, total_pieces
		FROM books
		ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каталога книг: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func scanBooks(rows pgx.Rows) ([]*model.Book, error) {
	var result []*model.Book
	for rows.Next() {
		b := &model.Book{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Author, &b.Available, &b.TotalPieces); err != nil {
			return nil, fmt.Errorf("ошибка сканирования книги: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *bookRepo) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET name = $2, author = $3, available = $4, total_pieces = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, b.ID, b.Name, b.Author, b.Available, b.TotalPieces)
	if err != nil {
		return fmt.Errorf("ошибка обновления книги: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: на книгу %s ссылаются записи о выдаче", ErrConflict, id)
		}
		return fmt.Errorf("ошибка удаления книги: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookRepo) SetAvailable(ctx context.Context, id string, available bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE books SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("ошибка изменения доступности книги: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта книг: %w", err)
	}
	return count, nil
}
