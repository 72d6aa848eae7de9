// admin.go — административные операции: каталог книг, граждане,
// членства, выдачи, штрафы и конфигурация офисов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/domain/validate"
	"github.com/apirvulescu/bureausys/internal/repository"
)

// BookPatch — частичное обновление книги (nil — поле не меняется).
type BookPatch struct {
	Name        *string `json:"name"`
	Author      *string `json:"author"`
	Available   *bool   `json:"available"`
	TotalPieces *int    `json:"totalPieces"`
}

// BorrowPatch — административная правка дат выдачи.
type BorrowPatch struct {
	BorrowDate *time.Time `json:"borrowDate"`
	DueDate    *time.Time `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
}

// CitizenPatch — частичное обновление профиля гражданина.
type CitizenPatch struct {
	Name *string `json:"name"`
}

// FeePatch — административная правка штрафа.
type FeePatch struct {
	Amount *float64 `json:"amount"`
	Paid   *bool    `json:"paid"`
}

// OfficeInput — офис из формы конфигурации администратора.
// Counters — строка вида "counters=<число>".
type OfficeInput struct {
	Name      string                 `json:"name"`
	Counters  string                 `json:"counters"`
	Documents []model.OfficeDocument `json:"documents"`
}

// AdminService — административный CRUD портала.
type AdminService struct {
	bookRepo       repository.BookRepository
	citizenRepo    repository.CitizenRepository
	membershipRepo repository.MembershipRepository
	borrowRepo     repository.BorrowRepository
	feeRepo        repository.FeeRepository
	officeRepo     repository.OfficeRepository
	logger         *slog.Logger
}

// NewAdminService создаёт административный сервис.
func NewAdminService(
	bookRepo repository.BookRepository,
	citizenRepo repository.CitizenRepository,
	membershipRepo repository.MembershipRepository,
	borrowRepo repository.BorrowRepository,
	feeRepo repository.FeeRepository,
	officeRepo repository.OfficeRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		bookRepo:       bookRepo,
		citizenRepo:    citizenRepo,
		membershipRepo: membershipRepo,
		borrowRepo:     borrowRepo,
		feeRepo:        feeRepo,
		officeRepo:     officeRepo,
		logger:         logger.With(slog.String("component", "admin_service")),
	}
}

// --- Книги ---

// CreateBook добавляет книгу в каталог. Пустой ID генерируется.
func (s *AdminService) CreateBook(ctx context.Context, b *model.Book) (*model.Book, error) {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Author) == "" {
		return nil, fmt.Errorf("%w: название и автор обязательны", ErrValidation)
	}
	if b.TotalPieces < 1 {
		return nil, fmt.Errorf("%w: количество экземпляров должно быть не меньше 1", ErrValidation)
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
		b.Available = true
	}
	if err := s.bookRepo.Create(ctx, b); err != nil {
		return nil, mapRepoErr(err)
	}
	s.logger.Info("Книга добавлена в каталог", slog.String("book_id", b.ID), slog.String("name", b.Name))
	return b, nil
}

// GetBook возвращает книгу каталога.
func (s *AdminService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	b, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return b, nil
}

// ListBooks возвращает каталог постранично.
func (s *AdminService) ListBooks(ctx context.Context, limit, offset int) ([]*model.Book, int, error) {
	books, err := s.bookRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bookRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// UpdateBook применяет частичное обновление полей книги.
func (s *AdminService) UpdateBook(ctx context.Context, id string, patch BookPatch) (*model.Book, error) {
	b, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.Available != nil {
		b.Available = *patch.Available
	}
	if patch.TotalPieces != nil {
		b.TotalPieces = *patch.TotalPieces
	}
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Author) == "" {
		return nil, fmt.Errorf("%w: название и автор обязательны", ErrValidation)
	}
	if b.TotalPieces < 1 {
		return nil, fmt.Errorf("%w: количество экземпляров должно быть не меньше 1", ErrValidation)
	}

	if err := s.bookRepo.Update(ctx, b); err != nil {
		return nil, mapRepoErr(err)
	}
	return b, nil
}

// DeleteBook удаляет книгу. Книга с записями о выдаче — ErrConflict.
func (s *AdminService) DeleteBook(ctx context.Context, id string) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.logger.Info("Книга удалена из каталога", slog.String("book_id", id))
	return nil
}

// --- Граждане и членства ---

// CreateCitizen регистрирует профиль гражданина без учётной записи IdP.
func (s *AdminService) CreateCitizen(ctx context.Context, c *model.Citizen) (*model.Citizen, error) {
	if !validate.CNP(c.ID) {
		return nil, fmt.Errorf("%w: CNP должен состоять ровно из 13 цифр", ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: имя обязательно", ErrValidation)
	}
	if err := s.citizenRepo.Create(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}
	return c, nil
}

// GetCitizen возвращает профиль гражданина по CNP.
func (s *AdminService) GetCitizen(ctx context.Context, id string) (*model.Citizen, error) {
	c, err := s.citizenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return c, nil
}

// ListCitizens возвращает всех зарегистрированных граждан.
func (s *AdminService) ListCitizens(ctx context.Context) ([]*model.Citizen, error) {
	return s.citizenRepo.List(ctx)
}

// UpdateCitizen применяет частичное обновление профиля гражданина.
func (s *AdminService) UpdateCitizen(ctx context.Context, id string, patch CitizenPatch) (*model.Citizen, error) {
	c, err := s.citizenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: имя обязательно", ErrValidation)
		}
		c.Name = *patch.Name
	}
	if err := s.citizenRepo.Update(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}
	return c, nil
}

// DeleteCitizen удаляет профиль гражданина.
// Гражданин с оформленными членствами не удаляется (конфликт).
func (s *AdminService) DeleteCitizen(ctx context.Context, id string) error {
	if err := s.citizenRepo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.logger.Info("Профиль гражданина удалён", slog.String("citizen_id", id))
	return nil
}

// ListMemberships возвращает все читательские билеты.
func (s *AdminService) ListMemberships(ctx context.Context) ([]*model.Membership, error) {
	return s.membershipRepo.List(ctx)
}

// SetMembershipActive включает или отключает читательский билет.
func (s *AdminService) SetMembershipActive(ctx context.Context, id string, active bool) error {
	if err := s.membershipRepo.SetActive(ctx, id, active); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// --- Выдачи и штрафы ---

// CreateBorrow регистрирует выдачу вручную, минуя очередь окон.
// Доступность книги не проверяется — административная правка учёта.
func (s *AdminService) CreateBorrow(ctx context.Context, b *model.Borrow) (*model.Borrow, error) {
	if strings.TrimSpace(b.BookID) == "" || strings.TrimSpace(b.MembershipID) == "" {
		return nil, fmt.Errorf("%w: книга и членство обязательны", ErrValidation)
	}
	if b.BorrowDate.IsZero() {
		b.BorrowDate = time.Now().UTC()
	}
	if b.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: срок возврата обязателен", ErrValidation)
	}
	if b.DueDate.Before(b.BorrowDate) {
		return nil, fmt.Errorf("%w: срок возврата раньше даты выдачи", ErrValidation)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := s.borrowRepo.Create(ctx, b); err != nil {
		return nil, mapRepoErr(err)
	}
	s.logger.Info("Выдача зарегистрирована вручную",
		slog.String("borrow_id", b.ID),
		slog.String("book_id", b.BookID),
		slog.String("membership_id", b.MembershipID),
	)
	return b, nil
}

// ListBorrows возвращает все записи о выдаче.
func (s *AdminService) ListBorrows(ctx context.Context) ([]*model.Borrow, error) {
	return s.borrowRepo.ListAll(ctx)
}

// UpdateBorrow применяет административную правку дат выдачи.
func (s *AdminService) UpdateBorrow(ctx context.Context, id string, patch BorrowPatch) (*model.Borrow, error) {
	b, err := s.borrowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if patch.BorrowDate != nil {
		b.BorrowDate = *patch.BorrowDate
	}
	if patch.DueDate != nil {
		b.DueDate = *patch.DueDate
	}
	if patch.ReturnDate != nil {
		b.ReturnDate = patch.ReturnDate
	}
	if err := s.borrowRepo.Update(ctx, b); err != nil {
		return nil, mapRepoErr(err)
	}
	return b, nil
}

// UpdateFee применяет административную правку штрафа.
func (s *AdminService) UpdateFee(ctx context.Context, id string, patch FeePatch) (*model.Fee, error) {
	f, err := s.feeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return nil, fmt.Errorf("%w: сумма штрафа не может быть отрицательной", ErrValidation)
		}
		f.Amount = *patch.Amount
	}
	if patch.Paid != nil {
		f.Paid = *patch.Paid
	}
	if err := s.feeRepo.Update(ctx, f); err != nil {
		return nil, mapRepoErr(err)
	}
	return f, nil
}

// DeleteFee удаляет штраф.
func (s *AdminService) DeleteFee(ctx context.Context, id string) error {
	if err := s.feeRepo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// --- Конфигурация офисов ---

// SaveOfficeConfig сохраняет конфигурацию офисов из формы администратора.
// Строка окон каждого офиса — формат "counters=<число>". Существующий офис
// (по имени) обновляется, новый создаётся.
func (s *AdminService) SaveOfficeConfig(ctx context.Context, inputs []OfficeInput) ([]*model.Office, error) {
	offices := make([]*model.Office, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, fmt.Errorf("%w: имя офиса обязательно", ErrValidation)
		}
		count, err := validate.CounterConfig(in.Counters)
		if err != nil {
			return nil, fmt.Errorf("%w: офис %q: %w", ErrValidation, in.Name, err)
		}
		for _, doc := range in.Documents {
			if strings.TrimSpace(doc.Name) == "" {
				return nil, fmt.Errorf("%w: офис %q: документ без имени", ErrValidation, in.Name)
			}
		}
		offices = append(offices, &model.Office{
			Name:         in.Name,
			CounterCount: count,
			Documents:    in.Documents,
		})
	}

	existing, err := s.officeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации офисов: %w", err)
	}
	byName := make(map[string]*model.Office, len(existing))
	for _, o := range existing {
		byName[o.Name] = o
	}

	for _, o := range offices {
		if prev, ok := byName[o.Name]; ok {
			o.ID = prev.ID
			if err := s.officeRepo.Update(ctx, o); err != nil {
				return nil, mapRepoErr(err)
			}
			continue
		}
		o.ID = uuid.New().String()
		if err := s.officeRepo.Create(ctx, o); err != nil {
			return nil, mapRepoErr(err)
		}
	}

	s.logger.Info("Конфигурация офисов сохранена", slog.Int("offices", len(offices)))
	return offices, nil
}

// OfficeConfig возвращает сохранённую конфигурацию офисов.
func (s *AdminService) OfficeConfig(ctx context.Context) ([]*model.Office, error) {
	return s.officeRepo.List(ctx)
}

// DeleteOffice удаляет офис вместе с документами.
func (s *AdminService) DeleteOffice(ctx context.Context, id string) error {
	if err := s.officeRepo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// mapRepoErr транслирует сентинели репозитория в сентинели сервисного слоя,
// сохраняя исходное сообщение.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
