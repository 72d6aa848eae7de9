// circulation.go — возврат книг и штрафы за просрочку.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/repository"
)

// CirculationService — возврат книг, история выдач и операции со штрафами.
type CirculationService struct {
	txRunner       *repository.TxRunner
	membershipRepo repository.MembershipRepository
	bookRepo       repository.BookRepository
	borrowRepo     repository.BorrowRepository
	feeRepo        repository.FeeRepository
	feePerDay      float64
	logger         *slog.Logger
}

// NewCirculationService создаёт сервис возвратов.
// feePerDay — тариф штрафа за день просрочки (BS_OVERDUE_FEE_PER_DAY).
func NewCirculationService(
	txRunner *repository.TxRunner,
	membershipRepo repository.MembershipRepository,
	bookRepo repository.BookRepository,
	borrowRepo repository.BorrowRepository,
	feeRepo repository.FeeRepository,
	feePerDay float64,
	logger *slog.Logger,
) *CirculationService {
	return &CirculationService{
		txRunner:       txRunner,
		membershipRepo: membershipRepo,
		bookRepo:       bookRepo,
		borrowRepo:     borrowRepo,
		feeRepo:        feeRepo,
		feePerDay:      feePerDay,
		logger:         logger.With(slog.String("component", "circulation_service")),
	}
}

// Return оформляет возврат книги: закрывает открытую выдачу, возвращает
// книге доступность и при просрочке начисляет штраф ($1 за день).
// Отсутствие открытой выдачи по книге и билету — ErrNotFound.
func (s *CirculationService) Return(ctx context.Context, citizenID, title, author string) (*model.Borrow, *model.Fee, error) {
	membership, err := s.membershipRepo.GetActiveByCitizen(ctx, citizenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotEnrolled
		}
		return nil, nil, fmt.Errorf("проверка членства: %w", err)
	}

	book, err := s.bookRepo.GetByNameAuthor(ctx, title, author)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: книга %q (%s) не найдена в каталоге", ErrNotFound, title, author)
		}
		return nil, nil, fmt.Errorf("поиск книги: %w", err)
	}

	now := time.Now().UTC()
	var returned *model.Borrow
	var fee *model.Fee

	err = s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		books := repository.NewBookRepository(tx)
		borrows := repository.NewBorrowRepository(tx)
		fees := repository.NewFeeRepository(tx)

		borrow, err := borrows.GetOpenByBook(ctx, book.ID, membership.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: открытая выдача книги %q по билету %s не найдена",
					ErrNotFound, title, membership.ID)
			}
			return err
		}

		if err := borrows.SetReturned(ctx, borrow.ID, now); err != nil {
			return err
		}
		borrow.ReturnDate = &now
		returned = borrow

		if err := books.SetAvailable(ctx, book.ID, true); err != nil {
			return err
		}

		if amount := s.overdueFee(borrow.DueDate, now); amount > 0 {
			fee = &model.Fee{
				ID:           borrow.ID,
				BorrowID:     borrow.ID,
				MembershipID: membership.ID,
				Amount:       amount,
			}
			if err := fees.Create(ctx, fee); err != nil {
				return fmt.Errorf("начисление штрафа: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	attrs := []any{
		slog.String("borrow_id", returned.ID),
		slog.String("book_id", book.ID),
		slog.String("membership_id", membership.ID),
	}
	if fee != nil {
		attrs = append(attrs, slog.Float64("fee_amount", fee.Amount))
	}
	s.logger.Info("Книга возвращена", attrs...)
	return returned, fee, nil
}

// overdueFee считает штраф: тариф за каждый начатый день просрочки.
func (s *CirculationService) overdueFee(dueDate, returnDate time.Time) float64 {
	if !returnDate.After(dueDate) {
		return 0
	}
	days := math.Ceil(returnDate.Sub(dueDate).Hours() / 24)
	return days * s.feePerDay
}

// Borrows возвращает выдачи по читательскому билету (история форм возврата).
func (s *CirculationService) Borrows(ctx context.Context, membershipID string) ([]*model.Borrow, error) {
	return s.borrowRepo.ListByMembership(ctx, membershipID)
}

// FeeByBorrow возвращает штраф по идентификатору выдачи.
func (s *CirculationService) FeeByBorrow(ctx context.Context, borrowID string) (*model.Fee, error) {
	fee, err := s.feeRepo.GetByBorrow(ctx, borrowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: штраф по выдаче %s", ErrNotFound, borrowID)
		}
		return nil, fmt.Errorf("поиск штрафа: %w", err)
	}
	return fee, nil
}

// Fees возвращает штрафы по читательскому билету.
func (s *CirculationService) Fees(ctx context.Context, membershipID string) ([]*model.Fee, error) {
	return s.feeRepo.ListByMembership(ctx, membershipID)
}

// PayFee помечает штраф оплаченным. Операция идемпотентна: повторная
// оплата не меняет состояния и не является ошибкой.
func (s *CirculationService) PayFee(ctx context.Context, feeID string) (*model.Fee, error) {
	if err := s.feeRepo.MarkPaid(ctx, feeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: штраф %s", ErrNotFound, feeID)
		}
		return nil, fmt.Errorf("оплата штрафа: %w", err)
	}

	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		// Штраф только что обновлён: промах здесь — ошибка хранилища.
		return nil, fmt.Errorf("чтение оплаченного штрафа: %w", err)
	}
	return fee, nil
}
