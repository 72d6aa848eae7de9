// enrollment.go — оформление читательского билета.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/domain/validate"
	"github.com/apirvulescu/bureausys/internal/repository"
)

// EnrollmentService — оформление и поиск читательских билетов.
type EnrollmentService struct {
	membershipRepo repository.MembershipRepository
	citizenRepo    repository.CitizenRepository
	logger         *slog.Logger
}

// NewEnrollmentService создаёт сервис оформления билетов.
func NewEnrollmentService(
	membershipRepo repository.MembershipRepository,
	citizenRepo repository.CitizenRepository,
	logger *slog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		membershipRepo: membershipRepo,
		citizenRepo:    citizenRepo,
		logger:         logger.With(slog.String("component", "enrollment_service")),
	}
}

// Enroll оформляет читательский билет гражданину.
// Номер билета — M<unix-millis>. Повторное оформление при действующем
// билете — ErrAlreadyEnrolled.
func (s *EnrollmentService) Enroll(ctx context.Context, citizenID string) (*model.Membership, error) {
	if !validate.CNP(citizenID) {
		return nil, fmt.Errorf("%w: CNP должен состоять ровно из 13 цифр", ErrValidation)
	}

	if _, err := s.citizenRepo.GetByID(ctx, citizenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: гражданин %s не зарегистрирован", ErrNotFound, citizenID)
		}
		return nil, fmt.Errorf("проверка гражданина: %w", err)
	}

	m := &model.Membership{
		ID:        fmt.Sprintf("M%d", time.Now().UnixMilli()),
		CitizenID: citizenID,
		IssueDate: time.Now().UTC(),
		Active:    true,
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("оформление билета: %w", err)
	}

	s.logger.Info("Читательский билет оформлен",
		slog.String("membership_id", m.ID),
		slog.String("citizen_id", citizenID),
	)
	return m, nil
}

// MembershipByCitizen возвращает действующий билет гражданина
// (автозаполнение форм портала). Отсутствие билета — ErrNotEnrolled.
func (s *EnrollmentService) MembershipByCitizen(ctx context.Context, citizenID string) (*model.Membership, error) {
	m, err := s.membershipRepo.GetActiveByCitizen(ctx, citizenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("поиск билета: %w", err)
	}
	return m, nil
}
