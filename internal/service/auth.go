// auth.go — регистрация граждан и данные текущей сессии.
//
// Signup создаёт учётную запись в Identity Provider (через admin API),
// затем локальный ролевой документ и профиль гражданина. При ошибке
// локальной записи учётная запись IdP откатывается (DeleteUser).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/domain/rbac"
	"github.com/apirvulescu/bureausys/internal/domain/validate"
	"github.com/apirvulescu/bureausys/internal/idp"
	"github.com/apirvulescu/bureausys/internal/repository"
)

// IdentityProvider — операции IdP admin API, нужные регистрации.
// Реализуется *idp.Client.
type IdentityProvider interface {
	CreateUser(ctx context.Context, username, email, firstName, lastName, password, citizenID string) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*idp.IDPUser, error)
	DeleteUser(ctx context.Context, id string) error
}

// SignupInput — данные формы регистрации гражданина.
type SignupInput struct {
	CNP      string `json:"cnp"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService — регистрация и данные сессии.
type AuthService struct {
	idpClient   IdentityProvider
	txRunner    *repository.TxRunner
	userRepo    repository.UserRepository
	citizenRepo repository.CitizenRepository
	logger      *slog.Logger
}

// NewAuthService создаёт сервис регистрации.
func NewAuthService(
	idpClient IdentityProvider,
	txRunner *repository.TxRunner,
	userRepo repository.UserRepository,
	citizenRepo repository.CitizenRepository,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		idpClient:   idpClient,
		txRunner:    txRunner,
		userRepo:    userRepo,
		citizenRepo: citizenRepo,
		logger:      logger.With(slog.String("component", "auth_service")),
	}
}

// Signup регистрирует гражданина: валидация формы, проверка дубликата CNP,
// создание учётной записи IdP, затем локальные users + citizens в транзакции.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := s.validateSignup(in); err != nil {
		return nil, err
	}

	// Дубликат CNP отклоняется до создания учётной записи IdP.
	if _, err := s.citizenRepo.GetByID(ctx, in.CNP); err == nil {
		return nil, fmt.Errorf("%w: гражданин с CNP %s уже зарегистрирован", ErrConflict, in.CNP)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("проверка CNP: %w", err)
	}

	existing, err := s.idpClient.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIDPUnavailable, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: пользователь с email %s уже существует", ErrConflict, in.Email)
	}

	firstName, lastName := splitName(in.Name)
	subject, err := s.idpClient.CreateUser(ctx, in.Email, in.Email, firstName, lastName, in.Password, in.CNP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIDPUnavailable, err)
	}

	user := &model.User{
		Subject:   subject,
		CitizenID: in.CNP,
		Name:      in.Name,
		Email:     in.Email,
		Role:      rbac.RoleCitizen,
	}

	err = s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		citizens := repository.NewCitizenRepository(tx)
		users := repository.NewUserRepository(tx)

		if err := citizens.Create(ctx, &model.Citizen{ID: in.CNP, Name: in.Name}); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		// Откат учётной записи IdP; иначе email останется занят без локальной роли.
		if delErr := s.idpClient.DeleteUser(ctx, subject); delErr != nil {
			s.logger.Error("Откат учётной записи IdP не удался",
				slog.String("subject", subject),
				slog.String("error", delErr.Error()),
			)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("создание локальной учётной записи: %w", err)
	}

	s.logger.Info("Гражданин зарегистрирован",
		slog.String("subject", subject),
		slog.String("citizen_id", in.CNP),
	)
	return user, nil
}

// Me возвращает ролевой документ пользователя по subject токена.
func (s *AuthService) Me(ctx context.Context, subject string) (*model.User, error) {
	user, err := s.userRepo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: учётная запись %s", ErrNotFound, subject)
		}
		return nil, fmt.Errorf("получение учётной записи: %w", err)
	}
	return user, nil
}

func (s *AuthService) validateSignup(in SignupInput) error {
	switch {
	case !validate.CNP(in.CNP):
		return fmt.Errorf("%w: CNP должен состоять ровно из 13 цифр", ErrValidation)
	case !validate.Password(in.Password):
		return fmt.Errorf("%w: пароль не короче 8 символов и содержит хотя бы один из !@#$%%^&*", ErrValidation)
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: имя обязательно", ErrValidation)
	case strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@"):
		return fmt.Errorf("%w: некорректный email", ErrValidation)
	}
	return nil
}

// splitName делит полное имя на имя и фамилию по последнему пробелу.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}
