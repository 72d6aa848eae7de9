package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

func newTestEnrollmentService(citizens ...*model.Citizen) *EnrollmentService {
	return NewEnrollmentService(newFakeMembershipRepo(), newFakeCitizenRepo(citizens...), testLogger())
}

// TestEnroll_Success проверяет оформление билета и формат номера M<unix-millis>.
func TestEnroll_Success(t *testing.T) {
	s := newTestEnrollmentService(&model.Citizen{ID: "1234567890123", Name: "Ион"})

	m, err := s.Enroll(context.Background(), "1234567890123")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !strings.HasPrefix(m.ID, "M") || len(m.ID) < 2 {
		t.Errorf("номер билета = %q, ожидался формат M<unix-millis>", m.ID)
	}
	if !m.Active {
		t.Error("новый билет должен быть действующим")
	}
	if m.CitizenID != "1234567890123" {
		t.Errorf("CitizenID = %q", m.CitizenID)
	}
}

// TestEnroll_AlreadyEnrolled: повторное оформление при действующем билете.
func TestEnroll_AlreadyEnrolled(t *testing.T) {
	s := newTestEnrollmentService(&model.Citizen{ID: "1234567890123", Name: "Ион"})

	if _, err := s.Enroll(context.Background(), "1234567890123"); err != nil {
		t.Fatalf("первое оформление: %v", err)
	}
	_, err := s.Enroll(context.Background(), "1234567890123")
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("err = %v, ожидался ErrAlreadyEnrolled", err)
	}
}

// TestEnroll_UnknownCitizen: оформление без регистрации гражданина.
func TestEnroll_UnknownCitizen(t *testing.T) {
	s := newTestEnrollmentService()

	_, err := s.Enroll(context.Background(), "1234567890123")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, ожидался ErrNotFound", err)
	}
}

// TestEnroll_InvalidCNP: некорректный CNP отклоняется до обращения к хранилищу.
func TestEnroll_InvalidCNP(t *testing.T) {
	s := newTestEnrollmentService()

	_, err := s.Enroll(context.Background(), "123")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, ожидался ErrValidation", err)
	}
}

// TestMembershipByCitizen проверяет автозаполнение формы и ErrNotEnrolled.
func TestMembershipByCitizen(t *testing.T) {
	s := newTestEnrollmentService(&model.Citizen{ID: "1234567890123", Name: "Ион"})

	if _, err := s.MembershipByCitizen(context.Background(), "1234567890123"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("err = %v, ожидался ErrNotEnrolled", err)
	}

	enrolled, err := s.Enroll(context.Background(), "1234567890123")
	if err != nil {
		t.Fatalf("оформление: %v", err)
	}

	got, err := s.MembershipByCitizen(context.Background(), "1234567890123")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if got.ID != enrolled.ID {
		t.Errorf("ID = %q, ожидался %q", got.ID, enrolled.ID)
	}
}
