package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLoaningService(counterRepo *fakeCounterRepo, counterCount, queueSize int) *LoaningService {
	return NewLoaningService(
		nil, // txRunner не нужен вне обработки заявок
		counterRepo,
		newFakeMembershipRepo(),
		nil,
		"library",
		counterCount,
		queueSize,
		720*time.Hour,
		testLogger(),
	)
}

// TestEnqueue_QueueFull: переполненная очередь отклоняет заявку.
func TestEnqueue_QueueFull(t *testing.T) {
	s := newTestLoaningService(newFakeCounterRepo(), 2, 1)

	if err := s.Enqueue(LoanRequest{CitizenID: "1234567890123", Title: "Чайка", Author: "Чехов"}); err != nil {
		t.Fatalf("первая заявка: %v", err)
	}
	err := s.Enqueue(LoanRequest{CitizenID: "1234567890123", Title: "Чайка", Author: "Чехов"})
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("err = %v, ожидался ErrQueueFull", err)
	}
}

// TestResetCounters: стартовая инициализация создаёт N активных окон,
// повторная — сбрасывает паузу без дублирования строк.
func TestResetCounters(t *testing.T) {
	repo := newFakeCounterRepo()
	s := newTestLoaningService(repo, 3, 4)
	ctx := context.Background()

	if err := s.resetCounters(ctx); err != nil {
		t.Fatalf("resetCounters: %v", err)
	}
	counters, err := s.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if len(counters) != 3 {
		t.Fatalf("окон = %d, ожидалось 3", len(counters))
	}

	if _, err := s.Pause(ctx, 2); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := s.resetCounters(ctx); err != nil {
		t.Fatalf("повторный resetCounters: %v", err)
	}
	counters, _ = s.Counters(ctx)
	if len(counters) != 3 {
		t.Fatalf("после повторной инициализации окон = %d, ожидалось 3", len(counters))
	}
	for _, c := range counters {
		if c.IsPaused {
			t.Errorf("окно %d осталось на паузе после инициализации", c.CounterID)
		}
	}
}

// TestIsPaused: хранилище — источник истины; отсутствующая или
// нечитаемая запись окна считается паузой.
func TestIsPaused(t *testing.T) {
	repo := newFakeCounterRepo()
	s := newTestLoaningService(repo, 2, 4)
	ctx := context.Background()

	// Записи окна нет — пауза
	if !s.isPaused(ctx, 1) {
		t.Error("отсутствующая запись окна должна считаться паузой")
	}

	if err := s.resetCounters(ctx); err != nil {
		t.Fatalf("resetCounters: %v", err)
	}
	if s.isPaused(ctx, 1) {
		t.Error("активное окно не должно быть на паузе")
	}

	if _, err := s.Pause(ctx, 1); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !s.isPaused(ctx, 1) {
		t.Error("окно на паузе после Pause")
	}

	if _, err := s.Resume(ctx, 1); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if s.isPaused(ctx, 1) {
		t.Error("окно активно после Resume")
	}

	// Хранилище недоступно — пауза
	repo.failAll = true
	if !s.isPaused(ctx, 1) {
		t.Error("нечитаемая запись окна должна считаться паузой")
	}
}

// TestPause_UnknownCounter: пауза несуществующего окна — ErrNotFound.
func TestPause_UnknownCounter(t *testing.T) {
	s := newTestLoaningService(newFakeCounterRepo(), 2, 4)

	_, err := s.Pause(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, ожидался ErrNotFound", err)
	}
}

// TestBookLock: мьютекс книги стабилен между обращениями.
func TestBookLock(t *testing.T) {
	s := newTestLoaningService(newFakeCounterRepo(), 1, 1)

	m1 := s.bookLock("b1")
	m2 := s.bookLock("b1")
	if m1 != m2 {
		t.Error("bookLock должен возвращать один и тот же мьютекс для книги")
	}
	if other := s.bookLock("b2"); other == m1 {
		t.Error("разные книги должны иметь разные мьютексы")
	}
}
