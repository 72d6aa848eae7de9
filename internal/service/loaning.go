// loaning.go — конвейер выдачи книг: очередь заявок + воркеры-окна.
//
// Заявка на выдачу принимается асинхронно (очередь-канал), обрабатывается
// одним из N воркеров-окон. Флаг паузы окна хранится в таблице counters и
// перечитывается из хранилища перед каждой заявкой: хранилище — источник
// истины, отсутствующая или нечитаемая запись окна считается паузой.
//
// Проверки членства, дубликата выдачи и доступности книги выполняются
// воркером; смена доступности и создание borrow — атомарно в транзакции
// под мьютексом книги.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/repository"
)

// Prometheus-метрики конвейера выдачи.
var (
	loanRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bs_loan_requests_total",
		Help: "Количество обработанных заявок на выдачу книг",
	}, []string{"outcome"}) // outcome: issued, rejected, failed

	loanQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bs_loan_queue_depth",
		Help: "Текущая глубина очереди заявок на выдачу",
	})
)

// pausePollInterval — интервал перепроверки флага паузы стоящим воркером.
const pausePollInterval = 500 * time.Millisecond

// LoanRequest — заявка гражданина на выдачу книги.
type LoanRequest struct {
	CitizenID string `json:"citizenId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
}

// LoaningService — очередь заявок и воркеры-окна отдела выдачи.
type LoaningService struct {
	txRunner       *repository.TxRunner
	counterRepo    repository.CounterRepository
	membershipRepo repository.MembershipRepository
	bookRepo       repository.BookRepository
	department     string
	counterCount   int
	loanPeriod     time.Duration
	logger         *slog.Logger

	queue chan LoanRequest
	wake  chan struct{}

	mu        sync.Mutex
	bookLocks map[string]*sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoaningService создаёт конвейер выдачи.
// counterCount — количество окон (BS_COUNTERS), queueSize — ёмкость очереди.
func NewLoaningService(
	txRunner *repository.TxRunner,
	counterRepo repository.CounterRepository,
	membershipRepo repository.MembershipRepository,
	bookRepo repository.BookRepository,
	department string,
	counterCount int,
	queueSize int,
	loanPeriod time.Duration,
	logger *slog.Logger,
) *LoaningService {
	return &LoaningService{
		txRunner:       txRunner,
		counterRepo:    counterRepo,
		membershipRepo: membershipRepo,
		bookRepo:       bookRepo,
		department:     department,
		counterCount:   counterCount,
		loanPeriod:     loanPeriod,
		logger:         logger.With(slog.String("component", "loaning_service")),
		queue:          make(chan LoanRequest, queueSize),
		wake:           make(chan struct{}, 1),
		bookLocks:      make(map[string]*sync.Mutex),
	}
}

// Start сбрасывает окна в рабочее состояние и запускает воркеров.
func (s *LoaningService) Start(ctx context.Context) error {
	if err := s.resetCounters(ctx); err != nil {
		return fmt.Errorf("инициализация окон обслуживания: %w", err)
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for i := 1; i <= s.counterCount; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx, i)
	}

	s.logger.Info("Конвейер выдачи запущен",
		slog.Int("counters", s.counterCount),
		slog.Int("queue_size", cap(s.queue)),
	)
	return nil
}

// Stop останавливает воркеров и дожидается завершения текущих заявок.
func (s *LoaningService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("Конвейер выдачи остановлен")
}

// Enqueue ставит заявку в очередь. Возвращает ErrQueueFull при переполнении.
func (s *LoaningService) Enqueue(req LoanRequest) error {
	select {
	case s.queue <- req:
		loanQueueDepth.Set(float64(len(s.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Pause приостанавливает окно по его номеру. Флаг пишется в хранилище;
// воркер увидит его перед следующей заявкой.
func (s *LoaningService) Pause(ctx context.Context, counterID int) (*model.Counter, error) {
	return s.setPaused(ctx, counterID, true)
}

// Resume возобновляет работу окна и будит ожидающих воркеров.
func (s *LoaningService) Resume(ctx context.Context, counterID int) (*model.Counter, error) {
	c, err := s.setPaused(ctx, counterID, false)
	if err != nil {
		return nil, err
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return c, nil
}

// Counters возвращает состояние всех окон отдела.
func (s *LoaningService) Counters(ctx context.Context) ([]*model.Counter, error) {
	return s.counterRepo.List(ctx, s.department)
}

func (s *LoaningService) setPaused(ctx context.Context, counterID int, paused bool) (*model.Counter, error) {
	c, err := s.counterRepo.GetByNumber(ctx, s.department, counterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: окно %d", ErrNotFound, counterID)
		}
		return nil, fmt.Errorf("получение окна %d: %w", counterID, err)
	}
	if err := s.counterRepo.SetPaused(ctx, c.ID, paused); err != nil {
		return nil, fmt.Errorf("изменение состояния окна %d: %w", counterID, err)
	}
	c.IsPaused = paused
	s.logger.Info("Состояние окна изменено",
		slog.Int("counter", counterID),
		slog.Bool("paused", paused),
	)
	return c, nil
}

// resetCounters приводит таблицу counters к конфигурации: N окон, все активны.
func (s *LoaningService) resetCounters(ctx context.Context) error {
	for i := 1; i <= s.counterCount; i++ {
		c := &model.Counter{
			ID:         uuid.New().String(),
			CounterID:  i,
			Department: s.department,
			IsPaused:   false,
		}
		if err := s.counterRepo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("окно %d: %w", i, err)
		}
	}
	return nil
}

// worker — цикл одного окна. Перед каждой заявкой окно перечитывает свой
// флаг паузы из хранилища; пауза — ожидание с периодической перепроверкой.
func (s *LoaningService) worker(ctx context.Context, counterID int) {
	defer s.wg.Done()
	logger := s.logger.With(slog.Int("counter", counterID))
	logger.Debug("Окно открыто")

	for {
		if s.isPaused(ctx, counterID) {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			case <-time.After(pausePollInterval):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case req := <-s.queue:
			loanQueueDepth.Set(float64(len(s.queue)))
			s.process(ctx, logger, req)
		}
	}
}

// isPaused перечитывает флаг паузы окна из хранилища.
// Отсутствующая или нечитаемая запись окна считается паузой.
func (s *LoaningService) isPaused(ctx context.Context, counterID int) bool {
	c, err := s.counterRepo.GetByNumber(ctx, s.department, counterID)
	if err != nil {
		return true
	}
	return c.IsPaused
}

// process обрабатывает одну заявку. Причины отказа логируются,
// заявителю они не возвращаются (заявка уже принята асинхронно).
func (s *LoaningService) process(ctx context.Context, logger *slog.Logger, req LoanRequest) {
	logger = logger.With(
		slog.String("citizen_id", req.CitizenID),
		slog.String("title", req.Title),
		slog.String("author", req.Author),
	)

	membership, err := s.membershipRepo.GetActiveByCitizen(ctx, req.CitizenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Заявка отклонена: нет активного читательского билета")
			loanRequestsTotal.WithLabelValues("rejected").Inc()
		} else {
			logger.Error("Ошибка проверки членства", slog.String("error", err.Error()))
			loanRequestsTotal.WithLabelValues("failed").Inc()
		}
		return
	}

	book, err := s.bookRepo.GetByNameAuthor(ctx, req.Title, req.Author)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Заявка отклонена: книга не найдена в каталоге")
			loanRequestsTotal.WithLabelValues("rejected").Inc()
		} else {
			logger.Error("Ошибка поиска книги", slog.String("error", err.Error()))
			loanRequestsTotal.WithLabelValues("failed").Inc()
		}
		return
	}

	lock := s.bookLock(book.ID)
	lock.Lock()
	defer lock.Unlock()

	borrow, err := s.issue(ctx, book.ID, membership.ID)
	switch {
	case err == nil:
		logger.Info("Книга выдана",
			slog.String("borrow_id", borrow.ID),
			slog.Time("due_date", borrow.DueDate),
		)
		loanRequestsTotal.WithLabelValues("issued").Inc()
	case errors.Is(err, ErrBookUnavailable) || errors.Is(err, ErrAlreadyBorrowed):
		logger.Warn("Заявка отклонена", slog.String("reason", err.Error()))
		loanRequestsTotal.WithLabelValues("rejected").Inc()
	default:
		logger.Error("Ошибка выдачи книги", slog.String("error", err.Error()))
		loanRequestsTotal.WithLabelValues("failed").Inc()
	}
}

// issue атомарно создаёт borrow и снимает флаг доступности книги.
func (s *LoaningService) issue(ctx context.Context, bookID, membershipID string) (*model.Borrow, error) {
	now := time.Now().UTC()
	borrow := &model.Borrow{
		ID:           uuid.New().String(),
		BookID:       bookID,
		MembershipID: membershipID,
		BorrowDate:   now,
		DueDate:      now.Add(s.loanPeriod),
	}

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		books := repository.NewBookRepository(tx)
		borrows := repository.NewBorrowRepository(tx)

		book, err := books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}
		if !book.Available {
			return ErrBookUnavailable
		}

		if _, err := borrows.GetOpenByBook(ctx, bookID, membershipID); err == nil {
			return ErrAlreadyBorrowed
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := borrows.Create(ctx, borrow); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyBorrowed
			}
			return err
		}
		return books.SetAvailable(ctx, bookID, false)
	})
	if err != nil {
		return nil, err
	}
	return borrow, nil
}

// bookLock возвращает мьютекс для книги, создавая его при первом обращении.
func (s *LoaningService) bookLock(bookID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.bookLocks[bookID]
	if !ok {
		m = &sync.Mutex{}
		s.bookLocks[bookID] = m
	}
	return m
}
