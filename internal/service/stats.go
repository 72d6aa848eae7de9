// stats.go — сервис статистики: параллельная выборка коллекций,
// join через индексы и редукции в серии для графиков.
//
// Все join'ы идут через заранее построенные индексы id → запись;
// запись с отсутствующей целью join исключается из серии молча.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/apirvulescu/bureausys/internal/domain/aggregate"
	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/repository"
)

// Prometheus-метрики статистики.
var (
	statsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bs_stats_requests_total",
		Help: "Количество запросов статистики по дашбордам",
	}, []string{"dashboard"})
	statsFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bs_stats_fetch_duration_seconds",
		Help:    "Длительность параллельной выборки коллекций для статистики",
		Buckets: prometheus.DefBuckets,
	})
)

// topBorrowedLimit — размер топа самых выдаваемых книг и активных читателей.
const topBorrowedLimit = 10

// Имена серий (ключи кэша и JSON-ответа).
const (
	SeriesBooksPerAuthor    = "books_per_author"
	SeriesAvailability      = "availability"
	SeriesTopBorrowed       = "top_borrowed"
	SeriesAverageBorrowDays = "average_borrow_days"
	SeriesFeesByBook        = "fees_by_book"
	SeriesEnrollment        = "enrollment"
	SeriesMembershipStatus  = "membership_status"
	SeriesTopBorrowers      = "top_borrowers"
	SeriesFeePaymentsByUser = "fee_payments_by_user"
	SeriesRevenueByBook     = "revenue_by_book"
	SeriesRevenueByMember   = "revenue_by_member"
	SeriesRevenueByMonth    = "revenue_by_month"
)

// StatsService — вычисление серий статистики поверх репозиториев.
type StatsService struct {
	bookRepo       repository.BookRepository
	borrowRepo     repository.BorrowRepository
	feeRepo        repository.FeeRepository
	citizenRepo    repository.CitizenRepository
	membershipRepo repository.MembershipRepository
	cache          *CacheService
	logger         *slog.Logger
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(
	bookRepo repository.BookRepository,
	borrowRepo repository.BorrowRepository,
	feeRepo repository.FeeRepository,
	citizenRepo repository.CitizenRepository,
	membershipRepo repository.MembershipRepository,
	cache *CacheService,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		bookRepo:       bookRepo,
		borrowRepo:     borrowRepo,
		feeRepo:        feeRepo,
		citizenRepo:    citizenRepo,
		membershipRepo: membershipRepo,
		cache:          cache,
		logger:         logger.With(slog.String("component", "stats_service")),
	}
}

// dataset — снимок всех коллекций с индексами для join'ов.
type dataset struct {
	books       []*model.Book
	borrows     []*model.Borrow
	fees        []*model.Fee
	citizens    []*model.Citizen
	memberships []*model.Membership

	bookByID       map[string]*model.Book
	borrowByID     map[string]*model.Borrow
	membershipByID map[string]*model.Membership
	citizenByID    map[string]*model.Citizen
}

// fetch параллельно выбирает все коллекции; агрегация начинается только
// после завершения всех выборок.
func (s *StatsService) fetch(ctx context.Context) (*dataset, error) {
	start := time.Now()
	ds := &dataset{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.books, err = s.bookRepo.ListAll(gCtx)
		return err
	})
	g.Go(func() (err error) {
		ds.borrows, err = s.borrowRepo.ListAll(gCtx)
		return err
	})
	g.Go(func() (err error) {
		ds.fees, err = s.feeRepo.ListAll(gCtx)
		return err
	})
	g.Go(func() (err error) {
		ds.citizens, err = s.citizenRepo.List(gCtx)
		return err
	})
	g.Go(func() (err error) {
		ds.memberships, err = s.membershipRepo.List(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("выборка коллекций: %w", err)
	}
	statsFetchDuration.Observe(time.Since(start).Seconds())

	ds.bookByID = aggregate.Index(ds.books, func(b *model.Book) string { return b.ID })
	ds.borrowByID = aggregate.Index(ds.borrows, func(b *model.Borrow) string { return b.ID })
	ds.membershipByID = aggregate.Index(ds.memberships, func(m *model.Membership) string { return m.ID })
	ds.citizenByID = aggregate.Index(ds.citizens, func(c *model.Citizen) string { return c.ID })
	return ds, nil
}

// BookStats — серии дашборда книг.
func (s *StatsService) BookStats(ctx context.Context) (map[string][]aggregate.Datum, error) {
	statsRequestsTotal.WithLabelValues("books").Inc()
	names := []string{
		SeriesBooksPerAuthor, SeriesAvailability, SeriesTopBorrowed,
		SeriesAverageBorrowDays, SeriesFeesByBook,
	}
	return s.series(ctx, names, func(ds *dataset) map[string][]aggregate.Datum {
		return map[string][]aggregate.Datum{
			SeriesBooksPerAuthor:    ds.booksPerAuthor(),
			SeriesAvailability:      ds.availability(),
			SeriesTopBorrowed:       ds.topBorrowed(),
			SeriesAverageBorrowDays: ds.averageBorrowDays(),
			SeriesFeesByBook:        ds.feesByBook(),
		}
	})
}

// UserStats — серии дашборда читателей.
func (s *StatsService) UserStats(ctx context.Context) (map[string][]aggregate.Datum, error) {
	statsRequestsTotal.WithLabelValues("users").Inc()
	names := []string{
		SeriesEnrollment, SeriesMembershipStatus,
		SeriesTopBorrowers, SeriesFeePaymentsByUser,
	}
	return s.series(ctx, names, func(ds *dataset) map[string][]aggregate.Datum {
		return map[string][]aggregate.Datum{
			SeriesEnrollment:        ds.enrollment(),
			SeriesMembershipStatus:  ds.membershipStatus(),
			SeriesTopBorrowers:      ds.topBorrowers(),
			SeriesFeePaymentsByUser: ds.feePaymentsByUser(),
		}
	})
}

// RevenueStats — серии дашборда выручки (оплаченные штрафы).
func (s *StatsService) RevenueStats(ctx context.Context) (map[string][]aggregate.Datum, error) {
	statsRequestsTotal.WithLabelValues("revenue").Inc()
	names := []string{SeriesRevenueByBook, SeriesRevenueByMember, SeriesRevenueByMonth}
	return s.series(ctx, names, func(ds *dataset) map[string][]aggregate.Datum {
		return map[string][]aggregate.Datum{
			SeriesRevenueByBook:   ds.revenueByBook(),
			SeriesRevenueByMember: ds.revenueByMember(),
			SeriesRevenueByMonth:  ds.revenueByMonth(),
		}
	})
}

// series отдаёт серии из кэша; при промахе любой из них выбирает снимок,
// пересчитывает весь набор дашборда и кладёт серии в кэш.
func (s *StatsService) series(
	ctx context.Context,
	names []string,
	compute func(*dataset) map[string][]aggregate.Datum,
) (map[string][]aggregate.Datum, error) {
	result := make(map[string][]aggregate.Datum, len(names))
	allHit := true
	for _, name := range names {
		data, ok := s.cache.Get(name)
		if !ok {
			allHit = false
			break
		}
		result[name] = data
	}
	if allHit {
		return result, nil
	}

	ds, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	computed := compute(ds)
	for name, data := range computed {
		s.cache.Set(name, data)
	}
	return computed, nil
}

// --- Серии книг ---

func (ds *dataset) booksPerAuthor() []aggregate.Datum {
	return aggregate.CountBy(ds.books, func(b *model.Book) (string, bool) {
		return b.Author, true
	})
}

func (ds *dataset) availability() []aggregate.Datum {
	return aggregate.Partition(ds.books, func(b *model.Book) bool {
		return b.Available
	}, "available", "borrowed")
}

func (ds *dataset) topBorrowed() []aggregate.Datum {
	counts := aggregate.CountBy(ds.borrows, func(b *model.Borrow) (string, bool) {
		book, ok := ds.bookByID[b.BookID]
		if !ok {
			return "", false
		}
		return book.Name, true
	})
	return aggregate.TopK(counts, topBorrowedLimit)
}

// averageBorrowDays — среднее время книги на руках: только закрытые выдачи
// с книгой, присутствующей в каталоге.
func (ds *dataset) averageBorrowDays() []aggregate.Datum {
	return aggregate.MeanBy(ds.borrows, func(b *model.Borrow) (string, float64, bool) {
		if b.ReturnDate == nil {
			return "", 0, false
		}
		book, ok := ds.bookByID[b.BookID]
		if !ok {
			return "", 0, false
		}
		days := b.ReturnDate.Sub(b.BorrowDate).Hours() / 24
		return book.Name, days, true
	})
}

func (ds *dataset) feesByBook() []aggregate.Datum {
	return aggregate.CountBy(ds.fees, func(f *model.Fee) (string, bool) {
		name, ok := ds.bookNameByBorrow(f.BorrowID)
		return name, ok
	})
}

// --- Серии читателей ---

func (ds *dataset) enrollment() []aggregate.Datum {
	activeByCitizen := make(map[string]bool, len(ds.memberships))
	for _, m := range ds.memberships {
		if m.Active {
			activeByCitizen[m.CitizenID] = true
		}
	}
	return aggregate.Partition(ds.citizens, func(c *model.Citizen) bool {
		return activeByCitizen[c.ID]
	}, "enrolled", "unenrolled")
}

func (ds *dataset) membershipStatus() []aggregate.Datum {
	return aggregate.Partition(ds.memberships, func(m *model.Membership) bool {
		return m.Active
	}, "active", "inactive")
}

func (ds *dataset) topBorrowers() []aggregate.Datum {
	counts := aggregate.CountBy(ds.borrows, func(b *model.Borrow) (string, bool) {
		name, ok := ds.citizenNameByMembership(b.MembershipID)
		return name, ok
	})
	return aggregate.TopK(counts, topBorrowedLimit)
}

func (ds *dataset) feePaymentsByUser() []aggregate.Datum {
	return aggregate.SumBy(ds.fees, func(f *model.Fee) (string, float64, bool) {
		if !f.Paid {
			return "", 0, false
		}
		name, ok := ds.citizenNameByMembership(f.MembershipID)
		return name, f.Amount, ok
	})
}

// --- Серии выручки ---

func (ds *dataset) revenueByBook() []aggregate.Datum {
	return aggregate.SumBy(ds.fees, func(f *model.Fee) (string, float64, bool) {
		if !f.Paid {
			return "", 0, false
		}
		name, ok := ds.bookNameByBorrow(f.BorrowID)
		return name, f.Amount, ok
	})
}

func (ds *dataset) revenueByMember() []aggregate.Datum {
	return aggregate.SumBy(ds.fees, func(f *model.Fee) (string, float64, bool) {
		if !f.Paid {
			return "", 0, false
		}
		name, ok := ds.citizenNameByMembership(f.MembershipID)
		return name, f.Amount, ok
	})
}

// revenueByMonth группирует оплаченные штрафы по месяцу возврата книги.
// Штраф без выдачи или с незакрытой выдачей исключается.
func (ds *dataset) revenueByMonth() []aggregate.Datum {
	return aggregate.SumBy(ds.fees, func(f *model.Fee) (string, float64, bool) {
		if !f.Paid {
			return "", 0, false
		}
		borrow, ok := ds.borrowByID[f.BorrowID]
		if !ok || borrow.ReturnDate == nil {
			return "", 0, false
		}
		return borrow.ReturnDate.Format("2006-01"), f.Amount, true
	})
}

// --- Join-хелперы ---

func (ds *dataset) bookNameByBorrow(borrowID string) (string, bool) {
	borrow, ok := ds.borrowByID[borrowID]
	if !ok {
		return "", false
	}
	book, ok := ds.bookByID[borrow.BookID]
	if !ok {
		return "", false
	}
	return book.Name, true
}

func (ds *dataset) citizenNameByMembership(membershipID string) (string, bool) {
	m, ok := ds.membershipByID[membershipID]
	if !ok {
		return "", false
	}
	c, ok := ds.citizenByID[m.CitizenID]
	if !ok {
		return "", false
	}
	return c.Name, true
}
