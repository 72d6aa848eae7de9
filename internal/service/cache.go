// cache.go — LRU-кэш готовых наборов данных статистики с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apirvulescu/bureausys/internal/domain/aggregate"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bs_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш статистики.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bs_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша статистики.",
	})
)

// CacheService — LRU-кэш агрегированных рядов статистики с автоматическим TTL.
// Ключ — имя ряда ("books_per_author", "revenue_by_month", ...).
// Каждый экземпляр stats-module имеет собственный in-memory кэш.
type CacheService struct {
	cache *expirable.LRU[string, []aggregate.Datum]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество рядов в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, []aggregate.Datum](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает ряд статистики из кэша по имени.
// Возвращает (ряд, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(name string) ([]aggregate.Datum, bool) {
	val, ok := c.cache.Get(name)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет ряд в кэше.
func (c *CacheService) Set(name string, data []aggregate.Datum) {
	c.cache.Add(name, data)
}

// Delete удаляет ряд из кэша (инвалидация после записи в хранилище).
func (c *CacheService) Delete(name string) {
	c.cache.Remove(name)
}

// Purge полностью очищает кэш.
func (c *CacheService) Purge() {
	c.cache.Purge()
}
