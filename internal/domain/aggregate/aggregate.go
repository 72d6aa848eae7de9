// Пакет aggregate — редукции коллекций в серии для графиков.
// Все функции чистые, независимые от порядка входа (кроме стабильного
// tie-break в TopK) и display-agnostic: результат — срез Datum,
// который отдаётся рендереру графиков без изменений.
//
// Запись с отсутствующей целью join (key func возвращает ok=false)
// исключается из агрегата — это не ошибка.
package aggregate

import "sort"

// Datum — одна точка серии графика.
type Datum struct {
	// ID — идентификатор категории
	ID string `json:"id"`
	// Label — подпись для отображения
	Label string `json:"label"`
	// Value — числовое значение
	Value float64 `json:"value"`
}

// CountBy считает количество записей по категориальному ключу.
// key возвращает (категория, true) или (_, false) для исключения записи.
// Порядок результата — порядок первого появления категории во входе.
func CountBy[T any](items []T, key func(T) (string, bool)) []Datum {
	return reduceBy(items, func(item T) (string, float64, bool) {
		k, ok := key(item)
		return k, 1, ok
	}, func(acc, v float64) float64 { return acc + v })
}

// SumBy суммирует числовое значение по ключу join.
// group возвращает (ключ, значение, true) или (_, _, false) для исключения.
func SumBy[T any](items []T, group func(T) (string, float64, bool)) []Datum {
	return reduceBy(items, group, func(acc, v float64) float64 { return acc + v })
}

// MeanBy вычисляет среднее производного числового значения по группам.
// Записи с ok=false (например, borrow без returnDate или с недоступной
// книгой) в среднее не входят.
func MeanBy[T any](items []T, group func(T) (string, float64, bool)) []Datum {
	type agg struct {
		sum   float64
		count int
	}

	byKey := make(map[string]*agg)
	var order []string

	for _, item := range items {
		k, v, ok := group(item)
		if !ok {
			continue
		}
		a, seen := byKey[k]
		if !seen {
			a = &agg{}
			byKey[k] = a
			order = append(order, k)
		}
		a.sum += v
		a.count++
	}

	result := make([]Datum, 0, len(order))
	for _, k := range order {
		a := byKey[k]
		result = append(result, Datum{
			ID:    k,
			Label: k,
			Value: a.sum / float64(a.count),
		})
	}
	return result
}

// TopK возвращает k категорий с наибольшими значениями по убыванию.
// Равные значения сохраняют исходный порядок (стабильный tie-break).
// При k <= 0 или k >= len(data) возвращается вся отсортированная серия.
func TopK(data []Datum, k int) []Datum {
	sorted := make([]Datum, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if k > 0 && k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}

// Partition раскладывает записи в два именованных сегмента по предикату.
// Результат всегда содержит оба сегмента, даже пустые.
func Partition[T any](items []T, pred func(T) bool, trueBucket, falseBucket string) []Datum {
	var trueCount, falseCount int
	for _, item := range items {
		if pred(item) {
			trueCount++
		} else {
			falseCount++
		}
	}
	return []Datum{
		{ID: trueBucket, Label: trueBucket, Value: float64(trueCount)},
		{ID: falseBucket, Label: falseBucket, Value: float64(falseCount)},
	}
}

// Index строит индекс id → запись для O(1) join'ов.
// Все join'ы одного цикла агрегации идут через индексы, построенные
// один раз на fetch; поиск отсутствующего ключа — штатный miss.
func Index[T any](items []T, id func(T) string) map[string]T {
	idx := make(map[string]T, len(items))
	for _, item := range items {
		idx[id(item)] = item
	}
	return idx
}

// reduceBy — общий каркас CountBy/SumBy: группировка с аккумулятором
// и порядком первого появления ключа.
func reduceBy[T any](items []T, group func(T) (string, float64, bool), combine func(acc, v float64) float64) []Datum {
	byKey := make(map[string]float64)
	var order []string

	for _, item := range items {
		k, v, ok := group(item)
		if !ok {
			continue
		}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = combine(byKey[k], v)
	}

	result := make([]Datum, 0, len(order))
	for _, k := range order {
		result = append(result, Datum{ID: k, Label: k, Value: byKey[k]})
	}
	return result
}
