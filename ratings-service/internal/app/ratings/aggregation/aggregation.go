// Package aggregation содержит чистые функции подсчёта рейтинга:
// распределение по звёздам, сумма и средневзвешенное с округлением
// до одного знака. Используется и для полного пересчёта по комментариям,
// и для инкрементального обновления при публичной оценке.
package aggregation

import "math"

// MinScore и MaxScore задают допустимый диапазон оценки
const (
	MinScore = 1
	MaxScore = 5
)

// Result - результат агрегации: среднее, сумма и распределение
// Counts[i] - количество оценок со значением i+1
type Result struct {
	Average float64
	Total   int
	Counts  [5]int
}

// ValidScore проверяет что оценка лежит в [1,5]
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// Round1 округляет до одного знака по правилу half-up
// (2.25 -> 2.3, в отличие от банковского округления)
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// Aggregate считает агрегат по мультимножеству оценок
// Оценки вне [1,5] игнорируются: хранилище их не допускает,
// но внешние источники не обязаны быть корректными
func Aggregate(scores []int) Result {
	var counts [5]int
	for _, s := range scores {
		if ValidScore(s) {
			counts[s-MinScore]++
		}
	}
	return FromCounts(counts)
}

// FromCounts считает агрегат по готовому распределению
func FromCounts(counts [5]int) Result {
	total := 0
	weighted := 0
	for i, n := range counts {
		total += n
		weighted += (i + MinScore) * n
	}

	result := Result{Total: total, Counts: counts}
	if total > 0 {
		result.Average = Round1(float64(weighted) / float64(total))
	}
	return result
}

// Add возвращает агрегат после добавления одной оценки
// Эквивалентен полному пересчёту по расширенному мультимножеству
func (r Result) Add(score int) Result {
	if !ValidScore(score) {
		return r
	}
	counts := r.Counts
	counts[score-MinScore]++
	return FromCounts(counts)
}
