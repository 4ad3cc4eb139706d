package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0.0, result.Average)
	assert.Equal(t, [5]int{}, result.Counts)
}

func TestAggregate_SingleScore(t *testing.T) {
	result := Aggregate([]int{5})

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 5.0, result.Average)
	assert.Equal(t, [5]int{0, 0, 0, 0, 1}, result.Counts)
}

func TestAggregate_Distribution(t *testing.T) {
	result := Aggregate([]int{3, 5, 3, 1, 5, 5})

	assert.Equal(t, 6, result.Total)
	assert.Equal(t, [5]int{1, 0, 2, 0, 3}, result.Counts)
	// (1 + 3 + 3 + 5 + 5 + 5) / 6 = 22/6 = 3.666... -> 3.7
	assert.Equal(t, 3.7, result.Average)
}

func TestAggregate_RoundsHalfUp(t *testing.T) {
	// 4 + 4 + 4 + 5 = 17/4 = 4.25: half-up даёт 4.3, банковское дало бы 4.2
	result := Aggregate([]int{4, 4, 4, 5})
	assert.Equal(t, 4.3, result.Average)

	// 3 + 4 = 7/2 = 3.5 без округления
	result = Aggregate([]int{3, 4})
	assert.Equal(t, 3.5, result.Average)
}

func TestAggregate_IgnoresOutOfRangeScores(t *testing.T) {
	result := Aggregate([]int{0, 3, 6, -1, 4})

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 3.5, result.Average)
}

func TestAggregate_InvariantCountsSumToTotal(t *testing.T) {
	cases := [][]int{
		{},
		{1},
		{5, 5, 5},
		{1, 2, 3, 4, 5},
		{2, 2, 4, 4, 4, 1, 5, 3, 3, 2},
	}

	for _, scores := range cases {
		result := Aggregate(scores)

		sum := 0
		for _, n := range result.Counts {
			sum += n
		}
		assert.Equal(t, result.Total, sum, "counts must sum to total for %v", scores)
	}
}

func TestFromCounts_MatchesAggregate(t *testing.T) {
	scores := []int{1, 1, 3, 4, 5, 5, 5, 2}

	full := Aggregate(scores)
	fromCounts := FromCounts(full.Counts)

	assert.Equal(t, full, fromCounts)
}

func TestAdd_EquivalentToFullRecompute(t *testing.T) {
	sequences := [][]int{
		{4},
		{4, 2},
		{5, 5, 1, 3, 2, 4, 4, 4, 1, 5},
		{1, 1, 1, 1, 1},
		{3, 3, 3, 5},
	}

	for _, scores := range sequences {
		incremental := Result{}
		for _, s := range scores {
			incremental = incremental.Add(s)
		}

		full := Aggregate(scores)
		assert.Equal(t, full, incremental, "incremental path must equal full recompute for %v", scores)
	}
}

func TestAdd_IgnoresInvalidScore(t *testing.T) {
	base := Aggregate([]int{4, 2})

	assert.Equal(t, base, base.Add(0))
	assert.Equal(t, base, base.Add(6))
}

func TestRound1(t *testing.T) {
	cases := map[float64]float64{
		0.0:   0.0,
		4.25:  4.3,
		4.24:  4.2,
		3.45:  3.5,
		2.666: 2.7,
		5.0:   5.0,
	}

	for in, want := range cases {
		assert.Equal(t, want, Round1(in), "Round1(%v)", in)
	}
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(1))
	assert.True(t, ValidScore(5))
	assert.False(t, ValidScore(0))
	assert.False(t, ValidScore(6))
	assert.False(t, ValidScore(-3))
}
