package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"locaplay/ratings-service/internal/app/ratings/entity"
	"locaplay/ratings-service/internal/app/ratings/repository"
	"locaplay/ratings-service/internal/app/ratings/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Хелперы для создания тестовых данных

func newTestBucket() entity.RatingBucket {
	return entity.RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "ru"}
}

func newTestAggregate() *entity.RatingAggregate {
	return &entity.RatingAggregate{
		GameID:        "game-1",
		ProjectID:     "proj-1",
		Locale:        "ru",
		AverageRating: 4.3,
		TotalRatings:  4,
		Rating4Count:  3,
		Rating5Count:  1,
	}
}

func newRatingServiceWithMocks() (*RatingService, *mocks.MockRatingRepository, *mocks.MockRatingCache, *mocks.MockMessagePublisher) {
	ratingRepo := new(mocks.MockRatingRepository)
	cache := new(mocks.MockRatingCache)
	producer := new(mocks.MockMessagePublisher)
	return NewRatingService(ratingRepo, cache, producer), ratingRepo, cache, producer
}

// ==================== SubmitRating ====================

func TestRatingService_SubmitRating_Success(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, producer := newRatingServiceWithMocks()
	bucket := newTestBucket()

	ratingRepo.On("IncrementScore", ctx, bucket, 5).Return(newTestAggregate(), nil)
	cache.On("Invalidate", ctx, bucket).Return(nil)
	producer.On("PublishMessage", ctx, bucket.Key(), mock.Anything).Return(nil)

	response, err := svc.SubmitRating(ctx, &entity.SubmitRatingRequest{
		GameID:    "game-1",
		ProjectID: "proj-1",
		Locale:    "ru",
		Score:     5,
	})

	require.NoError(t, err)
	assert.Equal(t, 4.3, response.Average)
	assert.Equal(t, 4, response.Total)
	assert.Equal(t, 3, response.Distribution["4"])

	ratingRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestRatingService_SubmitRating_InvalidScore(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, _, _ := newRatingServiceWithMocks()

	for _, score := range []int{0, -1, 6, 100} {
		response, err := svc.SubmitRating(ctx, &entity.SubmitRatingRequest{
			GameID:    "game-1",
			ProjectID: "proj-1",
			Locale:    "ru",
			Score:     score,
		})

		assert.Nil(t, response)
		assert.ErrorIs(t, err, ErrInvalidScore)
	}

	ratingRepo.AssertNotCalled(t, "IncrementScore")
}

func TestRatingService_SubmitRating_RepoError(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, _, _ := newRatingServiceWithMocks()
	bucket := newTestBucket()

	ratingRepo.On("IncrementScore", ctx, bucket, 3).Return(nil, errors.New("db error"))

	response, err := svc.SubmitRating(ctx, &entity.SubmitRatingRequest{
		GameID:    "game-1",
		ProjectID: "proj-1",
		Locale:    "ru",
		Score:     3,
	})

	assert.Nil(t, response)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to submit rating")
}

func TestRatingService_SubmitRating_PublishErrorIgnored(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, producer := newRatingServiceWithMocks()
	bucket := newTestBucket()

	ratingRepo.On("IncrementScore", ctx, bucket, 4).Return(newTestAggregate(), nil)
	cache.On("Invalidate", ctx, bucket).Return(nil)
	producer.On("PublishMessage", ctx, bucket.Key(), mock.Anything).Return(errors.New("kafka down"))

	response, err := svc.SubmitRating(ctx, &entity.SubmitRatingRequest{
		GameID:    "game-1",
		ProjectID: "proj-1",
		Locale:    "ru",
		Score:     4,
	})

	// Ошибка Kafka не прерывает операцию: агрегат уже сохранён
	require.NoError(t, err)
	assert.NotNil(t, response)
}

// ==================== GetRating ====================

func TestRatingService_GetRating_CacheHit(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, _ := newRatingServiceWithMocks()
	bucket := newTestBucket()

	cached := entity.NewRatingResponse(newTestAggregate())
	cache.On("Get", ctx, bucket).Return(cached, nil)

	response, err := svc.GetRating(ctx, bucket)

	require.NoError(t, err)
	assert.Equal(t, cached, response)
	ratingRepo.AssertNotCalled(t, "Get")
}

func TestRatingService_GetRating_CacheMiss(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, _ := newRatingServiceWithMocks()
	bucket := newTestBucket()

	cache.On("Get", ctx, bucket).Return(nil, nil)
	ratingRepo.On("Get", ctx, bucket).Return(newTestAggregate(), nil)
	cache.On("Set", ctx, mock.AnythingOfType("*entity.RatingResponse")).Return(nil)

	response, err := svc.GetRating(ctx, bucket)

	require.NoError(t, err)
	assert.Equal(t, 4.3, response.Average)
	cache.AssertExpectations(t)
}

func TestRatingService_GetRating_NotFoundReturnsZeroDistribution(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, _ := newRatingServiceWithMocks()
	bucket := newTestBucket()

	cache.On("Get", ctx, bucket).Return(nil, nil)
	ratingRepo.On("Get", ctx, bucket).Return(nil, repository.ErrAggregateNotFound)

	response, err := svc.GetRating(ctx, bucket)

	require.NoError(t, err)
	assert.Equal(t, 0.0, response.Average)
	assert.Equal(t, 0, response.Total)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}, response.Distribution)
}

// ==================== UpsertRating ====================

func TestRatingService_UpsertRating_PersistsVerbatim(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, producer := newRatingServiceWithMocks()
	bucket := newTestBucket()

	// Average, total и distribution намеренно не согласованы между собой:
	// override сохраняется как есть
	ratingRepo.On("Upsert", ctx, mock.MatchedBy(func(agg *entity.RatingAggregate) bool {
		return agg.AverageRating == 4.9 && agg.TotalRatings == 1000 && agg.Rating5Count == 3
	})).Return(nil)
	cache.On("Invalidate", ctx, bucket).Return(nil)
	producer.On("PublishMessage", ctx, bucket.Key(), mock.Anything).Return(nil)

	response, err := svc.UpsertRating(ctx, &entity.UpsertRatingRequest{
		GameID:        "game-1",
		ProjectID:     "proj-1",
		Locale:        "ru",
		AverageRating: 4.9,
		TotalRatings:  1000,
		Distribution:  map[string]int{"5": 3},
	})

	require.NoError(t, err)
	assert.Equal(t, 4.9, response.Average)
	assert.Equal(t, 1000, response.Total)
	assert.Equal(t, 3, response.Distribution["5"])
	assert.Equal(t, 0, response.Distribution["1"])
	ratingRepo.AssertExpectations(t)
}

func TestRatingService_UpsertRating_InvalidAverage(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newRatingServiceWithMocks()

	for _, avg := range []float64{-0.1, 5.1} {
		response, err := svc.UpsertRating(ctx, &entity.UpsertRatingRequest{
			GameID:        "game-1",
			ProjectID:     "proj-1",
			Locale:        "ru",
			AverageRating: avg,
			Distribution:  map[string]int{},
		})

		assert.Nil(t, response)
		assert.ErrorIs(t, err, ErrInvalidAverage)
	}
}

func TestRatingService_UpsertRating_InvalidDistribution(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newRatingServiceWithMocks()

	badDistributions := []map[string]int{
		{"0": 1},
		{"6": 1},
		{"five": 1},
		{"5": -2},
	}

	for _, distribution := range badDistributions {
		response, err := svc.UpsertRating(ctx, &entity.UpsertRatingRequest{
			GameID:        "game-1",
			ProjectID:     "proj-1",
			Locale:        "ru",
			AverageRating: 4.0,
			Distribution:  distribution,
		})

		assert.Nil(t, response)
		assert.ErrorIs(t, err, ErrInvalidDistribution)
	}
}

// ==================== Recalculate ====================

func TestRatingService_Recalculate_Updated(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, producer := newRatingServiceWithMocks()
	bucket := newTestBucket()

	ratingRepo.On("RecalculateFromComments", ctx, bucket).Return(newTestAggregate(), nil)
	cache.On("Invalidate", ctx, bucket).Return(nil)
	producer.On("PublishMessage", ctx, bucket.Key(), mock.Anything).Return(nil)

	response, err := svc.Recalculate(ctx, bucket)

	require.NoError(t, err)
	assert.Equal(t, 4.3, response.Average)

	var event entity.RatingEvent
	require.Len(t, producer.Messages, 1)
	require.NoError(t, json.Unmarshal(producer.Messages[0], &event))
	assert.Equal(t, entity.EventRatingRecalculated, event.EventType)
}

func TestRatingService_Recalculate_NoApprovedCommentsDeletesAggregate(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, producer := newRatingServiceWithMocks()
	bucket := newTestBucket()

	ratingRepo.On("RecalculateFromComments", ctx, bucket).Return(nil, nil)
	cache.On("Invalidate", ctx, bucket).Return(nil)
	producer.On("PublishMessage", ctx, bucket.Key(), mock.Anything).Return(nil)

	response, err := svc.Recalculate(ctx, bucket)

	require.NoError(t, err)
	assert.Equal(t, 0.0, response.Average)
	assert.Equal(t, 0, response.Total)

	var event entity.RatingEvent
	require.Len(t, producer.Messages, 1)
	require.NoError(t, json.Unmarshal(producer.Messages[0], &event))
	assert.Equal(t, entity.EventRatingRemoved, event.EventType)
}

func TestRatingService_Recalculate_IdempotentForUnchangedComments(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, cache, producer := newRatingServiceWithMocks()
	bucket := newTestBucket()

	// Набор одобренных комментариев не меняется между вызовами:
	// повторный пересчёт обязан вернуть тот же агрегат
	ratingRepo.On("RecalculateFromComments", ctx, bucket).Return(newTestAggregate(), nil).Twice()
	cache.On("Invalidate", ctx, bucket).Return(nil)
	producer.On("PublishMessage", ctx, bucket.Key(), mock.Anything).Return(nil)

	first, err := svc.Recalculate(ctx, bucket)
	require.NoError(t, err)

	second, err := svc.Recalculate(ctx, bucket)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Distribution, second.Distribution)
	ratingRepo.AssertExpectations(t)
}

func TestRatingService_Recalculate_RepoError(t *testing.T) {
	ctx := context.Background()
	svc, ratingRepo, _, _ := newRatingServiceWithMocks()
	bucket := newTestBucket()

	ratingRepo.On("RecalculateFromComments", ctx, bucket).Return(nil, errors.New("db error"))

	response, err := svc.Recalculate(ctx, bucket)

	assert.Nil(t, response)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to recalculate rating")
}
