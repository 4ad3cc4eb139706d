package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"locaplay/pkg/logger"
	"locaplay/pkg/metrics"
	"locaplay/ratings-service/internal/app/ratings/aggregation"
	"locaplay/ratings-service/internal/app/ratings/entity"
	"locaplay/ratings-service/internal/app/ratings/infrastructure"
	"locaplay/ratings-service/internal/app/ratings/repository"

	"github.com/google/uuid"
)

// RatingService обрабатывает бизнес-логику агрегатов рейтинга.
// Два источника значений - публичные оценки и ручной override - пишут в один
// агрегат по принципу last-writer-wins; сведение с комментариями происходит
// только через явный Recalculate
type RatingService struct {
	ratingRepo    repository.RatingRepository
	cache         RatingCache
	kafkaProducer infrastructure.MessagePublisher
}

// NewRatingService создает новый сервис рейтингов с внедрением зависимостей
func NewRatingService(
	ratingRepo repository.RatingRepository,
	cache RatingCache,
	kafkaProducer infrastructure.MessagePublisher,
) *RatingService {
	return &RatingService{
		ratingRepo:    ratingRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// SubmitRating принимает одну анонимную оценку и инкрементально обновляет
// агрегат бакета. Комментарии этот путь не читает и агрегат не удаляет
func (s *RatingService) SubmitRating(ctx context.Context, req *entity.SubmitRatingRequest) (*entity.RatingResponse, error) {
	if !aggregation.ValidScore(req.Score) {
		return nil, ErrInvalidScore
	}

	bucket := entity.RatingBucket{GameID: req.GameID, ProjectID: req.ProjectID, Locale: req.Locale}

	agg, err := s.ratingRepo.IncrementScore(ctx, bucket, req.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to submit rating: %w", err)
	}

	s.invalidateCache(ctx, bucket)
	metrics.RecordRatingSubmitted(req.Score)

	response := entity.NewRatingResponse(agg)
	s.publishRatingEvent(ctx, entity.EventRatingSubmitted, bucket, response)

	return response, nil
}

// GetRating возвращает агрегат бакета
// Для бакета без агрегата возвращается нулевое распределение, не ошибка
func (s *RatingService) GetRating(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error) {
	if cached, err := s.cache.Get(ctx, bucket); err == nil && cached != nil {
		return cached, nil
	}

	agg, err := s.ratingRepo.Get(ctx, bucket)
	if err != nil {
		if err == repository.ErrAggregateNotFound {
			return entity.NewEmptyRatingResponse(bucket), nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	response := entity.NewRatingResponse(agg)

	if err := s.cache.Set(ctx, response); err != nil {
		logger.Warn().Err(err).Str("bucket", bucket.Key()).Msg("Failed to cache rating")
	}

	return response, nil
}

// UpsertRating сохраняет агрегат, заданный администратором, как есть.
// Согласованность average/total/distribution сознательно не проверяется:
// это escape hatch, значения действуют до следующего override или пересчёта
func (s *RatingService) UpsertRating(ctx context.Context, req *entity.UpsertRatingRequest) (*entity.RatingResponse, error) {
	if req.AverageRating < 0 || req.AverageRating > 5 {
		return nil, ErrInvalidAverage
	}

	counts, err := parseDistribution(req.Distribution)
	if err != nil {
		return nil, err
	}

	agg := &entity.RatingAggregate{
		GameID:        req.GameID,
		ProjectID:     req.ProjectID,
		Locale:        req.Locale,
		AverageRating: req.AverageRating,
		TotalRatings:  req.TotalRatings,
	}
	agg.SetCounts(counts)

	if err := s.ratingRepo.Upsert(ctx, agg); err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}

	bucket := agg.Bucket()
	s.invalidateCache(ctx, bucket)
	metrics.RatingOverrides.Inc()

	response := entity.NewRatingResponse(agg)
	s.publishRatingEvent(ctx, entity.EventRatingOverridden, bucket, response)

	return response, nil
}

// Recalculate выводит агрегат бакета заново из одобренных комментариев
// с оценкой. Если таких комментариев нет, агрегат удаляется и возвращается
// нулевой ответ. Операция идемпотентна
func (s *RatingService) Recalculate(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error) {
	start := time.Now()

	agg, err := s.ratingRepo.RecalculateFromComments(ctx, bucket)
	if err != nil {
		metrics.RecordRecalculation("failed", time.Since(start))
		return nil, fmt.Errorf("failed to recalculate rating: %w", err)
	}

	s.invalidateCache(ctx, bucket)

	if agg == nil {
		metrics.RecordRecalculation("deleted", time.Since(start))
		response := entity.NewEmptyRatingResponse(bucket)
		s.publishRatingEvent(ctx, entity.EventRatingRemoved, bucket, response)
		return response, nil
	}

	metrics.RecordRecalculation("updated", time.Since(start))
	response := entity.NewRatingResponse(agg)
	s.publishRatingEvent(ctx, entity.EventRatingRecalculated, bucket, response)

	return response, nil
}

// parseDistribution разбирает распределение из запроса
// Ключи обязаны быть звёздами 1..5; отсутствующие звёзды считаются нулями
func parseDistribution(distribution map[string]int) ([5]int, error) {
	var counts [5]int
	for key, count := range distribution {
		star, err := strconv.Atoi(key)
		if err != nil || !aggregation.ValidScore(star) {
			return counts, ErrInvalidDistribution
		}
		if count < 0 {
			return counts, ErrInvalidDistribution
		}
		counts[star-1] = count
	}
	return counts, nil
}

// invalidateCache сбрасывает кеш бакета; ошибка кеша не фатальна
func (s *RatingService) invalidateCache(ctx context.Context, bucket entity.RatingBucket) {
	if err := s.cache.Invalidate(ctx, bucket); err != nil {
		logger.Warn().Err(err).Str("bucket", bucket.Key()).Msg("Failed to invalidate rating cache")
	}
}

// publishRatingEvent отправляет событие об изменении рейтинга в Kafka
// Ошибка отправки не прерывает операцию: агрегат уже сохранён
func (s *RatingService) publishRatingEvent(ctx context.Context, eventType string, bucket entity.RatingBucket, response *entity.RatingResponse) {
	event := entity.RatingEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		GameID:    bucket.GameID,
		ProjectID: bucket.ProjectID,
		Locale:    bucket.Locale,
		Average:   response.Average,
		Total:     response.Total,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal rating event")
		return
	}

	// Ключ = бакет, чтобы события одного бакета попадали в одну партицию
	if err := s.kafkaProducer.PublishMessage(ctx, bucket.Key(), eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish rating event")
	}
}
