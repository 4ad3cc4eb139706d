package service

import (
	"context"

	"locaplay/ratings-service/internal/app/ratings/entity"
)

// Recalculator запускает пересчёт агрегата бакета
// CommentService дергает его при модерации и удалении комментариев с оценкой
type Recalculator interface {
	Recalculate(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error)
}

// RatingCache кеширует публичные ответы rating-fetch
// Инвалидируется при каждой записи агрегата
type RatingCache interface {
	Get(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error)
	Set(ctx context.Context, response *entity.RatingResponse) error
	Invalidate(ctx context.Context, bucket entity.RatingBucket) error
}
