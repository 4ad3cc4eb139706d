package repository

import (
	"context"
	"errors"
	"time"

	"locaplay/ratings-service/internal/app/ratings/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrCommentNotFound    = errors.New("comment not found")
	ErrAggregateNotFound  = errors.New("rating aggregate not found")
	ErrInvalidCommentData = errors.New("comment violates storage constraints")
)

// CommentRepository определяет методы для работы с комментариями в PostgreSQL
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id int64) (*entity.Comment, error)
	UpdateStatus(ctx context.Context, id int64, status entity.CommentStatus, moderatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	ListByBucket(ctx context.Context, bucket entity.RatingBucket, status entity.CommentStatus) ([]entity.Comment, error)
	IncrementHelpfulVotes(ctx context.Context, id int64) error
	DeleteSpamBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RatingRepository определяет методы для работы с агрегатами рейтинга.
// Все мутации одного бакета сериализуются на уровне хранилища, чтобы
// конкурентные read-modify-write не теряли обновления
type RatingRepository interface {
	Get(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingAggregate, error)
	Upsert(ctx context.Context, agg *entity.RatingAggregate) error
	Delete(ctx context.Context, bucket entity.RatingBucket) error
	IncrementScore(ctx context.Context, bucket entity.RatingBucket, score int) (*entity.RatingAggregate, error)
	RecalculateFromComments(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingAggregate, error)
}

// AuditRepository определяет методы для журнала модерации в MongoDB
type AuditRepository interface {
	Record(ctx context.Context, record *entity.ModerationRecord) error
	ListByComment(ctx context.Context, commentID int64) ([]entity.ModerationRecord, error)
}
