package mocks

import (
	"context"
	"time"

	"locaplay/ratings-service/internal/app/ratings/entity"

	"github.com/stretchr/testify/mock"
)

// MockCommentRepository мок для CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id int64, status entity.CommentStatus, moderatedAt time.Time) error {
	args := m.Called(ctx, id, status, moderatedAt)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByBucket(ctx context.Context, bucket entity.RatingBucket, status entity.CommentStatus) ([]entity.Comment, error) {
	args := m.Called(ctx, bucket, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) IncrementHelpfulVotes(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) DeleteSpamBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockRatingRepository мок для RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Get(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingAggregate, error) {
	args := m.Called(ctx, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingAggregate), args.Error(1)
}

func (m *MockRatingRepository) Upsert(ctx context.Context, agg *entity.RatingAggregate) error {
	args := m.Called(ctx, agg)
	return args.Error(0)
}

func (m *MockRatingRepository) Delete(ctx context.Context, bucket entity.RatingBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockRatingRepository) IncrementScore(ctx context.Context, bucket entity.RatingBucket, score int) (*entity.RatingAggregate, error) {
	args := m.Called(ctx, bucket, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingAggregate), args.Error(1)
}

func (m *MockRatingRepository) RecalculateFromComments(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingAggregate, error) {
	args := m.Called(ctx, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingAggregate), args.Error(1)
}

// MockAuditRepository мок для AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, record *entity.ModerationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByComment(ctx context.Context, commentID int64) ([]entity.ModerationRecord, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ModerationRecord), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRatingCache мок для кеша агрегатов
type MockRatingCache struct {
	mock.Mock
}

func (m *MockRatingCache) Get(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error) {
	args := m.Called(ctx, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingResponse), args.Error(1)
}

func (m *MockRatingCache) Set(ctx context.Context, response *entity.RatingResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockRatingCache) Invalidate(ctx context.Context, bucket entity.RatingBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}
