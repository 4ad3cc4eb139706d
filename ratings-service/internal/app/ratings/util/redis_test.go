package util

import (
	"context"
	"testing"
	"time"

	"locaplay/ratings-service/internal/app/ratings/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RedisClientTestSuite тестовый suite для Redis-кеша агрегатов
type RedisClientTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisClient
}

func TestRedisClientSuite(t *testing.T) {
	suite.Run(t, new(RedisClientTestSuite))
}

func (s *RedisClientTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.cache = NewRedisClientFromClient(s.client, 5*time.Minute)
}

func (s *RedisClientTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisClientTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func testResponse() *entity.RatingResponse {
	return &entity.RatingResponse{
		GameID:       "game-1",
		ProjectID:    "proj-1",
		Locale:       "ru",
		Average:      4.3,
		Total:        4,
		Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 3, "5": 1},
	}
}

func (s *RedisClientTestSuite) TestSetAndGet() {
	ctx := context.Background()
	response := testResponse()

	err := s.cache.Set(ctx, response)
	s.NoError(err)

	cached, err := s.cache.Get(ctx, entity.RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "ru"})

	s.NoError(err)
	s.NotNil(cached)
	s.Equal(4.3, cached.Average)
	s.Equal(4, cached.Total)
	s.Equal(3, cached.Distribution["4"])
}

func (s *RedisClientTestSuite) TestGet_MissReturnsNil() {
	ctx := context.Background()

	cached, err := s.cache.Get(ctx, entity.RatingBucket{GameID: "unknown", ProjectID: "proj-1", Locale: "ru"})

	s.NoError(err)
	s.Nil(cached)
}

func (s *RedisClientTestSuite) TestInvalidate() {
	ctx := context.Background()
	response := testResponse()

	s.NoError(s.cache.Set(ctx, response))

	bucket := entity.RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "ru"}
	s.NoError(s.cache.Invalidate(ctx, bucket))

	cached, err := s.cache.Get(ctx, bucket)
	s.NoError(err)
	s.Nil(cached)
}

func (s *RedisClientTestSuite) TestBucketsAreIsolated() {
	ctx := context.Background()

	s.NoError(s.cache.Set(ctx, testResponse()))

	other := testResponse()
	other.Locale = "de"
	other.Average = 2.0
	s.NoError(s.cache.Set(ctx, other))

	s.NoError(s.cache.Invalidate(ctx, entity.RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "de"}))

	cached, err := s.cache.Get(ctx, entity.RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "ru"})
	s.NoError(err)
	s.NotNil(cached)
	s.Equal(4.3, cached.Average)
}

func (s *RedisClientTestSuite) TestEntriesExpire() {
	ctx := context.Background()

	s.NoError(s.cache.Set(ctx, testResponse()))

	s.miniRedis.FastForward(6 * time.Minute)

	cached, err := s.cache.Get(ctx, entity.RatingBucket{GameID: "game-1", ProjectID: "proj-1", Locale: "ru"})
	s.NoError(err)
	s.Nil(cached)
}
