package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"locaplay/pkg/metrics"
	"locaplay/ratings-service/internal/app/ratings/entity"

	"github.com/redis/go-redis/v9"
)

const ratingKeyPrefix = "rating"

// RedisClient кеширует агрегаты рейтинга для публичного чтения
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int, ttl time.Duration) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client, ttl: ttl}, nil
}

// NewRedisClientFromClient оборачивает готовый клиент, используется в тестах
func NewRedisClientFromClient(client *redis.Client, ttl time.Duration) *RedisClient {
	return &RedisClient{client: client, ttl: ttl}
}

func ratingCacheKey(bucket entity.RatingBucket) string {
	return fmt.Sprintf("%s:%s", ratingKeyPrefix, bucket.Key())
}

// Get возвращает кешированный агрегат бакета; (nil, nil) при промахе
func (r *RedisClient) Get(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error) {
	data, err := r.client.Get(ctx, ratingCacheKey(bucket)).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss("ratings-service", ratingKeyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError("ratings-service", metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get rating from cache: %w", err)
	}

	var response entity.RatingResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached rating: %w", err)
	}

	metrics.RecordCacheHit("ratings-service", ratingKeyPrefix)

	return &response, nil
}

// Set кладет агрегат в кеш с TTL
func (r *RedisClient) Set(ctx context.Context, response *entity.RatingResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal rating: %w", err)
	}

	bucket := entity.RatingBucket{GameID: response.GameID, ProjectID: response.ProjectID, Locale: response.Locale}

	if err := r.client.Set(ctx, ratingCacheKey(bucket), data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError("ratings-service", metrics.RedisOpSet)
		return fmt.Errorf("failed to set rating in cache: %w", err)
	}

	return nil
}

// Invalidate сбрасывает кеш бакета после записи в агрегат
func (r *RedisClient) Invalidate(ctx context.Context, bucket entity.RatingBucket) error {
	if err := r.client.Del(ctx, ratingCacheKey(bucket)).Err(); err != nil {
		metrics.RecordRedisError("ratings-service", metrics.RedisOpDel)
		return fmt.Errorf("failed to delete rating from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
