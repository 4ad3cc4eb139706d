package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locaplay/ratings-service/internal/app/ratings/aggregation"
	"locaplay/ratings-service/internal/app/ratings/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository создает новый репозиторий агрегатов рейтинга
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// bucketKey - колонки составного ключа для upsert
var bucketKey = []clause.Column{
	{Name: "game_id"},
	{Name: "project_id"},
	{Name: "locale"},
}

// lockBucket берет advisory-блокировку бакета на время транзакции.
// Сериализует конкурентные read-modify-write по одному бакету, не задевая
// остальные: операции над разными тройками полностью независимы
func lockBucket(tx *gorm.DB, bucket entity.RatingBucket) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", bucket.Key()).Error
}

// Get получает агрегат бакета
func (r *ratingRepository) Get(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingAggregate, error) {
	var agg entity.RatingAggregate
	result := r.db.WithContext(ctx).
		First(&agg, "game_id = ? AND project_id = ? AND locale = ?", bucket.GameID, bucket.ProjectID, bucket.Locale)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAggregateNotFound
		}
		return nil, fmt.Errorf("failed to get rating aggregate: %w", result.Error)
	}

	return &agg, nil
}

// Upsert сохраняет агрегат как есть, перезаписывая существующий.
// Используется административным override: значения не пересчитываются
func (r *ratingRepository) Upsert(ctx context.Context, agg *entity.RatingAggregate) error {
	agg.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   bucketKey,
		DoUpdates: clause.AssignmentColumns(aggregateColumns),
	}).Create(agg)

	if result.Error != nil {
		return fmt.Errorf("failed to upsert rating aggregate: %w", result.Error)
	}

	return nil
}

var aggregateColumns = []string{
	"average_rating", "total_ratings",
	"rating1_count", "rating2_count", "rating3_count", "rating4_count", "rating5_count",
	"updated_at",
}

// Delete удаляет агрегат бакета
// Отсутствие строки не является ошибкой: пересчёт пустого бакета идемпотентен
func (r *ratingRepository) Delete(ctx context.Context, bucket entity.RatingBucket) error {
	result := r.db.WithContext(ctx).
		Where("game_id = ? AND project_id = ? AND locale = ?", bucket.GameID, bucket.ProjectID, bucket.Locale).
		Delete(&entity.RatingAggregate{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete rating aggregate: %w", result.Error)
	}

	return nil
}

// IncrementScore добавляет одну публичную оценку к агрегату бакета.
// Чтение, пересчёт и запись выполняются в одной транзакции под блокировкой
// бакета, поэтому конкурентные оценки не теряются. Этот путь никогда
// не удаляет агрегат - total только растёт
func (r *ratingRepository) IncrementScore(ctx context.Context, bucket entity.RatingBucket, score int) (*entity.RatingAggregate, error) {
	var updated *entity.RatingAggregate

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBucket(tx, bucket); err != nil {
			return fmt.Errorf("failed to lock bucket: %w", err)
		}

		var counts [5]int
		var current entity.RatingAggregate
		result := tx.First(&current, "game_id = ? AND project_id = ? AND locale = ?", bucket.GameID, bucket.ProjectID, bucket.Locale)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read rating aggregate: %w", result.Error)
			}
			// Первая оценка бакета: стартуем с нулевого распределения
		} else {
			counts = current.Counts()
		}

		res := aggregation.FromCounts(counts).Add(score)

		agg := &entity.RatingAggregate{
			GameID:        bucket.GameID,
			ProjectID:     bucket.ProjectID,
			Locale:        bucket.Locale,
			AverageRating: res.Average,
			TotalRatings:  res.Total,
			UpdatedAt:     time.Now(),
		}
		agg.SetCounts(res.Counts)

		upsert := tx.Clauses(clause.OnConflict{
			Columns:   bucketKey,
			DoUpdates: clause.AssignmentColumns(aggregateColumns),
		}).Create(agg)
		if upsert.Error != nil {
			return fmt.Errorf("failed to upsert rating aggregate: %w", upsert.Error)
		}

		updated = agg
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RecalculateFromComments выводит агрегат бакета из одобренных комментариев
// с оценкой. Выборка и запись происходят в одной транзакции под блокировкой
// бакета - результат всегда соответствует единому снимку комментариев.
// Возвращает nil без ошибки, когда подходящих комментариев нет: в этом
// случае существующий агрегат удаляется, а не обнуляется
func (r *ratingRepository) RecalculateFromComments(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingAggregate, error) {
	var updated *entity.RatingAggregate

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBucket(tx, bucket); err != nil {
			return fmt.Errorf("failed to lock bucket: %w", err)
		}

		var scores []int
		result := tx.Model(&entity.Comment{}).
			Where("game_id = ? AND project_id = ? AND locale = ? AND status = ? AND rating_score IS NOT NULL",
				bucket.GameID, bucket.ProjectID, bucket.Locale, entity.CommentStatusApproved).
			Pluck("rating_score", &scores)
		if result.Error != nil {
			return fmt.Errorf("failed to collect approved scores: %w", result.Error)
		}

		res := aggregation.Aggregate(scores)

		if res.Total == 0 {
			del := tx.
				Where("game_id = ? AND project_id = ? AND locale = ?", bucket.GameID, bucket.ProjectID, bucket.Locale).
				Delete(&entity.RatingAggregate{})
			if del.Error != nil {
				return fmt.Errorf("failed to delete rating aggregate: %w", del.Error)
			}
			updated = nil
			return nil
		}

		agg := &entity.RatingAggregate{
			GameID:        bucket.GameID,
			ProjectID:     bucket.ProjectID,
			Locale:        bucket.Locale,
			AverageRating: res.Average,
			TotalRatings:  res.Total,
			UpdatedAt:     time.Now(),
		}
		agg.SetCounts(res.Counts)

		upsert := tx.Clauses(clause.OnConflict{
			Columns:   bucketKey,
			DoUpdates: clause.AssignmentColumns(aggregateColumns),
		}).Create(agg)
		if upsert.Error != nil {
			return fmt.Errorf("failed to upsert rating aggregate: %w", upsert.Error)
		}

		updated = agg
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
