package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locaplay/ratings-service/internal/app/ratings/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Код ошибки PostgreSQL check_violation: нарушение check-ограничения
// (например rating_score вне [1,5] у импортированного комментария)
const pgCheckViolation = "23514"

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository создает новый репозиторий комментариев
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create создает новый комментарий
func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	result := r.db.WithContext(ctx).Create(comment)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgCheckViolation {
			return ErrInvalidCommentData
		}
		return fmt.Errorf("failed to create comment: %w", result.Error)
	}
	return nil
}

// GetByID получает комментарий по ID
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	var comment entity.Comment
	result := r.db.WithContext(ctx).First(&comment, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", result.Error)
	}

	return &comment, nil
}

// UpdateStatus меняет статус модерации и проставляет moderated_at
func (r *commentRepository) UpdateStatus(ctx context.Context, id int64, status entity.CommentStatus, moderatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"moderated_at": moderatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update comment status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}

// Delete удаляет комментарий
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Comment{}, "id = ?", id)

	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}

// ListByBucket получает комментарии бакета, новые первыми
// Пустой status означает без фильтра по статусу
func (r *commentRepository) ListByBucket(ctx context.Context, bucket entity.RatingBucket, status entity.CommentStatus) ([]entity.Comment, error) {
	query := r.db.WithContext(ctx).
		Where("game_id = ? AND project_id = ? AND locale = ?", bucket.GameID, bucket.ProjectID, bucket.Locale)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var comments []entity.Comment
	result := query.Order("created_at DESC").Find(&comments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list comments: %w", result.Error)
	}

	return comments, nil
}

// IncrementHelpfulVotes атомарно увеличивает счётчик голосов "полезно"
func (r *commentRepository) IncrementHelpfulVotes(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&entity.Comment{}).
		Where("id = ?", id).
		UpdateColumn("helpful_votes", gorm.Expr("helpful_votes + 1"))

	if result.Error != nil {
		return fmt.Errorf("failed to increment helpful votes: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}

// DeleteSpamBefore удаляет спам-комментарии старше cutoff
// Спам не участвует в агрегатах, пересчёт после удаления не требуется
func (r *commentRepository) DeleteSpamBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entity.CommentStatusSpam, cutoff).
		Delete(&entity.Comment{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge spam comments: %w", result.Error)
	}

	return result.RowsAffected, nil
}
