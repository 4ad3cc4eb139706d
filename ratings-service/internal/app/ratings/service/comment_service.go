package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"locaplay/pkg/logger"
	"locaplay/pkg/metrics"
	"locaplay/ratings-service/internal/app/ratings/entity"
	"locaplay/ratings-service/internal/app/ratings/repository"
)

// CommentService обрабатывает бизнес-логику комментариев и модерации.
// Смена статуса, затрагивающая approved-комментарий с оценкой, запускает
// пересчёт агрегата его бакета
type CommentService struct {
	commentRepo  repository.CommentRepository
	auditRepo    repository.AuditRepository
	recalculator Recalculator
}

// NewCommentService создает новый сервис комментариев с внедрением зависимостей
func NewCommentService(
	commentRepo repository.CommentRepository,
	auditRepo repository.AuditRepository,
	recalculator Recalculator,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		auditRepo:    auditRepo,
		recalculator: recalculator,
	}
}

// CreateComment создает комментарий в статусе pending
// source различает прямые запросы API и импорт из внешнего пайплайна
func (s *CommentService) CreateComment(ctx context.Context, req *entity.CreateCommentRequest, source string) (*entity.Comment, error) {
	comment := &entity.Comment{
		Content:     req.Content,
		Nickname:    req.Nickname,
		Email:       req.Email,
		GameID:      req.GameID,
		ProjectID:   req.ProjectID,
		Locale:      req.Locale,
		RatingScore: req.RatingScore,
		Status:      entity.CommentStatusPending,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	metrics.CommentsCreated.WithLabelValues(source).Inc()

	return comment, nil
}

// GetComment получает комментарий по ID
func (s *CommentService) GetComment(ctx context.Context, id int64) (*entity.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// Moderate переводит комментарий в новый статус.
// Допустимые целевые статусы: approved, rejected, spam - модерация никогда
// не возвращает комментарий в pending. Если комментарий несёт оценку и
// прежний или новый статус approved, агрегат бакета пересчитывается
func (s *CommentService) Moderate(ctx context.Context, id int64, status entity.CommentStatus, moderatorID string) (*entity.Comment, error) {
	if !status.IsModerationTarget() {
		return nil, ErrInvalidStatus
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	previous := comment.Status
	now := time.Now()

	if err := s.commentRepo.UpdateStatus(ctx, id, status, now); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment status: %w", err)
	}

	comment.Status = status
	comment.ModeratedAt = &now
	comment.UpdatedAt = now

	metrics.ModerationActions.WithLabelValues(string(status)).Inc()
	s.recordAudit(ctx, comment, previous, status, moderatorID)

	if ratingRelevant(comment.RatingScore, previous, status) {
		if _, err := s.recalculator.Recalculate(ctx, comment.Bucket()); err != nil {
			return nil, fmt.Errorf("comment moderated but rating recalculation failed: %w", err)
		}
	}

	return comment, nil
}

// BatchModerate применяет Moderate к списку комментариев.
// Отсутствующие ID пропускаются, возвращается число успешных обновлений.
// Пересчёт выполняется один раз на каждый затронутый бакет, а не на каждый
// комментарий
func (s *CommentService) BatchModerate(ctx context.Context, ids []int64, status entity.CommentStatus, moderatorID string) (int, error) {
	if !status.IsModerationTarget() {
		return 0, ErrInvalidStatus
	}

	updated := 0
	affected := make(map[entity.RatingBucket]struct{})
	now := time.Now()

	for _, id := range ids {
		comment, err := s.commentRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrCommentNotFound) {
				logger.Debug().Int64("comment_id", id).Msg("Skipping missing comment in batch moderation")
				continue
			}
			return updated, fmt.Errorf("failed to get comment %d: %w", id, err)
		}

		previous := comment.Status

		if err := s.commentRepo.UpdateStatus(ctx, id, status, now); err != nil {
			if errors.Is(err, repository.ErrCommentNotFound) {
				continue
			}
			return updated, fmt.Errorf("failed to update comment %d: %w", id, err)
		}

		updated++
		metrics.ModerationActions.WithLabelValues(string(status)).Inc()
		s.recordAudit(ctx, comment, previous, status, moderatorID)

		if ratingRelevant(comment.RatingScore, previous, status) {
			affected[comment.Bucket()] = struct{}{}
		}
	}

	for bucket := range affected {
		if _, err := s.recalculator.Recalculate(ctx, bucket); err != nil {
			return updated, fmt.Errorf("batch moderated %d comments but recalculation failed for bucket %s: %w", updated, bucket.Key(), err)
		}
	}

	return updated, nil
}

// DeleteComment удаляет комментарий.
// Удаление approved-комментария с оценкой пересчитывает агрегат так же,
// как перевод из approved в любой другой статус
func (s *CommentService) DeleteComment(ctx context.Context, id int64, moderatorID string) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to get comment: %w", err)
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	metrics.ModerationActions.WithLabelValues(string(entity.StatusDeleted)).Inc()
	s.recordAudit(ctx, comment, comment.Status, entity.StatusDeleted, moderatorID)

	if comment.CountsForRating() {
		if _, err := s.recalculator.Recalculate(ctx, comment.Bucket()); err != nil {
			return fmt.Errorf("comment deleted but rating recalculation failed: %w", err)
		}
	}

	return nil
}

// ModerationHistory возвращает журнал модерации комментария, новые первыми.
// История доступна и для уже удалённых комментариев: запись об удалении
// остаётся в журнале
func (s *CommentService) ModerationHistory(ctx context.Context, id int64) ([]entity.ModerationRecord, error) {
	records, err := s.auditRepo.ListByComment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation history: %w", err)
	}

	return records, nil
}

// AddHelpfulVote увеличивает счётчик голосов "полезно"
func (s *CommentService) AddHelpfulVote(ctx context.Context, id int64) error {
	if err := s.commentRepo.IncrementHelpfulVotes(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to add helpful vote: %w", err)
	}

	return nil
}

// ListApproved получает одобренные комментарии бакета для публичной выдачи
func (s *CommentService) ListApproved(ctx context.Context, bucket entity.RatingBucket) ([]entity.Comment, error) {
	comments, err := s.commentRepo.ListByBucket(ctx, bucket, entity.CommentStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

// PurgeSpam удаляет спам-комментарии старше retention
// Спам не участвует в агрегатах, пересчёт не требуется
func (s *CommentService) PurgeSpam(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	purged, err := s.commentRepo.DeleteSpamBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge spam: %w", err)
	}

	if purged > 0 {
		metrics.SpamPurged.Add(float64(purged))
	}

	return purged, nil
}

// ratingRelevant определяет, требует ли смена статуса пересчёта агрегата.
// Перемещение между rejected и spam без участия approved пересчёта не требует
func ratingRelevant(score *int, previous, next entity.CommentStatus) bool {
	if score == nil {
		return false
	}
	return previous == entity.CommentStatusApproved || next == entity.CommentStatusApproved
}

// recordAudit пишет запись в журнал модерации; ошибка журнала не фатальна
func (s *CommentService) recordAudit(ctx context.Context, comment *entity.Comment, from, to entity.CommentStatus, moderatorID string) {
	record := &entity.ModerationRecord{
		CommentID:   comment.ID,
		GameID:      comment.GameID,
		ProjectID:   comment.ProjectID,
		Locale:      comment.Locale,
		FromStatus:  from,
		ToStatus:    to,
		ModeratorID: moderatorID,
		Timestamp:   time.Now(),
	}

	if err := s.auditRepo.Record(ctx, record); err != nil {
		logger.Warn().Err(err).Int64("comment_id", comment.ID).Msg("Failed to record moderation audit")
	}
}
