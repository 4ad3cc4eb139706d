package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"locaplay/ratings-service/internal/app/ratings/entity"
	"locaplay/ratings-service/internal/app/ratings/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CommentServiceInterface interface {
	CreateComment(ctx context.Context, req *entity.CreateCommentRequest, source string) (*entity.Comment, error)
	GetComment(ctx context.Context, id int64) (*entity.Comment, error)
	Moderate(ctx context.Context, id int64, status entity.CommentStatus, moderatorID string) (*entity.Comment, error)
	BatchModerate(ctx context.Context, ids []int64, status entity.CommentStatus, moderatorID string) (int, error)
	DeleteComment(ctx context.Context, id int64, moderatorID string) error
	ModerationHistory(ctx context.Context, id int64) ([]entity.ModerationRecord, error)
	AddHelpfulVote(ctx context.Context, id int64) error
	ListApproved(ctx context.Context, bucket entity.RatingBucket) ([]entity.Comment, error)
	PurgeSpam(ctx context.Context, retention time.Duration) (int64, error)
}

type CommentHandler struct {
	commentService CommentServiceInterface
	validator      *validator.Validate
}

func NewCommentHandler(commentService CommentServiceInterface) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		validator:      validator.New(),
	}
}

// CreateComment создает комментарий в статусе pending
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req entity.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), &req, "api")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments возвращает одобренные комментарии бакета
func (h *CommentHandler) ListComments(c *gin.Context) {
	bucket, ok := bucketFromQuery(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListApproved(c.Request.Context(), bucket)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}

	c.JSON(http.StatusOK, entity.CommentListResponse{
		Comments: comments,
		Total:    len(comments),
	})
}

// GetComment возвращает комментарий в любом статусе для модерации
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := commentIDFromPath(c)
	if !ok {
		return
	}

	comment, err := h.commentService.GetComment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Moderate переводит комментарий в новый статус (approved/rejected/spam)
func (h *CommentHandler) Moderate(c *gin.Context) {
	id, ok := commentIDFromPath(c)
	if !ok {
		return
	}

	var req entity.ModerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.commentService.Moderate(c.Request.Context(), id, req.Status, moderatorID(c))
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		if errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to moderate comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// BatchModerate применяет модерацию к списку комментариев
// Отсутствующие ID пропускаются; возвращается число обновленных записей
func (h *CommentHandler) BatchModerate(c *gin.Context) {
	var req entity.BatchModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	updated, err := h.commentService.BatchModerate(c.Request.Context(), req.IDs, req.Status, moderatorID(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to moderate comments"})
		return
	}

	c.JSON(http.StatusOK, entity.BatchModerateResponse{Updated: updated})
}

// DeleteComment удаляет комментарий
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := commentIDFromPath(c)
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), id, moderatorID(c)); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Comment deleted successfully",
	})
}

// GetModerationHistory возвращает журнал модерации комментария
func (h *CommentHandler) GetModerationHistory(c *gin.Context) {
	id, ok := commentIDFromPath(c)
	if !ok {
		return
	}

	records, err := h.commentService.ModerationHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get moderation history"})
		return
	}

	c.JSON(http.StatusOK, entity.ModerationHistoryResponse{
		Records: records,
		Total:   len(records),
	})
}

// AddHelpfulVote увеличивает счётчик голосов "полезно"
func (h *CommentHandler) AddHelpfulVote(c *gin.Context) {
	id, ok := commentIDFromPath(c)
	if !ok {
		return
	}

	if err := h.commentService.AddHelpfulVote(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add helpful vote"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Vote recorded",
	})
}

// commentIDFromPath извлекает числовой ID комментария из пути
func commentIDFromPath(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return 0, false
	}
	return id, true
}

// moderatorID достает ID администратора из контекста, установленного auth middleware
func moderatorID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
