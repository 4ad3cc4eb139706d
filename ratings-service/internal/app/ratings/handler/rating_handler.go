package handler

import (
	"context"
	"errors"
	"net/http"

	"locaplay/ratings-service/internal/app/ratings/entity"
	"locaplay/ratings-service/internal/app/ratings/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RatingServiceInterface interface {
	SubmitRating(ctx context.Context, req *entity.SubmitRatingRequest) (*entity.RatingResponse, error)
	GetRating(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error)
	UpsertRating(ctx context.Context, req *entity.UpsertRatingRequest) (*entity.RatingResponse, error)
	Recalculate(ctx context.Context, bucket entity.RatingBucket) (*entity.RatingResponse, error)
}

type RatingHandler struct {
	ratingService RatingServiceInterface
	validator     *validator.Validate
}

func NewRatingHandler(ratingService RatingServiceInterface) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		validator:     validator.New(),
	}
}

// SubmitRating обрабатывает публичную отправку одной оценки
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	var req entity.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidScore) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit rating"})
		return
	}

	c.JSON(http.StatusOK, rating)
}

// GetRating возвращает агрегат бакета
// Для бакета без оценок отдается нулевое распределение, не 404
func (h *RatingHandler) GetRating(c *gin.Context) {
	bucket, ok := bucketFromQuery(c)
	if !ok {
		return
	}

	rating, err := h.ratingService.GetRating(c.Request.Context(), bucket)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rating"})
		return
	}

	c.JSON(http.StatusOK, rating)
}

// UpsertRating сохраняет агрегат, заданный администратором, без пересчёта
func (h *RatingHandler) UpsertRating(c *gin.Context) {
	var req entity.UpsertRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rating, err := h.ratingService.UpsertRating(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAverage) || errors.Is(err, service.ErrInvalidDistribution) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert rating"})
		return
	}

	c.JSON(http.StatusOK, rating)
}

// Recalculate пересчитывает агрегат бакета по одобренным комментариям
func (h *RatingHandler) Recalculate(c *gin.Context) {
	var req entity.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	bucket := entity.RatingBucket{GameID: req.GameID, ProjectID: req.ProjectID, Locale: req.Locale}

	rating, err := h.ratingService.Recalculate(c.Request.Context(), bucket)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate rating"})
		return
	}

	c.JSON(http.StatusOK, rating)
}

// bucketFromQuery извлекает тройку бакета из query-параметров
func bucketFromQuery(c *gin.Context) (entity.RatingBucket, bool) {
	bucket := entity.RatingBucket{
		GameID:    c.Query("game_id"),
		ProjectID: c.Query("project_id"),
		Locale:    c.Query("locale"),
	}

	if bucket.GameID == "" || bucket.ProjectID == "" || bucket.Locale == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game_id, project_id and locale are required"})
		return bucket, false
	}

	return bucket, true
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
