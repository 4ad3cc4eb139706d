package entity

// SubmitRatingRequest - публичная отправка одной оценки
type SubmitRatingRequest struct {
	GameID    string `json:"game_id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	Locale    string `json:"locale" validate:"required"`
	Score     int    `json:"score" validate:"required,min=1,max=5"`
}

// UpsertRatingRequest - ручная установка агрегата администратором
// Distribution и total намеренно не сверяются между собой: это escape hatch,
// значения сохраняются как есть
type UpsertRatingRequest struct {
	GameID        string         `json:"game_id" validate:"required"`
	ProjectID     string         `json:"project_id" validate:"required"`
	Locale        string         `json:"locale" validate:"required"`
	AverageRating float64        `json:"average_rating" validate:"min=0,max=5"`
	TotalRatings  int            `json:"total_ratings" validate:"min=0"`
	Distribution  map[string]int `json:"distribution" validate:"required"`
}

// RecalculateRequest - запрос на пересчёт агрегата по комментариям
type RecalculateRequest struct {
	GameID    string `json:"game_id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	Locale    string `json:"locale" validate:"required"`
}

// CreateCommentRequest - создание комментария
type CreateCommentRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=5000"`
	Nickname    string `json:"nickname" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	GameID      string `json:"game_id" validate:"required"`
	ProjectID   string `json:"project_id" validate:"required"`
	Locale      string `json:"locale" validate:"required"`
	RatingScore *int   `json:"rating_score" validate:"omitempty,min=1,max=5"`
}

// ModerateCommentRequest - смена статуса одного комментария
type ModerateCommentRequest struct {
	Status CommentStatus `json:"status" validate:"required"`
}

// BatchModerateRequest - смена статуса пачки комментариев
type BatchModerateRequest struct {
	IDs    []int64       `json:"ids" validate:"required,min=1"`
	Status CommentStatus `json:"status" validate:"required"`
}

// BatchModerateResponse - результат пакетной модерации
// Отсутствующие ID пропускаются, Updated содержит число успешных обновлений
type BatchModerateResponse struct {
	Updated int `json:"updated"`
}

// RatingResponse - публичное представление агрегата
// Для несуществующего бакета возвращается нулевое распределение, не 404
type RatingResponse struct {
	GameID       string         `json:"game_id"`
	ProjectID    string         `json:"project_id"`
	Locale       string         `json:"locale"`
	Average      float64        `json:"average"`
	Total        int            `json:"total"`
	Distribution map[string]int `json:"distribution"`
}

// NewRatingResponse строит ответ из агрегата
func NewRatingResponse(agg *RatingAggregate) *RatingResponse {
	return &RatingResponse{
		GameID:    agg.GameID,
		ProjectID: agg.ProjectID,
		Locale:    agg.Locale,
		Average:   agg.AverageRating,
		Total:     agg.TotalRatings,
		Distribution: map[string]int{
			"1": agg.Rating1Count,
			"2": agg.Rating2Count,
			"3": agg.Rating3Count,
			"4": agg.Rating4Count,
			"5": agg.Rating5Count,
		},
	}
}

// NewEmptyRatingResponse строит нулевой ответ для бакета без агрегата
func NewEmptyRatingResponse(bucket RatingBucket) *RatingResponse {
	return &RatingResponse{
		GameID:       bucket.GameID,
		ProjectID:    bucket.ProjectID,
		Locale:       bucket.Locale,
		Average:      0,
		Total:        0,
		Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}
}

// CommentListResponse - ответ со списком комментариев
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

// ModerationHistoryResponse - журнал модерации комментария, новые первыми
type ModerationHistoryResponse struct {
	Records []ModerationRecord `json:"records"`
	Total   int                `json:"total"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
