package entity

import (
	"strings"
	"time"
)

// CommentStatus представляет статус модерации комментария
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"  // Ожидает модерации
	CommentStatusApproved CommentStatus = "approved" // Одобрен, участвует в рейтинге
	CommentStatusRejected CommentStatus = "rejected" // Отклонён
	CommentStatusSpam     CommentStatus = "spam"     // Помечен как спам
)

// IsModerationTarget проверяет что статус допустим как цель модерации
// Модерация никогда не возвращает комментарий в pending
func (s CommentStatus) IsModerationTarget() bool {
	switch s {
	case CommentStatusApproved, CommentStatusRejected, CommentStatusSpam:
		return true
	}
	return false
}

// Comment представляет пользовательский комментарий к игре
// RatingScore опционален: комментарий без оценки не участвует в рейтинге
type Comment struct {
	ID           int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Content      string        `json:"content" gorm:"type:text;not null"`
	Nickname     string        `json:"nickname" gorm:"type:varchar(100);not null"`
	Email        string        `json:"email,omitempty" gorm:"type:varchar(255)"`
	GameID       string        `json:"game_id" gorm:"type:varchar(64);not null;index:idx_comments_bucket,priority:1"`
	ProjectID    string        `json:"project_id" gorm:"type:varchar(64);not null;index:idx_comments_bucket,priority:2"`
	Locale       string        `json:"locale" gorm:"type:varchar(16);not null;index:idx_comments_bucket,priority:3"`
	RatingScore  *int          `json:"rating_score,omitempty" gorm:"check:rating_score >= 1 AND rating_score <= 5"`
	Status       CommentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	HelpfulVotes int           `json:"helpful_votes" gorm:"not null;default:0;check:helpful_votes >= 0"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	ModeratedAt  *time.Time    `json:"moderated_at,omitempty"`
}

// TableName указывает имя таблицы для GORM
func (Comment) TableName() string {
	return "comments"
}

// Bucket возвращает идентифицирующую тройку комментария
func (c *Comment) Bucket() RatingBucket {
	return RatingBucket{GameID: c.GameID, ProjectID: c.ProjectID, Locale: c.Locale}
}

// CountsForRating сообщает, влияет ли комментарий на агрегат в текущем статусе
func (c *Comment) CountsForRating() bool {
	return c.RatingScore != nil && c.Status == CommentStatusApproved
}

// RatingBucket - тройка (game, project, locale), по которой хранится один агрегат
type RatingBucket struct {
	GameID    string `json:"game_id"`
	ProjectID string `json:"project_id"`
	Locale    string `json:"locale"`
}

// bucketKeyEscaper экранирует разделитель внутри компонентов ключа:
// ID со символом ":" не должны склеивать два разных бакета в один
var bucketKeyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

// Key возвращает строковый ключ бакета для кеша и advisory-блокировок
func (b RatingBucket) Key() string {
	return bucketKeyEscaper.Replace(b.GameID) + ":" + bucketKeyEscaper.Replace(b.ProjectID) + ":" + bucketKeyEscaper.Replace(b.Locale)
}

// RatingAggregate представляет сводный рейтинг одного бакета
// Инвариант: rating1_count+...+rating5_count == total_ratings,
// average_rating - средневзвешенное с округлением до одного знака
type RatingAggregate struct {
	GameID        string    `json:"game_id" gorm:"type:varchar(64);primaryKey"`
	ProjectID     string    `json:"project_id" gorm:"type:varchar(64);primaryKey"`
	Locale        string    `json:"locale" gorm:"type:varchar(16);primaryKey"`
	AverageRating float64   `json:"average_rating" gorm:"type:decimal(2,1);not null"`
	TotalRatings  int       `json:"total_ratings" gorm:"not null;check:total_ratings >= 0"`
	Rating1Count  int       `json:"rating_1_count" gorm:"not null"`
	Rating2Count  int       `json:"rating_2_count" gorm:"not null"`
	Rating3Count  int       `json:"rating_3_count" gorm:"not null"`
	Rating4Count  int       `json:"rating_4_count" gorm:"not null"`
	Rating5Count  int       `json:"rating_5_count" gorm:"not null"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (RatingAggregate) TableName() string {
	return "rating_aggregates"
}

// Bucket возвращает идентифицирующую тройку агрегата
func (a *RatingAggregate) Bucket() RatingBucket {
	return RatingBucket{GameID: a.GameID, ProjectID: a.ProjectID, Locale: a.Locale}
}

// Counts возвращает распределение как массив: Counts()[i] - число оценок i+1
func (a *RatingAggregate) Counts() [5]int {
	return [5]int{a.Rating1Count, a.Rating2Count, a.Rating3Count, a.Rating4Count, a.Rating5Count}
}

// SetCounts записывает распределение из массива
func (a *RatingAggregate) SetCounts(counts [5]int) {
	a.Rating1Count = counts[0]
	a.Rating2Count = counts[1]
	a.Rating3Count = counts[2]
	a.Rating4Count = counts[3]
	a.Rating5Count = counts[4]
}

// RatingEvent представляет событие изменения рейтинга для Kafka
type RatingEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"` // RATING_SUBMITTED, RATING_OVERRIDDEN, RATING_RECALCULATED, RATING_REMOVED
	GameID    string    `json:"game_id"`
	ProjectID string    `json:"project_id"`
	Locale    string    `json:"locale"`
	Average   float64   `json:"average"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Kafka event types
const (
	EventRatingSubmitted    = "RATING_SUBMITTED"
	EventRatingOverridden   = "RATING_OVERRIDDEN"
	EventRatingRecalculated = "RATING_RECALCULATED"
	EventRatingRemoved      = "RATING_REMOVED"
)

// CommentImportEvent представляет комментарий из внешнего пайплайна импорта
// Читается из топика comment_imports и создаётся как pending
type CommentImportEvent struct {
	Content     string `json:"content"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email,omitempty"`
	GameID      string `json:"game_id"`
	ProjectID   string `json:"project_id"`
	Locale      string `json:"locale"`
	RatingScore *int   `json:"rating_score,omitempty"`
}

// ModerationRecord - запись аудита модерации, хранится в MongoDB
type ModerationRecord struct {
	CommentID   int64         `bson:"comment_id" json:"comment_id"`
	GameID      string        `bson:"game_id" json:"game_id"`
	ProjectID   string        `bson:"project_id" json:"project_id"`
	Locale      string        `bson:"locale" json:"locale"`
	FromStatus  CommentStatus `bson:"from_status" json:"from_status"`
	ToStatus    CommentStatus `bson:"to_status" json:"to_status"` // "deleted" при удалении
	ModeratorID string        `bson:"moderator_id,omitempty" json:"moderator_id,omitempty"`
	Timestamp   time.Time     `bson:"timestamp" json:"timestamp"`
}

// StatusDeleted - псевдостатус для записи аудита при удалении комментария
const StatusDeleted CommentStatus = "deleted"
