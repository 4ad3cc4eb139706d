package repository

import (
	"context"
	"fmt"
	"time"

	"locaplay/ratings-service/internal/app/ratings/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type auditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository создает репозиторий журнала модерации
// Автоматически создает индекс по comment_id для выборки истории
func NewAuditRepository(db *mongo.Database) AuditRepository {
	collection := db.Collection("moderation_log")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "comment_id", Value: 1},
		},
		Options: options.Index().SetName("comment_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		fmt.Printf("Warning: failed to create index on comment_id: %v\n", err)
	}

	return &auditRepository{collection: collection}
}

// Record сохраняет запись о модерационном действии
func (r *auditRepository) Record(ctx context.Context, record *entity.ModerationRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to record moderation action: %w", err)
	}

	return nil
}

// ListByComment получает историю модерации комментария, новые первыми
func (r *auditRepository) ListByComment(ctx context.Context, commentID int64) ([]entity.ModerationRecord, error) {
	filter := bson.M{"comment_id": commentID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find moderation records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.ModerationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode moderation records: %w", err)
	}

	return records, nil
}
