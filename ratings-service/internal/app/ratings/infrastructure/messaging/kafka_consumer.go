package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"locaplay/pkg/logger"
	"locaplay/pkg/metrics"
	"locaplay/ratings-service/internal/app/ratings/entity"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// CommentImporter создает комментарий, пришедший из внешнего пайплайна
type CommentImporter interface {
	CreateComment(ctx context.Context, req *entity.CreateCommentRequest, source string) (*entity.Comment, error)
}

// KafkaConsumer читает события импорта комментариев из топика comment_imports.
// Каждое событие становится комментарием в статусе pending и проходит обычную
// модерацию
type KafkaConsumer struct {
	reader   *kafka.Reader
	importer CommentImporter
	topic    string
	groupID  string
	stopChan chan struct{}
	doneChan chan struct{}
	log      zerolog.Logger
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	importer CommentImporter,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		importer: importer,
		topic:    topic,
		groupID:  groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		log:      logger.WithComponent("comment-import-consumer"),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	c.log.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting comment import consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	c.log.Info().Msg("Stopping comment import consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	c.log.Info().Msg("Comment import consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Error().Err(err).Msg("Error fetching import message")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				metrics.RecordKafkaConsumeError("ratings-service", c.topic)
				c.log.Error().Err(err).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Msg("Error processing import message")
				// Offset не коммитим - сообщение будет обработано повторно
			} else {
				metrics.RecordKafkaMessageConsumed("ratings-service", c.topic, c.groupID)
				if err := c.reader.CommitMessages(ctx, message); err != nil {
					c.log.Error().Err(err).Msg("Error committing import message")
				}
			}
		}
	}
}

// processMessage обрабатывает одно событие импорта
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.CommentImportEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal comment import event: %w", err)
	}

	req := &entity.CreateCommentRequest{
		Content:     event.Content,
		Nickname:    event.Nickname,
		Email:       event.Email,
		GameID:      event.GameID,
		ProjectID:   event.ProjectID,
		Locale:      event.Locale,
		RatingScore: event.RatingScore,
	}

	if _, err := c.importer.CreateComment(ctx, req, "import"); err != nil {
		return fmt.Errorf("failed to import comment: %w", err)
	}

	c.log.Debug().
		Str("game_id", event.GameID).
		Str("locale", event.Locale).
		Int64("offset", message.Offset).
		Msg("Imported comment from external pipeline")

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
