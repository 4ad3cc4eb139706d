package processor

import (
	"context"
	"time"

	"locaplay/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SpamPurger удаляет спам-комментарии старше retention
type SpamPurger interface {
	PurgeSpam(ctx context.Context, retention time.Duration) (int64, error)
}

// CronScheduler запускает периодическую очистку спама.
// Спам-комментарии не участвуют в агрегатах, поэтому их удаление
// не требует пересчёта рейтингов
type CronScheduler struct {
	cron      *cron.Cron
	purger    SpamPurger
	retention time.Duration
	log       zerolog.Logger
}

func NewCronScheduler(purger SpamPurger, retention time.Duration) *CronScheduler {
	return &CronScheduler{
		cron:      cron.New(),
		purger:    purger,
		retention: retention,
		log:       logger.WithComponent("spam-purge-scheduler"),
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	s.log.Info().Str("schedule", schedule).Dur("retention", s.retention).Msg("Starting spam purge scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		purged, err := s.purger.PurgeSpam(ctx, s.retention)
		if err != nil {
			s.log.Error().Err(err).Msg("Spam purge failed")
			return
		}
		if purged > 0 {
			s.log.Info().Int64("purged", purged).Msg("Spam purge completed")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Msg("Spam purge scheduler started")

	return nil
}

func (s *CronScheduler) Stop() {
	s.log.Info().Msg("Stopping spam purge scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Spam purge scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
