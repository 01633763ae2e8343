package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the daily listings fetch. The site publishes today's
// schedule early in the morning, so a single daily cron keeps the rolling
// window moving.
type Scheduler struct {
	cron    *cron.Cron
	fetcher *Fetcher
	logger  *zap.Logger
}

func NewScheduler(fetcher *Fetcher, cronSpec string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		fetcher: fetcher,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(cronSpec, s.runDailyFetch); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Fetch scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn("Scheduler stop timed out")
	}
	s.logger.Info("Fetch scheduler stopped")
}

func (s *Scheduler) runDailyFetch() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.fetcher.FetchDay(ctx, DatePathToday); err != nil {
		s.logger.Error("Scheduled fetch failed", zap.Error(err))
	}
}
