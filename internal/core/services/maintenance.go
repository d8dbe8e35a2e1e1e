package services

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	"github.com/robfig/cron/v3"
)

const pruneTimeout = time.Minute

// MaintenanceScheduler runs periodic housekeeping jobs.
type MaintenanceScheduler struct {
	cron      *cron.Cron
	outbox    portsrepo.OutboxRepository
	logger    *slog.Logger
	schedule  string
	retention time.Duration
}

// NewMaintenanceScheduler creates a scheduler that prunes published outbox rows older
// than retention on schedule.
func NewMaintenanceScheduler(outbox portsrepo.OutboxRepository, logger *slog.Logger, schedule string, retention time.Duration) *MaintenanceScheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &MaintenanceScheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cronLogger))),
		outbox:    outbox,
		logger:    logger,
		schedule:  schedule,
		retention: retention,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.PruneOutbox); err != nil {
		return err
	}
	s.logger.Info("Scheduled outbox pruning", slog.String("schedule", s.schedule), slog.Duration("retention", s.retention))
	s.cron.Start()
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *MaintenanceScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// PruneOutbox deletes published outbox rows past retention.
func (s *MaintenanceScheduler) PruneOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	deleted, err := s.outbox.PruneOutbox(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.logger.Error("Outbox pruning failed", slog.String("error", err.Error()))
		return
	}
	if deleted > 0 {
		s.logger.Info("Pruned published outbox messages", slog.Int64("deleted", deleted))
	}
}
