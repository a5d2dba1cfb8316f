package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskvault/backend/repository"
	"github.com/taskvault/backend/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// OutboxStore is the slice of the task repository the outbox drives:
// enumerating dirty records, acknowledging synced ones, and reclaiming
// soft-deleted ones past retention.
type OutboxStore interface {
	ListDirtyAll(ctx context.Context) ([]repository.DirtyRecord, error)
	MarkSynced(ctx context.Context, userID, taskID string) error
	Users(ctx context.Context) ([]string, error)
	PurgeDeleted(ctx context.Context, userID string, olderThan time.Time) (int, error)
}

// OutboxConfig controls how often the store is scanned.
type OutboxConfig struct {
	Interval       time.Duration
	BatchSize      int
	PurgeInterval  time.Duration
	PurgeRetention time.Duration
}

// SyncOutbox periodically hands dirty records to the sync collaborator and
// clears their NeedsSync flag once accepted. It performs no remote logic of
// its own; with no syncer configured it only runs the purge schedule.
type SyncOutbox struct {
	store   OutboxStore
	syncer  usecase.TaskSyncer
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     OutboxConfig
}

func NewSyncOutbox(
	store OutboxStore,
	syncer usecase.TaskSyncer,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg OutboxConfig,
) *SyncOutbox {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = time.Hour
	}
	if cfg.PurgeRetention <= 0 {
		cfg.PurgeRetention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ob := &SyncOutbox{
		store:   store,
		syncer:  syncer,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	drainSchedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, err := ob.cron.AddFunc(drainSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := ob.Drain(ctx); err != nil {
			ob.logger.Error("outbox drain failed", zap.Error(err))
		}
	})
	if err != nil {
		ob.logger.Error("failed to schedule outbox drain", zap.String("schedule", drainSchedule), zap.Error(err))
	}

	purgeSchedule := fmt.Sprintf("@every %ds", int(cfg.PurgeInterval.Seconds()))
	_, err = ob.cron.AddFunc(purgeSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := ob.Purge(ctx); err != nil {
			ob.logger.Error("outbox purge failed", zap.Error(err))
		}
	})
	if err != nil {
		ob.logger.Error("failed to schedule outbox purge", zap.String("schedule", purgeSchedule), zap.Error(err))
	}

	return ob
}

// Start launches the cron scheduler.
func (ob *SyncOutbox) Start() {
	if ob == nil || ob.cron == nil {
		return
	}
	ob.cron.Start()
	ob.logger.Info("sync outbox started")
}

// Stop gracefully stops the scheduler.
func (ob *SyncOutbox) Stop(ctx context.Context) {
	if ob == nil || ob.cron == nil {
		return
	}
	stopCtx := ob.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ob.logger.Info("sync outbox stopped")
}

// Drain pushes up to BatchSize dirty records through the syncer. Records the
// syncer rejects stay dirty and are retried on the next scan.
func (ob *SyncOutbox) Drain(ctx context.Context) error {
	if ob == nil || ob.store == nil || ob.syncer == nil {
		return nil
	}
	if ob.monitor != nil && !ob.monitor.IsOnline() {
		ob.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	records, err := ob.store.ListDirtyAll(ctx)
	if err != nil {
		return err
	}
	if len(records) > ob.cfg.BatchSize {
		records = records[:ob.cfg.BatchSize]
	}

	for _, record := range records {
		if err := ob.syncer.SyncTask(ctx, record.UserID, &record.Task); err != nil {
			ob.logger.Warn("task sync rejected, will retry",
				zap.String("task_id", record.Task.ID),
				zap.Error(err))
			continue
		}
		if err := ob.store.MarkSynced(ctx, record.UserID, record.Task.ID); err != nil {
			ob.logger.Error("failed to acknowledge synced task",
				zap.String("task_id", record.Task.ID),
				zap.Error(err))
		}
	}
	return nil
}

// Purge physically reclaims soft-deleted records older than the retention
// window, per user.
func (ob *SyncOutbox) Purge(ctx context.Context) error {
	if ob == nil || ob.store == nil {
		return nil
	}
	users, err := ob.store.Users(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-ob.cfg.PurgeRetention)
	for _, userID := range users {
		purged, err := ob.store.PurgeDeleted(ctx, userID, cutoff)
		if err != nil {
			ob.logger.Warn("purge failed for user", zap.Error(err))
			continue
		}
		if purged > 0 {
			ob.logger.Info("purged soft-deleted tasks", zap.Int("count", purged))
		}
	}
	return nil
}
