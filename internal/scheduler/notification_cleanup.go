package scheduler

import (
	"context"
	"time"

	"rental_portal_backend/internal/notification/inapp"
	"rental_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultNotificationCleanupInterval = time.Hour
	defaultReadNotificationRetention   = 30 * 24 * time.Hour
)

// NotificationCleanup periodically removes old read in-app notifications.
type NotificationCleanup struct {
	repo      *inapp.Repository
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

func NewNotificationCleanup(pool *pgxpool.Pool, log *logger.Logger, interval, retention time.Duration) *NotificationCleanup {
	if interval <= 0 {
		interval = defaultNotificationCleanupInterval
	}
	if retention <= 0 {
		retention = defaultReadNotificationRetention
	}

	return &NotificationCleanup{
		repo:      inapp.NewRepository(pool),
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

func (c *NotificationCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *NotificationCleanup) cleanup(ctx context.Context) {
	deleted, err := c.repo.DeleteReadBefore(ctx, time.Now().Add(-c.retention))
	if err != nil {
		c.log.Warn("notification cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("notification cleanup deleted read notifications", "deleted", deleted)
	}
}
