package scheduler

import (
	"context"
	"time"

	"rental_portal_backend/platform/config"
	"rental_portal_backend/platform/logger"
)

const defaultRefreshEnqueueInterval = time.Hour

// TrustScoreRefreshEnqueuer periodically queues a trust score refresh batch.
// The worker picks the batch up and recalculates every score older than the
// configured refresh age.
type TrustScoreRefreshEnqueuer struct {
	client     *Client
	refreshAge time.Duration
	interval   time.Duration
	log        *logger.Logger
}

func NewTrustScoreRefreshEnqueuer(cfg config.SchedulerConfig, client *Client, interval time.Duration, log *logger.Logger) *TrustScoreRefreshEnqueuer {
	if interval <= 0 {
		interval = defaultRefreshEnqueueInterval
	}

	refreshAge := cfg.GetTrustScoreRefreshAge()
	if refreshAge <= 0 {
		refreshAge = 24 * time.Hour
	}

	return &TrustScoreRefreshEnqueuer{
		client:     client,
		refreshAge: refreshAge,
		interval:   interval,
		log:        log,
	}
}

func (e *TrustScoreRefreshEnqueuer) Run(ctx context.Context) {
	if e == nil || e.client == nil {
		return
	}

	e.enqueue(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.enqueue(ctx)
		}
	}
}

func (e *TrustScoreRefreshEnqueuer) enqueue(ctx context.Context) {
	err := e.client.EnqueueTrustScoreRefresh(ctx, TrustScoreRefreshPayload{
		OlderThan: e.refreshAge.String(),
		Limit:     defaultRefreshBatchSize,
	})
	if err != nil {
		e.log.Warn("trust score refresh enqueue failed", "error", err)
	}
}
