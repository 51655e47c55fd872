package scheduler

import (
	"context"
	"fmt"
	"time"

	"rental_portal_backend/platform/config"
	"rental_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultRefreshBatchSize = 100

// TrustScoreRefresher recalculates trust scores last computed before the
// cutoff, in batches.
type TrustScoreRefresher interface {
	RefreshStaleScores(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	profiles TrustScoreRefresher
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, profiles TrustScoreRefresher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		profiles: profiles,
		log:      log,
	}

	mux.HandleFunc(TaskTrustScoreRefresh, w.handleTrustScoreRefresh)

	return w, nil
}

func (w *Worker) handleTrustScoreRefresh(ctx context.Context, task *asynq.Task) error {
	if w.profiles == nil {
		return nil
	}

	payload, err := ParseTrustScoreRefreshPayload(task)
	if err != nil {
		return err
	}

	maxAge, err := time.ParseDuration(payload.OlderThan)
	if err != nil || maxAge <= 0 {
		return fmt.Errorf("invalid olderThan duration %q", payload.OlderThan)
	}

	limit := payload.Limit
	if limit < 1 {
		limit = defaultRefreshBatchSize
	}

	refreshed, err := w.profiles.RefreshStaleScores(ctx, time.Now().Add(-maxAge), limit)
	if err != nil {
		return err
	}

	if refreshed > 0 {
		w.log.Info("refreshed stale trust scores", "count", refreshed)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
