package scheduler

import (
	"context"
	"fmt"

	"outreach_backend/internal/funnel/service"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Sweeper is the part of the funnel service the worker needs.
type Sweeper interface {
	RunSweepTick(ctx context.Context, batchSize int) (service.SweepStats, error)
}

// Worker processes sweep tasks.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper Sweeper
	log     *logger.Logger
}

// NewWorker creates the asynq worker for the funnel queue.
func NewWorker(cfg config.SchedulerConfig, sweeper Sweeper, log *logger.Logger) (*Worker, error) {
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
		server:  server,
		mux:     mux,
		sweeper: sweeper,
		log:     log,
	}

	mux.HandleFunc(TaskFunnelSweep, w.handleFunnelSweep)

	return w, nil
}

func (w *Worker) handleFunnelSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFunnelSweepPayload(task)
	if err != nil {
		return err
	}

	if _, err := w.sweeper.RunSweepTick(ctx, payload.BatchSize); err != nil {
		return fmt.Errorf("funnel sweep: %w", err)
	}
	return nil
}

// Run blocks until ctx is cancelled.
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
