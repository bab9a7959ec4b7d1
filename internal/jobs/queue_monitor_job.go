package jobs

import (
	"context"
	"time"

	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
)

// QueueLength reports how many entries a stream holds.
type QueueLength interface {
	Length(ctx context.Context) (int64, error)
}

// QueueMonitorJob publishes the reaction stream depth as a gauge and warns when the
// worker falls behind.
type QueueMonitorJob struct {
	queue     QueueLength
	metrics   *metrics.MetricsRegistry
	warnAbove int64
}

func NewQueueMonitorJob(queue QueueLength, metricsReg *metrics.MetricsRegistry, warnAbove int64) *QueueMonitorJob {
	return &QueueMonitorJob{queue: queue, metrics: metricsReg, warnAbove: warnAbove}
}

// Run performs a single check.
func (j *QueueMonitorJob) Run(ctx context.Context) error {
	length, err := j.queue.Length(ctx)
	if err != nil {
		return err
	}
	j.metrics.ReactionQueueDepth.Set(float64(length))
	if j.warnAbove > 0 && length > j.warnAbove {
		logging.Warn("Reaction queue is backing up", "length", length, "threshold", j.warnAbove)
	}
	return nil
}

// RunScheduled checks immediately and then every interval until ctx is done.
func (j *QueueMonitorJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Warn("Queue monitor initial check failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Warn("Queue monitor check failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Queue monitor shutting down")
			return
		}
	}
}
