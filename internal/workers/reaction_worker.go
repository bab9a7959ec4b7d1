package workers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
	"infinite-experiment/werewolf/internal/models/dtos"
	"infinite-experiment/werewolf/internal/services"
)

// ReactionSource is the stream side of common.ReactionQueue.
type ReactionSource interface {
	CreateConsumerGroup(ctx context.Context, groupName string) error
	Dequeue(ctx context.Context, groupName, consumerName string, blockTime time.Duration) (*dtos.ReactionEvent, string, error)
	Ack(ctx context.Context, groupName, messageID string) error
}

// ReactionHandler applies one signup reaction.
type ReactionHandler interface {
	HandleReaction(ctx context.Context, event *dtos.ReactionEvent) (services.Outcome, error)
}

// ReactionWorker drains the reaction stream and applies signups one at a time
type ReactionWorker struct {
	workerName string
	group      string
	queue      ReactionSource
	handler    ReactionHandler
	metrics    *metrics.MetricsRegistry
	blockTime  time.Duration
	backoff    time.Duration
}

func NewReactionWorker(group string, queue ReactionSource, handler ReactionHandler, metricsReg *metrics.MetricsRegistry) *ReactionWorker {
	return &ReactionWorker{
		workerName: "reactions-" + uuid.NewString()[:8],
		group:      group,
		queue:      queue,
		handler:    handler,
		metrics:    metricsReg,
		blockTime:  5 * time.Second,
		backoff:    time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (w *ReactionWorker) Start(ctx context.Context) error {
	if err := w.queue.CreateConsumerGroup(ctx, w.group); err != nil {
		return err
	}
	logging.Info("Reaction worker started", "worker", w.workerName, "group", w.group)

	processed, failed := 0, 0
	for {
		select {
		case <-ctx.Done():
			logging.Info("Reaction worker shutting down", "worker", w.workerName, "processed", processed, "errors", failed)
			return nil
		default:
		}

		event, messageID, err := w.queue.Dequeue(ctx, w.group, w.workerName, w.blockTime)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			if messageID == "" {
				logging.Warn("Error dequeuing reaction", "worker", w.workerName, "error", err)
				sleep(ctx, w.backoff)
				continue
			}
			// undecodable entry, drop it
			logging.Error("Dropping malformed reaction", "worker", w.workerName, "message_id", messageID, "error", err)
			w.ack(ctx, messageID)
			continue
		}
		if event == nil {
			continue
		}

		if w.process(ctx, event) {
			processed++
		} else {
			failed++
		}
		// acknowledged even on failure; a reaction can be re-added by the member
		w.ack(ctx, messageID)
	}
}

func (w *ReactionWorker) process(ctx context.Context, event *dtos.ReactionEvent) bool {
	out, err := w.handler.HandleReaction(ctx, event)
	result := "applied"
	switch {
	case err != nil:
		result = "error"
		logging.Error("Failed to apply reaction", "worker", w.workerName, "message_id", event.MessageID, "user_id", event.UserID, "error", err)
	case out.Rejected:
		result = string(out.Reason)
	}
	if w.metrics != nil {
		w.metrics.ReactionsProcessed.WithLabelValues(result).Inc()
	}
	return err == nil
}

func (w *ReactionWorker) ack(ctx context.Context, messageID string) {
	if err := w.queue.Ack(ctx, w.group, messageID); err != nil {
		logging.Warn("Error acknowledging reaction", "worker", w.workerName, "message_id", messageID, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
