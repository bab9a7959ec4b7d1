package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/werewolf/internal/models/dtos"
)

// ReactionQueue buffers reaction events on a Redis Stream so signups are applied one at a time
type ReactionQueue struct {
	client *redis.Client
	stream string
}

func NewReactionQueue(client *redis.Client, stream string) *ReactionQueue {
	return &ReactionQueue{client: client, stream: stream}
}

// Enqueue adds an event to the stream
func (q *ReactionQueue) Enqueue(ctx context.Context, event *dtos.ReactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reaction event: %w", err)
	}

	// XADD stream * data <json>
	args := &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}
	if err := q.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

// Dequeue reads the next event for the consumer group.
// Returns (nil, "", nil) when blockTime passes without a message.
func (q *ReactionQueue) Dequeue(ctx context.Context, groupName, consumerName string, blockTime time.Duration) (*dtos.ReactionEvent, string, error) {
	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    blockTime,
	}

	streams, err := q.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, msg.ID, fmt.Errorf("invalid message format: data field missing")
	}

	var event dtos.ReactionEvent
	if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
		return nil, msg.ID, fmt.Errorf("failed to unmarshal reaction event: %w", err)
	}

	return &event, msg.ID, nil
}

// Ack acknowledges successful processing of a message
func (q *ReactionQueue) Ack(ctx context.Context, groupName, messageID string) error {
	return q.client.XAck(ctx, q.stream, groupName, messageID).Err()
}

// CreateConsumerGroup creates the consumer group if it doesn't exist
func (q *ReactionQueue) CreateConsumerGroup(ctx context.Context, groupName string) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// Length returns the number of entries in the stream
func (q *ReactionQueue) Length(ctx context.Context) (int64, error) {
	length, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}
