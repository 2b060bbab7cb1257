// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list receiving game events.
const DefaultQueueName = "wizard_events"

// GameActionRecord is one entry of the game event feed. Consumers (the Discord bot) read the
// list in order; ActionIndex orders records within a game instance.
type GameActionRecord struct {
	GameID        int            `json:"game_id"`
	Instance      uuid.UUID      `json:"instance"`
	ActionIndex   int            `json:"action_index"`
	Actor         string         `json:"actor,omitempty"`
	ActionType    string         `json:"action_type"`
	ActionPayload map[string]any `json:"action_payload"`
	Timestamp     int64          `json:"timestamp"`
}

// Publisher pushes game events onto a Redis list.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// Connect dials Redis and verifies the connection with a PING.
func Connect(ctx context.Context, addr string, db int, queue string) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return NewPublisher(rdb, queue), nil
}

// NewPublisher wraps an existing client. An empty queue uses DefaultQueueName.
func NewPublisher(rdb *redis.Client, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{rdb: rdb, queue: queue}
}

// Queue returns the name of the Redis list.
func (p *Publisher) Queue() string { return p.queue }

// PublishGameAction serializes the record to JSON and pushes it to the queue.
func (p *Publisher) PublishGameAction(ctx context.Context, record GameActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
