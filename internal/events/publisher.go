package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

// Publisher appends example events to the Redis stream.
type Publisher struct {
	client *redis.Client
	stream string
	log    infralogger.Logger
}

// NewPublisher creates a publisher. It returns nil when client is nil; a nil
// *Publisher is a valid no-op publisher.
func NewPublisher(client *redis.Client, log infralogger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{
		client: client,
		stream: StreamName,
		log:    log,
	}
}

// Publish sends event to the stream, filling EventID and Timestamp when unset.
func (p *Publisher) Publish(ctx context.Context, event ExampleEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event": string(payload),
		},
	})
	if publishErr := result.Err(); publishErr != nil {
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	p.log.Debug("Published example event",
		infralogger.String("event_type", string(event.EventType)),
		infralogger.Int64("example_id", event.ExampleID),
		infralogger.String("stream_id", result.Val()),
	)

	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
