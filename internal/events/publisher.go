package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

const EventTypeRunCompleted = "CATALOG_RUN_COMPLETED"

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// Publisher announces completed runs on a Redis stream so downstream
// consumers (pricing, alerting) can react without polling the CSV outputs.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: slog.Default().With("component", "events"),
	}
}

// PublishRunCompleted appends a run-completed event to the stream. The full
// summary rides in the data field as JSON.
func (p *Publisher) PublishRunCompleted(ctx context.Context, run *models.RunSummary) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":      EventTypeRunCompleted,
			"run_id":    run.ID,
			"timestamp": run.CompletedAt.Format(time.RFC3339),
			"data":      string(payload),
		},
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	p.logger.Info("run event published", "run_id", run.ID, "stream", p.stream)
	return nil
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
