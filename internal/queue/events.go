/**
 * Job Event Publisher
 *
 * Mirrors job lifecycle state into Redis for the API and dashboards:
 * tracking sets per status, result/error hashes, and a pub/sub channel for
 * live updates.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docuflow/billextract-worker/internal/processor"
)

// EventPublisher publishes job lifecycle events to Redis
type EventPublisher struct {
	client    *redis.Client
	queueName string
}

// NewEventPublisher creates an event publisher and verifies connectivity
func NewEventPublisher(redisURL, queueName string) (*EventPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &EventPublisher{client: client, queueName: queueName}, nil
}

// JobStarted marks a job as processing
func (e *EventPublisher) JobStarted(ctx context.Context, jobID string) error {
	if err := e.client.SAdd(ctx, e.key("processing"), jobID).Err(); err != nil {
		return err
	}
	return e.publishEvent(ctx, jobID, "processing", nil)
}

// JobCompleted records the extraction summary and marks the job completed
func (e *EventPublisher) JobCompleted(ctx context.Context, jobID string, result *processor.ProcessResult) error {
	summary := map[string]interface{}{
		"itemCount":        result.Extraction.TotalItemCount,
		"sumExtracted":     result.Extraction.Totals.SumExtracted,
		"pagesProcessed":   result.PagesProcessed,
		"processingTimeMs": result.ProcessingTimeMs,
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal result summary: %w", err)
	}

	pipe := e.client.Pipeline()
	pipe.SRem(ctx, e.key("processing"), jobID)
	pipe.SAdd(ctx, e.key("completed"), jobID)
	pipe.HSet(ctx, e.key("results"), jobID, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return e.publishEvent(ctx, jobID, "completed", summary)
}

// JobFailed records the failure and marks the job failed
func (e *EventPublisher) JobFailed(ctx context.Context, jobID string, cause error) error {
	pipe := e.client.Pipeline()
	pipe.SRem(ctx, e.key("processing"), jobID)
	pipe.SAdd(ctx, e.key("failed"), jobID)
	pipe.HSet(ctx, e.key("errors"), jobID, cause.Error())
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return e.publishEvent(ctx, jobID, "failed", map[string]interface{}{
		"error": cause.Error(),
	})
}

// Stats returns queue depth and per-status job counts
func (e *EventPublisher) Stats(ctx context.Context) (map[string]int64, error) {
	pipe := e.client.Pipeline()
	pending := pipe.LLen(ctx, e.queueName)
	processing := pipe.SCard(ctx, e.key("processing"))
	completed := pipe.SCard(ctx, e.key("completed"))
	failed := pipe.SCard(ctx, e.key("failed"))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return map[string]int64{
		"pending":    pending.Val(),
		"processing": processing.Val(),
		"completed":  completed.Val(),
		"failed":     failed.Val(),
	}, nil
}

// Close closes the Redis connection
func (e *EventPublisher) Close() error {
	return e.client.Close()
}

func (e *EventPublisher) key(suffix string) string {
	return e.queueName + ":" + suffix
}

func (e *EventPublisher) publishEvent(ctx context.Context, jobID, status string, data map[string]interface{}) error {
	event := map[string]interface{}{
		"jobId":     jobID,
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range data {
		event[k] = v
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return e.client.Publish(ctx, e.key("events"), payload).Err()
}
