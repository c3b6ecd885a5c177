/**
 * Queue Consumer for the bill extraction worker
 *
 * Consumes extraction jobs from a Redis-backed queue and runs the bill
 * pipeline. Uses Asynq for queue management.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/docuflow/billextract-worker/internal/errors"
	"github.com/docuflow/billextract-worker/internal/logging"
	"github.com/docuflow/billextract-worker/internal/processor"
)

// TaskTypeExtractBill is the asynq task type this worker handles
const TaskTypeExtractBill = "extract-bill"

// JobPayload represents the structure of job data from the API
type JobPayload struct {
	JobID    string                 `json:"jobId"`
	UserID   string                 `json:"userId"`
	Document string                 `json:"document"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Consumer handles job consumption from the Redis queue
type Consumer struct {
	client    *asynq.Client
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor processor.BillProcessorInterface
	events    *EventPublisher
	logger    *logging.Logger
	config    *ConsumerConfig
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	RedisURL          string
	QueueName         string
	Concurrency       int
	Processor         processor.BillProcessorInterface
	Events            *EventPublisher // nil disables event publishing
	ProcessingTimeout int64           // milliseconds, default 300000 (5 minutes)
}

// NewConsumer creates a new queue consumer
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}
	if cfg.QueueName == "" {
		return nil, fmt.Errorf("QueueName is required")
	}
	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := asynq.NewClient(redisOpt)
	logger := logging.NewLogger("queue")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.QueueName: 10, // Priority 10 for main queue
				"default":     1,  // Priority 1 for fallback
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				// Exponential backoff: 5s, 10s, 20s, capped at 60s
				delay := time.Duration(5*(1<<uint(n))) * time.Second
				if delay > 60*time.Second {
					delay = 60 * time.Second
				}
				return delay
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task processing error",
					"type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	consumer := &Consumer{
		client:    client,
		server:    server,
		mux:       mux,
		processor: cfg.Processor,
		events:    cfg.Events,
		logger:    logger,
		config:    cfg,
	}

	mux.HandleFunc(TaskTypeExtractBill, consumer.handleExtractBill)

	return consumer, nil
}

// Start starts the queue consumer
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting queue consumer",
		"concurrency", c.config.Concurrency, "queue", c.config.QueueName)

	go func() {
		if err := c.server.Run(c.mux); err != nil {
			c.logger.Error("Queue consumer error", "error", err)
		}
	}()

	return nil
}

// Stop stops the queue consumer gracefully
func (c *Consumer) Stop(ctx context.Context) error {
	c.logger.Info("Stopping queue consumer...")

	c.server.Shutdown()

	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}

	c.logger.Info("Queue consumer stopped")
	return nil
}

// handleExtractBill processes one bill extraction job
func (c *Consumer) handleExtractBill(ctx context.Context, task *asynq.Task) error {
	startTime := time.Now()

	var payload JobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	jobLog := c.logger.WithJob(payload.JobID)
	jobLog.Info("Received extraction job", "document", payload.Document, "user", payload.UserID)

	if err := c.processor.UpdateJobStatus(ctx, payload.JobID, "processing", nil); err != nil {
		jobLog.Warn("Failed to update status to processing", "error", err)
	}
	c.publishStarted(ctx, payload.JobID)

	timeout := time.Duration(300000) * time.Millisecond
	if c.config.ProcessingTimeout > 0 {
		timeout = time.Duration(c.config.ProcessingTimeout) * time.Millisecond
	}

	processCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := c.processor.ProcessDocument(processCtx, &processor.ProcessRequest{
		JobID:    payload.JobID,
		UserID:   payload.UserID,
		Document: payload.Document,
		Metadata: payload.Metadata,
	})

	duration := time.Since(startTime)

	if err != nil {
		if processCtx.Err() == context.DeadlineExceeded {
			jobLog.Error("Processing timed out", "duration", duration, "timeout", timeout)

			timeoutErr := errors.NewProcessingTimeoutError(payload.JobID, timeout, err)
			errorMap := timeoutErr.ToMap()

			if updateErr := c.processor.UpdateJobStatus(ctx, payload.JobID, "failed", errorMap); updateErr != nil {
				jobLog.Warn("Failed to update status to failed", "error", updateErr)
			}
			c.publishFailed(ctx, payload.JobID, timeoutErr)

			return fmt.Errorf("processing timeout: %w", timeoutErr)
		}

		jobLog.Error("Processing failed", "duration", duration, "error", err)

		if updateErr := c.processor.UpdateJobStatus(ctx, payload.JobID, "failed", map[string]interface{}{
			"error":            err.Error(),
			"processingTimeMs": duration.Milliseconds(),
		}); updateErr != nil {
			jobLog.Warn("Failed to update status to failed", "error", updateErr)
		}
		c.publishFailed(ctx, payload.JobID, err)

		return fmt.Errorf("bill extraction failed: %w", err)
	}

	jobLog.Info("Extraction completed",
		"duration", duration, "pages", result.PagesProcessed,
		"items", result.Extraction.TotalItemCount,
		"sum", result.Extraction.Totals.SumExtracted)

	if err := c.processor.UpdateJobStatus(ctx, payload.JobID, "completed", map[string]interface{}{
		"itemCount":        result.Extraction.TotalItemCount,
		"sumExtracted":     result.Extraction.Totals.SumExtracted,
		"pagesProcessed":   result.PagesProcessed,
		"processingTimeMs": duration.Milliseconds(),
	}); err != nil {
		jobLog.Warn("Failed to update status to completed", "error", err)
	}
	c.publishCompleted(ctx, payload.JobID, result)

	return nil
}

func (c *Consumer) publishStarted(ctx context.Context, jobID string) {
	if c.events == nil {
		return
	}
	if err := c.events.JobStarted(ctx, jobID); err != nil {
		c.logger.WithJob(jobID).Warn("Failed to publish started event", "error", err)
	}
}

func (c *Consumer) publishCompleted(ctx context.Context, jobID string, result *processor.ProcessResult) {
	if c.events == nil {
		return
	}
	if err := c.events.JobCompleted(ctx, jobID, result); err != nil {
		c.logger.WithJob(jobID).Warn("Failed to publish completed event", "error", err)
	}
}

func (c *Consumer) publishFailed(ctx context.Context, jobID string, cause error) {
	if c.events == nil {
		return
	}
	if err := c.events.JobFailed(ctx, jobID, cause); err != nil {
		c.logger.WithJob(jobID).Warn("Failed to publish failed event", "error", err)
	}
}

// GetStatistics returns consumer statistics
func (c *Consumer) GetStatistics() map[string]interface{} {
	return map[string]interface{}{
		"concurrency": c.config.Concurrency,
		"queue":       c.config.QueueName,
		"redisURL":    c.config.RedisURL,
	}
}
