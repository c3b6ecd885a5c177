/**
 * PostgreSQL Store for the bill extraction worker
 *
 * Handles job status persistence and extraction result storage.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore handles database operations
type PostgresStore struct {
	db *sql.DB
}

// JobUpdate represents a job status update
type JobUpdate struct {
	JobID            string
	Status           string
	ProcessingTimeMs int64
	ErrorCode        string
	ErrorMessage     string
	Metadata         map[string]interface{}
}

// ExtractionRecord is a stored extraction result
type ExtractionRecord struct {
	ID           string
	JobID        string
	ItemCount    int
	SumExtracted float64
	Result       interface{}
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// UpdateJobStatus updates job status in the database. Uses UPSERT so the
// worker can create the job record when the API has not created it yet.
func (p *PostgresStore) UpdateJobStatus(ctx context.Context, update *JobUpdate) error {
	if update.JobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if update.Status == "" {
		return fmt.Errorf("status is required")
	}

	metadataJSON, err := json.Marshal(update.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO billextract.extraction_jobs (
			id, status, processing_time_ms,
			error_code, error_message, metadata,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2, NULLIF($3, 0),
			NULLIF($4, ''), NULLIF($5, ''),
			COALESCE($6::jsonb, '{}'::jsonb),
			NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			processing_time_ms = COALESCE(EXCLUDED.processing_time_ms, billextract.extraction_jobs.processing_time_ms),
			error_code = NULLIF(EXCLUDED.error_code, ''),
			error_message = NULLIF(EXCLUDED.error_message, ''),
			metadata = COALESCE(EXCLUDED.metadata, billextract.extraction_jobs.metadata),
			updated_at = NOW()
		RETURNING id
	`

	var returnedID string
	err = p.db.QueryRowContext(
		ctx,
		query,
		update.JobID,
		update.Status,
		update.ProcessingTimeMs,
		update.ErrorCode,
		update.ErrorMessage,
		metadataJSON,
	).Scan(&returnedID)

	if err == sql.ErrNoRows {
		return fmt.Errorf("job not found: %s", update.JobID)
	}
	if err != nil {
		return fmt.Errorf("failed to update job status (job=%s, status=%s): %w",
			update.JobID, update.Status, err)
	}
	return nil
}

// SaveExtraction stores an extraction result and returns its ID. The full
// result document is stored as JSONB next to the headline numbers used for
// listing and reconciliation queries.
func (p *PostgresStore) SaveExtraction(ctx context.Context, record *ExtractionRecord) (string, error) {
	if record.JobID == "" {
		return "", fmt.Errorf("job ID is required")
	}

	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal extraction result: %w", err)
	}

	query := `
		INSERT INTO billextract.extractions (
			id, job_id, item_count, sum_extracted, result, created_at
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5::jsonb, NOW())
		RETURNING id
	`

	id := uuid.New().String()
	var returnedID string
	err = p.db.QueryRowContext(
		ctx,
		query,
		id,
		record.JobID,
		record.ItemCount,
		record.SumExtracted,
		resultJSON,
	).Scan(&returnedID)

	if err != nil {
		return "", fmt.Errorf("failed to store extraction: %w", err)
	}
	return returnedID, nil
}

// GetExtraction retrieves an extraction result by ID
func (p *PostgresStore) GetExtraction(ctx context.Context, id string) (*ExtractionRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("extraction ID is required")
	}

	query := `
		SELECT id, job_id, item_count, sum_extracted, result
		FROM billextract.extractions
		WHERE id = $1::uuid
	`

	var record ExtractionRecord
	var resultJSON []byte

	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.JobID,
		&record.ItemCount,
		&record.SumExtracted,
		&resultJSON,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("extraction not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extraction result: %w", err)
		}
	}
	return &record, nil
}

// Ping checks database connectivity
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *PostgresStore) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// GetStats returns connection pool statistics
func (p *PostgresStore) GetStats() sql.DBStats {
	return p.db.Stats()
}
