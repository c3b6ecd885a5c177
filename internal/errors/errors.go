package errors

import (
	"fmt"
	"time"
)

/**
 * Custom error types for the bill extraction worker
 *
 * Design Pattern: Factory Pattern for error creation
 * SOLID Principle: Single Responsibility (each error type has one purpose)
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Input errors
	ErrorInputResolutionFailed ErrorCode = "INPUT_RESOLUTION_FAILED"

	// Processing errors
	ErrorRasterizeFailed   ErrorCode = "RASTERIZE_FAILED"
	ErrorRecognitionFailed ErrorCode = "RECOGNITION_FAILED"
	ErrorProcessingTimeout ErrorCode = "PROCESSING_TIMEOUT"

	// Storage errors
	ErrorStorageFailed ErrorCode = "STORAGE_FAILED"
)

// ExtractionError represents a structured extraction error
type ExtractionError struct {
	Code      ErrorCode
	Message   string
	JobID     string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewInputResolutionError(document string, cause error) *ExtractionError {
	return &ExtractionError{
		Code:      ErrorInputResolutionFailed,
		Message:   fmt.Sprintf("Failed to resolve input document: %s", document),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"document": document,
		},
		Cause: cause,
	}
}

func NewRasterizeError(jobID string, cause error) *ExtractionError {
	return &ExtractionError{
		Code:      ErrorRasterizeFailed,
		Message:   "Failed to rasterize document pages",
		JobID:     jobID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewRecognitionFailedError(jobID string, page int, cause error) *ExtractionError {
	return &ExtractionError{
		Code:      ErrorRecognitionFailed,
		Message:   fmt.Sprintf("Text recognition failed on page %d", page),
		JobID:     jobID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"page": page,
		},
		Cause: cause,
	}
}

func NewProcessingTimeoutError(jobID string, duration time.Duration, cause error) *ExtractionError {
	return &ExtractionError{
		Code:      ErrorProcessingTimeout,
		Message:   fmt.Sprintf("Processing timed out after %v", duration),
		JobID:     jobID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"timeout_duration": duration.String(),
		},
		Cause: cause,
	}
}

func NewStorageFailedError(jobID string, cause error) *ExtractionError {
	return &ExtractionError{
		Code:      ErrorStorageFailed,
		Message:   "Failed to store extraction results",
		JobID:     jobID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// ToMap converts error to map for database storage
func (e *ExtractionError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
