package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures: timeouts, refused connections, non-2xx replies
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents a host that is currently blocked after a rate-limit reply
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeExtraction represents a detail page without a usable price
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeOutput represents report sink errors
	ErrorTypeOutput ErrorType = "output"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeTotalFailure represents a run that stopped before producing a table
	ErrorTypeTotalFailure ErrorType = "total_failure"
)

// CrawlerError represents a crawler-specific error
type CrawlerError struct {
	Type    ErrorType
	Stage   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *CrawlerError) IsRetryable() bool {
	return e.Type == ErrorTypeNetwork
}

// IsRetryable reports whether err (or anything it wraps) is a retryable CrawlerError.
// Errors that are not CrawlerErrors are treated as transport failures.
func IsRetryable(err error) bool {
	var ce *CrawlerError
	if errors.As(err, &ce) {
		return ce.IsRetryable()
	}
	return err != nil
}

// IsType reports whether err wraps a CrawlerError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ce *CrawlerError
	return errors.As(err, &ce) && ce.Type == errType
}

// New creates a new CrawlerError
func New(errType ErrorType, stage, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeNetwork, stage, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeParsing, stage, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(stage string, duration time.Duration) *CrawlerError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, stage, message, nil)
}

// NewExtraction creates a new extraction error
func NewExtraction(stage, message string) *CrawlerError {
	return New(ErrorTypeExtraction, stage, message, nil)
}

// NewCache creates a new cache error
func NewCache(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeCache, stage, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(stage, message string, err error) *CrawlerError {
	return New(ErrorTypePublisher, stage, message, err)
}

// NewOutput creates a new report sink error
func NewOutput(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeOutput, stage, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// NewTotalFailure creates an error for a run that stopped at the given stage
func NewTotalFailure(stage, message string, err error) *CrawlerError {
	return New(ErrorTypeTotalFailure, stage, message, err)
}
