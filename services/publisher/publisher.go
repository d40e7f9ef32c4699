package publisher

import "context"

// Publisher delivers finished report rows to downstream consumers
type Publisher interface {
	// Publish appends a message under key to one of the configured streams
	Publish(ctx context.Context, key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
