package db

import (
	"context"
	"time"
)

// Store is the pub/sub facade used by the summary sink.
type Store interface {
	Pinger
	Publisher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Publisher sends a message on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
