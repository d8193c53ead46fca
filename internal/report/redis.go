package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// Publisher sends a message on a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Redis publishes each summary as JSON on a channel. Nothing is stored.
type Redis struct {
	pub     Publisher
	channel string
}

// NewRedis creates a pub/sub reporter.
func NewRedis(pub Publisher, channel string) *Redis {
	return &Redis{pub: pub, channel: channel}
}

// Report implements Reporter.
func (r *Redis) Report(ctx context.Context, s domain.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := r.pub.Publish(ctx, r.channel, data); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}
