package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels the API publishes on and the worker consumes.
const (
	ChannelOverrideDecided = "override.decided"
	ChannelChatMessage     = "chat.message"
)

// Envelope is the wire shape of a broker message.
type Envelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}
