package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// MemoryPublisher is an in-process broker for local runs and tests. With
// persistent set, messages published before a subscriber arrives are
// replayed to it.
type MemoryPublisher struct {
	pubSub *gochannel.GoChannel
}

func NewMemoryPublisher(logger *slog.Logger, persistent bool) *MemoryPublisher {
	return &MemoryPublisher{pubSub: gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64, Persistent: persistent},
		watermill.NewSlogLogger(logger),
	)}
}

func (p *MemoryPublisher) Publish(ctx context.Context, topic, key, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(HeaderKey, key)
	msg.Metadata.Set(HeaderEventType, eventType)
	msg.Metadata.Set(HeaderContentType, "application/json")
	msg.SetContext(ctx)

	return p.pubSub.Publish(topic, msg)
}

func (p *MemoryPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubSub.Subscribe(ctx, topic)
}

func (p *MemoryPublisher) Close() error {
	return p.pubSub.Close()
}
