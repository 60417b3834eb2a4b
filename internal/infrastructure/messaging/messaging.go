package messaging

import "context"

const (
	HeaderEventType   = "event_type"
	HeaderContentType = "content_type"
	HeaderKey         = "key"
)

// Publisher appends events to a topic. Delivery is at-least-once; callers
// get no acknowledgment beyond the returned error.
type Publisher interface {
	Publish(ctx context.Context, topic, key, eventType string, event any) error
	Close() error
}
