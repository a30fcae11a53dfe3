package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned by a broker after Close.
var ErrClosed = errors.New("broker closed")

// Broker fans out opaque payloads by topic.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}

// Subscription delivers payloads for one topic until closed. C is closed after Close.
type Subscription interface {
	C() <-chan []byte
	Close()
}

const subscriberBuffer = 16

// SessionTopic is the topic name carrying one session's events.
func SessionTopic(sessionID string) string {
	return "cheese:session:" + sessionID
}
