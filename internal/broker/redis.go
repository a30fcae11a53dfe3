package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker publishes through Redis pub/sub so several processes can watch one session.
type RedisBroker struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisBroker(rdb *redis.Client, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{rdb: rdb, logger: logger}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}
	sub := &redisSub{ps: ps, ch: make(chan []byte, subscriberBuffer)}
	go sub.pump(b.logger.With(zap.String("topic", topic)))
	return sub, nil
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}

type redisSub struct {
	ps   *redis.PubSub
	ch   chan []byte
	once sync.Once
}

func (s *redisSub) pump(logger *zap.Logger) {
	defer close(s.ch)
	for msg := range s.ps.Channel() {
		select {
		case s.ch <- []byte(msg.Payload):
		default:
			logger.Debug("broker_message_dropped")
		}
	}
}

func (s *redisSub) C() <-chan []byte { return s.ch }

func (s *redisSub) Close() {
	s.once.Do(func() { _ = s.ps.Close() })
}
