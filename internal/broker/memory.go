package broker

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process pub/sub keyed by topic. Slow subscribers miss messages
// instead of blocking publishers.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*memorySub]struct{})}
}

type memorySub struct {
	b     *MemoryBroker
	topic string
	ch    chan []byte
	once  sync.Once
}

func (s *memorySub) C() <-chan []byte { return s.ch }

func (s *memorySub) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		if set, ok := s.b.subs[s.topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.b.subs, s.topic)
			}
		}
		close(s.ch)
		s.b.mu.Unlock()
	})
}

func (b *MemoryBroker) Subscribe(_ context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	sub := &memorySub{b: b, topic: topic, ch: make(chan []byte, subscriberBuffer)}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySub]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- payload:
		default:
			// Drop if subscriber is slow.
		}
	}
	return nil
}

// Subscribers reports how many subscriptions are open on topic.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close ends every open subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, set := range b.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(b.subs, topic)
	}
	return nil
}
