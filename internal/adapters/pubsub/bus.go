// Package pubsub carries change notifications from the contest stores
// to every observer. A notification is a signal, not a payload:
// subscribers re-read the mutated collection, so missed or reordered
// deliveries can never make a client diverge.
package pubsub

import (
	"context"
	"sync"
	"time"

	"github.com/austinw/envelope/pkg/metrics"
)

// Topic names one mutable collection.
type Topic string

// One logical channel per mutable collection.
const (
	TopicPicks    Topic = "picks"
	TopicOdds     Topic = "odds"
	TopicSettings Topic = "settings"
)

// Topics lists every collection topic.
func Topics() []Topic { return []Topic{TopicPicks, TopicOdds, TopicSettings} }

// Change is the signal delivered to subscribers.
type Change struct {
	Topic Topic
	At    time.Time
}

// Bus fans change signals out to subscribers.
type Bus interface {
	// Publish signals that the collection behind topic mutated.
	// It never blocks on slow subscribers.
	Publish(ctx context.Context, topic Topic)

	// Subscribe registers for signals on the given topics (all topics
	// when none are named). The returned cancel func stops future
	// deliveries; there is no final-state delivery on unsubscribe.
	Subscribe(ctx context.Context, topics ...Topic) (<-chan Change, func())
}

// subscriber holds per-observer delivery state. pending keeps at most
// one queued signal per topic, which bounds notify regardless of how
// fast mutations arrive.
type subscriber struct {
	topics  map[Topic]struct{}
	mu      sync.Mutex
	pending map[Topic]bool
	notify  chan Change
	done    chan struct{}
}

// InMemoryBus implements Bus with per-subscriber coalescing channels.
type InMemoryBus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{subs: make(map[*subscriber]struct{})}
}

// Publish signals topic to every matching subscriber. A subscriber that
// already has an undelivered signal for this topic is skipped: it will
// re-read the collection anyway when it drains the queued one.
func (b *InMemoryBus) Publish(ctx context.Context, topic Topic) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	now := time.Now()
	for s := range b.subs {
		if _, ok := s.topics[topic]; !ok {
			continue
		}
		s.mu.Lock()
		if s.pending[topic] {
			s.mu.Unlock()
			metrics.RecordNotificationCoalesced(string(topic))
			continue
		}
		s.pending[topic] = true
		s.mu.Unlock()

		select {
		case s.notify <- Change{Topic: topic, At: now}:
			metrics.RecordNotificationDelivered(string(topic))
		default:
			// Cannot happen while pending bounds notify, but never block a publisher.
			s.mu.Lock()
			s.pending[topic] = false
			s.mu.Unlock()
		}
	}
}

// Subscribe registers a new observer and starts its forwarding loop.
func (b *InMemoryBus) Subscribe(ctx context.Context, topics ...Topic) (<-chan Change, func()) {
	if len(topics) == 0 {
		topics = Topics()
	}

	s := &subscriber{
		topics:  make(map[Topic]struct{}, len(topics)),
		pending: make(map[Topic]bool, len(topics)),
		notify:  make(chan Change, len(topics)),
		done:    make(chan struct{}),
	}
	for _, t := range topics {
		s.topics[t] = struct{}{}
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	metrics.UpdateSubscriberCount(count)

	out := make(chan Change)
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(s.done)
			b.mu.Lock()
			delete(b.subs, s)
			count := len(b.subs)
			b.mu.Unlock()
			metrics.UpdateSubscriberCount(count)
		})
	}

	go func() {
		defer close(out)
		for {
			select {
			case c := <-s.notify:
				s.mu.Lock()
				s.pending[c.Topic] = false
				s.mu.Unlock()
				select {
				case out <- c:
				case <-s.done:
					return
				case <-ctx.Done():
					cancel()
					return
				}
			case <-s.done:
				return
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()

	return out, cancel
}

// Close drops all subscribers. Pending signals are discarded.
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for s := range b.subs {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
		delete(b.subs, s)
	}
	metrics.UpdateSubscriberCount(0)
	return nil
}
