// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
)

// SubscriberBuffer is the per-subscriber channel capacity.
const SubscriberBuffer = 16

const dropLogEvery = 100

var dropCount atomic.Uint64

// MemoryBus is the in-memory Bus. A subscriber whose buffer is full misses
// the event; the drop is counted and logged every dropLogEvery drops.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]chan Event)}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, ev Event) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}

	// Sends happen under the read lock so Close cannot close a channel
	// mid-send; they never block.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
			metrics.IncBusDrop(topic)
			if count := dropCount.Add(1); count%dropLogEvery == 1 {
				log.L().Warn().
					Str(log.FieldEvent, "bus.dropped").
					Str("topic", topic).
					Uint64("dropped", count).
					Msg("subscriber buffer full, notification dropped")
			}
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (Subscriber, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("subscribe topic %q: %w", topic, err)
	}
	ch := make(chan Event, SubscriberBuffer)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	metrics.BusSubscribers.Inc()

	return &memSub{b: b, topic: topic, ch: ch}, nil
}

// Subscribers returns the number of live subscribers on topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan Event
	once  sync.Once
}

func (s *memSub) C() <-chan Event {
	return s.ch
}

func (s *memSub) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()

		lst := s.b.subs[s.topic]
		out := lst[:0]
		for _, c := range lst {
			if c != s.ch {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			delete(s.b.subs, s.topic)
		} else {
			s.b.subs[s.topic] = out
		}
		close(s.ch)
		metrics.BusSubscribers.Dec()
	})
	return nil
}

var _ Bus = (*MemoryBus)(nil)
