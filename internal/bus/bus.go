// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bus fans change notifications out to live subscribers.
package bus

import "context"

// TopicSessions carries one Event per saved session record.
const TopicSessions = "sessions"

// Event announces that the record at DateKey changed.
type Event struct {
	DateKey string
}

// Bus is a lossy in-process pub/sub. Publish never blocks; subscribers only
// see events published while they are subscribed.
type Bus interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}

// Subscriber receives events until Close. C is closed by Close.
type Subscriber interface {
	C() <-chan Event
	Close() error
}
