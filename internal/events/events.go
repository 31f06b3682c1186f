// Package events provides the event bus that state containers publish to.
// Any frontend (CLI renderer, interactive browser) can subscribe and react
// to state changes without the state layer knowing about it.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType identifies the kind of an event.
type EventType string

const (
	// defaultBuffer is the per-subscriber channel buffer when none is given.
	defaultBuffer = 64
	maxBuffer     = 1024
)

// Event is the base interface for all published events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides the common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// EventBus manages subscriptions and publishing.
type EventBus struct {
	subscribers map[EventType][]chan Event
	all         []chan Event
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
}

// NewEventBus creates a bus whose subscriber channels hold bufferSize events.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	if bufferSize > maxBuffer {
		bufferSize = maxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to every event type.
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all matching subscribers. Publishing never
// blocks; events to full channels are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// DroppedEventCount returns how many events were dropped on full buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.dropped.Load()
}
