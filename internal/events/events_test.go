package events

import (
	"testing"
	"time"
)

const testEvent EventType = "test_event"

func newTestEvent() BaseEvent {
	return BaseEvent{EventType: testEvent, Time: time.Now()}
}

func TestSubscribeReceivesPublishedEvent(t *testing.T) {
	bus := NewEventBus(4)
	defer bus.Close()

	ch := bus.Subscribe(testEvent)
	bus.Publish(newTestEvent())

	select {
	case ev := <-ch:
		if ev.Type() != testEvent {
			t.Errorf("received type %q, want %q", ev.Type(), testEvent)
		}
	default:
		t.Fatal("subscriber did not receive the published event")
	}
}

func TestSubscribeAllReceivesEveryType(t *testing.T) {
	bus := NewEventBus(4)
	defer bus.Close()

	ch := bus.SubscribeAll()
	bus.Publish(BaseEvent{EventType: "a", Time: time.Now()})
	bus.Publish(BaseEvent{EventType: "b", Time: time.Now()})

	if got := len(ch); got != 2 {
		t.Errorf("all-subscriber buffered %d events, want 2", got)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	bus.Subscribe(testEvent)
	bus.Publish(newTestEvent())
	bus.Publish(newTestEvent()) // buffer full: dropped, never blocks

	if bus.DroppedEventCount() != 1 {
		t.Errorf("dropped count = %d, want 1", bus.DroppedEventCount())
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewEventBus(1)
	ch := bus.Subscribe(testEvent)
	bus.Close()

	bus.Publish(newTestEvent()) // must not panic on closed channels

	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed")
	}
}
