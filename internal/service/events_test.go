package service

import (
	"testing"
)

func TestEventBus(t *testing.T) {
	t.Run("subscribers receive published events", func(t *testing.T) {
		bus := NewEventBus()
		sub := bus.Subscribe()
		defer bus.Unsubscribe(sub)

		bus.Publish(Event{Type: EventScanStarted})

		select {
		case ev := <-sub.C:
			if ev.Type != EventScanStarted {
				t.Errorf("unexpected event: %s", ev.Type)
			}
		default:
			t.Fatal("expected buffered event")
		}
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		bus := NewEventBus()
		sub := bus.Subscribe()
		bus.Unsubscribe(sub)

		if _, ok := <-sub.C; ok {
			t.Error("expected closed channel")
		}
		if bus.SubscriberCount() != 0 {
			t.Errorf("expected no subscribers, got %d", bus.SubscriberCount())
		}

		// double unsubscribe must not panic
		bus.Unsubscribe(sub)
	})

	t.Run("late subscriber misses earlier events", func(t *testing.T) {
		bus := NewEventBus()
		bus.Publish(Event{Type: EventScanStarted})

		sub := bus.Subscribe()
		defer bus.Unsubscribe(sub)

		select {
		case ev := <-sub.C:
			t.Errorf("expected no replay, got %s", ev.Type)
		default:
		}
	})

	t.Run("slow subscriber does not block publish", func(t *testing.T) {
		bus := NewEventBus()
		sub := bus.Subscribe()
		defer bus.Unsubscribe(sub)

		// overflow the buffer; publish must never block
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Type: EventScanCompleted})
		}
	})

	t.Run("events arrive in publish order", func(t *testing.T) {
		bus := NewEventBus()
		sub := bus.Subscribe()
		defer bus.Unsubscribe(sub)

		bus.Publish(Event{Type: EventScanStarted})
		bus.Publish(Event{Type: EventScanCompleted})

		first := <-sub.C
		second := <-sub.C
		if first.Type != EventScanStarted || second.Type != EventScanCompleted {
			t.Errorf("unexpected order: %s then %s", first.Type, second.Type)
		}
	})
}
