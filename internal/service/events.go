package service

import (
	"sync"
	"time"
)

// EventType defines the type of scan lifecycle event
type EventType string

const (
	EventScanStarted   EventType = "scan_started"
	EventScanCompleted EventType = "scan_completed"
	EventScanFailed    EventType = "scan_failed"
)

// Event represents a scan lifecycle event delivered to subscribers
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// ScanStartedPayload accompanies EventScanStarted
type ScanStartedPayload struct {
	Status string `json:"status"`
}

// ScanCompletedPayload accompanies EventScanCompleted. It carries the
// summary rather than the full snapshot to keep event frames small.
type ScanCompletedPayload struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalClients    int       `json:"total_clients"`
	TotalContainers int       `json:"total_containers"`
	CanRefresh      bool      `json:"can_refresh"`
}

// ScanFailedPayload accompanies EventScanFailed
type ScanFailedPayload struct {
	Error string `json:"error"`
}

// Subscription is a handle to an event stream. Events arrive on C until
// Unsubscribe closes it.
type Subscription struct {
	C chan Event
}

// EventBus fans scan events out to subscribers. Delivery is best-effort:
// a subscriber that is not connected at publish time misses the event, and
// a slow subscriber's events are dropped rather than blocking the scan.
type EventBus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber and returns its handle
func (b *EventBus) Subscribe() *Subscription {
	sub := &Subscription{C: make(chan Event, 16)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel
func (b *EventBus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.C)
	}
	b.mu.Unlock()
}

// Publish sends an event to all current subscribers
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		select {
		case sub.C <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *EventBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
