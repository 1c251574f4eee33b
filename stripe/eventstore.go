package stripe

import (
	"sync"
	"time"
)

const (
	// DefaultEventTTL is how long a processed event id is remembered, the
	// window in which Stripe retries a delivery.
	DefaultEventTTL = 72 * time.Hour
	pruneInterval   = time.Hour
)

// EventStore remembers the ids of the webhook events already processed, so
// that redeliveries of the same event are acknowledged without running
// their side effects twice. Entries expire after the TTL and the store is
// lost on restart.
type EventStore struct {
	events    map[string]time.Time
	mutex     sync.RWMutex
	ttl       time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewEventStore creates a new in-memory event store. A zero ttl means
// DefaultEventTTL.
func NewEventStore(ttl time.Duration) *EventStore {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &EventStore{
		events:    make(map[string]time.Time),
		ttl:       ttl,
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

// EventExists checks if an event has already been processed and has not
// expired yet.
func (m *EventStore) EventExists(eventID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	processed, exists := m.events[eventID]
	return exists && m.now().Sub(processed) <= m.ttl
}

// MarkProcessed marks an event as processed. Expired events are removed
// from time to time on the way.
func (m *EventStore) MarkProcessed(eventID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	now := m.now()
	m.events[eventID] = now
	if now.Sub(m.lastPrune) < pruneInterval {
		return
	}
	for id, processed := range m.events {
		if now.Sub(processed) > m.ttl {
			delete(m.events, id)
		}
	}
	m.lastPrune = now
}

// Size returns the number of stored events.
func (m *EventStore) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.events)
}
