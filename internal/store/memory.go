package store

import (
	"slices"
	"sync"
)

const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// Updates are sent to subscribers without blocking; if a subscriber's
// buffer is full the update is dropped for that subscriber.
type MemoryStore struct {
	mu      sync.RWMutex
	current Status
	set     bool

	subMu       sync.RWMutex
	subscribers map[chan Status]struct{}
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan Status]struct{}),
	}
}

// Update replaces the current status and notifies all subscribers.
func (m *MemoryStore) Update(status Status) {
	status = clone(status)

	m.mu.Lock()
	m.current = status
	m.set = true
	m.mu.Unlock()

	m.notifySubscribers(status)
}

// Get returns a copy of the current status.
func (m *MemoryStore) Get() (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.set {
		return Status{}, false
	}
	return clone(m.current), true
}

// Subscribe creates a new subscription.
//
// Caller must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan Status {
	ch := make(chan Status, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Status) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(status Status) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- clone(status):
		default:
			// slow subscriber, drop
		}
	}
}

// clone copies the mutable parts of a status.
func clone(s Status) Status {
	if s.Players != nil {
		p := *s.Players
		s.Players = &p
	}
	s.PlayerNames = slices.Clone(s.PlayerNames)
	return s
}
