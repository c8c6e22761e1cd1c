// Copyright (c) 2026 Postify. All rights reserved.

package auth

import "sync"

// # Auth State Events

// Event identifies an authentication state transition.
type Event string

const (
	// EventSignedIn fires after a successful credential or OAuth login.
	// Registration does NOT fire it; a fresh account is created signed out.
	EventSignedIn Event = "SIGNED_IN"

	// EventSignedOut fires after logout, including logout with no active session.
	EventSignedOut Event = "SIGNED_OUT"
)

// Callback receives auth state transitions. The session is nil for
// [EventSignedOut].
type Callback func(event Event, session *Session)

// Broadcaster fans auth state transitions out to subscribers.
//
// It is an explicit dependency of the [Service] — constructed once in main and
// injected — not package-level state, so two services never cross-talk.
//
// # Delivery
//
// Callbacks run synchronously on the goroutine that triggered the transition,
// in subscription order. Subscribers must not block.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int]Callback
	nextID      int
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[int]Callback)}
}

// Subscribe registers a callback and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (broadcaster *Broadcaster) Subscribe(callback Callback) (unsubscribe func()) {
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()

	id := broadcaster.nextID
	broadcaster.nextID++
	broadcaster.subscribers[id] = callback

	return func() {
		broadcaster.mu.Lock()
		defer broadcaster.mu.Unlock()
		delete(broadcaster.subscribers, id)
	}
}

// Publish delivers the event to every current subscriber in subscription order.
func (broadcaster *Broadcaster) Publish(event Event, session *Session) {
	broadcaster.mu.Lock()
	ids := make([]int, 0, len(broadcaster.subscribers))
	for id := range broadcaster.subscribers {
		ids = append(ids, id)
	}
	// Map iteration order is random; restore subscription order.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	callbacks := make([]Callback, 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, broadcaster.subscribers[id])
	}
	broadcaster.mu.Unlock()

	// Deliver outside the lock so a callback may subscribe or unsubscribe.
	for _, callback := range callbacks {
		callback(event, session)
	}
}

// Len reports the current number of subscribers.
func (broadcaster *Broadcaster) Len() int {
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	return len(broadcaster.subscribers)
}
