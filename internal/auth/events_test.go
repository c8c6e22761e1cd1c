// Copyright (c) 2026 Postify. All rights reserved.

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postify/identity/internal/auth"
)

/*
TestBroadcaster_DeliveryOrder ensures subscribers receive events in
subscription order, synchronously.
*/
func TestBroadcaster_DeliveryOrder(t *testing.T) {
	broadcaster := auth.NewBroadcaster()

	var order []string
	broadcaster.Subscribe(func(auth.Event, *auth.Session) { order = append(order, "first") })
	broadcaster.Subscribe(func(auth.Event, *auth.Session) { order = append(order, "second") })
	broadcaster.Subscribe(func(auth.Event, *auth.Session) { order = append(order, "third") })

	broadcaster.Publish(auth.EventSignedOut, nil)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

/*
TestBroadcaster_Unsubscribe ensures removed subscribers stop receiving and
that double-unsubscribe is harmless.
*/
func TestBroadcaster_Unsubscribe(t *testing.T) {
	broadcaster := auth.NewBroadcaster()

	var kept, removed int
	broadcaster.Subscribe(func(auth.Event, *auth.Session) { kept++ })
	unsubscribe := broadcaster.Subscribe(func(auth.Event, *auth.Session) { removed++ })

	broadcaster.Publish(auth.EventSignedIn, &auth.Session{})
	unsubscribe()
	unsubscribe()
	broadcaster.Publish(auth.EventSignedIn, &auth.Session{})

	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, broadcaster.Len())
}

/*
TestBroadcaster_SubscribeDuringDelivery ensures a callback may register new
subscribers without deadlocking; the new subscriber joins from the next
publish.
*/
func TestBroadcaster_SubscribeDuringDelivery(t *testing.T) {
	broadcaster := auth.NewBroadcaster()

	var lateDeliveries int
	broadcaster.Subscribe(func(auth.Event, *auth.Session) {
		if broadcaster.Len() == 1 {
			broadcaster.Subscribe(func(auth.Event, *auth.Session) { lateDeliveries++ })
		}
	})

	broadcaster.Publish(auth.EventSignedIn, nil)
	assert.Zero(t, lateDeliveries)

	broadcaster.Publish(auth.EventSignedIn, nil)
	assert.Equal(t, 1, lateDeliveries)
}
