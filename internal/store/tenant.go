// Package store holds the per-shop in-memory event store and the registry
// that owns one store per shop token.
package store

import (
	"sync"

	"github.com/tillworks/tillcast/internal/domain/reservation"
	"github.com/tillworks/tillcast/internal/domain/sale"
	"github.com/tillworks/tillcast/internal/port/broadcast"
)

// Tenant is the in-memory state of one shop: its accumulated transaction and
// reservation history in insertion order, plus the set of live subscribers.
// All methods are safe for concurrent use; a single RWMutex serializes
// access so readers never observe a partially appended record. Stores of
// different shops never contend with each other.
type Tenant struct {
	mu           sync.RWMutex
	transactions []sale.Transaction
	reservations []reservation.Reservation
	subs         map[broadcast.Subscriber]struct{}
}

func newTenant() *Tenant {
	return &Tenant{subs: make(map[broadcast.Subscriber]struct{})}
}

// AppendTransaction appends a fully constructed transaction and returns it.
// Validation is the ingestion gateway's job; this is pure storage.
func (t *Tenant) AppendTransaction(tx sale.Transaction) sale.Transaction {
	t.mu.Lock()
	t.transactions = append(t.transactions, tx)
	t.mu.Unlock()
	return tx
}

// AppendReservation appends a fully constructed reservation and returns it.
func (t *Tenant) AppendReservation(r reservation.Reservation) reservation.Reservation {
	t.mu.Lock()
	t.reservations = append(t.reservations, r)
	t.mu.Unlock()
	return r
}

// Transactions returns a point-in-time copy of the transaction history.
func (t *Tenant) Transactions() []sale.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]sale.Transaction, len(t.transactions))
	copy(out, t.transactions)
	return out
}

// Reservations returns a point-in-time copy of the reservation history.
func (t *Tenant) Reservations() []reservation.Reservation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]reservation.Reservation, len(t.reservations))
	copy(out, t.reservations)
	return out
}

// AddSubscriber registers a live subscriber.
func (t *Tenant) AddSubscriber(s broadcast.Subscriber) {
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()
}

// RemoveSubscriber removes a subscriber from the set. Removing a subscriber
// that is already absent is a no-op, so disconnect notifications may race
// with broadcast-triggered removal.
func (t *Tenant) RemoveSubscriber(s broadcast.Subscriber) {
	t.mu.Lock()
	delete(t.subs, s)
	t.mu.Unlock()
}

// Subscribers returns a copy of the subscriber set so broadcast iteration
// never faults on concurrent add/remove.
func (t *Tenant) Subscribers() []broadcast.Subscriber {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]broadcast.Subscriber, 0, len(t.subs))
	for s := range t.subs {
		out = append(out, s)
	}
	return out
}

// SubscriberCount returns the number of live subscribers.
func (t *Tenant) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
