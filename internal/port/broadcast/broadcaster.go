// Package broadcast defines the port for broadcasting real-time events to
// connected dashboard clients.
package broadcast

import "context"

// Subscriber is one live dashboard connection, bound to a single shop for
// its whole lifetime.
type Subscriber interface {
	// Send delivers one framed message. A non-nil error means the
	// connection is unusable and the subscriber will be removed.
	Send(ctx context.Context, event string, data []byte) error
	// Close releases the connection. Safe to call more than once.
	Close()
}

// SubscriberSet is the mutable, unordered set of live subscribers of one
// shop. Subscribers returns a point-in-time copy so callers can iterate
// while the set is mutated concurrently; RemoveSubscriber is idempotent.
type SubscriberSet interface {
	Subscribers() []Subscriber
	RemoveSubscriber(Subscriber)
}

// Broadcaster fans a newly ingested event out to every subscriber of a shop.
type Broadcaster interface {
	// Publish delivers {kind, payload} to every subscriber currently in the
	// set. Delivery failures are absorbed: they are logged, the failing
	// subscriber is removed, and the call never returns an error to the
	// ingestion path.
	Publish(ctx context.Context, set SubscriberSet, kind string, payload any)
	// SendBootstrap delivers the initial snapshot to a single subscriber
	// before any live event reaches it.
	SendBootstrap(ctx context.Context, sub Subscriber, snapshot any) error
}
