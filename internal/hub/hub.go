// Package hub implements fan-out of live events to the subscribers of a
// shop, tolerating subscriber removal mid-broadcast.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tillworks/tillcast/internal/port/broadcast"
)

// Event kinds delivered over the live feed.
const (
	EventTx          = "tx"
	EventReservation = "reservation"
	EventBootstrap   = "bootstrap"
)

// Message is the envelope for all live feed messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub delivers events to subscribers. Delivery is best effort: a failed
// write removes the subscriber and never surfaces to the ingestion caller.
type Hub struct {
	log *slog.Logger
}

// New creates a Hub logging through log.
func New(log *slog.Logger) *Hub {
	return &Hub{log: log}
}

// Publish marshals payload once and writes it to every subscriber currently
// in the set. Iteration runs over a snapshot of the set, so concurrent
// add/remove never faults the loop. A write failure is logged, the
// subscriber is removed and closed, and delivery to the remaining
// subscribers continues.
func (h *Hub) Publish(ctx context.Context, set broadcast.SubscriberSet, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshal event payload", "kind", kind, "error", err)
		return
	}

	for _, sub := range set.Subscribers() {
		if err := sub.Send(ctx, kind, data); err != nil {
			h.log.Debug("subscriber write failed", "kind", kind, "error", err)
			set.RemoveSubscriber(sub)
			sub.Close()
		}
	}
}

// SendBootstrap delivers the initial aggregate snapshot to a single
// subscriber, establishing its starting point before any live event.
func (h *Hub) SendBootstrap(ctx context.Context, sub broadcast.Subscriber, snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return sub.Send(ctx, EventBootstrap, data)
}
