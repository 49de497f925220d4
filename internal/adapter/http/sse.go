package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var (
	errSubscriberGone    = errors.New("subscriber closed")
	errSubscriberStalled = errors.New("subscriber buffer full")
)

type sseMessage struct {
	event string
	data  []byte
}

// sseSubscriber queues framed messages for one dashboard connection. The
// channel keeps per-subscriber delivery in publish order; a full buffer is
// treated as a dead connection, since slow subscribers are best effort.
type sseSubscriber struct {
	ch   chan sseMessage
	done chan struct{}
	once sync.Once
}

func newSSESubscriber(buffer int) *sseSubscriber {
	return &sseSubscriber{
		ch:   make(chan sseMessage, buffer),
		done: make(chan struct{}),
	}
}

func (s *sseSubscriber) Send(_ context.Context, event string, data []byte) error {
	select {
	case <-s.done:
		return errSubscriberGone
	default:
	}
	select {
	case s.ch <- sseMessage{event: event, data: data}:
		return nil
	case <-s.done:
		return errSubscriberGone
	default:
		return errSubscriberStalled
	}
}

func (s *sseSubscriber) Close() {
	s.once.Do(func() { close(s.done) })
}

// Events is the persistent SSE stream: the first message is the bootstrap
// snapshot, followed by live events until the client disconnects. Each
// message is a named event with a single-line JSON data payload terminated
// by a blank line.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	token, ok := h.authQuery(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	st := h.Registry.GetOrCreate(token)
	sub := newSSESubscriber(64)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Queue the bootstrap before registering, so no live event can get in
	// front of it on this channel.
	snapshot := h.Stats.BootstrapSnapshot(st, time.Now())
	if err := h.Hub.SendBootstrap(ctx, sub, snapshot); err != nil {
		return
	}
	st.AddSubscriber(sub)

	if h.Metrics != nil {
		h.Metrics.Subscribers.Add(ctx, 1)
	}
	defer func() {
		st.RemoveSubscriber(sub)
		sub.Close()
		if h.Metrics != nil {
			h.Metrics.Subscribers.Add(context.WithoutCancel(ctx), -1)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// Canceled on client disconnect, and on server shutdown when
			// the server's BaseContext is the signal context; removal
			// happens in the deferred cleanup before the handler exits.
			return
		case <-sub.done:
			return
		case m := <-sub.ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", m.event, m.data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
