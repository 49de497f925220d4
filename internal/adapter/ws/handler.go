// Package ws implements the WebSocket mirror of the live event feed.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	otelx "github.com/tillworks/tillcast/internal/adapter/otel"
	"github.com/tillworks/tillcast/internal/hub"
	"github.com/tillworks/tillcast/internal/port/shops"
	"github.com/tillworks/tillcast/internal/service"
	"github.com/tillworks/tillcast/internal/store"
)

// Handler upgrades dashboard connections to WebSocket and registers them as
// subscribers of their shop. Messages use the same {type, payload} envelope
// as the hub; the first message is always the bootstrap snapshot.
type Handler struct {
	Shops    shops.Lookup
	Registry *store.Registry
	Hub      *hub.Hub
	Stats    *service.StatsService
	Metrics  *otelx.Metrics
	Log      *slog.Logger
}

// HandleWS handles GET /ws?token=.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, `{"ok":false,"msg":"token is required"}`, http.StatusUnauthorized)
		return
	}
	if _, ok := h.Shops.Lookup(r.Context(), token); !ok {
		http.Error(w, `{"ok":false,"msg":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		h.Log.Error("websocket accept failed", "error", err)
		return
	}

	// The connection outlives this handler; its lifetime is governed by the
	// read loop, not the upgrade request.
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscriber{conn: c, cancel: cancel}

	st := h.Registry.GetOrCreate(token)
	snapshot := h.Stats.BootstrapSnapshot(st, time.Now())
	if err := h.Hub.SendBootstrap(ctx, sub, snapshot); err != nil {
		h.Log.Debug("websocket bootstrap failed", "error", err)
		sub.Close()
		return
	}
	st.AddSubscriber(sub)

	if h.Metrics != nil {
		h.Metrics.Subscribers.Add(ctx, 1)
	}
	h.Log.Info("websocket connected", "remote", r.RemoteAddr)

	// Read loop: consumes pings and detects disconnect, then triggers
	// removal from the subscriber set.
	go func() {
		defer func() {
			st.RemoveSubscriber(sub)
			sub.Close()
			if h.Metrics != nil {
				h.Metrics.Subscribers.Add(context.Background(), -1)
			}
			h.Log.Info("websocket disconnected")
		}()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// subscriber adapts one WebSocket connection to the broadcast port.
type subscriber struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	once   sync.Once
}

func (s *subscriber) Send(ctx context.Context, event string, data []byte) error {
	msg, err := json.Marshal(hub.Message{Type: event, Payload: data})
	if err != nil {
		return err
	}
	return s.conn.Write(ctx, websocket.MessageText, msg)
}

func (s *subscriber) Close() {
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.Close(websocket.StatusNormalClosure, "")
	})
}
