package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tillworks/tillcast/internal/domain/sale"
	"github.com/tillworks/tillcast/internal/hub"
	"github.com/tillworks/tillcast/internal/service"
)

// sseEvent is one parsed frame from the stream.
type sseEvent struct {
	name string
	data string
}

// readSSE reads the next event frame (event + data lines up to a blank line).
func readSSE(t *testing.T, br *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("stream read failed: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" || ev.data != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventsRequiresValidToken(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?token=unknown", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestEventsBootstrapThenLive(t *testing.T) {
	r, reg := newTestRouter(t)
	reg.GetOrCreate("shopA").AppendTransaction(sale.Transaction{
		Amount: 50, CreatedAt: time.Now().UTC(),
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?token=shopA", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %s", ct)
	}

	br := bufio.NewReader(resp.Body)

	first := readSSE(t, br)
	if first.name != hub.EventBootstrap {
		t.Fatalf("expected bootstrap first, got %s", first.name)
	}
	var snap service.Snapshot
	if err := json.Unmarshal([]byte(first.data), &snap); err != nil {
		t.Fatalf("invalid snapshot payload: %v", err)
	}
	if snap.TotalAmount != 50 || snap.TransactionCount != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// Wait for registration, then ingest over HTTP and expect the live event.
	st := reg.GetOrCreate("shopA")
	deadline := time.Now().Add(2 * time.Second)
	for st.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ingestReq, err := http.NewRequest(http.MethodPost, srv.URL+"/ingest/tx", strings.NewReader(`{"amount":7,"item":"Tea"}`))
	if err != nil {
		t.Fatal(err)
	}
	ingestReq.Header.Set("Authorization", "Bearer shopA")
	ingestReq.Header.Set("Content-Type", "application/json")
	ingestResp, err := http.DefaultClient.Do(ingestReq)
	if err != nil {
		t.Fatal(err)
	}
	ingestResp.Body.Close()
	if ingestResp.StatusCode != http.StatusOK {
		t.Fatalf("ingest: expected 200, got %d", ingestResp.StatusCode)
	}

	live := readSSE(t, br)
	if live.name != hub.EventTx {
		t.Fatalf("expected tx event, got %s", live.name)
	}
	var ev sale.Event
	if err := json.Unmarshal([]byte(live.data), &ev); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if ev.Amount != 7 || ev.Item != "Tea" {
		t.Errorf("unexpected live event: %+v", ev)
	}
}

func TestEventsShutdownClosesStream(t *testing.T) {
	r, reg := newTestRouter(t)

	baseCtx, stop := context.WithCancel(context.Background())
	defer stop()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := &http.Server{
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	go func() { _ = srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/events?token=shopA")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	br := bufio.NewReader(resp.Body)
	readSSE(t, br) // bootstrap

	st := reg.GetOrCreate("shopA")
	deadline := time.Now().Add(2 * time.Second)
	for st.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Simulate the signal: the stream handler must exit so Shutdown can
	// complete within its deadline instead of hanging on the open stream.
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown blocked on open stream: %v", err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for st.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber leaked after shutdown")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventsDisconnectRemovesSubscriber(t *testing.T) {
	r, reg := newTestRouter(t)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?token=shopA", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	br := bufio.NewReader(resp.Body)
	readSSE(t, br) // bootstrap

	st := reg.GetOrCreate("shopA")
	deadline := time.Now().Add(2 * time.Second)
	for st.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel() // client disconnect

	deadline = time.Now().Add(2 * time.Second)
	for st.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber leaked after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
