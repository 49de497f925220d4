package http

import (
	"net/http"
	"time"

	otelx "github.com/tillworks/tillcast/internal/adapter/otel"
	"github.com/tillworks/tillcast/internal/domain/reservation"
	"github.com/tillworks/tillcast/internal/domain/sale"
	"github.com/tillworks/tillcast/internal/hub"
	"github.com/tillworks/tillcast/internal/port/shops"
	"github.com/tillworks/tillcast/internal/service"
	"github.com/tillworks/tillcast/internal/store"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Shops    shops.Lookup
	Registry *store.Registry
	Ingest   *service.IngestService
	Stats    *service.StatsService
	Hub      *hub.Hub
	Metrics  *otelx.Metrics
	Version  string
}

// authQuery resolves the token query parameter to a shop, writing a 401
// when it is missing or unresolvable. Absence is uniform: the caller cannot
// tell a missing profile from a malformed one.
func (h *Handlers) authQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "token is required")
		return "", false
	}
	if _, ok := h.Shops.Lookup(r.Context(), token); !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return "", false
	}
	return token, true
}

// Root reports service liveness and version.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "tillcast up",
		"version": h.Version,
	})
}

// Health reports liveness plus a few observability counters.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"shops": h.Registry.Len(),
	})
}

type todaySalesResponse struct {
	OK bool `json:"ok"`
	sale.Summary
}

// TodaySales returns today's aggregated sales for the shop in the token
// query parameter.
func (h *Handlers) TodaySales(w http.ResponseWriter, r *http.Request) {
	token, ok := h.authQuery(w, r)
	if !ok {
		return
	}

	st := h.Registry.GetOrCreate(token)
	sum := h.Stats.TodaySales(st, time.Now())
	writeJSON(w, http.StatusOK, todaySalesResponse{OK: true, Summary: sum})
}

type reservationsResponse struct {
	OK           bool                      `json:"ok"`
	Count        int                       `json:"count"`
	Reservations []reservation.Reservation `json:"reservations"`
	Date         string                    `json:"date"`
}

// TodayReservations returns today's reservations sorted by time.
func (h *Handlers) TodayReservations(w http.ResponseWriter, r *http.Request) {
	token, ok := h.authQuery(w, r)
	if !ok {
		return
	}

	now := time.Now()
	st := h.Registry.GetOrCreate(token)
	res := h.Stats.TodayReservations(st, now)
	writeJSON(w, http.StatusOK, reservationsResponse{
		OK:           true,
		Count:        len(res),
		Reservations: res,
		Date:         now.UTC().Format(time.DateOnly),
	})
}

type ingestTxResponse struct {
	OK          bool             `json:"ok"`
	Transaction sale.Transaction `json:"transaction"`
}

// IngestTransaction accepts one sales transaction pushed by a terminal.
// The shop token travels in the Authorization bearer header.
func (h *Handlers) IngestTransaction(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "token is required")
		return
	}

	req, ok := readJSON[sale.IngestRequest](w, r)
	if !ok {
		return
	}

	tx, err := h.Ingest.IngestTransaction(r.Context(), token, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestTxResponse{OK: true, Transaction: tx})
}

type ingestReservationResponse struct {
	OK          bool                    `json:"ok"`
	Reservation reservation.Reservation `json:"reservation"`
}

// IngestReservation accepts one reservation pushed by a terminal.
func (h *Handlers) IngestReservation(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "token is required")
		return
	}

	req, ok := readJSON[reservation.IngestRequest](w, r)
	if !ok {
		return
	}

	res, err := h.Ingest.IngestReservation(r.Context(), token, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestReservationResponse{OK: true, Reservation: res})
}
