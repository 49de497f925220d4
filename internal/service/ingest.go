package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	otelx "github.com/tillworks/tillcast/internal/adapter/otel"
	"github.com/tillworks/tillcast/internal/domain"
	"github.com/tillworks/tillcast/internal/domain/reservation"
	"github.com/tillworks/tillcast/internal/domain/sale"
	"github.com/tillworks/tillcast/internal/hub"
	"github.com/tillworks/tillcast/internal/port/broadcast"
	"github.com/tillworks/tillcast/internal/port/shops"
	"github.com/tillworks/tillcast/internal/store"
)

// Defaults are the fallback values stamped onto transactions whose terminal
// omitted the optional fields.
type Defaults struct {
	Currency string
	Method   string
	Item     string
}

// IngestService is the boundary every inbound write crosses: it resolves
// the shop token, validates and normalizes the record, stores it, and fans
// the live event out. Broadcast failures never surface to the caller; the
// write succeeded once storage did.
type IngestService struct {
	shops    shops.Lookup
	registry *store.Registry
	bus      broadcast.Broadcaster
	metrics  *otelx.Metrics
	defaults Defaults
	log      *slog.Logger
	now      func() time.Time
}

// NewIngestService creates an IngestService. metrics may be nil in tests.
func NewIngestService(lookup shops.Lookup, reg *store.Registry, bus broadcast.Broadcaster, metrics *otelx.Metrics, defaults Defaults, log *slog.Logger) *IngestService {
	return &IngestService{
		shops:    lookup,
		registry: reg,
		bus:      bus,
		metrics:  metrics,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

// IngestTransaction validates and stores one sales transaction for the shop
// identified by token, then broadcasts a "tx" event to its subscribers.
func (s *IngestService) IngestTransaction(ctx context.Context, token string, req sale.IngestRequest) (sale.Transaction, error) {
	sh, ok := s.shops.Lookup(ctx, token)
	if !ok {
		return sale.Transaction{}, domain.ErrUnauthorized
	}

	if req.Amount == nil {
		return sale.Transaction{}, s.reject(ctx, "amount is required")
	}
	if *req.Amount <= 0 {
		return sale.Transaction{}, s.reject(ctx, "amount must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = sh.Currency
	}
	if currency == "" {
		currency = s.defaults.Currency
	}
	method := req.Method
	if method == "" {
		method = s.defaults.Method
	}
	item := req.Item
	if item == "" {
		item = s.defaults.Item
	}

	tx := sale.Transaction{
		ID:        uuid.NewString(),
		Amount:    *req.Amount,
		Currency:  currency,
		Method:    method,
		Item:      item,
		CreatedAt: s.now().UTC(),
	}

	st := s.registry.GetOrCreate(token)
	st.AppendTransaction(tx)

	s.bus.Publish(ctx, st, hub.EventTx, sale.Event{
		Amount:    tx.Amount,
		Item:      tx.Item,
		Method:    tx.Method,
		Timestamp: tx.CreatedAt,
	})

	if s.metrics != nil {
		s.metrics.TransactionsIngested.Add(ctx, 1)
	}
	s.log.Info("transaction ingested", "shop", sh.Name, "amount", tx.Amount, "currency", tx.Currency)
	return tx, nil
}

// IngestReservation validates and stores one reservation for the shop
// identified by token, then broadcasts a "reservation" event.
func (s *IngestService) IngestReservation(ctx context.Context, token string, req reservation.IngestRequest) (reservation.Reservation, error) {
	sh, ok := s.shops.Lookup(ctx, token)
	if !ok {
		return reservation.Reservation{}, domain.ErrUnauthorized
	}

	if req.Name == "" {
		return reservation.Reservation{}, s.reject(ctx, "name is required")
	}
	if req.Phone == "" {
		return reservation.Reservation{}, s.reject(ctx, "phone is required")
	}
	if req.Time == "" {
		return reservation.Reservation{}, s.reject(ctx, "time is required")
	}
	persons, err := parsePersons(req.Persons)
	if err != nil {
		return reservation.Reservation{}, s.reject(ctx, err.Error())
	}

	now := s.now().UTC()
	date := req.Date
	if date == "" {
		date = now.Format(time.DateOnly)
	}
	table := req.Table
	if table == "" {
		table = reservation.TableUnassigned
	}

	res := reservation.Reservation{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Persons:   persons,
		Date:      date,
		Time:      req.Time,
		Table:     table,
		Notes:     req.Notes,
		Status:    reservation.StatusConfirmed,
		CreatedAt: now,
	}

	st := s.registry.GetOrCreate(token)
	st.AppendReservation(res)

	s.bus.Publish(ctx, st, hub.EventReservation, res)

	if s.metrics != nil {
		s.metrics.ReservationsIngested.Add(ctx, 1)
	}
	s.log.Info("reservation ingested", "shop", sh.Name, "name", res.Name, "date", res.Date, "time", res.Time)
	return res, nil
}

// reject wraps a validation message and counts the rejection.
func (s *IngestService) reject(ctx context.Context, msg string) error {
	if s.metrics != nil {
		s.metrics.IngestRejected.Add(ctx, 1)
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// parsePersons accepts the party size as a JSON number or numeric string
// and requires it to be a positive integer.
func parsePersons(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("persons is required")
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("persons must be an integer")
		}
		if int(n) <= 0 {
			return 0, fmt.Errorf("persons must be positive")
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("persons must be a number")
		}
		if i <= 0 {
			return 0, fmt.Errorf("persons must be positive")
		}
		return i, nil
	case int:
		if n <= 0 {
			return 0, fmt.Errorf("persons must be positive")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("persons must be a number")
	}
}
