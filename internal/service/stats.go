// Package service implements the core application services: the ingestion
// gateway and the "today" aggregation engine.
package service

import (
	"slices"
	"strings"
	"time"

	"github.com/tillworks/tillcast/internal/domain/reservation"
	"github.com/tillworks/tillcast/internal/domain/sale"
	"github.com/tillworks/tillcast/internal/store"
)

// StatsService derives "today" statistics from a shop's record history.
// All calendar-date comparisons use UTC; the reference instant is captured
// once per call so results are deterministic for a given store and now.
type StatsService struct{}

// NewStatsService creates a StatsService.
func NewStatsService() *StatsService {
	return &StatsService{}
}

// Snapshot is the bootstrap payload sent to a newly connected subscriber.
type Snapshot struct {
	Date             string                    `json:"date"`
	TotalAmount      float64                   `json:"totalAmount"`
	TransactionCount int                       `json:"transactionCount"`
	Reservations     []reservation.Reservation `json:"reservations"`
}

// TodaySales sums the transactions whose UTC calendar date equals now's.
// An empty day yields zero totals, not an error.
func (s *StatsService) TodaySales(st *store.Tenant, now time.Time) sale.Summary {
	day := now.UTC().Format(time.DateOnly)

	sum := sale.Summary{Date: day}
	for _, tx := range st.Transactions() {
		if tx.CreatedAt.UTC().Format(time.DateOnly) != day {
			continue
		}
		sum.TotalAmount += tx.Amount
		sum.TransactionCount++
	}
	return sum
}

// TodayReservations returns the reservations for now's UTC calendar date,
// sorted ascending by their zero-padded HH:MM time string. Reservations
// without an explicit date fall back to the date of their creation
// timestamp.
func (s *StatsService) TodayReservations(st *store.Tenant, now time.Time) []reservation.Reservation {
	day := now.UTC().Format(time.DateOnly)

	out := make([]reservation.Reservation, 0)
	for _, r := range st.Reservations() {
		date := r.Date
		if date == "" {
			date = r.CreatedAt.UTC().Format(time.DateOnly)
		}
		if date == day {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b reservation.Reservation) int {
		return strings.Compare(a.Time, b.Time)
	})
	return out
}

// BootstrapSnapshot combines today's sales summary and reservations into the
// single message a new subscriber renders from.
func (s *StatsService) BootstrapSnapshot(st *store.Tenant, now time.Time) Snapshot {
	sum := s.TodaySales(st, now)
	return Snapshot{
		Date:             sum.Date,
		TotalAmount:      sum.TotalAmount,
		TransactionCount: sum.TransactionCount,
		Reservations:     s.TodayReservations(st, now),
	}
}
