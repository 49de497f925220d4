// Package sale defines the sales transaction domain model.
package sale

import "time"

// Transaction is one completed point-of-sale transaction. Records are
// immutable once stored and are never deleted.
type Transaction struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Item      string    `json:"item"`
	CreatedAt time.Time `json:"createdAt"`
}

// IngestRequest is the raw terminal payload before validation.
// Amount is a pointer so that "missing" and "zero" are distinguishable.
type IngestRequest struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency,omitempty"`
	Method   string   `json:"method,omitempty"`
	Item     string   `json:"item,omitempty"`
}

// Event is the live broadcast payload for an ingested transaction.
type Event struct {
	Amount    float64   `json:"amount"`
	Item      string    `json:"item"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary aggregates the transactions of a single calendar day.
type Summary struct {
	TotalAmount      float64 `json:"totalAmount"`
	TransactionCount int     `json:"transactionCount"`
	Date             string  `json:"date"`
}
