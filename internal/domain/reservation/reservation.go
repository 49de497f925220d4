// Package reservation defines the table reservation domain model.
package reservation

import "time"

// StatusConfirmed is the status stamped on every newly ingested reservation.
// There is no further status lifecycle in this version.
const StatusConfirmed = "confirmed"

// TableUnassigned is the sentinel table label used when the terminal did not
// pick a table.
const TableUnassigned = "unassigned"

// Reservation is one table reservation. Records are immutable once stored
// and are never deleted.
type Reservation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Persons   int       `json:"persons"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // zero-padded HH:MM
	Table     string    `json:"table"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// IngestRequest is the raw terminal payload before validation. Persons is
// untyped because terminals send it either as a number or a numeric string.
type IngestRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Persons any    `json:"persons"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Table   string `json:"table,omitempty"`
	Notes   string `json:"notes,omitempty"`
}
