package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tillcast"

// Metrics holds all Tillcast metric instruments.
type Metrics struct {
	TransactionsIngested metric.Int64Counter
	ReservationsIngested metric.Int64Counter
	IngestRejected       metric.Int64Counter
	Subscribers          metric.Int64UpDownCounter
}

// NewMetrics creates all metric instruments against the global meter
// provider. With no provider configured the instruments are no-ops.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TransactionsIngested, err = meter.Int64Counter("tillcast.ingest.transactions",
		metric.WithDescription("Number of transactions ingested"))
	if err != nil {
		return nil, err
	}

	m.ReservationsIngested, err = meter.Int64Counter("tillcast.ingest.reservations",
		metric.WithDescription("Number of reservations ingested"))
	if err != nil {
		return nil, err
	}

	m.IngestRejected, err = meter.Int64Counter("tillcast.ingest.rejected",
		metric.WithDescription("Number of ingestion requests rejected by validation"))
	if err != nil {
		return nil, err
	}

	m.Subscribers, err = meter.Int64UpDownCounter("tillcast.subscribers",
		metric.WithDescription("Number of live dashboard subscribers"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
