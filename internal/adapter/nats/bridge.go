// Package nats implements the JetStream ingestion bridge: terminals that
// cannot speak HTTP push records onto pos.tx.<token> or
// pos.reservation.<token> and the bridge feeds them through the same
// ingestion gateway as the HTTP endpoints.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tillworks/tillcast/internal/domain"
	"github.com/tillworks/tillcast/internal/domain/reservation"
	"github.com/tillworks/tillcast/internal/domain/sale"
	"github.com/tillworks/tillcast/internal/service"
)

const (
	streamName    = "TILLCAST"
	subjectPrefix = "pos"
)

// Bridge consumes ingestion subjects from NATS JetStream.
type Bridge struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	ingest *service.IngestService
	log    *slog.Logger
}

// Connect establishes a connection to NATS and ensures the ingestion stream
// exists.
func Connect(ctx context.Context, url string, ingest *service.IngestService, log *slog.Logger) (*Bridge, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ".>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	log.Info("nats connected", "url", url, "stream", streamName)
	return &Bridge{nc: nc, js: js, ingest: ingest, log: log}, nil
}

// Start consumes the ingestion subjects until the returned stop function is
// called. Messages are acked regardless of outcome: a record the gateway
// rejects will not become valid on redelivery.
func (b *Bridge) Start(ctx context.Context) (func(), error) {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subjectPrefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := b.handle(ctx, msg.Subject(), msg.Data()); err != nil {
			b.log.Warn("nats ingest rejected", "subject", msg.Subject(), "error", err)
		}
		if err := msg.Ack(); err != nil {
			b.log.Error("nats ack failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	return cons.Stop, nil
}

// handle routes one broker message through the ingestion gateway.
func (b *Bridge) handle(ctx context.Context, subject string, data []byte) error {
	kind, token, err := splitSubject(subject)
	if err != nil {
		return err
	}

	switch kind {
	case "tx":
		var req sale.IngestRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
		}
		_, err := b.ingest.IngestTransaction(ctx, token, req)
		return err
	case "reservation":
		var req reservation.IngestRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
		}
		_, err := b.ingest.IngestReservation(ctx, token, req)
		return err
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
}

// splitSubject parses pos.<kind>.<token>.
func splitSubject(subject string) (kind, token string, err error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != subjectPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", errors.New("subject must be pos.<kind>.<token>")
	}
	return parts[1], parts[2], nil
}

// Close shuts down the NATS connection.
func (b *Bridge) Close() error {
	b.nc.Close()
	return nil
}
