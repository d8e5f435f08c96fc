// Package events fans finished matches out to external subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/core"
)

// Publisher announces finished matches.
type Publisher interface {
	Publish(ctx context.Context, rec core.MatchRecord) error
	Close() error
}

// New returns a NATS publisher for url, or a no-op publisher when url is empty.
func New(url, subject string, logger *zerolog.Logger) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewNATS(url, subject, logger)
}

// Noop discards every record.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, core.MatchRecord) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

// NATSPublisher publishes each record as JSON on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	log     *zerolog.Logger
}

// NewNATS connects to the NATS server at url.
func NewNATS(url, subject string, logger *zerolog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if subject == "" {
		return nil, fmt.Errorf("nats: empty subject")
	}

	conn, err := nats.Connect(url,
		nats.Name("wirebattle-server"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info().Str("url", conn.ConnectedUrl()).Str("subject", subject).Msg("nats publisher ready")
	return &NATSPublisher{conn: conn, subject: subject, log: logger}, nil
}

// Publish sends rec. Core NATS is fire-and-forget, so a nil error only means
// the message was buffered.
func (p *NATSPublisher) Publish(ctx context.Context, rec core.MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("drain nats: %w", err)
	}
	return nil
}

// Encode is the wire form of a published record.
func Encode(rec core.MatchRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal match record: %w", err)
	}
	return data, nil
}
