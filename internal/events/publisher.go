// Package events announces intake outcomes on NATS. Publishing is
// best-effort notification for downstream listeners; it is not a queue and
// delivery is never retried.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectCaseCreated  = "intake.case.created"
	SubjectCaseRejected = "intake.case.rejected"
	SubjectCaseFailed   = "intake.case.failed"
	SubjectRegistered   = "intake.bridge.registered"
)

// CaseEvent is the payload published for every processed webhook.
type CaseEvent struct {
	ContactID    string `json:"contact_id,omitempty"`
	MatterID     string `json:"matter_id,omitempty"`
	PracticeArea string `json:"practice_area,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Timestamp    string `json:"timestamp"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect dials NATS with reconnect handling. The bridge runs fine without
// NATS; callers skip construction when no URL is configured.
func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

// Publish marshals and sends one event. A nil publisher is a no-op so the
// pipeline never has to care whether NATS is configured.
func (p *Publisher) Publish(subject string, data any) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Warn("failed to marshal event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
		return
	}
	p.logger.Debug("event published", "subject", subject)
}

// PublishCase sends a CaseEvent with the timestamp filled in.
func (p *Publisher) PublishCase(subject string, evt CaseEvent) {
	if p == nil {
		return
	}
	evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	p.Publish(subject, evt)
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
