package broker

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/config"
	"owlistic-notes/blocknotes/logging"
)

// ErrNotConnected is returned when no NATS URL is configured.
var ErrNotConnected = errors.New("broker not configured")

type Producer interface {
	Publish(subject string, data []byte) error
	Close()
}

// Connect dials the NATS server named by cfg.NatsURL.
func Connect(cfg config.Config) (*nats.Conn, error) {
	if cfg.NatsURL == "" {
		return nil, ErrNotConnected
	}
	log := logging.Get()
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("blocknotes"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.NatsURL, err)
	}
	log.Info("nats connection established", zap.String("url", conn.ConnectedUrl()))
	return conn, nil
}

type NatsProducer struct {
	conn *nats.Conn
}

func NewNatsProducer(conn *nats.Conn) *NatsProducer {
	return &NatsProducer{conn: conn}
}

// InitProducer connects and returns a NATS-backed producer.
func InitProducer(cfg config.Config) (*NatsProducer, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewNatsProducer(conn), nil
}

func (p *NatsProducer) Publish(subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (p *NatsProducer) Conn() *nats.Conn {
	return p.conn
}

func (p *NatsProducer) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

type noopProducer struct{}

// NewNoopProducer returns a producer that drops every message. The server
// uses it when NATS is unavailable.
func NewNoopProducer() Producer { return noopProducer{} }

func (noopProducer) Publish(string, []byte) error { return nil }

func (noopProducer) Close() {}
