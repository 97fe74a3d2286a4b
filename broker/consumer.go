package broker

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/logging"
)

type Consumer interface {
	Messages() <-chan Message
	Close()
}

// NatsConsumer fans the messages of several subjects into one channel.
type NatsConsumer struct {
	subs     []*nats.Subscription
	raw      chan *nats.Msg
	messages chan Message
	done     chan struct{}
}

// InitConsumer subscribes conn to every subject.
func InitConsumer(conn *nats.Conn, subjects []string) (*NatsConsumer, error) {
	c := newNatsConsumer()
	for _, subject := range subjects {
		sub, err := conn.ChanSubscribe(subject, c.raw)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		c.subs = append(c.subs, sub)
	}
	logging.Get().Info("nats consumer started", zap.Strings("subjects", subjects))
	return c, nil
}

func newNatsConsumer() *NatsConsumer {
	c := &NatsConsumer{
		raw:      make(chan *nats.Msg, 256),
		messages: make(chan Message, 256),
		done:     make(chan struct{}),
	}
	go c.forward()
	return c
}

func (c *NatsConsumer) forward() {
	defer close(c.messages)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.raw:
			select {
			case c.messages <- Message{Subject: msg.Subject, Data: msg.Data}:
			case <-c.done:
				return
			}
		}
	}
}

func (c *NatsConsumer) Messages() <-chan Message {
	return c.messages
}

func (c *NatsConsumer) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
