package pubsub

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBroker is a Broker backed by a NATS connection. Core NATS delivers
// the messages of one subscription in order, which is all the watchers need;
// nothing is persisted.
type NATSBroker struct {
	conn   *nats.Conn
	closed atomic.Bool
}

// NewNATSBroker connects to url. name identifies the client in server
// monitoring.
func NewNATSBroker(url, name string) (*NATSBroker, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewNATSBrokerFromConn(conn), nil
}

// NewNATSBrokerFromConn wraps an existing connection. Close drains it.
func NewNATSBrokerFromConn(conn *nats.Conn) *NATSBroker {
	return &NATSBroker{conn: conn}
}

func (b *NATSBroker) Publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return b.conn.Publish(subject, data)
}

func (b *NATSBroker) Subscribe(ctx context.Context, subject string, handler Handler) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{Subject: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return nil, err
	}
	// Make sure the server has registered interest before the caller reads
	// the store, so no event published after that read can be missed.
	if err := b.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	s := &natsSubscription{sub: sub}
	s.stop = context.AfterFunc(ctx, func() { _ = s.unsubscribe() })
	return s, nil
}

// Close drains pending messages and closes the connection.
func (b *NATSBroker) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.conn.Drain()
}

type natsSubscription struct {
	sub  *nats.Subscription
	stop func() bool
	done atomic.Bool
}

func (s *natsSubscription) Unsubscribe() error {
	if s.stop != nil {
		s.stop()
	}
	return s.unsubscribe()
}

func (s *natsSubscription) unsubscribe() error {
	if s.done.Swap(true) {
		return nil
	}
	return s.sub.Unsubscribe()
}

func (s *natsSubscription) Subject() string { return s.sub.Subject }
