// Package pubsub carries "scan changed" notifications from the webhook
// receivers to whoever is watching a scan. Messages are signals, not state:
// subscribers re-read the shared store when one arrives.
//
// Two brokers are provided. MemoryBroker serves a single process. NATSBroker
// lets webhooks land on one instance while the watcher is connected to
// another.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrClosed is returned when operating on a closed broker.
var ErrClosed = errors.New("pubsub: broker closed")

// Broker publishes to and subscribes on dot-separated subjects.
// Implementations must be safe for concurrent use and must deliver the
// messages of one subscription in publish order.
type Broker interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject string, handler Handler) (Subscription, error)
	Close() error
}

// Handler processes one delivered message.
type Handler func(msg *Message)

// Message is a delivered message.
type Message struct {
	Subject string
	Data    []byte
}

// Subscription is an active subscription.
type Subscription interface {
	Unsubscribe() error
	Subject() string
}

// Scan event kinds.
const (
	KindStatus = "status"
	KindExport = "export"
)

// ScanEvent says that the record of ScanID was written by a webhook.
type ScanEvent struct {
	ScanID string    `json:"scan_id"`
	Kind   string    `json:"kind"`
	Status string    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}

// ScanSubject is the subject events for scanID are published on.
func ScanSubject(scanID string) string { return "scans." + scanID }

// PublishScanEvent publishes ev on its scan subject.
func PublishScanEvent(ctx context.Context, b Broker, ev ScanEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.Publish(ctx, ScanSubject(ev.ScanID), data)
}

// DecodeScanEvent parses a message published by PublishScanEvent.
func DecodeScanEvent(msg *Message) (ScanEvent, error) {
	var ev ScanEvent
	err := json.Unmarshal(msg.Data, &ev)
	return ev, err
}
