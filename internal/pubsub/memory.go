package pubsub

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const memoryBuffer = 64

// MemoryBroker is an in-process Broker. Each subscription has its own
// delivery goroutine and a bounded buffer. When the buffer is full the new
// message is dropped; a message is already queued then, so the subscriber
// still re-reads the store after the write that was dropped.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySubscription
	closed atomic.Bool
	nextID atomic.Uint64
}

// NewMemoryBroker returns an empty MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]*memorySubscription)}
}

func (b *MemoryBroker) Publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	msg := &Message{Subject: subject, Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for pattern, subs := range b.subs {
		if !matchSubject(pattern, subject) {
			continue
		}
		for _, s := range subs {
			if s.closed.Load() {
				continue
			}
			select {
			case s.messages <- msg:
			default:
				log.Debug().Str("subject", subject).Msg("subscriber buffer full, message dropped")
			}
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, subject string, handler Handler) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	s := &memorySubscription{
		id:       b.nextID.Add(1),
		subject:  subject,
		messages: make(chan *Message, memoryBuffer),
		done:     make(chan struct{}),
		handler:  handler,
		broker:   b,
	}

	b.mu.Lock()
	b.subs[subject] = append(b.subs[subject], s)
	b.mu.Unlock()

	go s.run(ctx)
	return s, nil
}

// Close unsubscribes everything. Further calls return ErrClosed.
func (b *MemoryBroker) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.mu.Lock()
	all := b.subs
	b.subs = make(map[string][]*memorySubscription)
	b.mu.Unlock()

	for _, subs := range all {
		for _, s := range subs {
			s.stop()
		}
	}
	return nil
}

// subscribers reports how many live subscriptions match subject exactly.
func (b *MemoryBroker) subscribers(subject string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[subject])
}

type memorySubscription struct {
	id       uint64
	subject  string
	messages chan *Message
	done     chan struct{}
	handler  Handler
	broker   *MemoryBroker
	closed   atomic.Bool
}

func (s *memorySubscription) Subject() string { return s.subject }

func (s *memorySubscription) Unsubscribe() error {
	if s.closed.Load() {
		return nil
	}
	s.broker.mu.Lock()
	subs := s.broker.subs[s.subject]
	for i, sub := range subs {
		if sub.id == s.id {
			s.broker.subs[s.subject] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(s.broker.subs[s.subject]) == 0 {
		delete(s.broker.subs, s.subject)
	}
	s.broker.mu.Unlock()

	s.stop()
	return nil
}

func (s *memorySubscription) stop() {
	if !s.closed.Swap(true) {
		close(s.done)
	}
}

func (s *memorySubscription) run(ctx context.Context) {
	for {
		select {
		case msg := <-s.messages:
			s.handler(msg)
		case <-s.done:
			return
		case <-ctx.Done():
			_ = s.Unsubscribe()
			return
		}
	}
}

// matchSubject checks if a subject matches a pattern with wildcards.
// Supports "*" for a single token and ">" for one or more trailing tokens,
// the same way NATS does.
func matchSubject(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	pp := strings.Split(pattern, ".")
	sp := strings.Split(subject, ".")

	pi, si := 0, 0
	for pi < len(pp) && si < len(sp) {
		switch pp[pi] {
		case ">":
			return true
		case "*":
		default:
			if pp[pi] != sp[si] {
				return false
			}
		}
		pi++
		si++
	}
	return pi == len(pp) && si == len(sp)
}
